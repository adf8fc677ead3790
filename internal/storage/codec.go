package storage

import (
	"encoding/json"

	"studybot/internal/schedule"
)

// Known document keys. Everything else round-trips through UserDoc.Extra.
const (
	keyChatID    = "chatId"
	keySchedule  = "schedule"
	keyReminders = "reminders"
	keyTodos     = "todos"
)

// decodeUserDoc parses a stored document. Unknown top-level fields are kept
// verbatim. The schedule field accepts both shapes found in old documents:
// a flat entry list and an {"items": [...]} wrapper.
func decodeUserDoc(data []byte) (UserDoc, error) {
	var doc UserDoc
	if len(data) == 0 {
		return doc, nil
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return doc, err
	}

	if v, ok := raw[keyChatID]; ok {
		if err := json.Unmarshal(v, &doc.ChatID); err != nil {
			return doc, err
		}
		delete(raw, keyChatID)
	}
	if v, ok := raw[keySchedule]; ok {
		entries, err := decodeScheduleShape(v)
		if err != nil {
			return doc, err
		}
		doc.Schedule = entries
		delete(raw, keySchedule)
	}
	if v, ok := raw[keyReminders]; ok {
		if err := json.Unmarshal(v, &doc.Reminders); err != nil {
			return doc, err
		}
		delete(raw, keyReminders)
	}
	if v, ok := raw[keyTodos]; ok {
		if err := json.Unmarshal(v, &doc.Todos); err != nil {
			return doc, err
		}
		delete(raw, keyTodos)
	}
	if len(raw) > 0 {
		doc.Extra = raw
	}
	return doc, nil
}

// encodeUserDoc serializes a document, always in the flat-list schedule
// shape, re-attaching any preserved unknown fields.
func encodeUserDoc(doc UserDoc) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(doc.Extra)+4)
	for k, v := range doc.Extra {
		out[k] = v
	}

	set := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = b
		return nil
	}
	if err := set(keyChatID, doc.ChatID); err != nil {
		return nil, err
	}
	if err := set(keySchedule, emptyIfNil(doc.Schedule)); err != nil {
		return nil, err
	}
	if err := set(keyReminders, emptyIfNilR(doc.Reminders)); err != nil {
		return nil, err
	}
	if err := set(keyTodos, emptyIfNilT(doc.Todos)); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func decodeScheduleShape(v json.RawMessage) ([]schedule.Entry, error) {
	var entries []schedule.Entry
	if err := json.Unmarshal(v, &entries); err == nil {
		return entries, nil
	}
	var wrapped struct {
		Items []schedule.Entry `json:"items"`
	}
	if err := json.Unmarshal(v, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Items, nil
}

func emptyIfNil(v []schedule.Entry) []schedule.Entry {
	if v == nil {
		return []schedule.Entry{}
	}
	return v
}

func emptyIfNilR(v []Reminder) []Reminder {
	if v == nil {
		return []Reminder{}
	}
	return v
}

func emptyIfNilT(v []Todo) []Todo {
	if v == nil {
		return []Todo{}
	}
	return v
}
