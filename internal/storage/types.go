package storage

import (
	"encoding/json"
	"errors"
	"time"

	"studybot/internal/schedule"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (one JSON document per user)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Reminder is a one-off "remind me" item. DueAt is RFC3339; the dispatcher
// tolerates and retains values that fail to parse rather than dropping them.
type Reminder struct {
	ID    string `json:"id,omitempty"`
	Text  string `json:"text"`
	DueAt string `json:"dueAt"`
}

// Todo is one checklist item.
type Todo struct {
	ID   string `json:"id,omitempty"`
	Task string `json:"task"`
	Done bool   `json:"done"`
}

// UserDoc is the full persisted state of one user.
//
// Extra carries fields this build doesn't know about, so a partial update
// written by a newer build never erases them.
type UserDoc struct {
	ChatID    int64
	Schedule  []schedule.Entry
	Reminders []Reminder
	Todos     []Todo
	Extra     map[string]json.RawMessage
}
