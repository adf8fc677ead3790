package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studybot/internal/eventbus"
	"studybot/internal/schedule"
	"studybot/internal/storage"
	logx "studybot/pkg/logx"
)

// dispatch walks every stored user once. A failure for one user is logged
// and never blocks the rest.
func (s *Service) dispatch(ctx context.Context, now time.Time, lead int) {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		s.log.Error("list users", logx.Err(err))
		return
	}
	for _, id := range ids {
		s.dispatchUser(ctx, id, now, lead)
	}
}

func (s *Service) dispatchUser(ctx context.Context, userID string, now time.Time, lead int) {
	doc, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.log.Error("load user", logx.String("user", userID), logx.Err(err))
		return
	}
	if doc.ChatID == 0 {
		return
	}

	s.classAlerts(ctx, userID, doc, now, lead)
	s.oneOffReminders(ctx, userID, doc, now)
}

// classAlerts fires edge-triggered lead-time alerts: exactly at the minute
// (startMinute - lead), on a matching weekday, never for a range of minutes.
func (s *Service) classAlerts(ctx context.Context, userID string, doc storage.UserDoc, now time.Time, lead int) {
	nowMin := now.Hour()*60 + now.Minute()
	for _, e := range doc.Schedule {
		startMin := schedule.StartMinutes(e.Time)
		if startMin < 0 {
			continue
		}
		if !dayMatchesOn(e.Day, now) {
			continue
		}
		if nowMin != startMin-lead {
			continue
		}

		// Restart inside the firing minute must not double-send.
		key := fmt.Sprintf("class:%s:%s:%d", userID, e.Day, startMin)
		if s.alreadyFired(ctx, key, now) {
			continue
		}

		subject := e.Subject
		if subject == "" {
			subject = "class"
		}
		msg := fmt.Sprintf("⏰ Class in %d min: %s\n%s", lead, subject, e.Time)
		if err := s.notify.Send(ctx, doc.ChatID, msg); err != nil {
			s.log.Error("class alert send", logx.String("user", userID), logx.Err(err))
			continue
		}
		s.markFired(ctx, key, now)
		s.publish("reminder.class", map[string]any{"user": userID, "subject": subject})
	}
}

// oneOffReminders delivers due items and rewrites the remaining list.
//
// Per item, relative to the minute-based polling window:
//   - 0 <= now-due < 60s: fire once, drop from the remaining set; if the
//     send fails the item is kept so a tick still inside the window can
//     retry (past the window the stale rule bounds the damage)
//   - now < due:          keep for a later tick
//   - now-due >= 60s:     stale; drop without firing (at-most-once, never late)
//   - dueAt unparsable:   keep, to avoid silent data loss
func (s *Service) oneOffReminders(ctx context.Context, userID string, doc storage.UserDoc, now time.Time) {
	if len(doc.Reminders) == 0 {
		return
	}

	remaining := make([]storage.Reminder, 0, len(doc.Reminders))
	for _, r := range doc.Reminders {
		due, err := time.Parse(time.RFC3339, r.DueAt)
		if err != nil {
			remaining = append(remaining, r)
			continue
		}
		delta := now.Sub(due)
		switch {
		case delta >= 0 && delta < time.Minute:
			if err := s.notify.Send(ctx, doc.ChatID, "🔔 Reminder: "+r.Text); err != nil {
				s.log.Error("reminder send", logx.String("user", userID), logx.Err(err))
				remaining = append(remaining, r)
				continue
			}
			s.publish("reminder.due", map[string]any{"user": userID, "id": r.ID})
		case delta < 0:
			remaining = append(remaining, r)
		default:
			// missed by more than one polling window
			s.log.Debug("dropping stale reminder",
				logx.String("user", userID), logx.String("due", r.DueAt))
		}
	}

	// Persist unconditionally; a failure here only risks a duplicate fire,
	// which the next tick's window math bounds to one extra minute.
	if err := s.store.PutReminders(ctx, userID, remaining); err != nil {
		s.log.Debug("persist reminders", logx.String("user", userID), logx.Err(err))
	}
}

func (s *Service) alreadyFired(ctx context.Context, key string, now time.Time) bool {
	until, ok, err := s.store.GetDedup(ctx, key)
	if err != nil || !ok {
		return false
	}
	return now.Before(until)
}

func (s *Service) markFired(ctx context.Context, key string, now time.Time) {
	until := now.Truncate(time.Minute).Add(2 * time.Minute)
	if err := s.store.PutDedup(ctx, key, until); err != nil {
		s.log.Debug("persist dedup", logx.String("key", key), logx.Err(err))
	}
}

func (s *Service) publish(typ string, data any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Type: typ, Data: data})
}

var twoLetterDays = map[string]time.Weekday{
	"SU": time.Sunday, "MO": time.Monday, "TU": time.Tuesday, "WE": time.Wednesday,
	"TH": time.Thursday, "FR": time.Friday, "SA": time.Saturday,
}

// dayMatchesOn reports whether a stored day token applies to the given date.
// Empty and "Daily" always match; otherwise the token's first three letters
// are compared against the weekday name, with the 2-letter column-header
// forms as a fallback.
func dayMatchesOn(day string, now time.Time) bool {
	d := strings.TrimSpace(day)
	if d == "" || strings.EqualFold(d, "daily") {
		return true
	}
	name := now.Weekday().String()
	if len(d) >= 3 && strings.EqualFold(d[:3], name[:3]) {
		return true
	}
	if len(d) == 2 {
		wd, ok := twoLetterDays[strings.ToUpper(d)]
		return ok && wd == now.Weekday()
	}
	return false
}
