// Package timetable drives the upload flow: an incoming photo or PDF is
// downloaded, turned into text, run through schedule extraction and saved
// on the user's document.
package timetable

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studybot/internal/eventbus"
	"studybot/internal/ingest"
	"studybot/internal/schedule"
	"studybot/internal/storage"
	kit "studybot/internal/transport"
	logx "studybot/pkg/logx"
)

// Extractor converts an attachment payload into plain text.
// *ingest.Service satisfies it.
type Extractor interface {
	ExtractText(ctx context.Context, att kit.Attachment, data []byte) (string, error)
}

type Service struct {
	extract Extractor
	store   storage.Store
	bus     eventbus.Bus
	log     logx.Logger
}

func New(extract Extractor, store storage.Store, bus eventbus.Bus, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{extract: extract, store: store, bus: bus, log: log}
}

// ExtractedEvent is published on the bus after a successful upload.
type ExtractedEvent struct {
	UserID  string `json:"user_id"`
	Entries int    `json:"entries"`
	Saved   bool   `json:"saved"`
}

// HandleUpload runs the full flow and returns the reply to show the user.
// A non-nil error means nothing user-presentable happened (download or
// extraction infrastructure failed); the caller picks the wording.
func (s *Service) HandleUpload(ctx context.Context, dl kit.FileDownloader, userID string, chatID int64, att kit.Attachment) (string, error) {
	if dl == nil || s.extract == nil {
		return "", errors.New("timetable: upload flow not available")
	}

	data, err := dl.DownloadFile(ctx, att.FileID)
	if err != nil {
		return "", fmt.Errorf("download attachment: %w", err)
	}

	text, err := s.extract.ExtractText(ctx, att, data)
	if err != nil {
		return "", err
	}

	entries := schedule.Extract(text)
	if len(entries) == 0 {
		s.log.Info("no schedule detected",
			logx.String("user", userID), logx.Int("text_len", len(text)))
		return "⚠️ Could not detect schedule.", nil
	}

	saved := false
	if s.store != nil {
		if err := s.store.PutChat(ctx, userID, chatID); err != nil {
			return "", fmt.Errorf("save chat ref: %w", err)
		}
		if err := s.store.PutSchedule(ctx, userID, entries); err != nil {
			return "", fmt.Errorf("save schedule: %w", err)
		}
		saved = true
	}

	s.publish(userID, len(entries), saved)
	s.log.Info("schedule extracted",
		logx.String("user", userID), logx.Int("entries", len(entries)), logx.Bool("saved", saved))

	var b strings.Builder
	if saved {
		b.WriteString("📅 Your schedule has been saved:\n")
	} else {
		b.WriteString("📅 Extracted schedule (storage disabled, not saved):\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s at %s\n", e.Subject, e.Time)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// View renders the saved schedule for /schedule.
func (s *Service) View(ctx context.Context, userID string) (string, error) {
	if s.store == nil {
		return "", storage.ErrDisabled
	}
	doc, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(doc.Schedule) == 0 {
		return "⚠️ No schedule saved yet. Send a timetable photo or PDF.", nil
	}
	var b strings.Builder
	b.WriteString("📅 Your schedule:")
	for _, e := range doc.Schedule {
		day := e.Day
		if day == "" {
			day = "Daily"
		}
		fmt.Fprintf(&b, "\n- %s at %s (%s)", e.Subject, e.Time, day)
	}
	return b.String(), nil
}

// Clear wipes the saved schedule.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if s.store == nil {
		return storage.ErrDisabled
	}
	return s.store.PutSchedule(ctx, userID, nil)
}

// FriendlyError maps flow errors onto replies a user can act on.
func FriendlyError(err error) string {
	switch {
	case errors.Is(err, ingest.ErrUnsupported):
		return "⚠️ I can only read timetable photos and PDF files."
	case errors.Is(err, ingest.ErrTooLarge):
		return "⚠️ That file is too large. Please send a smaller one."
	case errors.Is(err, ingest.ErrNoText):
		return "⚠️ I couldn't find any text in that file."
	default:
		return "⚠️ Something went wrong reading that file. Please try again."
	}
}

func (s *Service) publish(userID string, entries int, saved bool) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{
		Type: "schedule.extracted",
		Time: time.Now(),
		Data: ExtractedEvent{UserID: userID, Entries: entries, Saved: saved},
	})
}
