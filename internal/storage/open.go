package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"studybot/internal/schedule"
	logx "studybot/pkg/logx"
)

// Store is the persistence API used by the bot services.
//
// The Put* methods are partial updates with merge semantics: they replace
// only their own field of the user document and leave everything else —
// including fields unknown to this build — untouched.
type Store interface {
	GetUser(ctx context.Context, userID string) (UserDoc, error)
	ListUserIDs(ctx context.Context) ([]string, error)

	PutChat(ctx context.Context, userID string, chatID int64) error
	PutSchedule(ctx context.Context, userID string, entries []schedule.Entry) error
	PutReminders(ctx context.Context, userID string, reminders []Reminder) error
	PutTodos(ctx context.Context, userID string, todos []Todo) error

	PutDedup(ctx context.Context, key string, until time.Time) error
	GetDedup(ctx context.Context, key string) (until time.Time, ok bool, err error)

	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
