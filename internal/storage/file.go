package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"studybot/internal/schedule"
	logx "studybot/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Layout under the configured directory:
//   - users/<id>.json  (one document per user)
//   - dedup.json       (notifier dedup snapshot)
//
// Every write goes through a temp file and rename, so a crash mid-write
// leaves the previous document intact.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	usersDir  string
	dedupPath string
	dedup     map[string]int64 // unix milli
	closed    bool
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	root := strings.TrimSpace(cfg.Path)
	if root == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	usersDir := filepath.Join(root, "users")
	if err := os.MkdirAll(usersDir, 0o755); err != nil {
		return nil, err
	}

	dedupPath := filepath.Join(root, "dedup.json")
	dedup := map[string]int64{}
	_ = loadDedupSnapshot(dedupPath, dedup)
	pruneExpiredDedup(dedup)

	return &fileStore{
		log:       log,
		usersDir:  usersDir,
		dedupPath: dedupPath,
		dedup:     dedup,
	}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fileStore) GetUser(ctx context.Context, userID string) (UserDoc, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(userID)
}

func (s *fileStore) ListUserIDs(ctx context.Context) ([]string, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrDisabled
	}

	entries, err := os.ReadDir(s.usersDir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, ok := unescapeID(strings.TrimSuffix(name, ".json"))
		if !ok {
			s.log.Debug("skipping unreadable user file", logx.String("file", name))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *fileStore) PutChat(ctx context.Context, userID string, chatID int64) error {
	return s.update(ctx, userID, func(doc *UserDoc) { doc.ChatID = chatID })
}

func (s *fileStore) PutSchedule(ctx context.Context, userID string, entries []schedule.Entry) error {
	return s.update(ctx, userID, func(doc *UserDoc) { doc.Schedule = entries })
}

func (s *fileStore) PutReminders(ctx context.Context, userID string, reminders []Reminder) error {
	return s.update(ctx, userID, func(doc *UserDoc) { doc.Reminders = reminders })
}

func (s *fileStore) PutTodos(ctx context.Context, userID string, todos []Todo) error {
	return s.update(ctx, userID, func(doc *UserDoc) { doc.Todos = todos })
}

func (s *fileStore) update(ctx context.Context, userID string, mutate func(*UserDoc)) error {
	_ = ctx
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("empty user id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisabled
	}

	doc, err := s.loadLocked(userID)
	if err != nil {
		return err
	}
	mutate(&doc)

	data, err := encodeUserDoc(doc)
	if err != nil {
		return err
	}
	return writeAtomic(s.userPath(userID), data)
}

func (s *fileStore) loadLocked(userID string) (UserDoc, error) {
	if s.closed {
		return UserDoc{}, ErrDisabled
	}
	data, err := os.ReadFile(s.userPath(userID))
	if errors.Is(err, os.ErrNotExist) {
		return UserDoc{}, nil
	}
	if err != nil {
		return UserDoc{}, err
	}
	return decodeUserDoc(data)
}

func (s *fileStore) userPath(userID string) string {
	return filepath.Join(s.usersDir, escapeID(userID)+".json")
}

func (s *fileStore) PutDedup(ctx context.Context, key string, until time.Time) error {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisabled
	}
	s.dedup[key] = until.UnixMilli()
	pruneExpiredDedup(s.dedup)

	data, err := json.Marshal(s.dedup)
	if err != nil {
		return err
	}
	return writeAtomic(s.dedupPath, data)
}

func (s *fileStore) GetDedup(ctx context.Context, key string) (time.Time, bool, error) {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return time.Time{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return time.Time{}, false, ErrDisabled
	}
	ms, ok := s.dedup[key]
	if !ok {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func loadDedupSnapshot(path string, out map[string]int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var m map[string]int64
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return err
	}
	for k, v := range m {
		out[k] = v
	}
	return nil
}

func pruneExpiredDedup(m map[string]int64) {
	now := time.Now().UnixMilli()
	for k, v := range m {
		if v < now {
			delete(m, k)
		}
	}
}

// escapeID maps a user ID to a safe file stem. IDs are usually numeric;
// anything else is percent-escaped so it cannot traverse paths.
func escapeID(id string) string {
	var b strings.Builder
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '-' || c == '_':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteString(hexDigits[c>>4 : c>>4+1])
			b.WriteString(hexDigits[c&0xf : c&0xf+1])
		}
	}
	return b.String()
}

func unescapeID(stem string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(stem); i++ {
		c := stem[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(stem) {
			return "", false
		}
		hi := strings.IndexByte(hexDigits, stem[i+1])
		lo := strings.IndexByte(hexDigits, stem[i+2])
		if hi < 0 || lo < 0 {
			return "", false
		}
		b.WriteByte(byte(hi<<4 | lo))
		i += 2
	}
	return b.String(), true
}

const hexDigits = "0123456789abcdef"
