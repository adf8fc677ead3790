package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"studybot/internal/schedule"
	logx "studybot/pkg/logx"
)

func newFileStore(t *testing.T) Store {
	t.Helper()
	st, err := Open(Config{Driver: "file", Path: t.TempDir()}, logx.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	st := newFileStore(t)
	ctx := context.Background()

	if err := st.PutChat(ctx, "1001", 42); err != nil {
		t.Fatalf("PutChat: %v", err)
	}
	entries := []schedule.Entry{{Subject: "Math", Time: "9:00 AM", Day: "Mon"}}
	if err := st.PutSchedule(ctx, "1001", entries); err != nil {
		t.Fatalf("PutSchedule: %v", err)
	}

	doc, err := st.GetUser(ctx, "1001")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if doc.ChatID != 42 {
		t.Fatalf("ChatID = %d, want 42", doc.ChatID)
	}
	if len(doc.Schedule) != 1 || doc.Schedule[0] != entries[0] {
		t.Fatalf("Schedule = %v, want %v", doc.Schedule, entries)
	}
}

func TestFileStorePartialUpdatesMerge(t *testing.T) {
	t.Parallel()
	st := newFileStore(t)
	ctx := context.Background()

	if err := st.PutReminders(ctx, "u1", []Reminder{{ID: "r1", Text: "call", DueAt: "2026-08-28T10:00:00Z"}}); err != nil {
		t.Fatalf("PutReminders: %v", err)
	}
	if err := st.PutTodos(ctx, "u1", []Todo{{ID: "t1", Task: "revise"}}); err != nil {
		t.Fatalf("PutTodos: %v", err)
	}

	doc, err := st.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if len(doc.Reminders) != 1 || doc.Reminders[0].ID != "r1" {
		t.Fatalf("Reminders = %v, want the earlier write intact", doc.Reminders)
	}
	if len(doc.Todos) != 1 || doc.Todos[0].Task != "revise" {
		t.Fatalf("Todos = %v", doc.Todos)
	}
}

func TestFileStoreMissingUserIsZeroDoc(t *testing.T) {
	t.Parallel()
	st := newFileStore(t)

	doc, err := st.GetUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if doc.ChatID != 0 || len(doc.Schedule) != 0 {
		t.Fatalf("got %+v, want zero doc", doc)
	}
}

func TestFileStoreListUserIDs(t *testing.T) {
	t.Parallel()
	st := newFileStore(t)
	ctx := context.Background()

	for _, id := range []string{"1001", "2002"} {
		if err := st.PutChat(ctx, id, 1); err != nil {
			t.Fatalf("PutChat(%s): %v", id, err)
		}
	}
	ids, err := st.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 2 entries", ids)
	}
}

func TestFileStoreDedupSurvivesReopen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	st, err := Open(Config{Driver: "file", Path: dir}, logx.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	until := time.Now().Add(time.Hour)
	if err := st.PutDedup(ctx, "alert:u1:540", until); err != nil {
		t.Fatalf("PutDedup: %v", err)
	}
	_ = st.Close()

	st2, err := Open(Config{Driver: "file", Path: dir}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	got, ok, err := st2.GetDedup(ctx, "alert:u1:540")
	if err != nil || !ok {
		t.Fatalf("GetDedup: ok=%v err=%v", ok, err)
	}
	if got.UnixMilli() != until.UnixMilli() {
		t.Fatalf("until = %v, want %v", got, until)
	}
}

func TestEscapeIDRoundTrip(t *testing.T) {
	t.Parallel()
	for _, id := range []string{"1001", "user@host", "../evil", "a b"} {
		stem := escapeID(id)
		if filepath.Base(stem) != stem {
			t.Fatalf("escapeID(%q) = %q contains a path separator", id, stem)
		}
		back, ok := unescapeID(stem)
		if !ok || back != id {
			t.Fatalf("round trip %q -> %q -> %q (ok=%v)", id, stem, back, ok)
		}
	}
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none"} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", driver, st, err)
		}
	}
	if _, err := Open(Config{Driver: "bogus"}, logx.Nop()); err == nil {
		t.Fatal("unknown driver should error")
	}
}

func TestFileStoreClosedRejectsWrites(t *testing.T) {
	t.Parallel()
	st := newFileStore(t)
	_ = st.Close()
	if err := st.PutChat(context.Background(), "u1", 1); err == nil {
		t.Fatal("write after Close should fail")
	}
}
