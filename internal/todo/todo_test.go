package todo

import (
	"context"
	"strings"
	"testing"

	"studybot/internal/storage"
	logx "studybot/pkg/logx"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := storage.Open(storage.Config{Driver: "file", Path: t.TempDir()}, logx.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return New(st, logx.Nop())
}

func TestAddAndList(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	added, err := s.Add(ctx, "u1", "Read ch 3")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == "" || added.Task != "Read ch 3" || added.Done {
		t.Fatalf("added = %+v", added)
	}
	if _, err := s.Add(ctx, "u1", "Review notes"); err != nil {
		t.Fatalf("Add #2: %v", err)
	}

	got, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Task != "Read ch 3" || got[1].Task != "Review notes" {
		t.Fatalf("list = %+v", got)
	}
}

func TestAddRejectsEmpty(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	if _, err := s.Add(context.Background(), "u1", "   "); err != ErrEmptyTask {
		t.Fatalf("err = %v, want ErrEmptyTask", err)
	}
}

func TestMarkDone(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, "u1", "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(ctx, "u1", "two"); err != nil {
		t.Fatal(err)
	}

	done, err := s.MarkDone(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if done.Task != "two" || !done.Done {
		t.Fatalf("done = %+v", done)
	}

	got, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Done || !got[1].Done {
		t.Fatalf("list = %+v", got)
	}
}

func TestMarkDoneBadIndex(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()
	if _, err := s.Add(ctx, "u1", "only"); err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{0, 2, -1} {
		if _, err := s.MarkDone(ctx, "u1", n); err != ErrBadIndex {
			t.Fatalf("MarkDone(%d) err = %v, want ErrBadIndex", n, err)
		}
	}
}

func TestUsersAreIsolated(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()
	if _, err := s.Add(ctx, "alice", "hers"); err != nil {
		t.Fatal(err)
	}
	got, err := s.List(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("bob sees %+v", got)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()
	if got := Render(nil); got != "📝 No tasks." {
		t.Fatalf("empty render = %q", got)
	}
	got := Render([]storage.Todo{
		{Task: "Read ch 3", Done: true},
		{Task: "Mock exam"},
	})
	want := "📝 Your To-Do List:\n1. ✔️ Read ch 3\n2. ❌ Mock exam"
	if got != want {
		t.Fatalf("render:\n%q\nwant:\n%q", got, want)
	}
	if !strings.HasPrefix(got, "📝") {
		t.Fatal("missing header")
	}
}

func TestNoStore(t *testing.T) {
	t.Parallel()
	s := New(nil, logx.Nop())
	if _, err := s.Add(context.Background(), "u", "x"); err != ErrNoStore {
		t.Fatalf("err = %v, want ErrNoStore", err)
	}
	if _, err := s.List(context.Background(), "u"); err != ErrNoStore {
		t.Fatalf("err = %v, want ErrNoStore", err)
	}
}
