package timetable

import (
	"context"
	"errors"
	"strings"
	"testing"

	"studybot/internal/eventbus"
	"studybot/internal/ingest"
	"studybot/internal/storage"
	kit "studybot/internal/transport"
	logx "studybot/pkg/logx"
)

type fakeDownloader struct {
	data []byte
	err  error
}

func (f *fakeDownloader) DownloadFile(context.Context, string) ([]byte, error) {
	return f.data, f.err
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(context.Context, kit.Attachment, []byte) (string, error) {
	return f.text, f.err
}

func newStore(t *testing.T) storage.Store {
	t.Helper()
	st, err := storage.Open(storage.Config{Driver: "file", Path: t.TempDir()}, logx.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

const timetableText = "Monday\n9:00 AM - 10:15 AM Math\nWednesday\n2:00 PM Physics"

func TestHandleUploadSavesSchedule(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	bus := eventbus.New()
	events, cancel := bus.Subscribe(4)
	defer cancel()

	s := New(&fakeExtractor{text: timetableText}, st, bus, logx.Nop())
	att := kit.Attachment{Kind: kit.AttachmentDocument, FileID: "f1", FileName: "tt.pdf"}
	reply, err := s.HandleUpload(context.Background(), &fakeDownloader{data: []byte("%PDF-")}, "u1", 42, att)
	if err != nil {
		t.Fatalf("HandleUpload: %v", err)
	}
	if !strings.HasPrefix(reply, "📅 Your schedule has been saved:") {
		t.Fatalf("reply = %q", reply)
	}
	if !strings.Contains(reply, "Math") || !strings.Contains(reply, "Physics") {
		t.Fatalf("reply = %q", reply)
	}

	doc, err := st.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if doc.ChatID != 42 {
		t.Fatalf("chat id = %d", doc.ChatID)
	}
	if len(doc.Schedule) != 2 {
		t.Fatalf("schedule = %+v", doc.Schedule)
	}

	select {
	case ev := <-events:
		if ev.Type != "schedule.extracted" {
			t.Fatalf("event type = %q", ev.Type)
		}
		data, ok := ev.Data.(ExtractedEvent)
		if !ok || data.Entries != 2 || !data.Saved {
			t.Fatalf("event data = %+v", ev.Data)
		}
	default:
		t.Fatal("no event published")
	}
}

func TestHandleUploadNoScheduleDetected(t *testing.T) {
	t.Parallel()
	s := New(&fakeExtractor{text: "lorem ipsum, nothing here"}, newStore(t), nil, logx.Nop())
	reply, err := s.HandleUpload(context.Background(), &fakeDownloader{data: []byte("x")}, "u1", 42,
		kit.Attachment{Kind: kit.AttachmentPhoto, FileID: "f1"})
	if err != nil {
		t.Fatalf("HandleUpload: %v", err)
	}
	if reply != "⚠️ Could not detect schedule." {
		t.Fatalf("reply = %q", reply)
	}
}

func TestHandleUploadWithoutStore(t *testing.T) {
	t.Parallel()
	s := New(&fakeExtractor{text: timetableText}, nil, nil, logx.Nop())
	reply, err := s.HandleUpload(context.Background(), &fakeDownloader{data: []byte("x")}, "u1", 42,
		kit.Attachment{Kind: kit.AttachmentPhoto, FileID: "f1"})
	if err != nil {
		t.Fatalf("HandleUpload: %v", err)
	}
	if !strings.Contains(reply, "not saved") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestHandleUploadDownloadError(t *testing.T) {
	t.Parallel()
	s := New(&fakeExtractor{}, nil, nil, logx.Nop())
	_, err := s.HandleUpload(context.Background(), &fakeDownloader{err: errors.New("boom")}, "u1", 42,
		kit.Attachment{FileID: "f1"})
	if err == nil {
		t.Fatal("want error")
	}
}

func TestViewAndClear(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	s := New(&fakeExtractor{text: timetableText}, st, nil, logx.Nop())
	ctx := context.Background()

	got, err := s.View(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "No schedule saved yet") {
		t.Fatalf("empty view = %q", got)
	}

	if _, err := s.HandleUpload(ctx, &fakeDownloader{data: []byte("x")}, "u1", 42,
		kit.Attachment{Kind: kit.AttachmentPhoto, FileID: "f1"}); err != nil {
		t.Fatal(err)
	}
	got, err = s.View(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Math") || !strings.Contains(got, "(Monday)") {
		t.Fatalf("view = %q", got)
	}

	if err := s.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err = s.View(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "No schedule saved yet") {
		t.Fatalf("view after clear = %q", got)
	}
}

func TestFriendlyError(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  error
		want string
	}{
		{ingest.ErrUnsupported, "photos and PDF"},
		{ingest.ErrTooLarge, "too large"},
		{ingest.ErrNoText, "any text"},
		{errors.New("weird"), "Something went wrong"},
	}
	for _, c := range cases {
		if got := FriendlyError(c.err); !strings.Contains(got, c.want) {
			t.Fatalf("FriendlyError(%v) = %q, want containing %q", c.err, got, c.want)
		}
	}
}
