package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kit "studybot/internal/transport"
	logx "studybot/pkg/logx"
)

type fakeAdapter struct {
	mu    sync.Mutex
	sent  []string
	fails int // fail this many sends before succeeding
}

func (f *fakeAdapter) Start(context.Context, chan<- kit.Update) error { return nil }
func (f *fakeAdapter) Stop(context.Context) error                     { return nil }

func (f *fakeAdapter) SendText(_ context.Context, _ kit.ChatTarget, text string, _ *kit.SendOptions) (kit.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return kit.MessageRef{}, errors.New("flaky")
	}
	f.sent = append(f.sent, text)
	return kit.MessageRef{}, nil
}

func (f *fakeAdapter) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestNotifierDelivers(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{}
	s := New(Config{Enabled: true, RatePerSec: 1000}, ad, logx.Nop(), nil, nil)
	s.Start(context.Background())
	defer s.Stop(context.Background())

	if err := s.Send(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitFor(t, func() bool { return ad.sentCount() == 1 })

	if hist := s.Snapshot(); len(hist) != 1 || hist[0].Text != "hello" {
		t.Fatalf("history = %v", hist)
	}
}

func TestNotifierRetries(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{fails: 2}
	s := New(Config{
		Enabled: true, RatePerSec: 1000,
		RetryMax: 3, RetryBase: time.Millisecond, RetryMaxDelay: 5 * time.Millisecond,
	}, ad, logx.Nop(), nil, nil)
	s.Start(context.Background())
	defer s.Stop(context.Background())

	if err := s.Send(context.Background(), 42, "eventually"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitFor(t, func() bool { return ad.sentCount() == 1 })
}

func TestNotifierDedupWindow(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{}
	s := New(Config{Enabled: true, RatePerSec: 1000, DedupWindow: time.Minute}, ad, logx.Nop(), nil, nil)
	s.Start(context.Background())
	defer s.Stop(context.Background())

	for i := 0; i < 3; i++ {
		if err := s.Send(context.Background(), 42, "same text"); err != nil {
			t.Fatalf("Send #%d: %v", i, err)
		}
	}
	waitFor(t, func() bool { return ad.sentCount() == 1 })
	time.Sleep(20 * time.Millisecond)
	if n := ad.sentCount(); n != 1 {
		t.Fatalf("sent %d, want deduped to 1", n)
	}

	// A different chat is a different key.
	if err := s.Send(context.Background(), 43, "same text"); err != nil {
		t.Fatalf("Send other chat: %v", err)
	}
	waitFor(t, func() bool { return ad.sentCount() == 2 })
}

func TestNotifierDisabled(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: false}, &fakeAdapter{}, logx.Nop(), nil, nil)
	s.Start(context.Background())

	if err := s.Send(context.Background(), 1, "x"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}

func TestNotifierStopThenSend(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{}
	s := New(Config{Enabled: true, RatePerSec: 1000}, ad, logx.Nop(), nil, nil)
	s.Start(context.Background())
	s.Stop(context.Background())

	if err := s.Send(context.Background(), 1, "late"); !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
}
