// Package reminder runs the minute-tick dispatcher: class lead-time alerts
// derived from each user's extracted schedule, plus one-off "remind me"
// items with at-most-once delivery.
package reminder

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"studybot/internal/eventbus"
	"studybot/internal/storage"
	logx "studybot/pkg/logx"
)

// Config controls the dispatcher.
type Config struct {
	Enabled     bool
	LeadMinutes int    // minutes before class start to alert
	Timezone    string // IANA name; empty means local time
}

// Notifier delivers one outbound message to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Clock abstracts wall time so tick behavior is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock used outside tests.
func SystemClock() Clock { return systemClock{} }

type Service struct {
	log    logx.Logger
	store  storage.Store
	notify Notifier
	bus    eventbus.Bus
	clock  Clock

	mu  sync.Mutex
	cfg Config
	c   *cron.Cron
	loc *time.Location

	ticking atomic.Bool
}

func New(cfg Config, store storage.Store, notify Notifier, bus eventbus.Bus, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		log:    log,
		store:  store,
		notify: notify,
		bus:    bus,
		clock:  SystemClock(),
		cfg:    cfg,
		loc:    loadLocation(cfg.Timezone, log),
	}
}

// SetClock replaces the wall clock. Call before Start.
func (s *Service) SetClock(c Clock) {
	if c != nil {
		s.clock = c
	}
}

func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tzChanged := strings.TrimSpace(s.cfg.Timezone) != strings.TrimSpace(cfg.Timezone)
	s.cfg = cfg
	if tzChanged {
		s.loc = loadLocation(cfg.Timezone, s.log)
		if s.c != nil {
			s.stopCronLocked(context.Background())
			s.startCronLocked()
		}
	}
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled
}

// Start begins minute triggering. Safe to call once; Stop undoes it.
func (s *Service) Start(ctx context.Context) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	if !s.cfg.Enabled {
		s.log.Info("dispatcher disabled")
		return
	}
	if s.store == nil {
		s.log.Warn("dispatcher needs storage; not starting")
		return
	}
	s.startCronLocked()
	s.log.Info("dispatcher started",
		logx.Int("lead_minutes", s.cfg.LeadMinutes),
		logx.String("tz", s.loc.String()))
}

func (s *Service) Stop(ctx context.Context) {
	start := time.Now()
	s.mu.Lock()
	s.stopCronLocked(ctx)
	s.mu.Unlock()
	s.log.Info("dispatcher stopped", logx.Duration("took", time.Since(start)))
}

func (s *Service) startCronLocked() {
	s.c = cron.New(cron.WithLocation(s.loc))
	_, _ = s.c.AddFunc("* * * * *", func() { s.onTick(context.Background()) })
	s.c.Start()
}

func (s *Service) stopCronLocked(ctx context.Context) {
	if s.c == nil {
		return
	}
	done := s.c.Stop().Done()
	s.c = nil
	select {
	case <-done:
	case <-ctx.Done():
		// best-effort
	}
}

// onTick guards against overrun: if the previous tick is still dispatching
// (slow storage, many users), this minute is skipped rather than stacked.
func (s *Service) onTick(ctx context.Context) {
	if !s.ticking.CompareAndSwap(false, true) {
		s.log.Warn("tick overrun; skipping this minute")
		return
	}
	defer s.ticking.Store(false)

	s.mu.Lock()
	lead := s.cfg.LeadMinutes
	loc := s.loc
	s.mu.Unlock()

	s.dispatch(ctx, s.clock.Now().In(loc), lead)
}

func loadLocation(name string, log logx.Logger) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("bad timezone; using local", logx.String("tz", name), logx.Err(err))
		return time.Local
	}
	return loc
}
