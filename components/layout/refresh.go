package layout

import (
	"context"
	"sync"
	"time"
)

// RefreshFunc is invoked when a widget's poll timer fires.
type RefreshFunc func(widgetID string)

// SchedulerOptions configures a refresh Scheduler.
type SchedulerOptions struct {
	Store     *ConfigStore
	Live      LiveChannel
	Refresh   RefreshFunc
	Telemetry Telemetry
}

// Scheduler drives per-widget refresh timers. Each timer is independent and
// restarts whenever its governing inputs change: configured interval,
// visibility, collapse state, or live-channel coverage. Widgets covered by
// the push channel never poll.
type Scheduler struct {
	store     *ConfigStore
	live      LiveChannel
	fn        RefreshFunc
	telemetry Telemetry

	mu      sync.Mutex
	started bool
	paused  bool
	timers  map[string]*refreshTimer
	unsub   func()
	ctx     context.Context
	cancel  context.CancelFunc
}

type refreshTimer struct {
	interval time.Duration
	cancel   context.CancelFunc
}

// NewScheduler builds a stopped scheduler.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	return &Scheduler{
		store:     opts.Store,
		live:      normalizeLiveChannel(opts.Live),
		fn:        opts.Refresh,
		telemetry: normalizeTelemetry(opts.Telemetry),
		timers:    map[string]*refreshTimer{},
	}
}

// Start arms timers for the current config and re-arms on every committed
// store mutation.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.unsub = s.store.Subscribe(func(Event) { s.Rebuild() })
	s.Rebuild()
}

// Stop clears every timer and detaches from the store. Safe to call twice.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.cancel()
	for id, t := range s.timers {
		t.cancel()
		delete(s.timers, id)
	}
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Pause idles every timer without forgetting them; used on tab-hidden.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return
	}
	s.paused = true
	for id, t := range s.timers {
		t.cancel()
		delete(s.timers, id)
	}
}

// Resume fires an immediate refresh for every due widget, then restores the
// regular cadence; used when the tab becomes visible again.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	if !s.paused {
		s.mu.Unlock()
		return
	}
	s.paused = false
	s.mu.Unlock()

	for id := range s.desired() {
		s.fire(id)
	}
	s.Rebuild()
}

// Rebuild diffs the desired timer set against the running one, restarting
// only timers whose interval changed and stopping the no-longer-needed.
func (s *Scheduler) Rebuild() {
	want := s.desired()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.paused {
		return
	}
	for id, t := range s.timers {
		interval, ok := want[id]
		if ok && interval == t.interval {
			delete(want, id)
			continue
		}
		t.cancel()
		delete(s.timers, id)
	}
	for id, interval := range want {
		ctx, cancel := context.WithCancel(s.ctx)
		s.timers[id] = &refreshTimer{interval: interval, cancel: cancel}
		go s.run(ctx, id, interval)
	}
}

// desired computes which widgets should poll and how often.
func (s *Scheduler) desired() map[string]time.Duration {
	want := map[string]time.Duration{}
	cfg := s.store.Snapshot()
	var ids []string
	if s.store.Mode() == ModeAdvanced {
		ids = s.store.VisibleSections()
	} else {
		ids = s.store.VisibleWidgets().Widgets()
	}
	for _, id := range ids {
		if settings, ok := cfg.WidgetSettings[id]; ok && settings.Collapsed {
			continue
		}
		if s.live.Covers(id) {
			continue
		}
		interval := s.store.RefreshInterval(id)
		if interval <= 0 {
			continue
		}
		want[id] = interval
	}
	return want
}

func (s *Scheduler) run(ctx context.Context, id string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(id)
		}
	}
}

func (s *Scheduler) fire(id string) {
	if s.fn != nil {
		s.fn(id)
	}
}
