package layout

import (
	"context"
	"time"
)

// Options configures the layout Service. Every collaborator is provided via
// interface so host shells can swap implementations without importing
// internal go-layout packages.
type Options struct {
	Mode      Mode
	Backend   Backend
	Registry  *Registry
	Live      LiveChannel
	Haptics   Haptics
	Telemetry Telemetry
	Refresh   RefreshFunc

	// FlushDelay overrides the write-behind debounce window.
	FlushDelay time.Duration
	// HistoryCap overrides the undo/redo depth.
	HistoryCap int
}

// Service is the aggregate entry point for one mode's layout: config store,
// edit session, drag engine, presets, export/import, and refresh scheduling.
type Service struct {
	opts      Options
	registry  *Registry
	store     *ConfigStore
	session   *EditSession
	zones     *ZoneRegistry
	drag      *Engine
	pointer   *PointerAdapter
	touch     *TouchAdapter
	presets   *PresetManager
	porter    *Porter
	scheduler *Scheduler
	telemetry Telemetry
}

// NewService builds a Service instance with safe defaults. The config is not
// loaded until Start is called.
func NewService(opts Options) *Service {
	if opts.Mode == "" {
		opts.Mode = ModeStandard
	}
	if opts.Backend == nil {
		opts.Backend = NewMemoryBackend()
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)

	store := NewConfigStore(StoreOptions{
		Mode:       opts.Mode,
		Backend:    opts.Backend,
		Registry:   opts.Registry,
		Telemetry:  opts.Telemetry,
		FlushDelay: opts.FlushDelay,
	})
	session := NewEditSession(SessionOptions{
		Store:      store,
		Telemetry:  opts.Telemetry,
		HistoryCap: opts.HistoryCap,
	})
	zones := NewZoneRegistry()
	drag := NewEngine(EngineOptions{
		Store:     store,
		Session:   session,
		Zones:     zones,
		Telemetry: opts.Telemetry,
	})
	presets := NewPresetManager(PresetOptions{
		Store:     store,
		Session:   session,
		Backend:   opts.Backend,
		Telemetry: opts.Telemetry,
	})
	porter := NewPorter(PorterOptions{
		Store:     store,
		Session:   session,
		Telemetry: opts.Telemetry,
	})
	pointer := NewPointerAdapter(drag)
	touch := NewTouchAdapter(TouchAdapterOptions{
		Engine:  drag,
		Haptics: opts.Haptics,
	})
	scheduler := NewScheduler(SchedulerOptions{
		Store:     store,
		Live:      opts.Live,
		Refresh:   opts.Refresh,
		Telemetry: opts.Telemetry,
	})
	return &Service{
		opts:      opts,
		registry:  opts.Registry,
		store:     store,
		session:   session,
		zones:     zones,
		drag:      drag,
		pointer:   pointer,
		touch:     touch,
		presets:   presets,
		porter:    porter,
		scheduler: scheduler,
		telemetry: opts.Telemetry,
	}
}

// Start loads persisted state and arms the refresh scheduler.
func (s *Service) Start(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		return err
	}
	s.scheduler.Start(ctx)
	return nil
}

// Stop halts refresh timers and flushes pending writes.
func (s *Service) Stop(ctx context.Context) error {
	s.scheduler.Stop()
	s.session.ExitEdit(ctx)
	return s.store.Flush(ctx)
}

// Mode reports which layout variant this service drives.
func (s *Service) Mode() Mode { return s.opts.Mode }

// Registry exposes the widget catalog.
func (s *Service) Registry() *Registry { return s.registry }

// Store exposes the config store for reads and direct field updates.
func (s *Service) Store() *ConfigStore { return s.store }

// Session exposes the edit session for mode toggles and history.
func (s *Service) Session() *EditSession { return s.session }

// Zones exposes the drop-zone registry for the host to populate.
func (s *Service) Zones() *ZoneRegistry { return s.zones }

// Drag exposes the drag-and-drop engine.
func (s *Service) Drag() *Engine { return s.drag }

// Pointer exposes the desktop pointer adapter for the drag engine.
func (s *Service) Pointer() *PointerAdapter { return s.pointer }

// Touch exposes the long-press touch adapter for the drag engine.
func (s *Service) Touch() *TouchAdapter { return s.touch }

// Presets exposes preset management.
func (s *Service) Presets() *PresetManager { return s.presets }

// Porter exposes export/import.
func (s *Service) Porter() *Porter { return s.porter }

// Scheduler exposes refresh pause/resume control.
func (s *Service) Scheduler() *Scheduler { return s.scheduler }
