package layout

import (
	"context"
	"sync"
)

// DefaultHistoryCap bounds the undo and redo stacks; the oldest command is
// dropped beyond it.
const DefaultHistoryCap = 50

// EditSession gates all layout mutation behind an explicit edit mode and
// keeps the undo/redo history. Changes commit to the ConfigStore immediately;
// exiting edit mode only hides affordances and clears the stacks.
type EditSession struct {
	store     *ConfigStore
	telemetry Telemetry
	cap       int

	mu      sync.Mutex
	editing bool
	undo    []Command
	redo    []Command
}

// SessionOptions configures an EditSession.
type SessionOptions struct {
	Store      *ConfigStore
	Telemetry  Telemetry
	HistoryCap int
}

// NewEditSession builds a session in viewing mode.
func NewEditSession(opts SessionOptions) *EditSession {
	if opts.HistoryCap <= 0 {
		opts.HistoryCap = DefaultHistoryCap
	}
	return &EditSession{
		store:     opts.Store,
		telemetry: normalizeTelemetry(opts.Telemetry),
		cap:       opts.HistoryCap,
	}
}

// EnterEdit switches to editing mode. Idempotent.
func (s *EditSession) EnterEdit() {
	s.mu.Lock()
	s.editing = true
	s.mu.Unlock()
}

// ExitEdit returns to viewing mode, clears both stacks, and flushes pending
// persistence so last-moment edits survive teardown. Idempotent.
func (s *EditSession) ExitEdit(ctx context.Context) {
	s.mu.Lock()
	was := s.editing
	s.editing = false
	s.undo = nil
	s.redo = nil
	s.mu.Unlock()
	if was && s.store != nil {
		_ = s.store.Flush(ctx)
	}
}

// Editing reports whether the session accepts mutations.
func (s *EditSession) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// Record pushes a command onto the undo stack, clears the redo stack, and
// applies the command's after state to the store. Rejected outside edit mode.
func (s *EditSession) Record(ctx context.Context, cmd Command) error {
	s.mu.Lock()
	if !s.editing {
		s.mu.Unlock()
		return ErrNotEditing
	}
	s.undo = append(s.undo, cmd)
	if len(s.undo) > s.cap {
		s.undo = s.undo[len(s.undo)-s.cap:]
	}
	s.redo = nil
	s.mu.Unlock()

	s.store.ApplyFragment(ctx, cmd.After, "command:"+string(cmd.Kind))
	s.telemetry.Record(ctx, "layout.command.record", map[string]any{
		"kind": string(cmd.Kind), "mode": string(s.store.Mode()),
	})
	return nil
}

// Undo reverts the most recent command. Returns false on an empty stack.
func (s *EditSession) Undo(ctx context.Context) bool {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return false
	}
	cmd := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, cmd)
	if len(s.redo) > s.cap {
		s.redo = s.redo[len(s.redo)-s.cap:]
	}
	s.mu.Unlock()

	s.store.ApplyFragment(ctx, cmd.Before, "undo:"+string(cmd.Kind))
	s.telemetry.Record(ctx, "layout.command.undo", map[string]any{"kind": string(cmd.Kind)})
	return true
}

// Redo reapplies the most recently undone command. Returns false on an empty
// stack.
func (s *EditSession) Redo(ctx context.Context) bool {
	s.mu.Lock()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		return false
	}
	cmd := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, cmd)
	s.mu.Unlock()

	s.store.ApplyFragment(ctx, cmd.After, "redo:"+string(cmd.Kind))
	s.telemetry.Record(ctx, "layout.command.redo", map[string]any{"kind": string(cmd.Kind)})
	return true
}

// ClearHistory drops both stacks without leaving edit mode. Preset application
// and import call this: replacing state wholesale is a deliberate fresh start,
// not an incremental edit.
func (s *EditSession) ClearHistory() {
	s.mu.Lock()
	s.undo = nil
	s.redo = nil
	s.mu.Unlock()
}

// CanUndo reports whether an undo is available.
func (s *EditSession) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether a redo is available.
func (s *EditSession) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// UndoCount returns the undo stack depth.
func (s *EditSession) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo)
}

// RedoCount returns the redo stack depth.
func (s *EditSession) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo)
}

// ToggleWidget records a visibility flip for a widget. The widget keeps its
// row position while hidden.
func (s *EditSession) ToggleWidget(ctx context.Context, id string, visible bool) error {
	return s.patchSettings(ctx, CommandToggle, id, func(ws *WidgetSettings) {
		ws.Visible = visible
	})
}

// ResizeWidget records a height/width change for a widget.
func (s *EditSession) ResizeWidget(ctx context.Context, id string, heightPx int, width WidthMode) error {
	return s.patchSettings(ctx, CommandResize, id, func(ws *WidgetSettings) {
		if heightPx >= 0 {
			ws.HeightPx = heightPx
		}
		if width == WidthHalf || width == WidthFull {
			ws.WidthMode = width
		}
	})
}

// SetWidgetOpacity records an opacity change, clamped to 0..100.
func (s *EditSession) SetWidgetOpacity(ctx context.Context, id string, opacity int) error {
	return s.patchSettings(ctx, CommandSettings, id, func(ws *WidgetSettings) {
		ws.Opacity = clampInt(opacity, 0, 100)
	})
}

// SetWidgetRefresh records a refresh-cadence change. Static widgets pin to
// zero regardless of the requested value.
func (s *EditSession) SetWidgetRefresh(ctx context.Context, id string, seconds int) error {
	static := false
	if d, ok := s.store.registry.Descriptor(id); ok {
		static = d.Static
	}
	return s.patchSettings(ctx, CommandSettings, id, func(ws *WidgetSettings) {
		if static || seconds < 0 {
			ws.RefreshSeconds = 0
			return
		}
		ws.RefreshSeconds = seconds
	})
}

// SetWidgetCollapsed records a collapse flip.
func (s *EditSession) SetWidgetCollapsed(ctx context.Context, id string, collapsed bool) error {
	return s.patchSettings(ctx, CommandSettings, id, func(ws *WidgetSettings) {
		ws.Collapsed = collapsed
	})
}

func (s *EditSession) patchSettings(ctx context.Context, kind CommandKind, id string, patch func(*WidgetSettings)) error {
	if !s.store.registry.Has(id) {
		if _, inSections := s.sectionSettings(id); !inSections {
			return ErrUnknownWidget
		}
	}
	before := s.store.FragmentSnapshot()
	after := cloneFragment(before)
	ws, ok := after.WidgetSettings[id]
	if !ok {
		ws = WidgetSettings{Visible: true, Opacity: defaultOpacity, WidthMode: WidthFull}
	}
	patch(&ws)
	after.WidgetSettings[id] = ws
	return s.Record(ctx, Command{Kind: kind, Before: before, After: after})
}

func (s *EditSession) sectionSettings(id string) (WidgetSettings, bool) {
	cfg := s.store.Snapshot()
	for _, section := range cfg.SectionOrder {
		if section == id {
			ws, ok := cfg.WidgetSettings[id]
			return ws, ok
		}
	}
	return WidgetSettings{}, false
}

func cloneFragment(f Fragment) Fragment {
	settings := make(map[string]WidgetSettings, len(f.WidgetSettings))
	for id, v := range f.WidgetSettings {
		settings[id] = v
	}
	return Fragment{
		GridLayout:     f.GridLayout.Clone(),
		SectionOrder:   append([]string(nil), f.SectionOrder...),
		WidgetSettings: settings,
	}
}
