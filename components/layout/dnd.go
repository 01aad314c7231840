package layout

import (
	"context"
	"fmt"
	"sync"
)

// Engine converts a drag gesture into a single layout mutation. Input
// adapters (pointer, touch) reduce their native event streams to Start,
// Hover, and Drop/Cancel calls; the engine owns the state machine and never
// writes config directly; a completed move becomes a Command handed to the
// edit session.
//
// Zone indices refer to rows of the underlying layout structure (the host
// registers zones with the layout index, not the visible index), so hidden
// widgets keep their positions across drags.
type Engine struct {
	store     *ConfigStore
	session   *EditSession
	zones     *ZoneRegistry
	telemetry Telemetry

	mu        sync.Mutex
	active    bool
	widgetID  string
	sourceRow int
	hover     Zone
	hoverSet  bool
}

// EngineOptions configures a drag engine.
type EngineOptions struct {
	Store     *ConfigStore
	Session   *EditSession
	Zones     *ZoneRegistry
	Telemetry Telemetry
}

// NewEngine builds an idle engine.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Zones == nil {
		opts.Zones = NewZoneRegistry()
	}
	return &Engine{
		store:     opts.Store,
		session:   opts.Session,
		zones:     opts.Zones,
		telemetry: normalizeTelemetry(opts.Telemetry),
	}
}

// Zones exposes the drop-zone registry for the host view and touch adapter.
func (e *Engine) Zones() *ZoneRegistry { return e.zones }

// Dragging reports whether a drag is active.
func (e *Engine) Dragging() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// DraggedWidget returns the id being dragged, empty when idle.
func (e *Engine) DraggedWidget() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.widgetID
}

// HoverZone returns the zone currently hovered, if any.
func (e *Engine) HoverZone() (Zone, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hover, e.hoverSet
}

// Start arms a drag for the widget. Drags are exclusive: a second start while
// one is active returns ErrDragActive and leaves the first untouched. Drags
// are only accepted in edit mode.
func (e *Engine) Start(widgetID string) error {
	if e.session != nil && !e.session.Editing() {
		return ErrNotEditing
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		return ErrDragActive
	}
	row, err := e.locate(widgetID)
	if err != nil {
		return err
	}
	e.active = true
	e.widgetID = widgetID
	e.sourceRow = row
	e.hoverSet = false
	return nil
}

func (e *Engine) locate(widgetID string) (int, error) {
	cfg := e.store.Snapshot()
	if e.store.Mode() == ModeAdvanced {
		for i, id := range cfg.SectionOrder {
			if id == widgetID {
				return i, nil
			}
		}
		return -1, ErrUnknownWidget
	}
	if row := cfg.GridLayout.RowOf(widgetID); row >= 0 {
		return row, nil
	}
	return -1, ErrUnknownWidget
}

// Hover updates the live target zone. Invalid zones (out of range, side zone
// on a full or self row) are ignored and clear the current hover; the drag
// stays active. Returns whether the zone was accepted.
func (e *Engine) Hover(zone Zone) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return false
	}
	if !e.zoneValid(zone) {
		e.hoverSet = false
		return false
	}
	e.hover = zone
	e.hoverSet = true
	return true
}

// HoverKey resolves a registered zone by key and hovers it; used by the
// pointer adapter where the DOM target carries the key.
func (e *Engine) HoverKey(key string) bool {
	zone, ok := e.zones.Lookup(key)
	if !ok {
		return false
	}
	return e.Hover(zone)
}

func (e *Engine) zoneValid(zone Zone) bool {
	cfg := e.store.Snapshot()
	if e.store.Mode() == ModeAdvanced {
		if zone.Pairing() {
			return false
		}
		return zone.Index >= 0 && zone.Index < len(cfg.SectionOrder)
	}
	grid := cfg.GridLayout
	if zone.Index < 0 || zone.Index >= len(grid) {
		return false
	}
	if zone.Pairing() {
		target := grid[zone.Index].Row
		if len(target) != 1 {
			return false
		}
		if target[0] == e.widgetID {
			return false
		}
	}
	return true
}

// Drop commits the drag at the current hover zone. Dropping with no valid
// zone cancels silently (an expected interaction outcome, not an error); a
// no-op move records no command. The source widget vanishing mid-drag also
// cancels defensively.
func (e *Engine) Drop(ctx context.Context) error {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return ErrNoDrag
	}
	widgetID := e.widgetID
	zone := e.hover
	hoverSet := e.hoverSet
	e.reset()
	e.mu.Unlock()

	if !hoverSet {
		e.telemetry.Record(ctx, "layout.drag.cancel", map[string]any{"widget": widgetID, "reason": "no_zone"})
		return nil
	}
	return e.commit(ctx, widgetID, zone)
}

// Cancel abandons the drag with no mutation.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Engine) reset() {
	e.active = false
	e.widgetID = ""
	e.sourceRow = -1
	e.hoverSet = false
}

// Move performs a complete programmatic move, for transports that already
// resolved a target zone. Subject to the same edit-mode and validity rules as
// a gesture-driven drag.
func (e *Engine) Move(ctx context.Context, widgetID string, zone Zone) error {
	if e.session != nil && !e.session.Editing() {
		return ErrNotEditing
	}
	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return ErrDragActive
	}
	e.mu.Unlock()
	return e.commit(ctx, widgetID, zone)
}

func (e *Engine) commit(ctx context.Context, widgetID string, zone Zone) error {
	before := e.store.FragmentSnapshot()
	if e.store.Mode() == ModeAdvanced {
		next, err := moveSection(before.SectionOrder, widgetID, zone)
		if err != nil {
			e.telemetry.Record(ctx, "layout.drag.cancel", map[string]any{
				"widget": widgetID, "reason": err.Error(),
			})
			return nil
		}
		if sliceEqual(next, before.SectionOrder) {
			e.telemetry.Record(ctx, "layout.drag.noop", map[string]any{"widget": widgetID})
			return nil
		}
		after := Fragment{SectionOrder: next}
		return e.session.Record(ctx, Command{
			Kind:   CommandMove,
			Before: Fragment{SectionOrder: before.SectionOrder},
			After:  after,
		})
	}

	next, err := moveWidget(before.GridLayout, widgetID, zone)
	if err != nil {
		e.telemetry.Record(ctx, "layout.drag.cancel", map[string]any{
			"widget": widgetID, "reason": err.Error(),
		})
		return nil
	}
	if next.Equal(before.GridLayout) {
		e.telemetry.Record(ctx, "layout.drag.noop", map[string]any{"widget": widgetID})
		return nil
	}
	return e.session.Record(ctx, Command{
		Kind:   CommandMove,
		Before: Fragment{GridLayout: before.GridLayout},
		After:  Fragment{GridLayout: next},
	})
}

// moveWidget applies the commit algorithm: remove the widget from its row
// (deleting the row when it empties; a former pair partner is left alone in
// a now-expandable row), then insert per the target zone. Zone indices are
// interpreted against the pre-removal layout.
func moveWidget(grid GridLayout, widgetID string, zone Zone) (GridLayout, error) {
	srcRow := grid.RowOf(widgetID)
	if srcRow < 0 {
		return nil, ErrUnknownWidget
	}
	if zone.Index < 0 || zone.Index >= len(grid) {
		return nil, fmt.Errorf("layout: drop zone index %d out of range", zone.Index)
	}
	if zone.Pairing() {
		target := grid[zone.Index].Row
		if len(target) != 1 {
			return nil, fmt.Errorf("layout: side zone on row %d requires a single widget", zone.Index)
		}
		if target[0] == widgetID {
			return nil, fmt.Errorf("layout: cannot pair %s with itself", widgetID)
		}
	}

	work := grid.Clone()
	var remaining []string
	for _, id := range work[srcRow].Row {
		if id != widgetID {
			remaining = append(remaining, id)
		}
	}
	rowRemoved := len(remaining) == 0
	if rowRemoved {
		work = append(work[:srcRow], work[srcRow+1:]...)
	} else {
		work[srcRow].Row = remaining
	}

	adjust := func(idx int) int {
		if rowRemoved && srcRow < idx {
			return idx - 1
		}
		return idx
	}

	switch zone.Kind {
	case ZoneBefore, ZoneAfter:
		insertAt := zone.Index
		if zone.Kind == ZoneAfter {
			insertAt++
		}
		insertAt = adjust(insertAt)
		if insertAt > len(work) {
			insertAt = len(work)
		}
		entry := LayoutEntry{Row: []string{widgetID}}
		work = append(work, LayoutEntry{})
		copy(work[insertAt+1:], work[insertAt:])
		work[insertAt] = entry
	case ZoneLeft, ZoneRight:
		target := adjust(zone.Index)
		if target < 0 || target >= len(work) {
			return nil, fmt.Errorf("layout: pair target row %d out of range", zone.Index)
		}
		if zone.Kind == ZoneLeft {
			work[target].Row = append([]string{widgetID}, work[target].Row...)
		} else {
			work[target].Row = append(work[target].Row, widgetID)
		}
	default:
		return nil, fmt.Errorf("layout: unknown zone kind %q", zone.Kind)
	}
	return work, nil
}

// moveSection reorders the flat section list; sections never pair.
func moveSection(order []string, sectionID string, zone Zone) ([]string, error) {
	if zone.Pairing() {
		return nil, fmt.Errorf("layout: sections cannot pair")
	}
	src := -1
	for i, id := range order {
		if id == sectionID {
			src = i
			break
		}
	}
	if src < 0 {
		return nil, ErrUnknownWidget
	}
	if zone.Index < 0 || zone.Index >= len(order) {
		return nil, fmt.Errorf("layout: drop zone index %d out of range", zone.Index)
	}
	work := append([]string(nil), order[:src]...)
	work = append(work, order[src+1:]...)
	insertAt := zone.Index
	if zone.Kind == ZoneAfter {
		insertAt++
	}
	if src < insertAt {
		insertAt--
	}
	if insertAt > len(work) {
		insertAt = len(work)
	}
	out := append([]string(nil), work[:insertAt]...)
	out = append(out, sectionID)
	out = append(out, work[insertAt:]...)
	return out, nil
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
