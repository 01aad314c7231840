package layout

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultLongPress is the touch hold required to arm a drag.
	DefaultLongPress = 300 * time.Millisecond
	// DefaultTouchSlop is the movement allowance before a hold stops being a
	// long-press candidate and is treated as a scroll.
	DefaultTouchSlop = 12.0
	// DefaultEdgeMargin is the viewport band that triggers auto-scroll.
	DefaultEdgeMargin = 64.0
	// DefaultScrollStep is how far one auto-scroll tick moves the viewport.
	DefaultScrollStep = 16.0
)

const (
	armPulse  = 20 * time.Millisecond
	dropPulse = 35 * time.Millisecond
)

// TouchAdapter drives the drag engine from a touch event stream: a long press
// arms the drag, moves hit-test against registered zone rectangles, and
// lifting the finger commits. Timestamps come from the caller so behavior is
// deterministic.
type TouchAdapter struct {
	engine   *Engine
	haptics  Haptics
	scroller Scroller

	longPress  time.Duration
	slop       float64
	edgeMargin float64
	scrollStep float64

	mu       sync.Mutex
	viewport Rect
	touching bool
	armed    bool
	widgetID string
	startX   float64
	startY   float64
	startAt  time.Time
}

// TouchAdapterOptions configures a touch adapter; zero values take defaults.
type TouchAdapterOptions struct {
	Engine     *Engine
	Haptics    Haptics
	Scroller   Scroller
	LongPress  time.Duration
	Slop       float64
	EdgeMargin float64
	ScrollStep float64
	Viewport   Rect
}

// NewTouchAdapter wires a touch adapter to the engine.
func NewTouchAdapter(opts TouchAdapterOptions) *TouchAdapter {
	if opts.LongPress <= 0 {
		opts.LongPress = DefaultLongPress
	}
	if opts.Slop <= 0 {
		opts.Slop = DefaultTouchSlop
	}
	if opts.EdgeMargin <= 0 {
		opts.EdgeMargin = DefaultEdgeMargin
	}
	if opts.ScrollStep <= 0 {
		opts.ScrollStep = DefaultScrollStep
	}
	return &TouchAdapter{
		engine:     opts.Engine,
		haptics:    normalizeHaptics(opts.Haptics),
		scroller:   opts.Scroller,
		longPress:  opts.LongPress,
		slop:       opts.Slop,
		edgeMargin: opts.EdgeMargin,
		scrollStep: opts.ScrollStep,
		viewport:   opts.Viewport,
	}
}

// SetViewport updates the viewport rectangle used for edge auto-scroll.
func (a *TouchAdapter) SetViewport(r Rect) {
	a.mu.Lock()
	a.viewport = r
	a.mu.Unlock()
}

// Armed reports whether the long press completed and a drag is in flight.
func (a *TouchAdapter) Armed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.armed
}

// TouchBegan records a long-press candidate on the widget.
func (a *TouchAdapter) TouchBegan(widgetID string, x, y float64, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.touching {
		return
	}
	a.touching = true
	a.armed = false
	a.widgetID = widgetID
	a.startX, a.startY = x, y
	a.startAt = at
}

// TouchMoved advances the gesture. Before arming, movement past the slop
// hands the gesture back to scrolling; once the hold has lasted the long
// press the drag arms with a haptic pulse. While armed, the point hit-tests
// the zone registry and edge proximity auto-scrolls the viewport.
func (a *TouchAdapter) TouchMoved(x, y float64, at time.Time) {
	a.mu.Lock()
	if !a.touching {
		a.mu.Unlock()
		return
	}
	if !a.armed {
		dx, dy := x-a.startX, y-a.startY
		if dx*dx+dy*dy > a.slop*a.slop {
			a.touching = false
			a.mu.Unlock()
			return
		}
		if at.Sub(a.startAt) < a.longPress {
			a.mu.Unlock()
			return
		}
		widgetID := a.widgetID
		a.mu.Unlock()
		if err := a.engine.Start(widgetID); err != nil {
			a.mu.Lock()
			a.touching = false
			a.mu.Unlock()
			return
		}
		a.haptics.Pulse(armPulse)
		a.mu.Lock()
		a.armed = true
	}
	viewport := a.viewport
	a.mu.Unlock()

	if zone, ok := a.engine.Zones().HitTest(x, y); ok {
		a.engine.Hover(zone)
	} else {
		a.engine.Hover(Zone{Index: -1})
	}
	a.autoScroll(y, viewport)
}

func (a *TouchAdapter) autoScroll(y float64, viewport Rect) {
	if a.scroller == nil || viewport.H <= 0 {
		return
	}
	switch {
	case y < viewport.Y+a.edgeMargin:
		a.scroller.ScrollBy(-a.scrollStep)
	case y > viewport.Y+viewport.H-a.edgeMargin:
		a.scroller.ScrollBy(a.scrollStep)
	}
}

// TouchEnded lifts the finger: an armed drag commits (with a haptic pulse on
// an accepted drop), an unarmed hold is a tap and does nothing.
func (a *TouchAdapter) TouchEnded(ctx context.Context, x, y float64, at time.Time) error {
	a.mu.Lock()
	touching, armed := a.touching, a.armed
	a.touching = false
	a.armed = false
	a.mu.Unlock()
	if !touching || !armed {
		return nil
	}
	if zone, ok := a.engine.Zones().HitTest(x, y); ok {
		a.engine.Hover(zone)
	}
	if _, hovering := a.engine.HoverZone(); hovering {
		a.haptics.Pulse(dropPulse)
	}
	return a.engine.Drop(ctx)
}

// TouchCancelled abandons the gesture and any armed drag.
func (a *TouchAdapter) TouchCancelled() {
	a.mu.Lock()
	touching, armed := a.touching, a.armed
	a.touching = false
	a.armed = false
	a.mu.Unlock()
	if touching && armed {
		a.engine.Cancel()
	}
}
