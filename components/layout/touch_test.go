package layout

import (
	"context"
	"testing"
	"time"
)

type recordingHaptics struct {
	pulses []time.Duration
}

func (h *recordingHaptics) Pulse(d time.Duration) { h.pulses = append(h.pulses, d) }

type recordingScroller struct {
	total float64
}

func (s *recordingScroller) ScrollBy(dy float64) { s.total += dy }

func newTouchFixture(t *testing.T) (*ConfigStore, *Engine, *TouchAdapter, *recordingHaptics) {
	t.Helper()
	store, _, engine := newDragFixture(t)
	engine.Zones().Register("after-1", Zone{Kind: ZoneAfter, Index: 1}, Rect{X: 0, Y: 200, W: 400, H: 20})
	engine.Zones().Register("after-2", Zone{Kind: ZoneAfter, Index: 2}, Rect{X: 0, Y: 320, W: 400, H: 20})
	haptics := &recordingHaptics{}
	adapter := NewTouchAdapter(TouchAdapterOptions{
		Engine:   engine,
		Haptics:  haptics,
		Viewport: Rect{X: 0, Y: 0, W: 400, H: 800},
	})
	return store, engine, adapter, haptics
}

func TestLongPressArmsDragWithHaptic(t *testing.T) {
	_, engine, adapter, haptics := newTouchFixture(t)
	start := time.Now()

	adapter.TouchBegan("clock", 50, 50, start)
	adapter.TouchMoved(52, 51, start.Add(100*time.Millisecond))
	if adapter.Armed() {
		t.Fatal("drag must not arm before the long press elapses")
	}
	adapter.TouchMoved(52, 51, start.Add(DefaultLongPress))
	if !adapter.Armed() {
		t.Fatal("drag should arm after the long press")
	}
	if !engine.Dragging() {
		t.Fatal("engine should have an active drag")
	}
	if len(haptics.pulses) != 1 {
		t.Fatalf("expected one arm pulse, got %d", len(haptics.pulses))
	}
}

func TestMovePastSlopBecomesScroll(t *testing.T) {
	_, engine, adapter, _ := newTouchFixture(t)
	start := time.Now()

	adapter.TouchBegan("clock", 50, 50, start)
	adapter.TouchMoved(50, 50+DefaultTouchSlop+1, start.Add(50*time.Millisecond))
	adapter.TouchMoved(50, 80, start.Add(DefaultLongPress+time.Second))
	if adapter.Armed() || engine.Dragging() {
		t.Fatal("movement past the slop must abandon the long press")
	}
}

func TestArmedDropCommitsMove(t *testing.T) {
	store, _, adapter, haptics := newTouchFixture(t)
	ctx := context.Background()
	start := time.Now()

	adapter.TouchBegan("clock", 50, 50, start)
	adapter.TouchMoved(50, 50, start.Add(DefaultLongPress))
	adapter.TouchMoved(200, 210, start.Add(DefaultLongPress+time.Millisecond))
	if err := adapter.TouchEnded(ctx, 200, 210, start.Add(DefaultLongPress+2*time.Millisecond)); err != nil {
		t.Fatalf("TouchEnded returned error: %v", err)
	}
	want := []string{"search", "clock", "vitals", "network"}
	if got := store.VisibleWidgets().Widgets(); !sliceEqual(got, want) {
		t.Fatalf("after drop: %v, want %v", got, want)
	}
	// Arm pulse plus drop pulse.
	if len(haptics.pulses) != 2 {
		t.Fatalf("expected two pulses, got %d", len(haptics.pulses))
	}
}

func TestTapDoesNothing(t *testing.T) {
	store, _, adapter, haptics := newTouchFixture(t)
	before := store.VisibleWidgets().Widgets()
	start := time.Now()

	adapter.TouchBegan("clock", 50, 50, start)
	if err := adapter.TouchEnded(context.Background(), 50, 50, start.Add(80*time.Millisecond)); err != nil {
		t.Fatalf("TouchEnded returned error: %v", err)
	}
	if got := store.VisibleWidgets().Widgets(); !sliceEqual(got, before) {
		t.Fatalf("tap changed layout: %v", got)
	}
	if len(haptics.pulses) != 0 {
		t.Fatalf("tap should not pulse, got %d", len(haptics.pulses))
	}
}

func TestTouchCancelledAbandonsArmedDrag(t *testing.T) {
	_, engine, adapter, _ := newTouchFixture(t)
	start := time.Now()

	adapter.TouchBegan("clock", 50, 50, start)
	adapter.TouchMoved(50, 50, start.Add(DefaultLongPress))
	if !engine.Dragging() {
		t.Fatal("drag should be active")
	}
	adapter.TouchCancelled()
	if engine.Dragging() || adapter.Armed() {
		t.Fatal("cancel must abandon the drag")
	}
}

func TestEdgeProximityAutoScrolls(t *testing.T) {
	_, engine, _, _ := newTouchFixture(t)
	scroller := &recordingScroller{}
	adapter := NewTouchAdapter(TouchAdapterOptions{
		Engine:   engine,
		Scroller: scroller,
		Viewport: Rect{X: 0, Y: 0, W: 400, H: 800},
	})
	start := time.Now()

	adapter.TouchBegan("clock", 50, 400, start)
	adapter.TouchMoved(50, 400, start.Add(DefaultLongPress))
	adapter.TouchMoved(50, 790, start.Add(DefaultLongPress+time.Millisecond))
	if scroller.total <= 0 {
		t.Fatalf("near the bottom edge should scroll down, total %v", scroller.total)
	}
	adapter.TouchMoved(50, 10, start.Add(DefaultLongPress+2*time.Millisecond))
	if scroller.total != 0 {
		t.Fatalf("top edge should scroll back up by one step, total %v", scroller.total)
	}
	adapter.TouchCancelled()
}
