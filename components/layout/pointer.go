package layout

import "context"

// PointerAdapter translates native browser drag events into engine calls.
// Zone membership is decided by which registered drop target received the
// event, so the host passes the target's zone key rather than coordinates.
type PointerAdapter struct {
	engine *Engine
}

// NewPointerAdapter wires a pointer adapter to the engine.
func NewPointerAdapter(engine *Engine) *PointerAdapter {
	return &PointerAdapter{engine: engine}
}

// DragStart begins a drag for the widget. A drag already in flight is left
// untouched; the duplicate start is ignored.
func (a *PointerAdapter) DragStart(widgetID string) {
	_ = a.engine.Start(widgetID)
}

// DragOver reports the drop target currently under the pointer.
func (a *PointerAdapter) DragOver(zoneKey string) {
	a.engine.HoverKey(zoneKey)
}

// DragLeave clears the hover when the pointer exits every drop target.
func (a *PointerAdapter) DragLeave() {
	a.engine.Hover(Zone{Kind: "", Index: -1})
}

// Drop commits at the current target; with no target the drag cancels
// silently.
func (a *PointerAdapter) Drop(ctx context.Context) error {
	return a.engine.Drop(ctx)
}

// DragEnd fires after drop or on cancel (Escape, drag aborted by the
// browser); any still-active drag is abandoned.
func (a *PointerAdapter) DragEnd() {
	if a.engine.Dragging() {
		a.engine.Cancel()
	}
}
