package layout

import (
	"math"
	"sync"
)

// ZoneKind names the drop-zone taxonomy evaluated during a drag.
type ZoneKind string

const (
	// ZoneBefore inserts the dragged widget as a new full-width row at the
	// zone's index.
	ZoneBefore ZoneKind = "before"
	// ZoneAfter inserts after the zone's index.
	ZoneAfter ZoneKind = "after"
	// ZoneLeft pairs the dragged widget into slot 0 of a single-widget row.
	ZoneLeft ZoneKind = "left"
	// ZoneRight pairs into slot 1.
	ZoneRight ZoneKind = "right"
)

// Zone identifies one drop target against the currently rendered layout.
type Zone struct {
	Kind  ZoneKind `json:"kind"`
	Index int      `json:"index"`
}

// Pairing reports whether dropping here pairs into an existing row.
func (z Zone) Pairing() bool {
	return z.Kind == ZoneLeft || z.Kind == ZoneRight
}

// Rect is an on-screen rectangle in viewport coordinates.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func (r Rect) distance(x, y float64) float64 {
	dx := math.Max(math.Max(r.X-x, 0), x-(r.X+r.W))
	dy := math.Max(math.Max(r.Y-y, 0), y-(r.Y+r.H))
	return math.Hypot(dx, dy)
}

// RectProvider returns the current rectangle for a zone key, reported by the
// host view after layout changes.
type RectProvider func(key string) (Rect, bool)

// DefaultSnapRadius is how far outside a zone rect a touch point may fall and
// still snap to the nearest zone.
const DefaultSnapRadius = 40.0

type registeredZone struct {
	key  string
	zone Zone
	rect Rect
}

// ZoneRegistry is the seam between the drag engine and the rendering layer:
// the host registers a rectangle per drop zone and the touch adapter
// hit-tests against them. Pointer-based drags resolve zones by key instead.
type ZoneRegistry struct {
	mu         sync.RWMutex
	zones      map[string]registeredZone
	snapRadius float64
}

// NewZoneRegistry creates an empty registry with the default snap radius.
func NewZoneRegistry() *ZoneRegistry {
	return &ZoneRegistry{
		zones:      map[string]registeredZone{},
		snapRadius: DefaultSnapRadius,
	}
}

// SetSnapRadius overrides the touch snap distance.
func (r *ZoneRegistry) SetSnapRadius(radius float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapRadius = radius
}

// Register adds or replaces a drop zone.
func (r *ZoneRegistry) Register(key string, zone Zone, rect Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[key] = registeredZone{key: key, zone: zone, rect: rect}
}

// Clear removes every zone; called when the host view unmounts or rerenders
// from scratch.
func (r *ZoneRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones = map[string]registeredZone{}
}

// RefreshRects re-reads rectangles from the host after a layout change.
// Zones the provider no longer knows are dropped.
func (r *ZoneRegistry) RefreshRects(provider RectProvider) {
	if provider == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, rz := range r.zones {
		rect, ok := provider(key)
		if !ok {
			delete(r.zones, key)
			continue
		}
		rz.rect = rect
		r.zones[key] = rz
	}
}

// Lookup resolves a zone by key.
func (r *ZoneRegistry) Lookup(key string) (Zone, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rz, ok := r.zones[key]
	return rz.zone, ok
}

// HitTest finds the zone under the point, or the nearest zone within the snap
// radius. A containing zone always wins over a nearby one.
func (r *ZoneRegistry) HitTest(x, y float64) (Zone, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	best := registeredZone{}
	bestDist := math.Inf(1)
	found := false
	for _, rz := range r.zones {
		if rz.rect.contains(x, y) {
			return rz.zone, true
		}
		if d := rz.rect.distance(x, y); d < bestDist {
			best = rz
			bestDist = d
			found = true
		}
	}
	if found && bestDist <= r.snapRadius {
		return best.zone, true
	}
	return Zone{}, false
}

// Len returns the registered zone count.
func (r *ZoneRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.zones)
}
