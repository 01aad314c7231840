package layout

import (
	"context"
	"encoding/json"
	"time"
)

// Mode selects which of the two independent config documents is active.
// Standard mode arranges widgets in pairable rows; advanced mode arranges
// flat, never-paired sections.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeAdvanced Mode = "advanced"
)

// WidthMode controls how a single-widget row fills the grid.
type WidthMode string

const (
	WidthHalf WidthMode = "half"
	WidthFull WidthMode = "full"
)

// Backend is the opaque preferences store the engine persists into. It has
// read-all/write-one semantics: a load fetches every stored field for a mode,
// a save replaces a single field.
type Backend interface {
	ReadAll(ctx context.Context, mode Mode) (map[string]json.RawMessage, error)
	Write(ctx context.Context, mode Mode, key string, value json.RawMessage) error
}

// LiveChannel reports whether a widget's data arrives over a real-time push
// channel, making its own polling unnecessary.
type LiveChannel interface {
	Covers(widgetID string) bool
}

// Telemetry records layout engine events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Haptics fires tactile pulses on touch-drag milestones. Implementations
// bridge to the host platform; the default is a no-op.
type Haptics interface {
	Pulse(duration time.Duration)
}

// Scroller scrolls the host viewport during touch drags near an edge.
type Scroller interface {
	ScrollBy(dy float64)
}

// LayoutEntry is one grid row holding one or two widget ids. Two-widget rows
// render side by side; a widget id appears in at most one entry per layout.
type LayoutEntry struct {
	Row []string `json:"row" yaml:"row"`
}

// GridLayout is the ordered row list for standard mode. Order is render order.
type GridLayout []LayoutEntry

// Clone returns a deep copy of the layout.
func (g GridLayout) Clone() GridLayout {
	if g == nil {
		return nil
	}
	out := make(GridLayout, len(g))
	for i, entry := range g {
		out[i] = LayoutEntry{Row: append([]string(nil), entry.Row...)}
	}
	return out
}

// Equal reports value equality between two layouts.
func (g GridLayout) Equal(other GridLayout) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if len(g[i].Row) != len(other[i].Row) {
			return false
		}
		for j := range g[i].Row {
			if g[i].Row[j] != other[i].Row[j] {
				return false
			}
		}
	}
	return true
}

// RowOf returns the index of the row containing id, or -1.
func (g GridLayout) RowOf(id string) int {
	for i, entry := range g {
		for _, w := range entry.Row {
			if w == id {
				return i
			}
		}
	}
	return -1
}

// Widgets returns every widget id in render order.
func (g GridLayout) Widgets() []string {
	var out []string
	for _, entry := range g {
		out = append(out, entry.Row...)
	}
	return out
}

// WidgetSettings holds the per-widget appearance and refresh knobs.
type WidgetSettings struct {
	Visible        bool      `json:"visible"`
	Opacity        int       `json:"opacity"`
	HeightPx       int       `json:"height,omitempty"` // 0 means auto
	WidthMode      WidthMode `json:"width_mode"`
	RefreshSeconds int       `json:"refresh_interval_s"`
	Collapsed      bool      `json:"collapsed"`
}

// Config is the full persisted unit for one mode. Standard mode populates
// GridLayout, advanced mode populates SectionOrder; the remaining fields are
// shared by both documents.
type Config struct {
	GridLayout     GridLayout                `json:"grid_layout,omitempty"`
	SectionOrder   []string                  `json:"section_order,omitempty"`
	WidgetSettings map[string]WidgetSettings `json:"widget_settings"`

	ShowClock        bool `json:"show_clock"`
	ShowSearch       bool `json:"show_search"`
	ShowAlerts       bool `json:"show_alerts"`
	ShowQuickActions bool `json:"show_quick_actions"`

	QuickActions []string `json:"quick_actions"`
	FavoriteCols int      `json:"favorite_cols"`
	MyAppsRows   int      `json:"my_apps_rows"`
	ClockFormat  string   `json:"clock_format"`
	DateFormat   string   `json:"date_format"`
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	out := c
	out.GridLayout = c.GridLayout.Clone()
	out.SectionOrder = append([]string(nil), c.SectionOrder...)
	out.QuickActions = append([]string(nil), c.QuickActions...)
	if c.WidgetSettings != nil {
		out.WidgetSettings = make(map[string]WidgetSettings, len(c.WidgetSettings))
		for id, s := range c.WidgetSettings {
			out.WidgetSettings[id] = s
		}
	}
	return out
}

// CommandKind labels the user action that produced a command.
type CommandKind string

const (
	CommandMove     CommandKind = "move"
	CommandToggle   CommandKind = "toggle_visibility"
	CommandResize   CommandKind = "resize"
	CommandReorder  CommandKind = "reorder"
	CommandSettings CommandKind = "settings"
)

// Fragment is the config slice a command touches: the layout structure plus
// the per-widget settings map, deep-copied at record time.
type Fragment struct {
	GridLayout     GridLayout                `json:"grid_layout,omitempty"`
	SectionOrder   []string                  `json:"section_order,omitempty"`
	WidgetSettings map[string]WidgetSettings `json:"widget_settings,omitempty"`
}

// Command is one invertible layout mutation recorded for undo/redo.
type Command struct {
	Kind   CommandKind
	Before Fragment
	After  Fragment
}

// Event describes a committed change transports may want to push to clients.
type Event struct {
	Mode     Mode   `json:"mode"`
	WidgetID string `json:"widget_id,omitempty"`
	Reason   string `json:"reason"`
}
