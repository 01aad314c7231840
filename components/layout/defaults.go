package layout

// Built-in widget catalogue. IDs are stable wire values; removing one breaks
// stored layouts, so additions only.
var defaultDescriptors = []Descriptor{
	{ID: "clock", Label: "Clock", Icon: "clock", Static: true},
	{ID: "search", Label: "Search", Icon: "magnifier", Static: true},
	{ID: "greeting", Label: "Greeting", Icon: "hand-wave", Static: true},
	{ID: "quick-actions", Label: "Quick Actions", Icon: "bolt", Static: true},
	{ID: "vitals", Label: "System Vitals", Icon: "heartbeat", LiveKey: "system.vitals"},
	{ID: "network", Label: "Network", Icon: "globe", LiveKey: "network.stats"},
	{ID: "storage", Label: "Storage", Icon: "drive"},
	{ID: "battery", Label: "Battery / UPS", Icon: "battery"},
	{ID: "sensors", Label: "Hardware Sensors", Icon: "thermometer"},
	{ID: "apps", Label: "My Apps", Icon: "grid"},
	{ID: "favorites", Label: "Favorites", Icon: "star"},
	{ID: "logs", Label: "Logs", Icon: "scroll", LiveKey: "logs.stream"},
	{ID: "alerts", Label: "Alerts", Icon: "bell", LiveKey: "alerts.stream"},
	{ID: "weather", Label: "Weather", Icon: "cloud-sun"},
	{ID: "uptime", Label: "Uptime", Icon: "pulse"},
}

// DefaultDescriptors returns the built-in widget catalogue.
func DefaultDescriptors() []Descriptor {
	out := make([]Descriptor, len(defaultDescriptors))
	copy(out, defaultDescriptors)
	return out
}

// Section ids used by advanced mode. Sections are independently orderable
// blocks; they never pair.
var defaultSections = []string{
	"overview",
	"favorites",
	"apps",
	"monitoring",
	"network",
	"storage",
	"logs",
}

const (
	defaultOpacity      = 100
	defaultRefreshSecs  = 30
	defaultFavoriteCols = 4
	defaultMyAppsRows   = 2

	// MaxQuickActions caps the pinned quick-action list.
	MaxQuickActions = 8
)

func defaultSettings(d Descriptor) WidgetSettings {
	s := WidgetSettings{
		Visible:   true,
		Opacity:   defaultOpacity,
		WidthMode: WidthFull,
	}
	if !d.Static {
		s.RefreshSeconds = defaultRefreshSecs
	}
	return s
}

// DefaultConfig returns the built-in config document for a mode.
func DefaultConfig(mode Mode) Config {
	cfg := Config{
		WidgetSettings:   map[string]WidgetSettings{},
		ShowClock:        true,
		ShowSearch:       true,
		ShowAlerts:       true,
		ShowQuickActions: true,
		QuickActions:     []string{"restart", "shutdown", "update-all"},
		FavoriteCols:     defaultFavoriteCols,
		MyAppsRows:       defaultMyAppsRows,
		ClockFormat:      "24h",
		DateFormat:       "long",
	}
	for _, d := range defaultDescriptors {
		cfg.WidgetSettings[d.ID] = defaultSettings(d)
	}
	switch mode {
	case ModeAdvanced:
		cfg.SectionOrder = append([]string(nil), defaultSections...)
	default:
		cfg.GridLayout = GridLayout{
			{Row: []string{"clock"}},
			{Row: []string{"search"}},
			{Row: []string{"vitals", "network"}},
			{Row: []string{"storage", "battery"}},
			{Row: []string{"apps"}},
			{Row: []string{"logs"}},
			{Row: []string{"alerts"}},
		}
		hidden := []string{"greeting", "sensors", "favorites", "weather", "uptime", "quick-actions"}
		for _, id := range hidden {
			s := cfg.WidgetSettings[id]
			s.Visible = false
			cfg.WidgetSettings[id] = s
			cfg.GridLayout = append(cfg.GridLayout, LayoutEntry{Row: []string{id}})
		}
	}
	return cfg
}

// BuiltinPresets returns the immutable factory presets for a mode.
func BuiltinPresets(mode Mode) []Preset {
	if mode == ModeAdvanced {
		return []Preset{
			{
				ID:          "builtin.default",
				Name:        "Default",
				Description: "Factory section arrangement",
				Icon:        "layout",
				Builtin:     true,
				Mode:        mode,
				Config:      DefaultConfig(mode),
			},
		}
	}
	minimal := DefaultConfig(mode)
	minimal.GridLayout = GridLayout{
		{Row: []string{"clock"}},
		{Row: []string{"search"}},
		{Row: []string{"vitals"}},
	}
	for id, s := range minimal.WidgetSettings {
		switch id {
		case "clock", "search", "vitals":
			s.Visible = true
		default:
			s.Visible = false
			minimal.GridLayout = append(minimal.GridLayout, LayoutEntry{Row: []string{id}})
		}
		minimal.WidgetSettings[id] = s
	}

	ops := DefaultConfig(mode)
	ops.GridLayout = GridLayout{
		{Row: []string{"vitals", "network"}},
		{Row: []string{"logs"}},
		{Row: []string{"alerts"}},
		{Row: []string{"storage", "sensors"}},
		{Row: []string{"uptime"}},
	}
	for id, s := range ops.WidgetSettings {
		switch id {
		case "vitals", "network", "logs", "alerts", "storage", "sensors", "uptime":
			s.Visible = true
		default:
			s.Visible = false
			ops.GridLayout = append(ops.GridLayout, LayoutEntry{Row: []string{id}})
		}
		ops.WidgetSettings[id] = s
	}

	return []Preset{
		{
			ID:          "builtin.default",
			Name:        "Default",
			Description: "Factory layout with the full widget set",
			Icon:        "layout",
			Builtin:     true,
			Mode:        mode,
			Config:      DefaultConfig(mode),
		},
		{
			ID:          "builtin.minimal",
			Name:        "Minimal",
			Description: "Clock, search, and vitals only",
			Icon:        "minus-circle",
			Builtin:     true,
			Mode:        mode,
			Config:      minimal,
		},
		{
			ID:          "builtin.ops",
			Name:        "Operations",
			Description: "Monitoring-first layout for busy appliances",
			Icon:        "activity",
			Builtin:     true,
			Mode:        mode,
			Config:      ops,
		},
	}
}
