package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Persisted field keys. Each maps to one top-level Config field so the
// backend keeps its read-all/write-one contract.
const (
	keyGridLayout       = "grid_layout"
	keySectionOrder     = "section_order"
	keyWidgetSettings   = "widget_settings"
	keyShowClock        = "show_clock"
	keyShowSearch       = "show_search"
	keyShowAlerts       = "show_alerts"
	keyShowQuickActions = "show_quick_actions"
	keyQuickActions     = "quick_actions"
	keyFavoriteCols     = "favorite_cols"
	keyMyAppsRows       = "my_apps_rows"
	keyClockFormat      = "clock_format"
	keyDateFormat       = "date_format"
)

var clockFormats = map[string]bool{"12h": true, "24h": true}

var dateFormats = map[string]bool{
	"long": true, "medium": true, "short": true,
	"iso": true, "us": true, "eu": true,
}

// StoreOptions configures a ConfigStore. Backend is required; everything else
// has safe defaults.
type StoreOptions struct {
	Mode      Mode
	Backend   Backend
	Registry  *Registry
	Telemetry Telemetry
	Defaults  *Config

	// FlushDelay is the write-behind debounce window.
	FlushDelay time.Duration
	// MaxRetries bounds persistence retry attempts per flush.
	MaxRetries int
	// RetryBase is the initial retry backoff, doubled per attempt.
	RetryBase time.Duration
}

// ConfigStore is the single source of truth for one mode's live Config.
// In-memory state is authoritative for the session: mutations apply
// synchronously and persistence happens behind a debounced write-behind
// flusher that never rolls the store back on failure.
type ConfigStore struct {
	mode      Mode
	registry  *Registry
	telemetry Telemetry
	defaults  Config
	flusher   *writeBehind

	mu      sync.RWMutex
	cfg     Config
	subs    map[int]func(Event)
	nextSub int
}

// NewConfigStore builds a store seeded with the built-in default config.
// Call Load to hydrate it from the backend.
func NewConfigStore(opts StoreOptions) *ConfigStore {
	if opts.Mode == "" {
		opts.Mode = ModeStandard
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	defaults := DefaultConfig(opts.Mode)
	if opts.Defaults != nil {
		defaults = opts.Defaults.Clone()
	}
	s := &ConfigStore{
		mode:      opts.Mode,
		registry:  opts.Registry,
		telemetry: opts.Telemetry,
		defaults:  defaults,
		cfg:       defaults.Clone(),
		subs:      map[int]func(Event){},
	}
	s.flusher = newWriteBehind(opts.Backend, opts.Mode, opts.Telemetry, opts.FlushDelay, opts.MaxRetries, opts.RetryBase)
	return s
}

// Mode returns the mode this store owns.
func (s *ConfigStore) Mode() Mode { return s.mode }

// Load hydrates the store from the backend. Missing or corrupt fields fall
// back to the built-in defaults per field; unknown widget ids are dropped and
// widgets added to the registry since the config was stored are merged in.
func (s *ConfigStore) Load(ctx context.Context) error {
	stored, err := s.flusher.readAll(ctx)
	if err != nil {
		s.telemetry.Record(ctx, "layout.config.load_failed", map[string]any{
			"mode": string(s.mode), "error": err.Error(),
		})
		s.mu.Lock()
		s.cfg = s.defaults.Clone()
		s.mu.Unlock()
		return nil
	}
	cfg := s.defaults.Clone()
	decode := func(key string, dst any) {
		raw, ok := stored[key]
		if !ok {
			return
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			s.telemetry.Record(ctx, "layout.config.corrupt_field", map[string]any{
				"mode": string(s.mode), "key": key, "error": err.Error(),
			})
		}
	}
	decode(keyGridLayout, &cfg.GridLayout)
	decode(keySectionOrder, &cfg.SectionOrder)
	decode(keyWidgetSettings, &cfg.WidgetSettings)
	decode(keyShowClock, &cfg.ShowClock)
	decode(keyShowSearch, &cfg.ShowSearch)
	decode(keyShowAlerts, &cfg.ShowAlerts)
	decode(keyShowQuickActions, &cfg.ShowQuickActions)
	decode(keyQuickActions, &cfg.QuickActions)
	decode(keyFavoriteCols, &cfg.FavoriteCols)
	decode(keyMyAppsRows, &cfg.MyAppsRows)
	decode(keyClockFormat, &cfg.ClockFormat)
	decode(keyDateFormat, &cfg.DateFormat)

	cfg = normalizeConfig(cfg, s.defaults, s.registry)
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Snapshot returns a deep copy of the live config.
func (s *ConfigStore) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Update validates one field and applies it synchronously; persistence is
// scheduled behind the debounce window. Clampable fields clamp, structural
// fields reject with a ValidationError.
func (s *ConfigStore) Update(ctx context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	if err := s.applyField(&s.cfg, key, value); err != nil {
		s.mu.Unlock()
		return err
	}
	payload, err := s.marshalField(s.cfg, key)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.flusher.enqueue(key, payload)
	s.notify(Event{Mode: s.mode, Reason: "update:" + key})
	return nil
}

func (s *ConfigStore) applyField(cfg *Config, key string, value json.RawMessage) error {
	invalid := func(reason string) error {
		return &ValidationError{Field: key, Reason: reason}
	}
	switch key {
	case keyFavoriteCols:
		var v int
		if err := json.Unmarshal(value, &v); err != nil {
			return invalid(err.Error())
		}
		cfg.FavoriteCols = clampInt(v, 2, 6)
	case keyMyAppsRows:
		var v int
		if err := json.Unmarshal(value, &v); err != nil {
			return invalid(err.Error())
		}
		cfg.MyAppsRows = clampInt(v, 0, 5)
	case keyQuickActions:
		var v []string
		if err := json.Unmarshal(value, &v); err != nil {
			return invalid(err.Error())
		}
		if len(v) > MaxQuickActions {
			return invalid(fmt.Sprintf("at most %d quick actions", MaxQuickActions))
		}
		seen := map[string]bool{}
		for _, id := range v {
			if seen[id] {
				return invalid("duplicate quick action " + id)
			}
			seen[id] = true
		}
		cfg.QuickActions = v
	case keyClockFormat:
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return invalid(err.Error())
		}
		if !clockFormats[v] {
			return invalid("unsupported clock format " + v)
		}
		cfg.ClockFormat = v
	case keyDateFormat:
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return invalid(err.Error())
		}
		if !dateFormats[v] {
			return invalid("unsupported date format " + v)
		}
		cfg.DateFormat = v
	case keyShowClock, keyShowSearch, keyShowAlerts, keyShowQuickActions:
		var v bool
		if err := json.Unmarshal(value, &v); err != nil {
			return invalid(err.Error())
		}
		switch key {
		case keyShowClock:
			cfg.ShowClock = v
		case keyShowSearch:
			cfg.ShowSearch = v
		case keyShowAlerts:
			cfg.ShowAlerts = v
		case keyShowQuickActions:
			cfg.ShowQuickActions = v
		}
	case keyGridLayout:
		var v GridLayout
		if err := json.Unmarshal(value, &v); err != nil {
			return invalid(err.Error())
		}
		cfg.GridLayout = normalizeGrid(v, s.registry)
	case keySectionOrder:
		var v []string
		if err := json.Unmarshal(value, &v); err != nil {
			return invalid(err.Error())
		}
		cfg.SectionOrder = normalizeSections(v, s.defaults.SectionOrder)
	case keyWidgetSettings:
		var v map[string]WidgetSettings
		if err := json.Unmarshal(value, &v); err != nil {
			return invalid(err.Error())
		}
		cfg.WidgetSettings = normalizeSettings(v, s.registry)
	default:
		return invalid("unknown config field")
	}
	return nil
}

func (s *ConfigStore) marshalField(cfg Config, key string) (json.RawMessage, error) {
	var v any
	switch key {
	case keyGridLayout:
		v = cfg.GridLayout
	case keySectionOrder:
		v = cfg.SectionOrder
	case keyWidgetSettings:
		v = cfg.WidgetSettings
	case keyShowClock:
		v = cfg.ShowClock
	case keyShowSearch:
		v = cfg.ShowSearch
	case keyShowAlerts:
		v = cfg.ShowAlerts
	case keyShowQuickActions:
		v = cfg.ShowQuickActions
	case keyQuickActions:
		v = cfg.QuickActions
	case keyFavoriteCols:
		v = cfg.FavoriteCols
	case keyMyAppsRows:
		v = cfg.MyAppsRows
	case keyClockFormat:
		v = cfg.ClockFormat
	case keyDateFormat:
		v = cfg.DateFormat
	default:
		return nil, fmt.Errorf("layout: marshal unknown field %s", key)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("layout: marshal %s: %w", key, err)
	}
	return data, nil
}

// ApplyFragment replaces the config slices a command carries and schedules
// their persistence. Used by the edit session when committing, undoing, and
// redoing commands.
func (s *ConfigStore) ApplyFragment(ctx context.Context, frag Fragment, reason string) {
	s.mu.Lock()
	if frag.GridLayout != nil {
		s.cfg.GridLayout = frag.GridLayout.Clone()
	}
	if frag.SectionOrder != nil {
		s.cfg.SectionOrder = append([]string(nil), frag.SectionOrder...)
	}
	if frag.WidgetSettings != nil {
		settings := make(map[string]WidgetSettings, len(frag.WidgetSettings))
		for id, v := range frag.WidgetSettings {
			settings[id] = v
		}
		s.cfg.WidgetSettings = settings
	}
	cfg := s.cfg
	s.mu.Unlock()

	if frag.GridLayout != nil {
		s.persistField(cfg, keyGridLayout)
	}
	if frag.SectionOrder != nil {
		s.persistField(cfg, keySectionOrder)
	}
	if frag.WidgetSettings != nil {
		s.persistField(cfg, keyWidgetSettings)
	}
	s.notify(Event{Mode: s.mode, Reason: reason})
}

// FragmentSnapshot captures the undoable slice of the live config.
func (s *ConfigStore) FragmentSnapshot() Fragment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings := make(map[string]WidgetSettings, len(s.cfg.WidgetSettings))
	for id, v := range s.cfg.WidgetSettings {
		settings[id] = v
	}
	return Fragment{
		GridLayout:     s.cfg.GridLayout.Clone(),
		SectionOrder:   append([]string(nil), s.cfg.SectionOrder...),
		WidgetSettings: settings,
	}
}

// Replace swaps the whole document, normalizing first. Used by presets and
// import; every field is persisted.
func (s *ConfigStore) Replace(ctx context.Context, cfg Config, reason string) {
	cfg = normalizeConfig(cfg, s.defaults, s.registry)
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.persistAll(cfg)
	s.notify(Event{Mode: s.mode, Reason: reason})
}

// ResetToDefaults replaces the config with the built-in default document.
func (s *ConfigStore) ResetToDefaults(ctx context.Context) {
	s.Replace(ctx, s.defaults.Clone(), "reset")
}

func (s *ConfigStore) persistAll(cfg Config) {
	for _, key := range []string{
		keyGridLayout, keySectionOrder, keyWidgetSettings,
		keyShowClock, keyShowSearch, keyShowAlerts, keyShowQuickActions,
		keyQuickActions, keyFavoriteCols, keyMyAppsRows,
		keyClockFormat, keyDateFormat,
	} {
		s.persistField(cfg, key)
	}
}

func (s *ConfigStore) persistField(cfg Config, key string) {
	payload, err := s.marshalField(cfg, key)
	if err != nil {
		s.telemetry.Record(context.Background(), "layout.config.marshal_failed", map[string]any{
			"mode": string(s.mode), "key": key, "error": err.Error(),
		})
		return
	}
	s.flusher.enqueue(key, payload)
}

// Flush drains pending writes immediately. Call on view teardown so
// last-moment edits are not lost to the debounce window.
func (s *ConfigStore) Flush(ctx context.Context) error {
	return s.flusher.Flush(ctx)
}

// Close stops the background flusher after a final drain.
func (s *ConfigStore) Close() error {
	return s.flusher.Close()
}

// Subscribe registers a callback invoked after every committed mutation.
// The returned cancel func removes the subscription.
func (s *ConfigStore) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *ConfigStore) notify(event Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(event)
	}
}

// VisibleWidgets returns the rows actually rendered: hidden widgets and ids
// missing from the registry are filtered, empty rows dropped. Position data
// for hidden widgets stays in the underlying layout.
func (s *ConfigStore) VisibleWidgets() GridLayout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out GridLayout
	for _, entry := range s.cfg.GridLayout {
		var row []string
		for _, id := range entry.Row {
			if !s.registry.Has(id) {
				continue
			}
			if settings, ok := s.cfg.WidgetSettings[id]; ok && !settings.Visible {
				continue
			}
			row = append(row, id)
		}
		if len(row) > 0 {
			out = append(out, LayoutEntry{Row: row})
		}
	}
	return out
}

// VisibleSections returns the section ids rendered in advanced mode.
func (s *ConfigStore) VisibleSections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, id := range s.cfg.SectionOrder {
		if settings, ok := s.cfg.WidgetSettings[id]; ok && !settings.Visible {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Opacity returns the widget opacity percentage, defaulting to fully opaque.
func (s *ConfigStore) Opacity(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.cfg.WidgetSettings[id]; ok {
		return settings.Opacity
	}
	return defaultOpacity
}

// RefreshInterval returns the widget poll cadence; zero means never poll.
// Static widgets always report zero.
func (s *ConfigStore) RefreshInterval(id string) time.Duration {
	if d, ok := s.registry.Descriptor(id); ok && d.Static {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.cfg.WidgetSettings[id]; ok {
		return time.Duration(settings.RefreshSeconds) * time.Second
	}
	return defaultRefreshSecs * time.Second
}

// WidgetHeight returns the configured pixel height; auto is true when unset.
func (s *ConfigStore) WidgetHeight(id string) (px int, auto bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.cfg.WidgetSettings[id]; ok && settings.HeightPx > 0 {
		return settings.HeightPx, false
	}
	return 0, true
}

// WidgetWidth returns the width mode for a single-widget row.
func (s *ConfigStore) WidgetWidth(id string) WidthMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.cfg.WidgetSettings[id]; ok && settings.WidthMode == WidthHalf {
		return WidthHalf
	}
	return WidthFull
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeConfig makes an arbitrary decoded document safe: unknown ids drop,
// duplicates drop, out-of-range values clamp, and widgets the registry knows
// but the document does not are appended hidden so new releases surface them.
func normalizeConfig(cfg, defaults Config, registry *Registry) Config {
	out := cfg.Clone()
	out.GridLayout = normalizeGrid(out.GridLayout, registry)
	out.SectionOrder = normalizeSections(out.SectionOrder, defaults.SectionOrder)
	out.WidgetSettings = normalizeSettings(out.WidgetSettings, registry)

	// Merge widgets added to the registry after this document was stored.
	if len(defaults.GridLayout) > 0 {
		present := map[string]bool{}
		for _, id := range out.GridLayout.Widgets() {
			present[id] = true
		}
		for _, id := range defaults.GridLayout.Widgets() {
			if !present[id] {
				out.GridLayout = append(out.GridLayout, LayoutEntry{Row: []string{id}})
			}
		}
	}
	for id, s := range defaults.WidgetSettings {
		if _, ok := out.WidgetSettings[id]; !ok {
			out.WidgetSettings[id] = s
		}
	}

	out.FavoriteCols = clampInt(out.FavoriteCols, 2, 6)
	out.MyAppsRows = clampInt(out.MyAppsRows, 0, 5)
	if !clockFormats[out.ClockFormat] {
		out.ClockFormat = defaults.ClockFormat
	}
	if !dateFormats[out.DateFormat] {
		out.DateFormat = defaults.DateFormat
	}

	var actions []string
	seen := map[string]bool{}
	for _, id := range out.QuickActions {
		if id == "" || seen[id] || len(actions) == MaxQuickActions {
			continue
		}
		seen[id] = true
		actions = append(actions, id)
	}
	out.QuickActions = actions
	return out
}

func normalizeGrid(grid GridLayout, registry *Registry) GridLayout {
	var out GridLayout
	seen := map[string]bool{}
	for _, entry := range grid {
		var row []string
		for _, id := range entry.Row {
			if id == "" || seen[id] || !registry.Has(id) || len(row) == 2 {
				continue
			}
			seen[id] = true
			row = append(row, id)
		}
		if len(row) > 0 {
			out = append(out, LayoutEntry{Row: row})
		}
	}
	return out
}

func normalizeSections(order, catalogue []string) []string {
	if catalogue == nil {
		return nil
	}
	known := map[string]bool{}
	for _, id := range catalogue {
		known[id] = true
	}
	var out []string
	seen := map[string]bool{}
	for _, id := range order {
		if !known[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range catalogue {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

func normalizeSettings(settings map[string]WidgetSettings, registry *Registry) map[string]WidgetSettings {
	out := map[string]WidgetSettings{}
	for id, s := range settings {
		s.Opacity = clampInt(s.Opacity, 0, 100)
		if s.RefreshSeconds < 0 {
			s.RefreshSeconds = 0
		}
		if d, ok := registry.Descriptor(id); ok && d.Static {
			s.RefreshSeconds = 0
		}
		if s.WidthMode != WidthHalf {
			s.WidthMode = WidthFull
		}
		if s.HeightPx < 0 {
			s.HeightPx = 0
		}
		out[id] = s
	}
	return out
}
