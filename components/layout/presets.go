package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// keyUserPresets stores the user preset list alongside the mode's config
// fields in the same backend document.
const keyUserPresets = "user_presets"

// Preset is a named, reusable snapshot of a full Config document. Built-in
// presets ship with the binary and are immutable; user presets are captured
// from the live config.
type Preset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Builtin     bool      `json:"builtin,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	Mode        Mode      `json:"mode"`
	Config      Config    `json:"config"`
}

// PresetOptions configures a PresetManager.
type PresetOptions struct {
	Store     *ConfigStore
	Session   *EditSession
	Backend   Backend
	Telemetry Telemetry

	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string
}

// PresetManager snapshots, applies, and exchanges whole Config documents for
// one mode.
type PresetManager struct {
	store     *ConfigStore
	session   *EditSession
	backend   Backend
	telemetry Telemetry
	now       func() time.Time
	newID     func() string

	mu       sync.RWMutex
	builtins []Preset
	user     []Preset
}

// NewPresetManager builds a manager seeded with the built-in presets for the
// store's mode.
func NewPresetManager(opts PresetOptions) *PresetManager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &PresetManager{
		store:     opts.Store,
		session:   opts.Session,
		backend:   opts.Backend,
		telemetry: normalizeTelemetry(opts.Telemetry),
		now:       opts.Now,
		newID:     opts.NewID,
		builtins:  BuiltinPresets(opts.Store.Mode()),
	}
}

// Load hydrates the user preset list from the backend. Corrupt data falls
// back to an empty list.
func (m *PresetManager) Load(ctx context.Context) error {
	if m.backend == nil {
		return nil
	}
	stored, err := m.backend.ReadAll(ctx, m.store.Mode())
	if err != nil {
		return fmt.Errorf("layout: load presets: %w", err)
	}
	raw, ok := stored[keyUserPresets]
	if !ok {
		return nil
	}
	var list []Preset
	if err := json.Unmarshal(raw, &list); err != nil {
		m.telemetry.Record(ctx, "layout.presets.corrupt", map[string]any{
			"mode": string(m.store.Mode()), "error": err.Error(),
		})
		return nil
	}
	m.mu.Lock()
	m.user = list
	m.mu.Unlock()
	return nil
}

// Builtins returns the factory presets.
func (m *PresetManager) Builtins() []Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Preset, len(m.builtins))
	copy(out, m.builtins)
	return out
}

// UserPresets returns the user-created presets in creation order.
func (m *PresetManager) UserPresets() []Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Preset, len(m.user))
	copy(out, m.user)
	return out
}

// Find resolves a preset id across built-in and user lists.
func (m *PresetManager) Find(id string) (Preset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.builtins {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range m.user {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// Apply replaces the live config with the preset's document and clears the
// edit history: applying a preset is a deliberate fresh start, not an
// incremental, undoable edit. Confirmation happens at the caller.
func (m *PresetManager) Apply(ctx context.Context, id string) error {
	preset, ok := m.Find(id)
	if !ok {
		return ErrUnknownPreset
	}
	m.store.Replace(ctx, preset.Config.Clone(), "preset:"+id)
	if m.session != nil {
		m.session.ClearHistory()
	}
	m.telemetry.Record(ctx, "layout.preset.apply", map[string]any{
		"preset": id, "mode": string(m.store.Mode()),
	})
	return nil
}

// SaveCurrent captures the live config by value as a new user preset.
func (m *PresetManager) SaveCurrent(ctx context.Context, name, description string) (Preset, error) {
	if name == "" {
		return Preset{}, &ValidationError{Field: "name", Reason: "preset name is required"}
	}
	preset := Preset{
		ID:          m.newID(),
		Name:        name,
		Description: description,
		CreatedAt:   m.now().UTC(),
		Mode:        m.store.Mode(),
		Config:      m.store.Snapshot(),
	}
	m.mu.Lock()
	m.user = append(m.user, preset)
	m.mu.Unlock()
	if err := m.persist(ctx); err != nil {
		return Preset{}, err
	}
	m.telemetry.Record(ctx, "layout.preset.save", map[string]any{"preset": preset.ID})
	return preset, nil
}

// Rename updates a user preset's name. Built-in presets are immutable.
func (m *PresetManager) Rename(ctx context.Context, id, name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Reason: "preset name is required"}
	}
	if m.isBuiltin(id) {
		return ErrBuiltinPreset
	}
	m.mu.Lock()
	found := false
	for i := range m.user {
		if m.user[i].ID == id {
			m.user[i].Name = name
			found = true
			break
		}
	}
	m.mu.Unlock()
	if !found {
		return ErrUnknownPreset
	}
	return m.persist(ctx)
}

// Delete removes a user preset. Confirmation happens at the caller.
func (m *PresetManager) Delete(ctx context.Context, id string) error {
	if m.isBuiltin(id) {
		return ErrBuiltinPreset
	}
	m.mu.Lock()
	found := false
	for i := range m.user {
		if m.user[i].ID == id {
			m.user = append(m.user[:i], m.user[i+1:]...)
			found = true
			break
		}
	}
	m.mu.Unlock()
	if !found {
		return ErrUnknownPreset
	}
	return m.persist(ctx)
}

func (m *PresetManager) isBuiltin(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.builtins {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (m *PresetManager) persist(ctx context.Context) error {
	if m.backend == nil {
		return nil
	}
	m.mu.RLock()
	data, err := json.Marshal(m.user)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("layout: marshal presets: %w", err)
	}
	if err := m.backend.Write(ctx, m.store.Mode(), keyUserPresets, data); err != nil {
		return fmt.Errorf("layout: persist presets: %w", err)
	}
	return nil
}

// PreviewCell is one proportionally sized rectangle in a preset thumbnail.
type PreviewCell struct {
	WidgetID string  `json:"widget_id"`
	Width    float64 `json:"width"` // fraction of the row, 0..1
}

// PreviewRow is one thumbnail row.
type PreviewRow struct {
	Cells []PreviewCell `json:"cells"`
}

// Preview renders a config's grid into proportional thumbnail rows: paired
// widgets split the row, half-width singles take half, everything else spans
// it. Pure and side-effect free.
func Preview(cfg Config) []PreviewRow {
	var out []PreviewRow
	for _, entry := range cfg.GridLayout {
		var cells []PreviewCell
		switch len(entry.Row) {
		case 1:
			id := entry.Row[0]
			width := 1.0
			if s, ok := cfg.WidgetSettings[id]; ok && s.WidthMode == WidthHalf {
				width = 0.5
			}
			if s, ok := cfg.WidgetSettings[id]; ok && !s.Visible {
				continue
			}
			cells = []PreviewCell{{WidgetID: id, Width: width}}
		case 2:
			for _, id := range entry.Row {
				if s, ok := cfg.WidgetSettings[id]; ok && !s.Visible {
					continue
				}
				cells = append(cells, PreviewCell{WidgetID: id, Width: 0.5})
			}
			if len(cells) == 1 {
				cells[0].Width = 1.0
			}
		}
		if len(cells) > 0 {
			out = append(out, PreviewRow{Cells: cells})
		}
	}
	return out
}
