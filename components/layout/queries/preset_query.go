package queries

import (
	"context"

	layout "github.com/cubeos/go-layout/components/layout"
	gocommand "github.com/goliatone/go-command"
)

// PresetListInput filters the preset listing.
type PresetListInput struct {
	UserOnly bool `json:"user_only"`
}

// PresetListItem is one preset summary with its thumbnail.
type PresetListItem struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Icon    string              `json:"icon,omitempty"`
	Builtin bool                `json:"builtin,omitempty"`
	Preview []layout.PreviewRow `json:"preview"`
}

// PresetListQuery lists built-in and user presets with preview thumbnails.
type PresetListQuery struct {
	presets *layout.PresetManager
}

// NewPresetListQuery builds the query.
func NewPresetListQuery(presets *layout.PresetManager) *PresetListQuery {
	return &PresetListQuery{presets: presets}
}

var _ gocommand.Querier[PresetListInput, []PresetListItem] = (*PresetListQuery)(nil)

// Query lists presets, built-ins first.
func (q *PresetListQuery) Query(ctx context.Context, input PresetListInput) ([]PresetListItem, error) {
	var presets []layout.Preset
	if !input.UserOnly {
		presets = q.presets.Builtins()
	}
	presets = append(presets, q.presets.UserPresets()...)

	items := make([]PresetListItem, 0, len(presets))
	for _, preset := range presets {
		items = append(items, PresetListItem{
			ID:      preset.ID,
			Name:    preset.Name,
			Icon:    preset.Icon,
			Builtin: preset.Builtin,
			Preview: layout.Preview(preset.Config),
		})
	}
	return items, nil
}
