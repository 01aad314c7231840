package queries

import (
	"context"

	layout "github.com/cubeos/go-layout/components/layout"
	gocommand "github.com/goliatone/go-command"
)

// LayoutInput selects which projection of the layout to return.
type LayoutInput struct {
	VisibleOnly bool `json:"visible_only"`
}

// LayoutResult is the resolved layout for one mode.
type LayoutResult struct {
	Mode         layout.Mode                      `json:"mode"`
	Editing      bool                             `json:"editing"`
	GridLayout   layout.GridLayout                `json:"grid_layout"`
	SectionOrder []string                         `json:"section_order"`
	Settings     map[string]layout.WidgetSettings `json:"widget_settings"`
}

// LayoutQuery executes read-only layout resolution against the service.
type LayoutQuery struct {
	service *layout.Service
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service *layout.Service) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[LayoutInput, LayoutResult] = (*LayoutQuery)(nil)

// Query returns either the full persisted layout or only its visible slice.
func (q *LayoutQuery) Query(ctx context.Context, input LayoutInput) (LayoutResult, error) {
	store := q.service.Store()
	cfg := store.Snapshot()
	result := LayoutResult{
		Mode:         q.service.Mode(),
		Editing:      q.service.Session().Editing(),
		GridLayout:   cfg.GridLayout,
		SectionOrder: cfg.SectionOrder,
		Settings:     cfg.WidgetSettings,
	}
	if input.VisibleOnly {
		result.GridLayout = store.VisibleWidgets()
		result.SectionOrder = store.VisibleSections()
	}
	return result, nil
}
