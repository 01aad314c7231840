package queries

import (
	"context"

	layout "github.com/cubeos/go-layout/components/layout"
	gocommand "github.com/goliatone/go-command"
)

// ExportInput has no parameters; the porter exports its own mode.
type ExportInput struct{}

// ExportQuery returns the portable layout document.
type ExportQuery struct {
	porter *layout.Porter
}

// NewExportQuery builds the query.
func NewExportQuery(porter *layout.Porter) *ExportQuery {
	return &ExportQuery{porter: porter}
}

var _ gocommand.Querier[ExportInput, layout.ExportDocument] = (*ExportQuery)(nil)

// Query snapshots the current config as an export document.
func (q *ExportQuery) Query(ctx context.Context, _ ExportInput) (layout.ExportDocument, error) {
	return q.porter.Document(), nil
}
