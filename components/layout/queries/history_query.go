package queries

import (
	"context"

	layout "github.com/cubeos/go-layout/components/layout"
	gocommand "github.com/goliatone/go-command"
)

// HistoryInput has no parameters.
type HistoryInput struct{}

// HistoryState mirrors the session stacks so transports can enable or
// disable undo/redo controls.
type HistoryState struct {
	Editing   bool `json:"editing"`
	CanUndo   bool `json:"can_undo"`
	CanRedo   bool `json:"can_redo"`
	UndoCount int  `json:"undo_count"`
	RedoCount int  `json:"redo_count"`
}

// HistoryQuery reads the edit session state.
type HistoryQuery struct {
	session *layout.EditSession
}

// NewHistoryQuery builds the query.
func NewHistoryQuery(session *layout.EditSession) *HistoryQuery {
	return &HistoryQuery{session: session}
}

var _ gocommand.Querier[HistoryInput, HistoryState] = (*HistoryQuery)(nil)

// Query reports the current stack depths.
func (q *HistoryQuery) Query(ctx context.Context, _ HistoryInput) (HistoryState, error) {
	return HistoryState{
		Editing:   q.session.Editing(),
		CanUndo:   q.session.CanUndo(),
		CanRedo:   q.session.CanRedo(),
		UndoCount: q.session.UndoCount(),
		RedoCount: q.session.RedoCount(),
	}, nil
}
