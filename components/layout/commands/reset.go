package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

type resetStore interface {
	ResetToDefaults(ctx context.Context)
}

type historyClearer interface {
	ClearHistory()
}

// ResetLayoutInput controls the reset. Resetting discards every
// customization, so transports must set Confirmed.
type ResetLayoutInput struct {
	Confirmed bool `json:"confirmed"`
}

// ResetLayoutCommand restores the built-in default layout and clears the
// undo/redo stacks.
type ResetLayoutCommand struct {
	store     resetStore
	session   historyClearer
	telemetry Telemetry
}

// NewResetLayoutCommand builds a command instance.
func NewResetLayoutCommand(store resetStore, session historyClearer, telemetry Telemetry) *ResetLayoutCommand {
	return &ResetLayoutCommand{store: store, session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetLayoutInput] = (*ResetLayoutCommand)(nil)

// Execute resets the layout. A declined confirmation is a no-op.
func (c *ResetLayoutCommand) Execute(ctx context.Context, msg ResetLayoutInput) error {
	if c.store == nil {
		return errors.New("reset command requires store")
	}
	if !msg.Confirmed {
		c.telemetry.Record(ctx, "layout.reset_declined", nil)
		return nil
	}
	c.store.ResetToDefaults(ctx)
	if c.session != nil {
		c.session.ClearHistory()
	}
	c.telemetry.Record(ctx, "layout.reset", nil)
	return nil
}
