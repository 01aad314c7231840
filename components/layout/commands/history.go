package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

type historySession interface {
	EnterEdit()
	ExitEdit(ctx context.Context)
	Undo(ctx context.Context) bool
	Redo(ctx context.Context) bool
}

// EditModeInput switches the edit session on or off.
type EditModeInput struct {
	Editing bool `json:"editing"`
}

// EditModeCommand toggles edit mode. Leaving edit mode clears history and
// flushes pending writes.
type EditModeCommand struct {
	session   historySession
	telemetry Telemetry
}

// NewEditModeCommand builds a command instance.
func NewEditModeCommand(session historySession, telemetry Telemetry) *EditModeCommand {
	return &EditModeCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[EditModeInput] = (*EditModeCommand)(nil)

// Execute enters or exits edit mode.
func (c *EditModeCommand) Execute(ctx context.Context, msg EditModeInput) error {
	if c.session == nil {
		return errors.New("edit mode command requires session")
	}
	if msg.Editing {
		c.session.EnterEdit()
	} else {
		c.session.ExitEdit(ctx)
	}
	c.telemetry.Record(ctx, "layout.edit.mode", map[string]any{"editing": msg.Editing})
	return nil
}

// HistoryInput selects the direction to step through history.
type HistoryInput struct {
	Redo bool `json:"redo"`
}

// HistoryCommand steps the undo/redo stacks. An empty stack is a no-op, not
// an error.
type HistoryCommand struct {
	session   historySession
	telemetry Telemetry
}

// NewHistoryCommand builds a command instance.
func NewHistoryCommand(session historySession, telemetry Telemetry) *HistoryCommand {
	return &HistoryCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[HistoryInput] = (*HistoryCommand)(nil)

// Execute performs the undo or redo step.
func (c *HistoryCommand) Execute(ctx context.Context, msg HistoryInput) error {
	if c.session == nil {
		return errors.New("history command requires session")
	}
	var applied bool
	if msg.Redo {
		applied = c.session.Redo(ctx)
	} else {
		applied = c.session.Undo(ctx)
	}
	c.telemetry.Record(ctx, "layout.edit.history", map[string]any{
		"redo":    msg.Redo,
		"applied": applied,
	})
	return nil
}
