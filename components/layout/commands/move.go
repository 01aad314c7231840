package commands

import (
	"context"
	"errors"

	layout "github.com/cubeos/go-layout/components/layout"
	gocommand "github.com/goliatone/go-command"
)

// MoveWidgetInput names a widget and the drop zone it should land in.
type MoveWidgetInput struct {
	WidgetID string          `json:"widget_id"`
	Zone     layout.ZoneKind `json:"zone"`
	Index    int             `json:"index"`
}

type moveEngine interface {
	Move(ctx context.Context, widgetID string, zone layout.Zone) error
}

// MoveWidgetCommand wraps Engine.Move so transports can relocate widgets
// without running the interactive drag state machine.
type MoveWidgetCommand struct {
	engine    moveEngine
	telemetry Telemetry
}

// NewMoveWidgetCommand creates a command instance.
func NewMoveWidgetCommand(engine moveEngine, telemetry Telemetry) *MoveWidgetCommand {
	return &MoveWidgetCommand{engine: engine, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveWidgetInput] = (*MoveWidgetCommand)(nil)

// Execute delegates to the drag engine.
func (c *MoveWidgetCommand) Execute(ctx context.Context, msg MoveWidgetInput) error {
	if c.engine == nil {
		return errors.New("move command requires engine")
	}
	zone := layout.Zone{Kind: msg.Zone, Index: msg.Index}
	if err := c.engine.Move(ctx, msg.WidgetID, zone); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "layout.widget.move", map[string]any{
		"widget_id": msg.WidgetID,
		"zone":      string(msg.Zone),
		"index":     msg.Index,
	})
	return nil
}
