package commands

import (
	"bytes"
	"context"
	"errors"
	"io"

	layout "github.com/cubeos/go-layout/components/layout"
	gocommand "github.com/goliatone/go-command"
)

type importPorter interface {
	Import(ctx context.Context, r io.Reader) layout.ImportResult
}

// ImportLayoutInput carries a raw export document.
type ImportLayoutInput struct {
	Document []byte `json:"document"`
}

// ImportLayoutCommand wraps Porter.Import. The document is validated before
// anything mutates, so a failed import leaves the layout untouched.
type ImportLayoutCommand struct {
	porter    importPorter
	telemetry Telemetry
}

// NewImportLayoutCommand builds a command instance.
func NewImportLayoutCommand(porter importPorter, telemetry Telemetry) *ImportLayoutCommand {
	return &ImportLayoutCommand{porter: porter, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ImportLayoutInput] = (*ImportLayoutCommand)(nil)

// Execute imports the document.
func (c *ImportLayoutCommand) Execute(ctx context.Context, msg ImportLayoutInput) error {
	if c.porter == nil {
		return errors.New("import command requires porter")
	}
	result := c.porter.Import(ctx, bytes.NewReader(msg.Document))
	if !result.Success {
		return errors.New(result.Error)
	}
	c.telemetry.Record(ctx, "layout.import", map[string]any{
		"bytes": len(msg.Document),
	})
	return nil
}
