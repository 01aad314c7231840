package commands

import (
	"context"
	"encoding/json"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

type fieldStore interface {
	Update(ctx context.Context, key string, value json.RawMessage) error
}

// UpdateFieldInput sets one persisted config field, such as quick actions or
// the clock format. Values are validated and clamped by the store.
type UpdateFieldInput struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// UpdateFieldCommand wraps ConfigStore.Update for transports.
type UpdateFieldCommand struct {
	store     fieldStore
	telemetry Telemetry
}

// NewUpdateFieldCommand builds a command instance.
func NewUpdateFieldCommand(store fieldStore, telemetry Telemetry) *UpdateFieldCommand {
	return &UpdateFieldCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateFieldInput] = (*UpdateFieldCommand)(nil)

// Execute updates the field.
func (c *UpdateFieldCommand) Execute(ctx context.Context, msg UpdateFieldInput) error {
	if c.store == nil {
		return errors.New("update command requires store")
	}
	if err := c.store.Update(ctx, msg.Key, msg.Value); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "layout.field.update", map[string]any{"key": msg.Key})
	return nil
}
