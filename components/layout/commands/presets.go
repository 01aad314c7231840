package commands

import (
	"context"
	"errors"

	layout "github.com/cubeos/go-layout/components/layout"
	gocommand "github.com/goliatone/go-command"
)

type presetManager interface {
	Apply(ctx context.Context, id string) error
	SaveCurrent(ctx context.Context, name, description string) (layout.Preset, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// ApplyPresetInput selects the preset to apply. Applying replaces the whole
// layout and cannot be undone, so transports must set Confirmed once the user
// has acknowledged the prompt.
type ApplyPresetInput struct {
	PresetID  string `json:"preset_id"`
	Confirmed bool   `json:"confirmed"`
}

// ApplyPresetCommand wraps PresetManager.Apply behind a confirmation gate.
type ApplyPresetCommand struct {
	presets   presetManager
	telemetry Telemetry
}

// NewApplyPresetCommand builds a command instance.
func NewApplyPresetCommand(presets presetManager, telemetry Telemetry) *ApplyPresetCommand {
	return &ApplyPresetCommand{presets: presets, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyPresetInput] = (*ApplyPresetCommand)(nil)

// Execute applies the preset. A declined confirmation is a no-op.
func (c *ApplyPresetCommand) Execute(ctx context.Context, msg ApplyPresetInput) error {
	if c.presets == nil {
		return errors.New("apply preset command requires preset manager")
	}
	if !msg.Confirmed {
		c.telemetry.Record(ctx, "layout.preset.apply_declined", map[string]any{
			"preset_id": msg.PresetID,
		})
		return nil
	}
	return c.presets.Apply(ctx, msg.PresetID)
}

// SavePresetInput captures the current layout under a user-chosen name.
type SavePresetInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SavePresetCommand wraps PresetManager.SaveCurrent.
type SavePresetCommand struct {
	presets   presetManager
	telemetry Telemetry
}

// NewSavePresetCommand builds a command instance.
func NewSavePresetCommand(presets presetManager, telemetry Telemetry) *SavePresetCommand {
	return &SavePresetCommand{presets: presets, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SavePresetInput] = (*SavePresetCommand)(nil)

// Execute snapshots the current config as a user preset.
func (c *SavePresetCommand) Execute(ctx context.Context, msg SavePresetInput) error {
	if c.presets == nil {
		return errors.New("save preset command requires preset manager")
	}
	preset, err := c.presets.SaveCurrent(ctx, msg.Name, msg.Description)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "layout.preset.save", map[string]any{
		"preset_id": preset.ID,
		"name":      preset.Name,
	})
	return nil
}

// RenamePresetInput renames a user preset.
type RenamePresetInput struct {
	PresetID string `json:"preset_id"`
	Name     string `json:"name"`
}

// RenamePresetCommand wraps PresetManager.Rename.
type RenamePresetCommand struct {
	presets   presetManager
	telemetry Telemetry
}

// NewRenamePresetCommand builds a command instance.
func NewRenamePresetCommand(presets presetManager, telemetry Telemetry) *RenamePresetCommand {
	return &RenamePresetCommand{presets: presets, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RenamePresetInput] = (*RenamePresetCommand)(nil)

// Execute renames the preset. Builtin presets are immutable.
func (c *RenamePresetCommand) Execute(ctx context.Context, msg RenamePresetInput) error {
	if c.presets == nil {
		return errors.New("rename preset command requires preset manager")
	}
	if err := c.presets.Rename(ctx, msg.PresetID, msg.Name); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "layout.preset.rename", map[string]any{
		"preset_id": msg.PresetID,
	})
	return nil
}

// DeletePresetInput deletes a user preset after confirmation.
type DeletePresetInput struct {
	PresetID  string `json:"preset_id"`
	Confirmed bool   `json:"confirmed"`
}

// DeletePresetCommand wraps PresetManager.Delete behind a confirmation gate.
type DeletePresetCommand struct {
	presets   presetManager
	telemetry Telemetry
}

// NewDeletePresetCommand builds a command instance.
func NewDeletePresetCommand(presets presetManager, telemetry Telemetry) *DeletePresetCommand {
	return &DeletePresetCommand{presets: presets, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeletePresetInput] = (*DeletePresetCommand)(nil)

// Execute deletes the preset. A declined confirmation is a no-op.
func (c *DeletePresetCommand) Execute(ctx context.Context, msg DeletePresetInput) error {
	if c.presets == nil {
		return errors.New("delete preset command requires preset manager")
	}
	if !msg.Confirmed {
		c.telemetry.Record(ctx, "layout.preset.delete_declined", map[string]any{
			"preset_id": msg.PresetID,
		})
		return nil
	}
	if err := c.presets.Delete(ctx, msg.PresetID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "layout.preset.delete", map[string]any{
		"preset_id": msg.PresetID,
	})
	return nil
}
