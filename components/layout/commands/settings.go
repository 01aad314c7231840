package commands

import (
	"context"
	"errors"

	layout "github.com/cubeos/go-layout/components/layout"
	gocommand "github.com/goliatone/go-command"
)

type settingsSession interface {
	ToggleWidget(ctx context.Context, id string, visible bool) error
	ResizeWidget(ctx context.Context, id string, heightPx int, width layout.WidthMode) error
	SetWidgetOpacity(ctx context.Context, id string, opacity int) error
	SetWidgetRefresh(ctx context.Context, id string, seconds int) error
	SetWidgetCollapsed(ctx context.Context, id string, collapsed bool) error
}

// ToggleWidgetInput flips one widget's visibility.
type ToggleWidgetInput struct {
	WidgetID string `json:"widget_id"`
	Visible  bool   `json:"visible"`
}

// ToggleWidgetCommand wraps EditSession.ToggleWidget.
type ToggleWidgetCommand struct {
	session   settingsSession
	telemetry Telemetry
}

// NewToggleWidgetCommand builds a command instance.
func NewToggleWidgetCommand(session settingsSession, telemetry Telemetry) *ToggleWidgetCommand {
	return &ToggleWidgetCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleWidgetInput] = (*ToggleWidgetCommand)(nil)

// Execute toggles the widget.
func (c *ToggleWidgetCommand) Execute(ctx context.Context, msg ToggleWidgetInput) error {
	if c.session == nil {
		return errors.New("toggle command requires session")
	}
	if err := c.session.ToggleWidget(ctx, msg.WidgetID, msg.Visible); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "layout.widget.toggle", map[string]any{
		"widget_id": msg.WidgetID,
		"visible":   msg.Visible,
	})
	return nil
}

// UpdateSettingsInput carries the per-widget appearance knobs. Nil fields are
// left untouched.
type UpdateSettingsInput struct {
	WidgetID       string            `json:"widget_id"`
	Opacity        *int              `json:"opacity,omitempty"`
	HeightPx       *int              `json:"height_px,omitempty"`
	WidthMode      *layout.WidthMode `json:"width_mode,omitempty"`
	RefreshSeconds *int              `json:"refresh_seconds,omitempty"`
	Collapsed      *bool             `json:"collapsed,omitempty"`
}

// UpdateSettingsCommand applies widget setting changes through the edit
// session so each knob lands on the undo stack.
type UpdateSettingsCommand struct {
	session   settingsSession
	store     *layout.ConfigStore
	telemetry Telemetry
}

// NewUpdateSettingsCommand builds a command instance.
func NewUpdateSettingsCommand(session settingsSession, store *layout.ConfigStore, telemetry Telemetry) *UpdateSettingsCommand {
	return &UpdateSettingsCommand{session: session, store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateSettingsInput] = (*UpdateSettingsCommand)(nil)

// Execute applies each provided knob in turn.
func (c *UpdateSettingsCommand) Execute(ctx context.Context, msg UpdateSettingsInput) error {
	if c.session == nil {
		return errors.New("settings command requires session")
	}
	if msg.Opacity != nil {
		if err := c.session.SetWidgetOpacity(ctx, msg.WidgetID, *msg.Opacity); err != nil {
			return err
		}
	}
	if msg.HeightPx != nil || msg.WidthMode != nil {
		heightPx, _ := c.store.WidgetHeight(msg.WidgetID)
		if msg.HeightPx != nil {
			heightPx = *msg.HeightPx
		}
		width := c.store.WidgetWidth(msg.WidgetID)
		if msg.WidthMode != nil {
			width = *msg.WidthMode
		}
		if err := c.session.ResizeWidget(ctx, msg.WidgetID, heightPx, width); err != nil {
			return err
		}
	}
	if msg.RefreshSeconds != nil {
		if err := c.session.SetWidgetRefresh(ctx, msg.WidgetID, *msg.RefreshSeconds); err != nil {
			return err
		}
	}
	if msg.Collapsed != nil {
		if err := c.session.SetWidgetCollapsed(ctx, msg.WidgetID, *msg.Collapsed); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "layout.widget.settings", map[string]any{
		"widget_id": msg.WidgetID,
	})
	return nil
}
