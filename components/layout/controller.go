package layout

import "fmt"

// Controller renders server-side HTML fragments for the layout shell.
type Controller struct {
	service  *Service
	renderer Renderer
}

// NewController wires the service and renderer into a controller.
func NewController(service *Service, renderer Renderer) *Controller {
	return &Controller{service: service, renderer: renderer}
}

// RenderLayout renders the visible grid as an HTML fragment.
func (c *Controller) RenderLayout() (string, error) {
	out, err := c.renderer.Render("layout", c.layoutContext())
	if err != nil {
		return "", fmt.Errorf("layout: render layout: %w", err)
	}
	return out, nil
}

// RenderPresets renders the preset picker with thumbnails.
func (c *Controller) RenderPresets() (string, error) {
	presets := append(c.service.Presets().Builtins(), c.service.Presets().UserPresets()...)
	items := make([]map[string]any, 0, len(presets))
	for _, preset := range presets {
		items = append(items, map[string]any{
			"id":      preset.ID,
			"name":    preset.Name,
			"icon":    preset.Icon,
			"builtin": preset.Builtin,
			"preview": previewContext(Preview(preset.Config)),
		})
	}
	out, err := c.renderer.Render("presets", map[string]any{"presets": items})
	if err != nil {
		return "", fmt.Errorf("layout: render presets: %w", err)
	}
	return out, nil
}

func (c *Controller) layoutContext() map[string]any {
	store := c.service.Store()
	registry := c.service.Registry()
	cfg := store.Snapshot()

	var rows []map[string]any
	if c.service.Mode() == ModeAdvanced {
		for _, id := range store.VisibleSections() {
			rows = append(rows, map[string]any{
				"widgets": []map[string]any{c.widgetContext(registry, cfg, id)},
			})
		}
	} else {
		for _, entry := range store.VisibleWidgets() {
			widgets := make([]map[string]any, 0, len(entry.Row))
			for _, id := range entry.Row {
				widgets = append(widgets, c.widgetContext(registry, cfg, id))
			}
			rows = append(rows, map[string]any{"widgets": widgets})
		}
	}
	return map[string]any{
		"mode":    string(c.service.Mode()),
		"editing": c.service.Session().Editing(),
		"rows":    rows,
	}
}

func (c *Controller) widgetContext(registry *Registry, cfg Config, id string) map[string]any {
	store := c.service.Store()
	label, icon := id, ""
	if desc, ok := registry.Descriptor(id); ok {
		label, icon = desc.Label, desc.Icon
	}
	heightPx, _ := store.WidgetHeight(id)
	collapsed := false
	if settings, ok := cfg.WidgetSettings[id]; ok {
		collapsed = settings.Collapsed
	}
	return map[string]any{
		"id":              id,
		"label":           label,
		"icon":            icon,
		"width":           string(store.WidgetWidth(id)),
		"opacity":         store.Opacity(id),
		"height_px":       heightPx,
		"collapsed":       collapsed,
		"refresh_seconds": int(store.RefreshInterval(id).Seconds()),
	}
}

func previewContext(rows []PreviewRow) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]map[string]any, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, map[string]any{
				"widget_id": cell.WidgetID,
				"width_pct": int(cell.Width * 100),
			})
		}
		out = append(out, map[string]any{"cells": cells})
	}
	return out
}
