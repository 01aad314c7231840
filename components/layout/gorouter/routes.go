package gorouter

import (
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	layout "github.com/cubeos/go-layout/components/layout"
	"github.com/cubeos/go-layout/components/layout/commands"
	"github.com/cubeos/go-layout/components/layout/httpapi"
	"github.com/cubeos/go-layout/components/layout/queries"
)

// Config wires go-router with the layout controller, API, and live feed.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *layout.Controller
	API        *httpapi.Handlers
	Feed       *layout.LiveFeed
	Registry   *layout.Registry
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for layout endpoints.
type RouteConfig struct {
	HTML      string
	Layout    string
	Move      string
	Toggle    string
	Settings  string
	Field     string
	EditMode  string
	History   string
	Presets   string
	Apply     string
	Save      string
	Rename    string
	Delete    string
	Export    string
	Import    string
	Reset     string
	WebSocket string
}

// Register mounts layout routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/layout"
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		html, err := cfg.Controller.RenderLayout()
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send([]byte(html))
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	if cfg.Feed != nil {
		registerWebSocket(group, cfg.Feed, cfg.Registry, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api *httpapi.Handlers, routes RouteConfig) {
	r.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		input := queries.LayoutInput{VisibleOnly: ctx.Query("visible") == "true"}
		result, err := api.Layout.Query(ctx.Context(), input)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))

	r.Post(routes.Move, router.WrapHandler(command(api.Move, http.StatusOK)))
	r.Post(routes.Toggle, router.WrapHandler(command(api.Toggle, http.StatusOK)))
	r.Post(routes.Settings, router.WrapHandler(command(api.Settings, http.StatusOK)))
	r.Post(routes.Field, router.WrapHandler(command(api.Field, http.StatusOK)))
	r.Post(routes.EditMode, router.WrapHandler(command(api.EditMode, http.StatusOK)))
	r.Post(routes.Apply, router.WrapHandler(command(api.Apply, http.StatusOK)))
	r.Post(routes.Save, router.WrapHandler(command(api.Save, http.StatusCreated)))
	r.Post(routes.Rename, router.WrapHandler(command(api.Rename, http.StatusOK)))
	r.Post(routes.Delete, router.WrapHandler(command(api.Delete, http.StatusOK)))
	r.Post(routes.Import, router.WrapHandler(command(api.Import, http.StatusOK)))
	r.Post(routes.Reset, router.WrapHandler(command(api.Reset, http.StatusOK)))

	r.Post(routes.History, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.HistoryInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.History.Execute(ctx.Context(), payload); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		state, err := api.HistoryState.Query(ctx.Context(), queries.HistoryInput{})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, state)
	}))

	r.Get(routes.History, router.WrapHandler(func(ctx router.Context) error {
		state, err := api.HistoryState.Query(ctx.Context(), queries.HistoryInput{})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, state)
	}))

	r.Get(routes.Presets, router.WrapHandler(func(ctx router.Context) error {
		input := queries.PresetListInput{UserOnly: ctx.Query("user") == "true"}
		items, err := api.Presets.Query(ctx.Context(), input)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, items)
	}))

	r.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		doc, err := api.Export.Query(ctx.Context(), queries.ExportInput{})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Disposition", `attachment; filename="layout.json"`)
		return ctx.JSON(http.StatusOK, doc)
	}))
}

// command builds a JSON-decode-then-execute handler for one commander.
func command[I any](cmd gocommand.Commander[I], status int) func(router.Context) error {
	return func(ctx router.Context) error {
		var payload I
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := cmd.Execute(ctx.Context(), payload); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(status, map[string]string{"status": "ok"})
	}
}

func registerWebSocket[T any](r router.Router[T], feed *layout.LiveFeed, registry *layout.Registry, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		updates, cancel := feed.Subscribe(liveTopics(registry)...)
		defer cancel()
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(update); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// liveTopics collects every registered live key; a connected socket covers
// all push-capable widgets, so their poll timers stay idle.
func liveTopics(registry *layout.Registry) []string {
	if registry == nil {
		return nil
	}
	var topics []string
	seen := map[string]struct{}{}
	for _, desc := range registry.Descriptors() {
		if desc.LiveKey == "" {
			continue
		}
		if _, ok := seen[desc.LiveKey]; ok {
			continue
		}
		seen[desc.LiveKey] = struct{}{}
		topics = append(topics, desc.LiveKey)
	}
	return topics
}

func statusFor(err error) int {
	switch {
	case layout.IsValidation(err),
		errors.Is(err, layout.ErrUnknownWidget),
		errors.Is(err, layout.ErrUnknownPreset),
		errors.Is(err, layout.ErrBuiltinPreset):
		return http.StatusBadRequest
	case errors.Is(err, layout.ErrNotEditing),
		errors.Is(err, layout.ErrDragActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/"
	}
	if routes.Layout == "" {
		routes.Layout = "/_layout"
	}
	if routes.Move == "" {
		routes.Move = "/widgets/move"
	}
	if routes.Toggle == "" {
		routes.Toggle = "/widgets/toggle"
	}
	if routes.Settings == "" {
		routes.Settings = "/widgets/settings"
	}
	if routes.Field == "" {
		routes.Field = "/fields"
	}
	if routes.EditMode == "" {
		routes.EditMode = "/edit"
	}
	if routes.History == "" {
		routes.History = "/history"
	}
	if routes.Presets == "" {
		routes.Presets = "/presets"
	}
	if routes.Apply == "" {
		routes.Apply = "/presets/apply"
	}
	if routes.Save == "" {
		routes.Save = "/presets/save"
	}
	if routes.Rename == "" {
		routes.Rename = "/presets/rename"
	}
	if routes.Delete == "" {
		routes.Delete = "/presets/delete"
	}
	if routes.Export == "" {
		routes.Export = "/export"
	}
	if routes.Import == "" {
		routes.Import = "/import"
	}
	if routes.Reset == "" {
		routes.Reset = "/reset"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
