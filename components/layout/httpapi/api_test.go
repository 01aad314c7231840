package httpapi

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	layout "github.com/cubeos/go-layout/components/layout"
	"github.com/cubeos/go-layout/components/layout/commands"
	"github.com/cubeos/go-layout/components/layout/queries"
)

func newAPIFixture(t *testing.T) (*layout.Service, *Handlers) {
	t.Helper()
	svc := layout.NewService(layout.Options{FlushDelay: time.Millisecond})
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })

	handlers := &Handlers{
		Move:     commands.NewMoveWidgetCommand(svc.Drag(), nil),
		Toggle:   commands.NewToggleWidgetCommand(svc.Session(), nil),
		Settings: commands.NewUpdateSettingsCommand(svc.Session(), svc.Store(), nil),
		Field:    commands.NewUpdateFieldCommand(svc.Store(), nil),
		EditMode: commands.NewEditModeCommand(svc.Session(), nil),
		History:  commands.NewHistoryCommand(svc.Session(), nil),
		Apply:    commands.NewApplyPresetCommand(svc.Presets(), nil),
		Save:     commands.NewSavePresetCommand(svc.Presets(), nil),
		Rename:   commands.NewRenamePresetCommand(svc.Presets(), nil),
		Delete:   commands.NewDeletePresetCommand(svc.Presets(), nil),
		Import:   commands.NewImportLayoutCommand(svc.Porter(), nil),
		Reset:    commands.NewResetLayoutCommand(svc.Store(), svc.Session(), nil),

		Layout:       queries.NewLayoutQuery(svc),
		Presets:      queries.NewPresetListQuery(svc.Presets()),
		Export:       queries.NewExportQuery(svc.Porter()),
		HistoryState: queries.NewHistoryQuery(svc.Session()),
	}
	return svc, handlers
}

func TestHandleLayoutReturnsProjection(t *testing.T) {
	_, handlers := newAPIFixture(t)
	req := httptest.NewRequest("GET", "/layout/_layout?visible=true", nil)
	rec := httptest.NewRecorder()

	handlers.HandleLayout(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var result queries.LayoutResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Mode != layout.ModeStandard || len(result.GridLayout) == 0 {
		t.Fatalf("unexpected layout result: %+v", result)
	}
}

func TestHandleMoveWidgetOutsideEditModeConflicts(t *testing.T) {
	_, handlers := newAPIFixture(t)
	req := httptest.NewRequest("POST", "/layout/widgets/move",
		strings.NewReader(`{"widget_id":"clock","zone":"after","index":1}`))
	rec := httptest.NewRecorder()

	handlers.HandleMoveWidget(rec, req)
	if rec.Code != 409 {
		t.Fatalf("status %d, want 409", rec.Code)
	}
}

func TestHandleMoveWidgetInEditMode(t *testing.T) {
	svc, handlers := newAPIFixture(t)
	svc.Session().EnterEdit()
	req := httptest.NewRequest("POST", "/layout/widgets/move",
		strings.NewReader(`{"widget_id":"clock","zone":"after","index":1}`))
	rec := httptest.NewRecorder()

	handlers.HandleMoveWidget(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	want := []string{"search", "clock", "vitals", "network"}
	got := svc.Store().VisibleWidgets().Widgets()[:4]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("layout after move %v, want prefix %v", got, want)
		}
	}
}

func TestHandleToggleUnknownWidgetBadRequest(t *testing.T) {
	svc, handlers := newAPIFixture(t)
	svc.Session().EnterEdit()
	req := httptest.NewRequest("POST", "/layout/widgets/toggle",
		strings.NewReader(`{"widget_id":"nope","visible":false}`))
	rec := httptest.NewRecorder()

	handlers.HandleToggleWidget(rec, req)
	if rec.Code != 400 {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestHandleUpdateFieldValidation(t *testing.T) {
	_, handlers := newAPIFixture(t)
	req := httptest.NewRequest("POST", "/layout/fields",
		strings.NewReader(`{"key":"clock_format","value":"13h"}`))
	rec := httptest.NewRecorder()

	handlers.HandleUpdateField(rec, req)
	if rec.Code != 400 {
		t.Fatalf("status %d, want 400", rec.Code)
	}

	req = httptest.NewRequest("POST", "/layout/fields",
		strings.NewReader(`{"key":"favorite_cols","value":5}`))
	rec = httptest.NewRecorder()
	handlers.HandleUpdateField(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleHistoryStepReturnsState(t *testing.T) {
	svc, handlers := newAPIFixture(t)
	ctx := context.Background()
	svc.Session().EnterEdit()
	if err := svc.Session().ToggleWidget(ctx, "logs", false); err != nil {
		t.Fatalf("ToggleWidget returned error: %v", err)
	}

	req := httptest.NewRequest("POST", "/layout/history", strings.NewReader(`{"redo":false}`))
	rec := httptest.NewRecorder()
	handlers.HandleHistoryStep(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var state queries.HistoryState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if state.CanUndo || !state.CanRedo {
		t.Fatalf("state after undo = %+v", state)
	}
}

func TestPresetLifecycleOverHTTP(t *testing.T) {
	_, handlers := newAPIFixture(t)

	rec := httptest.NewRecorder()
	handlers.HandleSavePreset(rec, httptest.NewRequest("POST", "/layout/presets/save",
		strings.NewReader(`{"name":"Evening"}`)))
	if rec.Code != 201 {
		t.Fatalf("save status %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handlers.HandleListPresets(rec, httptest.NewRequest("GET", "/layout/presets?user=true", nil))
	if rec.Code != 200 {
		t.Fatalf("list status %d", rec.Code)
	}
	var items []queries.PresetListItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Evening" {
		t.Fatalf("unexpected listing: %+v", items)
	}

	rec = httptest.NewRecorder()
	handlers.HandleDeletePreset(rec, httptest.NewRequest("POST", "/layout/presets/delete",
		strings.NewReader(`{"preset_id":"`+items[0].ID+`","confirmed":true}`)))
	if rec.Code != 204 {
		t.Fatalf("delete status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleDeleteBuiltinPresetBadRequest(t *testing.T) {
	_, handlers := newAPIFixture(t)
	rec := httptest.NewRecorder()
	handlers.HandleDeletePreset(rec, httptest.NewRequest("POST", "/layout/presets/delete",
		strings.NewReader(`{"preset_id":"builtin.default","confirmed":true}`)))
	if rec.Code != 400 {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestExportThenImportOverHTTP(t *testing.T) {
	_, handlers := newAPIFixture(t)

	rec := httptest.NewRecorder()
	handlers.HandleExport(rec, httptest.NewRequest("GET", "/layout/export", nil))
	if rec.Code != 200 {
		t.Fatalf("export status %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "layout.json") {
		t.Fatalf("Content-Disposition = %q", got)
	}

	payload, err := json.Marshal(commands.ImportLayoutInput{Document: rec.Body.Bytes()})
	if err != nil {
		t.Fatalf("marshal import payload: %v", err)
	}
	rec = httptest.NewRecorder()
	handlers.HandleImport(rec, httptest.NewRequest("POST", "/layout/import", strings.NewReader(string(payload))))
	if rec.Code != 200 {
		t.Fatalf("import status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleImportBadDocument(t *testing.T) {
	_, handlers := newAPIFixture(t)
	payload, err := json.Marshal(commands.ImportLayoutInput{Document: []byte(`{"version":"9"}`)})
	if err != nil {
		t.Fatalf("marshal import payload: %v", err)
	}
	rec := httptest.NewRecorder()
	handlers.HandleImport(rec, httptest.NewRequest("POST", "/layout/import", strings.NewReader(string(payload))))
	if rec.Code != 500 {
		t.Fatalf("status %d, want 500", rec.Code)
	}
}

func TestHandleMalformedBody(t *testing.T) {
	_, handlers := newAPIFixture(t)
	rec := httptest.NewRecorder()
	handlers.HandleMoveWidget(rec, httptest.NewRequest("POST", "/layout/widgets/move", strings.NewReader(`{{{`)))
	if rec.Code != 400 {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
