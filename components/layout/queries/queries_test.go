package queries

import (
	"context"
	"testing"
	"time"

	layout "github.com/cubeos/go-layout/components/layout"
)

func newQueryService(t *testing.T, mode layout.Mode) *layout.Service {
	t.Helper()
	svc := layout.NewService(layout.Options{Mode: mode, FlushDelay: time.Millisecond})
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	return svc
}

func TestLayoutQueryFullProjection(t *testing.T) {
	svc := newQueryService(t, layout.ModeStandard)
	query := NewLayoutQuery(svc)

	result, err := query.Query(context.Background(), LayoutInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if result.Mode != layout.ModeStandard || result.Editing {
		t.Fatalf("unexpected header: %+v", result)
	}
	// The full projection includes hidden widget rows.
	all := result.GridLayout.Widgets()
	if len(all) != len(result.Settings) {
		t.Fatalf("full grid has %d widgets, settings %d", len(all), len(result.Settings))
	}
}

func TestLayoutQueryVisibleOnly(t *testing.T) {
	svc := newQueryService(t, layout.ModeStandard)
	ctx := context.Background()
	svc.Session().EnterEdit()
	if err := svc.Session().ToggleWidget(ctx, "logs", false); err != nil {
		t.Fatalf("ToggleWidget returned error: %v", err)
	}
	query := NewLayoutQuery(svc)

	result, err := query.Query(ctx, LayoutInput{VisibleOnly: true})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	for _, id := range result.GridLayout.Widgets() {
		if id == "logs" {
			t.Fatal("hidden widget leaked into visible projection")
		}
	}
	if !result.Editing {
		t.Fatal("editing flag should be set")
	}
}

func TestLayoutQueryAdvancedSections(t *testing.T) {
	svc := newQueryService(t, layout.ModeAdvanced)
	query := NewLayoutQuery(svc)

	result, err := query.Query(context.Background(), LayoutInput{VisibleOnly: true})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(result.SectionOrder) == 0 {
		t.Fatal("advanced mode should report sections")
	}
	if len(result.GridLayout) != 0 {
		t.Fatal("advanced mode has no widget grid")
	}
}

func TestPresetListQueryBuiltinsFirst(t *testing.T) {
	svc := newQueryService(t, layout.ModeStandard)
	ctx := context.Background()
	if _, err := svc.Presets().SaveCurrent(ctx, "Mine", ""); err != nil {
		t.Fatalf("SaveCurrent returned error: %v", err)
	}
	query := NewPresetListQuery(svc.Presets())

	items, err := query.Query(ctx, PresetListInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 3 builtins + 1 user preset, got %d", len(items))
	}
	if !items[0].Builtin || items[len(items)-1].Builtin {
		t.Fatal("builtins must list before user presets")
	}
	if len(items[0].Preview) == 0 {
		t.Fatal("preset items carry preview thumbnails")
	}

	userOnly, err := query.Query(ctx, PresetListInput{UserOnly: true})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(userOnly) != 1 || userOnly[0].Name != "Mine" {
		t.Fatalf("user-only listing = %+v", userOnly)
	}
}

func TestExportQuerySnapshotsDocument(t *testing.T) {
	svc := newQueryService(t, layout.ModeStandard)
	query := NewExportQuery(svc.Porter())

	doc, err := query.Query(context.Background(), ExportInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if doc.Version != layout.ExportVersion || doc.Mode != layout.ModeStandard {
		t.Fatalf("unexpected document header: %+v", doc)
	}
	if len(doc.Config.GridLayout) == 0 {
		t.Fatal("document should carry the grid")
	}
}

func TestHistoryQueryTracksStacks(t *testing.T) {
	svc := newQueryService(t, layout.ModeStandard)
	ctx := context.Background()
	query := NewHistoryQuery(svc.Session())

	state, err := query.Query(ctx, HistoryInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if state.Editing || state.CanUndo || state.CanRedo {
		t.Fatalf("fresh session state = %+v", state)
	}

	svc.Session().EnterEdit()
	if err := svc.Session().ToggleWidget(ctx, "logs", false); err != nil {
		t.Fatalf("ToggleWidget returned error: %v", err)
	}
	svc.Session().Undo(ctx)

	state, err = query.Query(ctx, HistoryInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if !state.Editing || state.CanUndo || !state.CanRedo {
		t.Fatalf("after undo state = %+v", state)
	}
	if state.RedoCount != 1 {
		t.Fatalf("redo count = %d", state.RedoCount)
	}
}
