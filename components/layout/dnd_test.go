package layout

import (
	"context"
	"errors"
	"testing"
)

func newDragFixture(t *testing.T) (*ConfigStore, *EditSession, *Engine) {
	t.Helper()
	defaults := Config{
		GridLayout: GridLayout{
			{Row: []string{"clock"}},
			{Row: []string{"search"}},
			{Row: []string{"vitals", "network"}},
		},
		WidgetSettings: map[string]WidgetSettings{},
		ClockFormat:    "24h",
		DateFormat:     "long",
		FavoriteCols:   4,
	}
	store := NewConfigStore(StoreOptions{
		Backend:  NewMemoryBackend(),
		Defaults: &defaults,
	})
	session := NewEditSession(SessionOptions{Store: store})
	engine := NewEngine(EngineOptions{Store: store, Session: session})
	session.EnterEdit()
	return store, session, engine
}

func requireGrid(t *testing.T, store *ConfigStore, want GridLayout) {
	t.Helper()
	got := store.Snapshot().GridLayout
	if !got.Equal(want) {
		t.Fatalf("grid mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestDropAfterRowMovesWidgetAndRemovesEmptyRow(t *testing.T) {
	store, _, engine := newDragFixture(t)
	if err := engine.Start("clock"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !engine.Hover(Zone{Kind: ZoneAfter, Index: 2}) {
		t.Fatal("expected after-zone hover to be accepted")
	}
	if err := engine.Drop(context.Background()); err != nil {
		t.Fatalf("Drop returned error: %v", err)
	}
	requireGrid(t, store, GridLayout{
		{Row: []string{"search"}},
		{Row: []string{"vitals", "network"}},
		{Row: []string{"clock"}},
	})
}

func TestDropLeftPairsWidgets(t *testing.T) {
	store, _, engine := newDragFixture(t)
	if err := engine.Start("clock"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !engine.Hover(Zone{Kind: ZoneLeft, Index: 1}) {
		t.Fatal("expected left-zone hover on single row to be accepted")
	}
	if err := engine.Drop(context.Background()); err != nil {
		t.Fatalf("Drop returned error: %v", err)
	}
	requireGrid(t, store, GridLayout{
		{Row: []string{"clock", "search"}},
		{Row: []string{"vitals", "network"}},
	})
}

func TestUnpairLeavesFormerPartnerAlone(t *testing.T) {
	store, _, engine := newDragFixture(t)
	if err := engine.Start("vitals"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !engine.Hover(Zone{Kind: ZoneAfter, Index: 0}) {
		t.Fatal("expected hover to be accepted")
	}
	if err := engine.Drop(context.Background()); err != nil {
		t.Fatalf("Drop returned error: %v", err)
	}
	requireGrid(t, store, GridLayout{
		{Row: []string{"clock"}},
		{Row: []string{"vitals"}},
		{Row: []string{"search"}},
		{Row: []string{"network"}},
	})
}

func TestHoverRejectsSideZoneOnFullRow(t *testing.T) {
	_, _, engine := newDragFixture(t)
	if err := engine.Start("clock"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if engine.Hover(Zone{Kind: ZoneLeft, Index: 2}) {
		t.Fatal("side zone on a two-widget row must be rejected")
	}
	if engine.Hover(Zone{Kind: ZoneRight, Index: 2}) {
		t.Fatal("side zone on a two-widget row must be rejected")
	}
}

func TestHoverRejectsPairingWithSelf(t *testing.T) {
	_, _, engine := newDragFixture(t)
	if err := engine.Start("search"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if engine.Hover(Zone{Kind: ZoneLeft, Index: 1}) {
		t.Fatal("pairing a widget with its own row must be rejected")
	}
}

func TestInvalidHoverClearsCurrentZone(t *testing.T) {
	_, _, engine := newDragFixture(t)
	if err := engine.Start("clock"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !engine.Hover(Zone{Kind: ZoneAfter, Index: 1}) {
		t.Fatal("expected valid hover to be accepted")
	}
	engine.Hover(Zone{Kind: ZoneAfter, Index: 99})
	if _, ok := engine.HoverZone(); ok {
		t.Fatal("invalid hover must clear the previous zone")
	}
	if !engine.Dragging() {
		t.Fatal("invalid hover must not cancel the drag")
	}
}

func TestDropWithoutZoneCancelsSilently(t *testing.T) {
	store, session, engine := newDragFixture(t)
	before := store.Snapshot().GridLayout
	if err := engine.Start("clock"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := engine.Drop(context.Background()); err != nil {
		t.Fatalf("Drop with no zone should not error, got %v", err)
	}
	requireGrid(t, store, before)
	if session.CanUndo() {
		t.Fatal("cancelled drop must not record a command")
	}
	if engine.Dragging() {
		t.Fatal("engine must be idle after drop")
	}
}

func TestNoopMoveRecordsNoCommand(t *testing.T) {
	store, session, engine := newDragFixture(t)
	before := store.Snapshot().GridLayout
	if err := engine.Move(context.Background(), "clock", Zone{Kind: ZoneBefore, Index: 0}); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	requireGrid(t, store, before)
	if session.CanUndo() {
		t.Fatal("no-op move must not land on the undo stack")
	}
}

func TestSecondStartRejectedFirstDragIntact(t *testing.T) {
	_, _, engine := newDragFixture(t)
	if err := engine.Start("clock"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := engine.Start("search"); !errors.Is(err, ErrDragActive) {
		t.Fatalf("expected ErrDragActive, got %v", err)
	}
	if engine.DraggedWidget() != "clock" {
		t.Fatalf("first drag must stay active, dragging %q", engine.DraggedWidget())
	}
}

func TestStartOutsideEditModeRejected(t *testing.T) {
	_, session, engine := newDragFixture(t)
	session.ExitEdit(context.Background())
	if err := engine.Start("clock"); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
}

func TestStartUnknownWidgetRejected(t *testing.T) {
	_, _, engine := newDragFixture(t)
	if err := engine.Start("nope"); !errors.Is(err, ErrUnknownWidget) {
		t.Fatalf("expected ErrUnknownWidget, got %v", err)
	}
}

func TestCancelAbandonsDrag(t *testing.T) {
	store, session, engine := newDragFixture(t)
	before := store.Snapshot().GridLayout
	if err := engine.Start("clock"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	engine.Hover(Zone{Kind: ZoneAfter, Index: 2})
	engine.Cancel()
	requireGrid(t, store, before)
	if session.CanUndo() {
		t.Fatal("cancelled drag must not record a command")
	}
}

func TestUndoRestoresLayoutAfterMove(t *testing.T) {
	store, session, engine := newDragFixture(t)
	before := store.Snapshot().GridLayout
	if err := engine.Move(context.Background(), "clock", Zone{Kind: ZoneAfter, Index: 2}); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	if !session.Undo(context.Background()) {
		t.Fatal("expected undo to apply")
	}
	requireGrid(t, store, before)
	if !session.Redo(context.Background()) {
		t.Fatal("expected redo to apply")
	}
	requireGrid(t, store, GridLayout{
		{Row: []string{"search"}},
		{Row: []string{"vitals", "network"}},
		{Row: []string{"clock"}},
	})
}

func newSectionFixture(t *testing.T) (*ConfigStore, *EditSession, *Engine) {
	t.Helper()
	defaults := Config{
		SectionOrder:   []string{"overview", "apps", "monitoring", "logs"},
		WidgetSettings: map[string]WidgetSettings{},
		ClockFormat:    "24h",
		DateFormat:     "long",
		FavoriteCols:   4,
	}
	store := NewConfigStore(StoreOptions{
		Mode:     ModeAdvanced,
		Backend:  NewMemoryBackend(),
		Defaults: &defaults,
	})
	session := NewEditSession(SessionOptions{Store: store})
	engine := NewEngine(EngineOptions{Store: store, Session: session})
	session.EnterEdit()
	return store, session, engine
}

func TestSectionMoveReorders(t *testing.T) {
	store, _, engine := newSectionFixture(t)
	if err := engine.Move(context.Background(), "logs", Zone{Kind: ZoneBefore, Index: 1}); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	got := store.Snapshot().SectionOrder
	want := []string{"overview", "logs", "apps", "monitoring"}
	if !sliceEqual(got, want) {
		t.Fatalf("section order mismatch: got %v want %v", got, want)
	}
}

func TestSectionsNeverPair(t *testing.T) {
	_, _, engine := newSectionFixture(t)
	if err := engine.Start("logs"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if engine.Hover(Zone{Kind: ZoneLeft, Index: 0}) {
		t.Fatal("side zones must be rejected in advanced mode")
	}
}

func TestMoveWidgetAfterOwnRowIndexAdjustment(t *testing.T) {
	grid := GridLayout{
		{Row: []string{"a"}},
		{Row: []string{"b"}},
		{Row: []string{"c"}},
	}
	// Dropping a after row 1 lands between b and c, not at the end.
	next, err := moveWidget(grid, "a", Zone{Kind: ZoneAfter, Index: 1})
	if err != nil {
		t.Fatalf("moveWidget returned error: %v", err)
	}
	want := GridLayout{
		{Row: []string{"b"}},
		{Row: []string{"a"}},
		{Row: []string{"c"}},
	}
	if !next.Equal(want) {
		t.Fatalf("grid mismatch: got %v want %v", next, want)
	}
}

func TestMoveWidgetFromPairKeepsRowIndices(t *testing.T) {
	grid := GridLayout{
		{Row: []string{"a", "b"}},
		{Row: []string{"c"}},
	}
	next, err := moveWidget(grid, "a", Zone{Kind: ZoneAfter, Index: 1})
	if err != nil {
		t.Fatalf("moveWidget returned error: %v", err)
	}
	want := GridLayout{
		{Row: []string{"b"}},
		{Row: []string{"c"}},
		{Row: []string{"a"}},
	}
	if !next.Equal(want) {
		t.Fatalf("grid mismatch: got %v want %v", next, want)
	}
}
