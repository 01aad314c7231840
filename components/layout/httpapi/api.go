package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	layout "github.com/cubeos/go-layout/components/layout"
	"github.com/cubeos/go-layout/components/layout/commands"
	"github.com/cubeos/go-layout/components/layout/queries"
	gocommand "github.com/goliatone/go-command"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Move     gocommand.Commander[commands.MoveWidgetInput]
	Toggle   gocommand.Commander[commands.ToggleWidgetInput]
	Settings gocommand.Commander[commands.UpdateSettingsInput]
	Field    gocommand.Commander[commands.UpdateFieldInput]
	EditMode gocommand.Commander[commands.EditModeInput]
	History  gocommand.Commander[commands.HistoryInput]
	Apply    gocommand.Commander[commands.ApplyPresetInput]
	Save     gocommand.Commander[commands.SavePresetInput]
	Rename   gocommand.Commander[commands.RenamePresetInput]
	Delete   gocommand.Commander[commands.DeletePresetInput]
	Import   gocommand.Commander[commands.ImportLayoutInput]
	Reset    gocommand.Commander[commands.ResetLayoutInput]

	Layout       gocommand.Querier[queries.LayoutInput, queries.LayoutResult]
	Presets      gocommand.Querier[queries.PresetListInput, []queries.PresetListItem]
	Export       gocommand.Querier[queries.ExportInput, layout.ExportDocument]
	HistoryState gocommand.Querier[queries.HistoryInput, queries.HistoryState]
}

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request) {
	input := queries.LayoutInput{VisibleOnly: r.URL.Query().Get("visible") == "true"}
	result, err := h.Layout.Query(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleMoveWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.MoveWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Move.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleToggleWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.ToggleWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Toggle.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload commands.UpdateSettingsInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Settings.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleUpdateField(w http.ResponseWriter, r *http.Request) {
	var payload commands.UpdateFieldInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Field.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleEditMode(w http.ResponseWriter, r *http.Request) {
	var payload commands.EditModeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.EditMode.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleHistoryStep(w http.ResponseWriter, r *http.Request) {
	var payload commands.HistoryInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.History.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	state, err := h.HistoryState.Query(r.Context(), queries.HistoryInput{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) HandleHistoryState(w http.ResponseWriter, r *http.Request) {
	state, err := h.HistoryState.Query(r.Context(), queries.HistoryInput{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) HandleListPresets(w http.ResponseWriter, r *http.Request) {
	input := queries.PresetListInput{UserOnly: r.URL.Query().Get("user") == "true"}
	items, err := h.Presets.Query(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) HandleApplyPreset(w http.ResponseWriter, r *http.Request) {
	var payload commands.ApplyPresetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Apply.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSavePreset(w http.ResponseWriter, r *http.Request) {
	var payload commands.SavePresetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Save.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) HandleRenamePreset(w http.ResponseWriter, r *http.Request) {
	var payload commands.RenamePresetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Rename.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleDeletePreset(w http.ResponseWriter, r *http.Request) {
	var payload commands.DeletePresetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Delete.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Export.Query(r.Context(), queries.ExportInput{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="layout.json"`)
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	var payload commands.ImportLayoutInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Import.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	var payload commands.ResetLayoutInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Reset.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case layout.IsValidation(err),
		errors.Is(err, layout.ErrUnknownWidget),
		errors.Is(err, layout.ErrUnknownPreset),
		errors.Is(err, layout.ErrBuiltinPreset):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, layout.ErrNotEditing),
		errors.Is(err, layout.ErrDragActive):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
