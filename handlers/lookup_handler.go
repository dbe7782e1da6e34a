package handlers

import (
	"net/http"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/services"
)

type LookupHandler struct {
	lookupService services.LookupService
}

func NewLookupHandler(lookupService services.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

func (h *LookupHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.lookupService.ListGames(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *LookupHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := h.lookupService.CreateGame(r.Context(), input.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (h *LookupHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := h.lookupService.UpdateGame(r.Context(), id, input.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *LookupHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.lookupService.DeleteGame(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "game deleted"})
}

func (h *LookupHandler) ListTournamentTypes(w http.ResponseWriter, r *http.Request) {
	h.listFormats(w, r, models.FormatTournamentType)
}

func (h *LookupHandler) ListModeTypes(w http.ResponseWriter, r *http.Request) {
	h.listFormats(w, r, models.FormatModeType)
}

func (h *LookupHandler) listFormats(w http.ResponseWriter, r *http.Request, kind models.FormatKind) {
	formats, err := h.lookupService.ListFormats(r.Context(), kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formats)
}

func (h *LookupHandler) CreateTournamentType(w http.ResponseWriter, r *http.Request) {
	h.createFormat(w, r, models.FormatTournamentType)
}

func (h *LookupHandler) CreateModeType(w http.ResponseWriter, r *http.Request) {
	h.createFormat(w, r, models.FormatModeType)
}

func (h *LookupHandler) createFormat(w http.ResponseWriter, r *http.Request, kind models.FormatKind) {
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format, err := h.lookupService.CreateFormat(r.Context(), kind, input.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, format)
}

func (h *LookupHandler) DeleteFormat(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.lookupService.DeleteFormat(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "format deleted"})
}
