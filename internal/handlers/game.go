package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/swipick/internal/models"
)

// handleGetSession returns the user's session state without changing it
func (h *Handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Game.State(r.Context(), chi.URLParam(r, "userID")))
}

// handleLoadWeek loads a week in the given mode. Week 0 or no week loads
// the live week.
func (h *Handlers) handleLoadWeek(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req LoadWeekRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.respondError(w, err)
			return
		}
	}

	if req.Week == 0 && req.Mode == "" {
		out, state := h.Game.LoadLiveWeek(r.Context(), userID)
		h.respondOutcome(w, out, state)
		return
	}

	mode := models.ModeLive
	if req.Mode != "" {
		var err error
		if mode, err = models.ParseMode(req.Mode); err != nil {
			h.respondError(w, BadRequest("Invalid mode: must be live or test"))
			return
		}
	}
	if req.Week < 1 {
		h.respondError(w, BadRequest("Invalid week: must be 1 or greater"))
		return
	}

	out, state := h.Game.LoadWeek(r.Context(), userID, req.Week, mode)
	h.respondOutcome(w, out, state)
}

// handleLoadLiveWeek loads the live week in live mode
func (h *Handlers) handleLoadLiveWeek(w http.ResponseWriter, r *http.Request) {
	out, state := h.Game.LoadLiveWeek(r.Context(), chi.URLParam(r, "userID"))
	h.respondOutcome(w, out, state)
}

// handlePredict records a choice for the current card
func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	choice, err := models.ParseChoice(req.Choice)
	if err != nil {
		h.respondError(w, BadRequest("Invalid choice: must be 1, X, 2 or SKIP"))
		return
	}

	out, state := h.Game.Predict(r.Context(), chi.URLParam(r, "userID"), choice)
	h.respondOutcome(w, out, state)
}

func (h *Handlers) handleSkip(w http.ResponseWriter, r *http.Request) {
	out, state := h.Game.Skip(r.Context(), chi.URLParam(r, "userID"))
	h.respondOutcome(w, out, state)
}

func (h *Handlers) handlePrevious(w http.ResponseWriter, r *http.Request) {
	out, state := h.Game.Previous(r.Context(), chi.URLParam(r, "userID"))
	h.respondOutcome(w, out, state)
}

// handleGoTo jumps to a card by index
func (h *Handlers) handleGoTo(w http.ResponseWriter, r *http.Request) {
	var req GoToRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	out, state := h.Game.GoTo(r.Context(), chi.URLParam(r, "userID"), req.Index)
	h.respondOutcome(w, out, state)
}

func (h *Handlers) handleToggleSummary(w http.ResponseWriter, r *http.Request) {
	out, state := h.Game.ToggleSummary(r.Context(), chi.URLParam(r, "userID"))
	h.respondOutcome(w, out, state)
}

// handleResetSession deletes the user's predictions for the session mode
func (h *Handlers) handleResetSession(w http.ResponseWriter, r *http.Request) {
	out, state := h.Game.Reset(r.Context(), chi.URLParam(r, "userID"))
	h.respondOutcome(w, out, state)
}

func (h *Handlers) handleClearError(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Game.ClearError(r.Context(), chi.URLParam(r, "userID")))
}

// handleEndSession drops the in-memory session; stored predictions stay
func (h *Handlers) handleEndSession(w http.ResponseWriter, r *http.Request) {
	h.Game.EndSession(chi.URLParam(r, "userID"))
	respondDeleted(w)
}
