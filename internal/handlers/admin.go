package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/models"
	"github.com/abrezinsky/swipick/internal/services"
)

// ==================== Fixtures ====================

// handleImportFixtures upserts a batch of match cards
func (h *Handlers) handleImportFixtures(w http.ResponseWriter, r *http.Request) {
	var req ImportFixturesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	fixtures := make([]models.Fixture, 0, len(req.Fixtures))
	for _, card := range req.Fixtures {
		f, err := card.Fixture()
		if err != nil {
			h.respondError(w, BadRequest("Invalid fixture: "+err.Error()))
			return
		}
		fixtures = append(fixtures, f)
	}

	count, err := h.Fixtures.ImportFixtures(r.Context(), fixtures)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, ImportFixturesResponse{Imported: count})
}

// handleRecordResult stores the final outcome of a fixture
func (h *Handlers) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	var req ResultRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	outcome, err := models.ParseChoice(req.Outcome)
	if err != nil || !outcome.Persistable() {
		h.respondError(w, services.ErrInvalidOutcome)
		return
	}

	result := models.Result{
		FixtureID: chi.URLParam(r, "id"),
		Outcome:   outcome,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	}
	if err := h.Fixtures.RecordResult(r.Context(), result); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Result recorded")
}

// ==================== Live Week ====================

func (h *Handlers) handleGetLiveWeek(w http.ResponseWriter, r *http.Request) {
	override, err := h.Settings.GetLiveWeek(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	current, err := h.Fixtures.CurrentWeek(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, LiveWeekResponse{Override: override, CurrentWeek: current})
}

func (h *Handlers) handleSetLiveWeek(w http.ResponseWriter, r *http.Request) {
	var req LiveWeekRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Settings.SetLiveWeek(r.Context(), req.Week); err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, LiveWeekResponse{Override: req.Week, CurrentWeek: req.Week})
}

func (h *Handlers) handleClearLiveWeek(w http.ResponseWriter, r *http.Request) {
	if err := h.Settings.ClearLiveWeek(r.Context()); err != nil {
		h.respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	settings := services.Settings{
		BaseURL:  req.BaseURL,
		LiveWeek: req.LiveWeek,
	}
	if err := h.Settings.UpdateSettings(r.Context(), settings); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Settings updated")
}

// handleSetLogLevel changes the log level at runtime
func (h *Handlers) handleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req LogLevelRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	switch strings.ToLower(req.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		h.respondError(w, BadRequest("Invalid log level: must be debug, info, warn or error"))
		return
	}

	h.Log.SetLevel(logger.ParseLevel(req.Level))
	if req.HTTP != nil {
		if *req.HTTP {
			h.Log.EnableHTTPLogging()
		} else {
			h.Log.DisableHTTPLogging()
		}
	}
	respondSuccess(w, fmt.Sprintf("Log level set to %s", h.Log.GetLevel()))
}

// ==================== Stats & Database ====================

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Settings.GetStats(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	stats["active_sessions"] = h.Game.ActiveSessions()
	if h.Hub != nil {
		stats["connected_clients"] = h.Hub.ClientCount()
	}
	respondOK(w, stats)
}

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, ResetResponse{Message: result.Message, Tables: result.Tables})
}
