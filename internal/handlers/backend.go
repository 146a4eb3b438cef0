package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/swipick/internal/game"
	"github.com/abrezinsky/swipick/internal/models"
	"github.com/abrezinsky/swipick/pkg/swipick"
)

// The handlers below serve the local store under the paths of the Swipick
// backend, so a swipick.HTTPClient can point at this server.

// handleBackendMatchCards serves GET /match-cards/week/{week}
func (h *Handlers) handleBackendMatchCards(w http.ResponseWriter, r *http.Request) {
	week, err := parseIntParam(r, "week")
	if err != nil {
		h.respondError(w, err)
		return
	}

	fixtures, err := h.Backend.FixturesForWeek(r.Context(), week)
	if err != nil {
		h.respondError(w, err)
		return
	}

	cards := make([]swipick.MatchCard, 0, len(fixtures))
	for _, f := range fixtures {
		cards = append(cards, swipick.NewMatchCard(f, h.Location))
	}
	respondOK(w, cards)
}

// handleBackendNextFixtures serves GET /fixtures/next?limit=N: the detected
// week and up to limit of its fixtures that have not kicked off
func (h *Handlers) handleBackendNextFixtures(w http.ResponseWriter, r *http.Request) {
	limit := swipick.NextFixturesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.respondError(w, BadRequest("Invalid limit parameter"))
			return
		}
		limit = n
	}

	week, err := h.Backend.CurrentWeek(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	fixtures, err := h.Backend.FixturesForWeek(r.Context(), week)
	if err != nil {
		h.respondError(w, err)
		return
	}

	now := time.Now()
	resp := swipick.NextFixturesResponse{Success: true, DetectedWeek: week, Fixtures: []swipick.MatchCard{}}
	for _, f := range fixtures {
		if len(resp.Fixtures) == limit {
			break
		}
		if f.Started(now) {
			continue
		}
		resp.Fixtures = append(resp.Fixtures, swipick.NewMatchCard(f, h.Location))
	}
	respondOK(w, resp)
}

// handleBackendCreatePrediction serves POST /predictions
func (h *Handlers) handleBackendCreatePrediction(w http.ResponseWriter, r *http.Request) {
	var req swipick.CreatePredictionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if req.UserID == "" || req.FixtureID == "" {
		h.respondError(w, BadRequest("userId and fixtureId are required"))
		return
	}
	choice, err := models.ParseChoice(string(req.Choice))
	if err != nil || !choice.Persistable() {
		h.respondError(w, BadRequest("Invalid choice: must be 1, X or 2"))
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = models.ModeLive
	}
	if !mode.Valid() {
		h.respondError(w, BadRequest("Invalid mode: must be live or test"))
		return
	}
	if store, ok := h.Backend.(FixtureGetter); ok {
		fixture, err := store.GetFixture(r.Context(), req.FixtureID)
		if err != nil {
			h.respondError(w, err)
			return
		}
		if fixture.Started(time.Now()) {
			h.respondError(w, game.ErrFixtureStarted)
			return
		}
	}

	saved, err := h.Backend.CreatePrediction(r.Context(), models.Prediction{
		UserID:    req.UserID,
		FixtureID: req.FixtureID,
		Choice:    choice,
		Week:      req.Week,
		Mode:      mode,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, swipick.PredictionResponse{Success: true, Prediction: swipick.FromPrediction(*saved)})
}

// handleBackendWeekPredictions serves GET /predictions/user/{userID}/week/{week}
func (h *Handlers) handleBackendWeekPredictions(w http.ResponseWriter, r *http.Request) {
	week, err := parseIntParam(r, "week")
	if err != nil {
		h.respondError(w, err)
		return
	}
	mode, err := parseModeQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	userID := chi.URLParam(r, "userID")

	predictions, err := h.Backend.PredictionsForWeek(r.Context(), userID, week, mode)
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp := swipick.WeekPredictionsResponse{
		Week:             week,
		TotalPredictions: len(predictions),
		Predictions:      make([]swipick.WirePrediction, 0, len(predictions)),
	}
	for _, p := range predictions {
		resp.Predictions = append(resp.Predictions, swipick.FromPrediction(p))
	}
	if detailer, ok := h.Backend.(WeekDetailer); ok {
		stat, err := detailer.GetWeekDetail(r.Context(), userID, week, mode)
		if err != nil {
			h.respondError(w, err)
			return
		}
		var finished int
		for _, d := range stat.Predictions {
			if d.IsCorrect == nil {
				continue
			}
			finished++
			if *d.IsCorrect {
				resp.CorrectPredictions++
			}
		}
		if finished > 0 {
			resp.SuccessRate = float64(resp.CorrectPredictions) / float64(finished) * 100
		}
	}
	respondOK(w, resp)
}

// handleBackendSummary serves GET /predictions/user/{userID}/summary,
// wrapped in one data envelope
func (h *Handlers) handleBackendSummary(w http.ResponseWriter, r *http.Request) {
	mode, err := parseModeQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	summary, err := h.Backend.GetSummary(r.Context(), chi.URLParam(r, "userID"), mode)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, swipick.SummaryResponse{Success: true, Data: swipick.NewSummaryData(summary)})
}

// handleBackendDeletePredictions serves DELETE /predictions/user/{userID},
// for one mode when ?mode= is given and for every mode otherwise
func (h *Handlers) handleBackendDeletePredictions(w http.ResponseWriter, r *http.Request) {
	var mode *models.Mode
	if r.URL.Query().Get("mode") != "" {
		m, err := parseModeQuery(r)
		if err != nil {
			h.respondError(w, err)
			return
		}
		mode = &m
	}

	if err := h.Backend.DeletePredictions(r.Context(), chi.URLParam(r, "userID"), mode); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Predictions deleted")
}
