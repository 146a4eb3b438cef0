package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/swipick/pkg/swipick"
)

// handleListWeeks returns every week with fixtures and the live week
func (h *Handlers) handleListWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.Fixtures.ListWeeks(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	current, err := h.Fixtures.CurrentWeek(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if weeks == nil {
		weeks = []int{}
	}
	respondOK(w, WeeksResponse{Weeks: weeks, CurrentWeek: current})
}

// handleGetWeekFixtures returns the match cards of a week
func (h *Handlers) handleGetWeekFixtures(w http.ResponseWriter, r *http.Request) {
	week, err := parseIntParam(r, "week")
	if err != nil {
		h.respondError(w, err)
		return
	}

	fixtures, err := h.Fixtures.FixturesForWeek(r.Context(), week)
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

// handleGetFixture returns one fixture as a match card
func (h *Handlers) handleGetFixture(w http.ResponseWriter, r *http.Request) {
	fixture, err := h.Fixtures.GetFixture(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, swipick.NewMatchCard(*fixture, h.Location))
}

// handleNextKickoff returns the next fixture to kick off, or 204 when
// nothing is scheduled
func (h *Handlers) handleNextKickoff(w http.ResponseWriter, r *http.Request) {
	next, err := h.Fixtures.NextKickoff(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if next == nil {
		respondDeleted(w)
		return
	}
	respondOK(w, swipick.NewMatchCard(*next, h.Location))
}
