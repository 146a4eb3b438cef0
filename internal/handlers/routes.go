package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.handleHealth)

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Game sessions
	r.Route("/api/game/{userID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleEndSession)
		r.Post("/load", h.handleLoadWeek)
		r.Post("/live", h.handleLoadLiveWeek)
		r.Post("/predict", h.handlePredict)
		r.Post("/skip", h.handleSkip)
		r.Post("/previous", h.handlePrevious)
		r.Post("/goto", h.handleGoTo)
		r.Post("/summary", h.handleToggleSummary)
		r.Post("/reset", h.handleResetSession)
		r.Post("/clear-error", h.handleClearError)
	})

	// Profile
	r.Get("/api/profile/{userID}", h.handleGetProfile)
	r.Get("/api/profile/{userID}/qr", h.handleGetProfileQR)

	// Fixtures (public)
	r.Get("/api/weeks", h.handleListWeeks)
	r.Get("/api/weeks/{week}/fixtures", h.handleGetWeekFixtures)
	r.Get("/api/fixtures/next", h.handleNextKickoff)
	r.Get("/api/fixtures/{id}", h.handleGetFixture)

	// Backend-compatible API, served from the local store
	if h.Backend != nil {
		r.Get("/match-cards/week/{week}", h.handleBackendMatchCards)
		r.Get("/fixtures/next", h.handleBackendNextFixtures)
		r.Post("/predictions", h.handleBackendCreatePrediction)
		r.Get("/predictions/user/{userID}/week/{week}", h.handleBackendWeekPredictions)
		r.Get("/predictions/user/{userID}/summary", h.handleBackendSummary)
		r.Delete("/predictions/user/{userID}", h.handleBackendDeletePredictions)
	}

	// Auth routes (public)
	r.Post("/api/admin/login", h.handleLogin)
	r.Post("/api/admin/logout", h.handleLogout)

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Fixtures
		r.Post("/api/admin/fixtures", h.handleImportFixtures)
		r.Put("/api/admin/fixtures/{id}/result", h.handleRecordResult)

		// Live week
		r.Get("/api/admin/live-week", h.handleGetLiveWeek)
		r.Put("/api/admin/live-week", h.handleSetLiveWeek)
		r.Delete("/api/admin/live-week", h.handleClearLiveWeek)

		// Settings
		r.Get("/api/admin/settings", h.handleGetSettings)
		r.Post("/api/admin/settings", h.handleUpdateSettings)
		r.Put("/api/admin/settings", h.handleUpdateSettings)
		r.Put("/api/admin/log-level", h.handleSetLogLevel)

		// Stats & Database Management
		r.Get("/api/admin/stats", h.handleGetStats)
		r.Post("/api/admin/reset-database", h.handleResetDatabase)
	})

	return r
}

// handleHealth reports liveness with a few counters
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", ActiveSessions: h.Game.ActiveSessions()}
	if h.Hub != nil {
		resp.ConnectedClients = h.Hub.ClientCount()
	}
	respondOK(w, resp)
}
