package handlers

import (
	"context"
	"time"

	"github.com/abrezinsky/swipick/internal/auth"
	"github.com/abrezinsky/swipick/internal/game"
	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/models"
	"github.com/abrezinsky/swipick/internal/services"
	"github.com/abrezinsky/swipick/internal/websocket"
)

// BackendStore is what the backend-compatible endpoints serve from:
// the same contracts the remote client implements
type BackendStore interface {
	game.FixtureProvider
	game.PredictionRepository
	services.SummaryProvider
}

// WeekDetailer is implemented by stores that can compute the totals of a
// user's week; optional for the backend-compatible week endpoint
type WeekDetailer interface {
	GetWeekDetail(ctx context.Context, userID string, week int, mode models.Mode) (*models.WeeklyStat, error)
}

// FixtureGetter is implemented by stores that hold fixtures themselves. The
// backend-compatible API uses it to refuse predictions after kickoff; a
// remote store enforces its own lock.
type FixtureGetter interface {
	GetFixture(ctx context.Context, id string) (*models.Fixture, error)
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Game     services.GameServicer
	Profile  services.ProfileServicer
	Fixtures services.FixtureServicer
	Settings services.SettingsServicer
	Backend  BackendStore
	Auth     *auth.Auth
	Hub      *websocket.Hub
	Log      logger.Logger

	// Location renders the display kickoff of match cards
	Location *time.Location
}

// New creates a new Handlers instance with all dependencies
func New(
	gameSvc services.GameServicer,
	profile services.ProfileServicer,
	fixtures services.FixtureServicer,
	settings services.SettingsServicer,
	backend BackendStore,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log logger.Logger,
	loc *time.Location,
) *Handlers {
	if loc == nil {
		loc = time.UTC
	}
	return &Handlers{
		Game:     gameSvc,
		Profile:  profile,
		Fixtures: fixtures,
		Settings: settings,
		Backend:  backend,
		Auth:     adminAuth,
		Hub:      hub,
		Log:      log,
		Location: loc,
	}
}

// NewForTesting creates a Handlers instance with a known admin password
// ("test-password"), no hub and a discarding logger
func NewForTesting(
	gameSvc services.GameServicer,
	profile services.ProfileServicer,
	fixtures services.FixtureServicer,
	settings services.SettingsServicer,
	backend BackendStore,
) *Handlers {
	return &Handlers{
		Game:     gameSvc,
		Profile:  profile,
		Fixtures: fixtures,
		Settings: settings,
		Backend:  backend,
		Auth:     auth.New("test-password"),
		Log:      logger.Discard(),
		Location: time.UTC,
	}
}
