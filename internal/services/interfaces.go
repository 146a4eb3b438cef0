package services

import (
	"context"

	"github.com/abrezinsky/swipick/internal/game"
	"github.com/abrezinsky/swipick/internal/models"
)

// SummaryProvider returns a user's prediction summary for one mode.
// Both the local store and the remote client implement it.
type SummaryProvider interface {
	GetSummary(ctx context.Context, userID string, mode models.Mode) (*models.Summary, error)
}

// Broadcaster defines the interface for pushing updates to connected clients
type Broadcaster interface {
	BroadcastSession(userID string, state game.State)
	BroadcastLiveWeek(week int)
}

// GameServicer defines the interface for prediction session operations
type GameServicer interface {
	LoadWeek(ctx context.Context, userID string, week int, mode models.Mode) (game.Outcome, game.State)
	LoadLiveWeek(ctx context.Context, userID string) (game.Outcome, game.State)
	Predict(ctx context.Context, userID string, choice models.Choice) (game.Outcome, game.State)
	Skip(ctx context.Context, userID string) (game.Outcome, game.State)
	Previous(ctx context.Context, userID string) (game.Outcome, game.State)
	GoTo(ctx context.Context, userID string, index int) (game.Outcome, game.State)
	ToggleSummary(ctx context.Context, userID string) (game.Outcome, game.State)
	Reset(ctx context.Context, userID string) (game.Outcome, game.State)
	ClearError(ctx context.Context, userID string) game.State
	State(ctx context.Context, userID string) game.State
	EndSession(userID string)
	ActiveSessions() int
	SetBroadcaster(b Broadcaster)
}

// ProfileServicer defines the interface for profile KPI operations
type ProfileServicer interface {
	GetProfile(ctx context.Context, userID string, mode models.Mode) (*Profile, error)
	ShareQR(ctx context.Context, userID string, mode models.Mode) ([]byte, error)
}

// FixtureServicer defines the interface for fixture administration
type FixtureServicer interface {
	ImportFixtures(ctx context.Context, fixtures []models.Fixture) (int, error)
	FixturesForWeek(ctx context.Context, week int) ([]models.Fixture, error)
	ListWeeks(ctx context.Context) ([]int, error)
	GetFixture(ctx context.Context, id string) (*models.Fixture, error)
	RecordResult(ctx context.Context, result models.Result) error
	CurrentWeek(ctx context.Context) (int, error)
	NextKickoff(ctx context.Context) (*models.Fixture, error)
}

// BaseURLProvider supplies the public address used in share links
type BaseURLProvider interface {
	GetBaseURL(ctx context.Context) (string, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetLiveWeek(ctx context.Context) (int, error)
	SetLiveWeek(ctx context.Context, week int) error
	ClearLiveWeek(ctx context.Context) error
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	GetStats(ctx context.Context) (map[string]interface{}, error)
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
	SetBroadcaster(b Broadcaster)
}

// Ensure concrete types implement interfaces
var (
	_ GameServicer     = (*GameService)(nil)
	_ ProfileServicer  = (*ProfileService)(nil)
	_ FixtureServicer  = (*FixtureService)(nil)
	_ SettingsServicer = (*SettingsService)(nil)
)
