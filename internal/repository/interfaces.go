package repository

import (
	"context"
	"time"

	"github.com/abrezinsky/swipick/internal/models"
)

// FixtureRepository defines fixture data operations
type FixtureRepository interface {
	UpsertFixture(ctx context.Context, f models.Fixture) error
	GetFixture(ctx context.Context, id string) (*models.Fixture, error)
	FixturesForWeek(ctx context.Context, week int) ([]models.Fixture, error)
	ListWeeks(ctx context.Context) ([]int, error)
	SetFixtureResult(ctx context.Context, result models.Result) error
	GetFixtureResult(ctx context.Context, id string) (*models.Result, error)
	NextKickoff(ctx context.Context, after time.Time) (*models.Fixture, error)
	CurrentWeek(ctx context.Context) (int, error)
}

// PredictionRepository defines prediction data operations
type PredictionRepository interface {
	CreatePrediction(ctx context.Context, p models.Prediction) (*models.Prediction, error)
	PredictionsForWeek(ctx context.Context, userID string, week int, mode models.Mode) ([]models.Prediction, error)
	DeletePredictions(ctx context.Context, userID string, mode *models.Mode) error
	GetWeekDetail(ctx context.Context, userID string, week int, mode models.Mode) (*models.WeeklyStat, error)
	GetSummary(ctx context.Context, userID string, mode models.Mode) (*models.Summary, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
	GetStats(ctx context.Context) (map[string]interface{}, error)
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	FixtureRepository
	PredictionRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
