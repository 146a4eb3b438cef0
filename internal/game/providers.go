package game

import (
	"context"

	"github.com/abrezinsky/swipick/internal/models"
)

// FixtureProvider supplies the fixtures of a competition week
type FixtureProvider interface {
	FixturesForWeek(ctx context.Context, week int) ([]models.Fixture, error)
	CurrentWeek(ctx context.Context) (int, error)
}

// PredictionRepository persists a user's predictions.
// CreatePrediction upserts on (user, fixture, mode) and must never receive SKIP.
type PredictionRepository interface {
	CreatePrediction(ctx context.Context, p models.Prediction) (*models.Prediction, error)
	PredictionsForWeek(ctx context.Context, userID string, week int, mode models.Mode) ([]models.Prediction, error)
	// DeletePredictions removes the user's predictions for mode, or for every mode when mode is nil
	DeletePredictions(ctx context.Context, userID string, mode *models.Mode) error
}
