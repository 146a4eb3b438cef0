package mock

import (
	"context"
	"time"

	"github.com/abrezinsky/swipick/internal/models"
	"github.com/abrezinsky/swipick/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CreatePredictionError = errors.New("database error")
//	svc := services.NewGameService(log, mockRepo, mockRepo)
//	out, _ := svc.Predict(ctx, "user-1", models.ChoiceHome)
//	// out.Status will now be game.StatusFailed
type Repository struct {
	repository.FullRepository

	// ===== Fixture Errors =====
	UpsertFixtureError    error
	GetFixtureError       error
	FixturesForWeekError  error
	ListWeeksError        error
	SetFixtureResultError error
	NextKickoffError      error
	CurrentWeekError      error

	// ===== Prediction Errors =====
	CreatePredictionError   error
	PredictionsForWeekError error
	DeletePredictionsError  error
	GetWeekDetailError      error
	GetSummaryError         error

	// ===== Settings Errors =====
	GetSettingError    error
	SetSettingError    error
	DeleteSettingError error
	GetStatsError      error
	ClearTableError    error

	// CreatePredictionCalls counts CreatePrediction calls, including failed ones
	CreatePredictionCalls int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Fixture Methods =====

func (m *Repository) UpsertFixture(ctx context.Context, f models.Fixture) error {
	if m.UpsertFixtureError != nil {
		return m.UpsertFixtureError
	}
	return m.FullRepository.UpsertFixture(ctx, f)
}

func (m *Repository) GetFixture(ctx context.Context, id string) (*models.Fixture, error) {
	if m.GetFixtureError != nil {
		return nil, m.GetFixtureError
	}
	return m.FullRepository.GetFixture(ctx, id)
}

func (m *Repository) FixturesForWeek(ctx context.Context, week int) ([]models.Fixture, error) {
	if m.FixturesForWeekError != nil {
		return nil, m.FixturesForWeekError
	}
	return m.FullRepository.FixturesForWeek(ctx, week)
}

func (m *Repository) ListWeeks(ctx context.Context) ([]int, error) {
	if m.ListWeeksError != nil {
		return nil, m.ListWeeksError
	}
	return m.FullRepository.ListWeeks(ctx)
}

func (m *Repository) SetFixtureResult(ctx context.Context, result models.Result) error {
	if m.SetFixtureResultError != nil {
		return m.SetFixtureResultError
	}
	return m.FullRepository.SetFixtureResult(ctx, result)
}

func (m *Repository) NextKickoff(ctx context.Context, after time.Time) (*models.Fixture, error) {
	if m.NextKickoffError != nil {
		return nil, m.NextKickoffError
	}
	return m.FullRepository.NextKickoff(ctx, after)
}

func (m *Repository) CurrentWeek(ctx context.Context) (int, error) {
	if m.CurrentWeekError != nil {
		return 0, m.CurrentWeekError
	}
	return m.FullRepository.CurrentWeek(ctx)
}

// ===== Prediction Methods =====

func (m *Repository) CreatePrediction(ctx context.Context, p models.Prediction) (*models.Prediction, error) {
	m.CreatePredictionCalls++
	if m.CreatePredictionError != nil {
		return nil, m.CreatePredictionError
	}
	return m.FullRepository.CreatePrediction(ctx, p)
}

func (m *Repository) PredictionsForWeek(ctx context.Context, userID string, week int, mode models.Mode) ([]models.Prediction, error) {
	if m.PredictionsForWeekError != nil {
		return nil, m.PredictionsForWeekError
	}
	return m.FullRepository.PredictionsForWeek(ctx, userID, week, mode)
}

func (m *Repository) DeletePredictions(ctx context.Context, userID string, mode *models.Mode) error {
	if m.DeletePredictionsError != nil {
		return m.DeletePredictionsError
	}
	return m.FullRepository.DeletePredictions(ctx, userID, mode)
}

func (m *Repository) GetWeekDetail(ctx context.Context, userID string, week int, mode models.Mode) (*models.WeeklyStat, error) {
	if m.GetWeekDetailError != nil {
		return nil, m.GetWeekDetailError
	}
	return m.FullRepository.GetWeekDetail(ctx, userID, week, mode)
}

func (m *Repository) GetSummary(ctx context.Context, userID string, mode models.Mode) (*models.Summary, error) {
	if m.GetSummaryError != nil {
		return nil, m.GetSummaryError
	}
	return m.FullRepository.GetSummary(ctx, userID, mode)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) DeleteSetting(ctx context.Context, key string) error {
	if m.DeleteSettingError != nil {
		return m.DeleteSettingError
	}
	return m.FullRepository.DeleteSetting(ctx, key)
}

func (m *Repository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	if m.GetStatsError != nil {
		return nil, m.GetStatsError
	}
	return m.FullRepository.GetStats(ctx)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}
