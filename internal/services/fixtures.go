package services

import (
	"context"
	"time"

	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/models"
	"github.com/abrezinsky/swipick/internal/repository"
)

// FixtureService handles fixture administration against the local store
type FixtureService struct {
	log  logger.Logger
	repo repository.FixtureRepository
	now  func() time.Time
}

// NewFixtureService creates a new FixtureService
func NewFixtureService(log logger.Logger, repo repository.FixtureRepository) *FixtureService {
	return &FixtureService{log: log, repo: repo, now: time.Now}
}

// SetClock replaces time.Now, for tests
func (s *FixtureService) SetClock(now func() time.Time) {
	s.now = now
}

// ImportFixtures validates and upserts fixtures, returning how many were stored.
// Nothing is stored if any fixture is invalid.
func (s *FixtureService) ImportFixtures(ctx context.Context, fixtures []models.Fixture) (int, error) {
	if len(fixtures) == 0 {
		return 0, ErrNoFixturesGiven
	}
	for _, f := range fixtures {
		if f.ID == "" || f.Week < 1 || f.Kickoff.IsZero() {
			return 0, ErrInvalidFixture
		}
	}

	for i, f := range fixtures {
		if err := s.repo.UpsertFixture(ctx, f); err != nil {
			s.log.Error("Failed to store fixture", "fixture_id", f.ID, "error", err)
			return i, err
		}
	}

	s.log.Info("Fixtures imported", "count", len(fixtures))
	return len(fixtures), nil
}

// FixturesForWeek returns the fixtures of week in kickoff order
func (s *FixtureService) FixturesForWeek(ctx context.Context, week int) ([]models.Fixture, error) {
	if week < 1 {
		return nil, ErrInvalidWeek
	}
	return s.repo.FixturesForWeek(ctx, week)
}

// ListWeeks returns every week that has fixtures
func (s *FixtureService) ListWeeks(ctx context.Context) ([]int, error) {
	return s.repo.ListWeeks(ctx)
}

// GetFixture returns a fixture by id
func (s *FixtureService) GetFixture(ctx context.Context, id string) (*models.Fixture, error) {
	return s.repo.GetFixture(ctx, id)
}

// RecordResult stores the final outcome of a fixture
func (s *FixtureService) RecordResult(ctx context.Context, result models.Result) error {
	if !result.Outcome.Persistable() {
		return ErrInvalidOutcome
	}
	if err := s.repo.SetFixtureResult(ctx, result); err != nil {
		return err
	}
	s.log.Info("Result recorded", "fixture_id", result.FixtureID, "outcome", result.Outcome)
	return nil
}

// CurrentWeek returns the live week
func (s *FixtureService) CurrentWeek(ctx context.Context) (int, error) {
	return s.repo.CurrentWeek(ctx)
}

// NextKickoff returns the next fixture to kick off, or nil when none is scheduled
func (s *FixtureService) NextKickoff(ctx context.Context) (*models.Fixture, error) {
	f, err := s.repo.NextKickoff(ctx, s.now())
	if err == repository.ErrNotFound {
		return nil, nil
	}
	return f, err
}
