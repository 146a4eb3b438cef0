package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/abrezinsky/swipick/internal/models"
	"github.com/abrezinsky/swipick/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// Fixture builds a fixture of week kicking off at kickoff
func Fixture(id string, week int, kickoff time.Time) models.Fixture {
	return models.Fixture{
		ID:      id,
		Week:    week,
		Kickoff: kickoff.UTC().Truncate(time.Second),
		Stadium: "Stadio " + id,
		Home:    models.Team{Name: id + " Home", StandingsPosition: 1, WinRate: 0.5, Last5: []string{"W", "D", "L"}},
		Away:    models.Team{Name: id + " Away", StandingsPosition: 2, WinRate: 0.25},
	}
}

// SeedWeek stores count fixtures of week, one hour apart starting at first,
// and returns them in kickoff order
func SeedWeek(t *testing.T, repo repository.FixtureRepository, week, count int, first time.Time) []models.Fixture {
	t.Helper()

	fixtures := make([]models.Fixture, count)
	for i := range fixtures {
		fixtures[i] = Fixture(fmt.Sprintf("w%d-f%d", week, i), week, first.Add(time.Duration(i)*time.Hour))
		if err := repo.UpsertFixture(context.Background(), fixtures[i]); err != nil {
			t.Fatalf("failed to seed fixture: %v", err)
		}
	}
	return fixtures
}
