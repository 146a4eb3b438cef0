package game

import "github.com/abrezinsky/swipick/internal/errors"

// Session errors. Compare with errors.Is from the standard library.
var (
	ErrNoFixtures       = errors.NotFound("No fixtures available for this week.")
	ErrNoCurrentFixture = errors.NotFound("no current fixture")
	ErrFixtureStarted   = errors.Conflict("fixture has already started")
	ErrStalledProgress  = errors.Internalf("no open or skipped fixture left to present")
)
