package services

import (
	"context"
	"sync"
	"time"

	"github.com/abrezinsky/swipick/internal/game"
	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/models"
)

// GameService keeps one prediction session per user and publishes every
// state change to that user's connected clients
type GameService struct {
	log         logger.Logger
	fixtures    game.FixtureProvider
	repo        game.PredictionRepository
	now         func() time.Time
	broadcaster Broadcaster

	mu       sync.Mutex
	sessions map[string]*game.Session
}

// NewGameService creates a new GameService
func NewGameService(log logger.Logger, fixtures game.FixtureProvider, repo game.PredictionRepository) *GameService {
	return &GameService{
		log:      log,
		fixtures: fixtures,
		repo:     repo,
		now:      time.Now,
		sessions: make(map[string]*game.Session),
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock replaces time.Now for sessions created afterwards
func (s *GameService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *GameService) session(userID string) *game.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = game.NewSession(s.log, s.fixtures, s.repo, game.WithClock(s.now))
		s.sessions[userID] = sess
		s.log.Debug("Session created", "user_id", userID)
	}
	return sess
}

// run applies cmd to the user's session and publishes the resulting state
func (s *GameService) run(userID string, cmd func(*game.Session) game.Outcome) (game.Outcome, game.State) {
	if userID == "" {
		return game.Outcome{Status: game.StatusRejected, Err: ErrUserRequired}, game.State{}
	}
	sess := s.session(userID)
	outcome := cmd(sess)
	state := sess.Snapshot()
	s.publish(userID, state)
	return outcome, state
}

func (s *GameService) publish(userID string, state game.State) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSession(userID, state)
	}
}

// LoadWeek loads a week of fixtures into the user's session
func (s *GameService) LoadWeek(ctx context.Context, userID string, week int, mode models.Mode) (game.Outcome, game.State) {
	return s.run(userID, func(sess *game.Session) game.Outcome {
		return sess.LoadWeek(ctx, week, mode, userID)
	})
}

// LoadLiveWeek loads the current week in live mode
func (s *GameService) LoadLiveWeek(ctx context.Context, userID string) (game.Outcome, game.State) {
	return s.run(userID, func(sess *game.Session) game.Outcome {
		return sess.LoadLiveWeek(ctx, userID)
	})
}

// Predict records a choice for the current card
func (s *GameService) Predict(ctx context.Context, userID string, choice models.Choice) (game.Outcome, game.State) {
	return s.run(userID, func(sess *game.Session) game.Outcome {
		return sess.Predict(ctx, userID, choice)
	})
}

// Skip defers the current card
func (s *GameService) Skip(ctx context.Context, userID string) (game.Outcome, game.State) {
	return s.run(userID, func(sess *game.Session) game.Outcome {
		return sess.Skip()
	})
}

// Previous moves back one card
func (s *GameService) Previous(ctx context.Context, userID string) (game.Outcome, game.State) {
	return s.run(userID, func(sess *game.Session) game.Outcome {
		return sess.Previous()
	})
}

// GoTo moves to the card at index
func (s *GameService) GoTo(ctx context.Context, userID string, index int) (game.Outcome, game.State) {
	return s.run(userID, func(sess *game.Session) game.Outcome {
		return sess.GoTo(index)
	})
}

// ToggleSummary flips the summary flag
func (s *GameService) ToggleSummary(ctx context.Context, userID string) (game.Outcome, game.State) {
	return s.run(userID, func(sess *game.Session) game.Outcome {
		return sess.ToggleSummary()
	})
}

// Reset deletes the user's predictions for the session mode and reloads the week
func (s *GameService) Reset(ctx context.Context, userID string) (game.Outcome, game.State) {
	return s.run(userID, func(sess *game.Session) game.Outcome {
		return sess.Reset(ctx, userID)
	})
}

// ClearError drops the error message of the user's session
func (s *GameService) ClearError(ctx context.Context, userID string) game.State {
	_, state := s.run(userID, func(sess *game.Session) game.Outcome {
		sess.ClearError()
		return game.Outcome{Status: game.StatusOK}
	})
	return state
}

// State returns the user's session state without changing it
func (s *GameService) State(ctx context.Context, userID string) game.State {
	if userID == "" {
		return game.State{}
	}
	return s.session(userID).Snapshot()
}

// EndSession forgets the user's session
func (s *GameService) EndSession(userID string) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

// ActiveSessions returns the number of sessions held in memory
func (s *GameService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
