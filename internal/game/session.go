package game

import (
	"context"
	"sync"
	"time"

	"github.com/abrezinsky/swipick/internal/errors"
	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/models"
)

// Status classifies the result of a session operation
type Status int

const (
	StatusOK Status = iota
	StatusRejected
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRejected:
		return "rejected"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is returned by every session command.
// Rejected means the command was refused before any remote call;
// Failed means a remote call did not succeed.
type Outcome struct {
	Status      Status
	Err         error
	ShowSummary bool
}

// OK reports whether the command took effect
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// Progress counts the cards of the loaded week
type Progress struct {
	Total     int `json:"total"`
	Predicted int `json:"predicted"`
	Missed    int `json:"missed"`
}

// State is a read-only snapshot of a session
type State struct {
	UserID       string                   `json:"user_id"`
	Week         int                      `json:"week"`
	Mode         models.Mode              `json:"mode"`
	Fixtures     []models.Fixture         `json:"fixtures"`
	Predictions  map[string]models.Choice `json:"predictions"`
	Skipped      []string                 `json:"skipped"`
	CurrentIndex int                      `json:"current_index"`
	Current      *models.Fixture          `json:"current,omitempty"`
	Loading      bool                     `json:"loading"`
	Error        string                   `json:"error,omitempty"`
	Complete     bool                     `json:"complete"`
	ShowSummary  bool                     `json:"show_summary"`
	Progress     Progress                 `json:"progress"`
}

// Option configures a Session
type Option func(*Session)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is the prediction flow of one user over one week of fixtures.
//
// Commands are serialized: a command holds opMu for its whole duration,
// remote calls included, so a late response can never be applied over a
// newer command. Snapshot only takes mu and stays readable while a
// remote call is in flight.
type Session struct {
	opMu sync.Mutex
	mu   sync.RWMutex

	log      logger.Logger
	fixtures FixtureProvider
	repo     PredictionRepository
	now      func() time.Time

	userID      string
	week        int
	mode        models.Mode
	cards       []models.Fixture
	picks       map[string]models.Choice
	skipped     map[string]bool
	current     int
	loading     bool
	errMsg      string
	complete    bool
	showSummary bool
}

// NewSession creates an empty session for week 1 in live mode
func NewSession(log logger.Logger, fixtures FixtureProvider, repo PredictionRepository, opts ...Option) *Session {
	s := &Session{
		log:      log,
		fixtures: fixtures,
		repo:     repo,
		now:      time.Now,
		week:     1,
		mode:     models.ModeLive,
		picks:    make(map[string]models.Choice),
		skipped:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadWeek replaces the session with the fixtures and stored predictions
// of (userID, week, mode). Nothing is written during a load.
func (s *Session) LoadWeek(ctx context.Context, week int, mode models.Mode, userID string) Outcome {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.loadWeek(ctx, week, mode, userID)
}

// LoadLiveWeek loads the provider's current week in live mode, or week 1
// when the current week cannot be determined.
func (s *Session) LoadLiveWeek(ctx context.Context, userID string) Outcome {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	week, err := s.fixtures.CurrentWeek(ctx)
	if err != nil || week < 1 {
		s.log.Warn("Could not determine live week, falling back to week 1", "user_id", userID, "week", week, "error", err)
		week = 1
	}
	return s.loadWeek(ctx, week, models.ModeLive, userID)
}

func (s *Session) loadWeek(ctx context.Context, week int, mode models.Mode, userID string) Outcome {
	switch {
	case userID == "":
		return rejected(errors.InvalidInput("user id is required"))
	case week < 1:
		return rejected(errors.InvalidInputf("invalid week %d", week))
	case !mode.Valid():
		return rejected(errors.InvalidInputf("invalid mode %q", mode))
	}

	s.begin()

	fixtures, err := s.fixtures.FixturesForWeek(ctx, week)
	if err != nil {
		return s.fail(errors.RemoteRead(err, "failed to load fixtures"), "week", week)
	}

	if len(fixtures) == 0 {
		s.mu.Lock()
		s.userID = userID
		s.week = week
		s.mode = mode
		s.cards = []models.Fixture{}
		s.picks = make(map[string]models.Choice)
		s.skipped = make(map[string]bool)
		s.current = 0
		s.complete = false
		s.showSummary = false
		s.loading = false
		s.errMsg = ErrNoFixtures.Error()
		s.mu.Unlock()
		s.log.Info("No fixtures for week", "user_id", userID, "week", week, "mode", mode)
		return rejected(ErrNoFixtures)
	}

	stored, err := s.repo.PredictionsForWeek(ctx, userID, week, mode)
	if err != nil {
		return s.fail(errors.RemoteRead(err, "failed to load predictions"), "week", week)
	}

	known := make(map[string]bool, len(fixtures))
	for _, f := range fixtures {
		known[f.ID] = true
	}
	picks := make(map[string]models.Choice, len(stored))
	for _, p := range stored {
		if !p.Choice.Persistable() || !known[p.FixtureID] {
			continue
		}
		picks[p.FixtureID] = p.Choice
	}

	now := s.now()
	complete := isComplete(fixtures, picks, now)
	current := 0
	if !complete {
		for i, f := range fixtures {
			if _, ok := picks[f.ID]; !ok {
				current = i
				break
			}
		}
	}

	s.mu.Lock()
	s.userID = userID
	s.week = week
	s.mode = mode
	s.cards = fixtures
	s.picks = picks
	s.skipped = make(map[string]bool)
	s.current = current
	s.complete = complete
	s.showSummary = complete
	s.loading = false
	s.errMsg = ""
	s.mu.Unlock()

	s.log.Info("Week loaded",
		"user_id", userID,
		"week", week,
		"mode", mode,
		"fixtures", len(fixtures),
		"predictions", len(picks),
		"complete", complete)

	return Outcome{Status: StatusOK, ShowSummary: complete}
}

// Predict records choice for the current fixture and advances.
// SKIP is handled as Skip. A fixture at or past kickoff is rejected
// without any write.
func (s *Session) Predict(ctx context.Context, userID string, choice models.Choice) Outcome {
	if choice == models.ChoiceSkip {
		return s.Skip()
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if !choice.Persistable() {
		return rejected(errors.InvalidInputf("invalid choice %q", choice))
	}

	s.mu.RLock()
	fixture, ok := s.currentFixture()
	week, mode := s.week, s.mode
	if userID == "" {
		userID = s.userID
	}
	s.mu.RUnlock()

	if !ok {
		return rejected(ErrNoCurrentFixture)
	}
	if userID == "" {
		return rejected(errors.InvalidInput("user id is required"))
	}
	if fixture.Started(s.now()) {
		s.log.Debug("Prediction rejected, fixture started", "user_id", userID, "fixture_id", fixture.ID, "kickoff", fixture.Kickoff)
		return rejected(ErrFixtureStarted)
	}

	s.begin()

	_, err := s.repo.CreatePrediction(ctx, models.Prediction{
		UserID:    userID,
		FixtureID: fixture.ID,
		Choice:    choice,
		Week:      week,
		Mode:      mode,
	})
	if err != nil {
		return s.fail(errors.RemoteWrite(err, "failed to save prediction"), "fixture_id", fixture.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.picks[fixture.ID] = choice
	delete(s.skipped, fixture.ID)
	s.loading = false
	s.advance()

	s.log.Debug("Prediction saved", "user_id", userID, "fixture_id", fixture.ID, "choice", choice, "week", week, "mode", mode)
	return Outcome{Status: StatusOK, ShowSummary: s.showSummary}
}

// Skip marks the current fixture as skipped for this session and advances.
// Skipping is allowed after kickoff.
func (s *Session) Skip() Outcome {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	fixture, ok := s.currentFixture()
	if !ok {
		return rejected(ErrNoCurrentFixture)
	}
	s.skipped[fixture.ID] = true
	s.advance()
	return Outcome{Status: StatusOK, ShowSummary: s.showSummary}
}

// advance moves to the next card. At the last card it either completes the
// session or cycles back to the first skipped fixture. Callers hold mu.
func (s *Session) advance() {
	if s.current < len(s.cards)-1 {
		s.current++
		return
	}

	if isComplete(s.cards, s.picks, s.now()) {
		s.complete = true
		s.showSummary = true
		s.log.Info("Session complete", "user_id", s.userID, "week", s.week, "mode", s.mode)
		return
	}

	for i, f := range s.cards {
		if s.skipped[f.ID] {
			s.current = i
			return
		}
	}

	// Unreachable through Predict and Skip alone: a non-complete session
	// always has an open fixture, and every open fixture before the last
	// card was either predicted or skipped on the way here.
	now := s.now()
	for i, f := range s.cards {
		if _, ok := s.picks[f.ID]; !ok && !f.Started(now) {
			s.current = i
			break
		}
	}
	s.errMsg = ErrStalledProgress.Error()
	s.log.Error("Session reached the last card with nothing to present",
		"user_id", s.userID,
		"week", s.week,
		"fixtures", len(s.cards),
		"predictions", len(s.picks),
		"jump_to", s.current)
}

// Reset deletes the user's predictions for the session mode and reloads
// the current week. Local state is untouched if the delete fails.
func (s *Session) Reset(ctx context.Context, userID string) Outcome {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	week, mode := s.week, s.mode
	if userID == "" {
		userID = s.userID
	}
	s.mu.RUnlock()

	if userID == "" {
		return rejected(errors.InvalidInput("user id is required"))
	}

	s.begin()

	if err := s.repo.DeletePredictions(ctx, userID, &mode); err != nil {
		return s.fail(errors.RemoteWrite(err, "failed to delete predictions"), "week", week)
	}

	s.log.Info("Predictions reset", "user_id", userID, "mode", mode)
	return s.loadWeek(ctx, week, mode, userID)
}

// Previous moves back one card
func (s *Session) Previous() Outcome {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 0 {
		s.current--
	}
	return Outcome{Status: StatusOK, ShowSummary: s.showSummary}
}

// GoTo moves to the card at index
func (s *Session) GoTo(index int) Outcome {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.cards) {
		return rejected(errors.InvalidInputf("card index %d out of range", index))
	}
	s.current = index
	return Outcome{Status: StatusOK, ShowSummary: s.showSummary}
}

// ToggleSummary flips the summary flag
func (s *Session) ToggleSummary() Outcome {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.showSummary = !s.showSummary
	return Outcome{Status: StatusOK, ShowSummary: s.showSummary}
}

// ClearError drops the error message from the state
func (s *Session) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	st := State{
		UserID:       s.userID,
		Week:         s.week,
		Mode:         s.mode,
		Fixtures:     make([]models.Fixture, len(s.cards)),
		Predictions:  make(map[string]models.Choice, len(s.picks)),
		Skipped:      []string{},
		CurrentIndex: s.current,
		Loading:      s.loading,
		Error:        s.errMsg,
		Complete:     s.complete,
		ShowSummary:  s.showSummary,
	}
	copy(st.Fixtures, s.cards)
	for id, c := range s.picks {
		st.Predictions[id] = c
	}
	for i, f := range s.cards {
		if s.skipped[f.ID] {
			st.Skipped = append(st.Skipped, f.ID)
		}
		if i == s.current {
			cur := f
			st.Current = &cur
		}
	}
	st.Progress = progress(s.cards, s.picks, now)
	return st
}

func (s *Session) currentFixture() (models.Fixture, bool) {
	if s.current < 0 || s.current >= len(s.cards) {
		return models.Fixture{}, false
	}
	return s.cards[s.current], true
}

func (s *Session) begin() {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()
}

// fail records a remote failure, leaving everything else as it was
func (s *Session) fail(err *errors.Error, args ...any) Outcome {
	s.mu.Lock()
	s.loading = false
	s.errMsg = err.Error()
	userID := s.userID
	s.mu.Unlock()

	s.log.Error(err.Message, append([]any{"user_id", userID, "error", err.Err}, args...)...)
	return Outcome{Status: StatusFailed, Err: err}
}

func rejected(err error) Outcome {
	return Outcome{Status: StatusRejected, Err: err}
}

// progress counts predicted fixtures and fixtures missed by kickoff
func progress(fixtures []models.Fixture, picks map[string]models.Choice, now time.Time) Progress {
	p := Progress{Total: len(fixtures)}
	for _, f := range fixtures {
		if c, ok := picks[f.ID]; ok && c.Persistable() {
			p.Predicted++
			continue
		}
		if f.Started(now) {
			p.Missed++
		}
	}
	return p
}

// isComplete reports whether predicted plus missed fixtures cover the week
func isComplete(fixtures []models.Fixture, picks map[string]models.Choice, now time.Time) bool {
	p := progress(fixtures, picks, now)
	return p.Predicted+p.Missed >= p.Total
}

