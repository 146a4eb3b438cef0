package swipick

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abrezinsky/swipick/internal/models"
)

// MockClient is an in-memory Swipick backend for testing
type MockClient struct {
	mu sync.Mutex

	baseURL     string
	fixtures    map[int][]models.Fixture
	currentWeek int
	predictions map[string]models.Prediction // user|fixture|mode -> prediction
	summaries   map[string]*models.Summary   // user|mode -> summary
	nextID      int

	fixturesErr error
	weekErr     error
	createErr   error
	listErr     error
	deleteErr   error
	summaryErr  error

	created []models.Prediction
	deleted []DeleteCall
}

// DeleteCall records one DeletePredictions call
type DeleteCall struct {
	UserID string
	Mode   *models.Mode
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithFixtures sets the fixtures served for week
func WithFixtures(week int, fixtures []models.Fixture) MockOption {
	return func(m *MockClient) {
		m.fixtures[week] = fixtures
	}
}

// WithCurrentWeek sets the week returned by CurrentWeek
func WithCurrentWeek(week int) MockOption {
	return func(m *MockClient) {
		m.currentWeek = week
	}
}

// WithPredictions seeds stored predictions
func WithPredictions(predictions ...models.Prediction) MockOption {
	return func(m *MockClient) {
		for _, p := range predictions {
			m.predictions[predictionKey(p.UserID, p.FixtureID, p.Mode)] = p
		}
	}
}

// WithSummary sets the summary returned for a user and mode
func WithSummary(userID string, mode models.Mode, s *models.Summary) MockOption {
	return func(m *MockClient) {
		m.summaries[userID+"|"+string(mode)] = s
	}
}

// WithFixturesError sets an error to return from FixturesForWeek
func WithFixturesError(err error) MockOption {
	return func(m *MockClient) {
		m.fixturesErr = err
	}
}

// WithCurrentWeekError sets an error to return from CurrentWeek
func WithCurrentWeekError(err error) MockOption {
	return func(m *MockClient) {
		m.weekErr = err
	}
}

// WithCreateError sets an error to return from CreatePrediction
func WithCreateError(err error) MockOption {
	return func(m *MockClient) {
		m.createErr = err
	}
}

// WithListError sets an error to return from PredictionsForWeek
func WithListError(err error) MockOption {
	return func(m *MockClient) {
		m.listErr = err
	}
}

// WithDeleteError sets an error to return from DeletePredictions
func WithDeleteError(err error) MockOption {
	return func(m *MockClient) {
		m.deleteErr = err
	}
}

// WithSummaryError sets an error to return from GetSummary
func WithSummaryError(err error) MockOption {
	return func(m *MockClient) {
		m.summaryErr = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock Swipick client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:     "http://mock-swipick.local",
		fixtures:    make(map[int][]models.Fixture),
		currentWeek: 1,
		predictions: make(map[string]models.Prediction),
		summaries:   make(map[string]*models.Summary),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func predictionKey(userID, fixtureID string, mode models.Mode) string {
	return userID + "|" + fixtureID + "|" + string(mode)
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// FixturesForWeek returns the configured fixtures of week
func (m *MockClient) FixturesForWeek(ctx context.Context, week int) ([]models.Fixture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fixturesErr != nil {
		return nil, m.fixturesErr
	}
	out := make([]models.Fixture, len(m.fixtures[week]))
	copy(out, m.fixtures[week])
	return out, nil
}

// CurrentWeek returns the configured week
func (m *MockClient) CurrentWeek(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.weekErr != nil {
		return 0, m.weekErr
	}
	return m.currentWeek, nil
}

// CreatePrediction stores p, replacing any prediction for the same
// user, fixture and mode
func (m *MockClient) CreatePrediction(ctx context.Context, p models.Prediction) (*models.Prediction, error) {
	if !p.Choice.Persistable() {
		return nil, ErrSkipNotAllowed
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}

	key := predictionKey(p.UserID, p.FixtureID, p.Mode)
	if existing, ok := m.predictions[key]; ok {
		p.ID = existing.ID
	} else {
		m.nextID++
		p.ID = fmt.Sprintf("mock-%d", m.nextID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.predictions[key] = p
	m.created = append(m.created, p)
	return &p, nil
}

// PredictionsForWeek returns the stored predictions of a user for week and mode
func (m *MockClient) PredictionsForWeek(ctx context.Context, userID string, week int, mode models.Mode) ([]models.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.Prediction{}
	for _, p := range m.predictions {
		if p.UserID == userID && p.Week == week && p.Mode == mode {
			out = append(out, p)
		}
	}
	return out, nil
}

// DeletePredictions removes a user's predictions for mode, or all when mode is nil
func (m *MockClient) DeletePredictions(ctx context.Context, userID string, mode *models.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, DeleteCall{UserID: userID, Mode: mode})
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for key, p := range m.predictions {
		if p.UserID == userID && (mode == nil || p.Mode == *mode) {
			delete(m.predictions, key)
		}
	}
	return nil
}

// GetSummary returns the configured summary, or a zeroed one
func (m *MockClient) GetSummary(ctx context.Context, userID string, mode models.Mode) (*models.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	if s, ok := m.summaries[userID+"|"+string(mode)]; ok {
		return s, nil
	}
	return models.EmptySummary(userID), nil
}

// Created returns the predictions passed to CreatePrediction (for testing)
func (m *MockClient) Created() []models.Prediction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Prediction(nil), m.created...)
}

// Deleted returns the recorded DeletePredictions calls (for testing)
func (m *MockClient) Deleted() []DeleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DeleteCall(nil), m.deleted...)
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
