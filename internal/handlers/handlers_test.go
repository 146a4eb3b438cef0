package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/swipick/internal/auth"
	"github.com/abrezinsky/swipick/internal/handlers"
	"github.com/abrezinsky/swipick/internal/kpi"
	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/models"
	"github.com/abrezinsky/swipick/internal/repository"
	"github.com/abrezinsky/swipick/internal/repository/mock"
	"github.com/abrezinsky/swipick/internal/services"
	"github.com/abrezinsky/swipick/internal/testutil"
)

// testSetup holds the dependencies for handler tests
type testSetup struct {
	repo       repository.FullRepository
	handlers   *handlers.Handlers
	router     chi.Router
	authCookie *http.Cookie
}

// newTestSetup creates a new test setup with an in-memory repository
func newTestSetup(t *testing.T) *testSetup {
	t.Helper()
	return newTestSetupWithRepo(t, testutil.NewTestRepository(t))
}

// newTestSetupWithMockRepo wraps the in-memory repository with error injection
func newTestSetupWithMockRepo(t *testing.T) (*testSetup, *mock.Repository) {
	t.Helper()
	mockRepo := mock.NewRepository(testutil.NewTestRepository(t))
	return newTestSetupWithRepo(t, mockRepo), mockRepo
}

func newTestSetupWithRepo(t *testing.T, repo repository.FullRepository) *testSetup {
	t.Helper()

	log := logger.Discard()
	gameService := services.NewGameService(log, repo, repo)
	settingsService := services.NewSettingsService(log, repo)
	profileService := services.NewProfileService(log, repo, settingsService, kpi.NewFormatterForLocale("it-IT"))
	fixtureService := services.NewFixtureService(log, repo)

	h := handlers.NewForTesting(gameService, profileService, fixtureService, settingsService, repo)

	// Login to get a session cookie for authenticated requests
	token, _ := h.Auth.Login("test-password")

	return &testSetup{
		repo:       repo,
		handlers:   h,
		router:     h.Router(),
		authCookie: &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

// seedWeek stores count fixtures of week kicking off from one hour from now
func (s *testSetup) seedWeek(t *testing.T, week, count int) []models.Fixture {
	t.Helper()
	return testutil.SeedWeek(t, s.repo, week, count, time.Now().Add(time.Hour))
}

// do performs a request against the router; body is JSON-encoded unless nil
func (s *testSetup) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.AddCookie(s.authCookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) handlers.SessionResponse {
	t.Helper()
	var resp handlers.SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode session response: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

// ==================== Game ====================

func TestGame_FullWeek(t *testing.T) {
	setup := newTestSetup(t)
	fixtures := setup.seedWeek(t, 3, 2)

	rec := setup.do(t, http.MethodPost, "/api/game/u1/load", map[string]interface{}{"week": 3, "mode": "test"}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeSession(t, rec)
	if resp.Status != "ok" || resp.State.Week != 3 || resp.State.Mode != models.ModeTest || len(resp.State.Fixtures) != 2 {
		t.Fatalf("unexpected load response %+v", resp)
	}

	for _, choice := range []string{"1", "x"} {
		rec = setup.do(t, http.MethodPost, "/api/game/u1/predict", map[string]string{"choice": choice}, false)
		if rec.Code != http.StatusOK {
			t.Fatalf("predict %s: expected 200, got %d: %s", choice, rec.Code, rec.Body.String())
		}
	}

	resp = decodeSession(t, rec)
	if !resp.State.Complete || !resp.ShowSummary {
		t.Errorf("expected week complete with summary shown, got %+v", resp)
	}
	if resp.State.Predictions[fixtures[1].ID] != models.ChoiceDraw {
		t.Errorf("expected draw on second fixture, got %v", resp.State.Predictions)
	}

	stored, _ := setup.repo.PredictionsForWeek(context.Background(), "u1", 3, models.ModeTest)
	if len(stored) != 2 {
		t.Errorf("expected 2 stored predictions, got %d", len(stored))
	}
}

func TestGame_LoadWeek_DefaultsToLiveWeek(t *testing.T) {
	setup := newTestSetup(t)
	setup.seedWeek(t, 7, 1)

	rec := setup.do(t, http.MethodPost, "/api/game/u1/load", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeSession(t, rec)
	if resp.State.Week != 7 || resp.State.Mode != models.ModeLive {
		t.Errorf("expected live week 7, got week %d mode %s", resp.State.Week, resp.State.Mode)
	}

	rec = setup.do(t, http.MethodPost, "/api/game/u2/live", nil, false)
	if resp := decodeSession(t, rec); rec.Code != http.StatusOK || resp.State.Week != 7 {
		t.Errorf("expected live endpoint to load week 7, got %d %+v", rec.Code, resp.State)
	}
}

func TestGame_LoadWeek_Validation(t *testing.T) {
	setup := newTestSetup(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"bad mode", map[string]interface{}{"week": 1, "mode": "practice"}},
		{"negative week", map[string]interface{}{"week": -1, "mode": "live"}},
		{"mode without week", map[string]interface{}{"mode": "test"}},
		{"bad json", "not an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := setup.do(t, http.MethodPost, "/api/game/u1/load", tt.body, false)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGame_NoFixtures(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/game/u1/load", map[string]interface{}{"week": 30, "mode": "live"}, false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	resp := decodeSession(t, rec)
	if resp.Code != handlers.ErrCodeNoFixtures || resp.Status != "rejected" {
		t.Errorf("expected NO_FIXTURES rejection, got %+v", resp)
	}
	if resp.State.Week != 30 || resp.State.Error == "" {
		t.Errorf("expected state to carry the week and the error, got %+v", resp.State)
	}
}

func TestGame_Predict_InvalidChoice(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/game/u1/predict", map[string]string{"choice": "3"}, false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGame_Predict_NoCurrentFixture(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/game/u1/predict", map[string]string{"choice": "1"}, false)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeSession(t, rec); resp.Code != handlers.ErrCodeNoCurrentFixture {
		t.Errorf("expected NO_CURRENT_FIXTURE, got %s", resp.Code)
	}
}

func TestGame_Predict_FixtureStarted(t *testing.T) {
	setup := newTestSetup(t)
	testutil.SeedWeek(t, setup.repo, 2, 1, time.Now().Add(-time.Hour))

	setup.do(t, http.MethodPost, "/api/game/u1/load", map[string]interface{}{"week": 2, "mode": "live"}, false)
	rec := setup.do(t, http.MethodPost, "/api/game/u1/predict", map[string]string{"choice": "2"}, false)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeSession(t, rec); resp.Code != handlers.ErrCodeFixtureStarted {
		t.Errorf("expected FIXTURE_STARTED, got %s", resp.Code)
	}
}

func TestGame_Predict_WriteFailure(t *testing.T) {
	setup, mockRepo := newTestSetupWithMockRepo(t)
	setup.seedWeek(t, 1, 2)
	setup.do(t, http.MethodPost, "/api/game/u1/load", map[string]interface{}{"week": 1, "mode": "live"}, false)

	mockRepo.CreatePredictionError = context.DeadlineExceeded
	rec := setup.do(t, http.MethodPost, "/api/game/u1/predict", map[string]string{"choice": "1"}, false)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeSession(t, rec)
	if resp.Code != handlers.ErrCodeRemoteWrite || resp.Status != "failed" {
		t.Errorf("expected REMOTE_WRITE_FAILED, got %+v", resp)
	}
	if resp.State.CurrentIndex != 0 || resp.State.Error == "" {
		t.Errorf("expected the card to stay with an error, got %+v", resp.State)
	}

	rec = setup.do(t, http.MethodPost, "/api/game/u1/clear-error", nil, false)
	var state struct {
		Error string `json:"error"`
	}
	json.Unmarshal(rec.Body.Bytes(), &state)
	if rec.Code != http.StatusOK || state.Error != "" {
		t.Errorf("expected error cleared, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestGame_Navigation(t *testing.T) {
	setup := newTestSetup(t)
	setup.seedWeek(t, 1, 3)
	setup.do(t, http.MethodPost, "/api/game/u1/load", map[string]interface{}{"week": 1, "mode": "live"}, false)

	rec := setup.do(t, http.MethodPost, "/api/game/u1/skip", nil, false)
	if resp := decodeSession(t, rec); resp.State.CurrentIndex != 1 || len(resp.State.Skipped) != 1 {
		t.Errorf("expected skip to advance, got %+v", resp.State)
	}

	rec = setup.do(t, http.MethodPost, "/api/game/u1/previous", nil, false)
	if resp := decodeSession(t, rec); resp.State.CurrentIndex != 0 {
		t.Errorf("expected previous to go back, got %d", resp.State.CurrentIndex)
	}

	rec = setup.do(t, http.MethodPost, "/api/game/u1/goto", map[string]int{"index": 2}, false)
	if resp := decodeSession(t, rec); resp.State.CurrentIndex != 2 {
		t.Errorf("expected goto 2, got %d", resp.State.CurrentIndex)
	}

	rec = setup.do(t, http.MethodPost, "/api/game/u1/goto", map[string]int{"index": 9}, false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out of range index, got %d", rec.Code)
	}

	rec = setup.do(t, http.MethodPost, "/api/game/u1/summary", nil, false)
	if resp := decodeSession(t, rec); !resp.ShowSummary {
		t.Error("expected summary toggled on")
	}

	rec = setup.do(t, http.MethodGet, "/api/game/u1", nil, false)
	var state struct {
		CurrentIndex int  `json:"current_index"`
		ShowSummary  bool `json:"show_summary"`
	}
	json.Unmarshal(rec.Body.Bytes(), &state)
	if rec.Code != http.StatusOK || state.CurrentIndex != 2 || !state.ShowSummary {
		t.Errorf("unexpected state %s", rec.Body.String())
	}
}

func TestGame_Reset(t *testing.T) {
	setup := newTestSetup(t)
	setup.seedWeek(t, 1, 2)
	setup.do(t, http.MethodPost, "/api/game/u1/load", map[string]interface{}{"week": 1, "mode": "test"}, false)
	setup.do(t, http.MethodPost, "/api/game/u1/predict", map[string]string{"choice": "2"}, false)

	rec := setup.do(t, http.MethodPost, "/api/game/u1/reset", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeSession(t, rec); len(resp.State.Predictions) != 0 || resp.State.CurrentIndex != 0 {
		t.Errorf("expected predictions cleared, got %+v", resp.State)
	}
}

func TestGame_EndSession(t *testing.T) {
	setup := newTestSetup(t)
	setup.seedWeek(t, 1, 1)
	setup.do(t, http.MethodPost, "/api/game/u1/load", map[string]interface{}{"week": 1, "mode": "live"}, false)

	if n := setup.handlers.Game.ActiveSessions(); n != 1 {
		t.Fatalf("expected 1 active session, got %d", n)
	}
	rec := setup.do(t, http.MethodDelete, "/api/game/u1", nil, false)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if n := setup.handlers.Game.ActiveSessions(); n != 0 {
		t.Errorf("expected no active sessions, got %d", n)
	}
}

// ==================== Profile ====================

func TestProfile_Get(t *testing.T) {
	setup := newTestSetup(t)
	ctx := context.Background()
	fixtures := setup.seedWeek(t, 1, 2)
	for _, f := range fixtures {
		setup.repo.CreatePrediction(ctx, models.Prediction{UserID: "u1", FixtureID: f.ID, Choice: models.ChoiceHome, Week: 1, Mode: models.ModeLive})
	}
	setup.repo.SetFixtureResult(ctx, models.Result{FixtureID: fixtures[0].ID, Outcome: models.ChoiceHome})
	setup.repo.SetFixtureResult(ctx, models.Result{FixtureID: fixtures[1].ID, Outcome: models.ChoiceAway})

	rec := setup.do(t, http.MethodGet, "/api/profile/u1", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var profile services.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if profile.UserID != "u1" || profile.Mode != models.ModeLive || profile.KPI.WeeksPlayed != 1 {
		t.Errorf("unexpected profile %+v", profile)
	}
	if profile.KPI.Average != 50 {
		t.Errorf("expected 50%% average, got %v", profile.KPI.Average)
	}
	if profile.ShareMessage == "" {
		t.Error("expected a share message")
	}
}

func TestProfile_ShareLinkFollowsBaseURL(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPut, "/api/admin/settings", map[string]interface{}{"base_url": "http://10.0.0.2:8080"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating settings, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = setup.do(t, http.MethodGet, "/api/profile/u1", nil, false)
	var profile services.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if profile.ShareURL != "http://10.0.0.2:8080/api/profile/u1" {
		t.Errorf("unexpected share URL %q", profile.ShareURL)
	}
}

func TestProfile_InvalidMode(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/profile/u1?mode=practice", nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestProfile_QR(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/profile/u1/qr?mode=test", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("expected image/png, got %s", rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG data")
	}
}

func TestProfile_StoreError(t *testing.T) {
	setup, mockRepo := newTestSetupWithMockRepo(t)
	mockRepo.GetSummaryError = context.DeadlineExceeded

	rec := setup.do(t, http.MethodGet, "/api/profile/u1", nil, false)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), handlers.ErrCodeRemoteRead) {
		t.Errorf("expected REMOTE_READ_FAILED, got %s", rec.Body.String())
	}
}

// ==================== Fixtures ====================

func TestFixtures_Weeks(t *testing.T) {
	setup := newTestSetup(t)
	setup.seedWeek(t, 1, 1)
	testutil.SeedWeek(t, setup.repo, 2, 1, time.Now().Add(48*time.Hour))

	rec := setup.do(t, http.MethodGet, "/api/weeks", nil, false)
	var resp handlers.WeeksResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusOK || len(resp.Weeks) != 2 || resp.CurrentWeek != 1 {
		t.Errorf("unexpected weeks response %d %s", rec.Code, rec.Body.String())
	}
}

func TestFixtures_WeekAndFixture(t *testing.T) {
	setup := newTestSetup(t)
	fixtures := setup.seedWeek(t, 4, 2)

	rec := setup.do(t, http.MethodGet, "/api/weeks/4/fixtures", nil, false)
	var cards []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &cards)
	if rec.Code != http.StatusOK || len(cards) != 2 || cards[0]["fixtureId"] != fixtures[0].ID {
		t.Errorf("unexpected cards %d %s", rec.Code, rec.Body.String())
	}

	rec = setup.do(t, http.MethodGet, "/api/weeks/zero/fixtures", nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a non-numeric week, got %d", rec.Code)
	}

	rec = setup.do(t, http.MethodGet, "/api/fixtures/"+fixtures[1].ID, nil, false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), fixtures[1].ID) {
		t.Errorf("unexpected fixture response %d %s", rec.Code, rec.Body.String())
	}

	rec = setup.do(t, http.MethodGet, "/api/fixtures/missing", nil, false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestFixtures_NextKickoff(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/fixtures/next", nil, false)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 with nothing scheduled, got %d", rec.Code)
	}

	fixtures := setup.seedWeek(t, 1, 2)
	rec = setup.do(t, http.MethodGet, "/api/fixtures/next", nil, false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), fixtures[0].ID) {
		t.Errorf("expected the first fixture, got %d %s", rec.Code, rec.Body.String())
	}
}

// ==================== Health ====================

func TestHealth(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/healthz", nil, false)
	var resp handlers.HealthResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}
