// Package swipick provides a client for the Swipick backend (BFF) that
// serves match cards, predictions and prediction summaries.
package swipick

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/models"
)

// DefaultTimeout is the request timeout of NewHTTPClient
const DefaultTimeout = 30 * time.Second

// NextFixturesLimit is the limit sent when detecting the live week
const NextFixturesLimit = 10

// ErrSkipNotAllowed is returned when a SKIP or unknown choice is submitted
var ErrSkipNotAllowed = errors.New("only 1, X and 2 can be submitted as predictions")

// StatusError is returned for a non-2xx response
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("swipick %s %s returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client defines the interface for Swipick backend operations
type Client interface {
	// FixturesForWeek retrieves the match cards of a week as fixtures
	FixturesForWeek(ctx context.Context, week int) ([]models.Fixture, error)
	// CurrentWeek asks the backend which week is live
	CurrentWeek(ctx context.Context) (int, error)
	// CreatePrediction stores a prediction; SKIP is rejected locally
	CreatePrediction(ctx context.Context, p models.Prediction) (*models.Prediction, error)
	// PredictionsForWeek retrieves a user's predictions for a week
	PredictionsForWeek(ctx context.Context, userID string, week int, mode models.Mode) ([]models.Prediction, error)
	// DeletePredictions removes a user's predictions for mode, or all when mode is nil
	DeletePredictions(ctx context.Context, userID string, mode *models.Mode) error
	// GetSummary retrieves a user's prediction summary; a user without history gets a zeroed summary
	GetSummary(ctx context.Context, userID string, mode models.Mode) (*models.Summary, error)
	// BaseURL returns the configured backend base URL
	BaseURL() string
}

// HTTPClient is a real HTTP client for the Swipick backend
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new Swipick HTTP client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(baseURL, &http.Client{Timeout: DefaultTimeout}, log)
}

// NewHTTPClientWithHTTPClient creates a new Swipick client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured backend base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetToken sets the bearer token sent with every request
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// doRequest executes a JSON request against the backend and decodes a 2xx
// response into out (when out is non-nil). Any other status is a *StatusError.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	apiURL := c.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	c.log.Debug("Swipick request", "method", method, "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Swipick backend: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Swipick response", "status", resp.StatusCode, "bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = respBody
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func userPath(userID string, parts ...string) string {
	p := "/predictions/user/" + url.PathEscape(userID)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func modeQuery(mode models.Mode) url.Values {
	return url.Values{"mode": []string{string(mode)}}
}

// FixturesForWeek retrieves the match cards of a week
func (c *HTTPClient) FixturesForWeek(ctx context.Context, week int) ([]models.Fixture, error) {
	var cards []MatchCard
	if err := c.doRequest(ctx, http.MethodGet, "/match-cards/week/"+strconv.Itoa(week), nil, nil, &cards); err != nil {
		return nil, err
	}

	fixtures := make([]models.Fixture, 0, len(cards))
	for _, card := range cards {
		f, err := card.Fixture()
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	c.log.Debug("Loaded match cards", "week", week, "count", len(fixtures))
	return fixtures, nil
}

// CurrentWeek returns the backend's detected week, or 1 when it reports none
func (c *HTTPClient) CurrentWeek(ctx context.Context) (int, error) {
	var resp NextFixturesResponse
	query := url.Values{"limit": []string{strconv.Itoa(NextFixturesLimit)}}
	if err := c.doRequest(ctx, http.MethodGet, "/fixtures/next", query, nil, &resp); err != nil {
		return 0, err
	}
	if resp.DetectedWeek < 1 {
		return 1, nil
	}
	return resp.DetectedWeek, nil
}

// CreatePrediction stores a prediction
func (c *HTTPClient) CreatePrediction(ctx context.Context, p models.Prediction) (*models.Prediction, error) {
	if !p.Choice.Persistable() {
		return nil, ErrSkipNotAllowed
	}

	req := CreatePredictionRequest{
		UserID:    p.UserID,
		FixtureID: p.FixtureID,
		Choice:    p.Choice,
		Week:      p.Week,
		Mode:      p.Mode,
	}
	var resp PredictionResponse
	if err := c.doRequest(ctx, http.MethodPost, "/predictions", nil, req, &resp); err != nil {
		return nil, err
	}

	saved := resp.Prediction.Prediction(p.Mode)
	if saved.FixtureID == "" {
		saved = p
	}
	return &saved, nil
}

// PredictionsForWeek retrieves a user's predictions for one week and mode
func (c *HTTPClient) PredictionsForWeek(ctx context.Context, userID string, week int, mode models.Mode) ([]models.Prediction, error) {
	var resp WeekPredictionsResponse
	if err := c.doRequest(ctx, http.MethodGet, userPath(userID, "week", strconv.Itoa(week)), modeQuery(mode), nil, &resp); err != nil {
		return nil, err
	}

	predictions := make([]models.Prediction, 0, len(resp.Predictions))
	for _, wp := range resp.Predictions {
		if wp.FixtureID == "" {
			continue
		}
		predictions = append(predictions, wp.Prediction(mode))
	}
	return predictions, nil
}

// DeletePredictions removes a user's predictions for mode, or for every
// mode when mode is nil
func (c *HTTPClient) DeletePredictions(ctx context.Context, userID string, mode *models.Mode) error {
	var query url.Values
	if mode != nil {
		query = modeQuery(*mode)
	}
	return c.doRequest(ctx, http.MethodDelete, userPath(userID), query, nil, nil)
}

// GetSummary retrieves a user's summary. The payload may be wrapped in one
// or two "data" envelopes; a 404 means the user has no predictions yet.
func (c *HTTPClient) GetSummary(ctx context.Context, userID string, mode models.Mode) (*models.Summary, error) {
	var body []byte
	err := c.doRequest(ctx, http.MethodGet, userPath(userID, "summary"), modeQuery(mode), nil, &body)
	if IsNotFound(err) {
		c.log.Debug("No summary for user", "user_id", userID, "mode", mode)
		return models.EmptySummary(userID), nil
	}
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return models.EmptySummary(userID), nil
	}

	var data SummaryData
	if err := json.Unmarshal(unwrapData(body), &data); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	summary := data.Summary()
	if summary.UserID == "" {
		summary.UserID = userID
	}
	return summary, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
