package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/swipick/internal/errors"
	"github.com/abrezinsky/swipick/internal/game"
	"github.com/abrezinsky/swipick/internal/models"
	"github.com/abrezinsky/swipick/internal/repository"
	"github.com/abrezinsky/swipick/internal/services"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrCodeNoFixtures       = "NO_FIXTURES"
	ErrCodeNoCurrentFixture = "NO_CURRENT_FIXTURE"
	ErrCodeFixtureStarted   = "FIXTURE_STARTED"
	ErrCodeRemoteRead       = "REMOTE_READ_FAILED"
	ErrCodeRemoteWrite      = "REMOTE_WRITE_FAILED"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrBadRequest     = &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: "Bad request"}
	ErrUnauthorized   = &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: "Unauthorized"}
	ErrNotFound       = &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Not found"}
	ErrInternalServer = &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
)

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message and auto-assigned error code
func BadRequest(message string) *APIError {
	code := ErrCodeBadRequest
	if strings.Contains(strings.ToLower(message), "invalid") {
		code = ErrCodeValidation
	}
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// BadGateway creates a 502 error for a failed backend call
func BadGateway(code, message string) *APIError {
	return &APIError{Status: http.StatusBadGateway, Code: code, Message: message}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondDeleted writes a 204 No Content response
func respondDeleted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondError writes an error response
func (h *Handlers) respondError(w http.ResponseWriter, err error) {
	apiErr := h.toAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// SessionResponse is the body of every game endpoint. Error is set when the
// command was rejected or failed; State is always present.
type SessionResponse struct {
	Status      string     `json:"status"`
	ShowSummary bool       `json:"show_summary"`
	Code        string     `json:"code,omitempty"`
	Error       string     `json:"error,omitempty"`
	State       game.State `json:"state"`
}

// respondOutcome maps a session outcome to HTTP: OK 200, Rejected 4xx,
// Failed 502
func (h *Handlers) respondOutcome(w http.ResponseWriter, out game.Outcome, state game.State) {
	resp := SessionResponse{
		Status:      out.Status.String(),
		ShowSummary: out.ShowSummary,
		State:       state,
	}
	status := http.StatusOK
	if out.Err != nil {
		apiErr := h.toAPIError(out.Err)
		if out.Status == game.StatusRejected && apiErr.Status >= http.StatusInternalServerError {
			apiErr.Status = http.StatusConflict
		}
		if out.Status == game.StatusFailed {
			apiErr.Status = http.StatusBadGateway
		}
		status = apiErr.Status
		resp.Code = apiErr.Code
		resp.Error = apiErr.Message
	}
	respondJSON(w, status, resp)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// parseIntParam extracts and parses an integer URL parameter
func parseIntParam(r *http.Request, name string) (int, error) {
	param := chi.URLParam(r, name)
	if param == "" {
		return 0, BadRequest("Missing " + name + " parameter")
	}
	id, err := strconv.Atoi(param)
	if err != nil {
		return 0, BadRequest("Invalid " + name + " parameter")
	}
	return id, nil
}

// parseModeQuery reads ?mode=, defaulting to live
func parseModeQuery(r *http.Request) (models.Mode, error) {
	raw := r.URL.Query().Get("mode")
	if raw == "" {
		return models.ModeLive, nil
	}
	mode, err := models.ParseMode(raw)
	if err != nil {
		return "", BadRequest("Invalid mode: must be live or test")
	}
	return mode, nil
}

// toAPIError converts service errors to appropriate API errors
func (h *Handlers) toAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		cp := *apiErr
		return &cp
	}

	switch {
	case stderrors.Is(err, game.ErrNoFixtures):
		return &APIError{Status: http.StatusNotFound, Code: ErrCodeNoFixtures, Message: game.ErrNoFixtures.Message}
	case stderrors.Is(err, game.ErrNoCurrentFixture):
		return &APIError{Status: http.StatusConflict, Code: ErrCodeNoCurrentFixture, Message: game.ErrNoCurrentFixture.Message}
	case stderrors.Is(err, game.ErrFixtureStarted):
		return &APIError{Status: http.StatusConflict, Code: ErrCodeFixtureStarted, Message: game.ErrFixtureStarted.Message}
	case stderrors.Is(err, repository.ErrNotFound):
		return NotFound("Not found")
	}

	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation, errors.ErrInvalidInput:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: appErr.Message}
		case errors.ErrConflict:
			return Conflict(appErr.Message)
		case errors.ErrRemoteRead:
			h.logError("Backend read failed", err)
			return BadGateway(ErrCodeRemoteRead, appErr.Message)
		case errors.ErrRemoteWrite:
			h.logError("Backend write failed", err)
			return BadGateway(ErrCodeRemoteWrite, appErr.Message)
		default:
			return h.internalError(err)
		}
	}

	var svcErr *services.ServiceError
	if stderrors.As(err, &svcErr) {
		return BadRequest(svcErr.Message)
	}
	var tableErr *services.InvalidTableError
	if stderrors.As(err, &tableErr) {
		return BadRequest(tableErr.Error())
	}

	return h.internalError(err)
}

// internalError logs the original error and hides it from the client
func (h *Handlers) internalError(err error) *APIError {
	h.logError("Internal error", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

func (h *Handlers) logError(msg string, err error) {
	if h.Log != nil {
		h.Log.Error(msg, "error", err)
	}
}
