package handlers

import "github.com/abrezinsky/swipick/pkg/swipick"

// LoadWeekRequest selects the week and mode of a session
type LoadWeekRequest struct {
	Week int    `json:"week"`
	Mode string `json:"mode"`
}

// PredictRequest carries a choice: "1", "X", "2" or "SKIP"
type PredictRequest struct {
	Choice string `json:"choice"`
}

// GoToRequest represents a request to jump to a card
type GoToRequest struct {
	Index int `json:"index"`
}

// ImportFixturesRequest represents a batch of fixtures to upsert
type ImportFixturesRequest struct {
	Fixtures []swipick.MatchCard `json:"fixtures"`
}

// ResultRequest represents the final outcome of a fixture
type ResultRequest struct {
	Outcome   string `json:"outcome"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// LiveWeekRequest represents a request to override the live week
type LiveWeekRequest struct {
	Week int `json:"week"`
}

// SettingsUpdateRequest represents a request to update settings.
// live_week 0 clears the override; an absent live_week leaves it alone.
type SettingsUpdateRequest struct {
	BaseURL  string `json:"base_url"`
	LiveWeek *int   `json:"live_week"`
}

// LogLevelRequest changes the log level and, optionally, request logging
type LogLevelRequest struct {
	Level string `json:"level"`
	HTTP  *bool  `json:"http"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}

// LoginRequest carries the admin password
type LoginRequest struct {
	Password string `json:"password"`
}
