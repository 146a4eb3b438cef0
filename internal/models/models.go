package models

import (
	"fmt"
	"strings"
	"time"
)

// Choice is a prediction value. HOME, DRAW and AWAY are persisted;
// SKIP only exists inside a game session.
type Choice string

const (
	ChoiceHome Choice = "1"
	ChoiceDraw Choice = "X"
	ChoiceAway Choice = "2"
	ChoiceSkip Choice = "SKIP"
)

// ParseChoice accepts the wire codes ("1", "X", "2", "SKIP") and the names
// HOME, DRAW, AWAY, SKIP in any case.
func ParseChoice(s string) (Choice, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1", "HOME":
		return ChoiceHome, nil
	case "X", "DRAW":
		return ChoiceDraw, nil
	case "2", "AWAY":
		return ChoiceAway, nil
	case "SKIP":
		return ChoiceSkip, nil
	}
	return "", fmt.Errorf("invalid choice %q", s)
}

// Persistable reports whether the choice may be sent to a prediction repository
func (c Choice) Persistable() bool {
	return c == ChoiceHome || c == ChoiceDraw || c == ChoiceAway
}

func (c Choice) String() string {
	return string(c)
}

// Mode partitions a user's prediction history into independent tracks
type Mode string

const (
	ModeLive Mode = "live"
	ModeTest Mode = "test"
)

// ParseMode parses "live" or "test" (case-insensitive)
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLive:
		return ModeLive, nil
	case ModeTest:
		return ModeTest, nil
	}
	return "", fmt.Errorf("invalid mode %q", s)
}

// Valid reports whether m is one of the known modes
func (m Mode) Valid() bool {
	return m == ModeLive || m == ModeTest
}

// FormEntry is one recent result of a team
type FormEntry struct {
	FixtureID string `json:"fixture_id"`
	Code      string `json:"code"` // "1", "X" or "2" from the match's point of view
	WasHome   bool   `json:"was_home"`
}

// Team is one side of a fixture as shown on a match card
type Team struct {
	Name              string      `json:"name"`
	Logo              string      `json:"logo,omitempty"`
	StandingsPosition int         `json:"standings_position"`
	WinRate           float64     `json:"win_rate"` // home win rate for the home side, away win rate for the away side
	Last5             []string    `json:"last5,omitempty"`
	Form              []FormEntry `json:"form,omitempty"`
}

// Fixture is a scheduled match of a competition week
type Fixture struct {
	ID      string    `json:"id"`
	Week    int       `json:"week"`
	Kickoff time.Time `json:"kickoff"`
	Stadium string    `json:"stadium,omitempty"`
	Home    Team      `json:"home"`
	Away    Team      `json:"away"`
}

// Started reports whether the fixture kicked off at or before now
func (f Fixture) Started(now time.Time) bool {
	return !f.Kickoff.After(now)
}

// Result is the final outcome of a fixture
type Result struct {
	FixtureID string `json:"fixture_id"`
	Outcome   Choice `json:"outcome"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// Prediction is a persisted choice of a user for a fixture
type Prediction struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	FixtureID string    `json:"fixture_id"`
	Choice    Choice    `json:"choice"`
	Week      int       `json:"week"`
	Mode      Mode      `json:"mode"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// PredictionDetail is a prediction with the outcome of its fixture, if known
type PredictionDetail struct {
	FixtureID string  `json:"fixture_id"`
	Choice    Choice  `json:"choice"`
	Result    *Choice `json:"result"`
	IsCorrect *bool   `json:"is_correct"`
}

// WeeklyStat summarizes a user's predictions for one week
type WeeklyStat struct {
	Week                int                `json:"week"`
	TotalPredictions    int                `json:"total_predictions"`
	CorrectPredictions  int                `json:"correct_predictions"`
	FinishedPredictions int                `json:"finished_predictions"`
	Accuracy            float64            `json:"accuracy"`
	Points              int                `json:"points"`
	Predictions         []PredictionDetail `json:"predictions,omitempty"`
}

// Summary is a user's prediction history for one mode
type Summary struct {
	UserID             string       `json:"user_id"`
	TotalPredictions   int          `json:"total_predictions"`
	CorrectPredictions int          `json:"correct_predictions"`
	OverallAccuracy    float64      `json:"overall_accuracy"`
	WeeklyStats        []WeeklyStat `json:"weekly_stats"`
}

// EmptySummary is the zeroed summary of a user with no history
func EmptySummary(userID string) *Summary {
	return &Summary{UserID: userID, WeeklyStats: []WeeklyStat{}}
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
