package swipick

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abrezinsky/swipick/internal/models"
)

// Kickoff is the kickoff time of a match card, as an ISO timestamp and
// an Italian display string such as "gio, 24/10, 20:45"
type Kickoff struct {
	ISO     string `json:"iso"`
	Display string `json:"display"`
}

// CardForm is one recent result of a team on a match card
type CardForm struct {
	FixtureID string  `json:"fixtureId"`
	Code      string  `json:"code"`
	Predicted *string `json:"predicted"`
	Correct   *bool   `json:"correct"`
	WasHome   bool    `json:"wasHome"`
}

// CardTeam is one side of a match card. The home side carries WinRateHome,
// the away side WinRateAway.
type CardTeam struct {
	Name              string     `json:"name"`
	Logo              *string    `json:"logo"`
	WinRateHome       *float64   `json:"winRateHome,omitempty"`
	WinRateAway       *float64   `json:"winRateAway,omitempty"`
	Last5             []string   `json:"last5"`
	StandingsPosition int        `json:"standingsPosition"`
	Form              []CardForm `json:"form"`
}

// MatchCard is a fixture as served by the match-cards endpoint
type MatchCard struct {
	FixtureID string   `json:"fixtureId"`
	Week      int      `json:"week"`
	Kickoff   Kickoff  `json:"kickoff"`
	Stadium   string   `json:"stadium"`
	Home      CardTeam `json:"home"`
	Away      CardTeam `json:"away"`
}

var italianWeekdays = [...]string{"dom", "lun", "mar", "mer", "gio", "ven", "sab"}

// FormatKickoff renders t in loc as "gio, 24/10, 20:45"
func FormatKickoff(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%s, %02d/%02d, %02d:%02d",
		italianWeekdays[t.Weekday()], t.Day(), int(t.Month()), t.Hour(), t.Minute())
}

// NewMatchCard converts a fixture to its wire form, with the display
// kickoff rendered in loc
func NewMatchCard(f models.Fixture, loc *time.Location) MatchCard {
	homeRate, awayRate := f.Home.WinRate, f.Away.WinRate
	return MatchCard{
		FixtureID: f.ID,
		Week:      f.Week,
		Kickoff: Kickoff{
			ISO:     f.Kickoff.UTC().Format(time.RFC3339),
			Display: FormatKickoff(f.Kickoff, loc),
		},
		Stadium: f.Stadium,
		Home:    newCardTeam(f.Home, &homeRate, nil),
		Away:    newCardTeam(f.Away, nil, &awayRate),
	}
}

func newCardTeam(t models.Team, home, away *float64) CardTeam {
	ct := CardTeam{
		Name:              t.Name,
		WinRateHome:       home,
		WinRateAway:       away,
		Last5:             t.Last5,
		StandingsPosition: t.StandingsPosition,
		Form:              make([]CardForm, 0, len(t.Form)),
	}
	if t.Logo != "" {
		logo := t.Logo
		ct.Logo = &logo
	}
	if ct.Last5 == nil {
		ct.Last5 = []string{}
	}
	for _, e := range t.Form {
		ct.Form = append(ct.Form, CardForm{FixtureID: e.FixtureID, Code: e.Code, WasHome: e.WasHome})
	}
	return ct
}

// Fixture converts the card back to a fixture
func (c MatchCard) Fixture() (models.Fixture, error) {
	kickoff, err := time.Parse(time.RFC3339, c.Kickoff.ISO)
	if err != nil {
		return models.Fixture{}, fmt.Errorf("fixture %s: invalid kickoff %q: %w", c.FixtureID, c.Kickoff.ISO, err)
	}
	return models.Fixture{
		ID:      c.FixtureID,
		Week:    c.Week,
		Kickoff: kickoff.UTC(),
		Stadium: c.Stadium,
		Home:    c.Home.team(c.Home.WinRateHome),
		Away:    c.Away.team(c.Away.WinRateAway),
	}, nil
}

func (t CardTeam) team(rate *float64) models.Team {
	out := models.Team{
		Name:              t.Name,
		StandingsPosition: t.StandingsPosition,
		Last5:             t.Last5,
	}
	if t.Logo != nil {
		out.Logo = *t.Logo
	}
	if rate != nil {
		out.WinRate = *rate
	}
	for _, e := range t.Form {
		out.Form = append(out.Form, models.FormEntry{FixtureID: e.FixtureID, Code: e.Code, WasHome: e.WasHome})
	}
	return out
}

// CreatePredictionRequest is the body of POST /predictions
type CreatePredictionRequest struct {
	UserID    string        `json:"userId"`
	FixtureID string        `json:"fixtureId"`
	Choice    models.Choice `json:"choice"`
	Week      int           `json:"week"`
	Mode      models.Mode   `json:"mode"`
}

// PredictionResponse is the reply to POST /predictions
type PredictionResponse struct {
	Success    bool           `json:"success"`
	Prediction WirePrediction `json:"prediction"`
}

// WirePrediction is a prediction as returned by the backend, which mixes
// snake_case and camelCase field names
type WirePrediction struct {
	ID        string
	UserID    string
	FixtureID string
	Choice    models.Choice
	Week      int
	Mode      models.Mode
	CreatedAt time.Time
}

type wirePredictionFields struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	UserIDCamel    string        `json:"userId"`
	FixtureID      string        `json:"fixture_id"`
	FixtureIDCamel string        `json:"fixtureId"`
	Choice         models.Choice `json:"choice"`
	Week           int           `json:"week"`
	Mode           models.Mode   `json:"mode"`
	CreatedAt      string        `json:"created_at"`
	CreatedAtCamel string        `json:"createdAt"`
	Timestamp      string        `json:"timestamp"`
}

// UnmarshalJSON accepts both field spellings, preferring camelCase
func (p *WirePrediction) UnmarshalJSON(data []byte) error {
	var raw wirePredictionFields
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = WirePrediction{
		ID:        raw.ID,
		UserID:    firstNonEmpty(raw.UserIDCamel, raw.UserID),
		FixtureID: firstNonEmpty(raw.FixtureIDCamel, raw.FixtureID),
		Choice:    raw.Choice,
		Week:      raw.Week,
		Mode:      raw.Mode,
	}
	if ts := firstNonEmpty(raw.CreatedAtCamel, raw.CreatedAt, raw.Timestamp); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			p.CreatedAt = t
		}
	}
	return nil
}

// MarshalJSON writes the snake_case spelling
func (p WirePrediction) MarshalJSON() ([]byte, error) {
	out := struct {
		ID        string        `json:"id,omitempty"`
		UserID    string        `json:"user_id"`
		FixtureID string        `json:"fixture_id"`
		Choice    models.Choice `json:"choice"`
		Week      int           `json:"week"`
		Mode      models.Mode   `json:"mode"`
		CreatedAt string        `json:"created_at,omitempty"`
	}{
		ID:        p.ID,
		UserID:    p.UserID,
		FixtureID: p.FixtureID,
		Choice:    p.Choice,
		Week:      p.Week,
		Mode:      p.Mode,
	}
	if !p.CreatedAt.IsZero() {
		out.CreatedAt = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}

// Prediction converts to the domain type; mode falls back to def
func (p WirePrediction) Prediction(def models.Mode) models.Prediction {
	mode := p.Mode
	if !mode.Valid() {
		mode = def
	}
	return models.Prediction{
		ID:        p.ID,
		UserID:    p.UserID,
		FixtureID: p.FixtureID,
		Choice:    p.Choice,
		Week:      p.Week,
		Mode:      mode,
		CreatedAt: p.CreatedAt,
	}
}

// FromPrediction converts a domain prediction to its wire form
func FromPrediction(p models.Prediction) WirePrediction {
	return WirePrediction{
		ID:        p.ID,
		UserID:    p.UserID,
		FixtureID: p.FixtureID,
		Choice:    p.Choice,
		Week:      p.Week,
		Mode:      p.Mode,
		CreatedAt: p.CreatedAt,
	}
}

// WeekPredictionsResponse is the reply to GET /predictions/user/{id}/week/{week}
type WeekPredictionsResponse struct {
	Week               int              `json:"week"`
	TotalPredictions   int              `json:"total_predictions"`
	CorrectPredictions int              `json:"correct_predictions"`
	SuccessRate        float64          `json:"success_rate"`
	Predictions        []WirePrediction `json:"predictions"`
}

// UnmarshalJSON accepts camelCase totals as well
func (w *WeekPredictionsResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Week                    int              `json:"week"`
		TotalPredictions        int              `json:"total_predictions"`
		TotalPredictionsCamel   int              `json:"totalPredictions"`
		CorrectPredictions      int              `json:"correct_predictions"`
		CorrectPredictionsCamel int              `json:"correctPredictions"`
		SuccessRate             float64          `json:"success_rate"`
		SuccessRateCamel        float64          `json:"successRate"`
		Predictions             []WirePrediction `json:"predictions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = WeekPredictionsResponse{
		Week:               raw.Week,
		TotalPredictions:   firstNonZero(raw.TotalPredictionsCamel, raw.TotalPredictions),
		CorrectPredictions: firstNonZero(raw.CorrectPredictionsCamel, raw.CorrectPredictions),
		SuccessRate:        raw.SuccessRateCamel,
		Predictions:        raw.Predictions,
	}
	if w.SuccessRate == 0 {
		w.SuccessRate = raw.SuccessRate
	}
	return nil
}

// WirePredictionDetail is one entry of a week in the summary
type WirePredictionDetail struct {
	FixtureID string         `json:"fixture_id"`
	Choice    models.Choice  `json:"choice"`
	Result    *models.Choice `json:"result"`
	IsCorrect *bool          `json:"is_correct"`
}

// WireWeeklyStat is one week of the summary
type WireWeeklyStat struct {
	Week               int                    `json:"week"`
	TotalPredictions   int                    `json:"total_predictions"`
	CorrectPredictions int                    `json:"correct_predictions"`
	SuccessRate        float64                `json:"success_rate"`
	Points             int                    `json:"points"`
	Predictions        []WirePredictionDetail `json:"predictions,omitempty"`
}

// SummaryData is the payload of the summary endpoint
type SummaryData struct {
	UserID             string           `json:"user_id"`
	TotalPredictions   int              `json:"total_predictions"`
	CorrectPredictions int              `json:"correct_predictions"`
	OverallSuccessRate float64          `json:"overall_success_rate"`
	WeeklyStats        []WireWeeklyStat `json:"weekly_stats"`
}

// NewSummaryData converts a domain summary to its wire form
func NewSummaryData(s *models.Summary) SummaryData {
	out := SummaryData{
		UserID:             s.UserID,
		TotalPredictions:   s.TotalPredictions,
		CorrectPredictions: s.CorrectPredictions,
		OverallSuccessRate: s.OverallAccuracy,
		WeeklyStats:        make([]WireWeeklyStat, 0, len(s.WeeklyStats)),
	}
	for _, w := range s.WeeklyStats {
		ws := WireWeeklyStat{
			Week:               w.Week,
			TotalPredictions:   w.TotalPredictions,
			CorrectPredictions: w.CorrectPredictions,
			SuccessRate:        w.Accuracy,
			Points:             w.Points,
		}
		for _, d := range w.Predictions {
			ws.Predictions = append(ws.Predictions, WirePredictionDetail(d))
		}
		out.WeeklyStats = append(out.WeeklyStats, ws)
	}
	return out
}

// Summary converts the payload to the domain type. Per-prediction detail is
// carried over as is; totals are not recomputed here.
func (s SummaryData) Summary() *models.Summary {
	out := &models.Summary{
		UserID:             s.UserID,
		TotalPredictions:   s.TotalPredictions,
		CorrectPredictions: s.CorrectPredictions,
		OverallAccuracy:    s.OverallSuccessRate,
		WeeklyStats:        make([]models.WeeklyStat, 0, len(s.WeeklyStats)),
	}
	for _, w := range s.WeeklyStats {
		ws := models.WeeklyStat{
			Week:               w.Week,
			TotalPredictions:   w.TotalPredictions,
			CorrectPredictions: w.CorrectPredictions,
			Accuracy:           w.SuccessRate,
			Points:             w.Points,
		}
		for _, d := range w.Predictions {
			ws.Predictions = append(ws.Predictions, models.PredictionDetail(d))
		}
		out.WeeklyStats = append(out.WeeklyStats, ws)
	}
	return out
}

// SummaryResponse wraps SummaryData the way the backend does
type SummaryResponse struct {
	Success bool        `json:"success"`
	Data    SummaryData `json:"data"`
}

// unwrapData peels up to two {"data": ...} envelopes off body
func unwrapData(body []byte) []byte {
	for i := 0; i < 2; i++ {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return body
		}
		if _, isSummary := envelope["weekly_stats"]; isSummary {
			return body
		}
		inner, ok := envelope["data"]
		if !ok || string(inner) == "null" {
			return body
		}
		body = inner
	}
	return body
}

// NextFixturesResponse is the reply to GET /fixtures/next
type NextFixturesResponse struct {
	Success      bool        `json:"success"`
	DetectedWeek int         `json:"detectedWeek"`
	Fixtures     []MatchCard `json:"fixtures,omitempty"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
