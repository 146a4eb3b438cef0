package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/swipick/internal/models"
)

const (
	// SettingLiveWeek overrides the detected current week when set
	SettingLiveWeek = "live_week"
	// SettingBaseURL is the public address used in share links
	SettingBaseURL = "base_url"
)

// kickoffs are stored as UTC RFC 3339 text so they compare as strings
const kickoffLayout = time.RFC3339

// Repository provides data access methods
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db, now: time.Now}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS fixtures (
			id TEXT PRIMARY KEY,
			week INTEGER NOT NULL,
			kickoff TEXT NOT NULL,
			stadium TEXT,
			home_team TEXT NOT NULL,
			away_team TEXT NOT NULL,
			result TEXT,
			home_score INTEGER,
			away_score INTEGER,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			fixture_id TEXT NOT NULL,
			choice TEXT NOT NULL,
			week INTEGER NOT NULL,
			mode TEXT NOT NULL DEFAULT 'live',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (fixture_id) REFERENCES fixtures(id) ON DELETE CASCADE,
			UNIQUE(user_id, fixture_id, mode)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fixtures_week ON fixtures(week)`,
		`CREATE INDEX IF NOT EXISTS idx_fixtures_kickoff ON fixtures(kickoff)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_user_week ON predictions(user_id, mode, week)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// ==================== Fixture Methods ====================

type rowScanner interface {
	Scan(dest ...any) error
}

const fixtureColumns = `id, week, kickoff, stadium, home_team, away_team`

func scanFixture(row rowScanner) (*models.Fixture, error) {
	var (
		f          models.Fixture
		kickoff    string
		stadium    sql.NullString
		home, away string
	)
	if err := row.Scan(&f.ID, &f.Week, &kickoff, &stadium, &home, &away); err != nil {
		return nil, err
	}
	t, err := time.Parse(kickoffLayout, kickoff)
	if err != nil {
		return nil, err
	}
	f.Kickoff = t
	f.Stadium = stadium.String
	if err := json.Unmarshal([]byte(home), &f.Home); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(away), &f.Away); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpsertFixture inserts a fixture or replaces its schedule and teams.
// A recorded result is kept.
func (r *Repository) UpsertFixture(ctx context.Context, f models.Fixture) error {
	home, err := json.Marshal(f.Home)
	if err != nil {
		return err
	}
	away, err := json.Marshal(f.Away)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO fixtures (id, week, kickoff, stadium, home_team, away_team, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			week = excluded.week,
			kickoff = excluded.kickoff,
			stadium = excluded.stadium,
			home_team = excluded.home_team,
			away_team = excluded.away_team,
			updated_at = excluded.updated_at
	`, f.ID, f.Week, f.Kickoff.UTC().Format(kickoffLayout), f.Stadium, string(home), string(away), r.clock())
	return err
}

// GetFixture retrieves a fixture by ID
func (r *Repository) GetFixture(ctx context.Context, id string) (*models.Fixture, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+fixtureColumns+` FROM fixtures WHERE id = ?`, id)
	f, err := scanFixture(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return f, err
}

// FixturesForWeek returns the fixtures of a week ordered by kickoff
func (r *Repository) FixturesForWeek(ctx context.Context, week int) ([]models.Fixture, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+fixtureColumns+`
		FROM fixtures
		WHERE week = ?
		ORDER BY kickoff, id
	`, week)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fixtures := []models.Fixture{}
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, *f)
	}
	return fixtures, rows.Err()
}

// ListWeeks returns every week that has fixtures
func (r *Repository) ListWeeks(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT week FROM fixtures ORDER BY week`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weeks := []int{}
	for rows.Next() {
		var w int
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// SetFixtureResult records the final outcome of a fixture
func (r *Repository) SetFixtureResult(ctx context.Context, result models.Result) error {
	if !result.Outcome.Persistable() {
		return ErrNotPersistable
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE fixtures SET result = ?, home_score = ?, away_score = ?, updated_at = ?
		WHERE id = ?
	`, string(result.Outcome), result.HomeScore, result.AwayScore, r.clock(), result.FixtureID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetFixtureResult returns the recorded result of a fixture, or ErrNotFound
// when the fixture is unknown or not finished
func (r *Repository) GetFixtureResult(ctx context.Context, id string) (*models.Result, error) {
	var (
		outcome              sql.NullString
		homeScore, awayScore sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `SELECT result, home_score, away_score FROM fixtures WHERE id = ?`, id).
		Scan(&outcome, &homeScore, &awayScore)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !outcome.Valid {
		return nil, ErrNotFound
	}
	return &models.Result{
		FixtureID: id,
		Outcome:   models.Choice(outcome.String),
		HomeScore: int(homeScore.Int64),
		AwayScore: int(awayScore.Int64),
	}, nil
}

// NextKickoff returns the first fixture kicking off strictly after the given time
func (r *Repository) NextKickoff(ctx context.Context, after time.Time) (*models.Fixture, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+fixtureColumns+`
		FROM fixtures
		WHERE kickoff > ?
		ORDER BY kickoff, id
		LIMIT 1
	`, after.UTC().Format(kickoffLayout))
	f, err := scanFixture(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return f, err
}

// CurrentWeek returns the live week: the live_week setting when present,
// else the week of the next kickoff, else the latest week, else 1.
func (r *Repository) CurrentWeek(ctx context.Context) (int, error) {
	value, err := r.GetSetting(ctx, SettingLiveWeek)
	switch {
	case err == nil:
		if week, convErr := strconv.Atoi(value); convErr == nil && week > 0 {
			return week, nil
		}
	case err != ErrNotFound:
		return 0, err
	}

	next, err := r.NextKickoff(ctx, r.clock())
	if err == nil {
		return next.Week, nil
	}
	if err != ErrNotFound {
		return 0, err
	}

	var latest sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(week) FROM fixtures`).Scan(&latest); err != nil {
		return 0, err
	}
	if latest.Valid && latest.Int64 > 0 {
		return int(latest.Int64), nil
	}
	return 1, nil
}

// ==================== Prediction Methods ====================

// CreatePrediction stores a prediction, replacing the user's earlier choice
// for the same fixture and mode
func (r *Repository) CreatePrediction(ctx context.Context, p models.Prediction) (*models.Prediction, error) {
	if !p.Choice.Persistable() {
		return nil, ErrNotPersistable
	}
	if !p.Mode.Valid() {
		return nil, ErrInvalidMode
	}

	fixture, err := r.GetFixture(ctx, p.FixtureID)
	if err != nil {
		return nil, err
	}
	if p.Week == 0 {
		p.Week = fixture.Week
	}

	now := r.clock()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO predictions (id, user_id, fixture_id, choice, week, mode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, fixture_id, mode) DO UPDATE SET
			choice = excluded.choice,
			week = excluded.week,
			updated_at = excluded.updated_at
	`, uuid.NewString(), p.UserID, p.FixtureID, string(p.Choice), p.Week, string(p.Mode), now, now)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT id, created_at FROM predictions WHERE user_id = ? AND fixture_id = ? AND mode = ?
	`, p.UserID, p.FixtureID, string(p.Mode)).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PredictionsForWeek returns a user's predictions for one week and mode
func (r *Repository) PredictionsForWeek(ctx context.Context, userID string, week int, mode models.Mode) ([]models.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, fixture_id, choice, week, mode, created_at
		FROM predictions
		WHERE user_id = ? AND week = ? AND mode = ?
		ORDER BY created_at, fixture_id
	`, userID, week, string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := []models.Prediction{}
	for rows.Next() {
		var (
			p             models.Prediction
			choice, pMode string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.FixtureID, &choice, &p.Week, &pMode, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Choice = models.Choice(choice)
		p.Mode = models.Mode(pMode)
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// DeletePredictions removes a user's predictions for one mode, or all of
// them when mode is nil
func (r *Repository) DeletePredictions(ctx context.Context, userID string, mode *models.Mode) error {
	if mode == nil {
		_, err := r.db.ExecContext(ctx, `DELETE FROM predictions WHERE user_id = ?`, userID)
		return err
	}
	if !mode.Valid() {
		return ErrInvalidMode
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM predictions WHERE user_id = ? AND mode = ?`, userID, string(*mode))
	return err
}

// GetWeekDetail returns a user's predictions for a week with the result of
// each fixture. Only Week and Predictions are filled in.
func (r *Repository) GetWeekDetail(ctx context.Context, userID string, week int, mode models.Mode) (*models.WeeklyStat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.fixture_id, p.choice, f.result
		FROM predictions p
		JOIN fixtures f ON f.id = p.fixture_id
		WHERE p.user_id = ? AND p.week = ? AND p.mode = ?
		ORDER BY f.kickoff, f.id
	`, userID, week, string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stat := &models.WeeklyStat{Week: week, Predictions: []models.PredictionDetail{}}
	for rows.Next() {
		var (
			d      models.PredictionDetail
			choice string
			result sql.NullString
		)
		if err := rows.Scan(&d.FixtureID, &choice, &result); err != nil {
			return nil, err
		}
		d.Choice = models.Choice(choice)
		if result.Valid {
			outcome := models.Choice(result.String)
			correct := outcome == d.Choice
			d.Result = &outcome
			d.IsCorrect = &correct
		}
		stat.Predictions = append(stat.Predictions, d)
	}
	return stat, rows.Err()
}

// GetSummary aggregates a user's predictions per week. Accuracy only
// counts predictions whose fixture has a result.
func (r *Repository) GetSummary(ctx context.Context, userID string, mode models.Mode) (*models.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.week,
			COUNT(*),
			SUM(CASE WHEN f.result IS NOT NULL THEN 1 ELSE 0 END),
			SUM(CASE WHEN f.result = p.choice THEN 1 ELSE 0 END)
		FROM predictions p
		JOIN fixtures f ON f.id = p.fixture_id
		WHERE p.user_id = ? AND p.mode = ?
		GROUP BY p.week
		ORDER BY p.week
	`, userID, string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := models.EmptySummary(userID)
	var finished int
	for rows.Next() {
		var w models.WeeklyStat
		if err := rows.Scan(&w.Week, &w.TotalPredictions, &w.FinishedPredictions, &w.CorrectPredictions); err != nil {
			return nil, err
		}
		w.Points = w.CorrectPredictions
		if w.FinishedPredictions > 0 {
			w.Accuracy = float64(w.CorrectPredictions) / float64(w.FinishedPredictions) * 100
		}
		summary.TotalPredictions += w.TotalPredictions
		summary.CorrectPredictions += w.CorrectPredictions
		finished += w.FinishedPredictions
		summary.WeeklyStats = append(summary.WeeklyStats, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if finished > 0 {
		summary.OverallAccuracy = float64(summary.CorrectPredictions) / float64(finished) * 100
	}
	return summary, nil
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// DeleteSetting removes a setting
func (r *Repository) DeleteSetting(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}

// ==================== Stats Methods ====================

// GetStats returns overall game statistics
func (r *Repository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	queries := []struct {
		key   string
		query string
	}{
		{"total_fixtures", `SELECT COUNT(*) FROM fixtures`},
		{"finished_fixtures", `SELECT COUNT(*) FROM fixtures WHERE result IS NOT NULL`},
		{"total_weeks", `SELECT COUNT(DISTINCT week) FROM fixtures`},
		{"total_predictions", `SELECT COUNT(*) FROM predictions`},
		{"players", `SELECT COUNT(DISTINCT user_id) FROM predictions`},
	}
	for _, q := range queries {
		var n int
		if err := r.db.QueryRowContext(ctx, q.query).Scan(&n); err != nil {
			return nil, err
		}
		stats[q.key] = n
	}

	return stats, nil
}

// ==================== Database Management Methods ====================

// validTables is a whitelist of tables that can be cleared
var validTables = map[string]bool{
	"fixtures":    true,
	"predictions": true,
	"settings":    true,
}

// ClearTable deletes all rows from a whitelisted table
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	// Validate table name against whitelist
	if !validTables[table] {
		return ErrInvalidTable
	}

	// Safe to use string concatenation now that we've validated the table name
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}
