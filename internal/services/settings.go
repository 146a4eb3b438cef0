package services

import (
	"context"
	"strconv"

	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/repository"
)

// SettingsService handles settings-related business logic
type SettingsService struct {
	log         logger.Logger
	repo        repository.SettingsRepository
	broadcaster Broadcaster
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SettingsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// GetLiveWeek returns the live week override, or 0 when none is set
func (s *SettingsService) GetLiveWeek(ctx context.Context) (int, error) {
	value, err := s.repo.GetSetting(ctx, repository.SettingLiveWeek)
	if err != nil {
		if err == repository.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	week, err := strconv.Atoi(value)
	if err != nil || week < 1 {
		return 0, nil // Invalid value, treat as no override
	}
	return week, nil
}

// SetLiveWeek overrides the detected live week and broadcasts the change
func (s *SettingsService) SetLiveWeek(ctx context.Context, week int) error {
	if week < 1 {
		return ErrInvalidWeek
	}
	if err := s.repo.SetSetting(ctx, repository.SettingLiveWeek, strconv.Itoa(week)); err != nil {
		return err
	}
	s.log.Info("Live week set", "week", week)
	s.broadcastLiveWeek(week)
	return nil
}

// ClearLiveWeek removes the override so the live week is detected again
func (s *SettingsService) ClearLiveWeek(ctx context.Context) error {
	if err := s.repo.DeleteSetting(ctx, repository.SettingLiveWeek); err != nil && err != repository.ErrNotFound {
		return err
	}
	s.log.Info("Live week override cleared")
	s.broadcastLiveWeek(0)
	return nil
}

// GetBaseURL returns the application base URL
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, repository.SettingBaseURL)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // No default - setting not yet configured
		}
		return "", err
	}
	return value, nil
}

// SetBaseURL saves the application base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, repository.SettingBaseURL, url)
}

// AllSettings returns commonly used settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	liveWeek, err := s.GetLiveWeek(ctx)
	if err != nil {
		return nil, err
	}
	settings["live_week"] = liveWeek

	baseURL, err := s.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	settings["base_url"] = baseURL

	return settings, nil
}

// Settings represents application settings for update operations
type Settings struct {
	BaseURL  string
	LiveWeek *int // 0 clears the override
}

// UpdateSettings updates multiple settings at once
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.BaseURL != "" {
		if err := s.SetBaseURL(ctx, settings.BaseURL); err != nil {
			return err
		}
	}
	if settings.LiveWeek != nil {
		if *settings.LiveWeek == 0 {
			return s.ClearLiveWeek(ctx)
		}
		if err := s.SetLiveWeek(ctx, *settings.LiveWeek); err != nil {
			return err
		}
	}
	return nil
}

// GetStats returns overall game statistics
func (s *SettingsService) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return s.repo.GetStats(ctx)
}

// ResetTablesResult contains the result of a database reset
type ResetTablesResult struct {
	Tables  []string
	Message string
}

// ValidTables defines which tables can be reset
var ValidTables = map[string]bool{
	"fixtures": true, "predictions": true, "settings": true,
}

// ResetTables validates and resets the specified database tables
func (s *SettingsService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}

	var tablesToReset []string
	for _, table := range tables {
		if !ValidTables[table] {
			return nil, &InvalidTableError{Table: table}
		}
		if !containsTable(tablesToReset, table) {
			tablesToReset = append(tablesToReset, table)
		}
	}

	// Predictions reference fixtures
	if containsTable(tablesToReset, "fixtures") && !containsTable(tablesToReset, "predictions") {
		tablesToReset = append([]string{"predictions"}, tablesToReset...)
	}

	for _, table := range tablesToReset {
		if err := s.repo.ClearTable(ctx, table); err != nil {
			return nil, err
		}
	}

	if containsTable(tablesToReset, "settings") {
		s.broadcastLiveWeek(0)
	}

	s.log.Warn("Tables reset", "tables", tablesToReset)
	return &ResetTablesResult{
		Tables:  tablesToReset,
		Message: "Successfully deleted data from tables",
	}, nil
}

func containsTable(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (s *SettingsService) broadcastLiveWeek(week int) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastLiveWeek(week)
	}
}
