package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
)

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Validate checks the loaded configuration and resolves derived values.
// Load calls it automatically; callers that change fields afterwards
// (command-line flags) must call it again.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535 (got %d)", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Backend.Remote() {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("backend.url must be an absolute URL (got %q)", c.Backend.URL)
		}
		if c.Backend.Timeout <= 0 {
			return fmt.Errorf("backend.timeout must be > 0 (got %v)", c.Backend.Timeout)
		}
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}

	if err := c.Game.validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	return nil
}

func (g *GameConfig) validate() error {
	if _, err := language.Parse(g.Locale); err != nil {
		return fmt.Errorf("locale %q: %w", g.Locale, err)
	}
	if g.CountdownInterval < 100*time.Millisecond {
		return fmt.Errorf("countdown_interval must be at least 100ms (got %v)", g.CountdownInterval)
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", g.Timezone, err)
	}
	g.Location = loc
	return nil
}
