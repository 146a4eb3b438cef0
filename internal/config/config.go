package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Backend  BackendConfig  `yaml:"backend"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Game     GameConfig     `yaml:"game"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8081"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds the SQLite store settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"swipick.db"`
}

// BackendConfig points the game at a remote Swipick backend.
// An empty URL keeps fixtures and predictions in the local store.
type BackendConfig struct {
	URL     string        `yaml:"url"     env:"BACKEND_URL"`
	Token   string        `yaml:"token"   env:"BACKEND_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"BACKEND_TIMEOUT" env-default:"30s"`
}

// Remote reports whether a remote backend is configured.
func (b BackendConfig) Remote() bool {
	return b.URL != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	HTTP   bool   `yaml:"http"   env:"LOG_HTTP"   env-default:"false"`
}

// AdminConfig holds the admin surface settings.
// An empty password is replaced by a generated one at startup.
type AdminConfig struct {
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// GameConfig holds presentation and scheduling settings of the game.
type GameConfig struct {
	Locale            string        `yaml:"locale"             env:"GAME_LOCALE"             env-default:"it-IT"`
	Timezone          string        `yaml:"timezone"           env:"GAME_TIMEZONE"           env-default:"Europe/Rome"`
	CountdownInterval time.Duration `yaml:"countdown_interval" env:"GAME_COUNTDOWN_INTERVAL" env-default:"1s"`

	// Location is resolved from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}
