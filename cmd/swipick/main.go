package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/abrezinsky/swipick/internal/app"
	"github.com/abrezinsky/swipick/internal/auth"
	"github.com/abrezinsky/swipick/internal/config"
	"github.com/abrezinsky/swipick/internal/logger"
)

var (
	version = "dev"
)

// options are the command-line flags; set flags override the loaded config
type options struct {
	configPath string
	port       int
	dbPath     string
	backendURL string
	adminPw    string
	logLevel   string
	noAnimate  bool
	noKeyboard bool
	version    bool
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("swipick", flag.ExitOnError)
	fs.StringVar(&opts.configPath, "config", "", "Config file path (default $CONFIG_PATH or ./swipick.yaml)")
	fs.IntVar(&opts.port, "port", 0, "HTTP server port")
	fs.StringVar(&opts.dbPath, "db", "", "SQLite database path")
	fs.StringVar(&opts.backendURL, "backend", "", "Remote Swipick backend URL (empty uses the local store)")
	fs.StringVar(&opts.adminPw, "adminpw", "", "Admin password (auto-generated if not set)")
	fs.StringVar(&opts.logLevel, "loglevel", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.noAnimate, "noanimate", false, "Show logo only, skip the kickoff animation")
	fs.BoolVar(&opts.noKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fs.BoolVar(&opts.version, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Swipick - football prediction game server

Usage:
  swipick [options]

Options:
  -config str    Config file path (default $CONFIG_PATH or ./swipick.yaml)
  -port int      HTTP server port (default 8081)
  -db string     SQLite database path (default "swipick.db")
  -backend str   Remote Swipick backend URL (empty uses the local store)
  -adminpw str   Admin password (auto-generated if not set)
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -noanimate     Show logo only, skip the kickoff animation
  -nokeyboard    Disable keyboard shortcuts
  -version       Show version and exit
  -help          Show this help message

Keyboard Shortcuts (when enabled):
  o              Open the next fixtures in browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help

Examples:
  swipick                                    # Run on port 8081 with swipick.db
  swipick -port 8080                         # Run on port 8080
  swipick -backend https://api.swipick.app   # Play against the remote backend
  swipick -config /etc/swipick.yaml          # Use a config file

`)
	}
	return fs
}

// applyFlags copies the explicitly set flags over cfg
func applyFlags(cfg *config.Config, fs *flag.FlagSet, opts *options) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = opts.port
		case "db":
			cfg.Database.Path = opts.dbPath
		case "backend":
			cfg.Backend.URL = opts.backendURL
		case "adminpw":
			cfg.Admin.Password = opts.adminPw
		case "loglevel":
			cfg.Log.Level = opts.logLevel
		}
	})
}

func loadConfig(args []string) (*config.Config, *options, error) {
	opts := &options{}
	fs := newFlagSet(opts)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if opts.version {
		return nil, opts, nil
	}

	if opts.configPath != "" {
		os.Setenv("CONFIG_PATH", opts.configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	applyFlags(cfg, fs, opts)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, opts, nil
}

func main() {
	cfg, opts, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	if opts.version {
		fmt.Printf("swipick %s\n", version)
		os.Exit(0)
	}

	showStartupAnimation(opts.noAnimate)

	password := cfg.Admin.Password
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	appLog := logger.NewWithOptions(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})

	a, err := app.New(appLog, cfg, adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	appLog.Info("Admin password", "password", password)

	if !opts.noKeyboard {
		printKeyboardHelp()
		kb := &keyboard{
			nextURL: fmt.Sprintf("http://localhost:%d/fixtures/next", cfg.Server.Port),
			log:     appLog,
			out:     os.Stdout,
			quit:    stop,
		}
		go kb.listen(os.Stdin)
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	runErr := a.Run(ctx, addr)
	if err := a.Shutdown(); err != nil {
		appLog.Warn("Failed to close database", "error", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
