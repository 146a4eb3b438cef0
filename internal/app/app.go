package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/swipick/internal/auth"
	"github.com/abrezinsky/swipick/internal/config"
	"github.com/abrezinsky/swipick/internal/game"
	"github.com/abrezinsky/swipick/internal/handlers"
	"github.com/abrezinsky/swipick/internal/kpi"
	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/repository"
	"github.com/abrezinsky/swipick/internal/services"
	"github.com/abrezinsky/swipick/internal/websocket"
	"github.com/abrezinsky/swipick/pkg/swipick"
)

// App holds all application dependencies
type App struct {
	log             logger.Logger
	cfg             *config.Config
	handlers        *handlers.Handlers
	repo            *repository.Repository
	store           handlers.BackendStore
	cancelCountdown context.CancelFunc
}

// New creates and initializes a new application instance.
// With a backend URL configured, fixtures, predictions and summaries come
// from the remote backend; otherwise they live in the local SQLite store.
func New(log logger.Logger, cfg *config.Config, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	settingsService := services.NewSettingsService(log, repo)
	fixtureService := services.NewFixtureService(log, repo)

	var store handlers.BackendStore = repo
	if cfg.Backend.Remote() {
		client := swipick.NewHTTPClientWithHTTPClient(cfg.Backend.URL, &http.Client{Timeout: cfg.Backend.Timeout}, log)
		if cfg.Backend.Token != "" {
			client.SetToken(cfg.Backend.Token)
		}
		store = &overriddenWeek{Client: client, settings: settingsService}
		log.Info("Using remote backend", "url", client.BaseURL())
	}

	gameService := services.NewGameService(log, store, store)
	profileService := services.NewProfileService(log, store, settingsService, kpi.NewFormatterForLocale(cfg.Game.Locale))

	hub := websocket.New(log, fixtureService)
	hub.Start()
	gameService.SetBroadcaster(hub)
	settingsService.SetBroadcaster(hub)

	// Countdown stops with Close
	ctx, cancel := context.WithCancel(context.Background())
	go hub.StartKickoffCountdown(ctx, cfg.Game.CountdownInterval)

	h := handlers.New(
		gameService,
		profileService,
		fixtureService,
		settingsService,
		store,
		adminAuth,
		hub,
		log,
		cfg.Game.Location,
	)

	if cfg.Log.HTTP {
		log.EnableHTTPLogging()
	}

	return &App{
		log:             log,
		cfg:             cfg,
		handlers:        h,
		repo:            repo,
		store:           store,
		cancelCountdown: cancel,
	}, nil
}

// overriddenWeek applies the admin live-week override on top of the week
// the remote backend detects
type overriddenWeek struct {
	swipick.Client
	settings *services.SettingsService
}

var _ game.FixtureProvider = (*overriddenWeek)(nil)

func (o *overriddenWeek) CurrentWeek(ctx context.Context) (int, error) {
	if week, err := o.settings.GetLiveWeek(ctx); err == nil && week > 0 {
		return week, nil
	}
	return o.Client.CurrentWeek(ctx)
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelCountdown != nil {
		a.cancelCountdown()
	}
}

// Shutdown stops background work and closes the database
func (a *App) Shutdown() error {
	a.Close()
	return a.repo.Close()
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails. In-flight requests get the configured shutdown timeout.
func (a *App) Run(ctx context.Context, addr string) error {
	// Set default base URL if not configured, using detected LAN IP
	ip := getPreferredIP(realNetworkProvider{})
	port := strings.TrimPrefix(addr, ":")
	if _, p, err := net.SplitHostPort(addr); err == nil {
		port = p
	}
	baseURL := "http://" + net.JoinHostPort(ip, port)
	a.setDefaultBaseURL(baseURL)

	srv := &http.Server{Addr: addr, Handler: a.Router()}

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info("Server starting", "url", baseURL)
		a.log.Info("Admin URL", "url", baseURL+"/api/admin")
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := 10 * time.Second
	if a.cfg != nil && a.cfg.Server.ShutdownTimeout > 0 {
		timeout = a.cfg.Server.ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.log.Info("Server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.repo.GetSetting(ctx, repository.SettingBaseURL)

	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.repo.SetSetting(ctx, repository.SettingBaseURL, baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IPv4 address for LAN access, preferring
// private ranges, falling back to localhost.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
