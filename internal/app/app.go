// Package app wires the portal together: storage, sessions, the backend
// client, the fetch cache and the HTTP surface.
package app

import (
	"fmt"
	"net/http"
	"time"

	"Mansoor88-6/timesheet-portal/internal/cache"
	"Mansoor88-6/timesheet-portal/internal/client"
	"Mansoor88-6/timesheet-portal/internal/config"
	"Mansoor88-6/timesheet-portal/internal/database"
	"Mansoor88-6/timesheet-portal/internal/handler"
	"Mansoor88-6/timesheet-portal/internal/router"
	"Mansoor88-6/timesheet-portal/internal/service"
	"Mansoor88-6/timesheet-portal/internal/session"
	"Mansoor88-6/timesheet-portal/internal/views"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// App is built once per process.
type App struct {
	Handler http.Handler

	db      *database.DB
	cache   *cache.Cache
	janitor *session.Janitor
	logger  *zap.Logger
}

// secretKey returns the configured session secret, or a random key when
// none is set.
func secretKey(cfg *config.Config, logger *zap.Logger) ([]byte, error) {
	if cfg.Session.Secret != "" {
		return []byte(cfg.Session.Secret), nil
	}
	key := securecookie.GenerateRandomKey(config.MinSecretLength)
	if key == nil {
		return nil, fmt.Errorf("failed to generate session secret")
	}
	logger.Warn("No session secret configured, using a random one; toasts and form tokens reset on restart")
	return key, nil
}

func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	key, err := secretKey(cfg, logger)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg.StoragePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	renderer, err := views.NewRenderer(logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	store := session.NewSQLiteStore(db.DB)
	sessions := session.NewManager(store, cfg.Session.CookieName, cfg.Session.SecureCookie, logger)

	janitor := session.NewJanitor(store, seconds(cfg.Session.CleanupInterval), logger)
	janitor.Start()

	fetchCache := cache.New(cache.Options{
		StaleTime:       seconds(cfg.Cache.StaleTime),
		GCTime:          seconds(cfg.Cache.GCTime),
		CleanupInterval: seconds(cfg.Cache.CleanupInterval),
		FetchTimeout:    seconds(cfg.Cache.FetchTimeout),
	}, logger)

	apiClient := client.NewAPIClient(cfg.Backend.BaseURL, seconds(cfg.Backend.Timeout), logger)
	dashboard := service.NewDashboardService(apiClient, fetchCache,
		time.Duration(cfg.Cache.RenderWait)*time.Millisecond, logger)

	h := handler.New(apiClient, dashboard, sessions, renderer, handler.Options{
		SessionTTL:   seconds(cfg.Session.DefaultTTL),
		SecureCookie: cfg.Session.SecureCookie,
		FlashKey:     key,
	}, logger)

	return &App{
		Handler: router.New(h, sessions, router.Options{
			CSRFKey:      key,
			SecureCookie: cfg.Session.SecureCookie,
		}, logger),
		db:      db,
		cache:   fetchCache,
		janitor: janitor,
		logger:  logger,
	}, nil
}

// Close stops the background loops and closes the database.
func (a *App) Close() error {
	a.cache.Stop()
	a.janitor.Stop()
	return a.db.Close()
}
