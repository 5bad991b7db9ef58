// Package server provides the main server initialization and run logic.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/modelconfig/internal/api"
	"github.com/nebari-dev/modelconfig/internal/api/handlers"
	"github.com/nebari-dev/modelconfig/internal/auth"
	"github.com/nebari-dev/modelconfig/internal/config"
	"github.com/nebari-dev/modelconfig/internal/configstore"
	"github.com/nebari-dev/modelconfig/internal/db"
	"github.com/nebari-dev/modelconfig/internal/hooks"
	"github.com/nebari-dev/modelconfig/internal/logger"
	"github.com/nebari-dev/modelconfig/internal/models"
	"github.com/nebari-dev/modelconfig/internal/version"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Config holds the server configuration options.
type Config struct {
	Port       int    // Port to run the server on (0 = use config default)
	ConfigFile string // Explicit config file; empty searches the default paths
}

// Model names accepted by configuration.model.
const (
	ModelConfiguration = "configuration"
	ModelVersioned     = "versioned"
)

// EntryModel returns the persisted entry type selected by name.
func EntryModel(name string) (any, error) {
	switch name {
	case "", ModelConfiguration:
		return &models.Configuration{}, nil
	case ModelVersioned:
		return &models.VersionedConfiguration{}, nil
	default:
		return nil, fmt.Errorf("unsupported configuration model: %s (supported: %s, %s)", name, ModelConfiguration, ModelVersioned)
	}
}

// Bootstrap loads configuration, initializes logging and opens the migrated
// database. It is shared by every command that touches the store.
func Bootstrap(configFile string) (*config.Config, *gorm.DB, error) {
	appCfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appCfg.Log.Format, appCfg.Log.Level)

	// Propagate app log level to database if not explicitly set
	if appCfg.Database.LogLevel == "" {
		appCfg.Database.LogLevel = appCfg.Log.Level
	}

	database, err := db.New(appCfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Database initialized", "driver", appCfg.Database.Driver)

	entry, err := EntryModel(appCfg.Configuration.Model)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(database, entry); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed", "model", appCfg.Configuration.Model)

	return appCfg, database, nil
}

// Stack is the configuration store wired for the configured entry model.
type Stack struct {
	Hooks  *hooks.Dispatcher
	bind   func(owner models.Configurable) configstore.Accessor
	router func(a *auth.Authenticator) *gin.Engine
}

// NewStack builds the hook dispatcher and the store for appCfg. Close the
// returned stack to release hook resources.
func NewStack(appCfg *config.Config, database *gorm.DB) (*Stack, error) {
	cc := appCfg.Configuration
	d, err := hooks.NewRegistry().Build(cc.Hooks, hooks.Deps{
		DB:     database,
		Config: cc,
		Logger: slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hooks: %w", err)
	}

	opts := configstore.Options{
		Keys: configstore.KeyPolicy{
			FoldCase: cc.AllowCaseInsensitiveKeys,
			Allowed:  cc.AllowedKeys,
		},
		Hooks: d,
	}

	switch cc.Model {
	case "", ModelConfiguration:
		return newStack[models.Configuration](appCfg, database, d, opts), nil
	case ModelVersioned:
		return newStack[models.VersionedConfiguration](appCfg, database, d, opts), nil
	default:
		d.Close()
		_, err := EntryModel(cc.Model)
		return nil, err
	}
}

func newStack[T any, PT models.Record[T]](appCfg *config.Config, database *gorm.DB, d *hooks.Dispatcher, opts configstore.Options) *Stack {
	store := configstore.New[T, PT](database, opts)
	h := handlers.NewConfigurationHandler(store, d)
	return &Stack{
		Hooks: d,
		bind: func(owner models.Configurable) configstore.Accessor {
			return store.Bind(owner)
		},
		router: func(a *auth.Authenticator) *gin.Engine {
			return api.NewRouter(appCfg, a, h)
		},
	}
}

// Bind returns owner's view of the store.
func (s *Stack) Bind(owner models.Configurable) configstore.Accessor {
	return s.bind(owner)
}

// Router builds the HTTP handler for the stack.
func (s *Stack) Router(a *auth.Authenticator) http.Handler {
	return s.router(a)
}

// Close releases hook resources.
func (s *Stack) Close() error {
	return s.Hooks.Close()
}

// Run starts the server with the given configuration and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	appCfg, database, err := Bootstrap(cfg.ConfigFile)
	if err != nil {
		return err
	}

	// Override port from CLI flag if provided
	if cfg.Port != 0 {
		appCfg.Server.Port = cfg.Port
	}
	slog.Info("Starting modelconfig server", "version", version.Get().Version, "mode", appCfg.Server.Mode)

	// Create default admin user if configured
	if err := db.CreateDefaultAdmin(database); err != nil {
		return fmt.Errorf("failed to create default admin user: %w", err)
	}

	stack, err := NewStack(appCfg, database)
	if err != nil {
		return err
	}
	defer stack.Close()

	authenticator := auth.NewAuthenticator(database, appCfg.Auth.JWTSecret)
	addr := fmt.Sprintf(":%d", appCfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           stack.Router(authenticator),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		slog.Info("Server stopped")
		return nil
	})

	err = g.Wait()
	slog.Info("modelconfig exited")
	return err
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, cfg)
}
