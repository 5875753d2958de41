package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
	_ "github.com/ekaya-inc/schemaforge/pkg/adapters/catalog/file"
	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog/salesforce"
	"github.com/ekaya-inc/schemaforge/pkg/config"
	"github.com/ekaya-inc/schemaforge/pkg/handlers"
	"github.com/ekaya-inc/schemaforge/pkg/logging"
	"github.com/ekaya-inc/schemaforge/pkg/mcp"
	"github.com/ekaya-inc/schemaforge/pkg/middleware"
	"github.com/ekaya-inc/schemaforge/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const messageHistorySize = 200

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("schemaforge stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("login_url", cfg.Catalog.LoginURL),
		zap.String("api_version", cfg.Catalog.APIVersion),
		zap.Int("fetch_max_concurrent", cfg.Fetch.MaxConcurrent),
		zap.String("migration_dir", cfg.Migration.Dir),
		zap.String("migration_dialect", cfg.Migration.Dialect),
		zap.Bool("mcp_enabled", cfg.MCP.Enabled),
	)

	hub := services.NewMessageHub(messageHistorySize, logger)
	store := services.NewPreferencesStore(cfg.PreferencesPath, logger)
	session := services.NewSession(
		catalog.NewConnectionFactory(logger),
		store,
		hub,
		services.SessionConfig{
			FetchMaxConcurrent: cfg.Fetch.MaxConcurrent,
			ForceText:          cfg.Translate.ForceText,
			RecipeDefaultCount: cfg.Recipe.DefaultCount,
			MigrationDir:       cfg.Migration.Dir,
			MigrationDialect:   cfg.Migration.Dialect,
			PluralizeTables:    cfg.Migration.PluralizeTables,
		},
		logger,
	)
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("Failed to close connections", zap.Error(err))
		}
	}()

	// Saved preferences are activated at startup; without a file the user
	// must confirm preferences before the first build.
	if _, statErr := os.Stat(store.Path()); statErr == nil {
		prefs, err := store.Load()
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		if err := session.SetPreferences(prefs); err != nil {
			return fmt.Errorf("activate preferences: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Catalog.Username != "" || cfg.Catalog.AccessToken != "" {
		conn, err := session.Connect(ctx, salesforce.AdapterType, cfg.Catalog.CatalogSettings())
		if err != nil {
			logger.Warn("Configured org could not be connected", zap.Error(err))
		} else {
			logger.Info("Connected configured org", zap.String("org_id", conn.OrgID))
		}
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewOrgHandler(session, logger).RegisterRoutes(mux)
	handlers.NewPreferencesHandler(session, logger).RegisterRoutes(mux)
	handlers.NewSchemaHandler(session, logger).RegisterRoutes(mux)
	handlers.NewMessagesHandler(hub, logger).RegisterRoutes(mux)

	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer("schemaforge", cfg.Version, session, logger)
		mux.Handle("/mcp", middleware.MCPRequestLogger(logger.Named("mcp"))(mcpServer.NewStreamableHTTPServer()))
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.RequestLogger(logger.Named("http"))(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("Starting schemaforge", zap.String("addr", cfg.Addr()), zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		session.CancelActiveBatch()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logger.Info("Shutting down schemaforge")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
