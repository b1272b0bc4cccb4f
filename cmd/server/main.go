package main

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

	specpkg "github.com/ideaforge/ideaforge/api"
	"github.com/ideaforge/ideaforge/internal/api"
	"github.com/ideaforge/ideaforge/internal/api/handler"
	"github.com/ideaforge/ideaforge/internal/auth"
	"github.com/ideaforge/ideaforge/internal/config"
	"github.com/ideaforge/ideaforge/internal/db"
	"github.com/ideaforge/ideaforge/internal/idea"
	"github.com/ideaforge/ideaforge/internal/session"
)

// stores groups the repositories selected by STORE_TYPE.
type stores struct {
	users    auth.UserRepository
	sessions session.Store
	ideas    idea.Repository
	pinger   handler.DBPinger
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open stores", "error", err, "store", cfg.StoreType)
		os.Exit(1)
	}
	defer st.close()

	sessions, err := session.NewManager(st.sessions, session.Options{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
		Secret:     []byte(cfg.SessionSecret),
		Secure:     cfg.IsProduction(),
	})
	if err != nil {
		slog.Error("failed to create session manager", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(st.users, auth.NewPasswordVerifier(st.users), cfg.BcryptCost)

	router, err := api.NewRouter(api.RouterDeps{
		DBPinger:       st.pinger,
		StoreType:      cfg.StoreType,
		Version:        cfg.Version,
		Development:    cfg.IsDevelopment(),
		OpenAPISpec:    specpkg.OpenAPISpec,
		Accounts:       authService,
		Identities:     authService,
		Sessions:       sessions,
		Lifecycle:      idea.NewLifecycle(st.ideas),
		CORSOrigins:    cfg.CORSOrigins,
		TrustedOrigins: cfg.TrustedOrigins,
	})
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	go session.NewJanitor(st.sessions, cfg.SessionCleanupInterval).Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting ideaforge server", "port", cfg.Port, "version", cfg.Version, "store", cfg.StoreType, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		st.close()
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		st.close()
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreType == config.StoreMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		return &stores{
			users:    auth.NewMemoryRepository(),
			sessions: session.NewMemoryStore(),
			ideas:    idea.NewMemoryRepository(),
			close:    func() {},
		}, nil
	}

	database, err := db.New(ctx, db.Options{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		Migrate:         cfg.AutoMigrate,
	})
	if err != nil {
		return nil, err
	}

	pool := database.Pool()
	return &stores{
		users:    auth.NewRepository(pool),
		sessions: session.NewPostgresStore(pool),
		ideas:    idea.NewRepository(pool),
		pinger:   database,
		close:    database.Close,
	}, nil
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(logHandler))
}
