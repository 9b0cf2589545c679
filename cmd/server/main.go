package main

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/partstash/partstash/internal/bom"
	"github.com/partstash/partstash/internal/config"
	"github.com/partstash/partstash/internal/logging"
	"github.com/partstash/partstash/internal/parts"
	"github.com/partstash/partstash/internal/store"
	"github.com/partstash/partstash/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Backend,
		"lpn_prefix", cfg.LPN.Prefix,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	profile, err := loadProfile(cfg.Ingest.ProfilePath)
	if err != nil {
		slog.Error("failed to load import profile", "path", cfg.Ingest.ProfilePath, "error", err)
		os.Exit(1)
	}

	service := parts.NewService(st, cfg.LPN.Prefix, profile)

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openStore builds the configured store backend and returns it with a
// cleanup func.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemory(), func() {}, nil

	case config.BackendSQLite:
		db, err := store.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("opened sqlite store", "path", cfg.Store.SQLitePath)
		return db, func() { closeQuiet(db) }, nil

	case config.BackendPostgres:
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}

		pg := store.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}

		// Log which database we connected to
		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}
		return pg, pool.Close, nil
	}
	// Unreachable: config validation rejects unknown backends.
	return store.NewMemory(), func() {}, nil
}

// loadProfile reads the TOML import profile when configured; an empty path
// selects the built-in default.
func loadProfile(path string) (*bom.ImportProfile, error) {
	if path == "" {
		return nil, nil
	}
	return bom.LoadProfile(path)
}

func closeQuiet(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("close error", "error", err)
	}
}
