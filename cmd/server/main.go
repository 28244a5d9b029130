package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tablesort/internal/config"
	"github.com/JonMunkholm/tablesort/internal/core"
	"github.com/JonMunkholm/tablesort/internal/logging"
	"github.com/JonMunkholm/tablesort/internal/sorter"
	"github.com/JonMunkholm/tablesort/internal/source"
	"github.com/JonMunkholm/tablesort/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database", cfg.Database.Enabled(),
		"max_concurrent_loads", cfg.Sort.MaxConcurrentLoads,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	defaults, err := loadDefaults(cfg.Sort.OptionsFile)
	if err != nil {
		slog.Error("failed to load sort options", "file", cfg.Sort.OptionsFile, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// The database is optional; without it only files can be loaded.
	var db source.Querier
	if cfg.Database.Enabled() {
		pool, err := connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		db = pool
	}

	service := core.NewService(db, core.Config{
		Defaults:           defaults,
		RowLimit:           cfg.Database.RowLimit,
		MaxConcurrentLoads: cfg.Sort.MaxConcurrentLoads,
		MaxLoadWait:        cfg.Sort.MaxLoadWait,
	})

	if cfg.Sort.PreloadDir != "" {
		n, err := service.PreloadDir(ctx, cfg.Sort.PreloadDir)
		if err != nil {
			slog.Error("failed to preload files", "dir", cfg.Sort.PreloadDir, "error", err)
			os.Exit(1)
		}
		slog.Info("files preloaded", "dir", cfg.Sort.PreloadDir, "widgets", n)
	}
	if len(cfg.Database.Tables) > 0 {
		n := service.PreloadTables(ctx, cfg.Database.Tables)
		slog.Info("tables preloaded", "requested", len(cfg.Database.Tables), "widgets", n)
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := service.ActiveLoads(); active > 0 {
			slog.Info("waiting for loads to complete", "active", active)
			if err := service.WaitForLoads(shutdownCtx); err != nil {
				slog.Warn("loads did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// loadDefaults reads the YAML options file, if any.
func loadDefaults(path string) (sorter.Options, error) {
	if path == "" {
		return sorter.Options{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return sorter.Options{}, err
	}
	defer f.Close()
	return sorter.LoadOptions(f)
}

func connect(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString, err := source.PostgresConnString(dbCfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(dbCfg.MaxConns)
	poolConfig.MinConns = int32(dbCfg.MinConns)
	poolConfig.MaxConnLifetime = dbCfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dbCfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(dbCfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
