package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"airquality-server/internal/config"
	db "airquality-server/internal/db"
	httpapi "airquality-server/internal/httpapi"
	"airquality-server/internal/metrics"
	"airquality-server/internal/migrate"
	"airquality-server/internal/modules/airquality"
	"airquality-server/internal/modules/airquality/repository"
	"airquality-server/internal/modules/airquality/views"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"dataSource", cfg.DataSource,
		"dataPath", cfg.DataPath,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"dbLogSQL", cfg.LogSQL,
	)

	m := metrics.New()

	repo, closeSource, err := openSource(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer closeSource()

	// Load once up front so a malformed dataset stops startup instead of
	// failing the first request.
	readings, err := repo.GetReadings(ctx)
	if err != nil {
		return fmt.Errorf("load readings: %w", err)
	}
	m.SetReadingsLoaded(len(readings))
	slog.Info("readings loaded", "count", len(readings))

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	mux := httpapi.NewMux(repo, cfg.StaticDir, m)
	airquality.RegisterFeature(mux, repo, m)

	srv := httpapi.NewServer(cfg, mux, m)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// openSource returns the configured reading source and a func releasing it.
func openSource(ctx context.Context, cfg config.Config, m *metrics.Metrics) (repository.ReadingRepository, func(), error) {
	switch cfg.DataSource {
	case config.SourceSQLite:
		dbConn, err := db.Open(ctx, cfg, slog.Default(), m.ObserveQuery)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(dbConn); err != nil {
				slog.Error("db close", "error", err)
			}
		}
		n, err := migrate.Run(ctx, dbConn)
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		if n > 0 {
			slog.Info("migrations applied", "count", n)
		}
		slog.Info("database connection successful", "path", cfg.Path)
		return repository.NewCached(repository.NewRepository(dbConn)), closeDB, nil
	default:
		return repository.NewFileRepository(cfg.DataPath), func() {}, nil
	}
}
