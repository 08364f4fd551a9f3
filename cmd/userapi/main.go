package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gochi-demo/user-rest-api/internal/app"
	"github.com/gochi-demo/user-rest-api/internal/config"
	"github.com/gochi-demo/user-rest-api/internal/database"
	"github.com/gochi-demo/user-rest-api/internal/logger"
	"github.com/gochi-demo/user-rest-api/internal/server"
	"github.com/gochi-demo/user-rest-api/internal/telemetry"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.Development())

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server exited")
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(cfg.OTelExporter, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	dialect, ok := database.DialectFor(cfg.DBDriver)
	if !ok {
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := open(ctx, cfg, dialect)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.InitSchema(ctx, db, dialect); err != nil {
		return err
	}

	a := app.New(database.NewSQLUserStore(db, dialect))
	srv := server.NewServer(cfg.Addr(), server.NewRouter(a, server.Options{Development: cfg.Development()}))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.Env).
			Str("database", dialect.Name()).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func open(ctx context.Context, cfg config.Config, dialect database.Dialect) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Open(ctx, dialect, cfg.DataSource())
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("database", dialect.Name()).
		Str("name", cfg.DBName).
		Msg("database connected")
	return db, nil
}
