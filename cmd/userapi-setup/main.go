// Command userapi-setup recreates the users table and loads sample rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gochi-demo/user-rest-api/internal/config"
	"github.com/gochi-demo/user-rest-api/internal/database"
	"github.com/gochi-demo/user-rest-api/internal/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	keep := flag.Bool("keep", false, "keep the existing users table and its rows")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, true)

	if err := setup(cfg, *keep); err != nil {
		log.Fatal().Err(err).
			Str("host", cfg.DBHost).
			Str("port", cfg.DBPort).
			Str("database", cfg.DBName).
			Msg("database setup failed; check that the database is running and the credentials in .env")
	}
}

func setup(cfg config.Config, keep bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dialect, ok := database.DialectFor(cfg.DBDriver)
	if !ok {
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := database.Open(ctx, dialect, cfg.DataSource())
	if err != nil {
		return err
	}
	defer db.Close()

	if !keep {
		if err := database.DropSchema(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("old users table dropped")
	}

	if err := database.InitSchema(ctx, db, dialect); err != nil {
		return err
	}

	count, err := database.Seed(ctx, db, dialect, database.SampleUsers)
	if err != nil {
		return err
	}

	log.Info().
		Int("users", count).
		Str("database", dialect.Name()).
		Msg("database setup completed")
	return nil
}
