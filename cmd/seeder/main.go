// cmd/seeder/main.go
package main

import (
	"context"
	"os"

	"github.com/unclebandit/promo-dashboard/internal/config"
	"github.com/unclebandit/promo-dashboard/internal/db"
	"github.com/unclebandit/promo-dashboard/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.Database.DSN())
	if err != nil {
		logging.Fatal().Err(err).Msg("database unavailable")
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}

	seedFiles := []string{
		"seed/contacts.sql",
		"seed/messages.sql",
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			logging.Fatal().Err(err).Str("file", file).Msg("failed to read seed file")
		}

		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			logging.Fatal().Err(err).Str("file", file).Msg("failed to execute seed file")
		}
		logging.Info().Str("file", file).Msg("seeded")
	}

	logging.Info().Msg("Database seeding completed successfully!")
}
