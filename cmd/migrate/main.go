// cmd/migrate applies or reverts the embedded schema migrations.
// Usage: go run ./cmd/migrate [up|down]
package main

import (
	"os"

	"github.com/psholiveira/barber-system/internal/config"
	"github.com/psholiveira/barber-system/internal/infra"

	"github.com/rs/zerolog/log"
)

func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	switch direction {
	case "up":
		err = infra.RunMigrations(db)
	case "down":
		err = infra.RollbackMigrations(db)
	default:
		log.Fatal().Str("direction", direction).Msg("expected up or down")
	}
	if err != nil {
		log.Fatal().Err(err).Str("direction", direction).Msg("migration failed")
	}
	log.Info().Str("direction", direction).Msg("migrations applied")
}
