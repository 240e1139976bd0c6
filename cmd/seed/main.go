// cmd/seed creates (or resets) the demo admin and the base service catalog.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"os"

	"github.com/psholiveira/barber-system/internal/config"
	"github.com/psholiveira/barber-system/internal/infra"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type seedService struct {
	name    string
	price   string
	percent string
}

var catalog = []seedService{
	{"Corte", "35.00", "50.00"},
	{"Barba", "25.00", "40.00"},
	{"Corte + Barba", "55.00", "50.00"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	ctx := context.Background()

	username := envOr("SEED_ADMIN_USERNAME", "admin")
	password := envOr("SEED_ADMIN_PASSWORD", "admin123")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	res := db.WithContext(ctx).Exec(`
		INSERT INTO users (username, name, password_hash, role)
		VALUES (?, ?, ?, 'ADMIN')
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    role = 'ADMIN',
		    active = true,
		    updated_at = NOW()
	`, username, "Administrador", string(hash))
	if res.Error != nil {
		log.Fatal().Err(res.Error).Msg("insert admin")
	}

	for _, s := range catalog {
		res := db.WithContext(ctx).Exec(`
			INSERT INTO services (name, default_price, default_commission_percent)
			VALUES (?, ?, ?)
			ON CONFLICT (name) DO NOTHING
		`, s.name, s.price, s.percent)
		if res.Error != nil {
			log.Fatal().Err(res.Error).Str("service", s.name).Msg("insert service")
		}
	}

	log.Info().Str("username", username).Int("services", len(catalog)).Msg("seed applied")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
