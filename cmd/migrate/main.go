package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/jhoicas/agency-billing-api/internal/infrastructure/postgres"
	"github.com/jhoicas/agency-billing-api/pkg/config"
	"github.com/jhoicas/agency-billing-api/pkg/logger"
)

func main() {
	down := flag.Int("down", 0, "revertir N migraciones (-1 = todas)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("migrate")

	dsn := cfg.DB.ConnectionString()
	switch {
	case *down != 0:
		n := *down
		if n < 0 {
			n = 0
		}
		if err := postgres.MigrateDown(dsn, n); err != nil {
			log.Error().Err(err).Msg("revertir migraciones")
			os.Exit(1)
		}
	default:
		if err := postgres.MigrateUp(dsn); err != nil {
			log.Error().Err(err).Msg("aplicar migraciones")
			os.Exit(1)
		}
	}

	version, dirty, err := postgres.MigrationVersion(dsn)
	if err != nil {
		log.Error().Err(err).Msg("leer versión de migraciones")
		os.Exit(1)
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migraciones al día")
}
