package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Notemat/foodgram/cmd/config"
	migration "github.com/Notemat/foodgram/cmd/database/migrate"
	"github.com/Notemat/foodgram/cmd/database/seed"
	"github.com/Notemat/foodgram/internal/logging"
	"github.com/Notemat/foodgram/internal/utils"
	"github.com/Notemat/foodgram/pkg/ingredient"
	"github.com/Notemat/foodgram/pkg/tag"
)

func main() {
	migrate := flag.Bool("migrate", false, "run database migrations before serving")
	seedFile := flag.String("seed", "", "import ingredients from a .csv or .json file and exit")
	seedTags := flag.String("seed-tags", "", "import tags (name,slug) from a .csv or .json file and exit")
	flag.Parse()

	cfg, err := utils.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logging.Init(logCfg)

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect database")
	}

	if *migrate {
		if err := migration.Migrate(db); err != nil {
			logging.Fatal().Err(err).Msg("migration failed")
		}
	}

	if *seedFile != "" || *seedTags != "" {
		ctx := context.Background()
		if *seedFile != "" {
			if _, err := seed.ImportIngredients(ctx, ingredient.NewIngredientRepository(db), *seedFile); err != nil {
				logging.Fatal().Err(err).Msg("ingredient import failed")
			}
		}
		if *seedTags != "" {
			if _, err := seed.ImportTags(ctx, tag.NewTagRepository(db), *seedTags); err != nil {
				logging.Fatal().Err(err).Msg("tag import failed")
			}
		}
		return
	}

	app, err := config.NewApp(db, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build app")
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("port", cfg.Port).Msg("server listening")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Fatal().Err(err).Msg("server stopped")
		}
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
