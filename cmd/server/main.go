package main

import (
	"context"
	"fmt"

	"github.com/tvsaude/auth-service/internal/config"
	httphandler "github.com/tvsaude/auth-service/internal/handler/http"
	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/server"
	"github.com/tvsaude/auth-service/internal/service"
	"github.com/tvsaude/auth-service/internal/store"
	"github.com/tvsaude/auth-service/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("tvsaude-auth")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	storages := store.NewStorages(db, log)

	sessionCache := service.NewSessionCache()
	limiter := service.NewRateLimiter(cfg.Auth.LockoutThreshold, cfg.Auth.LockoutDuration)
	services := service.NewServices(storages, sessionCache, limiter, cfg.Auth, log)

	if err := services.AuthService.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("error bootstrapping super-admin account")
	}

	handler := httphandler.NewHandler(services, log)

	sweeper := workers.NewSessionSweeper(storages.SessionRepository, sessionCache, cfg.Workers.SweepInterval, log)
	jobs := workers.NewWorkers(sweeper)

	srv := server.NewServer(handler.Init(), jobs, cfg.Server, log)
	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
