package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/foodsecurity/foodshare/internal/config"
	"github.com/foodsecurity/foodshare/internal/repository/mongodb"
	"github.com/foodsecurity/foodshare/internal/repository/sheets"
	"github.com/foodsecurity/foodshare/internal/scheduler"
	"github.com/foodsecurity/foodshare/internal/server/handlers"
	"github.com/foodsecurity/foodshare/internal/server/router"
	authsvc "github.com/foodsecurity/foodshare/internal/service/auth"
	donationsvc "github.com/foodsecurity/foodshare/internal/service/donations"
	"github.com/foodsecurity/foodshare/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(os.Getenv("APP_DEBUG") == "true"))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := mongodb.New(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to ensure indexes", zap.Error(err))
	}

	donationRepo := mongodb.NewDonationRepository(repo)
	userRepo := mongodb.NewUserRepository(repo)

	lifecycleSvc := donationsvc.NewService(donationRepo, baseLogger.Named("svc.donations"))
	identitySvc := authsvc.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, baseLogger.Named("svc.auth"))

	var exporter sheets.Exporter
	if cfg.SheetsExportEnabled() {
		exporter, err = sheets.NewReportExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("sheets analytics export enabled")
	} else {
		baseLogger.Warn("sheets export credentials missing, snapshot export disabled")
	}

	donationHandler := handlers.NewDonationHandler(lifecycleSvc, baseLogger.Named("handlers.donations"))
	authHandler := handlers.NewAuthHandler(identitySvc, baseLogger.Named("handlers.auth"))
	reportsHandler := handlers.NewReportsHandler(lifecycleSvc, baseLogger.Named("handlers.reports"))
	engine := router.New(donationHandler, authHandler, reportsHandler, identitySvc, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, lifecycleSvc, exporter, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
