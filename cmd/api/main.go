package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoSim-25-26J-441/taskhub-backend/config"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/logger"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/reminders"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/stats"
	taskrepo "github.com/GoSim-25-26J-441/taskhub-backend/internal/tasks/repository"
)

const serviceName = "taskhub-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().WithError(err).Fatal("load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.L().WithError(err).Fatal("invalid config")
	}

	log := logger.Init(serviceName, cfg.App.LogLevel)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{Config: &cfg.Database, Migrate: true})
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, dashboard cache and reminders disabled")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	deps := bootstrap.RouterDeps{ServiceName: serviceName, Config: cfg, DB: db.DB, Redis: rdb}
	if cfg.Auth.FirebaseCredentialsPath != "" {
		fb, err := auth.InitializeFirebase(ctx, &cfg.Auth)
		if err != nil {
			log.WithError(err).Fatal("initialize firebase")
		}
		deps.Firebase = fb
	}

	var scheduler *reminders.Scheduler
	if rdb != nil {
		notifier := reminders.NewNotifier(taskrepo.NewTaskRepository(db.DB), rdb, stats.NewAggregator(cfg.DueSoonWindow()), log)
		scheduler, err = reminders.NewScheduler(cfg.App.DigestSchedule, notifier, log)
		if err != nil {
			log.WithError(err).Fatal("schedule reminders")
		}
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      bootstrap.BuildRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown")
	}
}
