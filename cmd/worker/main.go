package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoSim-25-26J-441/taskhub-backend/config"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/dashboard"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/logger"
	projectrepo "github.com/GoSim-25-26J-441/taskhub-backend/internal/projects/repository"
	projectsvc "github.com/GoSim-25-26J-441/taskhub-backend/internal/projects/service"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/reminders"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/stats"
	taskrepo "github.com/GoSim-25-26J-441/taskhub-backend/internal/tasks/repository"
	tasksvc "github.com/GoSim-25-26J-441/taskhub-backend/internal/tasks/service"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/users"
	"github.com/sirupsen/logrus"
)

const usage = "usage: worker seed <file.yaml> | digest | stats <user-email>"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.L().WithError(err).Fatal("load config")
	}
	log := logger.Init("taskhub-worker", cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1], os.Args[2:]); err != nil {
		log.WithError(err).WithField("command", os.Args[1]).Fatal("worker failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger, cmd string, args []string) error {
	switch cmd {
	case "seed", "digest", "stats":
	default:
		return fmt.Errorf("unknown command %q; %s", cmd, usage)
	}
	if (cmd == "seed" || cmd == "stats") && len(args) < 1 {
		return fmt.Errorf("%s needs an argument; %s", cmd, usage)
	}

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{Config: &cfg.Database, Migrate: cmd == "seed"})
	if err != nil {
		return err
	}
	defer db.Close()

	userRepo := users.NewRepo(db.DB)
	projectRepo := projectrepo.NewProjectRepository(db.DB)
	taskRepo := taskrepo.NewTaskRepository(db.DB)
	agg := stats.NewAggregator(cfg.DueSoonWindow())

	switch cmd {
	case "seed":
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		file, err := ParseSeed(f)
		if err != nil {
			return err
		}
		s := &Seeder{
			Users:    userRepo,
			Projects: projectsvc.NewProjectService(projectRepo, taskRepo, nil, projectsvc.Options{}),
			Tasks:    tasksvc.NewTaskService(taskRepo, projectRepo, userRepo, nil, tasksvc.Options{}),
		}
		res, err := s.Seed(ctx, file)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"users": res.Users, "projects": res.Projects, "tasks": res.Tasks}).Info("seed complete")

	case "digest":
		rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		if rdb == nil {
			return errors.New("REDIS_ADDR is required for digest")
		}
		defer rdb.Close()

		sum, err := reminders.NewNotifier(taskRepo, rdb, agg, log).Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("digest: %d tasks, %d users, %d published, %d failed\n", sum.Tasks, sum.Users, sum.Published, sum.Failed)

	case "stats":
		u, _, err := userRepo.GetByEmail(ctx, args[0])
		if err != nil {
			return fmt.Errorf("user %s: %w", args[0], err)
		}
		d, err := dashboard.NewService(projectRepo, taskRepo, nil, agg, nil).Compute(ctx, u.ID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	return nil
}
