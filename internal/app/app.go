// Package app assembles the database, repositories, services and the
// stats worker pool from a configuration.
package app

import (
	"context"
	"fmt"

	"github.com/vytor/wordflow/internal/config"
	"github.com/vytor/wordflow/internal/db"
	"github.com/vytor/wordflow/internal/jobs"
	"github.com/vytor/wordflow/internal/logger"
	"github.com/vytor/wordflow/internal/repository/sqlite"
	"github.com/vytor/wordflow/internal/services"
	"github.com/vytor/wordflow/internal/srs"
	"github.com/vytor/wordflow/internal/stats"
	"github.com/vytor/wordflow/internal/worker"
)

type App struct {
	DB        *db.DB
	Scheduler *srs.Scheduler
	Reviews   services.ReviewService
	Sessions  services.SessionService
	Stats     services.StatsService
	StatsPool *worker.Pool
}

// New opens the database and wires every service. The stats pool is
// created but not started.
func New(cfg config.Config) (*App, error) {
	log := logger.Default().WithPrefix("app")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	schedCfg, err := cfg.Scheduler()
	if err != nil {
		return nil, fmt.Errorf("load scheduler config: %w", err)
	}
	scheduler, err := srs.New(schedCfg)
	if err != nil {
		return nil, err
	}
	log.Debug("scheduler: ease_start=%.2f, floor=%.2f, ceiling=%.2f, steps=%v",
		schedCfg.EaseFactorStart, schedCfg.EaseFactorFloor, schedCfg.EaseFactorCeiling, schedCfg.LearningStepsMinutes)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	states := sqlite.NewReviewStateRepository(database.DB)
	logs := sqlite.NewReviewLogRepository(database.DB)
	learner := sqlite.NewLearnerStatsRepository(database.DB)

	statsSvc := services.NewStatsService(states, logs, learner, stats.Rules{
		LeechThreshold:       cfg.LeechThreshold,
		LearnedEasyThreshold: cfg.LearnedEasyThreshold,
	}, loc)

	pool := worker.NewPool(cfg.StatsWorkerCount, cfg.StatsQueueSize)
	queue := jobs.NewWorkerQueue(pool, statsSvc)

	reviews := services.NewReviewService(states, scheduler, queue, cfg.StoreRetryAttempts)
	sessions := services.NewSessionService(reviews, services.SessionConfig{
		MaxSoloRepeats: cfg.SessionMaxSoloRepeats,
		TTL:            cfg.SessionTTL,
		Seed:           cfg.SessionSeed,
	})

	return &App{
		DB:        database,
		Scheduler: scheduler,
		Reviews:   reviews,
		Sessions:  sessions,
		Stats:     statsSvc,
		StatsPool: pool,
	}, nil
}

// Start launches the stats workers and the session janitor.
func (a *App) Start(ctx context.Context) {
	a.StatsPool.Start(ctx)
	go a.Sessions.RunJanitor(ctx)
}

// Close drains pending stats jobs and closes the database.
func (a *App) Close() error {
	a.StatsPool.Stop()
	return a.DB.Close()
}
