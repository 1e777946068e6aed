package worker

import (
	"context"
	"time"
)

// UpdateStreakJob folds one review into the learner's streak and totals.
type UpdateStreakJob struct {
	Updater   StreakUpdater
	LearnerID string
	RatedAt   time.Time
}

func (j *UpdateStreakJob) Name() string { return "update_streak" }

func (j *UpdateStreakJob) Run(ctx context.Context) error {
	return j.Updater.ApplyReview(ctx, j.LearnerID, j.RatedAt)
}
