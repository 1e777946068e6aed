package jobs

import (
	"context"
	"time"

	"github.com/vytor/wordflow/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	statsPool *worker.Pool
	updater   worker.StreakUpdater
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(statsPool *worker.Pool, updater worker.StreakUpdater) JobQueue {
	return &WorkerQueue{statsPool: statsPool, updater: updater}
}

func (q *WorkerQueue) EnqueueStreakUpdate(ctx context.Context, learnerID string, ratedAt time.Time) error {
	return q.statsPool.Submit(ctx, &worker.UpdateStreakJob{
		Updater:   q.updater,
		LearnerID: learnerID,
		RatedAt:   ratedAt,
	})
}
