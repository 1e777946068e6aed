package jobs

import (
	"context"
	"time"
)

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueStreakUpdate(ctx context.Context, learnerID string, ratedAt time.Time) error
}
