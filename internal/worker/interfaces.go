package worker

import (
	"context"
	"time"
)

// StreakUpdater applies one recorded review to a learner's running stats.
// This avoids import cycles by not importing the services package
type StreakUpdater interface {
	ApplyReview(ctx context.Context, learnerID string, ratedAt time.Time) error
}
