package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/wordflow/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when a review state changed since it was read.
	ErrVersionConflict = errors.New("version conflict")
)

// ReviewStateRepository handles review state data access
type ReviewStateRepository interface {
	Get(ctx context.Context, learnerID, itemID string) (*models.ReviewState, error)
	// Insert stores a new state. It reports false when the item is already enrolled.
	Insert(ctx context.Context, state models.ReviewState) (bool, error)
	// SaveReview writes next if the stored version still equals expectedVersion
	// and appends entry, both in one transaction.
	SaveReview(ctx context.Context, next models.ReviewState, expectedVersion int64, entry models.ReviewLogEntry) error
	Due(ctx context.Context, learnerID, collectionID string, now time.Time, limit int) ([]models.ReviewState, error)
	CountDue(ctx context.Context, learnerID, collectionID string, now time.Time) (int, error)
	CountLeeches(ctx context.Context, learnerID, collectionID string, threshold int) (int, error)
	// Delete removes the state and every log entry of the item.
	Delete(ctx context.Context, learnerID, itemID string) error
}

// ReviewLogRepository handles review log data access
type ReviewLogRepository interface {
	List(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLogEntry, error)
	Tally(ctx context.Context, filter models.ReviewLogFilter) (models.Tally, error)
	LearnedItems(ctx context.Context, learnerID, collectionID string, easyThreshold int) ([]string, error)
}

// LearnerStatsRepository handles learner stats data access
type LearnerStatsRepository interface {
	Get(ctx context.Context, learnerID string) (*models.LearnerStats, error)
	Upsert(ctx context.Context, stats models.LearnerStats) error
}
