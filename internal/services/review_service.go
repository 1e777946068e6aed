package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/oklog/ulid/v2"

	"github.com/vytor/wordflow/internal/errors"
	"github.com/vytor/wordflow/internal/jobs"
	"github.com/vytor/wordflow/internal/logger"
	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/repository"
	"github.com/vytor/wordflow/internal/srs"
)

// ReviewService handles enrollment and recording of reviews
type ReviewService interface {
	// Enroll creates the initial state of an item. Enrolling an item twice
	// returns the stored state and false.
	Enroll(ctx context.Context, learnerID, itemID, collectionID string) (*models.ReviewState, bool, error)
	// Record schedules the item with rating r and persists the new state
	// together with a log entry.
	Record(ctx context.Context, learnerID, itemID string, r models.Rating, durationMs *int64) (*models.ReviewState, error)
	RemoveItem(ctx context.Context, learnerID, itemID string) error
	Due(ctx context.Context, learnerID, collectionID string, limit int) ([]models.ReviewState, error)
}

// ReviewServiceOption configures a ReviewService.
type ReviewServiceOption func(*reviewService)

// WithReviewClock overrides the time source.
func WithReviewClock(now func() time.Time) ReviewServiceOption {
	return func(s *reviewService) { s.now = now }
}

// WithRetryDelay sets the pause between attempts after a version conflict.
func WithRetryDelay(d time.Duration) ReviewServiceOption {
	return func(s *reviewService) { s.retryDelay = d }
}

type reviewService struct {
	states     repository.ReviewStateRepository
	scheduler  *srs.Scheduler
	queue      jobs.JobQueue
	attempts   uint
	retryDelay time.Duration
	now        func() time.Time
}

// NewReviewService creates a new ReviewService. queue may be nil, in which
// case learner stats are not updated.
func NewReviewService(states repository.ReviewStateRepository, scheduler *srs.Scheduler, queue jobs.JobQueue, attempts uint, opts ...ReviewServiceOption) ReviewService {
	if attempts == 0 {
		attempts = 1
	}
	s := &reviewService{
		states:     states,
		scheduler:  scheduler,
		queue:      queue,
		attempts:   attempts,
		retryDelay: 10 * time.Millisecond,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reviewService) Enroll(ctx context.Context, learnerID, itemID, collectionID string) (*models.ReviewState, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("review_service")
	log.Debug("enrolling item: learner_id=%s, item_id=%s, collection_id=%s", learnerID, itemID, collectionID)

	if strings.TrimSpace(learnerID) == "" {
		return nil, false, errors.NewValidationError("learner_id", "required")
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, false, errors.NewValidationError("item_id", "required")
	}

	st := s.scheduler.NewState(learnerID, itemID, collectionID, s.now())
	inserted, err := s.states.Insert(ctx, st)
	if err != nil {
		log.Error("failed to insert review state: %v", err)
		return nil, false, errors.NewStateUnavailableError(itemID, err)
	}
	if !inserted {
		existing, err := s.states.Get(ctx, learnerID, itemID)
		if err != nil {
			log.Error("failed to load existing review state: %v", err)
			return nil, false, errors.NewStateUnavailableError(itemID, err)
		}
		return existing, false, nil
	}

	st.Version = 1
	log.Info("item enrolled: item_id=%s", itemID)
	return &st, true, nil
}

func (s *reviewService) Record(ctx context.Context, learnerID, itemID string, r models.Rating, durationMs *int64) (*models.ReviewState, error) {
	log := logger.FromContext(ctx).WithPrefix("review_service").WithFields(map[string]any{
		"learner_id": learnerID,
		"item_id":    itemID,
	})
	log.Debug("recording review: rating=%s", r)

	if !r.IsValid() {
		return nil, errors.NewValidationError("rating", models.ErrInvalidRating.Error())
	}
	if durationMs != nil && *durationMs < 0 {
		return nil, errors.NewValidationError("duration_ms", "must be 0 or greater")
	}

	var saved models.ReviewState
	var cause error
	err := retry.Do(
		func() error {
			cause = s.attempt(ctx, learnerID, itemID, r, durationMs, &saved)
			if cause == nil || stderrors.Is(cause, repository.ErrVersionConflict) {
				return cause
			}
			return retry.Unrecoverable(cause)
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("retrying review after conflict: attempt=%d", n+1)
		}),
	)
	if err != nil {
		if cause == nil {
			cause = err
		}
		switch {
		case stderrors.Is(cause, repository.ErrNotFound):
			return nil, errors.NewNotFoundError("item", itemID)
		case stderrors.Is(cause, repository.ErrVersionConflict):
			log.Warn("giving up after %d conflicting writes", s.attempts)
			return nil, errors.NewConflictError("review state of item " + itemID + " changed concurrently")
		default:
			log.Error("failed to record review: %v", cause)
			return nil, errors.NewStateUnavailableError(itemID, cause)
		}
	}

	if s.queue != nil {
		if err := s.queue.EnqueueStreakUpdate(ctx, learnerID, saved.UpdatedAt); err != nil {
			// The review is already stored; stats catch up with the next one.
			log.Warn("failed to enqueue streak update: %v", err)
		}
	}

	log.Debug("review recorded: interval=%.1f, ease=%.2f, repetition=%d", saved.IntervalDays, saved.EaseFactor, saved.Repetition)
	return &saved, nil
}

// attempt performs one read, schedule and conditional write cycle.
func (s *reviewService) attempt(ctx context.Context, learnerID, itemID string, r models.Rating, durationMs *int64, out *models.ReviewState) error {
	cur, err := s.states.Get(ctx, learnerID, itemID)
	if err != nil {
		return err
	}

	now := s.now()
	next := s.scheduler.Schedule(*cur, r, now)
	next.UpdatedAt = now
	entry := models.ReviewLogEntry{
		ID:           ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		LearnerID:    learnerID,
		ItemID:       itemID,
		CollectionID: cur.CollectionID,
		RatedAt:      now,
		Rating:       r,
		DurationMs:   durationMs,
	}
	if err := s.states.SaveReview(ctx, next, cur.Version, entry); err != nil {
		return err
	}
	next.Version = cur.Version + 1
	*out = next
	return nil
}

func (s *reviewService) RemoveItem(ctx context.Context, learnerID, itemID string) error {
	log := logger.FromContext(ctx).WithPrefix("review_service")
	log.Debug("removing item: learner_id=%s, item_id=%s", learnerID, itemID)

	if err := s.states.Delete(ctx, learnerID, itemID); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewNotFoundError("item", itemID)
		}
		log.Error("failed to remove item: %v", err)
		return errors.NewStateUnavailableError(itemID, err)
	}
	log.Info("item removed: item_id=%s", itemID)
	return nil
}

func (s *reviewService) Due(ctx context.Context, learnerID, collectionID string, limit int) ([]models.ReviewState, error) {
	log := logger.FromContext(ctx).WithPrefix("review_service")

	states, err := s.states.Due(ctx, learnerID, collectionID, s.now(), limit)
	if err != nil {
		log.Error("failed to load due items: %v", err)
		return nil, errors.NewStoreUnavailableError("due items", err)
	}
	return states, nil
}
