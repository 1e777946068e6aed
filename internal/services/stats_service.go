package services

import (
	"context"
	stderrors "errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/vytor/wordflow/internal/errors"
	"github.com/vytor/wordflow/internal/logger"
	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/repository"
	"github.com/vytor/wordflow/internal/stats"
)

// StatsService handles statistics business logic
type StatsService interface {
	Today(ctx context.Context, learnerID, collectionID string) (*models.TodayStats, error)
	Learned(ctx context.Context, learnerID, collectionID string) ([]string, error)
	Streak(ctx context.Context, learnerID string) (*models.LearnerStats, error)
	// ApplyReview folds a review rated at ratedAt into the learner's streak.
	ApplyReview(ctx context.Context, learnerID string, ratedAt time.Time) error
}

// StatsServiceOption configures a StatsService.
type StatsServiceOption func(*statsService)

// WithStatsClock overrides the time source.
func WithStatsClock(now func() time.Time) StatsServiceOption {
	return func(s *statsService) { s.now = now }
}

const learnerLockStripes = 64

type statsService struct {
	states  repository.ReviewStateRepository
	logs    repository.ReviewLogRepository
	learner repository.LearnerStatsRepository
	rules   stats.Rules
	loc     *time.Location
	now     func() time.Time
	// Streak updates of one learner are serialized on a stripe.
	locks [learnerLockStripes]sync.Mutex
}

// NewStatsService creates a new StatsService. Calendar days are computed in loc.
func NewStatsService(
	states repository.ReviewStateRepository,
	logs repository.ReviewLogRepository,
	learner repository.LearnerStatsRepository,
	rules stats.Rules,
	loc *time.Location,
	opts ...StatsServiceOption,
) StatsService {
	if loc == nil {
		loc = time.UTC
	}
	if rules.LeechThreshold <= 0 {
		rules.LeechThreshold = stats.DefaultLeechThreshold
	}
	if rules.LearnedEasyThreshold <= 0 {
		rules.LearnedEasyThreshold = stats.DefaultLearnedEasyThreshold
	}
	s := &statsService{states: states, logs: logs, learner: learner, rules: rules, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *statsService) Today(ctx context.Context, learnerID, collectionID string) (*models.TodayStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_service")
	log.Debug("computing today's stats: learner_id=%s, collection_id=%s", learnerID, collectionID)

	now := s.now()
	start, end := stats.DayBounds(now, s.loc)

	tally, err := s.logs.Tally(ctx, models.ReviewLogFilter{LearnerID: learnerID, CollectionID: collectionID, From: start, To: end})
	if err != nil {
		log.Error("failed to tally today's reviews: %v", err)
		return nil, errors.NewStoreUnavailableError("review log", err)
	}

	leeches, err := s.states.CountLeeches(ctx, learnerID, collectionID, s.rules.LeechThreshold)
	if err != nil {
		log.Error("failed to count leeches: %v", err)
		return nil, errors.NewStoreUnavailableError("leech count", err)
	}

	learned, err := s.Learned(ctx, learnerID, collectionID)
	if err != nil {
		return nil, err
	}

	due, err := s.states.CountDue(ctx, learnerID, collectionID, now)
	if err != nil {
		log.Error("failed to count due items: %v", err)
		return nil, errors.NewStoreUnavailableError("due count", err)
	}

	windowStart := now.Add(-stats.AverageWindowDays * 24 * time.Hour)
	recent, err := s.logs.List(ctx, models.ReviewLogFilter{LearnerID: learnerID, CollectionID: collectionID, From: windowStart})
	if err != nil {
		log.Error("failed to load recent reviews: %v", err)
		return nil, errors.NewStoreUnavailableError("review log", err)
	}

	streak, err := s.Streak(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	return &models.TodayStats{
		Day:          start,
		Reviewed:     tally.Total(),
		Tally:        tally,
		Accuracy:     stats.Accuracy(tally),
		LeechCount:   leeches,
		WordsLearned: len(learned),
		DailyStreak:  streak.DailyStreak,
		DueCount:     due,
		AvgPerDay:    stats.AveragePerDay(recent, now, stats.AverageWindowDays),
	}, nil
}

func (s *statsService) Learned(ctx context.Context, learnerID, collectionID string) ([]string, error) {
	items, err := s.logs.LearnedItems(ctx, learnerID, collectionID, s.rules.LearnedEasyThreshold)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("stats_service").Error("failed to load learned items: %v", err)
		return nil, errors.NewStoreUnavailableError("learned items", err)
	}
	return items, nil
}

// Streak returns the learner's stats. A streak whose last review is more
// than one calendar day old is reported as 0.
func (s *statsService) Streak(ctx context.Context, learnerID string) (*models.LearnerStats, error) {
	st, err := s.learner.Get(ctx, learnerID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return &models.LearnerStats{LearnerID: learnerID}, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("stats_service").Error("failed to load learner stats: %v", err)
		return nil, errors.NewStoreUnavailableError("learner stats", err)
	}
	if !st.LastReviewAt.IsZero() && stats.DaysBetween(st.LastReviewAt, s.now(), s.loc) > 1 {
		st.DailyStreak = 0
	}
	return st, nil
}

func (s *statsService) ApplyReview(ctx context.Context, learnerID string, ratedAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("stats_service")

	lock := s.lockFor(learnerID)
	lock.Lock()
	defer lock.Unlock()

	prev, err := s.learner.Get(ctx, learnerID)
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		prev = &models.LearnerStats{LearnerID: learnerID}
	case err != nil:
		log.Error("failed to load learner stats: %v", err)
		return err
	}

	next := stats.AdvanceStreak(*prev, ratedAt, s.loc)
	if err := s.learner.Upsert(ctx, next); err != nil {
		log.Error("failed to store learner stats: %v", err)
		return err
	}
	log.Debug("learner stats updated: learner_id=%s, streak=%d, longest=%d", learnerID, next.DailyStreak, next.LongestStreak)
	return nil
}

func (s *statsService) lockFor(learnerID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(learnerID))
	return &s.locks[h.Sum32()%learnerLockStripes]
}
