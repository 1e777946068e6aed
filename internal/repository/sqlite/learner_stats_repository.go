package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/vytor/wordflow/internal/logger"
	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/repository"
)

type learnerStatsRow struct {
	LearnerID     string       `db:"learner_id"`
	DailyStreak   int          `db:"daily_streak"`
	LongestStreak int          `db:"longest_streak"`
	LastReviewAt  sql.NullTime `db:"last_review_at"`
	TotalReviews  int          `db:"total_reviews"`
}

type learnerStatsRepository struct {
	db *sqlx.DB
}

// NewLearnerStatsRepository creates a new LearnerStatsRepository implementation
func NewLearnerStatsRepository(db *sqlx.DB) repository.LearnerStatsRepository {
	return &learnerStatsRepository{db: db}
}

func (r *learnerStatsRepository) Get(ctx context.Context, learnerID string) (*models.LearnerStats, error) {
	log := logger.FromContext(ctx).WithPrefix("learner_stats_repo")
	log.Debug("getting learner stats: learner_id=%s", learnerID)

	var row learnerStatsRow
	err := r.db.GetContext(ctx, &row, `
SELECT learner_id, daily_streak, longest_streak, last_review_at, total_reviews
FROM learner_stats
WHERE learner_id = ?
`, learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to get learner stats: %v", err)
		return nil, err
	}

	s := &models.LearnerStats{
		LearnerID:     row.LearnerID,
		DailyStreak:   row.DailyStreak,
		LongestStreak: row.LongestStreak,
		TotalReviews:  row.TotalReviews,
	}
	if row.LastReviewAt.Valid {
		s.LastReviewAt = row.LastReviewAt.Time
	}
	return s, nil
}

func (r *learnerStatsRepository) Upsert(ctx context.Context, s models.LearnerStats) error {
	log := logger.FromContext(ctx).WithPrefix("learner_stats_repo")
	log.Debug("upserting learner stats: learner_id=%s, streak=%d, total=%d", s.LearnerID, s.DailyStreak, s.TotalReviews)

	row := learnerStatsRow{
		LearnerID:     s.LearnerID,
		DailyStreak:   s.DailyStreak,
		LongestStreak: s.LongestStreak,
		TotalReviews:  s.TotalReviews,
	}
	if !s.LastReviewAt.IsZero() {
		row.LastReviewAt = sql.NullTime{Time: ts(s.LastReviewAt), Valid: true}
	}

	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO learner_stats (learner_id, daily_streak, longest_streak, last_review_at, total_reviews)
VALUES (:learner_id, :daily_streak, :longest_streak, :last_review_at, :total_reviews)
ON CONFLICT (learner_id) DO UPDATE SET
    daily_streak = excluded.daily_streak,
    longest_streak = excluded.longest_streak,
    last_review_at = excluded.last_review_at,
    total_reviews = excluded.total_reviews
`, row)
	if err != nil {
		log.Error("failed to upsert learner stats: %v", err)
	}
	return err
}
