package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vytor/wordflow/internal/logger"
	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/repository"
)

type reviewLogRepository struct {
	db *sqlx.DB
}

// NewReviewLogRepository creates a new ReviewLogRepository implementation
func NewReviewLogRepository(db *sqlx.DB) repository.ReviewLogRepository {
	return &reviewLogRepository{db: db}
}

func (r *reviewLogRepository) List(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLogEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("listing review logs: learner_id=%s, item_id=%s, collection_id=%s", filter.LearnerID, filter.ItemID, filter.CollectionID)

	q := sqlBuilder.Select("id", "learner_id", "item_id", "collection_id", "rated_at", "rating", "duration_ms").
		From("review_logs").
		OrderBy("rated_at", "id")
	query, args, err := logFilter(q, filter).ToSql()
	if err != nil {
		return nil, err
	}

	var entries []models.ReviewLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		log.Error("failed to list review logs: %v", err)
		return nil, err
	}
	return entries, nil
}

func (r *reviewLogRepository) Tally(ctx context.Context, filter models.ReviewLogFilter) (models.Tally, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")

	q := sqlBuilder.Select("rating", "COUNT(*) AS n").From("review_logs").GroupBy("rating")
	query, args, err := logFilter(q, filter).ToSql()
	if err != nil {
		return models.Tally{}, err
	}

	var rows []struct {
		Rating models.Rating `db:"rating"`
		N      int           `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Error("failed to tally review logs: %v", err)
		return models.Tally{}, err
	}

	var t models.Tally
	for _, row := range rows {
		switch row.Rating {
		case models.Again:
			t.Again = row.N
		case models.Hard:
			t.Hard = row.N
		case models.Good:
			t.Good = row.N
		case models.Easy:
			t.Easy = row.N
		}
	}
	log.Debug("tallied %d review logs", t.Total())
	return t, nil
}

func (r *reviewLogRepository) LearnedItems(ctx context.Context, learnerID, collectionID string, easyThreshold int) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")

	q := sqlBuilder.Select("item_id").From("review_logs").
		Where(squirrel.Eq{"learner_id": learnerID, "rating": models.Easy.String()}).
		GroupBy("item_id").
		Having("COUNT(*) >= ?", easyThreshold).
		OrderBy("item_id")
	if collectionID != "" {
		q = q.Where(squirrel.Eq{"collection_id": collectionID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		log.Error("failed to query learned items: %v", err)
		return nil, err
	}
	log.Debug("found %d learned items", len(ids))
	return ids, nil
}
