package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"github.com/vytor/wordflow/internal/logger"
	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/repository"
)

var stateColumns = []string{
	"learner_id", "item_id", "collection_id", "interval_days", "ease_factor", "repetition",
	"due_at", "lapse_count", "version", "created_at", "updated_at",
}

type reviewStateRepository struct {
	db *sqlx.DB
}

// NewReviewStateRepository creates a new ReviewStateRepository implementation
func NewReviewStateRepository(db *sqlx.DB) repository.ReviewStateRepository {
	return &reviewStateRepository{db: db}
}

func (r *reviewStateRepository) Get(ctx context.Context, learnerID, itemID string) (*models.ReviewState, error) {
	log := logger.FromContext(ctx).WithPrefix("review_state_repo")
	log.Debug("getting review state: learner_id=%s, item_id=%s", learnerID, itemID)

	query, args, err := sqlBuilder.Select(stateColumns...).From("review_states").
		Where(squirrel.Eq{"learner_id": learnerID, "item_id": itemID}).ToSql()
	if err != nil {
		return nil, err
	}

	var st models.ReviewState
	if err := r.db.GetContext(ctx, &st, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("review state not found: item_id=%s", itemID)
			return nil, repository.ErrNotFound
		}
		log.Error("failed to get review state: %v", err)
		return nil, err
	}
	return &st, nil
}

func (r *reviewStateRepository) Insert(ctx context.Context, st models.ReviewState) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("review_state_repo")
	log.Debug("inserting review state: learner_id=%s, item_id=%s, collection_id=%s", st.LearnerID, st.ItemID, st.CollectionID)

	if st.Version == 0 {
		st.Version = 1
	}
	st.DueAt = ts(st.DueAt)
	st.CreatedAt = ts(st.CreatedAt)
	st.UpdatedAt = ts(st.UpdatedAt)

	res, err := r.db.NamedExecContext(ctx, `
INSERT INTO review_states (learner_id, item_id, collection_id, interval_days, ease_factor, repetition,
                           due_at, lapse_count, version, created_at, updated_at)
VALUES (:learner_id, :item_id, :collection_id, :interval_days, :ease_factor, :repetition,
        :due_at, :lapse_count, :version, :created_at, :updated_at)
ON CONFLICT (learner_id, item_id) DO NOTHING
`, st)
	if err != nil {
		log.Error("failed to insert review state: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		log.Debug("item already enrolled: item_id=%s", st.ItemID)
	}
	return n > 0, nil
}

func (r *reviewStateRepository) SaveReview(ctx context.Context, next models.ReviewState, expectedVersion int64, entry models.ReviewLogEntry) error {
	log := logger.FromContext(ctx).WithPrefix("review_state_repo")
	log.Debug("saving review: item_id=%s, expected_version=%d, rating=%s", next.ItemID, expectedVersion, entry.Rating)

	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}
	entry.RatedAt = ts(entry.RatedAt)

	return tx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE review_states
SET interval_days = ?, ease_factor = ?, repetition = ?, due_at = ?, lapse_count = ?,
    version = version + 1, updated_at = ?
WHERE learner_id = ? AND item_id = ? AND version = ?
`, next.IntervalDays, next.EaseFactor, next.Repetition, ts(next.DueAt), next.LapseCount,
			ts(next.UpdatedAt), next.LearnerID, next.ItemID, expectedVersion)
		if err != nil {
			log.Error("failed to update review state: %v", err)
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var exists int
			err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM review_states WHERE learner_id = ? AND item_id = ?`, next.LearnerID, next.ItemID)
			if err != nil {
				return err
			}
			if exists == 0 {
				return repository.ErrNotFound
			}
			log.Warn("version conflict: item_id=%s, expected_version=%d", next.ItemID, expectedVersion)
			return repository.ErrVersionConflict
		}

		if _, err := tx.NamedExecContext(ctx, `
INSERT INTO review_logs (id, learner_id, item_id, collection_id, rated_at, rating, duration_ms)
VALUES (:id, :learner_id, :item_id, :collection_id, :rated_at, :rating, :duration_ms)
`, entry); err != nil {
			log.Error("failed to append review log: %v", err)
			return err
		}
		return nil
	})
}

func (r *reviewStateRepository) Due(ctx context.Context, learnerID, collectionID string, now time.Time, limit int) ([]models.ReviewState, error) {
	log := logger.FromContext(ctx).WithPrefix("review_state_repo")
	log.Debug("fetching due states: learner_id=%s, collection_id=%s, limit=%d", learnerID, collectionID, limit)

	q := sqlBuilder.Select(stateColumns...).From("review_states").
		Where(squirrel.Eq{"learner_id": learnerID}).
		Where(squirrel.LtOrEq{"due_at": ts(now)}).
		OrderBy("due_at", "item_id")
	if collectionID != "" {
		q = q.Where(squirrel.Eq{"collection_id": collectionID})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var states []models.ReviewState
	if err := r.db.SelectContext(ctx, &states, query, args...); err != nil {
		log.Error("failed to query due states: %v", err)
		return nil, err
	}
	log.Debug("found %d due states", len(states))
	return states, nil
}

func (r *reviewStateRepository) CountDue(ctx context.Context, learnerID, collectionID string, now time.Time) (int, error) {
	q := sqlBuilder.Select("COUNT(*)").From("review_states").
		Where(squirrel.Eq{"learner_id": learnerID}).
		Where(squirrel.LtOrEq{"due_at": ts(now)})
	if collectionID != "" {
		q = q.Where(squirrel.Eq{"collection_id": collectionID})
	}
	return r.count(ctx, q)
}

func (r *reviewStateRepository) CountLeeches(ctx context.Context, learnerID, collectionID string, threshold int) (int, error) {
	q := sqlBuilder.Select("COUNT(*)").From("review_states").
		Where(squirrel.Eq{"learner_id": learnerID}).
		Where(squirrel.GtOrEq{"lapse_count": threshold})
	if collectionID != "" {
		q = q.Where(squirrel.Eq{"collection_id": collectionID})
	}
	return r.count(ctx, q)
}

func (r *reviewStateRepository) count(ctx context.Context, q squirrel.SelectBuilder) (int, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		logger.FromContext(ctx).WithPrefix("review_state_repo").Error("failed to count review states: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *reviewStateRepository) Delete(ctx context.Context, learnerID, itemID string) error {
	log := logger.FromContext(ctx).WithPrefix("review_state_repo")
	log.Debug("deleting review state: learner_id=%s, item_id=%s", learnerID, itemID)

	return tx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM review_logs WHERE learner_id = ? AND item_id = ?`, learnerID, itemID); err != nil {
			log.Error("failed to delete review logs: %v", err)
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM review_states WHERE learner_id = ? AND item_id = ?`, learnerID, itemID)
		if err != nil {
			log.Error("failed to delete review state: %v", err)
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}
