package sqlite

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vytor/wordflow/internal/logger"
	"github.com/vytor/wordflow/internal/models"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Helper functions shared across repository implementations

func tx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}

// ts normalizes timestamps so stored values compare correctly as text.
func ts(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func logFilter(q squirrel.SelectBuilder, f models.ReviewLogFilter) squirrel.SelectBuilder {
	if f.LearnerID != "" {
		q = q.Where(squirrel.Eq{"learner_id": f.LearnerID})
	}
	if f.ItemID != "" {
		q = q.Where(squirrel.Eq{"item_id": f.ItemID})
	}
	if f.CollectionID != "" {
		q = q.Where(squirrel.Eq{"collection_id": f.CollectionID})
	}
	if f.Rating.IsValid() {
		q = q.Where(squirrel.Eq{"rating": f.Rating.String()})
	}
	if !f.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"rated_at": ts(f.From)})
	}
	if !f.To.IsZero() {
		q = q.Where(squirrel.Lt{"rated_at": ts(f.To)})
	}
	return q
}
