package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/repository"
	"github.com/vytor/wordflow/internal/repository/sqlite"
	"github.com/vytor/wordflow/internal/testutil"
)

func TestLearnerStatsRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewLearnerStatsRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "ana")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Upsert(ctx, models.LearnerStats{LearnerID: "ana", DailyStreak: 1, LongestStreak: 1, LastReviewAt: t0, TotalReviews: 1}))
	require.NoError(t, repo.Upsert(ctx, models.LearnerStats{LearnerID: "ana", DailyStreak: 2, LongestStreak: 2, LastReviewAt: t0.Add(24 * time.Hour), TotalReviews: 5}))

	got, err := repo.Get(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 2, got.DailyStreak)
	assert.Equal(t, 2, got.LongestStreak)
	assert.Equal(t, 5, got.TotalReviews)
	assert.True(t, got.LastReviewAt.Equal(t0.Add(24*time.Hour)))
}

func TestLearnerStatsRepository_NoReviewYet(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewLearnerStatsRepository(db)

	require.NoError(t, repo.Upsert(context.Background(), models.LearnerStats{LearnerID: "bob"}))

	got, err := repo.Get(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, got.LastReviewAt.IsZero())
}
