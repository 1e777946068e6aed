package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vytor/wordflow/internal/errors"
	"github.com/vytor/wordflow/internal/jobs"
	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/repository"
	"github.com/vytor/wordflow/internal/services"
	"github.com/vytor/wordflow/internal/srs"
	"github.com/vytor/wordflow/internal/testutil/mocks"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func newScheduler(t *testing.T) *srs.Scheduler {
	t.Helper()
	s, err := srs.New(srs.DefaultConfig())
	require.NoError(t, err)
	return s
}

func freshState(itemID string) *models.ReviewState {
	st := srs.NewState(srs.DefaultConfig(), "ana", itemID, "es", now.Add(-time.Hour))
	st.Version = 1
	return &st
}

func newReviewService(t *testing.T, states *mocks.MockReviewStateRepository, queue *mocks.MockJobQueue, attempts uint) services.ReviewService {
	var q jobs.JobQueue
	if queue != nil {
		q = queue
	}
	return services.NewReviewService(states, newScheduler(t), q, attempts,
		services.WithReviewClock(clock), services.WithRetryDelay(time.Millisecond))
}

func TestEnroll(t *testing.T) {
	states := new(mocks.MockReviewStateRepository)
	states.On("Insert", mock.Anything, mock.MatchedBy(func(st models.ReviewState) bool {
		return st.ItemID == "hola" && st.EaseFactor == 2.5 && st.DueAt.Equal(now) && st.Repetition == 0
	})).Return(true, nil)

	svc := newReviewService(t, states, nil, 1)
	st, created, err := svc.Enroll(context.Background(), "ana", "hola", "es")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), st.Version)
	assert.Equal(t, 0.0, st.IntervalDays)
	states.AssertExpectations(t)
}

func TestEnroll_AlreadyEnrolledReturnsStoredState(t *testing.T) {
	stored := freshState("hola")
	stored.Repetition = 3

	states := new(mocks.MockReviewStateRepository)
	states.On("Insert", mock.Anything, mock.Anything).Return(false, nil)
	states.On("Get", mock.Anything, "ana", "hola").Return(stored, nil)

	svc := newReviewService(t, states, nil, 1)
	st, created, err := svc.Enroll(context.Background(), "ana", "hola", "es")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 3, st.Repetition)
}

func TestEnroll_RequiresItemID(t *testing.T) {
	svc := newReviewService(t, new(mocks.MockReviewStateRepository), nil, 1)
	_, _, err := svc.Enroll(context.Background(), "ana", " ", "es")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func TestRecord(t *testing.T) {
	states := new(mocks.MockReviewStateRepository)
	queue := new(mocks.MockJobQueue)
	states.On("Get", mock.Anything, "ana", "hola").Return(freshState("hola"), nil)
	states.On("SaveReview", mock.Anything,
		mock.MatchedBy(func(next models.ReviewState) bool {
			return next.Repetition == 1 && next.IntervalDays == 1 && next.DueAt.Equal(now.Add(24*time.Hour))
		}),
		int64(1),
		mock.MatchedBy(func(e models.ReviewLogEntry) bool {
			return e.Rating == models.Good && len(e.ID) == 26 && e.RatedAt.Equal(now) && e.CollectionID == "es"
		}),
	).Return(nil)
	queue.On("EnqueueStreakUpdate", mock.Anything, "ana", now).Return(nil)

	svc := newReviewService(t, states, queue, 3)
	st, err := svc.Record(context.Background(), "ana", "hola", models.Good, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Version)
	assert.Equal(t, 1, st.Repetition)
	states.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestRecord_StreakUsesLoggedReviewTime(t *testing.T) {
	states := new(mocks.MockReviewStateRepository)
	queue := new(mocks.MockJobQueue)

	tick := now
	ticking := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	var ratedAt time.Time
	states.On("Get", mock.Anything, "ana", "hola").Return(freshState("hola"), nil)
	states.On("SaveReview", mock.Anything, mock.Anything, int64(1), mock.Anything).
		Run(func(args mock.Arguments) {
			ratedAt = args.Get(3).(models.ReviewLogEntry).RatedAt
		}).
		Return(nil)
	queue.On("EnqueueStreakUpdate", mock.Anything, "ana", mock.Anything).Return(nil)

	svc := services.NewReviewService(states, newScheduler(t), queue, 1, services.WithReviewClock(ticking))
	_, err := svc.Record(context.Background(), "ana", "hola", models.Good, nil)
	require.NoError(t, err)

	require.False(t, ratedAt.IsZero())
	queue.AssertCalled(t, "EnqueueStreakUpdate", mock.Anything, "ana", ratedAt)
}

func TestDue_StoreFailureIsStateUnavailable(t *testing.T) {
	states := new(mocks.MockReviewStateRepository)
	states.On("Due", mock.Anything, "ana", "es", now, 10).Return(nil, stderrors.New("database is locked"))

	svc := newReviewService(t, states, nil, 1)
	_, err := svc.Due(context.Background(), "ana", "es", 10)

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStateUnavailable))
}

func TestRecord_RetriesVersionConflict(t *testing.T) {
	states := new(mocks.MockReviewStateRepository)
	queue := new(mocks.MockJobQueue)
	states.On("Get", mock.Anything, "ana", "hola").Return(freshState("hola"), nil).Twice()
	states.On("SaveReview", mock.Anything, mock.Anything, int64(1), mock.Anything).Return(repository.ErrVersionConflict).Once()
	states.On("SaveReview", mock.Anything, mock.Anything, int64(1), mock.Anything).Return(nil).Once()
	queue.On("EnqueueStreakUpdate", mock.Anything, "ana", now).Return(nil)

	svc := newReviewService(t, states, queue, 3)
	_, err := svc.Record(context.Background(), "ana", "hola", models.Easy, nil)

	require.NoError(t, err)
	states.AssertNumberOfCalls(t, "SaveReview", 2)
}

func TestRecord_ConflictExhausted(t *testing.T) {
	states := new(mocks.MockReviewStateRepository)
	queue := new(mocks.MockJobQueue)
	states.On("Get", mock.Anything, "ana", "hola").Return(freshState("hola"), nil)
	states.On("SaveReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrVersionConflict)

	svc := newReviewService(t, states, queue, 2)
	_, err := svc.Record(context.Background(), "ana", "hola", models.Good, nil)

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))
	states.AssertNumberOfCalls(t, "SaveReview", 2)
	queue.AssertNotCalled(t, "EnqueueStreakUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecord_StoreFailureIsStateUnavailable(t *testing.T) {
	states := new(mocks.MockReviewStateRepository)
	queue := new(mocks.MockJobQueue)
	cause := stderrors.New("disk I/O error")
	states.On("Get", mock.Anything, "ana", "hola").Return(freshState("hola"), nil)
	states.On("SaveReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cause)

	svc := newReviewService(t, states, queue, 3)
	_, err := svc.Record(context.Background(), "ana", "hola", models.Again, nil)

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStateUnavailable))
	assert.ErrorIs(t, err, cause)
	// Unrecoverable errors are not retried.
	states.AssertNumberOfCalls(t, "SaveReview", 1)
	queue.AssertNotCalled(t, "EnqueueStreakUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecord_UnknownItem(t *testing.T) {
	states := new(mocks.MockReviewStateRepository)
	states.On("Get", mock.Anything, "ana", "ghost").Return(nil, repository.ErrNotFound)

	svc := newReviewService(t, states, nil, 3)
	_, err := svc.Record(context.Background(), "ana", "ghost", models.Good, nil)

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestRecord_RejectsBadInput(t *testing.T) {
	svc := newReviewService(t, new(mocks.MockReviewStateRepository), nil, 1)

	_, err := svc.Record(context.Background(), "ana", "hola", models.Rating(9), nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	negative := int64(-5)
	_, err = svc.Record(context.Background(), "ana", "hola", models.Good, &negative)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func TestRecord_EnqueueFailureDoesNotFailReview(t *testing.T) {
	states := new(mocks.MockReviewStateRepository)
	queue := new(mocks.MockJobQueue)
	states.On("Get", mock.Anything, "ana", "hola").Return(freshState("hola"), nil)
	states.On("SaveReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	queue.On("EnqueueStreakUpdate", mock.Anything, "ana", now).Return(stderrors.New("worker pool stopped"))

	svc := newReviewService(t, states, queue, 1)
	_, err := svc.Record(context.Background(), "ana", "hola", models.Good, nil)

	assert.NoError(t, err)
}

func TestRemoveItem(t *testing.T) {
	states := new(mocks.MockReviewStateRepository)
	states.On("Delete", mock.Anything, "ana", "hola").Return(nil)
	states.On("Delete", mock.Anything, "ana", "ghost").Return(repository.ErrNotFound)

	svc := newReviewService(t, states, nil, 1)
	assert.NoError(t, svc.RemoveItem(context.Background(), "ana", "hola"))
	assert.True(t, apperrors.HasCode(svc.RemoveItem(context.Background(), "ana", "ghost"), apperrors.ErrCodeNotFound))
}
