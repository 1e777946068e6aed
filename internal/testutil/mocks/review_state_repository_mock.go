package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/wordflow/internal/models"
)

// MockReviewStateRepository is a mock implementation of repository.ReviewStateRepository
type MockReviewStateRepository struct {
	mock.Mock
}

func (m *MockReviewStateRepository) Get(ctx context.Context, learnerID, itemID string) (*models.ReviewState, error) {
	args := m.Called(ctx, learnerID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewState), args.Error(1)
}

func (m *MockReviewStateRepository) Insert(ctx context.Context, state models.ReviewState) (bool, error) {
	args := m.Called(ctx, state)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewStateRepository) SaveReview(ctx context.Context, next models.ReviewState, expectedVersion int64, entry models.ReviewLogEntry) error {
	args := m.Called(ctx, next, expectedVersion, entry)
	return args.Error(0)
}

func (m *MockReviewStateRepository) Due(ctx context.Context, learnerID, collectionID string, now time.Time, limit int) ([]models.ReviewState, error) {
	args := m.Called(ctx, learnerID, collectionID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewState), args.Error(1)
}

func (m *MockReviewStateRepository) CountDue(ctx context.Context, learnerID, collectionID string, now time.Time) (int, error) {
	args := m.Called(ctx, learnerID, collectionID, now)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewStateRepository) CountLeeches(ctx context.Context, learnerID, collectionID string, threshold int) (int, error) {
	args := m.Called(ctx, learnerID, collectionID, threshold)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewStateRepository) Delete(ctx context.Context, learnerID, itemID string) error {
	args := m.Called(ctx, learnerID, itemID)
	return args.Error(0)
}
