package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/wordflow/internal/models"
)

// MockReviewLogRepository is a mock implementation of repository.ReviewLogRepository
type MockReviewLogRepository struct {
	mock.Mock
}

func (m *MockReviewLogRepository) List(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewLogEntry), args.Error(1)
}

func (m *MockReviewLogRepository) Tally(ctx context.Context, filter models.ReviewLogFilter) (models.Tally, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(models.Tally), args.Error(1)
}

func (m *MockReviewLogRepository) LearnedItems(ctx context.Context, learnerID, collectionID string, easyThreshold int) ([]string, error) {
	args := m.Called(ctx, learnerID, collectionID, easyThreshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
