package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/wordflow/internal/models"
)

// MockLearnerStatsRepository is a mock implementation of repository.LearnerStatsRepository
type MockLearnerStatsRepository struct {
	mock.Mock
}

func (m *MockLearnerStatsRepository) Get(ctx context.Context, learnerID string) (*models.LearnerStats, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LearnerStats), args.Error(1)
}

func (m *MockLearnerStatsRepository) Upsert(ctx context.Context, stats models.LearnerStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}
