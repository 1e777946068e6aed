package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueStreakUpdate(ctx context.Context, learnerID string, ratedAt time.Time) error {
	args := m.Called(ctx, learnerID, ratedAt)
	return args.Error(0)
}
