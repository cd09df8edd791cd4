package mocks

import (
	"context"
	"time"

	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAvailabilityRepo struct {
	mock.Mock
	domain.AvailabilityRepository
}

func (m *MockAvailabilityRepo) GetSeatMap(
	ctx context.Context,
	showingID uuid.UUID,
	now time.Time) (*domain.ShowingSeatMap, error) {

	args := m.Called(ctx, showingID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShowingSeatMap), args.Error(1)
}

func (m *MockAvailabilityRepo) IsSeatAvailable(
	ctx context.Context,
	showingID, seatID uuid.UUID,
	now time.Time) (bool, error) {

	args := m.Called(ctx, showingID, seatID, now)
	return args.Bool(0), args.Error(1)
}
