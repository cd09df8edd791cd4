package mocks

import (
	"context"
	"time"

	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockReservationRepo struct {
	mock.Mock
	domain.ReservationRepository
}

func (m *MockReservationRepo) CreateHold(
	ctx context.Context,
	params domain.CreateHoldParams,
	now time.Time) (*domain.SeatReservation, error) {

	args := m.Called(ctx, params, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatReservation), args.Error(1)
}

func (m *MockReservationRepo) ExtendHold(
	ctx context.Context,
	holdID, userID uuid.UUID,
	expiresAt time.Time,
	now time.Time) (*domain.SeatReservation, error) {

	args := m.Called(ctx, holdID, userID, expiresAt, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatReservation), args.Error(1)
}

func (m *MockReservationRepo) ReleaseHold(
	ctx context.Context,
	holdID, userID uuid.UUID) (*domain.SeatReservation, error) {

	args := m.Called(ctx, holdID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatReservation), args.Error(1)
}

func (m *MockReservationRepo) GetLiveHoldsByUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time) ([]domain.SeatReservation, error) {

	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatReservation), args.Error(1)
}

func (m *MockReservationRepo) DeleteExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}
