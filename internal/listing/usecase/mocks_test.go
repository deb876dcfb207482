package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"

	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) FindAll(ctx context.Context) ([]*domain.Listing, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingRepository) FindByFilter(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Listing, error) {
	args := m.Called(ctx, criteria)
	if v := args.Get(0); v != nil {
		return v.([]*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingRepository) Insert(ctx context.Context, listing *domain.Listing) (string, error) {
	args := m.Called(ctx, listing)
	return args.String(0), args.Error(1)
}

func (m *MockListingRepository) Update(ctx context.Context, id string, patch domain.Patch, updatedAt time.Time) error {
	args := m.Called(ctx, id, patch, updatedAt)
	return args.Error(0)
}

func (m *MockListingRepository) SetPublication(ctx context.Context, id string, published bool, externalID *string, updatedAt time.Time) error {
	args := m.Called(ctx, id, published, externalID, updatedAt)
	return args.Error(0)
}

func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListingRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, listing *domain.Listing) domain.PublishResult {
	args := m.Called(ctx, listing)
	return args.Get(0).(domain.PublishResult)
}

func (m *MockPublisher) UpdateListing(ctx context.Context, externalID string, listing *domain.Listing) domain.PublishResult {
	args := m.Called(ctx, externalID, listing)
	return args.Get(0).(domain.PublishResult)
}

func (m *MockPublisher) DeleteListing(ctx context.Context, externalID string) domain.PublishResult {
	args := m.Called(ctx, externalID)
	return args.Get(0).(domain.PublishResult)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendListingCreated(ctx context.Context, to string, listing *domain.Listing) error {
	args := m.Called(ctx, to, listing)
	return args.Error(0)
}
