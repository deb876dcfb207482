package domain

import (
	"context"
	"time"
)

// ListingRepository is the document store handle for the listing collection.
// Implementations return ErrInvalidID for identifiers the store cannot parse and
// ErrNotFound when no document matches.
type ListingRepository interface {
	FindAll(ctx context.Context) ([]*Listing, error)
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByFilter(ctx context.Context, criteria SearchCriteria) ([]*Listing, error)
	Insert(ctx context.Context, listing *Listing) (string, error)
	Update(ctx context.Context, id string, patch Patch, updatedAt time.Time) error
	SetPublication(ctx context.Context, id string, published bool, externalID *string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// PublishStatus is the outcome of a marketplace call.
type PublishStatus string

const (
	PublishSuccess PublishStatus = "success"
	PublishFailure PublishStatus = "failure"
)

// PublishResult is returned by every Publisher operation.
type PublishResult struct {
	Status       PublishStatus
	ExternalID   string
	Message      string
	ErrorMessage string
}

func (r PublishResult) OK() bool {
	return r.Status == PublishSuccess
}

// Publisher syncs listings to a third-party marketplace.
type Publisher interface {
	Publish(ctx context.Context, listing *Listing) PublishResult
	UpdateListing(ctx context.Context, externalID string, listing *Listing) PublishResult
	DeleteListing(ctx context.Context, externalID string) PublishResult
}

// EventPublisher emits listing lifecycle events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Mailer sends listing notifications to the seller.
type Mailer interface {
	SendListingCreated(ctx context.Context, to string, listing *Listing) error
}
