package domain

import "time"

// Subjects of listing lifecycle events.
const (
	SubjectCarCreated     = "car.created"
	SubjectCarUpdated     = "car.updated"
	SubjectCarDeleted     = "car.deleted"
	SubjectCarPublished   = "car.published"
	SubjectCarUnpublished = "car.unpublished"
)

// ListingEvent is the body of every listing lifecycle event.
type ListingEvent struct {
	CarID             string    `json:"car_id"`
	Brand             string    `json:"brand,omitempty"`
	Model             string    `json:"model,omitempty"`
	Year              int       `json:"year,omitempty"`
	Price             float64   `json:"price,omitempty"`
	ExternalListingID string    `json:"external_listing_id,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// NewListingEvent builds an event for l. A nil listing yields an id-only event.
func NewListingEvent(id string, l *Listing, at time.Time) ListingEvent {
	ev := ListingEvent{CarID: id, OccurredAt: at}
	if l != nil {
		ev.Brand = l.Brand
		ev.Model = l.Model
		ev.Year = l.Year
		ev.Price = l.Price
		if l.ExternalListingID != nil {
			ev.ExternalListingID = *l.ExternalListingID
		}
	}
	return ev
}
