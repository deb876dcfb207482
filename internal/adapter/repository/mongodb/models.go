package mongodb

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listingDocument is the stored shape of a listing in the cars collection.
type listingDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Brand             string             `bson:"brand"`
	Model             string             `bson:"model"`
	Year              int                `bson:"year"`
	Price             float64            `bson:"price"`
	Mileage           float64            `bson:"mileage"`
	FuelType          string             `bson:"fuel_type"`
	Transmission      string             `bson:"transmission"`
	EngineCapacity    string             `bson:"engine_capacity"`
	Power             string             `bson:"power"`
	BodyType          string             `bson:"body_type"`
	Color             string             `bson:"color"`
	VIN               string             `bson:"vin"`
	RegistrationDate  string             `bson:"registration_date"`
	Description       string             `bson:"description"`
	Features          []string           `bson:"features"`
	Images            []string           `bson:"images"`
	ContactPhone      string             `bson:"contact_phone"`
	ContactEmail      string             `bson:"contact_email"`
	IsPublished       bool               `bson:"is_published"`
	ExternalListingID *string            `bson:"external_listing_id"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

// toListingDocument converts a domain listing. An empty ID leaves _id unset so the
// driver assigns a new ObjectID on insert.
func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	doc := &listingDocument{
		Brand:             l.Brand,
		Model:             l.Model,
		Year:              l.Year,
		Price:             l.Price,
		Mileage:           l.Mileage,
		FuelType:          l.FuelType,
		Transmission:      l.Transmission,
		EngineCapacity:    l.EngineCapacity,
		Power:             l.Power,
		BodyType:          l.BodyType,
		Color:             l.Color,
		VIN:               l.VIN,
		RegistrationDate:  l.RegistrationDate,
		Description:       l.Description,
		Features:          nonNil(l.Features),
		Images:            nonNil(l.Images),
		ContactPhone:      l.ContactPhone,
		ContactEmail:      l.ContactEmail,
		IsPublished:       l.IsPublished,
		ExternalListingID: l.ExternalListingID,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
	if l.ID != "" {
		oid, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("toListingDocument: invalid ID format '%s': %w", l.ID, domain.ErrInvalidID)
		}
		doc.ID = oid
	}
	return doc, nil
}

func toDomainListing(d *listingDocument) *domain.Listing {
	return &domain.Listing{
		ID:                d.ID.Hex(),
		Brand:             d.Brand,
		Model:             d.Model,
		Year:              d.Year,
		Price:             d.Price,
		Mileage:           d.Mileage,
		FuelType:          d.FuelType,
		Transmission:      d.Transmission,
		EngineCapacity:    d.EngineCapacity,
		Power:             d.Power,
		BodyType:          d.BodyType,
		Color:             d.Color,
		VIN:               d.VIN,
		RegistrationDate:  d.RegistrationDate,
		Description:       d.Description,
		Features:          nonNil(d.Features),
		Images:            nonNil(d.Images),
		ContactPhone:      d.ContactPhone,
		ContactEmail:      d.ContactEmail,
		IsPublished:       d.IsPublished,
		ExternalListingID: d.ExternalListingID,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainListing(doc))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// parseID converts a hex listing id into an ObjectID.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return oid, nil
}
