package domain

import (
	"strconv"
	"time"
)

// Listing is a single car offered for sale.
type Listing struct {
	ID               string
	Brand            string
	Model            string
	Year             int
	Price            float64
	Mileage          float64
	FuelType         string
	Transmission     string
	EngineCapacity   string
	Power            string
	BodyType         string
	Color            string
	VIN              string
	RegistrationDate string
	Description      string
	Features         []string
	Images           []string
	ContactPhone     string
	ContactEmail     string

	// IsPublished and ExternalListingID are owned by the marketplace publisher flow.
	IsPublished       bool
	ExternalListingID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Title is the marketplace headline, "brand model year".
func (l *Listing) Title() string {
	return l.Brand + " " + l.Model + " " + strconv.Itoa(l.Year)
}

// SearchCriteria holds the optional search constraints. Nil or empty fields impose no constraint.
type SearchCriteria struct {
	Brand    string
	Model    string
	MinPrice *float64
	MaxPrice *float64
	Year     *int
}

// IsEmpty reports whether no constraint is set.
func (c SearchCriteria) IsEmpty() bool {
	return c.Brand == "" && c.Model == "" && c.MinPrice == nil && c.MaxPrice == nil && c.Year == nil
}

// Now returns the current UTC time at the precision the document store keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
