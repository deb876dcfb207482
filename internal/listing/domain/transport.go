package domain

import "time"

// TimestampLayout renders timestamps as ISO-8601 UTC text with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Transport is the serializable shape of a listing returned by every read path.
type Transport map[string]any

// ToTransport renders the listing with its identifier and timestamps as text.
func ToTransport(l *Listing) Transport {
	features := l.Features
	if features == nil {
		features = []string{}
	}
	images := l.Images
	if images == nil {
		images = []string{}
	}
	var externalID any
	if l.ExternalListingID != nil {
		externalID = *l.ExternalListingID
	}

	return Transport{
		"_id":                 l.ID,
		"brand":               l.Brand,
		"model":               l.Model,
		"year":                l.Year,
		"price":               l.Price,
		"mileage":             l.Mileage,
		"fuel_type":           l.FuelType,
		"transmission":        l.Transmission,
		"engine_capacity":     l.EngineCapacity,
		"power":               l.Power,
		"body_type":           l.BodyType,
		"color":               l.Color,
		"vin":                 l.VIN,
		"registration_date":   l.RegistrationDate,
		"description":         l.Description,
		"features":            features,
		"images":              images,
		"contact_phone":       l.ContactPhone,
		"contact_email":       l.ContactEmail,
		"is_published":        l.IsPublished,
		"external_listing_id": externalID,
		"created_at":          formatTimestamp(l.CreatedAt),
		"updated_at":          formatTimestamp(l.UpdatedAt),
	}
}

// ToTransportList renders a slice of listings, never returning nil.
func ToTransportList(listings []*Listing) []Transport {
	out := make([]Transport, 0, len(listings))
	for _, l := range listings {
		out = append(out, ToTransport(l))
	}
	return out
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
