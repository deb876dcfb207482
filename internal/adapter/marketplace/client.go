package marketplace

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultAPIURL = "https://api.autoplac.pl"

const errAPIKeyNotConfigured = "marketplace API key not configured"

type Config struct {
	APIKey string
	APIURL string
}

// Contact is the seller contact block of a marketplace listing.
type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Payload is the listing body sent to the marketplace.
type Payload struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Mileage      float64  `json:"mileage"`
	Year         int      `json:"year"`
	FuelType     string   `json:"fuel_type"`
	Transmission string   `json:"transmission"`
	Images       []string `json:"images"`
	Contact      Contact  `json:"contact"`
}

// NewPayload maps a listing onto the marketplace listing body.
func NewPayload(l *domain.Listing) Payload {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return Payload{
		Title:        l.Title(),
		Description:  l.Description,
		Price:        l.Price,
		Mileage:      l.Mileage,
		Year:         l.Year,
		FuelType:     l.FuelType,
		Transmission: l.Transmission,
		Images:       images,
		Contact: Contact{
			Phone: l.ContactPhone,
			Email: l.ContactEmail,
		},
	}
}

// PlaceholderClient satisfies domain.Publisher without talking to the marketplace.
// Publish requires an API key and hands out a locally generated external id; the
// update and delete calls always succeed.
type PlaceholderClient struct {
	cfg    Config
	logger *logger.Logger
}

func NewPlaceholderClient(cfg Config, log *logger.Logger) *PlaceholderClient {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &PlaceholderClient{
		cfg:    cfg,
		logger: log.Named("MarketplaceClient"),
	}
}

func (c *PlaceholderClient) Publish(ctx context.Context, listing *domain.Listing) domain.PublishResult {
	if c.cfg.APIKey == "" {
		c.logger.Warn("Publish skipped: API key missing", zap.String("car_id", listing.ID))
		return domain.PublishResult{Status: domain.PublishFailure, ErrorMessage: errAPIKeyNotConfigured}
	}

	payload := NewPayload(listing)
	externalID := "placeholder-" + uuid.NewString()
	c.logger.Info("Listing published (placeholder)",
		zap.String("car_id", listing.ID),
		zap.String("title", payload.Title),
		zap.String("external_listing_id", externalID),
		zap.String("api_url", c.cfg.APIURL),
	)
	return domain.PublishResult{
		Status:     domain.PublishSuccess,
		ExternalID: externalID,
		Message:    "Car published to marketplace (placeholder)",
	}
}

func (c *PlaceholderClient) UpdateListing(ctx context.Context, externalID string, listing *domain.Listing) domain.PublishResult {
	c.logger.Info("Listing updated (placeholder)", zap.String("external_listing_id", externalID))
	return domain.PublishResult{
		Status:     domain.PublishSuccess,
		ExternalID: externalID,
		Message:    "Listing updated (placeholder)",
	}
}

func (c *PlaceholderClient) DeleteListing(ctx context.Context, externalID string) domain.PublishResult {
	c.logger.Info("Listing deleted (placeholder)", zap.String("external_listing_id", externalID))
	return domain.PublishResult{
		Status:     domain.PublishSuccess,
		ExternalID: externalID,
		Message:    "Listing deleted (placeholder)",
	}
}
