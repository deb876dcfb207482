package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("car-listing-service/listing-usecase")

const (
	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

const notificationTimeout = 30 * time.Second

// HealthStatus reports service liveness and store reachability.
type HealthStatus struct {
	Status    string
	Database  string
	Timestamp time.Time
}

// ListingService implements the listing operations over an injected document store.
// A nil repository makes every store-backed operation fail with ErrStoreUnavailable.
// The event publisher and mailer are optional.
type ListingService struct {
	repo      domain.ListingRepository
	publisher domain.Publisher
	events    domain.EventPublisher
	mailer    domain.Mailer
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
	now       func() time.Time

	notifications sync.WaitGroup
}

type Option func(*ListingService)

// WithClock replaces the wall clock used for timestamps and the year bound.
func WithClock(now func() time.Time) Option {
	return func(s *ListingService) { s.now = now }
}

func WithEventPublisher(events domain.EventPublisher) Option {
	return func(s *ListingService) { s.events = events }
}

func WithMailer(mailer domain.Mailer) Option {
	return func(s *ListingService) { s.mailer = mailer }
}

func WithMetrics(m *metrics.MetricsManager) Option {
	return func(s *ListingService) { s.metrics = m }
}

func NewListingService(repo domain.ListingRepository, publisher domain.Publisher, log *logger.Logger, opts ...Option) *ListingService {
	s := &ListingService{
		repo:      repo,
		publisher: publisher,
		logger:    log.Named("ListingService"),
		now:       domain.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ListingService) store() (domain.ListingRepository, error) {
	if s.repo == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return s.repo, nil
}

// ListAll returns every listing in store order.
func (s *ListingService) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingService.ListAll")
	defer span.End()

	repo, err := s.store()
	if err != nil {
		return nil, fail(span, err)
	}
	listings, err := repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list cars", zap.Error(err))
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("cars.count", len(listings)))
	return listings, nil
}

// Get returns one listing by id.
func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingService.Get", oteltrace.WithAttributes(attribute.String("car.id", id)))
	defer span.End()

	repo, err := s.store()
	if err != nil {
		return nil, fail(span, err)
	}
	listing, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	return listing, nil
}

// Create validates input and stores a new listing, returning its id.
func (s *ListingService) Create(ctx context.Context, input domain.Input) (string, error) {
	ctx, span := tracer.Start(ctx, "ListingService.Create")
	defer span.End()

	now := s.now()
	listing, typeErrs := domain.FromInput(input, now)
	if errs := domain.MergeViolations(domain.ValidateAt(input, now), typeErrs); len(errs) > 0 {
		s.logger.Info("Rejected invalid car", zap.Strings("errors", errs))
		return "", fail(span, &domain.ValidationError{Errors: errs})
	}

	repo, err := s.store()
	if err != nil {
		return "", fail(span, err)
	}

	id, err := repo.Insert(ctx, listing)
	if err != nil {
		s.logger.Error("Failed to insert car", zap.Error(err))
		return "", fail(span, err)
	}
	listing.ID = id
	span.SetAttributes(attribute.String("car.id", id))
	s.metrics.CarCreated()
	s.logger.Info("Car created", zap.String("car_id", id), zap.String("title", listing.Title()))

	s.emit(ctx, domain.SubjectCarCreated, domain.NewListingEvent(id, listing, now))
	if s.mailer != nil && listing.ContactEmail != "" {
		s.notifySeller(ctx, listing)
	}
	return id, nil
}

// notifySeller sends the listing created email detached from the request context.
func (s *ListingService) notifySeller(ctx context.Context, listing *domain.Listing) {
	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		defer cancel()
		if err := s.mailer.SendListingCreated(mailCtx, listing.ContactEmail, listing); err != nil {
			s.logger.Warn("Failed to send listing created email", zap.Error(err), zap.String("car_id", listing.ID))
		}
	}()
}

// Wait blocks until pending seller notifications have finished.
func (s *ListingService) Wait() {
	s.notifications.Wait()
}

// Update merges the supplied fields into an existing listing and bumps updated_at.
// Required-field and year-range rules are not re-checked; values that cannot be held
// by a field's type are rejected.
func (s *ListingService) Update(ctx context.Context, id string, input domain.Input) error {
	ctx, span := tracer.Start(ctx, "ListingService.Update", oteltrace.WithAttributes(attribute.String("car.id", id)))
	defer span.End()

	repo, err := s.store()
	if err != nil {
		return fail(span, err)
	}

	existing, err := repo.FindByID(ctx, id)
	if err != nil {
		return fail(span, err)
	}

	patch, errs := domain.NewPatch(input)
	if len(errs) > 0 {
		s.logger.Info("Rejected invalid car update", zap.String("car_id", id), zap.Strings("errors", errs))
		return fail(span, &domain.ValidationError{Errors: errs})
	}

	updatedAt := s.nextUpdate(existing)
	if err := repo.Update(ctx, id, patch, updatedAt); err != nil {
		s.logger.Error("Failed to update car", zap.Error(err), zap.String("car_id", id))
		return fail(span, err)
	}
	existing.Apply(patch)
	existing.UpdatedAt = updatedAt
	s.metrics.CarUpdated()
	s.logger.Info("Car updated", zap.String("car_id", id), zap.Int("fields", len(patch)))

	s.emit(ctx, domain.SubjectCarUpdated, domain.NewListingEvent(id, existing, updatedAt))
	if existing.IsPublished && existing.ExternalListingID != nil {
		res := s.publisher.UpdateListing(ctx, *existing.ExternalListingID, existing)
		if !res.OK() {
			s.logger.Warn("Marketplace listing update failed", zap.String("car_id", id), zap.String("error", res.ErrorMessage))
		}
	}
	return nil
}

// Delete removes a listing, withdrawing it from the marketplace first when published.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "ListingService.Delete", oteltrace.WithAttributes(attribute.String("car.id", id)))
	defer span.End()

	repo, err := s.store()
	if err != nil {
		return fail(span, err)
	}

	existing, err := repo.FindByID(ctx, id)
	if err != nil {
		return fail(span, err)
	}
	withdrawn := false
	if existing.IsPublished && existing.ExternalListingID != nil {
		res := s.publisher.DeleteListing(ctx, *existing.ExternalListingID)
		if res.OK() {
			withdrawn = true
		} else {
			s.logger.Warn("Marketplace listing delete failed", zap.String("car_id", id), zap.String("error", res.ErrorMessage))
		}
	}

	if err := repo.Delete(ctx, id); err != nil {
		if withdrawn {
			s.logger.Error("Car withdrawn from marketplace but still stored as published",
				zap.Error(err), zap.String("car_id", id), zap.String("external_listing_id", *existing.ExternalListingID))
		} else {
			s.logger.Error("Failed to delete car", zap.Error(err), zap.String("car_id", id))
		}
		return fail(span, err)
	}
	s.metrics.CarDeleted()
	s.logger.Info("Car deleted", zap.String("car_id", id))

	s.emit(ctx, domain.SubjectCarDeleted, domain.NewListingEvent(id, nil, s.now()))
	return nil
}

// Search returns listings matching every constraint set in criteria.
func (s *ListingService) Search(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingService.Search")
	defer span.End()

	repo, err := s.store()
	if err != nil {
		return nil, fail(span, err)
	}
	listings, err := repo.FindByFilter(ctx, criteria)
	if err != nil {
		s.logger.Error("Failed to search cars", zap.Error(err))
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("cars.count", len(listings)))
	return listings, nil
}

// Publish pushes a listing to the marketplace and records the external id.
// Publishing an already published listing returns its current external id.
func (s *ListingService) Publish(ctx context.Context, id string) (*domain.PublishResult, error) {
	ctx, span := tracer.Start(ctx, "ListingService.Publish", oteltrace.WithAttributes(attribute.String("car.id", id)))
	defer span.End()

	repo, err := s.store()
	if err != nil {
		return nil, fail(span, err)
	}

	existing, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if existing.IsPublished && existing.ExternalListingID != nil {
		return &domain.PublishResult{
			Status:     domain.PublishSuccess,
			ExternalID: *existing.ExternalListingID,
			Message:    "Car already published",
		}, nil
	}

	res := s.publisher.Publish(ctx, existing)
	if !res.OK() {
		s.logger.Warn("Marketplace publish failed", zap.String("car_id", id), zap.String("error", res.ErrorMessage))
		return nil, fail(span, &domain.ExternalPublishError{Message: res.ErrorMessage})
	}

	externalID := res.ExternalID
	updatedAt := s.nextUpdate(existing)
	if err := repo.SetPublication(ctx, id, true, &externalID, updatedAt); err != nil {
		s.logger.Error("Failed to record publication", zap.Error(err), zap.String("car_id", id))
		return nil, fail(span, err)
	}
	existing.IsPublished = true
	existing.ExternalListingID = &externalID
	s.metrics.CarPublished()
	s.logger.Info("Car published", zap.String("car_id", id), zap.String("external_listing_id", externalID))

	s.emit(ctx, domain.SubjectCarPublished, domain.NewListingEvent(id, existing, updatedAt))
	return &res, nil
}

// Unpublish withdraws a published listing from the marketplace. It is a no-op for
// listings that are not published.
func (s *ListingService) Unpublish(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "ListingService.Unpublish", oteltrace.WithAttributes(attribute.String("car.id", id)))
	defer span.End()

	repo, err := s.store()
	if err != nil {
		return fail(span, err)
	}

	existing, err := repo.FindByID(ctx, id)
	if err != nil {
		return fail(span, err)
	}
	if !existing.IsPublished {
		return nil
	}

	if existing.ExternalListingID != nil {
		res := s.publisher.DeleteListing(ctx, *existing.ExternalListingID)
		if !res.OK() {
			s.logger.Warn("Marketplace unpublish failed", zap.String("car_id", id), zap.String("error", res.ErrorMessage))
			return fail(span, &domain.ExternalPublishError{Message: res.ErrorMessage})
		}
	}

	updatedAt := s.nextUpdate(existing)
	if err := repo.SetPublication(ctx, id, false, nil, updatedAt); err != nil {
		if existing.ExternalListingID != nil {
			s.logger.Error("Car withdrawn from marketplace but still stored as published",
				zap.Error(err), zap.String("car_id", id), zap.String("external_listing_id", *existing.ExternalListingID))
		} else {
			s.logger.Error("Failed to clear publication", zap.Error(err), zap.String("car_id", id))
		}
		return fail(span, err)
	}
	s.logger.Info("Car unpublished", zap.String("car_id", id))

	s.emit(ctx, domain.SubjectCarUnpublished, domain.NewListingEvent(id, existing, updatedAt))
	return nil
}

// Health reports whether the store is configured and answers a ping.
func (s *ListingService) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "healthy", Database: DatabaseDisconnected, Timestamp: s.now()}
	if s.repo == nil {
		return status
	}
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Warn("Database ping failed", zap.Error(err))
		return status
	}
	status.Database = DatabaseConnected
	return status
}

// nextUpdate returns a timestamp strictly later than the listing's last update.
func (s *ListingService) nextUpdate(l *domain.Listing) time.Time {
	now := s.now()
	if !now.After(l.UpdatedAt) {
		now = l.UpdatedAt.Add(time.Millisecond)
	}
	return now
}

func (s *ListingService) emit(ctx context.Context, subject string, event domain.ListingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, event); err != nil {
		s.logger.Warn("Failed to publish event", zap.Error(err), zap.String("subject", subject), zap.String("car_id", event.CarID))
	}
}

func fail(span oteltrace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
