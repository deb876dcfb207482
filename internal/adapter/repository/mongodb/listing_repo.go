package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
	zap "go.uber.org/zap"
)

const listingCollectionName = "cars"

// ListingRepository implements domain.ListingRepository on top of MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewListingRepository binds the cars collection and ensures its search indexes.
// Index creation failures are logged; the repository is usable without them.
func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "brand", Value: 1}, {Key: "model", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "year", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for cars collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for cars collection")
	}

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
	}
}

// FindAll returns every stored listing in natural order.
func (r *ListingRepository) FindAll(ctx context.Context) ([]*domain.Listing, error) {
	r.logger.Debug("Listing all cars from DB")
	return r.find(ctx, bson.M{})
}

// FindByID returns the listing with the given hex id.
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := parseID(id)
	if err != nil {
		r.logger.Warn("Invalid car ID", zap.String("car_id", id))
		return nil, err
	}

	var doc listingDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Warn("Car not found in DB", zap.String("car_id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get car by ID from DB", zap.Error(err), zap.String("car_id", id))
		return nil, storeError("findone", err)
	}
	return toDomainListing(&doc), nil
}

// FindByFilter returns listings matching every criterion that is set.
func (r *ListingRepository) FindByFilter(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Listing, error) {
	filter := buildSearchFilter(criteria)
	r.logger.Debug("Searching cars in DB", zap.Any("filter", filter))
	return r.find(ctx, filter)
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M) ([]*domain.Listing, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to query cars from DB", zap.Error(err))
		return nil, storeError("find", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode cars from DB cursor", zap.Error(err))
		return nil, storeError("cursor decode", err)
	}
	return toDomainListings(docs), nil
}

// Insert stores a new listing and returns its generated id. The listing's ID field
// is set on success.
func (r *ListingRepository) Insert(ctx context.Context, listing *domain.Listing) (string, error) {
	r.logger.Info("Creating car in DB", zap.String("brand", listing.Brand), zap.String("model", listing.Model))

	doc, err := toListingDocument(listing)
	if err != nil {
		r.logger.Error("Failed to convert listing to document for Insert", zap.Error(err))
		return "", err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert car into DB", zap.Error(err))
		return "", storeError("insert", err)
	}

	listing.ID = doc.ID.Hex()
	r.logger.Info("Car created successfully in DB", zap.String("car_id", listing.ID))
	return listing.ID, nil
}

// Update sets the patched fields and updated_at on the listing with the given id.
func (r *ListingRepository) Update(ctx context.Context, id string, patch domain.Patch, updatedAt time.Time) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	set := bson.M{}
	for key, value := range patch {
		set[key] = value
	}
	set["updated_at"] = updatedAt

	return r.updateOne(ctx, oid, bson.M{"$set": set})
}

// SetPublication records the marketplace publication state of a listing.
func (r *ListingRepository) SetPublication(ctx context.Context, id string, published bool, externalID *string, updatedAt time.Time) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"is_published":        published,
		"external_listing_id": externalID,
		"updated_at":          updatedAt,
	}}
	return r.updateOne(ctx, oid, update)
}

func (r *ListingRepository) updateOne(ctx context.Context, oid primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		r.logger.Error("Failed to update car in DB", zap.Error(err), zap.String("car_id", oid.Hex()))
		return storeError("update", err)
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("Car not found for update in DB", zap.String("car_id", oid.Hex()))
		return domain.ErrNotFound
	}
	r.logger.Info("Car updated successfully in DB", zap.String("car_id", oid.Hex()))
	return nil
}

// Delete removes the listing with the given id.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete car from DB", zap.Error(err), zap.String("car_id", id))
		return storeError("delete", err)
	}
	if result.DeletedCount == 0 {
		r.logger.Warn("Car not found for delete in DB", zap.String("car_id", id))
		return domain.ErrNotFound
	}
	r.logger.Info("Car deleted successfully from DB", zap.String("car_id", id))
	return nil
}

// Ping checks that the primary is reachable.
func (r *ListingRepository) Ping(ctx context.Context) error {
	if err := r.collection.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return storeError("ping", err)
	}
	return nil
}

// storeError wraps a driver error. Connectivity failures (no selectable server,
// network errors, timeouts) also match domain.ErrStoreUnavailable.
func storeError(op string, err error) error {
	if unreachable(err) {
		return fmt.Errorf("db %s failed: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("db %s failed: %w", op, err)
}

func unreachable(err error) bool {
	var selectionErr topology.ServerSelectionError
	return errors.As(err, &selectionErr) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err)
}

// buildSearchFilter translates search criteria into a query document. Brand and model
// match as case-insensitive substrings with regex metacharacters escaped.
func buildSearchFilter(c domain.SearchCriteria) bson.M {
	filter := bson.M{}
	if c.Brand != "" {
		filter["brand"] = primitive.Regex{Pattern: regexp.QuoteMeta(c.Brand), Options: "i"}
	}
	if c.Model != "" {
		filter["model"] = primitive.Regex{Pattern: regexp.QuoteMeta(c.Model), Options: "i"}
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		price := bson.M{}
		if c.MinPrice != nil {
			price["$gte"] = *c.MinPrice
		}
		if c.MaxPrice != nil {
			price["$lte"] = *c.MaxPrice
		}
		filter["price"] = price
	}
	if c.Year != nil {
		filter["year"] = *c.Year
	}
	return filter
}
