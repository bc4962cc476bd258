package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-core/location-service/internal/domain"
	"github.com/wms-core/location-service/pkg/cloudevents"
	"github.com/wms-core/location-service/pkg/errors"
	"github.com/wms-core/location-service/pkg/outbox"
	outboxmongo "github.com/wms-core/location-service/pkg/outbox/mongodb"
)

// LocationRepository implements application.LocationRepository
type LocationRepository struct {
	collection       *mongo.Collection
	outboxCollection *mongo.Collection
	eventFactory     *cloudevents.Factory
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *mongo.Database) *LocationRepository {
	collection := db.Collection("locations")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "locationId.area", Value: 1},
				{Key: "locationId.aisle", Value: 1},
				{Key: "locationId.x", Value: 1},
				{Key: "locationId.y", Value: 1},
				{Key: "locationId.z", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "groupName", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "pKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	collection.Indexes().CreateMany(ctx, indexes)

	return &LocationRepository{
		collection:       collection,
		outboxCollection: db.Collection(outboxmongo.DefaultCollectionName),
		eventFactory:     cloudevents.NewFactory(EventSource),
	}
}

// Save persists the location and its collected domain events atomically.
// Updates are guarded by the version stamp; a stale version fails the
// transaction with a ConcurrentModification error.
func (r *LocationRepository) Save(ctx context.Context, location *domain.Location) error {
	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	isNew := location.ID.IsZero()
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if isNew {
			location.ID = primitive.NewObjectID()
			if _, err := r.collection.InsertOne(sessCtx, location); err != nil {
				return nil, err
			}
		} else {
			result, err := r.collection.UpdateOne(sessCtx,
				bson.M{"pKey": location.PKey, "version": location.Version},
				bson.M{
					"$set": bson.M{
						"groupName": location.GroupName,
						"errorCode": location.ErrorCode,
						"plcState":  location.PLCState,
						"stockzone": location.Stockzone,
						"updatedAt": location.UpdatedAt,
					},
					"$inc": bson.M{"version": 1},
				},
			)
			if err != nil {
				return nil, err
			}
			if result.MatchedCount == 0 {
				return nil, errors.ErrConcurrentModification("location")
			}
		}

		subject := "location/" + location.TargetKey()
		for _, event := range location.GetDomainEvents() {
			cloudEvent := domainEventToCloudEvent(r.eventFactory, subject, event)
			outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
				location.PKey, "Location", locationEventsTopic, &cloudEvent)
			if err != nil {
				return nil, err
			}
			if _, err := r.outboxCollection.InsertOne(sessCtx, outboxEvent); err != nil {
				return nil, err
			}
		}

		return nil, nil
	})

	if err == nil {
		if !isNew {
			location.Version++
		}
		location.ClearDomainEvents()
	}
	return err
}

// FindByLocationID looks a location up by its composite natural key
func (r *LocationRepository) FindByLocationID(ctx context.Context, locationID domain.LocationPK) (*domain.Location, error) {
	var location domain.Location
	err := r.collection.FindOne(ctx, bson.M{
		"locationId.area":  locationID.Area,
		"locationId.aisle": locationID.Aisle,
		"locationId.x":     locationID.X,
		"locationId.y":     locationID.Y,
		"locationId.z":     locationID.Z,
	}).Decode(&location)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

// FindByGroupName retrieves all locations assigned to the named group
func (r *LocationRepository) FindByGroupName(ctx context.Context, groupName string) ([]*domain.Location, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"groupName": groupName})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []*domain.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// FindAll retrieves locations with pagination
func (r *LocationRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Location, error) {
	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{
			{Key: "locationId.area", Value: 1},
			{Key: "locationId.aisle", Value: 1},
			{Key: "locationId.x", Value: 1},
			{Key: "locationId.y", Value: 1},
			{Key: "locationId.z", Value: 1},
		})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []*domain.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}
