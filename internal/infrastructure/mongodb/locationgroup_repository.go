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

// LocationGroupRepository implements application.LocationGroupRepository
type LocationGroupRepository struct {
	collection       *mongo.Collection
	outboxCollection *mongo.Collection
	eventFactory     *cloudevents.Factory
}

// NewLocationGroupRepository creates a new location group repository
func NewLocationGroupRepository(db *mongo.Database) *LocationGroupRepository {
	collection := db.Collection("location_groups")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "parentName", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "pKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	collection.Indexes().CreateMany(ctx, indexes)

	return &LocationGroupRepository{
		collection:       collection,
		outboxCollection: db.Collection(outboxmongo.DefaultCollectionName),
		eventFactory:     cloudevents.NewFactory(EventSource),
	}
}

// Save persists a single group and its collected domain events atomically
func (r *LocationGroupRepository) Save(ctx context.Context, group *domain.LocationGroup) error {
	return r.SaveAll(ctx, []*domain.LocationGroup{group})
}

// SaveAll persists every group in one transaction. Updates are guarded by
// the version stamp; a stale version on any group aborts the whole batch
// with a ConcurrentModification error, so a cascade never commits partially.
func (r *LocationGroupRepository) SaveAll(ctx context.Context, groups []*domain.LocationGroup) error {
	if len(groups) == 0 {
		return nil
	}

	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	isNew := make([]bool, len(groups))
	for i, group := range groups {
		isNew[i] = group.ID.IsZero()
	}

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		for i, group := range groups {
			if err := r.writeGroup(sessCtx, group, isNew[i]); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	if err == nil {
		for i, group := range groups {
			if !isNew[i] {
				group.Version++
			}
			group.ClearDomainEvents()
		}
	}
	return err
}

func (r *LocationGroupRepository) writeGroup(sessCtx mongo.SessionContext, group *domain.LocationGroup, isNew bool) error {
	if isNew {
		if group.ID.IsZero() {
			group.ID = primitive.NewObjectID()
		}
		if _, err := r.collection.InsertOne(sessCtx, group); err != nil {
			return err
		}
	} else {
		result, err := r.collection.UpdateOne(sessCtx,
			bson.M{"name": group.Name, "version": group.Version},
			bson.M{
				"$set": bson.M{
					"parentName":    group.ParentName,
					"childNames":    group.ChildNames,
					"groupStateIn":  group.GroupStateIn,
					"groupStateOut": group.GroupStateOut,
					"operationMode": group.OperationMode,
					"groupType":     group.GroupType,
					"updatedAt":     group.UpdatedAt,
				},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return errors.ErrConcurrentModification("location group").WithDetail("name", group.Name)
		}
	}

	subject := "location-group/" + group.Name
	for _, event := range group.GetDomainEvents() {
		cloudEvent := domainEventToCloudEvent(r.eventFactory, subject, event)
		outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
			group.PKey, "LocationGroup", locationEventsTopic, &cloudEvent)
		if err != nil {
			return err
		}
		if _, err := r.outboxCollection.InsertOne(sessCtx, outboxEvent); err != nil {
			return err
		}
	}

	return nil
}

// FindByName looks a group up by its unique name
func (r *LocationGroupRepository) FindByName(ctx context.Context, name string) (*domain.LocationGroup, error) {
	var group domain.LocationGroup
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// FindAll retrieves groups with pagination
func (r *LocationGroupRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.LocationGroup, error) {
	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []*domain.LocationGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
