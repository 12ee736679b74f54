package property

import (
	"context"
	"time"

	"go-listings/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PropertyRepository interface {
	EnsureIndexes(ctx context.Context) error
	BulkUpsert(ctx context.Context, props []Property) error
	Get(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, sourceID string, limit int64) ([]Property, error)
	ListRetirable(ctx context.Context, sourceID primitive.ObjectID, cutoff time.Time) ([]Property, error)
	ListUnseenActive(ctx context.Context, sourceID primitive.ObjectID, seenExternalIDs []string) ([]Property, error)
	MarkRetired(ctx context.Context, ids []primitive.ObjectID, reason string) (int64, error)
	HardDelete(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type PropertyRepositoryImpl struct {
	collection *mongo.Collection
}

func NewPropertyRepository(db *database.MongodbDB) PropertyRepository {
	return &PropertyRepositoryImpl{
		collection: db.DB.Collection("properties"),
	}
}

// EnsureIndexes creates the unique natural-key index. The upsert relies on
// this constraint for idempotence; no client-side locking is done.
func (r *PropertyRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "external_id", Value: 1},
			{Key: "source_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// BulkUpsert writes one chunk of canonical records, inserting absent rows
// and updating existing ones in place, keyed on (external_id, source_id).
func (r *PropertyRepositoryImpl) BulkUpsert(ctx context.Context, props []Property) error {
	if len(props) == 0 {
		return nil
	}

	var modelsList []mongo.WriteModel
	for _, p := range props {
		update := bson.M{"$set": bson.M{
			"city":              p.City,
			"neighborhood":      p.Neighborhood,
			"price":             p.Price,
			"property_type":     p.PropertyType,
			"deal_type":         p.DealType,
			"sector":            p.Sector,
			"description":       p.Description,
			"area":              p.Area,
			"contact":           p.Contact,
			"images":            p.Images,
			"characteristics":   p.Characteristics,
			"broker_code":       p.BrokerCode,
			"address":           p.Address,
			"synced_at":         p.SyncedAt,
			"active":            p.Active,
			"retired_at":        nil,
			"retirement_reason": "",
		}}

		upsert := mongo.NewUpdateOneModel().
			SetFilter(bson.M{"external_id": p.ExternalID, "source_id": p.SourceID}).
			SetUpdate(update).
			SetUpsert(true)
		modelsList = append(modelsList, upsert)
	}

	_, err := r.collection.BulkWrite(ctx, modelsList)
	return err
}

func (r *PropertyRepositoryImpl) Get(ctx context.Context, id string) (*Property, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var p Property
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *PropertyRepositoryImpl) List(ctx context.Context, sourceID string, limit int64) ([]Property, error) {
	filter := bson.M{}
	if sourceID != "" {
		oid, err := primitive.ObjectIDFromHex(sourceID)
		if err != nil {
			return nil, err
		}
		filter["source_id"] = oid
	}

	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "synced_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var props []Property
	if err = cursor.All(ctx, &props); err != nil {
		return nil, err
	}

	return props, nil
}

// ListRetirable returns active rows of a source whose last sync is older
// than the cutoff.
func (r *PropertyRepositoryImpl) ListRetirable(ctx context.Context, sourceID primitive.ObjectID, cutoff time.Time) ([]Property, error) {
	filter := bson.M{
		"source_id": sourceID,
		"active":    true,
		"synced_at": bson.M{"$lt": cutoff},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var props []Property
	if err = cursor.All(ctx, &props); err != nil {
		return nil, err
	}

	return props, nil
}

// ListUnseenActive returns active rows of a source whose external id is not
// in the seen set of the current run.
func (r *PropertyRepositoryImpl) ListUnseenActive(ctx context.Context, sourceID primitive.ObjectID, seenExternalIDs []string) ([]Property, error) {
	if seenExternalIDs == nil {
		seenExternalIDs = []string{}
	}
	filter := bson.M{
		"source_id":   sourceID,
		"active":      true,
		"external_id": bson.M{"$nin": seenExternalIDs},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var props []Property
	if err = cursor.All(ctx, &props); err != nil {
		return nil, err
	}

	return props, nil
}

func (r *PropertyRepositoryImpl) MarkRetired(ctx context.Context, ids []primitive.ObjectID, reason string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := r.collection.UpdateMany(
		ctx,
		bson.M{"_id": bson.M{"$in": ids}, "active": true},
		bson.M{"$set": bson.M{
			"active":            false,
			"retired_at":        time.Now().UTC(),
			"retirement_reason": reason,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *PropertyRepositoryImpl) HardDelete(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
