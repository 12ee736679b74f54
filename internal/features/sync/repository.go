package sync

import (
	"context"

	"go-listings/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SyncLogRepository is append-only: results are created once and only read
// back afterwards.
type SyncLogRepository interface {
	Create(ctx context.Context, result *SyncResult) error
	GetLatest(ctx context.Context, sourceID string) (*SyncResult, error)
	List(ctx context.Context, sourceID string, limit int64) ([]SyncResult, error)
}

type SyncLogRepositoryImpl struct {
	collection *mongo.Collection
}

func NewSyncLogRepository(db *database.MongodbDB) SyncLogRepository {
	return &SyncLogRepositoryImpl{
		collection: db.DB.Collection("sync_logs"),
	}
}

func (r *SyncLogRepositoryImpl) Create(ctx context.Context, result *SyncResult) error {
	if result.ID.IsZero() {
		result.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, result)
	return err
}

func (r *SyncLogRepositoryImpl) GetLatest(ctx context.Context, sourceID string) (*SyncResult, error) {
	oid, err := primitive.ObjectIDFromHex(sourceID)
	if err != nil {
		return nil, err
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})
	var result SyncResult
	err = r.collection.FindOne(ctx, bson.M{"source_id": oid}, opts).Decode(&result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *SyncLogRepositoryImpl) List(ctx context.Context, sourceID string, limit int64) ([]SyncResult, error) {
	filter := bson.M{}
	if sourceID != "" {
		oid, err := primitive.ObjectIDFromHex(sourceID)
		if err != nil {
			return nil, err
		}
		filter["source_id"] = oid
	}

	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []SyncResult
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}
