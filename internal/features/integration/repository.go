package integration

import (
	"context"
	"time"

	"go-listings/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IntegrationRepository interface {
	Create(ctx context.Context, cfg *Integration) error
	Get(ctx context.Context, id string) (*Integration, error)
	List(ctx context.Context) ([]Integration, error)
	ListActive(ctx context.Context) ([]Integration, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type IntegrationRepositoryImpl struct {
	collection *mongo.Collection
}

func NewIntegrationRepository(db *database.MongodbDB) IntegrationRepository {
	return &IntegrationRepositoryImpl{
		collection: db.DB.Collection("integrations"),
	}
}

func (r *IntegrationRepositoryImpl) Create(ctx context.Context, cfg *Integration) error {
	if cfg.ID.IsZero() {
		cfg.ID = primitive.NewObjectID()
	}
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, cfg)
	return err
}

func (r *IntegrationRepositoryImpl) Get(ctx context.Context, id string) (*Integration, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var cfg Integration
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (r *IntegrationRepositoryImpl) List(ctx context.Context) ([]Integration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var configs []Integration
	if err = cursor.All(ctx, &configs); err != nil {
		return nil, err
	}

	return configs, nil
}

func (r *IntegrationRepositoryImpl) ListActive(ctx context.Context) ([]Integration, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var configs []Integration
	if err = cursor.All(ctx, &configs); err != nil {
		return nil, err
	}

	return configs, nil
}

func (r *IntegrationRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	updates["updated_at"] = time.Now()
	_, err = r.collection.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": updates},
	)
	return err
}

func (r *IntegrationRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
