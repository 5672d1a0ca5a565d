package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mariapr27/my-store-app/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{
		collection: db.Collection("carts"),
	}
}

func (m *mongoStore) Get(ctx context.Context, identity string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"identity": identity}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *mongoStore) Put(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()

	if cart.Version == 0 {
		// First write: insert. The unique index on identity turns a
		// concurrent first write into a duplicate key error.
		cart.Version = 1
		cart.CreatedAt = now
		cart.UpdatedAt = now

		_, err := m.collection.InsertOne(ctx, cart)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				cart.Version = 0
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to insert cart: %w", err)
		}
		return nil
	}

	// Conditional replace: only lands if the stored version still matches
	// the version this cart was read at.
	filter := bson.M{"identity": cart.Identity, "version": cart.Version}
	update := bson.M{"$set": bson.M{
		"items":      cart.Items,
		"updated_at": now,
	}, "$inc": bson.M{"version": 1}}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}

	cart.Version++
	cart.UpdatedAt = now
	return nil
}

func (m *mongoStore) Delete(ctx context.Context, identity string) error {
	filter := bson.M{"identity": identity}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoStore) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "identity", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
