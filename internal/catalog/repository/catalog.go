package repository

import (
	"context"
	"errors"
	"fmt"

	catalogerrors "shopbooking/internal/catalog/errors"
	"shopbooking/pkg/config"
	mongotx "shopbooking/pkg/db/mongo"
	"shopbooking/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ServicesCollection = "Services"
	PricingCollection  = "Pricing"

	// OrderStep is the gap left between the order values of consecutive items.
	OrderStep = 1000
)

// Repository stores one kind of ordered catalog item.
type Repository[T any] interface {
	List(ctx context.Context, activeOnly bool) ([]*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	MaxOrder(ctx context.Context) (int, error)
	Neighbour(ctx context.Context, order int, dir model.MoveDirection) (*T, error)
	Create(ctx context.Context, item *T) error
	Replace(ctx context.Context, id string, item *T) error
	SetOrder(ctx context.Context, id string, order int) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoRepository[T any] struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewServicesRepository(cfg *config.Config) Repository[model.ServiceItem] {
	return newMongoRepository[model.ServiceItem](cfg, ServicesCollection)
}

func NewPricingRepository(cfg *config.Config) Repository[model.PriceItem] {
	return newMongoRepository[model.PriceItem](cfg, PricingCollection)
}

func newMongoRepository[T any](cfg *config.Config, collection string) *mongoRepository[T] {
	return &mongoRepository[T]{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(collection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoRepository[T]) List(ctx context.Context, activeOnly bool) ([]*T, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.collection.Name(), err)
	}
	defer cursor.Close(ctx)

	items := []*T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.collection.Name(), err)
	}
	return items, nil
}

func (r *mongoRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var item T
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find %s item: %w", r.collection.Name(), err)
	}
	return &item, nil
}

// MaxOrder returns the highest order value, or 0 for an empty collection.
func (r *mongoRepository[T]) MaxOrder(ctx context.Context) (int, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var last struct {
		Order int `bson:"order"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "order", Value: -1}}).
		SetProjection(bson.M{"order": 1})
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&last); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read max order: %w", err)
	}
	return last.Order, nil
}

// Neighbour returns the item directly above (up) or below (down) the given order.
func (r *mongoRepository[T]) Neighbour(ctx context.Context, order int, dir model.MoveDirection) (*T, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"order": bson.M{"$gt": order}}
	sort := 1
	if dir == model.MoveUp {
		filter = bson.M{"order": bson.M{"$lt": order}}
		sort = -1
	}

	var item T
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "order", Value: sort}})).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNoNeighbour
		}
		return nil, fmt.Errorf("failed to find neighbour: %w", err)
	}
	return &item, nil
}

func (r *mongoRepository[T]) Create(ctx context.Context, item *T) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("failed to create %s item: %w", r.collection.Name(), err)
	}
	return nil
}

func (r *mongoRepository[T]) Replace(ctx context.Context, id string, item *T) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, item)
	if err != nil {
		return fmt.Errorf("failed to replace %s item: %w", r.collection.Name(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoRepository[T]) SetOrder(ctx context.Context, id string, order int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"order": order}})
	if err != nil {
		return fmt.Errorf("failed to reorder %s item: %w", r.collection.Name(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoRepository[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s item: %w", r.collection.Name(), err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoRepository[T]) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
