package repository

import (
	"context"
	"errors"
	"fmt"

	settingserrors "shopbooking/internal/settings/errors"
	"shopbooking/pkg/config"
	mongotx "shopbooking/pkg/db/mongo"
	"shopbooking/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Settings"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*model.ShopSettings, error)
	Save(ctx context.Context, settings *model.ShopSettings) error
}

type mongoSettingsRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSettingsRepository(cfg *config.Config) SettingsRepository {
	return &mongoSettingsRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoSettingsRepository) Get(ctx context.Context) (*model.ShopSettings, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var settings model.ShopSettings
	err := r.collection.FindOne(ctx, bson.M{"_id": model.DefaultSettingsID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, settingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find settings: %w", err)
	}
	return &settings, nil
}

// Save replaces the single settings document, creating it on first save.
func (r *mongoSettingsRepository) Save(ctx context.Context, settings *model.ShopSettings) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	settings.ID = model.DefaultSettingsID
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": settings.ID}, settings, opts); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
