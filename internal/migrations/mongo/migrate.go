package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "shopbooking/internal/bookings/repository"
	catalogrepo "shopbooking/internal/catalog/repository"
	"shopbooking/internal/migrations/mongo/validators"
	settingsrepo "shopbooking/internal/settings/repository"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"
)

var (
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "date", Value: 1},
		}},
		{Keys: bson.D{{Key: "slot_id", Value: 1}}},
	}

	// Slot ids carry the date, so the primary key covers per-day lookups.
	SlotsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{
			Keys:    bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	CatalogIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "order", Value: 1}}},
		{Keys: bson.D{
			{Key: "active", Value: 1},
			{Key: "order", Value: 1},
		}},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]collectionDef {
	return map[string]collectionDef{
		bookingsrepo.CollectionName: {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		bookingsrepo.SlotCollectionName: {
			Indexes:   SlotsIndexes,
			Validator: validators.SlotValidator,
		},
		settingsrepo.CollectionName: {
			Validator: validators.SettingsValidator,
		},
		catalogrepo.ServicesCollection: {
			Indexes:   CatalogIndexes,
			Validator: validators.ServiceValidator,
		},
		catalogrepo.PricingCollection: {
			Indexes:   CatalogIndexes,
			Validator: validators.PricingValidator,
		},
	}
}

// RunMigration creates or updates every collection with its schema validator and
// indexes, then seeds the default shop settings when none exist.
func RunMigration(ctx context.Context, db *mongo.Database, defaults *model.ShopSettings, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	if err := seedSettings(ctx, db, defaults, log); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}

func seedSettings(ctx context.Context, db *mongo.Database, defaults *model.ShopSettings, log *logger.Logger) error {
	doc, err := settingsSeed(defaults, time.Now().UTC())
	if err != nil {
		return err
	}

	res, err := db.Collection(settingsrepo.CollectionName).UpdateOne(ctx,
		bson.M{"_id": model.DefaultSettingsID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if res.UpsertedCount > 0 {
		log.Info("Seeded default shop settings", "timezone", defaults.TimeZone)
	}
	return nil
}

func settingsSeed(defaults *model.ShopSettings, now time.Time) (bson.M, error) {
	seed := *defaults
	seed.UpdatedAt = now

	raw, err := bson.Marshal(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode default settings: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode default settings: %w", err)
	}
	delete(doc, "_id")
	return doc, nil
}
