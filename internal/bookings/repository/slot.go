package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	bookingserrors "shopbooking/internal/bookings/errors"
	"shopbooking/pkg/config"
	mongotx "shopbooking/pkg/db/mongo"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"
	"shopbooking/pkg/slots"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SlotCollectionName = "Slots"
)

// SlotRepository stores the per-(date, time) exclusivity locks. The slot
// token is the document ID, so a second lock for the same pair is rejected
// by the primary key.
type SlotRepository interface {
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	Create(ctx context.Context, slot *model.Slot) error
	Delete(ctx context.Context, id string) error
	FindTaken(ctx context.Context, date string) ([]string, error)
	WatchTaken(ctx context.Context, date string) (<-chan model.TakenSnapshot, error)
}

type mongoSlotRepository struct {
	cfg        *config.Config
	log        *logger.Logger
	collection *mongo.Collection
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		log:        cfg.Log.Component("slot_repository"),
		collection: db.Collection(SlotCollectionName),
	}
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var slot model.Slot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}
	return &slot, nil
}

// Create returns ErrSlotTaken when a lock for the same token already exists.
func (r *mongoSlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if _, err := r.collection.InsertOne(ctx, slot); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrSlotTaken, slot.ID)
		}
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

func (r *mongoSlotRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrSlotNotFound
	}
	return nil
}

// FindTaken returns the sorted clock times locked on date.
func (r *mongoSlotRepository) FindTaken(ctx context.Context, date string) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"time": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"date": date, "booked": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find taken slots: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Time string `bson:"time"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode taken slots: %w", err)
	}

	times := make([]string, 0, len(docs))
	for _, d := range docs {
		times = append(times, d.Time)
	}
	sort.Strings(times)
	return times, nil
}

// WatchTaken delivers the taken set for date, first as an initial snapshot and
// then once after every change to a slot of that date. The channel is closed
// when ctx is cancelled or the change stream fails.
func (r *mongoSlotRepository) WatchTaken(ctx context.Context, date string) (<-chan model.TakenSnapshot, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "documentKey._id", Value: bson.D{
				{Key: "$regex", Value: "^" + regexp.QuoteMeta(slots.IDPrefix(date))},
			}},
		}}},
	}

	stream, err := r.collection.Watch(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to open slot change stream: %w", err)
	}

	out := make(chan model.TakenSnapshot, 1)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		if !r.emit(ctx, out, date) {
			return
		}
		for stream.Next(ctx) {
			if !r.emit(ctx, out, date) {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			r.log.Warn("Slot change stream ended", "date", date, "error", err)
		}
	}()

	return out, nil
}

func (r *mongoSlotRepository) emit(ctx context.Context, out chan<- model.TakenSnapshot, date string) bool {
	readAt := time.Now().UTC()
	times, err := r.FindTaken(ctx, date)
	if err != nil {
		if ctx.Err() == nil {
			r.log.Warn("Failed to read taken slots", "date", date, "error", err)
		}
		return false
	}

	select {
	case out <- model.TakenSnapshot{Date: date, Times: times, ReadAt: readAt}:
		return true
	case <-ctx.Done():
		return false
	}
}
