// draft/store/system_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raonlive/DRAFT-SERVICES/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document IDs in the system collection.
const (
	settingsDocID    = "settings"
	ratingEventDocID = "rating_event"
)

// SystemStore keeps singleton documents: the global settings and the rating
// event counter.
type SystemStore struct {
	collection   *mongo.Collection
	defaultLimit int
}

func NewSystemStore(collection *mongo.Collection, defaultLimit int) *SystemStore {
	return &SystemStore{
		collection:   collection,
		defaultLimit: defaultLimit,
	}
}

type settingsDoc struct {
	ID          string    `bson:"_id"`
	Maintenance bool      `bson:"maintenance"`
	Limit       *int      `bson:"limit,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// GetSettings returns the stored settings, or defaults if none were saved.
func (ss *SystemStore) GetSettings(ctx context.Context) (models.Settings, error) {
	var doc settingsDoc
	err := ss.collection.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Settings{Limit: ss.defaultLimit}, nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := models.Settings{Maintenance: doc.Maintenance, Limit: ss.defaultLimit}
	if doc.Limit != nil {
		settings.Limit = *doc.Limit
	}
	return settings, nil
}

// SaveSettings overwrites the settings document.
func (ss *SystemStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	limit := settings.Limit
	doc := settingsDoc{
		ID:          settingsDocID,
		Maintenance: settings.Maintenance,
		Limit:       &limit,
		UpdatedAt:   time.Now(),
	}
	_, err := ss.collection.ReplaceOne(ctx, bson.M{"_id": settingsDocID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// NextRatingEvent atomically increments and returns the rating event counter.
func (ss *SystemStore) NextRatingEvent(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc counterDoc
	err := ss.collection.FindOneAndUpdate(ctx, bson.M{"_id": ratingEventDocID}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to advance rating event counter: %w", err)
	}
	return doc.Seq, nil
}

// CurrentRatingEvent returns the last issued rating event, 0 if none.
func (ss *SystemStore) CurrentRatingEvent(ctx context.Context) (int64, error) {
	var doc counterDoc
	err := ss.collection.FindOne(ctx, bson.M{"_id": ratingEventDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rating event counter: %w", err)
	}
	return doc.Seq, nil
}
