// draft/store/player_store.go
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

// ErrStaleRatingEvent means the player document moved past the rating event
// the write was computed from, so the write was skipped.
var ErrStaleRatingEvent = errors.New("player rating event changed since read")

// PlayerStore is the MongoDB store for player records. Player names are the
// document IDs.
type PlayerStore struct {
	collection *mongo.Collection
}

func NewPlayerStore(collection *mongo.Collection) *PlayerStore {
	return &PlayerStore{
		collection: collection,
	}
}

// Indexes returns the secondary indexes the players collection needs.
func (ps *PlayerStore) Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "rating_event", Value: 1}}},
		{Keys: bson.D{{Key: "coin", Value: -1}}},
	}
}

// GetAllPlayers returns every player, normalized. An empty collection yields
// an empty slice, not an error.
func (ps *PlayerStore) GetAllPlayers(ctx context.Context) ([]models.Player, error) {
	cursor, err := ps.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer cursor.Close(ctx)

	players := []models.Player{}
	if err := cursor.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}
	for i := range players {
		players[i].Normalize()
	}
	return players, nil
}

// GetPlayer returns mongo.ErrNoDocuments if name does not exist.
func (ps *PlayerStore) GetPlayer(ctx context.Context, name string) (*models.Player, error) {
	var player models.Player
	if err := ps.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&player); err != nil {
		return nil, err
	}
	player.Normalize()
	return &player, nil
}

// UpsertPlayer replaces the whole player document, creating it if missing.
func (ps *PlayerStore) UpsertPlayer(ctx context.Context, player models.Player) error {
	now := time.Now()
	player.UpdatedAt = &now
	_, err := ps.collection.ReplaceOne(ctx, bson.M{"_id": player.Name}, player, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", player.Name, err)
	}
	return nil
}

// UpdateCoin sets coin and the full history. Trend is not touched.
func (ps *PlayerStore) UpdateCoin(ctx context.Context, name string, coin int, history []int) error {
	update := bson.M{"$set": bson.M{
		"coin":       coin,
		"history":    history,
		"updated_at": time.Now(),
	}}
	return ps.updateOne(ctx, name, update, "coin")
}

// UpdatePositions replaces the position set.
func (ps *PlayerStore) UpdatePositions(ctx context.Context, name string, pos []models.Position) error {
	update := bson.M{"$set": bson.M{
		"pos":        pos,
		"updated_at": time.Now(),
	}}
	return ps.updateOne(ctx, name, update, "positions")
}

func (ps *PlayerStore) updateOne(ctx context.Context, name string, update bson.M, what string) error {
	res, err := ps.collection.UpdateOne(ctx, bson.M{"_id": name}, update)
	if err != nil {
		return fmt.Errorf("failed to update %s for player %s: %w", what, name, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyRatingStep writes the rated state of player only if the stored
// document is still at fromEvent. The written document carries
// player.RatingEvent, so replaying the same step matches nothing.
func (ps *PlayerStore) ApplyRatingStep(ctx context.Context, player models.Player, fromEvent int64) error {
	filter := bson.M{"_id": player.Name, "rating_event": fromEvent}
	if fromEvent == 0 {
		// documents written before event tracking have no rating_event field
		filter["rating_event"] = bson.M{"$in": bson.A{int64(0), nil}}
	}
	update := bson.M{"$set": bson.M{
		"coin":         player.Coin,
		"history":      player.History,
		"trend":        player.Trend,
		"rating_event": player.RatingEvent,
		"updated_at":   time.Now(),
	}}

	res, err := ps.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to write rating for player %s: %w", player.Name, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s (expected event %d)", ErrStaleRatingEvent, player.Name, fromEvent)
	}
	return nil
}
