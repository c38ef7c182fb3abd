// draft/store/team_store.go
package store

import (
	"context"
	"fmt"

	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TeamStore is the MongoDB store for confirmed teams.
type TeamStore struct {
	collection *mongo.Collection
}

func NewTeamStore(collection *mongo.Collection) *TeamStore {
	return &TeamStore{
		collection: collection,
	}
}

func (ts *TeamStore) Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "rating_event", Value: 1}}},
	}
}

// CreateTeam inserts a new team. ID and CreatedAt must already be set.
func (ts *TeamStore) CreateTeam(ctx context.Context, team models.Team) error {
	if _, err := ts.collection.InsertOne(ctx, team); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("team %s already exists: %w", team.ID, err)
		}
		return fmt.Errorf("failed to create team %s: %w", team.ID, err)
	}
	return nil
}

// GetTeam returns mongo.ErrNoDocuments if id does not exist.
func (ts *TeamStore) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	if err := ts.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&team); err != nil {
		return nil, err
	}
	return &team, nil
}

// GetAllTeams returns every team, newest first.
func (ts *TeamStore) GetAllTeams(ctx context.Context) ([]models.Team, error) {
	return ts.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

// GetTeamsAfterEvent returns teams whose rating event is greater than
// event, in event order.
func (ts *TeamStore) GetTeamsAfterEvent(ctx context.Context, event int64) ([]models.Team, error) {
	filter := bson.M{"rating_event": bson.M{"$gt": event}}
	return ts.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "rating_event", Value: 1}}))
}

func (ts *TeamStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Team, error) {
	cursor, err := ts.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer cursor.Close(ctx)

	teams := []models.Team{}
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}
	return teams, nil
}

// IncrementWinLoss atomically adds one to wins or losses and returns the
// updated team. field must be league.FieldWins or league.FieldLosses.
func (ts *TeamStore) IncrementWinLoss(ctx context.Context, id, field string) (*models.Team, error) {
	if field != league.FieldWins && field != league.FieldLosses {
		return nil, fmt.Errorf("invalid win/loss field %q", field)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var team models.Team
	err := ts.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{field: 1}}, opts).Decode(&team)
	if err != nil {
		return nil, err
	}
	return &team, nil
}
