// draft/store/vote_store.go
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

// VoteStore records resolved matchup votes.
type VoteStore struct {
	collection *mongo.Collection
}

func NewVoteStore(collection *mongo.Collection) *VoteStore {
	return &VoteStore{collection: collection}
}

// Indexes makes matchup_id unique so a matchup is counted at most once.
func (vs *VoteStore) Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "matchup_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
}

// ErrDuplicateVote is returned when a vote for the matchup already exists.
var ErrDuplicateVote = fmt.Errorf("vote already recorded for matchup")

func (vs *VoteStore) InsertVote(ctx context.Context, vote models.PollVote) error {
	if _, err := vs.collection.InsertOne(ctx, vote); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateVote, vote.MatchupID)
		}
		return fmt.Errorf("failed to insert vote for matchup %s: %w", vote.MatchupID, err)
	}
	return nil
}

// GetVote returns the vote recorded for matchupID, or mongo.ErrNoDocuments.
func (vs *VoteStore) GetVote(ctx context.Context, matchupID string) (*models.PollVote, error) {
	var vote models.PollVote
	if err := vs.collection.FindOne(ctx, bson.M{"matchup_id": matchupID}).Decode(&vote); err != nil {
		return nil, err
	}
	return &vote, nil
}

// MarkApplied flags that the wins or losses increment for the vote is done.
func (vs *VoteStore) MarkApplied(ctx context.Context, matchupID, field string) error {
	flag, err := AppliedFlag(field)
	if err != nil {
		return err
	}
	res, err := vs.collection.UpdateOne(ctx, bson.M{"matchup_id": matchupID}, bson.M{"$set": bson.M{flag: true}})
	if err != nil {
		return fmt.Errorf("failed to mark %s applied for matchup %s: %w", field, matchupID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AppliedFlag maps a team counter field to its flag on the vote document.
func AppliedFlag(field string) (string, error) {
	switch field {
	case league.FieldWins:
		return "win_applied", nil
	case league.FieldLosses:
		return "loss_applied", nil
	}
	return "", fmt.Errorf("invalid win/loss field %q", field)
}
