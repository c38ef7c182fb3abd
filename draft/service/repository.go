package service

import (
	"context"

	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

// PlayerRepository is implemented by store.PlayerStore. Lookups by name
// return mongo.ErrNoDocuments when the player does not exist.
type PlayerRepository interface {
	GetAllPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayer(ctx context.Context, name string) (*models.Player, error)
	UpsertPlayer(ctx context.Context, player models.Player) error
	UpdateCoin(ctx context.Context, name string, coin int, history []int) error
	UpdatePositions(ctx context.Context, name string, pos []models.Position) error
	ApplyRatingStep(ctx context.Context, player models.Player, fromEvent int64) error
}

// TeamRepository is implemented by store.TeamStore.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team models.Team) error
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	GetAllTeams(ctx context.Context) ([]models.Team, error)
	GetTeamsAfterEvent(ctx context.Context, event int64) ([]models.Team, error)
	IncrementWinLoss(ctx context.Context, id, field string) (*models.Team, error)
}

// SystemRepository is implemented by store.SystemStore.
type SystemRepository interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error
	NextRatingEvent(ctx context.Context) (int64, error)
	CurrentRatingEvent(ctx context.Context) (int64, error)
}

// VoteRepository is implemented by store.VoteStore.
type VoteRepository interface {
	InsertVote(ctx context.Context, vote models.PollVote) error
	GetVote(ctx context.Context, matchupID string) (*models.PollVote, error)
	MarkApplied(ctx context.Context, matchupID, field string) error
}
