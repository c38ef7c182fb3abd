// draft/service/team_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raonlive/DRAFT-SERVICES/draft/store"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultCreator labels teams confirmed without a creator name.
const DefaultCreator = "익명"

// Team list sort keys.
const (
	TeamSortTime    = "time"
	TeamSortScore   = "score"
	TeamSortWinRate = "winrate"
)

// ConfirmRequest is a prospective roster.
type ConfirmRequest struct {
	TeamName string   `json:"teamName"`
	Creator  string   `json:"creator"`
	Players  []string `json:"players"`
}

// ConfirmResult is the saved team and the rating pass it triggered.
type ConfirmResult struct {
	Team   models.Team  `json:"team"`
	Rating RatingResult `json:"rating"`
}

// RosterCheck is the cap validator's answer for a prospective selection.
type RosterCheck struct {
	Total     int      `json:"total"`
	Limit     int      `json:"limit"`
	Legal     bool     `json:"legal"`
	Remaining int      `json:"remaining"`
	Unknown   []string `json:"unknown,omitempty"`
}

// TeamView is a saved team with its reconciliation against live coins.
type TeamView struct {
	models.Team
	Reconciliation league.Reconciliation `json:"reconciliation"`
	WinRate        float64               `json:"winRate"`
}

// TeamList is the team list plus the cap it was reconciled against.
type TeamList struct {
	Teams []TeamView `json:"teams"`
	Limit int        `json:"limit"`
}

// OutcomeRequest is a resolved matchup vote.
type OutcomeRequest struct {
	MatchupID string `json:"matchupId"`
	TeamAID   string `json:"teamAId"`
	TeamBID   string `json:"teamBId"`
	WinnerID  string `json:"winnerId"`
	LoserID   string `json:"loserId"`
}

// OutcomeResult echoes both teams after the increment.
type OutcomeResult struct {
	VoteID string      `json:"voteId"`
	Winner models.Team `json:"winner"`
	Loser  models.Team `json:"loser"`
}

// TeamService confirms rosters and serves team views.
type TeamService struct {
	players  *PlayerService
	rating   *RatingService
	settings *SettingsService
	teams    TeamRepository
	system   SystemRepository
	votes    VoteRepository
	now      func() time.Time

	// confirmations are numbered and applied strictly one after another
	confirmMu sync.Mutex
	outcomeMu sync.Mutex
}

func NewTeamService(
	players *PlayerService,
	rating *RatingService,
	settings *SettingsService,
	teams TeamRepository,
	system SystemRepository,
	votes VoteRepository,
) *TeamService {
	return &TeamService{
		players:  players,
		rating:   rating,
		settings: settings,
		teams:    teams,
		system:   system,
		votes:    votes,
		now:      time.Now,
	}
}

// CheckRoster prices a selection at live coins against the live cap.
func (ts *TeamService) CheckRoster(ctx context.Context, names []string) (*RosterCheck, error) {
	players, err := ts.players.LoadPlayers(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := ts.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	selected, missing := league.SelectPlayers(names, players)
	total := league.RosterTotal(selected)
	return &RosterCheck{
		Total:     total,
		Limit:     settings.Limit,
		Legal:     league.IsLegal(selected, settings.Limit),
		Remaining: settings.Limit - total,
		Unknown:   missing,
	}, nil
}

// ConfirmTeam validates the selection, stores the snapshot as a new team and
// applies the rating update for it to every player.
//
// The team is durable once this returns without error or with
// ErrPartialRatingUpdate. In the partial case the result lists the players
// whose rating write failed; they are caught up by the next Recover.
func (ts *TeamService) ConfirmTeam(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	teamName := strings.TrimSpace(req.TeamName)
	if teamName == "" {
		return nil, ErrTeamNameRequired
	}
	creator := strings.TrimSpace(req.Creator)
	if creator == "" {
		creator = DefaultCreator
	}

	ts.confirmMu.Lock()
	defer ts.confirmMu.Unlock()

	// an unseeded store would serve the seed roster and rate nobody
	if _, err := ts.players.EnsureStored(ctx); err != nil {
		return nil, err
	}

	// finish any earlier event first so this snapshot prices current coins
	if _, err := ts.rating.Recover(ctx); err != nil && !errors.Is(err, ErrPartialRatingUpdate) {
		return nil, err
	}

	players, err := ts.players.LoadPlayers(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := ts.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	snap, missing := league.BuildSnapshot(req.Players, players)
	if len(missing) > 0 {
		return nil, unknownPlayers(missing, players)
	}
	selected, _ := league.SelectPlayers(snap.PickedNames(), players)
	if err := league.ValidateSelection(selected, settings.Limit); err != nil {
		return nil, err
	}

	event, err := ts.system.NextRatingEvent(ctx)
	if err != nil {
		return nil, err
	}
	team := models.Team{
		ID:          uuid.New().String(),
		TeamName:    teamName,
		Creator:     creator,
		Players:     snap.Players,
		Total:       snap.Total,
		RatingEvent: event,
		CreatedAt:   ts.now().UTC(),
	}
	if err := ts.teams.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	log.Printf("INFO: team %s (%q, total %d) confirmed as rating event %d", team.ID, team.TeamName, team.Total, event)

	rating, err := ts.rating.Recover(ctx)
	result := &ConfirmResult{Team: team, Rating: rating}
	if err != nil {
		if errors.Is(err, ErrPartialRatingUpdate) {
			return result, err
		}
		return result, fmt.Errorf("team %s saved but rating update failed: %w", team.ID, err)
	}
	return result, nil
}

// ListTeams reconciles every team against live coins and the live cap.
// Creators are blanked unless isPrivileged.
func (ts *TeamService) ListTeams(ctx context.Context, sortBy, order string, isPrivileged bool) (*TeamList, error) {
	teams, err := ts.teams.GetAllTeams(ctx)
	if err != nil {
		return nil, err
	}
	players, err := ts.players.LoadPlayers(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := ts.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	idx := league.IndexPlayers(players)
	views := make([]TeamView, 0, len(teams))
	for _, t := range teams {
		views = append(views, buildView(t, idx, settings.Limit, isPrivileged))
	}
	sortTeamViews(views, sortBy, order == "asc")
	return &TeamList{Teams: views, Limit: settings.Limit}, nil
}

// GetTeam returns one reconciled team.
func (ts *TeamService) GetTeam(ctx context.Context, id string, isPrivileged bool) (*TeamView, error) {
	team, err := ts.teams.GetTeam(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, id)
		}
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	players, err := ts.players.LoadPlayers(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := ts.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	view := buildView(*team, league.IndexPlayers(players), settings.Limit, isPrivileged)
	return &view, nil
}

func buildView(t models.Team, idx map[string]models.Player, limit int, isPrivileged bool) TeamView {
	if !isPrivileged {
		t.Creator = ""
	}
	return TeamView{
		Team:           t,
		Reconciliation: league.ReconcileIndexed(t, idx, limit),
		WinRate:        league.WinRate(t),
	}
}

// sortTeamViews orders by creation time, saved total or win rate.
// Descending unless asc. Unknown keys keep newest first.
func sortTeamViews(views []TeamView, sortBy string, asc bool) {
	compare := func(a, b TeamView) int {
		switch sortBy {
		case TeamSortScore:
			return a.Total - b.Total
		case TeamSortWinRate:
			switch {
			case a.WinRate < b.WinRate:
				return -1
			case a.WinRate > b.WinRate:
				return 1
			}
			return 0
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	sort.SliceStable(views, func(i, j int) bool {
		c := compare(views[i], views[j])
		if asc {
			return c < 0
		}
		return c > 0
	})
}

// RecordOutcome credits winner and loser for a resolved matchup and stores
// the vote. A matchup can be recorded once. The vote is written first and
// each counter is flagged on it once incremented, so a retry after a partial
// failure finishes the missing increments instead of reporting a duplicate.
func (ts *TeamService) RecordOutcome(ctx context.Context, req OutcomeRequest) (*OutcomeResult, error) {
	if req.MatchupID == "" || req.WinnerID == "" || req.LoserID == "" {
		return nil, fmt.Errorf("%w: matchupId, winnerId and loserId are required", ErrInvalidOutcome)
	}
	if (req.TeamAID != "" || req.TeamBID != "") && !samePair(req.TeamAID, req.TeamBID, req.WinnerID, req.LoserID) {
		return nil, fmt.Errorf("%w: %s vs %s is not the matchup %s vs %s",
			ErrInvalidOutcome, req.WinnerID, req.LoserID, req.TeamAID, req.TeamBID)
	}

	winner, err := ts.lookupTeam(ctx, req.WinnerID)
	if err != nil {
		return nil, err
	}
	loser, err := ts.lookupTeam(ctx, req.LoserID)
	if err != nil {
		return nil, err
	}
	// validates the pair before anything is written
	if _, _, err := league.RecordOutcome(*winner, *loser); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutcome, err)
	}

	ts.outcomeMu.Lock()
	defer ts.outcomeMu.Unlock()

	vote := models.PollVote{
		ID:        uuid.New().String(),
		MatchupID: req.MatchupID,
		TeamAID:   req.TeamAID,
		TeamBID:   req.TeamBID,
		WinnerID:  winner.ID,
		LoserID:   loser.ID,
		CreatedAt: ts.now().UTC(),
	}
	if vote.TeamAID == "" || vote.TeamBID == "" {
		vote.TeamAID, vote.TeamBID = winner.ID, loser.ID
	}
	err = ts.votes.InsertVote(ctx, vote)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrDuplicateVote):
		stored, gerr := ts.votes.GetVote(ctx, req.MatchupID)
		if gerr != nil {
			return nil, fmt.Errorf("failed to load vote for matchup %s: %w", req.MatchupID, gerr)
		}
		if stored.Complete() {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVote, req.MatchupID)
		}
		log.Printf("WARN: vote %s for matchup %s is incomplete, finishing increments", stored.ID, req.MatchupID)
		vote = *stored
	default:
		return nil, err
	}

	w, l, err := ts.applyOutcome(ctx, vote)
	if err != nil {
		return nil, err
	}
	if vote.WinnerID != winner.ID || vote.LoserID != loser.ID {
		// the earlier outcome stands
		return nil, fmt.Errorf("%w: %s", ErrDuplicateVote, req.MatchupID)
	}
	log.Printf("INFO: matchup %s resolved, %s beat %s", req.MatchupID, winner.ID, loser.ID)
	return &OutcomeResult{VoteID: vote.ID, Winner: *w, Loser: *l}, nil
}

// applyOutcome increments whichever counters the vote has not flagged yet.
func (ts *TeamService) applyOutcome(ctx context.Context, vote models.PollVote) (*models.Team, *models.Team, error) {
	w, err := ts.applyCounter(ctx, vote, vote.WinnerID, league.FieldWins, vote.WinApplied)
	if err != nil {
		return nil, nil, err
	}
	l, err := ts.applyCounter(ctx, vote, vote.LoserID, league.FieldLosses, vote.LossApplied)
	if err != nil {
		return nil, nil, err
	}
	return w, l, nil
}

func (ts *TeamService) applyCounter(ctx context.Context, vote models.PollVote, teamID, field string, applied bool) (*models.Team, error) {
	if applied {
		return ts.lookupTeam(ctx, teamID)
	}
	team, err := ts.teams.IncrementWinLoss(ctx, teamID, field)
	if err != nil {
		return nil, fmt.Errorf("vote %s stored but %s increment for %s failed: %w", vote.ID, field, teamID, err)
	}
	if err := ts.votes.MarkApplied(ctx, vote.MatchupID, field); err != nil {
		return nil, fmt.Errorf("vote %s: %s incremented for %s but not flagged: %w", vote.ID, field, teamID, err)
	}
	return team, nil
}

// samePair reports whether {winner, loser} is exactly {a, b}.
func samePair(a, b, winner, loser string) bool {
	return (a == winner && b == loser) || (a == loser && b == winner)
}

func (ts *TeamService) lookupTeam(ctx context.Context, id string) (*models.Team, error) {
	team, err := ts.teams.GetTeam(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, id)
		}
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	return team, nil
}
