// poll/service/poll_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raonlive/DRAFT-SERVICES/shared/api"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
	draftclient "github.com/raonlive/DRAFT-SERVICES/shared/service"
)

var (
	ErrInvalidChoice = errors.New(`choice must be "A" or "B"`)
	ErrAlreadyVoted  = errors.New("matchup already voted")
	ErrDraftService  = errors.New("draft-service unavailable")
)

// Choices accepted by Vote.
const (
	ChoiceA = "A"
	ChoiceB = "B"
)

// DraftClient is the part of draft-service the poll needs.
type DraftClient interface {
	ListTeams(ctx context.Context) (*draftclient.TeamListResponse, error)
	GetTeam(ctx context.Context, teamID string) (*draftclient.TeamView, error)
	RecordOutcome(ctx context.Context, req draftclient.RecordOutcomeRequest) (*draftclient.RecordOutcomeResponse, error)
}

// SlotStore holds the single open matchup. Open returns
// league.ErrNoOpenMatchup when idle.
type SlotStore interface {
	ClaimBoundary(ctx context.Context, boundary time.Time) (bool, error)
	Open(ctx context.Context) (models.Matchup, error)
	Offer(ctx context.Context, m models.Matchup) (bool, error)
	Resolve(ctx context.Context, id string) (models.Matchup, error)
}

// Announcer publishes a freshly opened matchup.
type Announcer interface {
	Announce(ctx context.Context, m models.Matchup) error
}

// MatchupView is the open matchup with both rosters re-priced at live coins.
type MatchupView struct {
	models.Matchup
	LiveTotalA int  `json:"liveTotalA"`
	LiveTotalB int  `json:"liveTotalB"`
	Stale      bool `json:"stale,omitempty"` // live totals unavailable, saved totals shown
}

// VoteResult is the resolved matchup and both teams after the increment.
type VoteResult struct {
	MatchupID string      `json:"matchupId"`
	VoteID    string      `json:"voteId"`
	Winner    models.Team `json:"winner"`
	Loser     models.Team `json:"loser"`
}

// PollService samples matchups on timer boundaries and resolves votes.
type PollService struct {
	draft     DraftClient
	slot      SlotStore
	announcer Announcer
	threshold int
	interval  time.Duration
	now       func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewPollService(draft DraftClient, slot SlotStore, threshold int, interval time.Duration, rng *rand.Rand) *PollService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	return &PollService{
		draft:     draft,
		slot:      slot,
		threshold: threshold,
		interval:  interval,
		now:       time.Now,
		rng:       rng,
	}
}

// SetAnnouncer attaches an announcer. Announcing is best effort.
func (ps *PollService) SetAnnouncer(a Announcer) {
	ps.announcer = a
}

// SampleIfDue opens a new matchup when the current timer boundary has not
// been handled and no matchup is awaiting a vote. It returns nil when it
// skips.
func (ps *PollService) SampleIfDue(ctx context.Context) (*models.Matchup, error) {
	now := ps.now().UTC()
	boundary := now.Truncate(ps.interval)

	_, err := ps.slot.Open(ctx)
	switch {
	case err == nil:
		return nil, nil
	case !errors.Is(err, league.ErrNoOpenMatchup):
		return nil, err
	}

	claimed, err := ps.slot.ClaimBoundary(ctx, boundary)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}

	list, err := ps.draft.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDraftService, err)
	}
	teams := make([]models.Team, len(list.Teams))
	for i, v := range list.Teams {
		teams[i] = v.Team
	}

	ps.rngMu.Lock()
	m, ok := league.SampleMatchup(teams, ps.threshold, ps.rng)
	ps.rngMu.Unlock()
	if !ok {
		log.Printf("INFO: boundary %s: fewer than two teams at or under %d, no matchup", boundary.Format(time.RFC3339), ps.threshold)
		return nil, nil
	}
	m.ID = uuid.New().String()
	m.Boundary = boundary
	m.OpenedAt = now

	offered, err := ps.slot.Offer(ctx, m)
	if err != nil {
		return nil, err
	}
	if !offered {
		return nil, nil
	}
	log.Printf("INFO: matchup %s opened: %s vs %s", m.ID, m.TeamA.TeamName, m.TeamB.TeamName)

	if ps.announcer != nil {
		if err := ps.announcer.Announce(ctx, m); err != nil {
			log.Printf("WARN: failed to announce matchup %s: %v", m.ID, err)
		}
	}
	return &m, nil
}

// CurrentMatchup returns the open matchup with live totals, or
// league.ErrNoOpenMatchup.
func (ps *PollService) CurrentMatchup(ctx context.Context) (*MatchupView, error) {
	m, err := ps.slot.Open(ctx)
	if err != nil {
		return nil, err
	}

	view := &MatchupView{
		Matchup:    m,
		LiveTotalA: m.TeamA.Total,
		LiveTotalB: m.TeamB.Total,
	}
	a, errA := ps.draft.GetTeam(ctx, m.TeamA.ID)
	b, errB := ps.draft.GetTeam(ctx, m.TeamB.ID)
	if errA != nil || errB != nil {
		log.Printf("WARN: live totals for matchup %s unavailable: %v", m.ID, errors.Join(errA, errB))
		view.Stale = true
		return view, nil
	}
	view.LiveTotalA = a.Reconciliation.LiveTotal
	view.LiveTotalB = b.Reconciliation.LiveTotal
	return view, nil
}

// Vote resolves the open matchup. The outcome is recorded in draft-service
// before the slot is released, so a failed call leaves the matchup open for
// a retry. draft-service rejects a second outcome for the same matchup.
func (ps *PollService) Vote(ctx context.Context, matchupID, choice string) (*VoteResult, error) {
	m, err := ps.slot.Open(ctx)
	if err != nil {
		return nil, err
	}
	if m.ID != matchupID {
		return nil, league.ErrMatchupMismatch
	}

	var winner, loser models.Team
	switch choice {
	case ChoiceA:
		winner, loser = m.TeamA, m.TeamB
	case ChoiceB:
		winner, loser = m.TeamB, m.TeamA
	default:
		return nil, ErrInvalidChoice
	}

	resp, err := ps.draft.RecordOutcome(ctx, draftclient.RecordOutcomeRequest{
		MatchupID: m.ID,
		TeamAID:   m.TeamA.ID,
		TeamBID:   m.TeamB.ID,
		WinnerID:  winner.ID,
		LoserID:   loser.ID,
	})
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			// recorded by an earlier attempt; make sure the slot is released
			ps.release(ctx, m.ID)
			return nil, fmt.Errorf("%w: %s", ErrAlreadyVoted, m.ID)
		}
		if errors.Is(err, draftclient.ErrTeamNotFound) {
			// a team vanished; the matchup can never be recorded
			ps.release(ctx, m.ID)
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDraftService, err)
	}

	ps.release(ctx, m.ID)
	log.Printf("INFO: matchup %s voted %s, %s beat %s", m.ID, choice, winner.ID, loser.ID)
	return &VoteResult{
		MatchupID: m.ID,
		VoteID:    resp.VoteID,
		Winner:    resp.Winner,
		Loser:     resp.Loser,
	}, nil
}

func (ps *PollService) release(ctx context.Context, id string) {
	if _, err := ps.slot.Resolve(ctx, id); err != nil && !errors.Is(err, league.ErrNoOpenMatchup) {
		log.Printf("WARN: failed to release matchup %s: %v", id, err)
	}
}
