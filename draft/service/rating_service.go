// draft/service/rating_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/raonlive/DRAFT-SERVICES/draft/store"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

// RatingResult reports one pass of rating writes. Failed maps player names
// to the error that stopped their write; those players stay behind and are
// picked up by the next pass.
type RatingResult struct {
	Event    int64             `json:"event"`
	Replayed int               `json:"replayed"`
	Updated  []models.Player   `json:"updated"`
	Failed   map[string]string `json:"failed,omitempty"`
}

// Partial reports whether some but not necessarily all writes failed.
func (r RatingResult) Partial() bool {
	return len(r.Failed) > 0
}

// RatingService applies confirmation events to the player population.
//
// Every team carries the rating event it triggered. A player document
// records the last event applied to it. Catching up is therefore a replay of
// every team with a newer event, in order, written back with a conditional
// update keyed on the player's previous event.
type RatingService struct {
	players PlayerRepository
	teams   TeamRepository
	table   league.StepTable

	// one pass at a time; concurrent passes would race on the same documents
	mu sync.Mutex
}

func NewRatingService(players PlayerRepository, teams TeamRepository, table league.StepTable) *RatingService {
	return &RatingService{
		players: players,
		teams:   teams,
		table:   table,
	}
}

// Table returns the step table in use.
func (rs *RatingService) Table() league.StepTable {
	return rs.table
}

// Recover brings every stored player up to the newest confirmed team. It is
// safe to call repeatedly; a fully caught-up population produces no writes.
// A partial failure returns the result together with ErrPartialRatingUpdate.
func (rs *RatingService) Recover(ctx context.Context) (RatingResult, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.recover(ctx)
}

func (rs *RatingService) recover(ctx context.Context) (RatingResult, error) {
	players, err := rs.players.GetAllPlayers(ctx)
	if err != nil {
		return RatingResult{}, fmt.Errorf("failed to load players for rating: %w", err)
	}
	if len(players) == 0 {
		return RatingResult{}, nil
	}

	oldest := players[0].RatingEvent
	for _, p := range players[1:] {
		if p.RatingEvent < oldest {
			oldest = p.RatingEvent
		}
	}

	events, err := rs.teams.GetTeamsAfterEvent(ctx, oldest)
	if err != nil {
		return RatingResult{}, fmt.Errorf("failed to load teams after event %d: %w", oldest, err)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].RatingEvent < events[j].RatingEvent })

	next, replayed := replayEvents(players, events, rs.table)
	result := RatingResult{Replayed: replayed, Updated: []models.Player{}}
	if len(events) > 0 {
		result.Event = events[len(events)-1].RatingEvent
	}

	for i, p := range next {
		from := players[i].RatingEvent
		if p.RatingEvent == from {
			continue
		}
		if err := rs.players.ApplyRatingStep(ctx, p, from); err != nil {
			if result.Failed == nil {
				result.Failed = make(map[string]string)
			}
			result.Failed[p.Name] = err.Error()
			if errors.Is(err, store.ErrStaleRatingEvent) {
				log.Printf("WARN: rating write for %s skipped, document moved past event %d", p.Name, from)
			} else {
				log.Printf("ERROR: rating write for %s failed: %v", p.Name, err)
			}
			continue
		}
		result.Updated = append(result.Updated, p)
	}

	if result.Partial() {
		return result, fmt.Errorf("%w: %d of %d writes failed", ErrPartialRatingUpdate, len(result.Failed), len(result.Failed)+len(result.Updated))
	}
	if replayed > 0 {
		log.Printf("INFO: applied %d rating event(s) through event %d to %d players", replayed, result.Event, len(result.Updated))
	}
	return result, nil
}

// replayEvents applies each team's event, in order, to the players that have
// not seen it yet. Every player behind an event is stepped, picked or not.
// It returns the new records (same order as players) and the number of
// events that touched at least one player.
func replayEvents(players []models.Player, events []models.Team, table league.StepTable) ([]models.Player, int) {
	next := make([]models.Player, len(players))
	for i, p := range players {
		next[i] = p.Clone()
	}

	replayed := 0
	for _, team := range events {
		var behind []int
		for i, p := range next {
			if p.RatingEvent < team.RatingEvent {
				behind = append(behind, i)
			}
		}
		if len(behind) == 0 {
			continue
		}

		batch := make([]models.Player, len(behind))
		for k, i := range behind {
			batch[k] = next[i]
		}
		stepped := league.ApplyRatingUpdate(batch, league.Snapshot{Players: team.Players}.PickedNames(), table)
		for k, i := range behind {
			stepped[k].RatingEvent = team.RatingEvent
			next[i] = stepped[k]
		}
		replayed++
	}
	return next, replayed
}
