package league

import (
	"errors"
	"sync"
	"time"

	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

var (
	ErrNoOpenMatchup   = errors.New("no matchup is awaiting a vote")
	ErrMatchupMismatch = errors.New("vote does not match the open matchup")
)

// SlotState is the state of the single matchup slot.
type SlotState int

const (
	SlotIdle SlotState = iota
	SlotAwaitingVote
)

func (s SlotState) String() string {
	if s == SlotAwaitingVote {
		return "awaiting-vote"
	}
	return "idle"
}

// MatchupSlot holds at most one open matchup and remembers the last timer
// boundary that was claimed.
//
//	idle --Offer--> awaiting-vote --Resolve--> idle
type MatchupSlot struct {
	mu           sync.Mutex
	open         *models.Matchup
	lastBoundary time.Time
}

// State returns the current slot state.
func (s *MatchupSlot) State() SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open != nil {
		return SlotAwaitingVote
	}
	return SlotIdle
}

// ClaimBoundary succeeds once per boundary. Boundaries at or before the
// last claimed one are refused.
func (s *MatchupSlot) ClaimBoundary(boundary time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !boundary.After(s.lastBoundary) {
		return false
	}
	s.lastBoundary = boundary
	return true
}

// Offer opens m if the slot is idle.
func (s *MatchupSlot) Offer(m models.Matchup) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open != nil {
		return false
	}
	s.open = &m
	return true
}

// Current returns the open matchup, if any.
func (s *MatchupSlot) Current() (models.Matchup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil {
		return models.Matchup{}, false
	}
	return *s.open, true
}

// Resolve closes the open matchup with the given id and returns it.
func (s *MatchupSlot) Resolve(id string) (models.Matchup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil {
		return models.Matchup{}, ErrNoOpenMatchup
	}
	if s.open.ID != id {
		return models.Matchup{}, ErrMatchupMismatch
	}
	m := *s.open
	s.open = nil
	return m, nil
}
