package store

import (
	"context"
	"time"

	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

// MemorySlotStore is the in-process slot for a single poll-service
// instance. It never fails.
type MemorySlotStore struct {
	slot league.MatchupSlot
}

func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{}
}

func (s *MemorySlotStore) ClaimBoundary(_ context.Context, boundary time.Time) (bool, error) {
	return s.slot.ClaimBoundary(boundary), nil
}

func (s *MemorySlotStore) Open(_ context.Context) (models.Matchup, error) {
	m, ok := s.slot.Current()
	if !ok {
		return models.Matchup{}, league.ErrNoOpenMatchup
	}
	return m, nil
}

func (s *MemorySlotStore) Offer(_ context.Context, m models.Matchup) (bool, error) {
	return s.slot.Offer(m), nil
}

func (s *MemorySlotStore) Resolve(_ context.Context, id string) (models.Matchup, error) {
	return s.slot.Resolve(id)
}
