// poll/store/matchup_store.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
	redisu "github.com/raonlive/DRAFT-SERVICES/shared/redis"
	"github.com/redis/go-redis/v9"
)

// RedisSlotStore keeps the single open matchup in Redis so every poll-service
// instance sees the same slot.
type RedisSlotStore struct {
	client      redis.UniversalClient
	boundaryTTL time.Duration
}

// NewRedisSlotStore returns a slot store. boundaryTTL bounds how long a
// claimed boundary marker lives; two matchup intervals is plenty.
func NewRedisSlotStore(client redis.UniversalClient, boundaryTTL time.Duration) *RedisSlotStore {
	return &RedisSlotStore{
		client:      client,
		boundaryTTL: boundaryTTL,
	}
}

func boundaryKey(boundary time.Time) string {
	return fmt.Sprintf(redisu.MatchupBoundaryKeyPrefix, boundary.Unix())
}

// ClaimBoundary marks boundary as handled. Only the first caller per
// boundary gets true.
func (s *RedisSlotStore) ClaimBoundary(ctx context.Context, boundary time.Time) (bool, error) {
	ok, err := s.client.SetNX(ctx, boundaryKey(boundary), time.Now().Unix(), s.boundaryTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim matchup boundary %s: %w", boundary.Format(time.RFC3339), err)
	}
	return ok, nil
}

// Open returns the matchup awaiting a vote, or league.ErrNoOpenMatchup.
func (s *RedisSlotStore) Open(ctx context.Context) (models.Matchup, error) {
	raw, err := s.client.Get(ctx, redisu.OpenMatchupKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Matchup{}, league.ErrNoOpenMatchup
	}
	if err != nil {
		return models.Matchup{}, fmt.Errorf("failed to read open matchup: %w", err)
	}
	return decodeMatchup(raw)
}

// Offer opens m if no matchup is open.
func (s *RedisSlotStore) Offer(ctx context.Context, m models.Matchup) (bool, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return false, fmt.Errorf("failed to encode matchup %s: %w", m.ID, err)
	}
	ok, err := s.client.SetNX(ctx, redisu.OpenMatchupKey, raw, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to open matchup %s: %w", m.ID, err)
	}
	return ok, nil
}

// Resolve closes the open matchup if its id matches. A concurrent resolve
// makes the loser see league.ErrNoOpenMatchup.
func (s *RedisSlotStore) Resolve(ctx context.Context, id string) (models.Matchup, error) {
	var resolved models.Matchup
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, redisu.OpenMatchupKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return league.ErrNoOpenMatchup
		}
		if err != nil {
			return err
		}
		m, err := decodeMatchup(raw)
		if err != nil {
			return err
		}
		if m.ID != id {
			return league.ErrMatchupMismatch
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, redisu.OpenMatchupKey)
			return nil
		})
		if err != nil {
			return err
		}
		resolved = m
		return nil
	}, redisu.OpenMatchupKey)

	switch {
	case err == nil:
		return resolved, nil
	case errors.Is(err, redis.TxFailedErr):
		log.Printf("WARN: matchup %s was resolved concurrently", id)
		return models.Matchup{}, league.ErrNoOpenMatchup
	case errors.Is(err, league.ErrNoOpenMatchup), errors.Is(err, league.ErrMatchupMismatch):
		return models.Matchup{}, err
	}
	return models.Matchup{}, fmt.Errorf("failed to resolve matchup %s: %w", id, err)
}

func decodeMatchup(raw []byte) (models.Matchup, error) {
	var m models.Matchup
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.Matchup{}, fmt.Errorf("failed to decode open matchup: %w", err)
	}
	return m, nil
}
