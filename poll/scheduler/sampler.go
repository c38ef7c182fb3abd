package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/raonlive/DRAFT-SERVICES/shared/cluster"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

// MatchupSampler opens a matchup when one is due.
type MatchupSampler interface {
	SampleIfDue(ctx context.Context) (*models.Matchup, error)
}

// Ownership decides whether this instance runs a keyed task.
type Ownership interface {
	IsResponsible(key string) (bool, error)
}

// Sampler runs the matchup check on a fixed interval. Only the instance
// that owns cluster.SamplerTaskKey samples.
type Sampler struct {
	s             gocron.Scheduler
	sampler       MatchupSampler
	owner         Ownership
	checkInterval time.Duration
	timeout       time.Duration
}

func NewSampler(sampler MatchupSampler, owner Ownership, checkInterval, timeout time.Duration) (*Sampler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Sampler{
		s:             s,
		sampler:       sampler,
		owner:         owner,
		checkInterval: checkInterval,
		timeout:       timeout,
	}, nil
}

func (s *Sampler) Start() error {
	_, err := s.s.NewJob(
		gocron.DurationJob(s.checkInterval),
		gocron.NewTask(s.check),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create matchup check job: %w", err)
	}

	s.s.Start()
	slog.Info("Matchup sampler started", "checkInterval", s.checkInterval)
	return nil
}

func (s *Sampler) Stop() error {
	return s.s.Shutdown()
}

func (s *Sampler) check() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.run(ctx)
}

// run reports whether a matchup was opened.
func (s *Sampler) run(ctx context.Context) bool {
	owns, err := s.owner.IsResponsible(cluster.SamplerTaskKey)
	if err != nil {
		slog.Error("Failed to resolve sampler owner", "error", err)
		return false
	}
	if !owns {
		return false
	}

	m, err := s.sampler.SampleIfDue(ctx)
	if err != nil {
		slog.Error("Failed to sample matchup", "error", err)
		return false
	}
	if m == nil {
		return false
	}
	slog.Info("Matchup opened", "id", m.ID, "teamA", m.TeamA.ID, "teamB", m.TeamB.ID)
	return true
}
