// Package servicetest provides in-memory repositories with the same
// semantics as the MongoDB stores, for tests.
package servicetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/raonlive/DRAFT-SERVICES/draft/store"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrInjected is returned by writes armed with FailNextRatingWrite or
// FailNextIncrement.
var ErrInjected = errors.New("injected write failure")

// Players mirrors store.PlayerStore in memory.
type Players struct {
	mu      sync.Mutex
	players map[string]models.Player

	// names whose next rating write fails once
	failOnce map[string]bool
}

func NewPlayers(players ...models.Player) *Players {
	m := &Players{players: make(map[string]models.Player), failOnce: make(map[string]bool)}
	for _, p := range players {
		p.Normalize()
		m.players[p.Name] = p.Clone()
	}
	return m
}

func (m *Players) GetAllPlayers(ctx context.Context) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Players) GetPlayer(ctx context.Context, name string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[name]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	c := p.Clone()
	return &c, nil
}

func (m *Players) UpsertPlayer(ctx context.Context, player models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[player.Name] = player.Clone()
	return nil
}

func (m *Players) UpdateCoin(ctx context.Context, name string, coin int, history []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[name]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Coin = coin
	p.History = append([]int(nil), history...)
	m.players[name] = p
	return nil
}

func (m *Players) UpdatePositions(ctx context.Context, name string, pos []models.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[name]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Pos = append([]models.Position(nil), pos...)
	m.players[name] = p
	return nil
}

func (m *Players) ApplyRatingStep(ctx context.Context, player models.Player, fromEvent int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOnce[player.Name] {
		delete(m.failOnce, player.Name)
		return ErrInjected
	}
	p, ok := m.players[player.Name]
	if !ok || p.RatingEvent != fromEvent {
		return fmt.Errorf("%w: %s", store.ErrStaleRatingEvent, player.Name)
	}
	p.Coin = player.Coin
	p.History = append([]int(nil), player.History...)
	p.Trend = append([]int(nil), player.Trend...)
	p.RatingEvent = player.RatingEvent
	m.players[player.Name] = p
	return nil
}

// Get returns a copy of the stored player, or the zero Player.
func (m *Players) Get(name string) models.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[name].Clone()
}

// FailNextRatingWrite makes the next ApplyRatingStep for name fail once.
func (m *Players) FailNextRatingWrite(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOnce[name] = true
}

// Teams mirrors store.TeamStore in memory.
type Teams struct {
	mu    sync.Mutex
	teams map[string]models.Team

	// when set, CreateTeam fails
	CreateErr error

	// "id/field" keys whose next increment fails once
	failOnce map[string]bool
}

func NewTeams(teams ...models.Team) *Teams {
	m := &Teams{teams: make(map[string]models.Team), failOnce: make(map[string]bool)}
	for _, t := range teams {
		m.teams[t.ID] = t
	}
	return m
}

func (m *Teams) CreateTeam(ctx context.Context, team models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.teams[team.ID]; ok {
		return fmt.Errorf("team %s already exists", team.ID)
	}
	m.teams[team.ID] = team
	return nil
}

func (m *Teams) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &t, nil
}

func (m *Teams) GetAllTeams(ctx context.Context) ([]models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Team, 0, len(m.teams))
	for _, t := range m.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Teams) GetTeamsAfterEvent(ctx context.Context, event int64) ([]models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Team
	for _, t := range m.teams {
		if t.RatingEvent > event {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RatingEvent < out[j].RatingEvent })
	return out, nil
}

func (m *Teams) IncrementWinLoss(ctx context.Context, id, field string) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if key := id + "/" + field; m.failOnce[key] {
		delete(m.failOnce, key)
		return nil, ErrInjected
	}
	switch field {
	case league.FieldWins:
		t.Wins++
	case league.FieldLosses:
		t.Losses++
	default:
		return nil, fmt.Errorf("invalid win/loss field %q", field)
	}
	m.teams[id] = t
	return &t, nil
}

// FailNextIncrement makes the next IncrementWinLoss of field on id fail once.
func (m *Teams) FailNextIncrement(id, field string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOnce[id+"/"+field] = true
}

// Count returns the number of stored teams.
func (m *Teams) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.teams)
}

// PutTeam stores t as is, bypassing CreateTeam checks.
func (m *Teams) PutTeam(t models.Team) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[t.ID] = t
}

// System mirrors store.SystemStore in memory.
type System struct {
	mu       sync.Mutex
	settings models.Settings
	seq      int64
}

func NewSystem(limit int) *System {
	return &System{settings: models.Settings{Limit: limit}}
}

func (m *System) GetSettings(ctx context.Context) (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

func (m *System) SaveSettings(ctx context.Context, settings models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	return nil
}

func (m *System) NextRatingEvent(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq, nil
}

func (m *System) CurrentRatingEvent(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq, nil
}

// SetRatingEvent sets the rating event counter.
func (m *System) SetRatingEvent(seq int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq = seq
}

// Votes mirrors store.VoteStore in memory.
type Votes struct {
	mu    sync.Mutex
	votes map[string]models.PollVote
}

func NewVotes() *Votes {
	return &Votes{votes: make(map[string]models.PollVote)}
}

func (m *Votes) InsertVote(ctx context.Context, vote models.PollVote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.votes[vote.MatchupID]; ok {
		return fmt.Errorf("%w: %s", store.ErrDuplicateVote, vote.MatchupID)
	}
	m.votes[vote.MatchupID] = vote
	return nil
}

func (m *Votes) GetVote(ctx context.Context, matchupID string) (*models.PollVote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[matchupID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &v, nil
}

func (m *Votes) MarkApplied(ctx context.Context, matchupID, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[matchupID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	switch field {
	case league.FieldWins:
		v.WinApplied = true
	case league.FieldLosses:
		v.LossApplied = true
	default:
		return fmt.Errorf("invalid win/loss field %q", field)
	}
	m.votes[matchupID] = v
	return nil
}

// Vote returns the vote recorded for matchupID.
func (m *Votes) Vote(matchupID string) (models.PollVote, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[matchupID]
	return v, ok
}

// Count returns the number of recorded votes.
func (m *Votes) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.votes)
}

// MakePlayer builds a player with history [coin] and an empty trend.
func MakePlayer(name string, coin int, pos ...models.Position) models.Player {
	return models.Player{
		Name:    name,
		Coin:    coin,
		Pos:     pos,
		History: []int{coin},
		Trend:   []int{},
	}
}
