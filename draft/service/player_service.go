// draft/service/player_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/raonlive/DRAFT-SERVICES/draft/store"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Player list sort orders.
const (
	SortCoinDesc = "coin-desc"
	SortCoinAsc  = "coin-asc"
	SortNameAsc  = "name-asc"
)

// PosAll disables the position filter.
const PosAll = "ALL"

const maxSuggestions = 3

// PlayerService owns player reads and admin edits.
type PlayerService struct {
	players PlayerRepository
	system  SystemRepository
}

func NewPlayerService(players PlayerRepository, system SystemRepository) *PlayerService {
	return &PlayerService{
		players: players,
		system:  system,
	}
}

// LoadPlayers returns every stored player. If nothing is stored yet it
// returns the seed roster without persisting it.
func (ps *PlayerService) LoadPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := ps.players.GetAllPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	if len(players) == 0 {
		log.Println("WARN: players collection is empty, serving seed roster")
		return store.SeedRoster(0), nil
	}
	return players, nil
}

// ListPlayers filters by position (PosAll or empty for all) and sorts.
func (ps *PlayerService) ListPlayers(ctx context.Context, pos, sortBy string) ([]models.Player, error) {
	var filter models.Position
	if pos != "" && pos != PosAll {
		p, err := models.ParsePosition(pos)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
		}
		filter = p
	}

	players, err := ps.LoadPlayers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Player, 0, len(players))
	for _, p := range players {
		if filter == "" || p.HasPosition(filter) {
			out = append(out, p)
		}
	}
	sortPlayers(out, sortBy)
	return out, nil
}

func sortPlayers(players []models.Player, sortBy string) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		switch sortBy {
		case SortNameAsc:
			return a.Name < b.Name
		case SortCoinAsc:
			if a.Coin != b.Coin {
				return a.Coin < b.Coin
			}
		default:
			if a.Coin != b.Coin {
				return a.Coin > b.Coin
			}
		}
		return a.Name < b.Name
	})
}

// GetPlayer returns one player or an UnknownPlayersError with suggestions.
func (ps *PlayerService) GetPlayer(ctx context.Context, name string) (*models.Player, error) {
	player, err := ps.players.GetPlayer(ctx, name)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to get player %s: %w", name, err)
	}
	all, loadErr := ps.LoadPlayers(ctx)
	if loadErr != nil {
		return nil, &UnknownPlayersError{Names: []string{name}}
	}
	// an unseeded store serves the seed roster
	if p, ok := league.IndexPlayers(all)[name]; ok {
		return &p, nil
	}
	return nil, unknownPlayers([]string{name}, all)
}

// SearchPlayers ranks player names against a free-text query. Subsequence
// matches come first; if there are none, close edit-distance matches are used.
func (ps *PlayerService) SearchPlayers(ctx context.Context, query string) ([]models.Player, error) {
	players, err := ps.LoadPlayers(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Player{}, nil
	}

	idx := league.IndexPlayers(players)
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)
	matched := make([]string, 0, len(ranks))
	for _, r := range ranks {
		matched = append(matched, names[r.OriginalIndex])
	}
	if len(matched) == 0 {
		matched = suggest(query, names)
	}

	out := make([]models.Player, 0, len(matched))
	for _, n := range matched {
		out = append(out, idx[n])
	}
	return out, nil
}

// suggest returns up to maxSuggestions names within an edit distance of
// half the query length, closest first.
func suggest(query string, names []string) []string {
	q := strings.ToLower(query)
	maxDist := len([]rune(q)) / 2
	if maxDist < 1 {
		maxDist = 1
	}

	type candidate struct {
		name string
		dist int
	}
	var cands []candidate
	for _, n := range names {
		d := fuzzy.LevenshteinDistance(q, strings.ToLower(n))
		if d <= maxDist {
			cands = append(cands, candidate{n, d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].name < cands[j].name
	})

	out := make([]string, 0, maxSuggestions)
	for _, c := range cands {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, c.name)
	}
	return out
}

func unknownPlayers(missing []string, players []models.Player) *UnknownPlayersError {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	e := &UnknownPlayersError{Names: missing, Suggestions: make(map[string][]string)}
	for _, m := range missing {
		if s := suggest(m, names); len(s) > 0 {
			e.Suggestions[m] = s
		}
	}
	return e
}

// UpdateCoin is the admin coin edit: it appends the new coin to history
// and leaves trend alone.
func (ps *PlayerService) UpdateCoin(ctx context.Context, name string, coin int, isPrivileged bool) (*models.Player, error) {
	if !isPrivileged {
		return nil, ErrForbidden
	}
	if coin < league.MinCoin || coin > league.MaxCoin {
		return nil, ErrInvalidCoin
	}

	player, err := ps.GetPlayer(ctx, name)
	if err != nil {
		return nil, err
	}

	updated := player.Clone()
	updated.Coin = coin
	updated.History = append(updated.History, coin)
	if err := ps.players.UpdateCoin(ctx, name, updated.Coin, updated.History); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
		}
		return nil, fmt.Errorf("failed to save coin for %s: %w", name, err)
	}
	log.Printf("INFO: admin set coin of %s from %d to %d", name, player.Coin, coin)
	return &updated, nil
}

// SetPositions replaces a player's position set. Duplicates are dropped and
// the result is kept in display order.
func (ps *PlayerService) SetPositions(ctx context.Context, name string, raw []string, isPrivileged bool) (*models.Player, error) {
	if !isPrivileged {
		return nil, ErrForbidden
	}
	want := make(map[models.Position]bool, len(raw))
	for _, r := range raw {
		p, err := models.ParsePosition(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
		}
		want[p] = true
	}

	player, err := ps.GetPlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	pos := make([]models.Position, 0, len(want))
	for _, p := range models.Positions {
		if want[p] {
			pos = append(pos, p)
		}
	}
	return ps.savePositions(ctx, *player, pos)
}

// TogglePosition adds pos if the player lacks it, otherwise removes it.
func (ps *PlayerService) TogglePosition(ctx context.Context, name, raw string, isPrivileged bool) (*models.Player, error) {
	if !isPrivileged {
		return nil, ErrForbidden
	}
	pos, err := models.ParsePosition(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}

	player, err := ps.GetPlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	next := make([]models.Position, 0, len(player.Pos)+1)
	for _, p := range player.Pos {
		if p != pos {
			next = append(next, p)
		}
	}
	if !player.HasPosition(pos) {
		next = append(next, pos)
	}
	return ps.savePositions(ctx, *player, next)
}

func (ps *PlayerService) savePositions(ctx context.Context, player models.Player, pos []models.Position) (*models.Player, error) {
	if err := ps.players.UpdatePositions(ctx, player.Name, pos); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, player.Name)
		}
		return nil, fmt.Errorf("failed to save positions for %s: %w", player.Name, err)
	}
	updated := player.Clone()
	updated.Pos = pos
	return &updated, nil
}

// Seed writes the opening roster, overwriting any stored player of the same
// name. Players are stamped with the current rating event so recovery does
// not replay older confirmations onto them.
func (ps *PlayerService) Seed(ctx context.Context, isPrivileged bool) (int, error) {
	if !isPrivileged {
		return 0, ErrForbidden
	}
	return ps.seed(ctx)
}

// EnsureStored persists the seed roster if no player is stored yet, so a
// rating event always lands on real documents. It reports whether it seeded.
func (ps *PlayerService) EnsureStored(ctx context.Context) (bool, error) {
	players, err := ps.players.GetAllPlayers(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load players: %w", err)
	}
	if len(players) > 0 {
		return false, nil
	}
	if _, err := ps.seed(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (ps *PlayerService) seed(ctx context.Context) (int, error) {
	event, err := ps.system.CurrentRatingEvent(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, p := range store.SeedRoster(event) {
		if err := ps.players.UpsertPlayer(ctx, p); err != nil {
			return written, fmt.Errorf("seeded %d players before failing: %w", written, err)
		}
		written++
	}
	log.Printf("INFO: seeded %d players at rating event %d", written, event)
	return written, nil
}
