package league

import "github.com/raonlive/DRAFT-SERVICES/shared/models"

// Snapshot is the immutable roster copy stored with a team.
type Snapshot struct {
	Players []models.RosterEntry
	Total   int
}

// IndexPlayers maps player names to records.
func IndexPlayers(players []models.Player) map[string]models.Player {
	idx := make(map[string]models.Player, len(players))
	for _, p := range players {
		idx[p.Name] = p
	}
	return idx
}

// UniqueNames drops repeated names, keeping first-seen order.
func UniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// SelectPlayers resolves names against the live list. Unknown names are
// returned separately instead of failing the whole selection.
func SelectPlayers(names []string, players []models.Player) (selected []models.Player, missing []string) {
	idx := IndexPlayers(players)
	for _, n := range UniqueNames(names) {
		p, ok := idx[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		selected = append(selected, p)
	}
	return selected, missing
}

// BuildSnapshot copies name and coin of every selected player by value.
// Later changes to the source players are never visible through it.
func BuildSnapshot(names []string, players []models.Player) (Snapshot, []string) {
	selected, missing := SelectPlayers(names, players)
	snap := Snapshot{Players: make([]models.RosterEntry, 0, len(selected))}
	for _, p := range selected {
		snap.Players = append(snap.Players, models.RosterEntry{Name: p.Name, Coin: p.Coin})
		snap.Total += p.Coin
	}
	return snap, missing
}

// PickedNames lists the names in a snapshot.
func (s Snapshot) PickedNames() []string {
	names := make([]string, len(s.Players))
	for i, e := range s.Players {
		names[i] = e.Name
	}
	return names
}
