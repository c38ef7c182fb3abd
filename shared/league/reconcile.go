package league

import "github.com/raonlive/DRAFT-SERVICES/shared/models"

// EntryDiff compares one snapshot entry against the live player.
type EntryDiff struct {
	Name         string `json:"name"`
	SnapshotCoin int    `json:"snapshotCoin"`
	LiveCoin     int    `json:"liveCoin"`
	Delta        int    `json:"delta"`
	Changed      bool   `json:"changed"`
	Missing      bool   `json:"missing,omitempty"` // no live player; snapshot coin used
}

// Reconciliation is a saved roster re-priced at current coins.
type Reconciliation struct {
	SnapshotTotal int         `json:"snapshotTotal"`
	LiveTotal     int         `json:"liveTotal"`
	Limit         int         `json:"limit"`
	Impossible    bool        `json:"impossible"`
	Entries       []EntryDiff `json:"entries"`
}

// LiveTotal sums each roster entry at the player's current coin, falling
// back to the snapshot coin for players that no longer exist.
func LiveTotal(team models.Team, players []models.Player) int {
	return liveTotal(team, IndexPlayers(players))
}

func liveTotal(team models.Team, idx map[string]models.Player) int {
	total := 0
	for _, e := range team.Players {
		if p, ok := idx[e.Name]; ok {
			total += p.Coin
			continue
		}
		total += e.Coin
	}
	return total
}

// IsImpossible reports whether the roster would exceed the current cap
// at current coins.
func IsImpossible(team models.Team, players []models.Player, limit int) bool {
	return LiveTotal(team, players) > limit
}

// Reconcile computes the live total, the legality flag and per-entry diffs.
func Reconcile(team models.Team, players []models.Player, limit int) Reconciliation {
	return ReconcileIndexed(team, IndexPlayers(players), limit)
}

// ReconcileIndexed is Reconcile for callers that reconcile many teams
// against one player index.
func ReconcileIndexed(team models.Team, idx map[string]models.Player, limit int) Reconciliation {
	r := Reconciliation{
		SnapshotTotal: team.Total,
		Limit:         limit,
		Entries:       make([]EntryDiff, 0, len(team.Players)),
	}
	for _, e := range team.Players {
		d := EntryDiff{Name: e.Name, SnapshotCoin: e.Coin, LiveCoin: e.Coin}
		if p, ok := idx[e.Name]; ok {
			d.LiveCoin = p.Coin
			d.Delta = p.Coin - e.Coin
			d.Changed = d.Delta != 0
		} else {
			d.Missing = true
		}
		r.Entries = append(r.Entries, d)
	}
	r.LiveTotal = liveTotal(team, idx)
	r.Impossible = r.LiveTotal > limit
	return r
}
