package league

import (
	"fmt"

	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

const (
	MinCoin = 0
	MaxCoin = 100
)

// Step maps an inclusive range of recent picks to a coin delta.
type Step struct {
	MinPicks int
	MaxPicks int
	Delta    int
}

// StepTable is the "invisible hand": a trend window of the last Window
// confirmation events and the delta to apply for each pick count.
// Pick counts not covered by any step get a delta of 0.
type StepTable struct {
	Window int
	Steps  []Step
}

// ShortWindow looks at the last 3 events.
var ShortWindow = StepTable{
	Window: 3,
	Steps: []Step{
		{MinPicks: 0, MaxPicks: 0, Delta: -1},
		{MinPicks: 2, MaxPicks: 2, Delta: 1},
		{MinPicks: 3, MaxPicks: 3, Delta: 2},
	},
}

// LongWindow looks at the last 6 events.
var LongWindow = StepTable{
	Window: 6,
	Steps: []Step{
		{MinPicks: 0, MaxPicks: 0, Delta: -1},
		{MinPicks: 4, MaxPicks: 4, Delta: 1},
		{MinPicks: 5, MaxPicks: 6, Delta: 2},
	},
}

// TableForWindow returns the preset table for a window size.
func TableForWindow(window int) (StepTable, error) {
	switch window {
	case ShortWindow.Window:
		return ShortWindow, nil
	case LongWindow.Window:
		return LongWindow, nil
	}
	return StepTable{}, fmt.Errorf("no rating table for window %d (want %d or %d)", window, ShortWindow.Window, LongWindow.Window)
}

// Delta returns the coin change for a pick count.
func (t StepTable) Delta(picks int) int {
	for _, s := range t.Steps {
		if picks >= s.MinPicks && picks <= s.MaxPicks {
			return s.Delta
		}
	}
	return 0
}

// ClampCoin bounds a coin value to [MinCoin, MaxCoin].
func ClampCoin(c int) int {
	if c < MinCoin {
		return MinCoin
	}
	if c > MaxCoin {
		return MaxCoin
	}
	return c
}

// Step applies one confirmation event to one player and returns the new
// record. The input is not modified.
func (t StepTable) Step(p models.Player, picked bool) models.Player {
	next := p.Clone()

	flag := 0
	if picked {
		flag = 1
	}
	trend := append(next.Trend, flag)
	if over := len(trend) - t.Window; over > 0 {
		trend = trend[over:]
	}
	next.Trend = append([]int(nil), trend...)

	picks := 0
	for _, v := range next.Trend {
		picks += v
	}

	next.Coin = ClampCoin(p.Coin + t.Delta(picks))
	if len(next.History) == 0 {
		next.History = []int{p.Coin}
	}
	next.History = append(next.History, next.Coin)
	return next
}

// ApplyRatingUpdate runs one confirmation event over every player, picked
// or not, so unpicked players keep decaying.
func ApplyRatingUpdate(players []models.Player, pickedNames []string, table StepTable) []models.Player {
	picked := make(map[string]struct{}, len(pickedNames))
	for _, n := range pickedNames {
		picked[n] = struct{}{}
	}

	updated := make([]models.Player, len(players))
	for i, p := range players {
		_, ok := picked[p.Name]
		updated[i] = table.Step(p, ok)
	}
	return updated
}
