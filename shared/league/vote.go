package league

import (
	"errors"

	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

var ErrSameTeam = errors.New("a team cannot play itself")

// Outcome field names, matching the team document counters.
const (
	FieldWins   = "wins"
	FieldLosses = "losses"
)

// RecordOutcome credits a win to winner and a loss to loser. Nothing else
// on either team changes.
func RecordOutcome(winner, loser models.Team) (models.Team, models.Team, error) {
	if winner.ID != "" && winner.ID == loser.ID {
		return winner, loser, ErrSameTeam
	}
	winner.Wins++
	loser.Losses++
	return winner, loser, nil
}

// WinRate is wins / games played, or 0 before the first game.
func WinRate(t models.Team) float64 {
	games := t.Wins + t.Losses
	if games == 0 {
		return 0
	}
	return float64(t.Wins) / float64(games)
}
