package league

import (
	"math/rand/v2"

	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

// EligibleTeams keeps teams whose saved total is at or under threshold.
func EligibleTeams(teams []models.Team, threshold int) []models.Team {
	out := make([]models.Team, 0, len(teams))
	for _, t := range teams {
		if t.Total <= threshold {
			out = append(out, t)
		}
	}
	return out
}

// SampleMatchup draws two distinct eligible teams uniformly at random.
// It reports false when fewer than two teams are eligible. The returned
// matchup has no ID or timestamps; the caller assigns those when opening it.
func SampleMatchup(teams []models.Team, threshold int, rng *rand.Rand) (models.Matchup, bool) {
	eligible := EligibleTeams(teams, threshold)
	n := len(eligible)
	if n < 2 {
		return models.Matchup{}, false
	}

	i := rng.IntN(n)
	j := rng.IntN(n - 1)
	if j >= i {
		j++
	}
	return models.Matchup{TeamA: eligible[i], TeamB: eligible[j]}, true
}
