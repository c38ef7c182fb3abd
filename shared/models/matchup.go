// shared/models/matchup.go
package models

import "time"

// Matchup is a randomly sampled pair of teams awaiting a popularity vote.
type Matchup struct {
	ID       string    `json:"id"`
	TeamA    Team      `json:"teamA"`
	TeamB    Team      `json:"teamB"`
	Boundary time.Time `json:"boundary"` // timer boundary that produced it
	OpenedAt time.Time `json:"openedAt"`
}
