// shared/models/team.go
package models

import "time"

// RosterEntry is a point-in-time copy of a player's name and coin.
type RosterEntry struct {
	Name string `bson:"name" json:"name"`
	Coin int    `bson:"coin" json:"coin"`
}

// Team is a confirmed roster. Players and Total are captured once at
// confirmation and never recomputed; only Wins and Losses change afterwards.
type Team struct {
	ID          string        `bson:"_id" json:"id"`
	TeamName    string        `bson:"team_name" json:"teamName"`
	Creator     string        `bson:"creator" json:"creator,omitempty"`
	Players     []RosterEntry `bson:"players" json:"players"`
	Total       int           `bson:"total" json:"total"`
	Wins        int           `bson:"wins" json:"wins"`
	Losses      int           `bson:"losses" json:"losses"`
	RatingEvent int64         `bson:"rating_event" json:"ratingEvent"`
	CreatedAt   time.Time     `bson:"created_at" json:"createdAt"`
}

// HasPlayer reports whether name appears in the roster snapshot.
func (t Team) HasPlayer(name string) bool {
	for _, e := range t.Players {
		if e.Name == name {
			return true
		}
	}
	return false
}

// PollVote records one resolved matchup vote.
type PollVote struct {
	ID        string    `bson:"_id" json:"id"`
	MatchupID string    `bson:"matchup_id" json:"matchupId"`
	TeamAID   string    `bson:"team_a_id" json:"teamAId"`
	TeamBID   string    `bson:"team_b_id" json:"teamBId"`
	WinnerID  string    `bson:"winner_id" json:"winnerId"`
	LoserID   string    `bson:"loser_id" json:"loserId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`

	// set once the matching team counter has been incremented
	WinApplied  bool `bson:"win_applied" json:"winApplied"`
	LossApplied bool `bson:"loss_applied" json:"lossApplied"`
}

// Complete reports whether both team counters reflect this vote.
func (v PollVote) Complete() bool {
	return v.WinApplied && v.LossApplied
}
