// shared/models/player.go
package models

import (
	"fmt"
	"time"
)

// Position is a basketball position tag. A player may hold several.
type Position string

const (
	PositionPG Position = "PG"
	PositionSG Position = "SG"
	PositionSF Position = "SF"
	PositionPF Position = "PF"
	PositionC  Position = "C"
)

// Positions lists every valid position in display order.
var Positions = []Position{PositionPG, PositionSG, PositionSF, PositionPF, PositionC}

// ParsePosition validates a raw position tag.
func ParsePosition(raw string) (Position, error) {
	for _, p := range Positions {
		if string(p) == raw {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown position %q", raw)
}

// Player represents a draftable player stored persistently in MongoDB.
// The name is the primary key; there is no separate id.
type Player struct {
	Name        string     `bson:"_id" json:"name"`
	Coin        int        `bson:"coin" json:"coin"`
	Pos         []Position `bson:"pos" json:"pos"`
	History     []int      `bson:"history" json:"history"`
	Trend       []int      `bson:"trend" json:"trend"`
	RatingEvent int64      `bson:"rating_event" json:"ratingEvent"` // last confirmation event applied
	UpdatedAt   *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// Normalize fills the fields older documents may lack: an empty history
// starts at the current coin and a nil trend becomes empty.
func (p *Player) Normalize() {
	if len(p.History) == 0 {
		p.History = []int{p.Coin}
	}
	if p.Trend == nil {
		p.Trend = []int{}
	}
	if p.Pos == nil {
		p.Pos = []Position{}
	}
}

// HasPosition reports whether the player holds pos.
func (p Player) HasPosition(pos Position) bool {
	for _, x := range p.Pos {
		if x == pos {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate slices freely.
func (p Player) Clone() Player {
	c := p
	c.Pos = append([]Position(nil), p.Pos...)
	c.History = append([]int(nil), p.History...)
	c.Trend = append([]int(nil), p.Trend...)
	return c
}
