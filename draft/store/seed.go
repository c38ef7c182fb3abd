// draft/store/seed.go
package store

import "github.com/raonlive/DRAFT-SERVICES/shared/models"

type seedEntry struct {
	name string
	coin int
	pos  []models.Position
}

const (
	pg = models.PositionPG
	sg = models.PositionSG
	sf = models.PositionSF
	pf = models.PositionPF
	c  = models.PositionC
)

// initialRoster is the league's opening roster.
var initialRoster = []seedEntry{
	{"경수", 100, []models.Position{pg, sg}},
	{"호성", 94, []models.Position{pg, sf, pf, c}},
	{"준수", 86, []models.Position{sf, pf, c}},
	{"현욱", 84, []models.Position{sf, sg}},
	{"정재", 82, []models.Position{sg}},
	{"오신", 78, []models.Position{pg}},
	{"성준", 76, []models.Position{pg, sg}},
	{"민준", 66, []models.Position{sg, sf}},
	{"유빈", 63, []models.Position{pg, sg, sf}},
	{"종훈", 59, []models.Position{pf, c}},
	{"우석", 58, []models.Position{pg}},
	{"성원", 54, []models.Position{pg, sg}},
	{"성민", 52, []models.Position{pf, c}},
	{"진국", 49, []models.Position{sg, sf, pf}},
	{"광식", 44, []models.Position{sg, sf}},
	{"유강", 45, []models.Position{pf, c}},
	{"승현", 43, []models.Position{pf, c}},
	{"태준", 42, []models.Position{pf, c}},
	{"재형", 41, []models.Position{sg, sf, pf}},
	{"민호", 36, []models.Position{sf, pf}},
	{"인테", 35, []models.Position{pf, c}},
	{"청우", 31, []models.Position{pg}},
	{"태원", 28, []models.Position{sf, pf}},
	{"강산", 27, []models.Position{pg, sg}},
	{"현우", 18, []models.Position{pf, c}},
	{"동영", 16, []models.Position{sg}},
	{"현수", 8, []models.Position{sg}},
	{"성권", 2, []models.Position{sg}},
}

// SeedRoster returns fresh copies of the opening roster stamped with
// ratingEvent: history starts at the seed coin and trend is empty.
func SeedRoster(ratingEvent int64) []models.Player {
	players := make([]models.Player, 0, len(initialRoster))
	for _, e := range initialRoster {
		players = append(players, models.Player{
			Name:        e.name,
			Coin:        e.coin,
			Pos:         append([]models.Position(nil), e.pos...),
			History:     []int{e.coin},
			Trend:       []int{},
			RatingEvent: ratingEvent,
		})
	}
	return players
}
