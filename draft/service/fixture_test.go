package service

import (
	"github.com/raonlive/DRAFT-SERVICES/draft/service/servicetest"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

var makePlayer = servicetest.MakePlayer

type fixture struct {
	players  *servicetest.Players
	teams    *servicetest.Teams
	system   *servicetest.System
	votes    *servicetest.Votes
	playerSv *PlayerService
	rating   *RatingService
	settings *SettingsService
	teamSv   *TeamService
}

func newFixture(limit int, table league.StepTable, players ...models.Player) *fixture {
	f := &fixture{
		players: servicetest.NewPlayers(players...),
		teams:   servicetest.NewTeams(),
		system:  servicetest.NewSystem(limit),
		votes:   servicetest.NewVotes(),
	}
	f.playerSv = NewPlayerService(f.players, f.system)
	f.rating = NewRatingService(f.players, f.teams, table)
	f.settings = NewSettingsService(f.system)
	f.teamSv = NewTeamService(f.playerSv, f.rating, f.settings, f.teams, f.system, f.votes)
	return f
}
