package league

import "github.com/raonlive/DRAFT-SERVICES/shared/models"

func makePlayer(name string, coin int) models.Player {
	return models.Player{
		Name:    name,
		Coin:    coin,
		Pos:     []models.Position{models.PositionSG},
		History: []int{coin},
		Trend:   []int{},
	}
}

func makeTeam(id string, entries ...models.RosterEntry) models.Team {
	t := models.Team{ID: id, TeamName: "team-" + id, Players: entries}
	for _, e := range entries {
		t.Total += e.Coin
	}
	return t
}

func entry(name string, coin int) models.RosterEntry {
	return models.RosterEntry{Name: name, Coin: coin}
}
