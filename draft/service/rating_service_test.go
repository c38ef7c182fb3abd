package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

func confirm(t *testing.T, f *fixture, names ...string) (*ConfirmResult, error) {
	t.Helper()
	return f.teamSv.ConfirmTeam(context.Background(), ConfirmRequest{TeamName: "t", Players: names})
}

func TestConfirmTeam_RatesEveryPlayer(t *testing.T) {
	f := newFixture(100, league.ShortWindow,
		makePlayer("A", 50), makePlayer("B", 30), makePlayer("C", 20))

	res, err := confirm(t, f, "A", "B")
	if err != nil {
		t.Fatalf("ConfirmTeam: %v", err)
	}
	if res.Team.Total != 80 || res.Team.RatingEvent != 1 {
		t.Errorf("team total/event = %d/%d, want 80/1", res.Team.Total, res.Team.RatingEvent)
	}
	if len(res.Rating.Updated) != 3 {
		t.Errorf("updated %d players, want 3", len(res.Rating.Updated))
	}

	tests := []struct {
		name    string
		coin    int
		trend   []int
		history []int
	}{
		{"A", 50, []int{1}, []int{50, 50}},
		{"B", 30, []int{1}, []int{30, 30}},
		{"C", 19, []int{0}, []int{20, 19}},
	}
	for _, tt := range tests {
		p := f.players.Get(tt.name)
		if p.Coin != tt.coin {
			t.Errorf("%s coin = %d, want %d", tt.name, p.Coin, tt.coin)
		}
		if !slices.Equal(p.Trend, tt.trend) {
			t.Errorf("%s trend = %v, want %v", tt.name, p.Trend, tt.trend)
		}
		if !slices.Equal(p.History, tt.history) {
			t.Errorf("%s history = %v, want %v", tt.name, p.History, tt.history)
		}
		if p.RatingEvent != 1 {
			t.Errorf("%s ratingEvent = %d, want 1", tt.name, p.RatingEvent)
		}
	}
}

func TestConfirmTeam_PartialFailureIsReportedAndRecovered(t *testing.T) {
	f := newFixture(100, league.ShortWindow,
		makePlayer("A", 50), makePlayer("B", 30), makePlayer("C", 20))
	f.players.FailNextRatingWrite("C")

	res, err := confirm(t, f, "A", "B")
	if !errors.Is(err, ErrPartialRatingUpdate) {
		t.Fatalf("err = %v, want ErrPartialRatingUpdate", err)
	}
	if res == nil || res.Team.ID == "" {
		t.Fatalf("team should be saved despite partial rating failure")
	}
	if _, ok := res.Rating.Failed["C"]; !ok || len(res.Rating.Failed) != 1 {
		t.Errorf("failed = %v, want only C", res.Rating.Failed)
	}
	if c := f.players.Get("C"); c.Coin != 20 || c.RatingEvent != 0 {
		t.Errorf("C after failed write = coin %d event %d, want 20/0", c.Coin, c.RatingEvent)
	}

	rec, err := f.rating.Recover(context.Background())
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if len(rec.Updated) != 1 || rec.Updated[0].Name != "C" {
		t.Errorf("recover updated %v, want only C", rec.Updated)
	}
	c := f.players.Get("C")
	if c.Coin != 19 || !slices.Equal(c.History, []int{20, 19}) || c.RatingEvent != 1 {
		t.Errorf("C after recover = %d %v event %d, want 19 [20 19] event 1", c.Coin, c.History, c.RatingEvent)
	}
	if a := f.players.Get("A"); len(a.History) != 2 {
		t.Errorf("A history = %v, recover must not step caught-up players", a.History)
	}
}

func TestRecover_ReplaysSeveralMissedEvents(t *testing.T) {
	f := newFixture(200, league.ShortWindow,
		makePlayer("A", 50), makePlayer("B", 30), makePlayer("C", 20))

	f.players.FailNextRatingWrite("C")
	if _, err := confirm(t, f, "A", "B"); !errors.Is(err, ErrPartialRatingUpdate) {
		t.Fatalf("first confirm err = %v", err)
	}
	// the catch-up pass inside the second confirm fails for C again
	f.players.FailNextRatingWrite("C")
	if _, err := confirm(t, f, "A", "B"); err != nil {
		t.Fatalf("second confirm: %v", err)
	}

	c := f.players.Get("C")
	if !slices.Equal(c.Trend, []int{0, 0}) || c.Coin != 18 || c.RatingEvent != 2 {
		t.Errorf("C = trend %v coin %d event %d, want [0 0] 18 2", c.Trend, c.Coin, c.RatingEvent)
	}
	if !slices.Equal(c.History, []int{20, 19, 18}) {
		t.Errorf("C history = %v, want [20 19 18]", c.History)
	}
	a := f.players.Get("A")
	if !slices.Equal(a.Trend, []int{1, 1}) || a.Coin != 51 {
		t.Errorf("A = trend %v coin %d, want [1 1] 51", a.Trend, a.Coin)
	}
}

func TestRecover_IsIdempotent(t *testing.T) {
	f := newFixture(100, league.ShortWindow, makePlayer("A", 50), makePlayer("B", 30))
	if _, err := confirm(t, f, "A"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	before := f.players.Get("B")

	for i := 0; i < 3; i++ {
		res, err := f.rating.Recover(context.Background())
		if err != nil {
			t.Fatalf("Recover #%d: %v", i, err)
		}
		if len(res.Updated) != 0 {
			t.Errorf("Recover #%d updated %d players, want 0", i, len(res.Updated))
		}
	}
	after := f.players.Get("B")
	if !slices.Equal(before.History, after.History) {
		t.Errorf("history changed across no-op recoveries: %v -> %v", before.History, after.History)
	}
}

func TestReplayEvents_SkipsPlayersAlreadyPastEvent(t *testing.T) {
	fresh := makePlayer("Fresh", 40)
	fresh.RatingEvent = 2
	old := makePlayer("Old", 40)

	events := []models.Team{
		{ID: "t1", RatingEvent: 1, Players: []models.RosterEntry{{Name: "Old", Coin: 40}}},
		{ID: "t2", RatingEvent: 2, Players: []models.RosterEntry{{Name: "Old", Coin: 40}}},
		{ID: "t3", RatingEvent: 3, Players: []models.RosterEntry{{Name: "Fresh", Coin: 40}}},
	}
	next, replayed := replayEvents([]models.Player{fresh, old}, events, league.ShortWindow)
	if replayed != 3 {
		t.Errorf("replayed = %d, want 3", replayed)
	}
	if !slices.Equal(next[0].Trend, []int{1}) || next[0].RatingEvent != 3 {
		t.Errorf("Fresh = trend %v event %d, want [1] 3", next[0].Trend, next[0].RatingEvent)
	}
	if !slices.Equal(next[1].Trend, []int{1, 1, 0}) || next[1].Coin != 42 {
		t.Errorf("Old = trend %v coin %d, want [1 1 0] 42", next[1].Trend, next[1].Coin)
	}
	if !slices.Equal(next[1].History, []int{40, 40, 41, 42}) {
		t.Errorf("Old history = %v, want [40 40 41 42]", next[1].History)
	}
	if fresh.RatingEvent != 2 || len(fresh.Trend) != 0 {
		t.Errorf("input mutated: %+v", fresh)
	}
}
