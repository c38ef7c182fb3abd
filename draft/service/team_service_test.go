package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/raonlive/DRAFT-SERVICES/draft/service/servicetest"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

func TestConfirmTeam_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     ConfirmRequest
		wantErr error
	}{
		{"no team name", ConfirmRequest{TeamName: "  ", Players: []string{"A"}}, ErrTeamNameRequired},
		{"empty selection", ConfirmRequest{TeamName: "x"}, league.ErrEmptySelection},
		{"over cap", ConfirmRequest{TeamName: "x", Players: []string{"A", "B"}}, league.ErrOverCap},
		{"unknown player", ConfirmRequest{TeamName: "x", Players: []string{"A", "Zed"}}, ErrPlayerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(70, league.ShortWindow, makePlayer("A", 50), makePlayer("B", 30))
			_, err := f.teamSv.ConfirmTeam(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if n := f.teams.Count(); n != 0 {
				t.Errorf("%d teams stored after rejected confirmation", n)
			}
			if a := f.players.Get("A"); len(a.History) != 1 {
				t.Errorf("A history = %v, rejected confirmation must not rate", a.History)
			}
		})
	}
}

func TestConfirmTeam_SnapshotAndDefaults(t *testing.T) {
	f := newFixture(100, league.ShortWindow, makePlayer("A", 50), makePlayer("B", 30))
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	f.teamSv.now = func() time.Time { return fixed }

	res, err := f.teamSv.ConfirmTeam(context.Background(), ConfirmRequest{
		TeamName: " 번개 ",
		Players:  []string{"B", "A", "B"},
	})
	if err != nil {
		t.Fatalf("ConfirmTeam: %v", err)
	}
	team := res.Team
	if team.TeamName != "번개" || team.Creator != DefaultCreator {
		t.Errorf("name/creator = %q/%q, want 번개/%s", team.TeamName, team.Creator, DefaultCreator)
	}
	if len(team.Players) != 2 || team.Players[0].Name != "B" || team.Players[1].Name != "A" {
		t.Errorf("snapshot = %v, want [B A] in selection order without duplicates", team.Players)
	}
	if !team.CreatedAt.Equal(fixed) {
		t.Errorf("createdAt = %v, want %v", team.CreatedAt, fixed)
	}

	// later coin edits must not leak into the stored snapshot
	if _, err := f.playerSv.UpdateCoin(context.Background(), "A", 90, true); err != nil {
		t.Fatalf("UpdateCoin: %v", err)
	}
	stored, _ := f.teams.GetTeam(context.Background(), team.ID)
	if stored.Total != 80 || stored.Players[1].Coin != 50 {
		t.Errorf("stored team = total %d, A %d; want 80, 50", stored.Total, stored.Players[1].Coin)
	}
}

func TestCheckRoster(t *testing.T) {
	f := newFixture(70, league.ShortWindow, makePlayer("A", 50), makePlayer("B", 30))
	check, err := f.teamSv.CheckRoster(context.Background(), []string{"A", "B", "Q"})
	if err != nil {
		t.Fatalf("CheckRoster: %v", err)
	}
	if check.Total != 80 || check.Legal || check.Remaining != -10 {
		t.Errorf("check = %+v, want total 80, illegal, remaining -10", check)
	}
	if len(check.Unknown) != 1 || check.Unknown[0] != "Q" {
		t.Errorf("unknown = %v, want [Q]", check.Unknown)
	}

	empty, err := f.teamSv.CheckRoster(context.Background(), nil)
	if err != nil {
		t.Fatalf("CheckRoster(nil): %v", err)
	}
	if !empty.Legal || empty.Total != 0 {
		t.Errorf("empty selection = %+v, want legal with total 0", empty)
	}
}

func seedTeams(f *fixture) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.teams.PutTeam(models.Team{
		ID:        "old",
		TeamName:  "old",
		Creator:   "민수",
		Players:   []models.RosterEntry{{Name: "A", Coin: 50}, {Name: "B", Coin: 30}},
		Total:     80,
		Wins:      1,
		Losses:    3,
		CreatedAt: base,
	})
	f.teams.PutTeam(models.Team{
		ID:        "new",
		TeamName:  "new",
		Creator:   "지훈",
		Players:   []models.RosterEntry{{Name: "B", Coin: 30}},
		Total:     30,
		Wins:      2,
		CreatedAt: base.Add(time.Hour),
	})
}

func TestListTeams_ReconcilesAgainstLiveCoins(t *testing.T) {
	f := newFixture(80, league.ShortWindow, makePlayer("A", 60), makePlayer("B", 30))
	seedTeams(f)

	list, err := f.teamSv.ListTeams(context.Background(), "", "", false)
	if err != nil {
		t.Fatalf("ListTeams: %v", err)
	}
	if len(list.Teams) != 2 || list.Teams[0].ID != "new" {
		t.Fatalf("default order = %v, want newest first", list.Teams)
	}
	old := list.Teams[1]
	if old.Reconciliation.LiveTotal != 90 || !old.Reconciliation.Impossible {
		t.Errorf("old reconciliation = %+v, want live 90 impossible", old.Reconciliation)
	}
	if old.Total != 80 {
		t.Errorf("stored total = %d, want 80", old.Total)
	}
	if !old.Reconciliation.Entries[0].Changed || old.Reconciliation.Entries[0].Delta != 10 {
		t.Errorf("A diff = %+v, want changed by 10", old.Reconciliation.Entries[0])
	}
	for _, v := range list.Teams {
		if v.Creator != "" {
			t.Errorf("creator %q visible without privilege", v.Creator)
		}
	}

	admin, err := f.teamSv.ListTeams(context.Background(), TeamSortWinRate, "asc", true)
	if err != nil {
		t.Fatalf("ListTeams(admin): %v", err)
	}
	if admin.Teams[0].ID != "old" || admin.Teams[0].Creator != "민수" {
		t.Errorf("winrate asc first = %s/%q, want old/민수", admin.Teams[0].ID, admin.Teams[0].Creator)
	}
	if admin.Teams[0].WinRate != 0.25 {
		t.Errorf("winRate = %v, want 0.25", admin.Teams[0].WinRate)
	}
}

func TestListTeams_ScoreSort(t *testing.T) {
	f := newFixture(240, league.ShortWindow, makePlayer("A", 50), makePlayer("B", 30))
	seedTeams(f)

	list, err := f.teamSv.ListTeams(context.Background(), TeamSortScore, "desc", false)
	if err != nil {
		t.Fatalf("ListTeams: %v", err)
	}
	if list.Teams[0].ID != "old" || list.Teams[1].ID != "new" {
		t.Errorf("score desc = [%s %s], want [old new]", list.Teams[0].ID, list.Teams[1].ID)
	}
}

func TestGetTeam_NotFound(t *testing.T) {
	f := newFixture(240, league.ShortWindow)
	if _, err := f.teamSv.GetTeam(context.Background(), "nope", false); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("err = %v, want ErrTeamNotFound", err)
	}
}

func TestRecordOutcome(t *testing.T) {
	f := newFixture(240, league.ShortWindow)
	seedTeams(f)
	ctx := context.Background()

	res, err := f.teamSv.RecordOutcome(ctx, OutcomeRequest{MatchupID: "m1", WinnerID: "new", LoserID: "old"})
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if res.Winner.Wins != 3 || res.Winner.Losses != 0 {
		t.Errorf("winner = %d-%d, want 3-0", res.Winner.Wins, res.Winner.Losses)
	}
	if res.Loser.Wins != 1 || res.Loser.Losses != 4 {
		t.Errorf("loser = %d-%d, want 1-4", res.Loser.Wins, res.Loser.Losses)
	}
	if vote, ok := f.votes.Vote("m1"); !ok || vote.WinnerID != "new" || vote.TeamAID == "" {
		t.Errorf("vote = %+v", vote)
	}

	if _, err := f.teamSv.RecordOutcome(ctx, OutcomeRequest{MatchupID: "m1", WinnerID: "old", LoserID: "new"}); !errors.Is(err, ErrDuplicateVote) {
		t.Errorf("repeat vote err = %v, want ErrDuplicateVote", err)
	}
	if w, _ := f.teams.GetTeam(ctx, "old"); w.Wins != 1 {
		t.Errorf("old wins = %d after rejected repeat, want 1", w.Wins)
	}
}

func TestRecordOutcome_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		req     OutcomeRequest
		wantErr error
	}{
		{"missing matchup", OutcomeRequest{WinnerID: "old", LoserID: "new"}, ErrInvalidOutcome},
		{"same team", OutcomeRequest{MatchupID: "m", WinnerID: "old", LoserID: "old"}, ErrInvalidOutcome},
		{"unknown team", OutcomeRequest{MatchupID: "m", WinnerID: "old", LoserID: "ghost"}, ErrTeamNotFound},
		{"winner outside matchup", OutcomeRequest{MatchupID: "m", TeamAID: "old", TeamBID: "x", WinnerID: "old", LoserID: "new"}, ErrInvalidOutcome},
		{"loser outside matchup", OutcomeRequest{MatchupID: "m", TeamAID: "x", TeamBID: "new", WinnerID: "old", LoserID: "new"}, ErrInvalidOutcome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(240, league.ShortWindow)
			seedTeams(f)
			if _, err := f.teamSv.RecordOutcome(context.Background(), tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if f.votes.Count() != 0 {
				t.Errorf("vote stored for rejected outcome")
			}
		})
	}
}

func TestRecordOutcome_RetryFinishesPartialIncrement(t *testing.T) {
	f := newFixture(240, league.ShortWindow)
	seedTeams(f)
	ctx := context.Background()
	req := OutcomeRequest{MatchupID: "m1", TeamAID: "old", TeamBID: "new", WinnerID: "new", LoserID: "old"}

	f.teams.FailNextIncrement("old", league.FieldLosses)
	if _, err := f.teamSv.RecordOutcome(ctx, req); !errors.Is(err, servicetest.ErrInjected) {
		t.Fatalf("first attempt err = %v, want injected failure", err)
	}
	vote, ok := f.votes.Vote("m1")
	if !ok || !vote.WinApplied || vote.LossApplied {
		t.Fatalf("vote after partial failure = %+v, want win applied only", vote)
	}

	res, err := f.teamSv.RecordOutcome(ctx, req)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.VoteID != vote.ID {
		t.Errorf("retry vote id = %s, want stored %s", res.VoteID, vote.ID)
	}
	if res.Winner.Wins != 3 || res.Loser.Losses != 4 {
		t.Errorf("after retry winner wins %d loser losses %d, want 3 and 4", res.Winner.Wins, res.Loser.Losses)
	}
	if vote, _ := f.votes.Vote("m1"); !vote.Complete() {
		t.Errorf("vote after retry = %+v, want both counters applied", vote)
	}

	if _, err := f.teamSv.RecordOutcome(ctx, req); !errors.Is(err, ErrDuplicateVote) {
		t.Errorf("third attempt err = %v, want ErrDuplicateVote", err)
	}
	w, _ := f.teams.GetTeam(ctx, "new")
	l, _ := f.teams.GetTeam(ctx, "old")
	if w.Wins != 3 || l.Losses != 4 {
		t.Errorf("final new wins %d old losses %d, want 3 and 4", w.Wins, l.Losses)
	}
}

func TestRecordOutcome_RetryWithOtherWinnerKeepsStoredOutcome(t *testing.T) {
	f := newFixture(240, league.ShortWindow)
	seedTeams(f)
	ctx := context.Background()

	f.teams.FailNextIncrement("old", league.FieldLosses)
	if _, err := f.teamSv.RecordOutcome(ctx, OutcomeRequest{MatchupID: "m1", WinnerID: "new", LoserID: "old"}); err == nil {
		t.Fatal("first attempt should fail")
	}
	_, err := f.teamSv.RecordOutcome(ctx, OutcomeRequest{MatchupID: "m1", WinnerID: "old", LoserID: "new"})
	if !errors.Is(err, ErrDuplicateVote) {
		t.Fatalf("err = %v, want ErrDuplicateVote", err)
	}
	w, _ := f.teams.GetTeam(ctx, "new")
	l, _ := f.teams.GetTeam(ctx, "old")
	if w.Wins != 3 || w.Losses != 0 || l.Wins != 1 || l.Losses != 4 {
		t.Errorf("new %d-%d old %d-%d, want 3-0 and 1-4", w.Wins, w.Losses, l.Wins, l.Losses)
	}
}

func TestConfirmTeam_UnseededStorePersistsRosterFirst(t *testing.T) {
	f := newFixture(240, league.ShortWindow)
	ctx := context.Background()

	res, err := confirm(t, f, "경수")
	if err != nil {
		t.Fatalf("ConfirmTeam: %v", err)
	}
	if res.Team.RatingEvent != 1 || res.Team.Total != 100 {
		t.Errorf("team event/total = %d/%d, want 1/100", res.Team.RatingEvent, res.Team.Total)
	}
	if len(res.Rating.Updated) != 28 {
		t.Errorf("updated %d players, want the whole seed roster of 28", len(res.Rating.Updated))
	}
	if stored, _ := f.players.GetAllPlayers(ctx); len(stored) != 28 {
		t.Errorf("store has %d players, want 28", len(stored))
	}
	p := f.players.Get("경수")
	if !slices.Equal(p.Trend, []int{1}) || p.RatingEvent != 1 {
		t.Errorf("경수 = trend %v event %d, want [1] 1", p.Trend, p.RatingEvent)
	}

	rec, err := f.rating.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if len(rec.Updated) != 0 {
		t.Errorf("recover updated %d players, want none", len(rec.Updated))
	}
}
