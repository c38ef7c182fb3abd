package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

func roster() []models.Player {
	return []models.Player{
		makePlayer("경수", 100, models.PositionPG, models.PositionSG),
		makePlayer("준수", 86, models.PositionSF, models.PositionPF, models.PositionC),
		makePlayer("정재", 82, models.PositionSG),
		makePlayer("오신", 78, models.PositionPG),
	}
}

func names(players []models.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}

func TestListPlayers_FilterAndSort(t *testing.T) {
	f := newFixture(240, league.ShortWindow, roster()...)
	ctx := context.Background()

	tests := []struct {
		pos, sort string
		want      []string
	}{
		{"", "", []string{"경수", "준수", "정재", "오신"}},
		{PosAll, SortCoinAsc, []string{"오신", "정재", "준수", "경수"}},
		{"PG", SortCoinDesc, []string{"경수", "오신"}},
		{"SG", SortCoinAsc, []string{"정재", "경수"}},
		{"C", "", []string{"준수"}},
	}
	for _, tt := range tests {
		got, err := f.playerSv.ListPlayers(ctx, tt.pos, tt.sort)
		if err != nil {
			t.Fatalf("ListPlayers(%q, %q): %v", tt.pos, tt.sort, err)
		}
		if !slices.Equal(names(got), tt.want) {
			t.Errorf("ListPlayers(%q, %q) = %v, want %v", tt.pos, tt.sort, names(got), tt.want)
		}
	}

	if _, err := f.playerSv.ListPlayers(ctx, "XX", ""); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("bad position err = %v, want ErrInvalidPosition", err)
	}
}

func TestLoadPlayers_SeedFallback(t *testing.T) {
	f := newFixture(240, league.ShortWindow)
	ctx := context.Background()

	players, err := f.playerSv.LoadPlayers(ctx)
	if err != nil {
		t.Fatalf("LoadPlayers: %v", err)
	}
	if len(players) != 28 {
		t.Errorf("fallback roster has %d players, want 28", len(players))
	}
	if stored, _ := f.players.GetAllPlayers(ctx); len(stored) != 0 {
		t.Errorf("fallback must not persist, store has %d players", len(stored))
	}
	if p, err := f.playerSv.GetPlayer(ctx, "성권"); err != nil || p.Coin != 2 {
		t.Errorf("GetPlayer(성권) = %+v, %v; want seed player with coin 2", p, err)
	}
}

func TestSeed(t *testing.T) {
	f := newFixture(240, league.ShortWindow)
	ctx := context.Background()
	f.system.SetRatingEvent(4)

	if _, err := f.playerSv.Seed(ctx, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unprivileged Seed err = %v, want ErrForbidden", err)
	}
	n, err := f.playerSv.Seed(ctx, true)
	if err != nil || n != 28 {
		t.Fatalf("Seed = %d, %v; want 28, nil", n, err)
	}
	if p := f.players.Get("경수"); p.RatingEvent != 4 {
		t.Errorf("seeded ratingEvent = %d, want 4", p.RatingEvent)
	}
}

func TestEnsureStored(t *testing.T) {
	f := newFixture(240, league.ShortWindow)
	ctx := context.Background()
	f.system.SetRatingEvent(2)

	seeded, err := f.playerSv.EnsureStored(ctx)
	if err != nil || !seeded {
		t.Fatalf("EnsureStored = %v, %v; want true, nil", seeded, err)
	}
	if p := f.players.Get("성권"); p.Coin != 2 || p.RatingEvent != 2 {
		t.Errorf("seeded 성권 = coin %d event %d, want 2/2", p.Coin, p.RatingEvent)
	}
	if _, err := f.playerSv.UpdateCoin(ctx, "성권", 9, true); err != nil {
		t.Fatalf("UpdateCoin: %v", err)
	}

	seeded, err = f.playerSv.EnsureStored(ctx)
	if err != nil || seeded {
		t.Errorf("second EnsureStored = %v, %v; want false, nil", seeded, err)
	}
	if p := f.players.Get("성권"); p.Coin != 9 {
		t.Errorf("성권 coin = %d after second call, stored roster must be kept", p.Coin)
	}
}

func TestGetPlayer_SuggestsCloseNames(t *testing.T) {
	f := newFixture(240, league.ShortWindow, roster()...)

	_, err := f.playerSv.GetPlayer(context.Background(), "경숫")
	var unknown *UnknownPlayersError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want *UnknownPlayersError", err)
	}
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("UnknownPlayersError should match ErrPlayerNotFound")
	}
	if got := unknown.Suggestions["경숫"]; len(got) == 0 || got[0] != "경수" {
		t.Errorf("suggestions = %v, want 경수 first", got)
	}
}

func TestSearchPlayers(t *testing.T) {
	f := newFixture(240, league.ShortWindow, roster()...)
	ctx := context.Background()

	got, err := f.playerSv.SearchPlayers(ctx, "수")
	if err != nil {
		t.Fatalf("SearchPlayers: %v", err)
	}
	found := names(got)
	slices.Sort(found)
	if !slices.Equal(found, []string{"경수", "준수"}) {
		t.Errorf("SearchPlayers(수) = %v, want 경수 and 준수", found)
	}

	if got, _ := f.playerSv.SearchPlayers(ctx, "   "); len(got) != 0 {
		t.Errorf("blank query returned %v", names(got))
	}
	if got, _ := f.playerSv.SearchPlayers(ctx, "zzzzzz"); len(got) != 0 {
		t.Errorf("unrelated query returned %v", names(got))
	}
}

func TestUpdateCoin(t *testing.T) {
	f := newFixture(240, league.ShortWindow, roster()...)
	ctx := context.Background()

	if _, err := f.playerSv.UpdateCoin(ctx, "정재", 70, false); !errors.Is(err, ErrForbidden) {
		t.Errorf("unprivileged err = %v, want ErrForbidden", err)
	}
	for _, coin := range []int{-1, 101} {
		if _, err := f.playerSv.UpdateCoin(ctx, "정재", coin, true); !errors.Is(err, ErrInvalidCoin) {
			t.Errorf("coin %d err = %v, want ErrInvalidCoin", coin, err)
		}
	}
	if _, err := f.playerSv.UpdateCoin(ctx, "없음", 10, true); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("unknown player err = %v, want ErrPlayerNotFound", err)
	}

	before := f.players.Get("정재")
	before.Trend = []int{1, 0}
	f.players.UpsertPlayer(ctx, before)

	p, err := f.playerSv.UpdateCoin(ctx, "정재", 70, true)
	if err != nil {
		t.Fatalf("UpdateCoin: %v", err)
	}
	stored := f.players.Get("정재")
	if p.Coin != 70 || stored.Coin != 70 {
		t.Errorf("coin = %d (stored %d), want 70", p.Coin, stored.Coin)
	}
	if !slices.Equal(stored.History, []int{82, 70}) {
		t.Errorf("history = %v, want [82 70]", stored.History)
	}
	if !slices.Equal(stored.Trend, []int{1, 0}) {
		t.Errorf("trend = %v, admin edit must not touch trend", stored.Trend)
	}
}

func TestPositions(t *testing.T) {
	f := newFixture(240, league.ShortWindow, roster()...)
	ctx := context.Background()

	if _, err := f.playerSv.TogglePosition(ctx, "정재", "SF", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("unprivileged toggle err = %v, want ErrForbidden", err)
	}

	p, err := f.playerSv.TogglePosition(ctx, "정재", "SF", true)
	if err != nil {
		t.Fatalf("TogglePosition add: %v", err)
	}
	if !slices.Equal(p.Pos, []models.Position{models.PositionSG, models.PositionSF}) {
		t.Errorf("after add pos = %v, want [SG SF]", p.Pos)
	}
	p, err = f.playerSv.TogglePosition(ctx, "정재", "SG", true)
	if err != nil {
		t.Fatalf("TogglePosition remove: %v", err)
	}
	if !slices.Equal(f.players.Get("정재").Pos, []models.Position{models.PositionSF}) {
		t.Errorf("stored pos = %v, want [SF]", f.players.Get("정재").Pos)
	}

	p, err = f.playerSv.SetPositions(ctx, "정재", []string{"C", "PG", "C"}, true)
	if err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	if !slices.Equal(p.Pos, []models.Position{models.PositionPG, models.PositionC}) {
		t.Errorf("SetPositions pos = %v, want [PG C]", p.Pos)
	}
	if _, err := f.playerSv.SetPositions(ctx, "정재", []string{"G"}, true); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("bad position err = %v, want ErrInvalidPosition", err)
	}
}
