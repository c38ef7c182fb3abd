package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raonlive/DRAFT-SERVICES/shared/api"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

func TestListTeamsSendsAdminToken(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(api.AdminTokenHeader)
		api.WriteJSON(w, http.StatusOK, TeamListResponse{
			Teams: []TeamView{{Team: models.Team{ID: "t1", Total: 200}}},
			Limit: 240,
		})
	}))
	defer srv.Close()

	c := NewDraftClient(srv.URL, "secret", time.Second)
	resp, err := c.ListTeams(context.Background())
	if err != nil {
		t.Fatalf("ListTeams: %v", err)
	}
	if gotToken != "secret" {
		t.Errorf("admin header = %q, want %q", gotToken, "secret")
	}
	if len(resp.Teams) != 1 || resp.Teams[0].ID != "t1" || resp.Teams[0].Total != 200 {
		t.Errorf("teams = %+v, want one team t1 with total 200", resp.Teams)
	}
}

func TestGetTeamNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.WriteNotFound(w, "team not found")
	}))
	defer srv.Close()

	c := NewDraftClient(srv.URL, "", time.Second)
	_, err := c.GetTeam(context.Background(), "missing")
	if !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("err = %v, want ErrTeamNotFound", err)
	}
}

func TestRecordOutcomeValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RecordOutcomeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.WinnerID != "a" || req.LoserID != "a" {
			t.Errorf("request = %+v", req)
		}
		api.WriteValidationError(w, "a team cannot play itself", "")
	}))
	defer srv.Close()

	c := NewDraftClient(srv.URL, "", time.Second)
	_, err := c.RecordOutcome(context.Background(), RecordOutcomeRequest{WinnerID: "a", LoserID: "a"})
	if !errors.Is(err, api.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	var httpErr *api.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Category != api.CategoryValidation {
		t.Errorf("HTTPError category = %+v, want validation", httpErr)
	}
}
