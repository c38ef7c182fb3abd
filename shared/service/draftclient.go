// shared/service/draftclient.go
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/raonlive/DRAFT-SERVICES/shared/api"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

// DraftServiceClient talks to draft-service over HTTP.
type DraftServiceClient struct {
	apiClient *api.Client
}

// NewDraftClient creates a client for the draft-service at baseURL. The admin
// token lets callers see team creators; it may be empty.
func NewDraftClient(baseURL, adminToken string, timeout time.Duration) *DraftServiceClient {
	return &DraftServiceClient{
		apiClient: api.NewClient(baseURL, adminToken, api.NewDefaultHTTPClient(timeout)),
	}
}

// --- DTOs, mirrored from draft/api ---

// TeamView is a saved team plus its reconciliation against live coins.
type TeamView struct {
	models.Team
	Reconciliation league.Reconciliation `json:"reconciliation"`
	WinRate        float64               `json:"winRate"`
}

// TeamListResponse is the body of GET /teams.
type TeamListResponse struct {
	Teams []TeamView `json:"teams"`
	Limit int        `json:"limit"`
}

// RecordOutcomeRequest is the body of POST /teams/outcome.
type RecordOutcomeRequest struct {
	MatchupID string `json:"matchupId"`
	TeamAID   string `json:"teamAId"`
	TeamBID   string `json:"teamBId"`
	WinnerID  string `json:"winnerId"`
	LoserID   string `json:"loserId"`
}

// RecordOutcomeResponse echoes both teams after the increment.
type RecordOutcomeResponse struct {
	VoteID string      `json:"voteId"`
	Winner models.Team `json:"winner"`
	Loser  models.Team `json:"loser"`
}

// ErrTeamNotFound is returned when draft-service answers 404 for a team.
var ErrTeamNotFound = errors.New("team not found in draft-service")

// ListTeams fetches every saved team with its live view.
func (c *DraftServiceClient) ListTeams(ctx context.Context) (*TeamListResponse, error) {
	var resp TeamListResponse
	if err := c.apiClient.Get(ctx, "/teams", &resp); err != nil {
		return nil, fmt.Errorf("failed to list teams from draft-service: %w", err)
	}
	return &resp, nil
}

// GetTeam fetches one team view by ID.
func (c *DraftServiceClient) GetTeam(ctx context.Context, teamID string) (*TeamView, error) {
	var view TeamView
	if err := c.apiClient.Get(ctx, "/teams/"+url.PathEscape(teamID), &view); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
		}
		return nil, fmt.Errorf("failed to get team %s from draft-service: %w", teamID, err)
	}
	return &view, nil
}

// RecordOutcome applies a resolved vote: winner wins+1, loser losses+1.
func (c *DraftServiceClient) RecordOutcome(ctx context.Context, req RecordOutcomeRequest) (*RecordOutcomeResponse, error) {
	var resp RecordOutcomeResponse
	if err := c.apiClient.Post(ctx, "/teams/outcome", req, &resp); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s or %s", ErrTeamNotFound, req.WinnerID, req.LoserID)
		}
		return nil, fmt.Errorf("failed to record outcome for matchup %s: %w", req.MatchupID, err)
	}
	return &resp, nil
}
