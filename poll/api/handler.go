// poll/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/raonlive/DRAFT-SERVICES/poll/service"
	"github.com/raonlive/DRAFT-SERVICES/shared/api"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	draftclient "github.com/raonlive/DRAFT-SERVICES/shared/service"
)

// PollAPIHandlers exposes the open matchup and voting over HTTP.
type PollAPIHandlers struct {
	PollService *service.PollService
	timeout     time.Duration
}

func NewPollAPIHandlers(ps *service.PollService, timeout time.Duration) *PollAPIHandlers {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PollAPIHandlers{
		PollService: ps,
		timeout:     timeout,
	}
}

type VoteRequest struct {
	MatchupID string `json:"matchupId"`
	Choice    string `json:"choice"`
}

// GetMatchupHandler GET /matchup
func (h *PollAPIHandlers) GetMatchupHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.PollService.CurrentMatchup(ctx)
	if err != nil {
		writePollError(w, err, "Failed to load matchup")
		return
	}
	api.WriteJSON(w, http.StatusOK, view)
}

// VoteHandler POST /matchup/vote
func (h *PollAPIHandlers) VoteHandler(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MatchupID == "" {
		api.WriteBadRequest(w, "Request body must be {\"matchupId\": <id>, \"choice\": \"A\"|\"B\"}")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.PollService.Vote(ctx, req.MatchupID, req.Choice)
	if err != nil {
		writePollError(w, err, "Failed to record vote")
		return
	}
	api.WriteJSON(w, http.StatusOK, result)
}

func writePollError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, league.ErrNoOpenMatchup):
		api.WriteNotFound(w, err.Error())
	case errors.Is(err, league.ErrMatchupMismatch), errors.Is(err, service.ErrAlreadyVoted):
		api.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidChoice):
		api.WriteValidationError(w, err.Error(), "")
	case errors.Is(err, draftclient.ErrTeamNotFound):
		api.WriteError(w, http.StatusGone, err.Error())
	case errors.Is(err, service.ErrDraftService):
		log.Printf("ERROR: %s: %v", action, err)
		api.WriteError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("ERROR: %s: %v", action, err)
		api.WritePersistenceError(w, action, err)
	}
}

func (h *PollAPIHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/matchup", h.GetMatchupHandler).Methods(http.MethodGet)
	router.HandleFunc("/matchup/vote", h.VoteHandler).Methods(http.MethodPost)
}
