// draft/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/raonlive/DRAFT-SERVICES/draft/service"
	"github.com/raonlive/DRAFT-SERVICES/shared/api"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
)

// DraftAPIHandlers exposes the draft services over HTTP.
type DraftAPIHandlers struct {
	PlayerService   *service.PlayerService
	TeamService     *service.TeamService
	RatingService   *service.RatingService
	SettingsService *service.SettingsService
	timeout         time.Duration
}

func NewDraftAPIHandlers(
	ps *service.PlayerService,
	ts *service.TeamService,
	rs *service.RatingService,
	ss *service.SettingsService,
	timeout time.Duration,
) *DraftAPIHandlers {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DraftAPIHandlers{
		PlayerService:   ps,
		TeamService:     ts,
		RatingService:   rs,
		SettingsService: ss,
		timeout:         timeout,
	}
}

// --- Request/Response DTOs ---

type UpdateCoinRequest struct {
	Coin *int `json:"coin"`
}

type UpdatePositionsRequest struct {
	Pos []string `json:"pos"`
}

type RosterCheckRequest struct {
	Players []string `json:"players"`
}

type MaintenanceRequest struct {
	Maintenance *bool `json:"maintenance"`
}

type LimitRequest struct {
	Limit *int `json:"limit"`
}

// ConfirmResponse is returned by POST /teams. Warning is set when some
// rating writes failed (HTTP 207).
type ConfirmResponse struct {
	*service.ConfirmResult
	Warning string `json:"warning,omitempty"`
}

type SeedResponse struct {
	Seeded int `json:"seeded"`
}

// --- Handler Methods ---

// ListPlayersHandler GET /players?pos=&sort=
func (h *DraftAPIHandlers) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	q := r.URL.Query()
	players, err := h.PlayerService.ListPlayers(ctx, q.Get("pos"), q.Get("sort"))
	if err != nil {
		writeServiceError(w, err, "Failed to list players")
		return
	}
	api.WriteJSON(w, http.StatusOK, players)
}

// SearchPlayersHandler GET /players/search?q=
func (h *DraftAPIHandlers) SearchPlayersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	players, err := h.PlayerService.SearchPlayers(ctx, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err, "Failed to search players")
		return
	}
	api.WriteJSON(w, http.StatusOK, players)
}

// GetPlayerHandler GET /players/{name}
func (h *DraftAPIHandlers) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	player, err := h.PlayerService.GetPlayer(ctx, mux.Vars(r)["name"])
	if err != nil {
		writeServiceError(w, err, "Failed to get player")
		return
	}
	api.WriteJSON(w, http.StatusOK, player)
}

// UpdateCoinHandler PUT /players/{name}/coin
func (h *DraftAPIHandlers) UpdateCoinHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateCoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Coin == nil {
		api.WriteBadRequest(w, "Request body must be {\"coin\": <int>}")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	player, err := h.PlayerService.UpdateCoin(ctx, mux.Vars(r)["name"], *req.Coin, api.IsPrivileged(ctx))
	if err != nil {
		writeServiceError(w, err, "Failed to update coin")
		return
	}
	api.WriteJSON(w, http.StatusOK, player)
}

// UpdatePositionsHandler PUT /players/{name}/positions
func (h *DraftAPIHandlers) UpdatePositionsHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdatePositionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	player, err := h.PlayerService.SetPositions(ctx, mux.Vars(r)["name"], req.Pos, api.IsPrivileged(ctx))
	if err != nil {
		writeServiceError(w, err, "Failed to update positions")
		return
	}
	api.WriteJSON(w, http.StatusOK, player)
}

// TogglePositionHandler POST /players/{name}/positions/{pos}/toggle
func (h *DraftAPIHandlers) TogglePositionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	vars := mux.Vars(r)
	player, err := h.PlayerService.TogglePosition(ctx, vars["name"], vars["pos"], api.IsPrivileged(ctx))
	if err != nil {
		writeServiceError(w, err, "Failed to toggle position")
		return
	}
	api.WriteJSON(w, http.StatusOK, player)
}

// SeedPlayersHandler POST /players/seed
func (h *DraftAPIHandlers) SeedPlayersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	n, err := h.PlayerService.Seed(ctx, api.IsPrivileged(ctx))
	if err != nil {
		writeServiceError(w, err, "Failed to seed players")
		return
	}
	api.WriteJSON(w, http.StatusOK, SeedResponse{Seeded: n})
}

// RecoverHandler POST /players/recover
func (h *DraftAPIHandlers) RecoverHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	if !api.IsPrivileged(ctx) {
		api.WriteForbidden(w, service.ErrForbidden.Error())
		return
	}
	result, err := h.RatingService.Recover(ctx)
	if err != nil && !errors.Is(err, service.ErrPartialRatingUpdate) {
		writeServiceError(w, err, "Failed to recover ratings")
		return
	}
	status := http.StatusOK
	if result.Partial() {
		status = http.StatusMultiStatus
	}
	api.WriteJSON(w, status, result)
}

// CheckRosterHandler POST /roster/check
func (h *DraftAPIHandlers) CheckRosterHandler(w http.ResponseWriter, r *http.Request) {
	var req RosterCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	check, err := h.TeamService.CheckRoster(ctx, req.Players)
	if err != nil {
		writeServiceError(w, err, "Failed to check roster")
		return
	}
	api.WriteJSON(w, http.StatusOK, check)
}

// ConfirmTeamHandler POST /teams
func (h *DraftAPIHandlers) ConfirmTeamHandler(w http.ResponseWriter, r *http.Request) {
	var req service.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	result, err := h.TeamService.ConfirmTeam(ctx, req)
	switch {
	case err == nil:
		api.WriteJSON(w, http.StatusCreated, ConfirmResponse{ConfirmResult: result})
	case errors.Is(err, service.ErrPartialRatingUpdate) && result != nil:
		log.Printf("WARN: team %s saved with partial rating update: %v", result.Team.ID, err)
		api.WriteJSON(w, http.StatusMultiStatus, ConfirmResponse{ConfirmResult: result, Warning: err.Error()})
	case result != nil:
		// team saved, rating pass failed outright; the next confirmation catches up
		log.Printf("ERROR: %v", err)
		api.WriteJSON(w, http.StatusMultiStatus, ConfirmResponse{ConfirmResult: result, Warning: err.Error()})
	default:
		var unknown *service.UnknownPlayersError
		if errors.As(err, &unknown) {
			api.WriteValidationError(w, "Selection contains unknown players", unknown.Error())
			return
		}
		writeServiceError(w, err, "Failed to confirm team")
	}
}

// ListTeamsHandler GET /teams?sort=time|score|winrate&order=asc|desc
func (h *DraftAPIHandlers) ListTeamsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	q := r.URL.Query()
	list, err := h.TeamService.ListTeams(ctx, q.Get("sort"), q.Get("order"), api.IsPrivileged(ctx))
	if err != nil {
		writeServiceError(w, err, "Failed to list teams")
		return
	}
	api.WriteJSON(w, http.StatusOK, list)
}

// GetTeamHandler GET /teams/{id}
func (h *DraftAPIHandlers) GetTeamHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	view, err := h.TeamService.GetTeam(ctx, mux.Vars(r)["id"], api.IsPrivileged(ctx))
	if err != nil {
		writeServiceError(w, err, "Failed to get team")
		return
	}
	api.WriteJSON(w, http.StatusOK, view)
}

// RecordOutcomeHandler POST /teams/outcome
func (h *DraftAPIHandlers) RecordOutcomeHandler(w http.ResponseWriter, r *http.Request) {
	var req service.OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	result, err := h.TeamService.RecordOutcome(ctx, req)
	if err != nil {
		writeServiceError(w, err, "Failed to record outcome")
		return
	}
	api.WriteJSON(w, http.StatusOK, result)
}

// GetSettingsHandler GET /settings
func (h *DraftAPIHandlers) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	settings, err := h.SettingsService.Get(ctx)
	if err != nil {
		writeServiceError(w, err, "Failed to load settings")
		return
	}
	api.WriteJSON(w, http.StatusOK, settings)
}

// SetMaintenanceHandler PUT /settings/maintenance
func (h *DraftAPIHandlers) SetMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	var req MaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Maintenance == nil {
		api.WriteBadRequest(w, "Request body must be {\"maintenance\": <bool>}")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	settings, err := h.SettingsService.SetMaintenance(ctx, *req.Maintenance, api.IsPrivileged(ctx))
	if err != nil {
		writeServiceError(w, err, "Failed to save settings")
		return
	}
	api.WriteJSON(w, http.StatusOK, settings)
}

// SetLimitHandler PUT /settings/limit
func (h *DraftAPIHandlers) SetLimitHandler(w http.ResponseWriter, r *http.Request) {
	var req LimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Limit == nil {
		api.WriteBadRequest(w, "Request body must be {\"limit\": <int>}")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	settings, err := h.SettingsService.SetLimit(ctx, *req.Limit, api.IsPrivileged(ctx))
	if err != nil {
		writeServiceError(w, err, "Failed to save settings")
		return
	}
	api.WriteJSON(w, http.StatusOK, settings)
}

// MaintenanceGate answers 503 to unprivileged callers while maintenance is
// on. Health checks and reading the settings stay open.
func (h *DraftAPIHandlers) MaintenanceGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || (r.URL.Path == "/settings" && r.Method == http.MethodGet) || api.IsPrivileged(r.Context()) {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := h.ctx(r)
		settings, err := h.SettingsService.Get(ctx)
		cancel()
		if err != nil {
			// fail open; the handler will surface the storage error itself
			log.Printf("WARN: maintenance check failed: %v", err)
		} else if settings.Maintenance {
			api.WriteError(w, http.StatusServiceUnavailable, service.ErrMaintenance.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *DraftAPIHandlers) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// writeServiceError maps service errors to status codes and categories.
func writeServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		api.WriteForbidden(w, err.Error())
	case errors.Is(err, service.ErrPlayerNotFound), errors.Is(err, service.ErrTeamNotFound):
		api.WriteNotFound(w, err.Error())
	case errors.Is(err, service.ErrDuplicateVote):
		api.WriteError(w, http.StatusConflict, err.Error())
	case league.IsValidationError(err),
		errors.Is(err, service.ErrInvalidCoin),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidPosition),
		errors.Is(err, service.ErrTeamNameRequired),
		errors.Is(err, service.ErrInvalidOutcome):
		api.WriteValidationError(w, err.Error(), "")
	default:
		log.Printf("ERROR: %s: %v", action, err)
		api.WritePersistenceError(w, action, err)
	}
}

func (h *DraftAPIHandlers) RegisterRoutes(router *mux.Router) {
	router.Use(h.MaintenanceGate)

	router.HandleFunc("/players", h.ListPlayersHandler).Methods(http.MethodGet)
	router.HandleFunc("/players/search", h.SearchPlayersHandler).Methods(http.MethodGet)
	router.HandleFunc("/players/seed", h.SeedPlayersHandler).Methods(http.MethodPost)
	router.HandleFunc("/players/recover", h.RecoverHandler).Methods(http.MethodPost)
	router.HandleFunc("/players/{name}", h.GetPlayerHandler).Methods(http.MethodGet)
	router.HandleFunc("/players/{name}/coin", h.UpdateCoinHandler).Methods(http.MethodPut)
	router.HandleFunc("/players/{name}/positions", h.UpdatePositionsHandler).Methods(http.MethodPut)
	router.HandleFunc("/players/{name}/positions/{pos}/toggle", h.TogglePositionHandler).Methods(http.MethodPost)

	router.HandleFunc("/roster/check", h.CheckRosterHandler).Methods(http.MethodPost)

	router.HandleFunc("/teams", h.ConfirmTeamHandler).Methods(http.MethodPost)
	router.HandleFunc("/teams", h.ListTeamsHandler).Methods(http.MethodGet)
	router.HandleFunc("/teams/outcome", h.RecordOutcomeHandler).Methods(http.MethodPost)
	router.HandleFunc("/teams/{id}", h.GetTeamHandler).Methods(http.MethodGet)

	router.HandleFunc("/settings", h.GetSettingsHandler).Methods(http.MethodGet)
	router.HandleFunc("/settings/maintenance", h.SetMaintenanceHandler).Methods(http.MethodPut)
	router.HandleFunc("/settings/limit", h.SetLimitHandler).Methods(http.MethodPut)
}
