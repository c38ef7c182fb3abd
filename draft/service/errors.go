// draft/service/errors.go
package service

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned to the API layer.
var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrForbidden           = errors.New("admin privilege required")
	ErrInvalidCoin         = errors.New("coin must be between 0 and 100")
	ErrInvalidLimit        = errors.New("limit must not be negative")
	ErrInvalidPosition     = errors.New("invalid position")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrInvalidOutcome      = errors.New("invalid outcome")
	ErrDuplicateVote       = errors.New("matchup already voted")
	ErrPartialRatingUpdate = errors.New("rating update failed for some players")
	ErrMaintenance         = errors.New("service is under maintenance")
)

// UnknownPlayersError lists names that did not resolve to a player, with
// close matches for each.
type UnknownPlayersError struct {
	Names       []string
	Suggestions map[string][]string
}

func (e *UnknownPlayersError) Error() string {
	parts := make([]string, 0, len(e.Names))
	for _, n := range e.Names {
		if s := e.Suggestions[n]; len(s) > 0 {
			parts = append(parts, fmt.Sprintf("%s (did you mean %s?)", n, strings.Join(s, ", ")))
			continue
		}
		parts = append(parts, n)
	}
	return "unknown players: " + strings.Join(parts, "; ")
}

func (e *UnknownPlayersError) Unwrap() error { return ErrPlayerNotFound }
