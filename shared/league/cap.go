package league

import (
	"errors"
	"fmt"

	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

var (
	ErrEmptySelection = errors.New("no players selected")
	ErrOverCap        = errors.New("roster total exceeds the cap")
)

// RosterTotal sums the coin of the given players.
func RosterTotal(players []models.Player) int {
	total := 0
	for _, p := range players {
		total += p.Coin
	}
	return total
}

// IsLegal reports whether the selection fits under limit. An empty
// selection is legal with a total of 0.
func IsLegal(selected []models.Player, limit int) bool {
	return RosterTotal(selected) <= limit
}

// ValidateSelection applies the confirmation rules: a roster must not be
// empty and must be legal under limit.
func ValidateSelection(selected []models.Player, limit int) error {
	if len(selected) == 0 {
		return ErrEmptySelection
	}
	if total := RosterTotal(selected); total > limit {
		return fmt.Errorf("%w: total %d, limit %d", ErrOverCap, total, limit)
	}
	return nil
}

// IsValidationError reports whether err is a user-fixable selection error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptySelection) || errors.Is(err, ErrOverCap)
}
