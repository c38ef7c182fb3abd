// draft/service/settings_service.go
package service

import (
	"context"
	"log"

	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

// SettingsService guards the global settings document.
type SettingsService struct {
	system SystemRepository
}

func NewSettingsService(system SystemRepository) *SettingsService {
	return &SettingsService{system: system}
}

func (ss *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	return ss.system.GetSettings(ctx)
}

// SetMaintenance turns the maintenance gate on or off.
func (ss *SettingsService) SetMaintenance(ctx context.Context, on, isPrivileged bool) (models.Settings, error) {
	if !isPrivileged {
		return models.Settings{}, ErrForbidden
	}
	settings, err := ss.system.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	settings.Maintenance = on
	if err := ss.system.SaveSettings(ctx, settings); err != nil {
		return models.Settings{}, err
	}
	log.Printf("INFO: maintenance set to %t", on)
	return settings, nil
}

// SetLimit changes the live cap. Existing teams are not touched; they are
// reconciled against the new cap when next listed.
func (ss *SettingsService) SetLimit(ctx context.Context, limit int, isPrivileged bool) (models.Settings, error) {
	if !isPrivileged {
		return models.Settings{}, ErrForbidden
	}
	if limit < 0 {
		return models.Settings{}, ErrInvalidLimit
	}
	settings, err := ss.system.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	settings.Limit = limit
	if err := ss.system.SaveSettings(ctx, settings); err != nil {
		return models.Settings{}, err
	}
	log.Printf("INFO: cap set to %d", limit)
	return settings, nil
}
