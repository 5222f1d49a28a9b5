package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"golang.org/x/exp/slog"
)

// SettlementSettingsServiceImpl implements SettlementSettingsService
type SettlementSettingsServiceImpl struct {
	settingsRepo  repositories.SettlementSettingsRepository
	defaultPolicy models.SettlementPolicy
}

// NewSettlementSettingsService creates a new SettlementSettingsService. defaultPolicy applies
// until an admin saves one.
func NewSettlementSettingsService(settingsRepo repositories.SettlementSettingsRepository, defaultPolicy models.SettlementPolicy) SettlementSettingsService {
	return &SettlementSettingsServiceImpl{
		settingsRepo:  settingsRepo,
		defaultPolicy: defaultPolicy,
	}
}

// GetSettings retrieves the saved settings or the configured default
func (s *SettlementSettingsServiceImpl) GetSettings(ctx context.Context) (*models.SettlementSettings, error) {
	settings, err := s.settingsRepo.GetSettings(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.SettlementSettings{Policy: s.defaultPolicy, UpdatedBy: "config"}, nil
	}
	if err != nil {
		slog.Error("GetSettings: Failed to load settlement settings", "error", err)
		return nil, classify(err, "settlement settings")
	}
	return settings, nil
}

// ActivePolicy returns the formulas prize calculations must use
func (s *SettlementSettingsServiceImpl) ActivePolicy(ctx context.Context) (models.SettlementPolicy, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return models.SettlementPolicy{}, err
	}
	return settings.Policy, nil
}

// UpdatePolicy records an admin's choice of formulas
func (s *SettlementSettingsServiceImpl) UpdatePolicy(ctx context.Context, policy models.SettlementPolicy, updatedBy string) (*models.SettlementSettings, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	settings := &models.SettlementSettings{
		Policy:    policy,
		UpdatedAt: time.Now(),
		UpdatedBy: updatedBy,
	}
	if err := s.settingsRepo.UpsertSettings(ctx, settings); err != nil {
		slog.Error("UpdatePolicy: Failed to save settlement settings", "error", err, "policy", policy)
		return nil, classify(err, "settlement settings")
	}
	slog.Info("Settlement policy updated", "killPoolPolicy", policy.KillPool, "perKillPolicy", policy.PerKill, "updatedBy", updatedBy)
	return settings, nil
}
