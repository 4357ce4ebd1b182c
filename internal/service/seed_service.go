package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/internal/repository"
)

// Seeder prepares the minimum rows the room needs: the global settings
// record and exactly one admin account.
type Seeder struct {
	users    repository.UserRepository
	settings repository.SettingsRepository
	logger   zerolog.Logger
}

// NewSeeder constructs the seeder.
func NewSeeder(users repository.UserRepository, settings repository.SettingsRepository, logger zerolog.Logger) *Seeder {
	return &Seeder{
		users:    users,
		settings: settings,
		logger:   logger.With().Str("component", "seeder").Logger(),
	}
}

// Run is idempotent: it creates the settings row on first boot and makes
// sure the configured admin email owns the admin role.
func (s *Seeder) Run(ctx context.Context, adminEmail, adminFirstName, adminLastName string) error {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if err := s.settings.Upsert(ctx, &settings); err != nil {
		return err
	}

	admin, err := s.users.GetByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		if admin.Role == models.RoleAdmin {
			return nil
		}
		admin.Role = models.RoleAdmin
		if err := s.users.Update(ctx, &admin); err != nil {
			return err
		}
		s.logger.Info().Uint("user_id", admin.ID).Msg("existing member promoted to admin")
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin = models.User{
			Email:     adminEmail,
			FirstName: adminFirstName,
			LastName:  adminLastName,
			Position:  "Admin",
			Role:      models.RoleAdmin,
		}
		if err := s.users.Create(ctx, &admin); err != nil {
			return err
		}
		s.logger.Info().Uint("user_id", admin.ID).Msg("admin account seeded")
		return nil
	default:
		return err
	}
}
