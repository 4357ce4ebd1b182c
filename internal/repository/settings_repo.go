package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// SettingsRepository persists the single global settings row.
type SettingsRepository interface {
	// Get returns the stored settings, falling back to defaults when
	// the row has not been created yet.
	Get(ctx context.Context) (models.SystemSettings, error)
	Upsert(ctx context.Context, settings *models.SystemSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository constructs a GORM-backed repository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (models.SystemSettings, error) {
	var settings models.SystemSettings
	err := r.db.WithContext(ctx).Where("id = ?", models.SettingsID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SystemSettings{
			ID:           models.SettingsID,
			FamilySecret: models.DefaultFamilySecret,
		}, nil
	}
	if err != nil {
		return models.SystemSettings{}, err
	}
	return settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *models.SystemSettings) error {
	settings.ID = models.SettingsID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"family_secret"}),
		}).
		Create(settings).Error
}
