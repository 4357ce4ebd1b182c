package models

import "time"

const (
	// SettingsID is the primary key of the single settings row.
	SettingsID = "global"
	// DefaultFamilySecret is used when no settings row exists yet.
	DefaultFamilySecret = "familyfirst"
	// LegacySecretBypass is the original security answer, kept so early
	// members can still register. Compared case-insensitively.
	LegacySecretBypass = "mercy"
)

// SystemSettings is a single global row holding the family secret.
type SystemSettings struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	FamilySecret string    `gorm:"size:255;not null" json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}
