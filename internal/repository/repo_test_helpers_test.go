package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.SystemSettings{},
		&models.Post{},
		&models.PostLike{},
		&models.PostDismissal{},
		&models.Comment{},
		&models.CommentLike{},
		&models.ChatMessage{},
		&models.MessageReaction{},
		&models.AlbumMedia{},
		&models.Testimonial{},
		&models.Notification{},
		&models.PushSubscription{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "Member",
		Position:  "Cousin",
		Role:      models.RoleMember,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
