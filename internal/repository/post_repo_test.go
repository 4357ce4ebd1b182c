package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/models"
)

func TestPostRepositoryToggleLikeInverts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	author := createTestUser(t, db, "author@family.test")
	liker := createTestUser(t, db, "liker@family.test")

	post := models.Post{AuthorID: author.ID, Content: "hello"}
	require.NoError(t, db.Create(&post).Error)

	liked, err := repo.ToggleLike(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)
	require.True(t, liked)

	var count int64
	require.NoError(t, db.Model(&models.PostLike{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	liked, err = repo.ToggleLike(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)
	require.False(t, liked)

	require.NoError(t, db.Model(&models.PostLike{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestPostRepositoryLikeUniqueIndexBacksStopsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author@family.test")

	post := models.Post{AuthorID: author.ID, Content: "hello"}
	require.NoError(t, db.Create(&post).Error)

	require.NoError(t, db.Create(&models.PostLike{PostID: post.ID, UserID: author.ID}).Error)
	err := db.Create(&models.PostLike{PostID: post.ID, UserID: author.ID}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestPostRepositoryDismissIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	admin := createTestUser(t, db, "admin@family.test")
	member := createTestUser(t, db, "member@family.test")

	urgent := models.Post{AuthorID: admin.ID, Title: "Move", Content: "we moved", IsAnnouncement: true, IsUrgent: true}
	require.NoError(t, db.Create(&urgent).Error)

	require.NoError(t, repo.Dismiss(context.Background(), urgent.ID, member.ID))
	require.NoError(t, repo.Dismiss(context.Background(), urgent.ID, member.ID))

	var count int64
	require.NoError(t, db.Model(&models.PostDismissal{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPostRepositoryUrgentListHidesDismissed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	admin := createTestUser(t, db, "admin@family.test")
	member := createTestUser(t, db, "member@family.test")

	first := models.Post{AuthorID: admin.ID, Title: "One", Content: "a", IsAnnouncement: true, IsUrgent: true}
	second := models.Post{AuthorID: admin.ID, Title: "Two", Content: "b", IsAnnouncement: true, IsUrgent: true}
	calm := models.Post{AuthorID: admin.ID, Title: "Calm", Content: "c", IsAnnouncement: true}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&calm).Error)

	require.NoError(t, repo.Dismiss(context.Background(), first.ID, member.ID))

	pinned, err := repo.ListUrgentUndismissed(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, pinned, 1)
	require.Equal(t, second.ID, pinned[0].ID)

	// Another member's view is untouched by the dismissal.
	pinned, err = repo.ListUrgentUndismissed(context.Background(), admin.ID)
	require.NoError(t, err)
	require.Len(t, pinned, 2)
}

func TestPostRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	author := createTestUser(t, db, "author@family.test")
	other := createTestUser(t, db, "other@family.test")

	post := models.Post{AuthorID: author.ID, Content: "to be removed"}
	require.NoError(t, db.Create(&post).Error)

	comment := models.Comment{PostID: post.ID, AuthorID: other.ID, Content: "nice"}
	require.NoError(t, db.Create(&comment).Error)
	reply := models.Comment{PostID: post.ID, AuthorID: author.ID, ParentID: &comment.ID, Content: "thanks"}
	require.NoError(t, db.Create(&reply).Error)
	require.NoError(t, db.Create(&models.CommentLike{CommentID: comment.ID, UserID: author.ID}).Error)
	require.NoError(t, db.Create(&models.PostLike{PostID: post.ID, UserID: other.ID}).Error)

	require.NoError(t, repo.Delete(context.Background(), post.ID))

	for _, model := range []interface{}{&models.Post{}, &models.Comment{}, &models.CommentLike{}, &models.PostLike{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		require.Zero(t, count)
	}
}
