package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lovemyfam/common-room-api/internal/models"
)

func TestChatRepositoryReactionTripleSemantics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	author := createTestUser(t, db, "author@family.test")

	message := models.ChatMessage{AuthorID: author.ID, Content: "hi"}
	require.NoError(t, db.Create(&message).Error)

	added, err := repo.ToggleReaction(context.Background(), message.ID, author.ID, "❤️")
	require.NoError(t, err)
	require.True(t, added)

	// A second, distinct emoji from the same user coexists.
	added, err = repo.ToggleReaction(context.Background(), message.ID, author.ID, "😂")
	require.NoError(t, err)
	require.True(t, added)

	var count int64
	require.NoError(t, db.Model(&models.MessageReaction{}).Count(&count).Error)
	require.Equal(t, int64(2), count)

	// Repeating the same emoji removes only that reaction.
	added, err = repo.ToggleReaction(context.Background(), message.ID, author.ID, "❤️")
	require.NoError(t, err)
	require.False(t, added)

	require.NoError(t, db.Model(&models.MessageReaction{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestChatRepositoryListPaginatesBackwards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	author := createTestUser(t, db, "author@family.test")

	var ids []uint
	for _, content := range []string{"one", "two", "three", "four"} {
		message := models.ChatMessage{AuthorID: author.ID, Content: content}
		require.NoError(t, db.Create(&message).Error)
		ids = append(ids, message.ID)
	}

	latest, err := repo.List(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, "three", latest[0].Content)
	require.Equal(t, "four", latest[1].Content)

	older, err := repo.List(context.Background(), latest[0].ID, 2)
	require.NoError(t, err)
	require.Len(t, older, 2)
	require.Equal(t, "one", older[0].Content)
	require.Equal(t, "two", older[1].Content)
	require.Equal(t, ids[0], older[0].ID)
}

func TestChatRepositoryListPreloadsReply(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	author := createTestUser(t, db, "author@family.test")

	original := models.ChatMessage{AuthorID: author.ID, Content: "original"}
	require.NoError(t, db.Create(&original).Error)
	reply := models.ChatMessage{AuthorID: author.ID, ReplyToID: &original.ID, Content: "reply"}
	require.NoError(t, db.Create(&reply).Error)

	messages, err := repo.List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.NotNil(t, messages[1].ReplyTo)
	require.Equal(t, "original", messages[1].ReplyTo.Content)
}
