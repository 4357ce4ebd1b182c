package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// ChatRepository persists the shared family chat room.
type ChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	GetByID(ctx context.Context, id uint) (models.ChatMessage, error)
	// List returns messages in chronological order. When before is
	// non-zero only messages older than that id are returned, which
	// drives backward pagination.
	List(ctx context.Context, before uint, limit int) ([]models.ChatMessage, error)
	// ToggleReaction flips the user's emoji reaction on a message and
	// reports whether the reaction now exists.
	ToggleReaction(ctx context.Context, messageID, userID uint, emoji string) (bool, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository constructs a GORM-backed repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) GetByID(ctx context.Context, id uint) (models.ChatMessage, error) {
	var message models.ChatMessage
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("ReplyTo").
		Preload("ReplyTo.Author").
		Preload("Reactions").
		First(&message, id).Error
	if err != nil {
		return models.ChatMessage{}, err
	}
	return message, nil
}

func (r *chatRepository) List(ctx context.Context, before uint, limit int) ([]models.ChatMessage, error) {
	q := r.db.WithContext(ctx).
		Preload("Author").
		Preload("ReplyTo").
		Preload("ReplyTo.Author").
		Preload("Reactions").
		Order("id DESC")
	if before > 0 {
		q = q.Where("id < ?", before)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var messages []models.ChatMessage
	if err := q.Find(&messages).Error; err != nil {
		return nil, err
	}

	// Newest-first from the query, oldest-first for the caller.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *chatRepository) ToggleReaction(ctx context.Context, messageID, userID uint, emoji string) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.ChatMessage{}, messageID).Error; err != nil {
			return err
		}

		var existing models.MessageReaction
		err := tx.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
			First(&existing).Error
		switch {
		case err == nil:
			added = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			added = true
			return tx.Create(&models.MessageReaction{MessageID: messageID, UserID: userID, Emoji: emoji}).Error
		default:
			return err
		}
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, nil
	}
	return added, err
}
