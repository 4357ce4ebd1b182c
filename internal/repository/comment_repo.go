package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// CommentRepository persists post comments, replies and their likes.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	// DeleteSubtree removes the comment along with every reply beneath
	// it and all of their likes.
	DeleteSubtree(ctx context.Context, id uint) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	ToggleLike(ctx context.Context, commentID, userID uint) (bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository constructs a GORM-backed repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		First(&comment, id).Error
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) DeleteSubtree(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Comment{}, id).Error; err != nil {
			return err
		}

		ids, err := commentSubtreeIDs(tx, "id = ?", id)
		if err != nil {
			return err
		}
		return deleteComments(tx, ids)
	})
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) ToggleLike(ctx context.Context, commentID, userID uint) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Comment{}, commentID).Error; err != nil {
			return err
		}

		var existing models.CommentLike
		err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&existing).Error
		switch {
		case err == nil:
			liked = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.CommentLike{CommentID: commentID, UserID: userID}).Error
		default:
			return err
		}
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, nil
	}
	return liked, err
}
