package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// PostRepository persists feed posts, announcements and their reactions.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post together with its comments, likes and
	// dismissals in one transaction.
	Delete(ctx context.Context, id uint) error

	ListAnnouncements(ctx context.Context, limit int) ([]models.Post, error)
	ListUrgentUndismissed(ctx context.Context, userID uint) ([]models.Post, error)
	ListRegular(ctx context.Context, limit, offset int) ([]models.Post, error)

	// ToggleLike flips the viewer's like on a post and reports the
	// resulting state.
	ToggleLike(ctx context.Context, postID, userID uint) (bool, error)
	// Dismiss records that the user has hidden an urgent announcement.
	// Repeated dismissals are a no-op.
	Dismiss(ctx context.Context, postID, userID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository constructs a GORM-backed repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		First(&post, id).Error
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return err
		}

		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if err := deleteComments(tx, commentIDs); err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostDismissal{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Post{}, id).Error
	})
}

func (r *postRepository) ListAnnouncements(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Where("is_announcement = ?", true).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListUrgentUndismissed(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Where("is_announcement = ? AND is_urgent = ?", true, true).
		Where("id NOT IN (?)", r.db.Model(&models.PostDismissal{}).
			Select("post_id").
			Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListRegular(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Where("is_announcement = ?", false).
		Order("created_at DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Post{}, postID).Error; err != nil {
			return err
		}

		var existing models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == nil:
			liked = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error
		default:
			return err
		}
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent toggle inserted first; the like stands.
		return true, nil
	}
	return liked, err
}

func (r *postRepository) Dismiss(ctx context.Context, postID, userID uint) error {
	err := r.db.WithContext(ctx).Create(&models.PostDismissal{PostID: postID, UserID: userID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}
