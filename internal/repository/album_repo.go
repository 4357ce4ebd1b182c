package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// AlbumRepository persists the shared family album.
type AlbumRepository interface {
	Create(ctx context.Context, media *models.AlbumMedia) error
	GetByID(ctx context.Context, id uint) (models.AlbumMedia, error)
	Update(ctx context.Context, media *models.AlbumMedia) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.AlbumMedia, int64, error)
}

type albumRepository struct {
	db *gorm.DB
}

// NewAlbumRepository constructs a GORM-backed repository.
func NewAlbumRepository(db *gorm.DB) AlbumRepository {
	return &albumRepository{db: db}
}

func (r *albumRepository) Create(ctx context.Context, media *models.AlbumMedia) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *albumRepository) GetByID(ctx context.Context, id uint) (models.AlbumMedia, error) {
	var media models.AlbumMedia
	if err := r.db.WithContext(ctx).Preload("Uploader").First(&media, id).Error; err != nil {
		return models.AlbumMedia{}, err
	}
	return media, nil
}

func (r *albumRepository) Update(ctx context.Context, media *models.AlbumMedia) error {
	return r.db.WithContext(ctx).Save(media).Error
}

func (r *albumRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.AlbumMedia{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *albumRepository) List(ctx context.Context, limit, offset int) ([]models.AlbumMedia, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.AlbumMedia{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).
		Preload("Uploader").
		Order("created_at DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var items []models.AlbumMedia
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
