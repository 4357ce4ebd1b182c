package models

import "time"

// Media types stored in the family album.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// AlbumMedia is a photo or video in the shared family album. Alt text is
// mandatory at upload time.
type AlbumMedia struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UploaderID   uint      `gorm:"index;not null" json:"uploader_id"`
	URL          string    `gorm:"size:512;not null" json:"url"`
	ThumbnailURL string    `gorm:"size:512" json:"thumbnail_url"`
	Type         string    `gorm:"size:16;not null" json:"type"`
	AltText      string    `gorm:"type:text;not null" json:"alt_text"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Uploader User `gorm:"foreignKey:UploaderID" json:"uploader"`
}
