package dto

import (
	"time"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// UpdateAltTextRequest replaces a media item's accessibility description.
type UpdateAltTextRequest struct {
	AltText string `json:"alt_text" validate:"required,max=500"`
}

// AlbumMediaResponse is the album view of an uploaded photo or video.
type AlbumMediaResponse struct {
	ID           uint           `json:"id"`
	Uploader     MemberResponse `json:"uploader"`
	URL          string         `json:"url"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`
	Type         string         `json:"type"`
	AltText      string         `json:"alt_text"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewAlbumMediaResponse converts an album item into its API shape.
func NewAlbumMediaResponse(media models.AlbumMedia) AlbumMediaResponse {
	return AlbumMediaResponse{
		ID:           media.ID,
		Uploader:     NewMemberResponse(media.Uploader),
		URL:          media.URL,
		ThumbnailURL: media.ThumbnailURL,
		Type:         media.Type,
		AltText:      media.AltText,
		CreatedAt:    media.CreatedAt,
	}
}

// NewAlbumMediaResponseSlice converts a list of album items.
func NewAlbumMediaResponseSlice(items []models.AlbumMedia) []AlbumMediaResponse {
	out := make([]AlbumMediaResponse, 0, len(items))
	for _, media := range items {
		out = append(out, NewAlbumMediaResponse(media))
	}
	return out
}

// AlbumPageResponse wraps one page of the album with its total size.
type AlbumPageResponse struct {
	Items []AlbumMediaResponse `json:"items"`
	Total int64                `json:"total"`
}
