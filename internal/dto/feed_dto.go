package dto

import (
	"time"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// CreatePostRequest is the payload for a regular feed post.
type CreatePostRequest struct {
	Content   string `json:"content" validate:"required"`
	MediaURL  string `json:"media_url" validate:"omitempty,url,max=512"`
	MediaType string `json:"media_type" validate:"omitempty,oneof=image video"`
}

// CreateAnnouncementRequest is the payload for an announcement. Admin only.
type CreateAnnouncementRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Content  string `json:"content" validate:"required"`
	IsUrgent bool   `json:"is_urgent"`
}

// EditPostRequest updates a post's text content. Title and urgency only
// apply to announcements; IsUrgent is a pointer so omitting it leaves the
// flag alone.
type EditPostRequest struct {
	Content  string `json:"content" validate:"required"`
	Title    string `json:"title" validate:"max=255"`
	IsUrgent *bool  `json:"is_urgent"`
}

// PostResponse is the feed view of a post or announcement.
type PostResponse struct {
	ID             uint           `json:"id"`
	Author         MemberResponse `json:"author"`
	Title          string         `json:"title,omitempty"`
	Content        string         `json:"content"`
	MediaURL       string         `json:"media_url,omitempty"`
	MediaType      string         `json:"media_type,omitempty"`
	IsAnnouncement bool           `json:"is_announcement"`
	IsUrgent       bool           `json:"is_urgent"`
	IsEdited       bool           `json:"is_edited"`
	LikeCount      int            `json:"like_count"`
	LikedByViewer  bool           `json:"liked_by_viewer"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewPostResponse converts a post model into its API shape for the given
// viewer.
func NewPostResponse(post models.Post, viewerID uint) PostResponse {
	likedByViewer := false
	for _, like := range post.Likes {
		if like.UserID == viewerID {
			likedByViewer = true
			break
		}
	}

	return PostResponse{
		ID:             post.ID,
		Author:         NewMemberResponse(post.Author),
		Title:          post.Title,
		Content:        post.Content,
		MediaURL:       post.MediaURL,
		MediaType:      post.MediaType,
		IsAnnouncement: post.IsAnnouncement,
		IsUrgent:       post.IsUrgent,
		IsEdited:       post.IsEdited,
		LikeCount:      len(post.Likes),
		LikedByViewer:  likedByViewer,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
	}
}

// NewPostResponseSlice converts a list of posts for the given viewer.
func NewPostResponseSlice(posts []models.Post, viewerID uint) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, NewPostResponse(post, viewerID))
	}
	return out
}

// FeedResponse is the assembled home feed: the announcement carousel, the
// viewer's still-pinned urgent announcements, and the regular timeline.
type FeedResponse struct {
	Announcements []PostResponse `json:"announcements"`
	Pinned        []PostResponse `json:"pinned"`
	Posts         []PostResponse `json:"posts"`
}

// LikeResponse reports the state of a like toggle.
type LikeResponse struct {
	Liked bool `json:"liked"`
}
