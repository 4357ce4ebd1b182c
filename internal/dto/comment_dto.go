package dto

import (
	"time"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// CreateCommentRequest adds a comment or, when ParentID is set, a reply.
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required"`
	ParentID *uint  `json:"parent_id"`
}

// EditCommentRequest updates a comment's text.
type EditCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// CommentResponse is one node of a post's comment tree.
type CommentResponse struct {
	ID            uint              `json:"id"`
	PostID        uint              `json:"post_id"`
	ParentID      *uint             `json:"parent_id,omitempty"`
	Author        MemberResponse    `json:"author"`
	Content       string            `json:"content"`
	LikeCount     int               `json:"like_count"`
	LikedByViewer bool              `json:"liked_by_viewer"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Replies       []CommentResponse `json:"replies"`
}

// NewCommentResponse converts a comment model into its API shape for the
// given viewer. Replies start empty; tree assembly fills them in.
func NewCommentResponse(comment models.Comment, viewerID uint) CommentResponse {
	likedByViewer := false
	for _, like := range comment.Likes {
		if like.UserID == viewerID {
			likedByViewer = true
			break
		}
	}

	return CommentResponse{
		ID:            comment.ID,
		PostID:        comment.PostID,
		ParentID:      comment.ParentID,
		Author:        NewMemberResponse(comment.Author),
		Content:       comment.Content,
		LikeCount:     len(comment.Likes),
		LikedByViewer: likedByViewer,
		CreatedAt:     comment.CreatedAt,
		UpdatedAt:     comment.UpdatedAt,
		Replies:       []CommentResponse{},
	}
}

// NewCommentTree converts a post's flat comment list into the nested tree
// the client renders: top-level comments in order, replies beneath their
// parents. Replies whose parent was removed are dropped.
func NewCommentTree(comments []models.Comment, viewerID uint) []CommentResponse {
	known := make(map[uint]struct{}, len(comments))
	for _, comment := range comments {
		known[comment.ID] = struct{}{}
	}

	children := make(map[uint][]models.Comment)
	roots := make([]models.Comment, 0)
	for _, comment := range comments {
		if comment.ParentID == nil {
			roots = append(roots, comment)
			continue
		}
		if _, ok := known[*comment.ParentID]; ok {
			children[*comment.ParentID] = append(children[*comment.ParentID], comment)
		}
	}

	var build func(comment models.Comment) CommentResponse
	build = func(comment models.Comment) CommentResponse {
		node := NewCommentResponse(comment, viewerID)
		for _, child := range children[comment.ID] {
			node.Replies = append(node.Replies, build(child))
		}
		return node
	}

	tree := make([]CommentResponse, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}
	return tree
}
