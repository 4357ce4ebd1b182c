package dto

import (
	"time"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// SendMessageRequest posts a message to the family room, optionally as a
// reply to an earlier message.
type SendMessageRequest struct {
	Content   string `json:"content" validate:"required,max=4000"`
	ReplyToID *uint  `json:"reply_to_id"`
}

// ToggleReactionRequest flips an emoji reaction on a message.
type ToggleReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,max=32"`
}

// ReactionResponse groups a message's reactions by emoji.
type ReactionResponse struct {
	Emoji   string `json:"emoji"`
	Count   int    `json:"count"`
	UserIDs []uint `json:"user_ids"`
}

// MessageResponse is the chat view of a message. ReplyTo is a shallow
// preview of the quoted message, nil when the quote's author was removed.
type MessageResponse struct {
	ID        uint               `json:"id"`
	Author    MemberResponse     `json:"author"`
	Content   string             `json:"content"`
	ReplyTo   *MessagePreview    `json:"reply_to,omitempty"`
	Reactions []ReactionResponse `json:"reactions"`
	CreatedAt time.Time          `json:"created_at"`
}

// MessagePreview is the quoted fragment shown above a reply.
type MessagePreview struct {
	ID         uint   `json:"id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}

// NewMessageResponse converts a chat message into its API shape.
func NewMessageResponse(message models.ChatMessage) MessageResponse {
	resp := MessageResponse{
		ID:        message.ID,
		Author:    NewMemberResponse(message.Author),
		Content:   message.Content,
		Reactions: groupReactions(message.Reactions),
		CreatedAt: message.CreatedAt,
	}

	if message.ReplyTo != nil && message.ReplyTo.ID != 0 {
		resp.ReplyTo = &MessagePreview{
			ID:         message.ReplyTo.ID,
			AuthorName: message.ReplyTo.Author.DisplayName(),
			Content:    message.ReplyTo.Content,
		}
	}

	return resp
}

// NewMessageResponseSlice converts a list of chat messages.
func NewMessageResponseSlice(messages []models.ChatMessage) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}

func groupReactions(reactions []models.MessageReaction) []ReactionResponse {
	grouped := make(map[string]*ReactionResponse)
	order := make([]string, 0)
	for _, reaction := range reactions {
		entry, ok := grouped[reaction.Emoji]
		if !ok {
			entry = &ReactionResponse{Emoji: reaction.Emoji}
			grouped[reaction.Emoji] = entry
			order = append(order, reaction.Emoji)
		}
		entry.Count++
		entry.UserIDs = append(entry.UserIDs, reaction.UserID)
	}

	out := make([]ReactionResponse, 0, len(order))
	for _, emoji := range order {
		out = append(out, *grouped[emoji])
	}
	return out
}
