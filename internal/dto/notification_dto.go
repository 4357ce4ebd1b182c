package dto

import (
	"time"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// SubscribePushRequest stores a browser's Web Push subscription.
type SubscribePushRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url,max=512"`
	P256dh   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
}

// UnsubscribePushRequest removes a subscription by endpoint.
type UnsubscribePushRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url,max=512"`
}

// NotificationResponse is one entry in a member's notification tray.
type NotificationResponse struct {
	ID        uint           `json:"id"`
	Content   string         `json:"content"`
	Link      string         `json:"link,omitempty"`
	IsRead    bool           `json:"is_read"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewNotificationResponse converts a notification into its API shape.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Content:   notification.Content,
		Link:      notification.Link,
		IsRead:    notification.IsRead,
		Data:      notification.Data,
		CreatedAt: notification.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a list of notifications.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, notification := range items {
		out = append(out, NewNotificationResponse(notification))
	}
	return out
}

// UnreadCountResponse reports the badge count for the tray icon.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
