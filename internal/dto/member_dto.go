package dto

import (
	"time"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// UpdateMemberRequest carries the editable profile fields. Pointers
// distinguish "leave unchanged" from "set to empty".
type UpdateMemberRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=80"`
	LastName  *string `json:"last_name" validate:"omitempty,max=80"`
	Position  *string `json:"position" validate:"omitempty,max=120"`
	Alias     *string `json:"alias" validate:"omitempty,max=80"`
	Status    *string `json:"status" validate:"omitempty,max=160"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	Location  *string `json:"location" validate:"omitempty,max=160"`
	Phone     *string `json:"phone" validate:"omitempty,max=40"`
}

// MemberResponse is the directory view of a family member.
type MemberResponse struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DisplayName  string    `json:"display_name"`
	Position     string    `json:"position"`
	Alias        string    `json:"alias,omitempty"`
	Role         string    `json:"role"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Status       string    `json:"status,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Location     string    `json:"location,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewMemberResponse converts a user model into its API shape.
func NewMemberResponse(user models.User) MemberResponse {
	return MemberResponse{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		DisplayName:  user.DisplayName(),
		Position:     user.Position,
		Alias:        user.Alias,
		Role:         string(user.Role),
		ProfileImage: user.ProfileImage,
		Status:       user.Status,
		Bio:          user.Bio,
		Location:     user.Location,
		Phone:        user.Phone,
		CreatedAt:    user.CreatedAt,
	}
}

// NewMemberResponseSlice converts a list of users.
func NewMemberResponseSlice(users []models.User) []MemberResponse {
	out := make([]MemberResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewMemberResponse(user))
	}
	return out
}
