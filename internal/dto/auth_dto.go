package dto

import "github.com/lovemyfam/common-room-api/internal/models"

// RegisterRequest is the payload for joining the room. The family secret
// gates entry; everything else becomes the member profile.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email,max=160"`
	FirstName    string `json:"first_name" validate:"required,max=80"`
	LastName     string `json:"last_name" validate:"required,max=80"`
	Position     string `json:"position" validate:"required,max=120"`
	Alias        string `json:"alias" validate:"max=80"`
	FamilySecret string `json:"family_secret" validate:"required"`
}

// LoginRequest identifies a returning member by email plus the secret.
type LoginRequest struct {
	Email        string `json:"email" validate:"required,email"`
	FamilySecret string `json:"family_secret" validate:"required"`
}

// CheckSecretRequest verifies the family secret without touching a session.
type CheckSecretRequest struct {
	FamilySecret string `json:"family_secret" validate:"required"`
}

// UpdateSecretRequest rotates the family secret. Admin only.
type UpdateSecretRequest struct {
	FamilySecret string `json:"family_secret" validate:"required"`
}

// SessionResponse is returned by register and login alongside the cookie.
type SessionResponse struct {
	User MemberResponse `json:"user"`
}

// NewSessionResponse converts the authenticated user into its API shape.
func NewSessionResponse(user models.User) SessionResponse {
	return SessionResponse{User: NewMemberResponse(user)}
}
