package dto

import (
	"time"

	"github.com/spec-kit/pass-service/internal/domain"
)

// InviteRequest payload for inviting a participant.
type InviteRequest struct {
	Email string `json:"email"`
}

// LoginRequest payload for admin login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StatusUpdateRequest payload for admin review.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the wire shape of a participant record. The password hash
// is never serialized.
type UserResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	College        string    `json:"college"`
	AadharNumber   string    `json:"aadharNumber"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	AadharPhoto    string    `json:"aadharPhoto"`
	CollegeIDPhoto string    `json:"collegeIdPhoto"`
	Photo          string    `json:"photo,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUserResponse maps a domain record onto its wire shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		College:        user.College,
		AadharNumber:   user.AadharNumber,
		Role:           string(user.Role),
		Status:         string(user.Status),
		AadharPhoto:    user.AadharPhotoURL,
		CollegeIDPhoto: user.CollegeIDPhotoURL,
		Photo:          user.PhotoURL,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// NewUserResponses maps a slice of records.
func NewUserResponses(users []domain.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, NewUserResponse(&users[i]))
	}
	return result
}
