package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// SignUpRequest payload for new accounts.
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// SignInRequest payload for login.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileRequest payload. Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	UID           string   `json:"uid"`
	Email         string   `json:"email"`
	DisplayName   string   `json:"display_name"`
	Role          string   `json:"role,omitempty"`
	Provider      string   `json:"provider"`
	ProviderIDs   []string `json:"provider_ids"`
	EmailVerified bool     `json:"email_verified"`
}

// SessionResponse is the remembered sign-in of a profile.
type SessionResponse struct {
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

// NewUserResponse maps an identity and its role label.
func NewUserResponse(identity *domain.Identity, role domain.UserRole) UserResponse {
	providers := identity.ProviderIDs
	if providers == nil {
		providers = []string{}
	}
	return UserResponse{
		UID:           identity.UID,
		Email:         identity.Email,
		DisplayName:   identity.DisplayName,
		Role:          string(role),
		Provider:      string(identity.Provider()),
		ProviderIDs:   providers,
		EmailVerified: identity.EmailVerified,
	}
}
