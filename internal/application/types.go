package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/copperline/accounts-service/internal/domain"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Email string `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type ResetPasswordRequest struct {
	Token       string `json:"-"`
	NewPassword string `json:"password"`
}

// UserItem is the admin-listing projection of a user. It deliberately has no
// password-hash field, so the secret cannot leak through this surface.
type UserItem struct {
	UserID    uuid.UUID   `json:"id"`
	Name      string      `json:"name,omitempty"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type UpdateRoleResponse struct {
	Email string `json:"user"`
}

type OAuthAuthorizeResponse struct {
	State        string
	AuthorizeURL string
}

type OAuthCallbackResponse struct {
	UserID      uuid.UUID
	Token       string
	RedirectURL string
}

func toUserItem(u domain.User) UserItem {
	return UserItem{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
