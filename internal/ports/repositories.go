package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/copperline/accounts-service/internal/domain"
)

// CreateUserParams captures the inputs for a new user row. The repository
// assigns the id and maps the unique-email violation to domain.ErrDuplicateEmail.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         domain.Role
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for user identities.
// List never loads password hashes; every other secret-bearing read stays
// internal to the auth flows.
type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error
	UpdateRole(ctx context.Context, userID uuid.UUID, role domain.Role, updatedAt time.Time) error
	List(ctx context.Context) ([]domain.User, error)
}

// ResetTokenRepository owns the password-reset token lifecycle.
//
// Upsert replaces any prior token for the email, enforcing the at-most-one
// live token invariant at the store. Redeem is a single transaction covering
// token lookup, credential mutation and token deletion: concurrent redemptions
// of the same token see exactly one winner, the rest fail with
// domain.ErrInvalidOrExpiredToken. Only token hashes are persisted.
type ResetTokenRepository interface {
	Upsert(ctx context.Context, email, tokenHash string, createdAt, expiresAt time.Time) error
	Redeem(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (string, error)
}
