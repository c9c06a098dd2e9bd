package postgres

import (
	"gorm.io/gorm"

	"github.com/copperline/accounts-service/internal/ports"
)

// Repositories bundles the Postgres-backed store implementations so bootstrap
// wires them in one place.
type Repositories struct {
	Users       ports.UserRepository
	ResetTokens ports.ResetTokenRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:       &userRepository{db: db},
		ResetTokens: &resetTokenRepository{db: db},
	}
}
