package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/copperline/accounts-service/internal/domain"
)

type resetTokenRepository struct {
	db *gorm.DB
}

// Upsert stores a token hash for the email, replacing any prior token. The
// conflict target is the unique email index, which is what enforces the
// at-most-one-live-token invariant.
func (r *resetTokenRepository) Upsert(ctx context.Context, email, tokenHash string, createdAt, expiresAt time.Time) error {
	rec := resetTokenModel{
		Email:     email,
		TokenHash: tokenHash,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{
				"token_hash": tokenHash,
				"created_at": createdAt,
				"expires_at": expiresAt,
			}),
		}).
		Create(&rec).Error
}

// Redeem consumes a token in one transaction: lock the live token row, lock
// and update the matching user, delete the token. A concurrent redemption of
// the same token blocks on the row lock and, once the winner commits the
// delete, finds no row and fails with ErrInvalidOrExpiredToken. Expired rows
// are treated as absent; they are physically removed when the next issue for
// the same email upserts over them.
func (r *resetTokenRepository) Redeem(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (string, error) {
	var email string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var token resetTokenModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_hash = ?", tokenHash).
			Where("expires_at > ?", now).
			Take(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrInvalidOrExpiredToken
			}
			return err
		}

		var user userModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ?", token.Email).
			Take(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Store desync: a live token whose account vanished.
				return domain.ErrUserNotFound
			}
			return err
		}

		if err := tx.Model(&userModel{}).
			Where("user_id = ?", user.UserID).
			Updates(map[string]any{
				"password_hash": newPasswordHash,
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Where("token_id = ?", token.TokenID).Delete(&resetTokenModel{}).Error; err != nil {
			return err
		}
		email = token.Email
		return nil
	})
	if err != nil {
		return "", err
	}
	return email, nil
}
