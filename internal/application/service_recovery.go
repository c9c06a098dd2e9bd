package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/copperline/accounts-service/internal/domain"
	"github.com/copperline/accounts-service/internal/ports"
)

// RequestPasswordReset issues a one-time reset token and mails the reset link.
// The caller sees the same nil result whether or not the account exists, so
// the endpoint cannot be used to enumerate emails. Issuing replaces any prior
// token for the same email. Mail delivery is best-effort: the token is valid
// once stored, and a delivery failure is logged, never surfaced.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		// Do not leak whether the account exists.
		s.logger.DebugContext(ctx, "reset requested for unknown email",
			"operation", "password_reset_request",
			"outcome", "ignored",
		)
		return nil
	}

	rawToken := randomHex(32)
	now := s.nowFn()
	if err := s.resetTokens.Upsert(ctx, user.Email, hashToken(rawToken), now, now.Add(s.cfg.ResetTokenTTL)); err != nil {
		return err
	}

	resetURL := strings.TrimRight(s.cfg.AppBaseURL, "/") + "/reset/" + rawToken
	msg := ports.MailMessage{
		To:      user.Email,
		Subject: "Password Reset Request",
		HTML: fmt.Sprintf(
			`<p>You requested a password reset. Click <a href="%s">here</a> to reset your password. This link is valid for %d hour(s).</p>`,
			resetURL, int(s.cfg.ResetTokenTTL.Hours()),
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "reset email delivery failed",
			"operation", "password_reset_request",
			"outcome", "delivery_failed",
			"user_id", user.UserID,
			"error", err.Error(),
		)
		return nil
	}

	s.logger.InfoContext(ctx, "reset email sent",
		"operation", "password_reset_request",
		"outcome", "success",
		"user_id", user.UserID,
	)
	return nil
}

// ResetPassword redeems a reset token and installs the new credential. The
// store performs lookup, credential update and token deletion in one
// transaction, so a token is consumed at most once even under concurrent
// redemption attempts.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return domain.ErrInvalidOrExpiredToken
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	email, err := s.resetTokens.Redeem(ctx, hashToken(req.Token), passwordHash, s.nowFn())
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset",
		"operation", "password_reset",
		"outcome", "success",
		"email", email,
	)
	return nil
}
