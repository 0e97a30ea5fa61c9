package account

import (
	"context"
	"strings"
	"time"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// RequestPasswordReset issues a reset link valid for one day. A prior
// outstanding link for the same account is superseded. Unlike login,
// this flow reports unknown emails: there is no account to reset.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	key := newVerificationKey()
	expiry := time.Now().Add(s.passwordResetTTL)
	if err := s.ledger.Replace(ctx, domain.VerificationArtifact{
		UserID:    u.ID,
		Kind:      domain.VerificationPassword,
		Token:     key,
		ExpiresAt: &expiry,
	}); err != nil {
		return err
	}

	s.notifier.SendVerificationEmail(ctx, u.FirstName, u.Email, s.passwordResetBaseURL+key, domain.VerificationPassword)

	s.audit("password_reset_requested", map[string]string{"user_id": u.ID})
	return nil
}

// ValidateResetToken checks a reset link without consuming it, so the
// frontend can show the new-password form only for live links.
func (s *Service) ValidateResetToken(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, domain.ErrMissingField("token")
	}

	art, err := s.ledger.FindByToken(ctx, domain.VerificationPassword, token)
	if err != nil {
		return domain.User{}, err
	}
	if art.Expired(time.Now()) {
		return domain.User{}, domain.ErrLinkExpired()
	}

	return s.users.GetByID(ctx, art.UserID)
}

// ConfirmPasswordReset consumes a reset link and sets the new password.
// The stored hash is untouched on any failure.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if newPassword != confirmPassword {
		return domain.ErrPasswordsDontMatch()
	}
	if newPassword == "" {
		return domain.ErrMissingField("new_password")
	}

	art, err := s.ledger.FindByToken(ctx, domain.VerificationPassword, token)
	if err != nil {
		return err
	}
	if art.Expired(time.Now()) {
		return domain.ErrLinkExpired()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, art.UserID, hash); err != nil {
		return err
	}
	if err := s.ledger.DeleteByToken(ctx, domain.VerificationPassword, token); err != nil {
		return err
	}

	// Revoke all sessions after a reset.
	_ = s.sessions.RevokeAll(ctx, art.UserID)

	s.audit("password_reset", map[string]string{"user_id": art.UserID})
	return nil
}

// ChangePassword changes the password for an authenticated user after
// re-checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, confirmPassword string) error {
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if newPassword != confirmPassword {
		return domain.ErrPasswordsDontMatch()
	}
	if currentPassword == "" || newPassword == "" {
		return domain.ErrMissingField("password")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(u.PasswordHash, currentPassword); err != nil {
		return domain.ErrInvalidCredentials()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	if err := s.recordEvent(ctx, u.Email, domain.EventPasswordUpdate); err != nil {
		return err
	}

	_ = s.sessions.RevokeAll(ctx, userID)

	s.audit("password_changed", map[string]string{"user_id": userID})
	return nil
}
