package account

import (
	"context"
	"strings"
	"time"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// IssueMFACode generates a fresh login code for the user and queues it
// over SMS. Any outstanding code is superseded. Codes are valid until
// the end of the day they were issued (UTC), checked lazily on verify.
func (s *Service) IssueMFACode(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	code, err := newMFACode()
	if err != nil {
		return err
	}

	expiry := endOfDay(time.Now())
	if err := s.ledger.Replace(ctx, domain.VerificationArtifact{
		UserID:    u.ID,
		Kind:      domain.VerificationMFACode,
		Token:     code,
		ExpiresAt: &expiry,
	}); err != nil {
		return err
	}

	s.notifier.SendSMS(ctx, u.Phone, "From: CloudForge\nVerification code\n"+code)

	s.audit("mfa_code_issued", map[string]string{"user_id": u.ID})
	return nil
}

// VerifyMFACode completes an MFA-gated login: it consumes the code and
// returns the full result with tokens. The code's owner must match the
// supplied email, compared case-insensitively.
func (s *Service) VerifyMFACode(ctx context.Context, email, code string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" {
		return LoginResult{}, domain.ErrMissingField("email")
	}
	if code == "" {
		return LoginResult{}, domain.ErrMissingField("code")
	}

	art, err := s.ledger.FindByToken(ctx, domain.VerificationMFACode, code)
	if err != nil {
		return LoginResult{}, err
	}
	if art.Expired(time.Now()) {
		return LoginResult{}, domain.ErrCodeExpired()
	}

	owner, err := s.users.GetByID(ctx, art.UserID)
	if err != nil {
		return LoginResult{}, err
	}
	claimed, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if !strings.EqualFold(owner.Email, claimed.Email) {
		return LoginResult{}, domain.ErrCodeMismatch()
	}

	if err := s.ledger.DeleteByToken(ctx, domain.VerificationMFACode, code); err != nil {
		return LoginResult{}, err
	}

	toks, err := s.issueTokens(ctx, owner.ID, owner.Role)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.recordEvent(ctx, owner.Email, domain.EventLoginAttemptSuccess); err != nil {
		return LoginResult{}, err
	}

	s.audit("mfa_verified", map[string]string{"user_id": owner.ID})
	return LoginResult{User: owner, Tokens: toks}, nil
}

// ToggleMFA flips multi-factor authentication for the account. A phone
// number must be on file before MFA can be enabled or disabled.
func (s *Service) ToggleMFA(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if strings.TrimSpace(u.Phone) == "" {
		return domain.User{}, domain.ErrPhoneRequired()
	}

	u.UsingMFA = !u.UsingMFA
	if err := s.users.SetUsingMFA(ctx, u.ID, u.UsingMFA); err != nil {
		return domain.User{}, err
	}

	if err := s.recordEvent(ctx, u.Email, domain.EventMFAUpdate); err != nil {
		return domain.User{}, err
	}

	s.audit("mfa_toggled", map[string]string{"user_id": u.ID})
	return u, nil
}
