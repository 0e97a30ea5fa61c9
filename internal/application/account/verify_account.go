package account

import (
	"context"
	"strings"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// RequestAccountVerification issues a fresh verification link for an
// existing, still-disabled account. The previous link, if any, is
// superseded and will no longer be accepted.
func (s *Service) RequestAccountVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	key := newVerificationKey()
	if err := s.ledger.Replace(ctx, domain.VerificationArtifact{
		UserID: u.ID,
		Kind:   domain.VerificationAccount,
		Token:  key,
	}); err != nil {
		return err
	}

	s.notifier.SendVerificationEmail(ctx, u.FirstName, u.Email, s.verifyAccountBaseURL+key, domain.VerificationAccount)
	return nil
}

// VerifyAccount consumes an account-verification link and enables the
// account.
//
// TODO: decide whether consumed account links should be deleted. Today
// the artifact stays in the ledger, so the same link can be replayed
// and will enable the account again.
func (s *Service) VerifyAccount(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, domain.ErrMissingField("token")
	}

	art, err := s.ledger.FindByToken(ctx, domain.VerificationAccount, token)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.users.GetByID(ctx, art.UserID)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.users.SetEnabled(ctx, u.ID, true); err != nil {
		return domain.User{}, err
	}
	u.Enabled = true

	s.audit("account_verified", map[string]string{"user_id": u.ID})
	return u, nil
}
