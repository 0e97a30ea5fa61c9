package account

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// Register creates a disabled account and issues its verification link.
// The account stays enabled=false until the link is consumed. The
// notification email is queued fire-and-forget; returning does not mean
// it was delivered.
func (s *Service) Register(ctx context.Context, firstName, lastName, email, password string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if password == "" {
		return domain.User{}, domain.ErrMissingField("password")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        email,
		PasswordHash: hash,
		Role:         string(domain.RoleUser),
		Enabled:      false,
		Locked:       false,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}

	// Account links never expire: ExpiresAt stays nil.
	key := newVerificationKey()
	if err := s.ledger.Replace(ctx, domain.VerificationArtifact{
		UserID: created.ID,
		Kind:   domain.VerificationAccount,
		Token:  key,
	}); err != nil {
		return domain.User{}, err
	}

	s.notifier.SendVerificationEmail(ctx, created.FirstName, created.Email, s.verifyAccountBaseURL+key, domain.VerificationAccount)

	if err := s.recordEvent(ctx, created.Email, domain.EventRegistration); err != nil {
		return domain.User{}, err
	}

	s.audit("user_registered", map[string]string{"user_id": created.ID})
	return created, nil
}
