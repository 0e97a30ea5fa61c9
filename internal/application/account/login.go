package account

import (
	"context"
	"strings"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// Login authenticates a user and either issues tokens or signals that
// an MFA code must be verified first.
//
// Event ordering: LOGIN_ATTEMPT is recorded before the credential check
// whenever the account exists; LOGIN_ATTEMPT_SUCCESS only for non-MFA
// logins; LOGIN_ATTEMPT_FAILURE on any failure for an existing account.
// IMPORTANT: must not leak whether the email exists (avoid user
// enumeration) - every credential failure maps to the same error.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	found := err == nil

	if found {
		if err := s.recordEvent(ctx, email, domain.EventLoginAttempt); err != nil {
			return LoginResult{}, err
		}
	}

	res, authErr := s.checkCredentials(ctx, u, found, password)
	if authErr != nil {
		if found {
			// Failure event is best-effort: the caller gets the auth
			// error either way.
			_ = s.recordEvent(ctx, email, domain.EventLoginAttemptFailure)
		}
		s.audit("login_failed", map[string]string{"email": email})
		return LoginResult{}, authErr
	}

	if !res.MFAPending {
		if err := s.recordEvent(ctx, email, domain.EventLoginAttemptSuccess); err != nil {
			return LoginResult{}, err
		}
		s.audit("login_success", map[string]string{"user_id": res.User.ID})
	}
	return res, nil
}

// checkCredentials is the single pass-or-fail credential verification.
// A missing record still burns a hash comparison so the timing profile
// matches a wrong password.
func (s *Service) checkCredentials(ctx context.Context, u domain.User, found bool, password string) (LoginResult, error) {
	if !found {
		_ = s.hasher.Compare(antiTimingHash, password)
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}
	if !u.Enabled {
		return LoginResult{}, domain.ErrAccountDisabled()
	}
	if u.Locked {
		return LoginResult{}, domain.ErrAccountLocked()
	}

	if u.UsingMFA {
		// Partial result: principal only, no tokens. The caller issues
		// and verifies an MFA code next.
		return LoginResult{User: u, MFAPending: true}, nil
	}

	toks, err := s.issueTokens(ctx, u.ID, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: u, Tokens: toks}, nil
}

// antiTimingHash is a throwaway bcrypt hash of a random string, compared
// against when the account does not exist.
const antiTimingHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
