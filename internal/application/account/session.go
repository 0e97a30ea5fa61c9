package account

import (
	"context"
	"strings"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// Refresh exchanges a live refresh token for a fresh token pair. The
// old refresh token is revoked (rotation).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthTokens, domain.User, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return AuthTokens{}, domain.User{}, domain.ErrRefreshTokenInvalid()
	}

	userID, err := s.sessions.GetUserIDByRefreshToken(ctx, refreshToken)
	if err != nil {
		return AuthTokens{}, domain.User{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return AuthTokens{}, domain.User{}, err
	}
	if u.Locked {
		_ = s.sessions.RevokeAll(ctx, userID)
		return AuthTokens{}, domain.User{}, domain.ErrAccountLocked()
	}

	if err := s.sessions.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return AuthTokens{}, domain.User{}, err
	}

	toks, err := s.issueTokens(ctx, u.ID, u.Role)
	if err != nil {
		return AuthTokens{}, domain.User{}, err
	}
	return toks, u, nil
}

// Logout revokes a single refresh token. Revoking an unknown token is
// not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeRefreshToken(ctx, refreshToken)
}
