package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cloudforge/invoice-service/internal/application/account"
	"github.com/cloudforge/invoice-service/internal/domain"
)

// JWTSigner issues HS256 access tokens carrying the principal: user id,
// role and the authorities derived from it.
type JWTSigner struct {
	secret []byte
	issuer string
}

func NewJWTSigner(secret string, issuer string) *JWTSigner {
	return &JWTSigner{
		secret: []byte(secret),
		issuer: issuer,
	}
}

type accessClaims struct {
	UserID      string   `json:"uid"`
	Role        string   `json:"role"`
	Authorities []string `json:"authorities,omitempty"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) SignAccessToken(userID string, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		UserID:      userID,
		Role:        role,
		Authorities: domain.Authorities(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTSigner) VerifyAccessToken(token string) (account.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return account.TokenClaims{}, domain.ErrTokenExpired()
		}
		return account.TokenClaims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return account.TokenClaims{}, domain.ErrTokenInvalid()
	}

	exp := time.Time{}
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	return account.TokenClaims{
		UserID:      claims.UserID,
		Role:        claims.Role,
		Authorities: claims.Authorities,
		Exp:         exp,
	}, nil
}
