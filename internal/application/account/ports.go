package account

import (
	"context"
	"time"

	"github.com/cloudforge/invoice-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for the credential store.
Only describes WHAT the account service needs, not HOW it's stored.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// Updates needed by business flows
	UpdateDetails(ctx context.Context, userID string, form ProfileUpdate) error
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	SetEnabled(ctx context.Context, userID string, enabled bool) error
	SetAccountSettings(ctx context.Context, userID string, enabled, locked bool) error
	SetUsingMFA(ctx context.Context, userID string, using bool) error
	SetRole(ctx context.Context, userID string, role string) error
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Title     string
	Bio       string
}

/*
VerificationRepo
----------------
The verification ledger: account links, password-reset links and MFA
codes share one storage shape, tagged by kind.
*/
type VerificationRepo interface {
	// Replace deletes any live artifact of the same (user, kind) and
	// stores the new one. The two statements are not wrapped in a
	// transaction; two concurrent issuances for the same user/kind can
	// race and leave two live artifacts.
	Replace(ctx context.Context, a domain.VerificationArtifact) error
	FindByToken(ctx context.Context, kind domain.VerificationKind, token string) (domain.VerificationArtifact, error)
	DeleteByToken(ctx context.Context, kind domain.VerificationKind, token string) error
}

/*
EventRepo
---------
Append-only audit log. Appends by email resolve the user id at insert
time; reads are finite, ordered by insertion.
*/
type EventRepo interface {
	AppendByEmail(ctx context.Context, email string, t domain.EventType, device, ip string) error
	AppendByUserID(ctx context.Context, userID string, t domain.EventType, device, ip string) error
	ListByUserID(ctx context.Context, userID string) ([]domain.UserEvent, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt. The hash is opaque to everything above this port.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies access tokens (JWT) for the authenticated principal.
*/
type TokenClaims struct {
	UserID      string
	Role        string
	Authorities []string
	Exp         time.Time
}

type TokenSigner interface {
	SignAccessToken(userID string, role string, ttl time.Duration) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
}

/*
SessionStore
------------
Opaque refresh tokens, backed by Redis.
*/
type SessionStore interface {
	CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (token string, err error)
	GetUserIDByRefreshToken(ctx context.Context, token string) (string, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID string) error
}

/*
Notifier
--------
Best-effort side channel. Sends are fire-and-forget: the implementation
queues the message and the caller never observes delivery or failure.
*/
type Notifier interface {
	SendVerificationEmail(ctx context.Context, firstName, email, link string, kind domain.VerificationKind)
	SendSMS(ctx context.Context, phone, text string)
}
