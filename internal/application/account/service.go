package account

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/google/uuid"

	"github.com/cloudforge/invoice-service/internal/domain"
	"github.com/cloudforge/invoice-service/internal/pkg/requestmeta"
)

// Service is the credential lifecycle service plus the authentication
// gate: it issues, validates and retires verification artifacts, drives
// user state transitions, and records audit events along the way.
type Service struct {
	users    UserRepo
	ledger   VerificationRepo
	events   EventRepo
	hasher   PasswordHasher
	signer   TokenSigner
	sessions SessionStore
	notifier Notifier

	accessTTL  time.Duration
	refreshTTL time.Duration
	audit      func(action string, fields map[string]string)

	// URLs used to build links sent via the notifier
	verifyAccountBaseURL string // e.g. https://frontend/user/verify/account?token=
	passwordResetBaseURL string // e.g. https://frontend/user/verify/password?token=
	passwordResetTTL     time.Duration
}

type Config struct {
	AccessTTL            time.Duration
	RefreshTTL           time.Duration
	VerifyAccountBaseURL string
	PasswordResetBaseURL string
	PasswordResetTTL     time.Duration
}

func NewService(
	users UserRepo,
	ledger VerificationRepo,
	events EventRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	sessions SessionStore,
	notifier Notifier,
	cfg Config,
) *Service {
	resetTTL := cfg.PasswordResetTTL
	if resetTTL <= 0 {
		resetTTL = 24 * time.Hour
	}
	return &Service{
		users:    users,
		ledger:   ledger,
		events:   events,
		hasher:   hasher,
		signer:   signer,
		sessions: sessions,
		notifier: notifier,
		audit:    func(string, map[string]string) {},

		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,

		verifyAccountBaseURL: cfg.VerifyAccountBaseURL,
		passwordResetBaseURL: cfg.PasswordResetBaseURL,
		passwordResetTTL:     resetTTL,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// AuthTokens is the common token output for handlers/DTO mapping.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64  // seconds
	TokenType    string // "Bearer"
}

// LoginResult is the outcome of the authentication gate. When
// MFAPending is true the principal has passed the credential check but
// holds no tokens yet; the caller must complete the code flow.
type LoginResult struct {
	User       domain.User
	MFAPending bool
	Tokens     AuthTokens
}

// issueTokens issues an access token + refresh token for a user.
func (s *Service) issueTokens(ctx context.Context, userID, role string) (AuthTokens, error) {
	access, err := s.signer.SignAccessToken(userID, role, s.accessTTL)
	if err != nil {
		return AuthTokens{}, err
	}

	refresh, err := s.sessions.CreateRefreshToken(ctx, userID, s.refreshTTL)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// recordEvent appends an audit row tagged with the request's device and
// origin address. Storage faults propagate to the caller.
func (s *Service) recordEvent(ctx context.Context, email string, t domain.EventType) error {
	meta := requestmeta.FromContext(ctx)
	return s.events.AppendByEmail(ctx, email, t, meta.Device, meta.IP)
}

// ListUserEvents returns the ordered audit trail for one user.
func (s *Service) ListUserEvents(ctx context.Context, userID string) ([]domain.UserEvent, error) {
	return s.events.ListByUserID(ctx, userID)
}

// newVerificationKey returns an unguessable token for verification links.
func newVerificationKey() string {
	return uuid.NewString()
}

const mfaCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newMFACode generates an 8-character uppercase alphanumeric login code.
func newMFACode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	for i, b := range buf {
		buf[i] = mfaCodeAlphabet[int(b)%len(mfaCodeAlphabet)]
	}
	return string(buf), nil
}

// endOfDay returns midnight UTC after the given instant. MFA codes are
// valid for the rest of the day they were issued.
func endOfDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
