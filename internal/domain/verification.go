package domain

import "time"

// VerificationKind tags a verification artifact with the flow it belongs to.
// All kinds share one storage shape; expiry policy is kind-specific and
// decided by the issuing service.
type VerificationKind string

const (
	// VerificationAccount is an account-activation link. No expiry: the
	// link stays valid until consumed.
	VerificationAccount VerificationKind = "ACCOUNT"
	// VerificationPassword is a password-reset link, valid for one day.
	VerificationPassword VerificationKind = "PASSWORD"
	// VerificationMFACode is a short login code sent over SMS, valid for
	// the rest of the day it was issued.
	VerificationMFACode VerificationKind = "MFA_CODE"
)

func (k VerificationKind) Valid() bool {
	switch k {
	case VerificationAccount, VerificationPassword, VerificationMFACode:
		return true
	}
	return false
}

// VerificationArtifact is an outstanding token or code owned by a user.
// At most one live artifact exists per (user, kind): issuing a new one
// supersedes (deletes) the previous one.
type VerificationArtifact struct {
	UserID    string
	Kind      VerificationKind
	Token     string
	CreatedAt time.Time
	ExpiresAt *time.Time // nil means valid until explicitly consumed
}

// Expired reports whether the artifact is past its validity window at
// the given instant. Expiry is checked lazily at consumption time; rows
// are never swept proactively.
func (a VerificationArtifact) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}
