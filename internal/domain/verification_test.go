package domain

import (
	"testing"
	"time"
)

func TestVerificationKind_Valid(t *testing.T) {
	t.Parallel()

	for _, k := range []VerificationKind{VerificationAccount, VerificationPassword, VerificationMFACode} {
		if !k.Valid() {
			t.Fatalf("%s should be valid", k)
		}
	}
	if VerificationKind("BOGUS").Valid() {
		t.Fatalf("unknown kind must be invalid")
	}
}

func TestVerificationArtifact_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()

	// No expiry means valid forever.
	a := VerificationArtifact{Token: "tok"}
	if a.Expired(now.Add(100 * 365 * 24 * time.Hour)) {
		t.Fatalf("artifact without expiry never expires")
	}

	past := now.Add(-time.Minute)
	a.ExpiresAt = &past
	if !a.Expired(now) {
		t.Fatalf("expected expired")
	}

	future := now.Add(time.Minute)
	a.ExpiresAt = &future
	if a.Expired(now) {
		t.Fatalf("expected still valid")
	}

	// Exactly at the boundary the artifact is still valid.
	a.ExpiresAt = &now
	if a.Expired(now) {
		t.Fatalf("boundary instant must not count as expired")
	}
}
