package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// VerificationRepo is the verification ledger: one table for account
// links, password-reset links and MFA codes, tagged by kind.
type VerificationRepo struct {
	db *sql.DB
}

func NewVerificationRepo(db *sql.DB) *VerificationRepo {
	return &VerificationRepo{db: db}
}

// Replace deletes any live artifact of the same (user, kind) and inserts
// the new one. Deliberately two statements, no transaction: two
// concurrent issuances for the same user/kind can both land, leaving two
// live artifacts until the next issuance. Callers needing atomicity must
// add it explicitly.
func (r *VerificationRepo) Replace(ctx context.Context, a domain.VerificationArtifact) error {
	if strings.TrimSpace(a.UserID) == "" {
		return domain.ErrMissingField("user_id")
	}
	if strings.TrimSpace(a.Token) == "" {
		return domain.ErrMissingField("token")
	}
	if !a.Kind.Valid() {
		return domain.ErrInvalidField("kind", "unknown verification kind")
	}

	const del = `
DELETE FROM verifications
WHERE user_id = $1 AND kind = $2;
`
	if _, err := r.db.ExecContext(ctx, del, a.UserID, string(a.Kind)); err != nil {
		return domain.ErrDBUnavailable(err)
	}

	const ins = `
INSERT INTO verifications (user_id, kind, token, expires_at)
VALUES ($1, $2, $3, $4);
`
	if _, err := r.db.ExecContext(ctx, ins, a.UserID, string(a.Kind), a.Token, a.ExpiresAt); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *VerificationRepo) FindByToken(ctx context.Context, kind domain.VerificationKind, token string) (domain.VerificationArtifact, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.VerificationArtifact{}, domain.ErrMissingField("token")
	}

	const q = `
SELECT user_id, kind, token, created_at, expires_at
FROM verifications
WHERE kind = $1 AND token = $2
LIMIT 1;
`
	var a domain.VerificationArtifact
	var k string
	err := r.db.QueryRowContext(ctx, q, string(kind), token).Scan(&a.UserID, &k, &a.Token, &a.CreatedAt, &a.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.VerificationArtifact{}, notFoundFor(kind)
		}
		return domain.VerificationArtifact{}, domain.ErrDBUnavailable(err)
	}
	a.Kind = domain.VerificationKind(k)
	return a, nil
}

// DeleteByToken removes a consumed artifact. Deleting a token that is
// already gone is not an error.
func (r *VerificationRepo) DeleteByToken(ctx context.Context, kind domain.VerificationKind, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}

	const q = `
DELETE FROM verifications
WHERE kind = $1 AND token = $2;
`
	if _, err := r.db.ExecContext(ctx, q, string(kind), token); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func notFoundFor(kind domain.VerificationKind) error {
	switch kind {
	case domain.VerificationPassword:
		return domain.ErrResetTokenNotFound()
	case domain.VerificationMFACode:
		return domain.ErrCodeNotFound()
	default:
		return domain.ErrVerifyTokenNotFound()
	}
}
