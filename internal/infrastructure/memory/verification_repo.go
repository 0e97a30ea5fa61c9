package memory

import (
	"context"
	"sync"

	"github.com/cloudforge/invoice-service/internal/domain"
)

type ledgerKey struct {
	userID string
	kind   domain.VerificationKind
}

// VerificationRepo keeps one live artifact per (user, kind), mirroring
// the delete-then-insert behaviour of the SQL ledger. Unlike the SQL
// version the swap here is atomic under the mutex.
type VerificationRepo struct {
	mu      sync.RWMutex
	byKey   map[ledgerKey]domain.VerificationArtifact
	byToken map[domain.VerificationKind]map[string]ledgerKey
}

func NewVerificationRepo() *VerificationRepo {
	return &VerificationRepo{
		byKey:   make(map[ledgerKey]domain.VerificationArtifact),
		byToken: make(map[domain.VerificationKind]map[string]ledgerKey),
	}
}

func (r *VerificationRepo) Replace(ctx context.Context, a domain.VerificationArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ledgerKey{userID: a.UserID, kind: a.Kind}
	if old, ok := r.byKey[key]; ok {
		delete(r.byToken[a.Kind], old.Token)
	}
	r.byKey[key] = a
	if r.byToken[a.Kind] == nil {
		r.byToken[a.Kind] = make(map[string]ledgerKey)
	}
	r.byToken[a.Kind][a.Token] = key
	return nil
}

func (r *VerificationRepo) FindByToken(ctx context.Context, kind domain.VerificationKind, token string) (domain.VerificationArtifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.byToken[kind][token]
	if !ok {
		return domain.VerificationArtifact{}, notFoundFor(kind)
	}
	return r.byKey[key], nil
}

func (r *VerificationRepo) DeleteByToken(ctx context.Context, kind domain.VerificationKind, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.byToken[kind][token]
	if !ok {
		return nil // already gone
	}
	delete(r.byToken[kind], token)
	delete(r.byKey, key)
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
