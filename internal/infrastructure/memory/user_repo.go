// Package memory holds in-memory implementations of the persistence
// ports. Used when the service starts without a database (local dev)
// and by handler tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudforge/invoice-service/internal/application/account"
	"github.com/cloudforge/invoice-service/internal/domain"
)

type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // lower(email) -> userID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[emailKey(u.Email)]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	if u.ID == "" {
		return domain.User{}, domain.ErrInternal(nil)
	}

	r.byID[u.ID] = u
	r.byEmail[emailKey(u.Email)] = u.ID
	return u, nil
}

func (r *UserRepo) UpdateDetails(ctx context.Context, userID string, form account.ProfileUpdate) error {
	return r.mutate(userID, func(u *domain.User) {
		u.FirstName = form.FirstName
		u.LastName = form.LastName
		u.Phone = form.Phone
		u.Address = form.Address
		u.Title = form.Title
		u.Bio = form.Bio
	})
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return r.mutate(userID, func(u *domain.User) { u.PasswordHash = newHash })
}

func (r *UserRepo) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	return r.mutate(userID, func(u *domain.User) { u.Enabled = enabled })
}

func (r *UserRepo) SetAccountSettings(ctx context.Context, userID string, enabled, locked bool) error {
	return r.mutate(userID, func(u *domain.User) {
		u.Enabled = enabled
		u.Locked = locked
	})
}

func (r *UserRepo) SetUsingMFA(ctx context.Context, userID string, using bool) error {
	return r.mutate(userID, func(u *domain.User) { u.UsingMFA = using })
}

func (r *UserRepo) SetRole(ctx context.Context, userID string, role string) error {
	return r.mutate(userID, func(u *domain.User) { u.Role = role })
}

func (r *UserRepo) mutate(userID string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	fn(&u)
	r.byID[userID] = u
	return nil
}
