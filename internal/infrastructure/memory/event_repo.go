package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// EventRepo is the in-memory audit log. Append-only, ordered by
// insertion.
type EventRepo struct {
	mu     sync.RWMutex
	users  *UserRepo
	nextID int64
	events map[string][]domain.UserEvent // userID -> events
}

// NewEventRepo needs the user repo to resolve emails, matching the
// INSERT .. SELECT shape of the SQL log.
func NewEventRepo(users *UserRepo) *EventRepo {
	return &EventRepo{
		users:  users,
		nextID: 1,
		events: make(map[string][]domain.UserEvent),
	}
}

func (r *EventRepo) AppendByEmail(ctx context.Context, email string, t domain.EventType, device, ip string) error {
	u, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return r.AppendByUserID(ctx, u.ID, t, device, ip)
}

func (r *EventRepo) AppendByUserID(ctx context.Context, userID string, t domain.EventType, device, ip string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrUserNotFound()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ev := domain.UserEvent{
		ID:        r.nextID,
		UserID:    userID,
		Type:      t,
		Device:    device,
		IPAddress: ip,
		CreatedAt: time.Now().UTC(),
	}
	r.nextID++
	r.events[userID] = append(r.events[userID], ev)
	return nil
}

func (r *EventRepo) ListByUserID(ctx context.Context, userID string) ([]domain.UserEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.events[userID]
	out := make([]domain.UserEvent, len(src))
	copy(out, src)
	return out, nil
}
