package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// EventRepo is the append-only audit log.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// AppendByEmail resolves the user id from the email at insert time.
// Inserting for an unknown email affects zero rows and is reported as
// user-not-found so callers notice dangling writes.
func (r *EventRepo) AppendByEmail(ctx context.Context, email string, t domain.EventType, device, ip string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	const q = `
INSERT INTO user_events (user_id, type, device, ip_address)
SELECT id, $2, $3, $4
FROM users
WHERE LOWER(email) = $1;
`
	res, err := r.db.ExecContext(ctx, q, email, string(t), device, ip)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *EventRepo) AppendByUserID(ctx context.Context, userID string, t domain.EventType, device, ip string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
INSERT INTO user_events (user_id, type, device, ip_address)
VALUES ($1, $2, $3, $4);
`
	if _, err := r.db.ExecContext(ctx, q, userID, string(t), device, ip); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

// ListByUserID returns the user's events ordered by insertion time.
func (r *EventRepo) ListByUserID(ctx context.Context, userID string) ([]domain.UserEvent, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrMissingField("user_id")
	}

	const q = `
SELECT id, user_id, type, device, ip_address, created_at
FROM user_events
WHERE user_id = $1
ORDER BY created_at, id;
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var events []domain.UserEvent
	for rows.Next() {
		var e domain.UserEvent
		var typ string
		if err := rows.Scan(&e.ID, &e.UserID, &typ, &e.Device, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		e.Type = domain.EventType(typ)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return events, nil
}
