package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/cloudforge/invoice-service/internal/application/account"
	"github.com/cloudforge/invoice-service/internal/domain"
)

const userColumns = `id, first_name, last_name, email, password_hash, role, phone, address, title, bio, enabled, locked, using_mfa, created_at`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUserRow(row *sql.Row) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.FirstName,
		&ur.LastName,
		&ur.Email,
		&ur.PasswordHash,
		&ur.Role,
		&ur.Phone,
		&ur.Address,
		&ur.Title,
		&ur.Bio,
		&ur.Enabled,
		&ur.Locked,
		&ur.UsingMFA,
		&ur.CreatedAt,
	)
	return ur, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDomainUser(ur userRow) domain.User {
	return domain.User{
		ID:           ur.ID,
		FirstName:    ur.FirstName,
		LastName:     ur.LastName,
		Email:        ur.Email,
		PasswordHash: ur.PasswordHash,
		Role:         ur.Role,
		Phone:        deref(ur.Phone),
		Address:      deref(ur.Address),
		Title:        deref(ur.Title),
		Bio:          deref(ur.Bio),
		Enabled:      ur.Enabled,
		Locked:       ur.Locked,
		UsingMFA:     ur.UsingMFA,
		CreatedAt:    ur.CreatedAt,
	}
}

// ---------- account.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	q := `
SELECT ` + userColumns + `
FROM users
WHERE LOWER(email) = $1
LIMIT 1;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	q := `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Role == "" {
		u.Role = string(domain.RoleUser)
	}

	q := `
INSERT INTO users (id, first_name, last_name, email, password_hash, role, phone, enabled, locked, using_mfa)
VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9,$10)
RETURNING ` + userColumns + `;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role, u.Phone, u.Enabled, u.Locked, u.UsingMFA,
	))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) UpdateDetails(ctx context.Context, userID string, form account.ProfileUpdate) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET first_name = $2,
    last_name  = $3,
    phone      = NULLIF($4,''),
    address    = NULLIF($5,''),
    title      = NULLIF($6,''),
    bio        = NULLIF($7,'')
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, form.FirstName, form.LastName, form.Phone, form.Address, form.Title, form.Bio)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if newHash == "" {
		return domain.ErrMissingField("password_hash")
	}

	const q = `
UPDATE users
SET password_hash = $2
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, newHash)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET enabled = $2
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, enabled)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) SetAccountSettings(ctx context.Context, userID string, enabled, locked bool) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET enabled = $2,
    locked  = $3
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, enabled, locked)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) SetUsingMFA(ctx context.Context, userID string, using bool) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET using_mfa = $2
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, using)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) SetRole(ctx context.Context, userID string, role string) error {
	userID = strings.TrimSpace(userID)
	role = strings.TrimSpace(role)

	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if !domain.IsValidRole(role) {
		return domain.ErrInvalidRole(role)
	}

	const q = `
UPDATE users
SET role = $2
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, role)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}
