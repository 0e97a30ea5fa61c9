package dto

import (
	"strings"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// -------- Registration / login --------

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if strings.TrimSpace(r.FirstName) == "" {
		return domain.ErrMissingField("first_name")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return domain.ErrMissingField("last_name")
	}
	if r.Email == "" {
		return domain.ErrMissingField("email")
	}
	if !strings.Contains(r.Email, "@") {
		return domain.ErrInvalidField("email", "invalid format")
	}
	if r.Password == "" {
		return domain.ErrMissingField("password")
	}
	if len(r.Password) < 8 {
		return domain.ErrWeakPassword("min length 8")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return domain.ErrMissingField("email")
	}
	if r.Password == "" {
		return domain.ErrMissingField("password")
	}
	return nil
}

// -------- MFA --------

// VerifyCodeRequest completes an MFA-gated login.
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *VerifyCodeRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Code = strings.TrimSpace(r.Code)
	if r.Email == "" {
		return domain.ErrMissingField("email")
	}
	if r.Code == "" {
		return domain.ErrMissingField("code")
	}
	return nil
}

// -------- Password reset --------

type PasswordResetRequest struct {
	Email string `json:"email"`
}

func (r *PasswordResetRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if r.Email == "" {
		return domain.ErrMissingField("email")
	}
	if !strings.Contains(r.Email, "@") {
		return domain.ErrInvalidField("email", "invalid format")
	}
	return nil
}

type PasswordResetConfirmRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *PasswordResetConfirmRequest) Validate() error {
	if r.Token == "" {
		return domain.ErrMissingField("token")
	}
	if r.NewPassword == "" {
		return domain.ErrMissingField("new_password")
	}
	if len(r.NewPassword) < 8 {
		return domain.ErrWeakPassword("min length 8")
	}
	// Confirmation equality is checked by the service so the same rule
	// covers every entry point.
	return nil
}

// PasswordResetValidateQuery (GET /user/verify/password?token=...)
type PasswordResetValidateQuery struct {
	Token string `json:"-"` // filled from query param, not JSON
}

func (q *PasswordResetValidateQuery) Validate() error {
	if q.Token == "" {
		return domain.ErrMissingField("token")
	}
	return nil
}

// -------- Password change (authenticated) --------

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *PasswordChangeRequest) Validate() error {
	if r.CurrentPassword == "" {
		return domain.ErrMissingField("current_password")
	}
	if r.NewPassword == "" {
		return domain.ErrMissingField("new_password")
	}
	if len(r.NewPassword) < 8 {
		return domain.ErrWeakPassword("min length 8")
	}
	return nil
}

// -------- Profile --------

type ProfileUpdateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Title     string `json:"title"`
	Bio       string `json:"bio"`
}

func (r *ProfileUpdateRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return domain.ErrMissingField("first_name")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return domain.ErrMissingField("last_name")
	}
	return nil
}

// -------- Admin --------

type AccountSettingsRequest struct {
	UserID  string `json:"user_id"`
	Enabled bool   `json:"enabled"`
	Locked  bool   `json:"locked"`
}

func (r *AccountSettingsRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return domain.ErrMissingField("user_id")
	}
	return nil
}

type SetRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (r *SetRoleRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return domain.ErrMissingField("user_id")
	}
	if r.Role == "" {
		return domain.ErrMissingField("role")
	}
	if !domain.IsValidRole(r.Role) {
		return domain.ErrInvalidField("role", "invalid role")
	}
	return nil
}

// -------- Sessions --------

// Refresh token travels in the JSON body; there is no cookie layer.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshRequest) Validate() error {
	if r.RefreshToken == "" {
		return domain.ErrMissingField("refresh_token")
	}
	return nil
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
