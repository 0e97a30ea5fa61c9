package account

import (
	"context"
	"strings"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// UpdateProfile mutates the user's profile fields and records a
// PROFILE_UPDATE event.
func (s *Service) UpdateProfile(ctx context.Context, userID string, form ProfileUpdate) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.ErrMissingField("user_id")
	}
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	if form.FirstName == "" {
		return domain.User{}, domain.ErrMissingField("first_name")
	}

	if err := s.users.UpdateDetails(ctx, userID, form); err != nil {
		return domain.User{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.recordEvent(ctx, u.Email, domain.EventProfileUpdate); err != nil {
		return domain.User{}, err
	}

	s.audit("profile_updated", map[string]string{"user_id": userID})
	return u, nil
}

// UpdateAccountSettings sets the enabled/locked flags. Admin-only at
// the transport layer; locked is orthogonal to verification.
func (s *Service) UpdateAccountSettings(ctx context.Context, userID string, enabled, locked bool) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.ErrMissingField("user_id")
	}

	if err := s.users.SetAccountSettings(ctx, userID, enabled, locked); err != nil {
		return domain.User{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.recordEvent(ctx, u.Email, domain.EventAccountSettingsUpdate); err != nil {
		return domain.User{}, err
	}

	if u.Locked {
		_ = s.sessions.RevokeAll(ctx, userID)
	}

	s.audit("account_settings_updated", map[string]string{"user_id": userID})
	return u, nil
}

// SetRole reassigns a user's role.
func (s *Service) SetRole(ctx context.Context, userID, role string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.ErrMissingField("user_id")
	}
	if !domain.IsValidRole(role) {
		return domain.User{}, domain.ErrInvalidRole(role)
	}

	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return domain.User{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.recordEvent(ctx, u.Email, domain.EventRoleUpdate); err != nil {
		return domain.User{}, err
	}

	s.audit("role_updated", map[string]string{"user_id": userID, "role": role})
	return u, nil
}

// Profile returns the user plus their audit trail.
func (s *Service) Profile(ctx context.Context, userID string) (domain.User, []domain.UserEvent, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, nil, err
	}
	events, err := s.events.ListByUserID(ctx, userID)
	if err != nil {
		return domain.User{}, nil, err
	}
	return u, events, nil
}
