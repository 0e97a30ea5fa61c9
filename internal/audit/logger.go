// Package audit writes structured security log lines alongside the
// durable event log. The DB event log is the system of record; these
// lines exist for operators tailing the service.
package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cloudforge/invoice-service/internal/pkg/requestmeta"
)

type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

func (l *Logger) LoginSuccess(ctx context.Context, userID, email string) {
	meta := requestmeta.FromContext(ctx)
	l.log.Info().
		Str("action", "login_success").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Str("ip", meta.IP).
		Str("request_id", meta.RequestID).
		Msg("User logged in successfully")
}

func (l *Logger) LoginFailed(ctx context.Context, email, reason string) {
	meta := requestmeta.FromContext(ctx)
	l.log.Warn().
		Str("action", "login_failed").
		Str("email", maskEmail(email)).
		Str("ip", meta.IP).
		Str("reason", reason).
		Str("request_id", meta.RequestID).
		Msg("Login attempt failed")
}

func (l *Logger) MFAChallengeSent(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "mfa_challenge_sent").
		Str("user_id", userID).
		Str("request_id", requestmeta.FromContext(ctx).RequestID).
		Msg("MFA code issued")
}

func (l *Logger) MFAVerified(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "mfa_verified").
		Str("user_id", userID).
		Str("request_id", requestmeta.FromContext(ctx).RequestID).
		Msg("MFA code verified")
}

func (l *Logger) MFAToggled(ctx context.Context, email string, enabled bool) {
	l.log.Warn().
		Str("action", "mfa_toggled").
		Str("email", maskEmail(email)).
		Bool("enabled", enabled).
		Str("request_id", requestmeta.FromContext(ctx).RequestID).
		Msg("Multi-factor authentication toggled")
}

func (l *Logger) AccountVerified(ctx context.Context, userID, email string) {
	l.log.Info().
		Str("action", "account_verified").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Str("request_id", requestmeta.FromContext(ctx).RequestID).
		Msg("Account verified")
}

func (l *Logger) PasswordResetRequested(ctx context.Context, email string) {
	l.log.Info().
		Str("action", "password_reset_requested").
		Str("email", maskEmail(email)).
		Str("request_id", requestmeta.FromContext(ctx).RequestID).
		Msg("Password reset requested")
}

func (l *Logger) PasswordChanged(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "password_changed").
		Str("user_id", userID).
		Str("request_id", requestmeta.FromContext(ctx).RequestID).
		Msg("User password changed")
}

func (l *Logger) ProfileUpdated(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "profile_updated").
		Str("user_id", userID).
		Str("request_id", requestmeta.FromContext(ctx).RequestID).
		Msg("Profile updated")
}

func (l *Logger) SettingsChanged(ctx context.Context, targetID, actorID string, enabled, locked bool) {
	l.log.Warn().
		Str("action", "account_settings_changed").
		Str("target_user_id", targetID).
		Str("actor_user_id", actorID).
		Bool("enabled", enabled).
		Bool("locked", locked).
		Str("request_id", requestmeta.FromContext(ctx).RequestID).
		Msg("Account settings changed")
}

func (l *Logger) RoleChanged(ctx context.Context, targetID, actorID, newRole string) {
	l.log.Warn().
		Str("action", "role_changed").
		Str("target_user_id", targetID).
		Str("actor_user_id", actorID).
		Str("new_role", newRole).
		Str("request_id", requestmeta.FromContext(ctx).RequestID).
		Msg("User role changed")
}

// maskEmail partially masks email for privacy in logs.
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := 0
	for i, c := range email {
		if c == '@' {
			at = i
			break
		}
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
