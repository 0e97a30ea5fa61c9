package domain

import "time"

// EventType enumerates the account security events kept in the audit log.
type EventType string

const (
	EventLoginAttempt          EventType = "LOGIN_ATTEMPT"
	EventLoginAttemptSuccess   EventType = "LOGIN_ATTEMPT_SUCCESS"
	EventLoginAttemptFailure   EventType = "LOGIN_ATTEMPT_FAILURE"
	EventRegistration          EventType = "REGISTRATION"
	EventProfileUpdate         EventType = "PROFILE_UPDATE"
	EventPasswordUpdate        EventType = "PASSWORD_UPDATE"
	EventMFAUpdate             EventType = "MFA_UPDATE"
	EventAccountSettingsUpdate EventType = "ACCOUNT_SETTINGS_UPDATE"
	EventRoleUpdate            EventType = "ROLE_UPDATE"
)

// UserEvent is one immutable audit row. Rows are appended by user id or,
// when the id is not known at write time, resolved from the email.
// The log is append-only: nothing in this service mutates or deletes rows.
type UserEvent struct {
	ID        int64
	UserID    string
	Type      EventType
	Device    string
	IPAddress string
	CreatedAt time.Time
}
