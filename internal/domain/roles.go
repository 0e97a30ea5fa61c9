package domain

import "strings"

type Role string

const (
	// RoleUser can manage their own customers and invoices.
	RoleUser Role = "user"
	// RoleManager can additionally manage records created by other users.
	RoleManager Role = "manager"
	// RoleAdmin can manage accounts: settings, roles, locking.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleManager) || r == string(RoleAdmin)
}

// RoleRank: bigger => higher privilege.
func RoleRank(r string) int {
	switch r {
	case string(RoleUser):
		return 1
	case string(RoleManager):
		return 2
	case string(RoleAdmin):
		return 3
	default:
		return 0
	}
}

// Authorities returns the comma-free permission list derived from a role.
// These end up in the principal's access token.
func Authorities(r string) []string {
	switch r {
	case string(RoleAdmin):
		return []string{"READ:USER", "READ:CUSTOMER", "CREATE:CUSTOMER", "UPDATE:USER", "UPDATE:CUSTOMER", "DELETE:USER", "DELETE:CUSTOMER"}
	case string(RoleManager):
		return []string{"READ:USER", "READ:CUSTOMER", "CREATE:CUSTOMER", "UPDATE:CUSTOMER"}
	case string(RoleUser):
		return []string{"READ:USER", "READ:CUSTOMER"}
	default:
		return nil
	}
}

// AuthorityString renders authorities the way the audit log stores them.
func AuthorityString(r string) string {
	return strings.Join(Authorities(r), ",")
}
