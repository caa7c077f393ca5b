package domain

import (
	"strings"
	"time"
)

// UserRole is the self-declared role shown on a profile. It is a label
// only and grants nothing: ticket access depends on createdBy/assignedTo.
type UserRole string

const (
	UserRoleOperator      UserRole = "OPERATOR"
	UserRoleAdministrator UserRole = "ADMINISTRATOR"
)

// ParseUserRole maps a stored or submitted role, defaulting to OPERATOR.
func ParseUserRole(value string) UserRole {
	switch UserRole(strings.ToUpper(strings.TrimSpace(value))) {
	case UserRoleAdministrator:
		return UserRoleAdministrator
	default:
		return UserRoleOperator
	}
}

// Account is the stored record behind an Identity.
type Account struct {
	UID           string
	Email         string
	DisplayName   string
	Role          UserRole
	PasswordHash  string
	ProviderIDs   []string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Identity projects the account to its public identity.
func (a *Account) Identity() *Identity {
	providers := make([]string, len(a.ProviderIDs))
	copy(providers, a.ProviderIDs)
	return &Identity{
		UID:           a.UID,
		Email:         a.Email,
		DisplayName:   a.DisplayName,
		ProviderIDs:   providers,
		EmailVerified: a.EmailVerified,
	}
}
