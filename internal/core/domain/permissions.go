package domain

import "fmt"

// Permission is a capability tag gating access to one area of the application.
// The set of valid tags is closed; unknown strings are rejected at the edge.
type Permission string

const (
	PermDashboard Permission = "dashboard"
	PermInventory Permission = "inventory"
	PermLoans     Permission = "loans"
	PermReports   Permission = "reports"
	PermSettings  Permission = "settings"
	PermUsers     Permission = "users"
)

// AllPermissions lists every known permission tag
var AllPermissions = []Permission{
	PermDashboard,
	PermInventory,
	PermLoans,
	PermReports,
	PermSettings,
	PermUsers,
}

// IsValid checks if the permission is a known tag
func (p Permission) IsValid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// PermissionSet is the set of capabilities granted to a user.
// Membership is checked with Has; ordering is not significant.
type PermissionSet []Permission

// NewPermissionSet builds a set from raw strings, rejecting unknown tags
// and dropping duplicates.
func NewPermissionSet(raw []string) (PermissionSet, error) {
	seen := make(map[Permission]bool, len(raw))
	set := make(PermissionSet, 0, len(raw))
	for _, s := range raw {
		p := Permission(s)
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: unknown permission %q", ErrInvalidInput, s)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		set = append(set, p)
	}
	return set, nil
}

// Has reports whether the set contains the given permission
func (ps PermissionSet) Has(p Permission) bool {
	for _, member := range ps {
		if member == p {
			return true
		}
	}
	return false
}

// Strings returns the set as plain strings (for JWT claims and JSON)
func (ps PermissionSet) Strings() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

// FullPermissions returns a set with every capability (admin default)
func FullPermissions() PermissionSet {
	set := make(PermissionSet, len(AllPermissions))
	copy(set, AllPermissions)
	return set
}
