// Package identity verifies bearer credentials and enforces role authorization.
package identity

import (
	"strings"
	"time"
)

// Role is the closed set of platform roles. Unknown roles are rejected during
// verification, never defaulted to a permissive value.
type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleUser    Role = "user"
)

// ParseRole normalizes and validates a role value from a token payload.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleAlumni:
		return RoleAlumni, true
	case RoleUser:
		return RoleUser, true
	default:
		return "", false
	}
}

// Claims is the verified identity assertion extracted from a bearer token.
// It lives only for the duration of one request.
type Claims struct {
	SubjectID   string
	Role        Role
	DisplayName string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}
