package model

import (
	"fmt"
	"strings"
)

// Role is the dashboard role carried in the bearer token
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleSupplier  Role = "PROVEEDOR"
	RoleConsumer  Role = "CONSUMIDOR"
	RoleCollector Role = "BASURERO"
)

// ParseRole accepts any letter case
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleSupplier, RoleConsumer, RoleCollector:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// CanPlaceContainers reports whether the role may create containers on the map
func (r Role) CanPlaceContainers() bool {
	return r == RoleAdmin || r == RoleCollector
}

// Actor is the authenticated caller of a request.
// It is passed explicitly to every scoped operation.
type Actor struct {
	UserID int64
	Email  string
	Role   Role
	Token  string // forwarded to the backend as-is
}
