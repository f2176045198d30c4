package models

import (
	"errors"
	"strings"
)

// Role is the closed set of staff roles. Tokens and stored users always carry
// the canonical spelling; ParseRole is the only place that tolerates casing.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleOwner     Role = "Owner"
	RoleSecretary Role = "Secretary"
	RoleStarter   Role = "Starter"
	RoleDriver    Role = "Driver"
	RoleConductor Role = "Conductor"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleAdmin, RoleOwner, RoleSecretary, RoleStarter, RoleDriver, RoleConductor}

var ErrInvalidRole = errors.New("invalid role")

// ParseRole normalizes user input ("starter", " STARTER ") into a Role.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range AllRoles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// IDPrefix returns the user-id prefix for the role. Drivers and conductors
// share the STF (staff) sequence.
func (r Role) IDPrefix() string {
	switch r {
	case RoleAdmin:
		return "ADM"
	case RoleOwner:
		return "OWN"
	case RoleSecretary:
		return "SEC"
	case RoleStarter:
		return "STR"
	case RoleDriver, RoleConductor:
		return "STF"
	}
	return ""
}
