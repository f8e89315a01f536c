package models

import "strings"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the caller decoded from a verified token.
type Identity struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

func (i *Identity) IsPrivileged() bool {
	return i != nil && strings.EqualFold(i.Role, RoleAdmin)
}
