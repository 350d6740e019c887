package entity

import "time"

// Roles válidos para User.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsValidRole indica si role es un rol soportado.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User representa la cuenta de un negocio.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	BusinessName string
	Role         string // user, admin
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin indica si el usuario tiene rol administrador.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
