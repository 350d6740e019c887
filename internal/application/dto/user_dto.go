package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RegisterRequest entrada para registro de una cuenta de negocio.
type RegisterRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=50"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	BusinessName string `json:"business_name" validate:"required,min=2,max=100"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	BusinessName string    `json:"business_name"`
	Role         string    `json:"role"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthResponse salida con token JWT.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UpdateProfileRequest cambios del propio perfil; campos nil no se tocan.
type UpdateProfileRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email        *string `json:"email" validate:"omitempty,email"`
	BusinessName *string `json:"business_name" validate:"omitempty,min=2,max=100"`
}

// ChangePasswordRequest cambio de contraseña del usuario autenticado.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// AdminUpdateUserRequest cambios que un admin puede aplicar a un usuario.
type AdminUpdateUserRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=50"`
	BusinessName *string `json:"business_name" validate:"omitempty,min=2,max=100"`
	Role         *string `json:"role" validate:"omitempty,oneof=user admin"`
}

// FromUser mapea la entidad a su respuesta.
func FromUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		BusinessName: u.BusinessName,
		Role:         u.Role,
		IsDeleted:    u.IsDeleted,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
