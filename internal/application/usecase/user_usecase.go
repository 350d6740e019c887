package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// UserUseCase gestión de usuarios desde el panel de administración.
type UserUseCase struct {
	repo  repository.UserRepository
	audit *AuditUseCase
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, audit *AuditUseCase) *UserUseCase {
	return &UserUseCase{repo: repo, audit: audit}
}

// List todos los usuarios, incluidos los desactivados.
func (uc *UserUseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.FromUser(u))
	}
	return out, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromUser(user)
	return &out, nil
}

// Update aplica nombre, razón social y rol.
func (uc *UserUseCase) Update(ctx context.Context, actor inventory.Actor, id string, in dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
		changes["name"] = user.Name
	}
	if in.BusinessName != nil {
		user.BusinessName = strings.TrimSpace(*in.BusinessName)
		changes["businessName"] = user.BusinessName
	}
	if in.Role != nil {
		if !entity.IsValidRole(*in.Role) {
			return nil, domain.ErrInvalidInput
		}
		user.Role = *in.Role
		changes["role"] = user.Role
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor.UserID, entity.AuditUpdateUser, map[string]any{"targetUserId": user.ID, "updateData": changes})
	out := dto.FromUser(user)
	return &out, nil
}

// SoftDelete desactiva la cuenta; el usuario ya no puede iniciar sesión.
// Un admin no puede desactivarse a sí mismo.
func (uc *UserUseCase) SoftDelete(ctx context.Context, actor inventory.Actor, id string) error {
	user, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if user.ID == actor.UserID {
		return domain.ErrForbidden
	}
	if err := uc.repo.SoftDelete(ctx, user.ID); err != nil {
		return err
	}
	uc.audit.Record(ctx, actor.UserID, entity.AuditDeleteUser, map[string]any{"targetUserId": user.ID, "email": user.Email})
	return nil
}

// HardDelete borra la cuenta. Productos y movimientos del usuario se conservan.
func (uc *UserUseCase) HardDelete(ctx context.Context, actor inventory.Actor, id string) error {
	user, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if user.ID == actor.UserID {
		return domain.ErrForbidden
	}
	if err := uc.repo.Delete(ctx, user.ID); err != nil {
		return err
	}
	uc.audit.Record(ctx, actor.UserID, entity.AuditHardDeleteUser, map[string]any{"targetUserId": user.ID, "email": user.Email})
	return nil
}

func (uc *UserUseCase) load(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidIdentifier
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
