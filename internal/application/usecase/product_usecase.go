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

// ProductUseCase casos de uso CRUD para productos. La cantidad solo cambia vía el motor del ledger;
// el stock inicial se registra como movimiento en la misma transacción que la creación.
type ProductUseCase struct {
	txRunner inventory.TxRunner
	repo     repository.ProductRepository
	audit    *AuditUseCase
	now      func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner inventory.TxRunner, repo repository.ProductRepository, audit *AuditUseCase) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repo: repo, audit: audit, now: func() time.Time { return time.Now().UTC() }}
}

// Create crea el producto del usuario. Con cantidad inicial > 0 agrega el movimiento "Stock inicial".
func (uc *ProductUseCase) Create(ctx context.Context, ownerID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Quantity < 0 || (in.ReorderThreshold != nil && *in.ReorderThreshold < 0) {
		return nil, domain.ErrInvalidInput
	}
	threshold := entity.DefaultReorderThreshold
	if in.ReorderThreshold != nil {
		threshold = *in.ReorderThreshold
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = entity.DefaultUnit
	}
	now := uc.now()
	product := &entity.Product{
		ID:               uuid.New().String(),
		Name:             name,
		Description:      strings.TrimSpace(in.Description),
		Quantity:         in.Quantity,
		ReorderThreshold: threshold,
		Unit:             unit,
		Category:         strings.TrimSpace(in.Category),
		Supplier:         strings.TrimSpace(in.Supplier),
		OwnerID:          ownerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if product.Quantity == 0 {
			return nil
		}
		return movRepo.Create(ctx, &entity.StockMovement{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			UserID:    ownerID,
			Change:    product.Quantity,
			Type:      entity.MovementTypeIn,
			Note:      entity.DefaultNoteInitial,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, ownerID, entity.AuditCreateProduct, map[string]any{"productId": product.ID, "name": product.Name})
	out := dto.FromProduct(product)
	return &out, nil
}

// ListMine productos activos del usuario.
func (uc *ProductUseCase) ListMine(ctx context.Context, ownerID string) ([]dto.ProductResponse, error) {
	list, err := uc.repo.Search(ctx, repository.ProductFilter{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	return dto.FromProducts(list), nil
}

// GetByID producto activo del usuario; los de otros usuarios se reportan como inexistentes.
func (uc *ProductUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.OwnedBy(ownerID) {
		return nil, domain.ErrNotFound
	}
	out := dto.FromProduct(product)
	return &out, nil
}

// Update modifica metadatos (dueño o admin). No permite modificar la cantidad.
func (uc *ProductUseCase) Update(ctx context.Context, actor inventory.Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
		changes["name"] = name
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
		changes["description"] = product.Description
	}
	if in.ReorderThreshold != nil {
		if *in.ReorderThreshold < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.ReorderThreshold = *in.ReorderThreshold
		changes["reorderThreshold"] = product.ReorderThreshold
	}
	if in.Unit != nil {
		product.Unit = strings.TrimSpace(*in.Unit)
		changes["unit"] = product.Unit
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
		changes["category"] = product.Category
	}
	if in.Supplier != nil {
		product.Supplier = strings.TrimSpace(*in.Supplier)
		changes["supplier"] = product.Supplier
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor.UserID, entity.AuditUpdateProduct, map[string]any{"productId": product.ID, "updateData": changes})
	out := dto.FromProduct(product)
	return &out, nil
}

// SoftDelete marca el producto como eliminado (dueño o admin). El historial se conserva.
func (uc *ProductUseCase) SoftDelete(ctx context.Context, actor inventory.Actor, id string) error {
	product, err := uc.authorize(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := uc.repo.SoftDelete(ctx, product.ID); err != nil {
		return err
	}
	uc.audit.Record(ctx, actor.UserID, entity.AuditDeleteProduct, map[string]any{"productId": product.ID, "name": product.Name})
	return nil
}

// HardDelete borra la fila definitivamente (solo admin). Los movimientos no se borran.
func (uc *ProductUseCase) HardDelete(ctx context.Context, actor inventory.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidIdentifier
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.audit.Record(ctx, actor.UserID, entity.AuditHardDeleteProduct, map[string]any{"productId": product.ID, "name": product.Name})
	return nil
}

// Search filtra los productos activos del usuario.
func (uc *ProductUseCase) Search(ctx context.Context, ownerID string, q dto.ProductSearchQuery) ([]dto.ProductResponse, error) {
	if q.MinQty != nil && q.MaxQty != nil && *q.MinQty > *q.MaxQty {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.repo.Search(ctx, repository.ProductFilter{
		OwnerID:  ownerID,
		Name:     strings.TrimSpace(q.Name),
		Category: strings.TrimSpace(q.Category),
		Unit:     strings.TrimSpace(q.Unit),
		Supplier: strings.TrimSpace(q.Supplier),
		LowStock: q.LowStock,
		MinQty:   q.MinQty,
		MaxQty:   q.MaxQty,
	})
	if err != nil {
		return nil, err
	}
	return dto.FromProducts(list), nil
}

func (uc *ProductUseCase) load(ctx context.Context, id string) (*entity.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidIdentifier
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.IsDeleted {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (uc *ProductUseCase) authorize(ctx context.Context, actor inventory.Actor, id string) (*entity.Product, error) {
	product, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.OwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return product, nil
}
