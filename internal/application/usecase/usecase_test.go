package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

type fixture struct {
	store    *memory.Store
	products *ProductUseCase
	users    *UserUseCase
	audit    *AuditUseCase
}

func newFixture() *fixture {
	s := memory.NewStore()
	audit := NewAuditUseCase(memory.NewAuditLogRepository(s), nil)
	return &fixture{
		store:    s,
		products: NewProductUseCase(memory.NewTxRunner(s), memory.NewProductRepository(s), audit),
		users:    NewUserUseCase(memory.NewUserRepository(s), audit),
		audit:    audit,
	}
}

func (f *fixture) addUser(t *testing.T, role string) string {
	t.Helper()
	id := uuid.New().String()
	require.NoError(t, memory.NewUserRepository(f.store).Create(context.Background(), &entity.User{
		ID: id, Name: "Usuario", Email: id + "@test.co", Role: role, CreatedAt: time.Now(),
	}))
	return id
}

func ptr[T any](v T) *T { return &v }

func TestProductCreate_StockInicialRegistraMovimiento(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New().String()

	p, err := f.products.Create(ctx, owner, dto.CreateProductRequest{Name: " Tornillos ", Quantity: 12})
	require.NoError(t, err)
	assert.Equal(t, "Tornillos", p.Name)
	assert.Equal(t, entity.DefaultReorderThreshold, p.ReorderThreshold)
	assert.Equal(t, entity.DefaultUnit, p.Unit)
	assert.Equal(t, owner, p.OwnerID)

	movs, err := memory.NewStockMovementRepository(f.store).ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(12), movs[0].Change)
	assert.Equal(t, entity.MovementTypeIn, movs[0].Type)
	assert.Equal(t, entity.DefaultNoteInitial, movs[0].Note)

	sum, err := inventory.NewLedgerReader(memory.NewProductRepository(f.store), memory.NewStockMovementRepository(f.store)).Replay(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Quantity, sum)

	logs, err := f.audit.List(ctx, dto.AuditLogQuery{Action: entity.AuditCreateProduct})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	var details map[string]any
	require.NoError(t, json.Unmarshal(logs[0].Details, &details))
	assert.Equal(t, p.ID, details["productId"])
}

func TestProductCreate_SinStockNoRegistraMovimiento(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.products.Create(ctx, uuid.New().String(), dto.CreateProductRequest{Name: "Clavos", ReorderThreshold: ptr(int64(0))})
	require.NoError(t, err)
	assert.Zero(t, p.ReorderThreshold)

	movs, err := memory.NewStockMovementRepository(f.store).ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestProductCreate_EntradaInvalida(t *testing.T) {
	f := newFixture()
	_, err := f.products.Create(context.Background(), "u", dto.CreateProductRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.products.Create(context.Background(), "u", dto.CreateProductRequest{Name: "x", Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductGetByID_SoloDueno(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New().String()
	p, err := f.products.Create(ctx, owner, dto.CreateProductRequest{Name: "Tuercas", Quantity: 1})
	require.NoError(t, err)

	got, err := f.products.GetByID(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.products.GetByID(ctx, uuid.New().String(), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.products.GetByID(ctx, owner, "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
}

func TestProductUpdate_DuenoOAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := inventory.Actor{UserID: uuid.New().String(), Role: entity.RoleUser}
	other := inventory.Actor{UserID: uuid.New().String(), Role: entity.RoleUser}
	admin := inventory.Actor{UserID: uuid.New().String(), Role: entity.RoleAdmin}
	p, err := f.products.Create(ctx, owner.UserID, dto.CreateProductRequest{Name: "Cable", Quantity: 8})
	require.NoError(t, err)

	_, err = f.products.Update(ctx, other, p.ID, dto.UpdateProductRequest{Name: ptr("Robado")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.products.Update(ctx, owner, p.ID, dto.UpdateProductRequest{ReorderThreshold: ptr(int64(10))})
	require.NoError(t, err)
	assert.True(t, out.LowStock)
	assert.Equal(t, int64(8), out.Quantity)

	out, err = f.products.Update(ctx, admin, p.ID, dto.UpdateProductRequest{Category: ptr("Eléctrico")})
	require.NoError(t, err)
	assert.Equal(t, "Eléctrico", out.Category)
}

func TestProductSoftDeleteYHardDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := inventory.Actor{UserID: uuid.New().String(), Role: entity.RoleUser}
	admin := inventory.Actor{UserID: uuid.New().String(), Role: entity.RoleAdmin}
	p, err := f.products.Create(ctx, owner.UserID, dto.CreateProductRequest{Name: "Brocas", Quantity: 3})
	require.NoError(t, err)

	require.NoError(t, f.products.SoftDelete(ctx, owner, p.ID))
	assert.ErrorIs(t, f.products.SoftDelete(ctx, owner, p.ID), domain.ErrNotFound)

	list, err := f.products.ListMine(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, f.products.HardDelete(ctx, owner, p.ID), domain.ErrForbidden)
	require.NoError(t, f.products.HardDelete(ctx, admin, p.ID))
	assert.ErrorIs(t, f.products.HardDelete(ctx, admin, p.ID), domain.ErrNotFound)

	// el historial sobrevive al borrado definitivo
	movs, err := memory.NewStockMovementRepository(f.store).ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestProductSearch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New().String()
	for _, in := range []dto.CreateProductRequest{
		{Name: "Martillo", Quantity: 2, Category: "Herramientas"},
		{Name: "Martillo grande", Quantity: 20, Category: "Herramientas"},
		{Name: "Pintura", Quantity: 50, Category: "Acabados", Supplier: "Pinturas SA"},
	} {
		_, err := f.products.Create(ctx, owner, in)
		require.NoError(t, err)
	}
	_, err := f.products.Create(ctx, uuid.New().String(), dto.CreateProductRequest{Name: "Martillo ajeno", Quantity: 1})
	require.NoError(t, err)

	list, err := f.products.Search(ctx, owner, dto.ProductSearchQuery{Name: "martillo"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = f.products.Search(ctx, owner, dto.ProductSearchQuery{LowStock: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Martillo", list[0].Name)

	list, err = f.products.Search(ctx, owner, dto.ProductSearchQuery{MinQty: ptr(int64(10)), MaxQty: ptr(int64(30))})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Martillo grande", list[0].Name)

	list, err = f.products.Search(ctx, owner, dto.ProductSearchQuery{Supplier: "pinturas"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.products.Search(ctx, owner, dto.ProductSearchQuery{MinQty: ptr(int64(5)), MaxQty: ptr(int64(1))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserUseCase_AdminGestionaUsuarios(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adminID := f.addUser(t, entity.RoleAdmin)
	userID := f.addUser(t, entity.RoleUser)
	admin := inventory.Actor{UserID: adminID, Role: entity.RoleAdmin}

	list, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	out, err := f.users.Update(ctx, admin, userID, dto.AdminUpdateUserRequest{Role: ptr(entity.RoleAdmin), Name: ptr("Luis")})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, out.Role)
	assert.Equal(t, "Luis", out.Name)

	_, err = f.users.Update(ctx, admin, userID, dto.AdminUpdateUserRequest{Role: ptr("root")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, f.users.SoftDelete(ctx, admin, adminID), domain.ErrForbidden)
	require.NoError(t, f.users.SoftDelete(ctx, admin, userID))
	got, err := f.users.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)

	require.NoError(t, f.users.HardDelete(ctx, admin, userID))
	_, err = f.users.GetByID(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = f.users.GetByID(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)

	logs, err := f.audit.List(ctx, dto.AuditLogQuery{UserID: adminID})
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.ElementsMatch(t, []string{entity.AuditUpdateUser, entity.AuditDeleteUser, entity.AuditHardDeleteUser}, actions)
}

func TestAuditList_FechasInvalidas(t *testing.T) {
	f := newFixture()
	_, err := f.audit.List(context.Background(), dto.AuditLogQuery{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseQueryTime(t *testing.T) {
	to, err := parseQueryTime("2026-03-01", true)
	require.NoError(t, err)
	assert.Equal(t, 23, to.Hour())

	from, err := parseQueryTime("2026-03-01T10:00:00Z", false)
	require.NoError(t, err)
	assert.Equal(t, 10, from.Hour())

	none, err := parseQueryTime(" ", false)
	require.NoError(t, err)
	assert.Nil(t, none)
}
