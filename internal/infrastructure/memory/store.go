// Package memory implementa los puertos de persistencia en memoria.
// Sirve para desarrollo local sin PostgreSQL (DB_DRIVER=memory) y como doble de pruebas
// de las capas de aplicación y HTTP.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.AuditLogRepository      = (*AuditLogRepo)(nil)
	_ repository.StatsRepository         = (*StatsRepo)(nil)
	_ inventory.TxRunner                 = (*TxRunner)(nil)
)

// Store estado compartido por todos los repos en memoria.
type Store struct {
	mu        sync.RWMutex
	txMu      sync.Mutex // las transacciones se ejecutan de a una
	users     map[string]entity.User
	products  map[string]entity.Product
	movements []entity.StockMovement
	audit     []entity.AuditLog
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		users:    map[string]entity.User{},
		products: map[string]entity.Product{},
	}
}

// journal acumula las operaciones que deshacen las escrituras de una transacción.
// Solo registra lo que la propia transacción escribió: las escrituras concurrentes
// hechas fuera de ella sobreviven al rollback.
type journal struct {
	undo []func()
}

// record se llama con s.mu tomado.
func (j *journal) record(fn func()) {
	if j != nil {
		j.undo = append(j.undo, fn)
	}
}

// TxRunner transacción en memoria: si fn falla se deshacen sus escrituras.
type TxRunner struct{ s *Store }

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

// Run ejecuta fn con repos ligados a la transacción; rollback de sus escrituras si devuelve error.
func (r *TxRunner) Run(ctx context.Context, fn func(repository.ProductRepository, repository.StockMovementRepository) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	j := &journal{}
	if err := fn(&ProductRepo{s: r.s, j: j}, &StockMovementRepo{s: r.s, j: j}); err != nil {
		r.s.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		r.s.mu.Unlock()
		return err
	}
	return nil
}

// ProductRepo productos en memoria.
type ProductRepo struct {
	s *Store
	j *journal
}

// NewProductRepository construye el repo.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	id := p.ID
	r.s.products[id] = *p
	r.j.record(func() { delete(r.s.products, id) })
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetForUpdate igual que GetByID; la exclusión la dan TxRunner y el ItemLocker.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok || cur.IsDeleted {
		return nil
	}
	upd := *p
	upd.Quantity = cur.Quantity
	upd.OwnerID = cur.OwnerID
	upd.CreatedAt = cur.CreatedAt
	r.j.record(r.restoreProduct(p.ID))
	r.s.products[p.ID] = upd
	return nil
}

func (r *ProductRepo) UpdateQuantity(_ context.Context, id string, quantity int64) error {
	if quantity < 0 {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	prevQty, prevUpdated := p.Quantity, p.UpdatedAt
	p.Quantity = quantity
	p.UpdatedAt = time.Now().UTC()
	r.s.products[id] = p
	// solo la cantidad: otros campos pudieron cambiar fuera de la tx
	r.j.record(func() {
		if cur, ok := r.s.products[id]; ok {
			cur.Quantity, cur.UpdatedAt = prevQty, prevUpdated
			r.s.products[id] = cur
		}
	})
	return nil
}

func (r *ProductRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.products[id]; ok {
		r.j.record(r.restoreProduct(id))
		p.IsDeleted = true
		p.UpdatedAt = time.Now().UTC()
		r.s.products[id] = p
	}
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.j.record(r.restoreProduct(id))
	delete(r.s.products, id)
	return nil
}

// restoreProduct captura el estado actual del producto para el rollback. Requiere s.mu.
func (r *ProductRepo) restoreProduct(id string) func() {
	prev, existed := r.s.products[id]
	return func() {
		if existed {
			r.s.products[id] = prev
		} else {
			delete(r.s.products, id)
		}
	}
}

func (r *ProductRepo) Search(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Product{}
	for _, p := range r.s.products {
		if !matchProduct(p, f) {
			continue
		}
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchProduct(p entity.Product, f repository.ProductFilter) bool {
	switch {
	case p.IsDeleted:
		return false
	case f.OwnerID != "" && p.OwnerID != f.OwnerID:
		return false
	case f.Name != "" && !containsFold(p.Name, f.Name):
		return false
	case f.Category != "" && p.Category != f.Category:
		return false
	case f.Unit != "" && p.Unit != f.Unit:
		return false
	case f.Supplier != "" && !containsFold(p.Supplier, f.Supplier):
		return false
	case f.LowStock && !p.IsLowStock():
		return false
	case f.MinQty != nil && p.Quantity < *f.MinQty:
		return false
	case f.MaxQty != nil && p.Quantity > *f.MaxQty:
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r *ProductRepo) ListIDs(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := []string{}
	for id, p := range r.s.products {
		if !p.IsDeleted {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// StockMovementRepo log de movimientos en memoria (append-only).
type StockMovementRepo struct {
	s *Store
	j *journal
}

// NewStockMovementRepository construye el repo.
func NewStockMovementRepository(s *Store) *StockMovementRepo { return &StockMovementRepo{s: s} }

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if m.Change == 0 || !entity.IsValidMovementType(m.Type) {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *m)
	id := m.ID
	r.j.record(func() {
		for i := len(r.s.movements) - 1; i >= 0; i-- {
			if r.s.movements[i].ID == id {
				r.s.movements = append(r.s.movements[:i], r.s.movements[i+1:]...)
				return
			}
		}
	})
	return nil
}

// newestFirst recorre el log de atrás hacia adelante: el orden de inserción es el orden temporal.
func (r *StockMovementRepo) newestFirst(match func(entity.StockMovement) bool, visit func(entity.StockMovement)) {
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if match(r.s.movements[i]) {
			visit(r.s.movements[i])
		}
	}
}

func (r *StockMovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.ItemMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.ItemMovement{}
	r.newestFirst(func(m entity.StockMovement) bool { return m.ProductID == productID }, func(m entity.StockMovement) {
		im := &entity.ItemMovement{StockMovement: m}
		if u, ok := r.s.users[m.UserID]; ok {
			im.UserName, im.UserEmail = u.Name, u.Email
		}
		out = append(out, im)
	})
	return out, nil
}

func (r *StockMovementRepo) ListByUser(_ context.Context, userID string) ([]*entity.UserMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.UserMovement{}
	r.newestFirst(func(m entity.StockMovement) bool { return m.UserID == userID }, func(m entity.StockMovement) {
		um := &entity.UserMovement{StockMovement: m}
		if p, ok := r.s.products[m.ProductID]; ok {
			um.ProductName = p.Name
		}
		out = append(out, um)
	})
	return out, nil
}

func (r *StockMovementRepo) SumByProduct(_ context.Context, productID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sum int64
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			sum += m.Change
		}
	}
	return sum, nil
}
