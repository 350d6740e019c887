package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// memStore almacenamiento en memoria con transacciones de escritura diferida:
// las escrituras de una tx solo se ven al hacer commit, igual que en PostgreSQL.
type memStore struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	users     map[string]*entity.User

	failMovementCreate error
	failGet            error
	failCommit         error
}

func newMemStore() *memStore {
	return &memStore{products: map[string]*entity.Product{}, users: map[string]*entity.User{}}
}

func (s *memStore) addProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

func (s *memStore) product(id string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (s *memStore) movementsFor(productID string) []*entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// setQuantity escribe directo la cantidad, saltándose el log (simula deriva).
func (s *memStore) setQuantity(id string, q int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id].Quantity = q
}

// memTx escrituras pendientes de una transacción.
type memTx struct {
	qty  map[string]int64
	movs []*entity.StockMovement
}

type memTxRunner struct{ s *memStore }

func (r memTxRunner) Run(ctx context.Context, fn func(repository.ProductRepository, repository.StockMovementRepository) error) error {
	tx := &memTx{qty: map[string]int64{}}
	if err := fn(&memProductRepo{s: r.s, tx: tx}, &memMovementRepo{s: r.s, tx: tx}); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failCommit != nil {
		return r.s.failCommit
	}
	for id, q := range tx.qty {
		if p, ok := r.s.products[id]; ok {
			p.Quantity = q
		}
	}
	r.s.movements = append(r.s.movements, tx.movs...)
	return nil
}

type memProductRepo struct {
	s  *memStore
	tx *memTx
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.addProduct(p)
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failGet != nil {
		return nil, r.s.failGet
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	if r.tx != nil {
		if q, ok := r.tx.qty[id]; ok {
			cp.Quantity = q
		}
	}
	return &cp, nil
}

func (r *memProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return nil
	}
	q := cur.Quantity
	cp := *p
	cp.Quantity = q
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) UpdateQuantity(_ context.Context, id string, quantity int64) error {
	if r.tx != nil {
		r.tx.qty[id] = quantity
		return nil
	}
	r.s.setQuantity(id, quantity)
	return nil
}

func (r *memProductRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.products[id]; ok {
		p.IsDeleted = true
	}
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

func (r *memProductRepo) Search(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.IsDeleted || (f.OwnerID != "" && p.OwnerID != f.OwnerID) {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.LowStock && !p.IsLowStock() {
			continue
		}
		if f.MinQty != nil && p.Quantity < *f.MinQty {
			continue
		}
		if f.MaxQty != nil && p.Quantity > *f.MaxQty {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProductRepo) ListIDs(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, p := range r.s.products {
		if !p.IsDeleted {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type memMovementRepo struct {
	s  *memStore
	tx *memTx
}

func (r *memMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	fail := r.s.failMovementCreate
	r.s.mu.Unlock()
	if fail != nil {
		return fail
	}
	if r.tx != nil {
		r.tx.movs = append(r.tx.movs, m)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, m)
	return nil
}

func (r *memMovementRepo) newestFirst(match func(*entity.StockMovement) bool) []*entity.StockMovement {
	var out []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if match(r.s.movements[i]) {
			out = append(out, r.s.movements[i])
		}
	}
	return out
}

func (r *memMovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.ItemMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ItemMovement
	for _, m := range r.newestFirst(func(m *entity.StockMovement) bool { return m.ProductID == productID }) {
		im := &entity.ItemMovement{StockMovement: *m}
		if u, ok := r.s.users[m.UserID]; ok {
			im.UserName, im.UserEmail = u.Name, u.Email
		}
		out = append(out, im)
	}
	return out, nil
}

func (r *memMovementRepo) ListByUser(_ context.Context, userID string) ([]*entity.UserMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.UserMovement
	for _, m := range r.newestFirst(func(m *entity.StockMovement) bool { return m.UserID == userID }) {
		um := &entity.UserMovement{StockMovement: *m}
		if p, ok := r.s.products[m.ProductID]; ok {
			um.ProductName = p.Name
		}
		out = append(out, um)
	}
	return out, nil
}

func (r *memMovementRepo) SumByProduct(_ context.Context, productID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			sum += m.Change
		}
	}
	if r.tx != nil {
		for _, m := range r.tx.movs {
			if m.ProductID == productID {
				sum += m.Change
			}
		}
	}
	return sum, nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
