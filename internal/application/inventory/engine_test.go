package inventory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

var (
	ownerActor = Actor{UserID: "11111111-1111-1111-1111-111111111111", Role: entity.RoleUser}
	otherActor = Actor{UserID: "22222222-2222-2222-2222-222222222222", Role: entity.RoleUser}
	adminActor = Actor{UserID: "33333333-3333-3333-3333-333333333333", Role: entity.RoleAdmin}
)

// seedProduct crea un producto con su movimiento inicial para que el replay cuadre desde el inicio.
func seedProduct(s *memStore, quantity, threshold int64) string {
	id := uuid.New().String()
	s.addProduct(&entity.Product{
		ID: id, Name: "Café molido", Quantity: quantity, ReorderThreshold: threshold,
		OwnerID: ownerActor.UserID, CreatedAt: fixedNow, UpdatedAt: fixedNow,
	})
	if quantity > 0 {
		s.mu.Lock()
		s.movements = append(s.movements, &entity.StockMovement{
			ID: uuid.New().String(), ProductID: id, UserID: ownerActor.UserID,
			Change: quantity, Type: entity.MovementTypeIn, Note: entity.DefaultNoteInitial, CreatedAt: fixedNow,
		})
		s.mu.Unlock()
	}
	return id
}

func newTestEngine(s *memStore, opts ...EngineOption) *LedgerEngine {
	opts = append([]EngineOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewLedgerEngine(memTxRunner{s: s}, NewLocalLocker(), opts...)
}

func replay(s *memStore, id string) int64 {
	var sum int64
	for _, m := range s.movementsFor(id) {
		sum += m.Change
	}
	return sum
}

func TestIssue_ConStockYLuegoInsuficiente(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 10, 5)
	eng := newTestEngine(s)
	ctx := context.Background()

	res, err := eng.Issue(ctx, id, 8, "", ownerActor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Item.Quantity)
	assert.True(t, res.LowStock)
	assert.True(t, res.Changed)
	require.NotNil(t, res.Movement)
	assert.Equal(t, int64(-8), res.Movement.Change)
	assert.Equal(t, entity.MovementTypeOut, res.Movement.Type)
	assert.Equal(t, entity.DefaultNoteOut, res.Movement.Note)
	assert.Equal(t, ownerActor.UserID, res.Movement.UserID)

	before := len(s.movementsFor(id))
	_, err = eng.Issue(ctx, id, 5, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), s.product(id).Quantity)
	assert.Len(t, s.movementsFor(id), before)
}

func TestReceive_DesdeCero(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 0, 5)
	eng := newTestEngine(s)

	res, err := eng.Receive(context.Background(), id, 5, "compra proveedor", ownerActor)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Item.Quantity)
	assert.True(t, res.LowStock, "5 <= 5 es stock bajo")
	assert.Equal(t, int64(5), res.Movement.Change)
	assert.Equal(t, entity.MovementTypeIn, res.Movement.Type)
	assert.Equal(t, "compra proveedor", res.Movement.Note)

	res, err = eng.Receive(context.Background(), id, 1, "", ownerActor)
	require.NoError(t, err)
	assert.False(t, res.LowStock)
}

func TestReconcile_IdentificadorInvalido(t *testing.T) {
	s := newMemStore()
	s.failGet = errors.New("no debe consultarse")
	eng := newTestEngine(s)

	_, err := eng.Reconcile(context.Background(), "not-a-valid-id", 3, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
	assert.Empty(t, s.movements)
}

func TestOperaciones_IdentificadorInvalido(t *testing.T) {
	eng := newTestEngine(newMemStore())
	ctx := context.Background()

	_, err := eng.Receive(ctx, "abc", 1, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
	_, err = eng.Issue(ctx, "", 1, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
}

func TestReconcile_Diferencias(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 10, 5)
	eng := newTestEngine(s)
	ctx := context.Background()

	res, err := eng.Reconcile(ctx, id, 3, "conteo físico", ownerActor)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Item.Quantity)
	assert.Equal(t, int64(-7), res.Movement.Change)
	assert.Equal(t, entity.MovementTypeAdjustment, res.Movement.Type)

	res, err = eng.Reconcile(ctx, id, 12, "", ownerActor)
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.Movement.Change)
	assert.Equal(t, entity.DefaultNoteAdjustment, res.Movement.Note)
	assert.Equal(t, int64(12), replay(s, id))
}

func TestReconcile_SinDiferenciaNoRegistraMovimiento(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 7, 5)
	eng := newTestEngine(s)
	before := len(s.movementsFor(id))

	res, err := eng.Reconcile(context.Background(), id, 7, "", ownerActor)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Nil(t, res.Movement)
	assert.Equal(t, int64(7), res.Item.Quantity)
	assert.False(t, res.LowStock)
	assert.Len(t, s.movementsFor(id), before)
}

func TestValidacionDeMontos(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 10, 5)
	eng := newTestEngine(s)
	ctx := context.Background()

	_, err := eng.Receive(ctx, id, 0, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = eng.Issue(ctx, id, -2, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = eng.Reconcile(ctx, id, -1, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = eng.Receive(ctx, id, 1, strings.Repeat("x", entity.MovementNoteMaxLen+1), ownerActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, int64(10), s.product(id).Quantity)
	assert.Len(t, s.movementsFor(id), 1)
}

func TestProductoInexistenteOEliminado(t *testing.T) {
	s := newMemStore()
	eng := newTestEngine(s)
	ctx := context.Background()

	_, err := eng.Receive(ctx, uuid.New().String(), 1, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	id := seedProduct(s, 4, 1)
	s.products[id].IsDeleted = true
	_, err = eng.Issue(ctx, id, 1, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(4), s.product(id).Quantity)
}

func TestControlDePropiedad(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 10, 2)
	ctx := context.Background()

	libre := newTestEngine(s)
	_, err := libre.Issue(ctx, id, 1, "", otherActor)
	require.NoError(t, err, "sin control de propiedad cualquier usuario mueve stock")

	estricto := newTestEngine(s, WithOwnershipCheck(true))
	_, err = estricto.Issue(ctx, id, 1, "", otherActor)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = estricto.Issue(ctx, id, 1, "", adminActor)
	assert.NoError(t, err)
	_, err = estricto.Issue(ctx, id, 1, "", ownerActor)
	assert.NoError(t, err)

	assert.Equal(t, int64(7), s.product(id).Quantity)
}

func TestFalloAlRegistrarMovimiento_NoModificaCantidad(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 10, 2)
	s.failMovementCreate = errors.New("connection reset")
	eng := newTestEngine(s)

	_, err := eng.Receive(context.Background(), id, 5, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, int64(10), s.product(id).Quantity)
	assert.Len(t, s.movementsFor(id), 1)
}

func TestFalloEnCommit_EsStorageFailure(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 10, 2)
	s.failCommit = errors.New("commit falló")
	eng := newTestEngine(s)

	_, err := eng.Issue(context.Background(), id, 1, "", ownerActor)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, int64(10), s.product(id).Quantity)
}

// errLocker simula un backend de lock que falla siempre con err.
type errLocker struct{ err error }

func (l errLocker) Lock(context.Context, string) (func(), error) { return nil, l.err }

func TestErroresDeLock(t *testing.T) {
	cases := []struct {
		name    string
		lockErr error
		want    error
		notWant error
	}{
		{"espera vencida", context.DeadlineExceeded, domain.ErrLockTimeout, domain.ErrStorageFailure},
		{"ctx cancelado", context.Canceled, domain.ErrLockTimeout, domain.ErrStorageFailure},
		{"redis caído", errors.New("redis setnx: dial tcp 10.0.0.5:6379: connection refused"), domain.ErrStorageFailure, domain.ErrLockTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newMemStore()
			id := seedProduct(s, 10, 2)
			eng := NewLedgerEngine(memTxRunner{s: s}, errLocker{err: tc.lockErr})

			_, err := eng.Issue(context.Background(), id, 1, "", ownerActor)
			assert.ErrorIs(t, err, tc.want)
			assert.NotErrorIs(t, err, tc.notWant)
			assert.Equal(t, int64(10), s.product(id).Quantity)
		})
	}
}

func TestReplayTrasSecuencia(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 10, 5)
	eng := newTestEngine(s)
	ctx := context.Background()

	ops := []func() error{
		func() error { _, err := eng.Receive(ctx, id, 15, "", ownerActor); return err },
		func() error { _, err := eng.Issue(ctx, id, 7, "", ownerActor); return err },
		func() error { _, err := eng.Issue(ctx, id, 100, "", ownerActor); return err },
		func() error { _, err := eng.Reconcile(ctx, id, 4, "", ownerActor); return err },
		func() error { _, err := eng.Reconcile(ctx, id, 4, "", ownerActor); return err },
		func() error { _, err := eng.Receive(ctx, id, 3, "", ownerActor); return err },
	}
	for _, op := range ops {
		_ = op()
		assert.Equal(t, s.product(id).Quantity, replay(s, id))
	}
	assert.Equal(t, int64(7), s.product(id).Quantity)
	// inicial + receive + issue + reconcile + receive
	assert.Len(t, s.movementsFor(id), 5)
	for _, m := range s.movementsFor(id) {
		assert.NotZero(t, m.Change)
	}
}

func TestLowStock_SeRecalculaConElUmbral(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 10, 5)
	eng := newTestEngine(s)
	ctx := context.Background()

	res, err := eng.Receive(ctx, id, 1, "", ownerActor)
	require.NoError(t, err)
	assert.False(t, res.LowStock)

	s.products[id].ReorderThreshold = 20
	res, err = eng.Receive(ctx, id, 1, "", ownerActor)
	require.NoError(t, err)
	assert.True(t, res.LowStock)
}

func TestSalidasConcurrentes_SeSerializan(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 30, 0)
	eng := newTestEngine(s)

	const workers = 50
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Issue(context.Background(), id, 1, "", ownerActor)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, ok)
	assert.Equal(t, 20, rejected)
	assert.Equal(t, int64(0), s.product(id).Quantity)
	assert.Equal(t, int64(0), replay(s, id))
	assert.Len(t, s.movementsFor(id), 31)
}

func TestMetricas(t *testing.T) {
	s := newMemStore()
	id := seedProduct(s, 3, 1)
	m := metrics.New()
	eng := newTestEngine(s, WithMetrics(m))
	ctx := context.Background()

	_, _ = eng.Receive(ctx, id, 2, "", ownerActor)
	_, _ = eng.Issue(ctx, id, 50, "", ownerActor)
	_, _ = eng.Reconcile(ctx, "x", 1, "", ownerActor)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MovementsTotal.WithLabelValues(entity.MovementTypeIn)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedTotal.WithLabelValues(OpIssue, "insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedTotal.WithLabelValues(OpReconcile, "invalid_identifier")))
}
