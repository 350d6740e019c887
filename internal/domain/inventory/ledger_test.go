package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestReceive(t *testing.T) {
	q, change, err := Receive(0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), q)
	assert.Equal(t, int64(5), change)

	_, _, err = Receive(10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = Receive(10, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIssue(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
		amount   int64
		wantQty  int64
		wantErr  error
	}{
		{"salida normal", 10, 8, 2, nil},
		{"deja en cero", 4, 4, 0, nil},
		{"insuficiente", 2, 5, 2, domain.ErrInsufficientStock},
		{"monto cero", 2, 0, 2, domain.ErrInvalidInput},
		{"monto negativo", 2, -1, 2, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, change, err := Issue(tt.quantity, tt.amount)
			assert.Equal(t, tt.wantQty, q)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, change)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, -tt.amount, change)
		})
	}
}

func TestReconcile(t *testing.T) {
	q, change, err := Reconcile(10, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), q)
	assert.Equal(t, int64(-7), change)

	q, change, err = Reconcile(3, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), q)
	assert.Zero(t, change)

	_, _, err = Reconcile(3, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReplay(t *testing.T) {
	movs := []*entity.StockMovement{{Change: 10}, {Change: -8}, {Change: 5}, {Change: -2}}
	assert.Equal(t, int64(5), Replay(movs))
	assert.Zero(t, Replay(nil))
}

func TestComputeStats(t *testing.T) {
	products := []*entity.Product{
		{Quantity: 10, ReorderThreshold: 5, Category: "bebidas"},
		{Quantity: 2, ReorderThreshold: 5, Category: "bebidas"},
		{Quantity: 5, ReorderThreshold: 5, Category: "aseo"},
		{Quantity: 100, ReorderThreshold: 5, Category: "aseo", IsDeleted: true},
	}
	st := ComputeStats(products)

	assert.Equal(t, int64(3), st.TotalItems)
	assert.Equal(t, int64(17), st.TotalQuantity)
	assert.Equal(t, int64(2), st.LowStockCount)
	assert.Equal(t, []CategoryCount{{"bebidas", 2}, {"aseo", 1}}, st.CategoryBreakdown)
}

func TestComputeStats_Vacio(t *testing.T) {
	st := ComputeStats(nil)
	assert.Zero(t, st.TotalItems)
	assert.NotNil(t, st.CategoryBreakdown)
}
