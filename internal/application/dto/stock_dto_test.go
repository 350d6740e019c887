package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestLowStockNotification(t *testing.T) {
	assert.Nil(t, LowStockNotification(&entity.Product{Name: "Té", Quantity: 6, ReorderThreshold: 5}))

	n := LowStockNotification(&entity.Product{Name: "Té", Quantity: 1, ReorderThreshold: 5})
	if assert.NotNil(t, n) {
		assert.Equal(t, "warning", n.Type)
		assert.Contains(t, n.Message, `"Té"`)
		assert.Contains(t, n.Message, "1 unidad restante")
	}

	n = LowStockNotification(&entity.Product{Name: "Té", Quantity: 5, ReorderThreshold: 5})
	if assert.NotNil(t, n) {
		assert.Contains(t, n.Message, "5 unidades restantes")
	}
}

func TestFromItemMovements_Anota(t *testing.T) {
	list := FromItemMovements([]*entity.ItemMovement{{
		StockMovement: entity.StockMovement{ID: "m1", Change: -3, Type: entity.MovementTypeOut},
		UserName:      "Ana",
		UserEmail:     "ana@tienda.co",
	}})
	assert.Len(t, list, 1)
	assert.Equal(t, "Salida", list[0].TypeLabel)
	assert.Equal(t, "Ana", list[0].UserName)
	assert.NotNil(t, FromItemMovements(nil))
}
