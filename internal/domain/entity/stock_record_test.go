package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

func record(qty, reserved int64, quality string) *entity.StockRecord {
	r := &entity.StockRecord{
		ProductID:        "00000000-0000-0000-0000-000000000010",
		WarehouseID:      "00000000-0000-0000-0000-000000000020",
		Quantity:         decimal.NewFromInt(qty),
		ReservedQuantity: decimal.NewFromInt(reserved),
		QualityStatus:    quality,
		ReceivedAt:       time.Now(),
	}
	r.Recompute()
	return r
}

func TestStockRecord_RecomputeYInvariantes(t *testing.T) {
	r := record(100, 30, entity.StockQualityGood)

	assert.True(t, r.AvailableQuantity.Equal(decimal.NewFromInt(70)))
	assert.True(t, r.InvariantsHold())

	// Reservar más de lo que hay rompe el invariante
	r.ReservedQuantity = decimal.NewFromInt(150)
	r.Recompute()
	assert.False(t, r.InvariantsHold(), "reserved > quantity debe romper el invariante")

	// Cantidad negativa también
	r2 := record(0, 0, entity.StockQualityGood)
	r2.Quantity = decimal.NewFromInt(-1)
	r2.Recompute()
	assert.False(t, r2.InvariantsHold())
}

func TestStockRecord_Allocatable(t *testing.T) {
	assert.True(t, record(10, 0, entity.StockQualityGood).Allocatable())
	assert.False(t, record(10, 10, entity.StockQualityGood).Allocatable(), "sin disponible no es asignable")
	assert.False(t, record(10, 0, entity.StockQualityDamaged).Allocatable(), "calidad damaged no es asignable")
	assert.False(t, record(10, 0, entity.StockQualityQuarantine).Allocatable())
}

func TestStockRecord_TotalCost(t *testing.T) {
	r := record(4, 0, entity.StockQualityGood)
	r.UnitCost = decimal.RequireFromString("2.50")
	assert.True(t, r.TotalCost().Equal(decimal.NewFromInt(10)))
}

func TestStockRecord_IsLow(t *testing.T) {
	r := record(5, 0, entity.StockQualityGood)
	r.MinimumQuantity = decimal.NewFromInt(10)
	assert.True(t, r.IsLow())

	r.MinimumQuantity = decimal.Zero
	assert.False(t, r.IsLow(), "sin mínimo configurado nunca está low")

	r.MinimumQuantity = decimal.NewFromInt(5)
	assert.False(t, r.IsLow(), "igual al mínimo no está low")
}
