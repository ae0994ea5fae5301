package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

func newCompensatorFixture() (*memStore, *inventory.AllocatorUseCase, *inventory.CompensatorUseCase) {
	store := newMemStore()
	cfg := inventory.Config{ApprovalThreshold: 100, MaxRetries: 3}
	log := testLogger()
	return store, inventory.NewAllocatorUseCase(store, cfg, log), inventory.NewCompensatorUseCase(store, cfg, log)
}

// Ciclo completo asignar → cancelar: la compensación restaura exactamente lo
// extraído a la misma bodega y deja el asiento de devolución espejo.
func TestCompensateForOrder_RestauraLoAsignado(t *testing.T) {
	store, alloc, comp := newCompensatorFixture()
	store.seedRecord(&entity.StockRecord{
		ID: "rec-1", CompanyID: testCompany, ProductID: testProduct,
		WarehouseID: testWarehouse, Quantity: dec(100), UnitCost: dec(15),
		QualityStatus: entity.StockQualityGood,
	})
	ctx := context.Background()
	lines := []entity.OrderLineItem{{ProductID: testProduct, Quantity: dec(30)}}

	_, err := alloc.AllocateForOrder(ctx, testCompany, testUser, "order-010", lines)
	require.NoError(t, err)
	require.True(t, store.record(testProduct, testWarehouse).Quantity.Equal(dec(70)))

	err = comp.CompensateForOrder(ctx, testCompany, testUser, "order-010", lines)
	require.NoError(t, err)

	rec := store.record(testProduct, testWarehouse)
	assert.True(t, rec.Quantity.Equal(dec(100)), "la cantidad vuelve al valor previo")
	assert.True(t, rec.InvariantsHold())

	movs := store.allMovements()
	require.Len(t, movs, 2, "outbound original + asiento de devolución")
	ret := movs[1]
	assert.Equal(t, entity.MovementTypeReturn, ret.Type)
	assert.Equal(t, entity.ReasonCustomerReturn, ret.Reason)
	assert.Equal(t, entity.MovementStatusCompleted, ret.Status)
	assert.True(t, ret.Quantity.Equal(dec(30)))
	assert.True(t, ret.BeforeQuantity.Equal(dec(70)))
	assert.True(t, ret.AfterQuantity.Equal(dec(100)))
	assert.Equal(t, entity.ReferenceOrder, ret.ReferenceType)
	assert.Equal(t, "order-010", ret.ReferenceID)
	assert.Equal(t, testWarehouse, ret.ToWarehouseID)
}

// Una asignación repartida entre bodegas se compensa bodega por bodega, guiada
// por los asientos outbound de la orden.
func TestCompensateForOrder_RestauraPorBodegaOriginal(t *testing.T) {
	store, alloc, comp := newCompensatorFixture()
	now := time.Now()
	expiry := now.Add(24 * time.Hour)
	store.seedRecord(&entity.StockRecord{
		ID: "rec-a", CompanyID: testCompany, ProductID: testProduct,
		WarehouseID: "wh-a", Quantity: dec(50), ReceivedAt: now.AddDate(0, -1, 0),
		QualityStatus: entity.StockQualityGood,
	})
	store.seedRecord(&entity.StockRecord{
		ID: "rec-b", CompanyID: testCompany, ProductID: testProduct,
		WarehouseID: "wh-b", Quantity: dec(6), ExpiryDate: &expiry, ReceivedAt: now,
		QualityStatus: entity.StockQualityGood,
	})
	ctx := context.Background()
	lines := []entity.OrderLineItem{{ProductID: testProduct, Quantity: dec(10)}}

	_, err := alloc.AllocateForOrder(ctx, testCompany, testUser, "order-011", lines)
	require.NoError(t, err)

	err = comp.CompensateForOrder(ctx, testCompany, testUser, "order-011", lines)
	require.NoError(t, err)

	assert.True(t, store.record(testProduct, "wh-a").Quantity.Equal(dec(50)))
	assert.True(t, store.record(testProduct, "wh-b").Quantity.Equal(dec(6)))
}

// Dos líneas del mismo producto comparten el plan del ledger: la restauración
// ocurre una sola vez por producto, nunca una vez por línea.
func TestCompensateForOrder_LineasDuplicadasNoInflan(t *testing.T) {
	store, alloc, comp := newCompensatorFixture()
	store.seedRecord(&entity.StockRecord{
		ID: "rec-1", CompanyID: testCompany, ProductID: testProduct,
		WarehouseID: testWarehouse, Quantity: dec(100), QualityStatus: entity.StockQualityGood,
	})
	ctx := context.Background()
	lines := []entity.OrderLineItem{
		{ProductID: testProduct, Quantity: dec(10)},
		{ProductID: testProduct, Quantity: dec(5)},
	}

	_, err := alloc.AllocateForOrder(ctx, testCompany, testUser, "order-013", lines)
	require.NoError(t, err)
	require.True(t, store.record(testProduct, testWarehouse).Quantity.Equal(dec(85)))

	err = comp.CompensateForOrder(ctx, testCompany, testUser, "order-013", lines)
	require.NoError(t, err)

	rec := store.record(testProduct, testWarehouse)
	assert.True(t, rec.Quantity.Equal(dec(100)), "el ciclo debe restaurar 100, quedó %s", rec.Quantity)

	// 2 outbound de la asignación + 1 devolución agregada de 15.
	movs := store.allMovements()
	require.Len(t, movs, 3)
	ret := movs[2]
	assert.Equal(t, entity.MovementTypeReturn, ret.Type)
	assert.True(t, ret.Quantity.Equal(dec(15)))
}

// Sin vínculo por ledger las líneas duplicadas también restauran su total una
// sola vez.
func TestCompensateForOrder_FallbackAgregaLineasDuplicadas(t *testing.T) {
	store, _, comp := newCompensatorFixture()
	store.seedRecord(&entity.StockRecord{
		ID: "rec-1", CompanyID: testCompany, ProductID: testProduct,
		WarehouseID: testWarehouse, Quantity: dec(40), QualityStatus: entity.StockQualityGood,
	})

	err := comp.CompensateForOrder(context.Background(), testCompany, testUser, "order-sin-ledger",
		[]entity.OrderLineItem{
			{ProductID: testProduct, Quantity: dec(10)},
			{ProductID: testProduct, Quantity: dec(5)},
		})
	require.NoError(t, err)

	assert.True(t, store.record(testProduct, testWarehouse).Quantity.Equal(dec(55)))
	require.Len(t, store.allMovements(), 1)
	assert.True(t, store.allMovements()[0].Quantity.Equal(dec(15)))
}

// Sin asientos outbound (vínculo por ledger ausente) la compensación cae al
// primer registro del producto.
func TestCompensateForOrder_SinVinculoUsaPrimerRegistro(t *testing.T) {
	store, _, comp := newCompensatorFixture()
	store.seedRecord(&entity.StockRecord{
		ID: "rec-1", CompanyID: testCompany, ProductID: testProduct,
		WarehouseID: testWarehouse, Quantity: dec(40), QualityStatus: entity.StockQualityGood,
	})

	err := comp.CompensateForOrder(context.Background(), testCompany, testUser, "order-huerfana",
		[]entity.OrderLineItem{{ProductID: testProduct, Quantity: dec(5)}})
	require.NoError(t, err)

	assert.True(t, store.record(testProduct, testWarehouse).Quantity.Equal(dec(45)))

	movs := store.allMovements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeReturn, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(dec(5)))
}

// Si no existe registro alguno para restaurar es una falla de integridad: la
// operación falla en vez de aparentar éxito.
func TestCompensateForOrder_SinRegistroFalla(t *testing.T) {
	store, _, comp := newCompensatorFixture()

	err := comp.CompensateForOrder(context.Background(), testCompany, testUser, "order-012",
		[]entity.OrderLineItem{{ProductID: "producto-fantasma", Quantity: dec(3)}})
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	assert.Empty(t, store.allMovements())
}

func TestCompensateForOrder_OrdenVacia(t *testing.T) {
	_, _, comp := newCompensatorFixture()
	err := comp.CompensateForOrder(context.Background(), testCompany, testUser, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
