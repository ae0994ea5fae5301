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
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

func newQueryFixture() (*memStore, *inventory.QueryUseCase) {
	store := newMemStore()
	return store, inventory.NewQueryUseCase(&memStockRepo{s: store}, &memMovementRepo{s: store})
}

func seedLedger(store *memStore) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []*entity.Movement{
		{
			ID: "mov-1", CompanyID: testCompany, ProductID: testProduct,
			ToWarehouseID: testWarehouse, Type: entity.MovementTypeInbound,
			Reason: entity.ReasonPurchaseOrder, Quantity: dec(100),
			BeforeQuantity: dec(0), AfterQuantity: dec(100),
			Status: entity.MovementStatusCompleted, OccurredAt: base,
		},
		{
			ID: "mov-2", CompanyID: testCompany, ProductID: testProduct,
			FromWarehouseID: testWarehouse, Type: entity.MovementTypeOutbound,
			Reason: entity.ReasonSalesOrder, Quantity: dec(-30),
			BeforeQuantity: dec(100), AfterQuantity: dec(70),
			Status: entity.MovementStatusCompleted, OccurredAt: base.Add(time.Hour),
		},
		{
			ID: "mov-3", CompanyID: testCompany, ProductID: testProduct,
			ToWarehouseID: testWarehouse, Type: entity.MovementTypeAdjustment,
			Reason: entity.ReasonManualAdjustment, Quantity: dec(150),
			Status: entity.MovementStatusPending, OccurredAt: base.Add(2 * time.Hour),
		},
	}
	store.mu.Lock()
	store.movements = append(store.movements, entries...)
	store.mu.Unlock()
}

func TestGetStock_FiltraPorEmpresa(t *testing.T) {
	store, uc := newQueryFixture()
	store.seedRecord(&entity.StockRecord{
		ID: "rec-1", CompanyID: testCompany, ProductID: testProduct,
		WarehouseID: testWarehouse, Quantity: dec(42), QualityStatus: entity.StockQualityGood,
	})
	ctx := context.Background()

	rec, err := uc.GetStock(ctx, testCompany, testProduct, testWarehouse)
	require.NoError(t, err)
	assert.True(t, rec.Quantity.Equal(dec(42)))

	_, err = uc.GetStock(ctx, "otra-empresa", testProduct, testWarehouse)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.GetStock(ctx, testCompany, "producto-fantasma", testWarehouse)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestGetMovements_FiltroYOrden(t *testing.T) {
	store, uc := newQueryFixture()
	seedLedger(store)
	ctx := context.Background()

	// Por defecto: cronológico ascendente, todos los estados.
	movs, err := uc.GetMovements(ctx, repository.MovementFilter{CompanyID: testCompany})
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, "mov-1", movs[0].ID)
	assert.Equal(t, "mov-3", movs[2].ID)

	// Más reciente primero.
	movs, err = uc.GetMovements(ctx, repository.MovementFilter{CompanyID: testCompany, NewestFirst: true})
	require.NoError(t, err)
	assert.Equal(t, "mov-3", movs[0].ID)

	// Filtro por tipo y por estado.
	movs, err = uc.GetMovements(ctx, repository.MovementFilter{
		CompanyID: testCompany, Type: entity.MovementTypeOutbound,
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "mov-2", movs[0].ID)

	movs, err = uc.GetMovements(ctx, repository.MovementFilter{
		CompanyID: testCompany, Status: entity.MovementStatusPending,
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "mov-3", movs[0].ID)

	// Rango temporal.
	from := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	movs, err = uc.GetMovements(ctx, repository.MovementFilter{CompanyID: testCompany, From: &from})
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestHistory_SoloCompletados(t *testing.T) {
	store, uc := newQueryFixture()
	seedLedger(store)

	entries, err := uc.History(context.Background(), testProduct, testWarehouse, 0)
	require.NoError(t, err)
	// El asiento pending no forma parte de la historia del registro.
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Change.Equal(dec(100)))
	assert.True(t, entries[0].PreviousQuantity.Equal(dec(0)))
	assert.True(t, entries[0].NewQuantity.Equal(dec(100)))
	assert.True(t, entries[1].Change.Equal(dec(-30)))
	assert.Equal(t, entity.ReasonSalesOrder, entries[1].Reason)

	_, err = uc.History(context.Background(), "", testWarehouse, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
