package http_test

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	apphttp "github.com/jhoicas/Almacen-api/internal/interfaces/http"
)

// spyMovementRepo captura el filtro que el handler arma para el listado.
type spyMovementRepo struct {
	lastFilter repository.MovementFilter
}

func (r *spyMovementRepo) Create(*entity.Movement) error                  { return nil }
func (r *spyMovementRepo) GetByID(string) (*entity.Movement, error)       { return nil, nil }
func (r *spyMovementRepo) GetForUpdate(string) (*entity.Movement, error)  { return nil, nil }
func (r *spyMovementRepo) UpdateStatus(*entity.Movement) error            { return nil }
func (r *spyMovementRepo) List(f repository.MovementFilter) ([]*entity.Movement, error) {
	r.lastFilter = f
	return nil, nil
}
func (r *spyMovementRepo) ListByReference(string, string) ([]*entity.Movement, error) {
	return nil, nil
}
func (r *spyMovementRepo) History(string, string, int) ([]*entity.StockHistoryEntry, error) {
	return nil, nil
}

type emptyStockRepo struct{}

func (r *emptyStockRepo) Get(string, string) (*entity.StockRecord, error) {
	return nil, domain.ErrRecordNotFound
}
func (r *emptyStockRepo) GetForUpdate(string, string) (*entity.StockRecord, error) {
	return nil, domain.ErrRecordNotFound
}
func (r *emptyStockRepo) Upsert(*entity.StockRecord) error { return nil }
func (r *emptyStockRepo) ListByProduct(string, string) ([]*entity.StockRecord, error) {
	return nil, nil
}
func (r *emptyStockRepo) ListByProductForUpdate(string, string) ([]*entity.StockRecord, error) {
	return nil, nil
}
func (r *emptyStockRepo) ListByCompany(string, int, int) ([]*entity.StockRecord, error) {
	return nil, nil
}

// buildInventoryApp monta los endpoints de inventario detrás del AuthMiddleware.
// Los casos de uso van en nil: estas pruebas cubren la validación del handler,
// que corta antes de llegar a ellos.
func buildInventoryApp() *fiber.App {
	app := fiber.New()
	inv := apphttp.NewInventoryHandler(nil, nil, nil)
	alloc := apphttp.NewAllocationHandler(nil, nil)
	api := app.Group("/api", apphttp.AuthMiddleware(testJWTSecret))
	api.Post("/inventory/adjust", inv.Adjust)
	api.Post("/orders/:id/allocate", alloc.Allocate)
	return app
}

func TestAdjust_SinTokenDevuelve401(t *testing.T) {
	app := buildInventoryApp()

	req := httptest.NewRequest("POST", "/api/inventory/adjust", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdjust_RequiereExactamenteUnModo(t *testing.T) {
	app := buildInventoryApp()
	token := tokenForRole(t, "admin")

	cases := []struct {
		name string
		body string
	}{
		{"ambos modos", `{"product_id":"p1","warehouse_id":"w1","new_quantity":"10","delta":"5"}`},
		{"ningún modo", `{"product_id":"p1","warehouse_id":"w1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/inventory/adjust", bytes.NewReader([]byte(tc.body)))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", token)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAdjust_CuerpoInvalido(t *testing.T) {
	app := buildInventoryApp()

	req := httptest.NewRequest("POST", "/api/inventory/adjust", bytes.NewReader([]byte(`{no-es-json`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListMovements_OrdenCronologicoPorDefecto(t *testing.T) {
	spy := &spyMovementRepo{}
	inv := apphttp.NewInventoryHandler(nil, nil, inventory.NewQueryUseCase(&emptyStockRepo{}, spy))
	app := fiber.New()
	app.Get("/api/inventory/movements", apphttp.AuthMiddleware(testJWTSecret), inv.ListMovements)
	token := tokenForRole(t, "admin")

	req := httptest.NewRequest("GET", "/api/inventory/movements", nil)
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, spy.lastFilter.NewestFirst, "sin parámetro el ledger se lista ascendente")
	assert.Equal(t, 50, spy.lastFilter.Limit)

	req = httptest.NewRequest("GET", "/api/inventory/movements?newest_first=true", nil)
	req.Header.Set("Authorization", token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, spy.lastFilter.NewestFirst)
}

func TestAllocate_SinLineasDevuelve400(t *testing.T) {
	app := buildInventoryApp()

	req := httptest.NewRequest("POST", "/api/orders/order-001/allocate", bytes.NewReader([]byte(`{"line_items":[]}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
