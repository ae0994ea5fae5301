package inventory_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// memStore simula la base de datos: un TxRunner que serializa transacciones con
// un mutex y revierte el estado completo si fn devuelve error, igual que el
// rollback de pgx. Los repos devuelven copias para que una mutación sin Upsert
// no se filtre al estado "persistido".
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	records   map[string]*entity.StockRecord // productID|warehouseID
	movements []*entity.Movement
	products  map[string]*entity.Product
}

func newMemStore() *memStore {
	return &memStore{
		records:  make(map[string]*entity.StockRecord),
		products: make(map[string]*entity.Product),
	}
}

func stockKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

// Run ejecuta fn bajo el mutex (transacciones serializadas) con snapshot previo:
// si fn falla, el estado vuelve exactamente a como estaba.
func (s *memStore) Run(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRecordRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordsSnap := make(map[string]*entity.StockRecord, len(s.records))
	for k, v := range s.records {
		cp := *v
		recordsSnap[k] = &cp
	}
	movementsSnap := make([]*entity.Movement, len(s.movements))
	for i, m := range s.movements {
		cp := *m
		movementsSnap[i] = &cp
	}
	productsSnap := make(map[string]*entity.Product, len(s.products))
	for k, v := range s.products {
		cp := *v
		productsSnap[k] = &cp
	}

	err := fn(&memMovementRepo{s: s}, &memStockRepo{s: s}, &memProductRepo{s: s})
	if err != nil {
		s.records = recordsSnap
		s.movements = movementsSnap
		s.products = productsSnap
	}
	return err
}

// seedRecord persiste un registro (copia) directamente, fuera de toda transacción.
func (s *memStore) seedRecord(r *entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	cp.Recompute()
	s.records[stockKey(r.ProductID, r.WarehouseID)] = &cp
}

func (s *memStore) seedProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

// record devuelve una copia del estado persistido (nil si no existe).
func (s *memStore) record(productID, warehouseID string) *entity.StockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[stockKey(productID, warehouseID)]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

func (s *memStore) allMovements() []*entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Movement, len(s.movements))
	for i, m := range s.movements {
		cp := *m
		out[i] = &cp
	}
	return out
}

// ─── StockRecordRepository ────────────────────────────────────────────────────

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) Get(productID, warehouseID string) (*entity.StockRecord, error) {
	rec, ok := r.s.records[stockKey(productID, warehouseID)]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memStockRepo) GetForUpdate(productID, warehouseID string) (*entity.StockRecord, error) {
	return r.Get(productID, warehouseID)
}

func (r *memStockRepo) Upsert(record *entity.StockRecord) error {
	cp := *record
	r.s.records[stockKey(record.ProductID, record.WarehouseID)] = &cp
	return nil
}

func (r *memStockRepo) ListByProduct(companyID, productID string) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	for _, rec := range r.s.records {
		if rec.CompanyID == companyID && rec.ProductID == productID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	// Orden determinista de clave, como el ORDER BY de la consulta real.
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

func (r *memStockRepo) ListByProductForUpdate(companyID, productID string) ([]*entity.StockRecord, error) {
	return r.ListByProduct(companyID, productID)
}

func (r *memStockRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	for _, rec := range r.s.records {
		if rec.CompanyID == companyID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return stockKey(out[i].ProductID, out[i].WarehouseID) < stockKey(out[j].ProductID, out[j].WarehouseID)
	})
	return out, nil
}

// ─── MovementRepository ───────────────────────────────────────────────────────

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(m *entity.Movement) error {
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.Movement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) GetForUpdate(id string) (*entity.Movement, error) {
	return r.GetByID(id)
}

func (r *memMovementRepo) UpdateStatus(m *entity.Movement) error {
	for i, existing := range r.s.movements {
		if existing.ID == m.ID {
			cp := *m
			r.s.movements[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memMovementRepo) List(filter repository.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if filter.CompanyID != "" && m.CompanyID != filter.CompanyID {
			continue
		}
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.WarehouseID != "" && m.FromWarehouseID != filter.WarehouseID && m.ToWarehouseID != filter.WarehouseID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if filter.From != nil && m.OccurredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.OccurredAt.After(*filter.To) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if filter.NewestFirst {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memMovementRepo) ListByReference(referenceType, referenceID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) History(productID, warehouseID string, limit int) ([]*entity.StockHistoryEntry, error) {
	var out []*entity.StockHistoryEntry
	for _, m := range r.s.movements {
		if m.ProductID != productID || m.Status != entity.MovementStatusCompleted {
			continue
		}
		if m.FromWarehouseID != warehouseID && m.ToWarehouseID != warehouseID {
			continue
		}
		out = append(out, &entity.StockHistoryEntry{
			Date:             m.OccurredAt,
			Change:           m.Quantity,
			Reason:           m.Reason,
			PreviousQuantity: m.BeforeQuantity,
			NewQuantity:      m.AfterQuantity,
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ─── ProductRepository ────────────────────────────────────────────────────────

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.CompanyID == companyID && strings.EqualFold(p.SKU, sku) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) Update(p *entity.Product) error {
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) UpdateCost(productID string, cost decimal.Decimal) error {
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memProductRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.CompanyID == companyID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memProductRepo) Delete(id string) error {
	delete(r.s.products, id)
	return nil
}

// ─── WarehouseRepository ──────────────────────────────────────────────────────

type memWarehouseRepo struct {
	mu         sync.Mutex
	warehouses map[string]*entity.Warehouse
}

func newMemWarehouseRepo(whs ...*entity.Warehouse) *memWarehouseRepo {
	r := &memWarehouseRepo{warehouses: make(map[string]*entity.Warehouse)}
	for _, wh := range whs {
		cp := *wh
		r.warehouses[wh.ID] = &cp
	}
	return r
}

func (r *memWarehouseRepo) Create(wh *entity.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *wh
	r.warehouses[wh.ID] = &cp
	return nil
}

func (r *memWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wh, ok := r.warehouses[id]
	if !ok {
		// Mismo convenio que el repo de postgres: sin fila no es error.
		return nil, nil
	}
	cp := *wh
	return &cp, nil
}

func (r *memWarehouseRepo) Update(wh *entity.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.warehouses[wh.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *wh
	r.warehouses[wh.ID] = &cp
	return nil
}

func (r *memWarehouseRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Warehouse
	for _, wh := range r.warehouses {
		if wh.CompanyID == companyID {
			cp := *wh
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memWarehouseRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.warehouses, id)
	return nil
}

// ─── Constantes y helpers compartidos ─────────────────────────────────────────

const (
	testCompany   = "empresa-1"
	testUser      = "usuario-1"
	testProduct   = "producto-1"
	testWarehouse = "wh-central"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
