package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, company_id, product_id, from_warehouse_id, to_warehouse_id, type, reason,
	quantity, before_quantity, after_quantity, unit_cost, total_cost, reference_type, reference_id,
	status, processed_by, approved_by, approved_at, occurred_at, created_at`

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// El ledger es append-only: Create y la transición de aprobación; nunca UPDATE
// sobre asientos completed.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var fromWh, toWh, refType, refID, approvedBy *string
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.ProductID, &fromWh, &toWh, &m.Type, &m.Reason,
		&m.Quantity, &m.BeforeQuantity, &m.AfterQuantity, &m.UnitCost, &m.TotalCost,
		&refType, &refID, &m.Status, &m.ProcessedBy, &approvedBy, &m.ApprovedAt,
		&m.OccurredAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if fromWh != nil {
		m.FromWarehouseID = *fromWh
	}
	if toWh != nil {
		m.ToWarehouseID = *toWh
	}
	if refType != nil {
		m.ReferenceType = *refType
	}
	if refID != nil {
		m.ReferenceID = *refID
	}
	if approvedBy != nil {
		m.ApprovedBy = *approvedBy
	}
	return &m, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create persiste un asiento del ledger.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.CompanyID, movement.ProductID,
		nullable(movement.FromWarehouseID), nullable(movement.ToWarehouseID),
		movement.Type, movement.Reason, movement.Quantity, movement.BeforeQuantity,
		movement.AfterQuantity, movement.UnitCost, movement.TotalCost,
		nullable(movement.ReferenceType), nullable(movement.ReferenceID),
		movement.Status, movement.ProcessedBy, nullable(movement.ApprovedBy),
		movement.ApprovedAt, movement.OccurredAt, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// GetForUpdate obtiene un asiento bloqueando la fila (aprobación atómica).
func (r *MovementRepo) GetForUpdate(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1 FOR UPDATE`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement for update: %w", err)
	}
	return m, nil
}

// UpdateStatus fija status/quantity/before/after/approved_by/approved_at de un
// asiento que aún está pending. El WHERE por status protege la inmutabilidad de
// los asientos completed a nivel SQL.
func (r *MovementRepo) UpdateStatus(movement *entity.Movement) error {
	query := `
		UPDATE inventory_movements
		SET status = $2, quantity = $3, before_quantity = $4, after_quantity = $5,
			total_cost = $6, approved_by = $7, approved_at = $8
		WHERE id = $1 AND status = 'pending'`
	tag, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.Status, movement.Quantity, movement.BeforeQuantity,
		movement.AfterQuantity, movement.TotalCost, nullable(movement.ApprovedBy),
		movement.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("update movement status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// List consulta el ledger según filtro, cronológico ascendente por defecto.
func (r *MovementRepo) List(filter repository.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE 1=1`
	var args []any
	pos := 1
	add := func(cond string, v any) {
		query += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, v)
		pos++
	}
	if filter.CompanyID != "" {
		add("company_id = $%d", filter.CompanyID)
	}
	if filter.ProductID != "" {
		add("product_id = $%d", filter.ProductID)
	}
	if filter.WarehouseID != "" {
		query += fmt.Sprintf(" AND (from_warehouse_id = $%d OR to_warehouse_id = $%d)", pos, pos)
		args = append(args, filter.WarehouseID)
		pos++
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.From != nil {
		add("occurred_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("occurred_at <= $%d", *filter.To)
	}
	order := " ORDER BY occurred_at ASC, created_at ASC"
	if filter.NewestFirst {
		order = " ORDER BY occurred_at DESC, created_at DESC"
	}
	query += order
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, filter.Offset)

	return r.listQuery(query, args...)
}

// ListByReference devuelve los asientos causados por un documento externo,
// en orden de creación.
func (r *MovementRepo) ListByReference(referenceType, referenceID string) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at ASC`
	return r.listQuery(query, referenceType, referenceID)
}

// History vista por registro del ledger: asientos completed cuyo snapshot
// pertenece a la bodega pedida (salidas por from, entradas por to), más antiguo
// primero.
func (r *MovementRepo) History(productID, warehouseID string, limit int) ([]*entity.StockHistoryEntry, error) {
	query := `
		SELECT occurred_at, quantity, reason, before_quantity, after_quantity
		FROM inventory_movements
		WHERE product_id = $1 AND status = 'completed'
		  AND ((quantity < 0 AND from_warehouse_id = $2) OR (quantity >= 0 AND to_warehouse_id = $2))
		ORDER BY occurred_at ASC, created_at ASC
		LIMIT $3`
	rows, err := r.q.Query(context.Background(), query, productID, warehouseID, limit)
	if err != nil {
		return nil, fmt.Errorf("stock history: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockHistoryEntry
	for rows.Next() {
		var h entity.StockHistoryEntry
		if err := rows.Scan(&h.Date, &h.Change, &h.Reason, &h.PreviousQuantity, &h.NewQuantity); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}

func (r *MovementRepo) listQuery(query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
