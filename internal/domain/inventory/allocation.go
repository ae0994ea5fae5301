package inventory

import (
	"sort"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Draw es una extracción planificada contra un StockRecord concreto.
type Draw struct {
	Record   *entity.StockRecord
	Quantity decimal.Decimal
}

// SortByAllocationPriority ordena candidatos para extracción: primero los lotes
// con fecha de vencimiento más próxima (FEFO); entre registros sin vencimiento,
// el recibido más antiguo primero (FIFO). Los registros con vencimiento van
// siempre antes que los que no lo tienen.
func SortByAllocationPriority(records []*entity.StockRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case a.ExpiryDate != nil && b.ExpiryDate != nil:
			if !a.ExpiryDate.Equal(*b.ExpiryDate) {
				return a.ExpiryDate.Before(*b.ExpiryDate)
			}
			return a.ReceivedAt.Before(b.ReceivedAt)
		case a.ExpiryDate != nil:
			return true
		case b.ExpiryDate != nil:
			return false
		default:
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
	})
}

// BuildDrawPlan calcula el plan de extracción para una cantidad solicitada.
// Considera solo registros asignables (calidad good con disponible > 0), verifica
// factibilidad sumando disponibles y reparte en orden FEFO/FIFO hasta agotar la
// cantidad. Si el total disponible no alcanza devuelve InsufficientInventoryError
// sin tocar ningún registro.
func BuildDrawPlan(productID string, records []*entity.StockRecord, requested decimal.Decimal) ([]Draw, error) {
	if !requested.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	candidates := make([]*entity.StockRecord, 0, len(records))
	available := decimal.Zero
	for _, r := range records {
		if r.Allocatable() {
			candidates = append(candidates, r)
			available = available.Add(r.AvailableQuantity)
		}
	}
	if available.LessThan(requested) {
		return nil, &domain.InsufficientInventoryError{
			ProductID: productID,
			Requested: requested.String(),
			Available: available.String(),
		}
	}

	SortByAllocationPriority(candidates)

	var plan []Draw
	remaining := requested
	for _, r := range candidates {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(r.AvailableQuantity, remaining)
		plan = append(plan, Draw{Record: r, Quantity: take})
		remaining = remaining.Sub(take)
	}
	// La factibilidad ya pasó; si aún queda remanente los registros cambiaron
	// debajo nuestro y el caller debe tratarlo como inconsistencia fatal.
	if remaining.GreaterThan(decimal.Zero) {
		return nil, domain.ErrConcurrentModification
	}
	return plan, nil
}
