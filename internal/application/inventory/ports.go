package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que el StockRecord y su asiento en el ledger se
// escriben juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRecordRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// Config parámetros del motor de inventario.
type Config struct {
	// ApprovalThreshold delta absoluto a partir del cual un ajuste queda pending
	// hasta aprobación (100 unidades por defecto).
	ApprovalThreshold int64
	// MaxRetries reintentos internos ante ErrConcurrentModification antes de
	// propagar el error al caller.
	MaxRetries int
}

// runWithRetry ejecuta fn vía txRunner reintentando ante conflictos de
// serialización (deadlock / serialization_failure mapeados a ErrConcurrentModification).
func runWithRetry(ctx context.Context, txRunner TxRunner, maxRetries int, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRecordRepository,
	productRepo repository.ProductRepository,
) error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = txRunner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
	}
	return err
}
