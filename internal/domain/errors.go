package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrRecordNotFound         = errors.New("registro de stock no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrEmailAlreadyExists     = errors.New("el email ya está registrado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInsufficientAvailable  = errors.New("cantidad disponible insuficiente para reservar")
	ErrOverRelease            = errors.New("liberación mayor que la cantidad reservada")
	ErrAlreadyApproved        = errors.New("el movimiento ya fue aprobado")
	ErrInvalidLedgerEntry     = errors.New("movimiento inválido: before/after no cuadra con la cantidad")
	ErrConcurrentModification = errors.New("modificación concurrente, reintentar")
)

// InsufficientInventoryError señala qué producto dejó sin stock a una orden completa.
// Envuelve ErrInsufficientStock para que errors.Is siga funcionando en los handlers.
type InsufficientInventoryError struct {
	ProductID string
	Requested string // cantidades como string para no acoplar el dominio a la librería decimal
	Available string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("inventario insuficiente para producto %s: solicitado %s, disponible %s",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Unwrap() error {
	return ErrInsufficientStock
}
