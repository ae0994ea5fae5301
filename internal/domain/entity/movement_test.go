package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

func mov(tipo, razon, estado string, before, after, qty int64) *entity.Movement {
	return &entity.Movement{
		ProductID:      "00000000-0000-0000-0000-000000000010",
		Type:           tipo,
		Reason:         razon,
		Status:         estado,
		BeforeQuantity: decimal.NewFromInt(before),
		AfterQuantity:  decimal.NewFromInt(after),
		Quantity:       decimal.NewFromInt(qty),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Validate — enumeración cerrada e identidad before/after
// ──────────────────────────────────────────────────────────────────────────────

func TestMovement_Validate_AsientoCompletoValido(t *testing.T) {
	m := mov(entity.MovementTypeInbound, entity.ReasonPurchaseOrder, entity.MovementStatusCompleted, 10, 25, 15)
	assert.NoError(t, m.Validate())
}

func TestMovement_Validate_TipoDesconocidoRechazado(t *testing.T) {
	m := mov("teleport", entity.ReasonPurchaseOrder, entity.MovementStatusCompleted, 0, 5, 5)
	assert.ErrorIs(t, m.Validate(), domain.ErrInvalidInput)
}

func TestMovement_Validate_RazonDesconocidaRechazada(t *testing.T) {
	m := mov(entity.MovementTypeOutbound, "porque_si", entity.MovementStatusCompleted, 5, 0, -5)
	assert.ErrorIs(t, m.Validate(), domain.ErrInvalidInput)
}

func TestMovement_Validate_SinProductoRechazado(t *testing.T) {
	m := mov(entity.MovementTypeInbound, entity.ReasonPurchaseOrder, entity.MovementStatusCompleted, 0, 5, 5)
	m.ProductID = ""
	assert.ErrorIs(t, m.Validate(), domain.ErrInvalidInput)
}

// La identidad after - before == quantity es el invariante central del ledger:
// un asiento que no cuadra jamás debe persistirse.
func TestMovement_Validate_IdentidadBeforeAfterRota(t *testing.T) {
	m := mov(entity.MovementTypeOutbound, entity.ReasonSalesOrder, entity.MovementStatusCompleted, 20, 15, -8)
	assert.ErrorIs(t, m.Validate(), domain.ErrInvalidLedgerEntry)
}

func TestMovement_Validate_SalidaConSignoNegativoCuadra(t *testing.T) {
	m := mov(entity.MovementTypeOutbound, entity.ReasonSalesOrder, entity.MovementStatusCompleted, 20, 12, -8)
	assert.NoError(t, m.Validate())
}

// Un asiento pending aún no fijó su before/after definitivo (se recalculan bajo
// bloqueo al aprobarse), así que la identidad no se exige en ese estado.
func TestMovement_Validate_PendingNoExigeIdentidad(t *testing.T) {
	m := mov(entity.MovementTypeAdjustment, entity.ReasonManualAdjustment, entity.MovementStatusPending, 0, 0, 500)
	assert.NoError(t, m.Validate())
}

// ──────────────────────────────────────────────────────────────────────────────
// NeedsApproval — tipos/razones de riesgo y umbral de delta
// ──────────────────────────────────────────────────────────────────────────────

func TestMovement_NeedsApproval(t *testing.T) {
	threshold := decimal.NewFromInt(100)

	casos := []struct {
		nombre string
		m      *entity.Movement
		want   bool
	}{
		{
			nombre: "ajuste manual chico aplica directo",
			m:      mov(entity.MovementTypeAdjustment, entity.ReasonManualAdjustment, entity.MovementStatusCompleted, 0, 5, 5),
			want:   false,
		},
		{
			nombre: "ajuste manual sobre el umbral queda pending",
			m:      mov(entity.MovementTypeAdjustment, entity.ReasonManualAdjustment, entity.MovementStatusPending, 0, 0, 150),
			want:   true,
		},
		{
			nombre: "merma por daño requiere aprobación",
			m:      mov(entity.MovementTypeDamaged, entity.ReasonDamagedGoods, entity.MovementStatusPending, 0, 0, -3),
			want:   true,
		},
		{
			nombre: "pérdida de stock requiere aprobación aunque el tipo sea outbound",
			m:      mov(entity.MovementTypeOutbound, entity.ReasonStockLoss, entity.MovementStatusPending, 0, 0, -2),
			want:   true,
		},
		{
			nombre: "entrada chica por compra pasa directo",
			m:      mov(entity.MovementTypeInbound, entity.ReasonPurchaseOrder, entity.MovementStatusCompleted, 0, 50, 50),
			want:   false,
		},
		{
			nombre: "delta exactamente en el umbral pasa directo",
			m:      mov(entity.MovementTypeInbound, entity.ReasonPurchaseOrder, entity.MovementStatusCompleted, 0, 100, 100),
			want:   false,
		},
		{
			nombre: "delta sobre el umbral queda pending",
			m:      mov(entity.MovementTypeInbound, entity.ReasonPurchaseOrder, entity.MovementStatusCompleted, 0, 101, 101),
			want:   true,
		},
		{
			nombre: "salida grande también cuenta por valor absoluto",
			m:      mov(entity.MovementTypeOutbound, entity.ReasonSalesOrder, entity.MovementStatusCompleted, 200, 50, -150),
			want:   true,
		},
	}

	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.m.NeedsApproval(threshold))
		})
	}
}

func TestMovement_IsInbound(t *testing.T) {
	in := mov(entity.MovementTypeInbound, entity.ReasonPurchaseOrder, entity.MovementStatusCompleted, 0, 5, 5)
	out := mov(entity.MovementTypeOutbound, entity.ReasonSalesOrder, entity.MovementStatusCompleted, 5, 0, -5)
	assert.True(t, in.IsInbound())
	assert.False(t, out.IsInbound())
}
