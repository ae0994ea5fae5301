package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationReportDTO valoración total del inventario de la empresa.
type ValuationReportDTO struct {
	CompanyID  string          `json:"company_id"`
	TotalValue decimal.Decimal `json:"total_value"`
	AsOf       time.Time       `json:"as_of"`
}

// LowStockItemDTO registro por debajo de su cantidad mínima.
type LowStockItemDTO struct {
	ProductID       string          `json:"product_id"`
	WarehouseID     string          `json:"warehouse_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`
	Shortfall       decimal.Decimal `json:"shortfall"`
}

// TurnoverReportDTO rotación de inventario en un período.
type TurnoverReportDTO struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	SoldQuantity  decimal.Decimal `json:"sold_quantity"`
	AverageOnHand decimal.Decimal `json:"average_on_hand"`
	TurnoverRatio decimal.Decimal `json:"turnover_ratio"`
}
