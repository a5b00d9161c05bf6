package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// DispositionFilter filtros opcionales del listado de ventas.
type DispositionFilter struct {
	SellerID   string
	Source     string
	Company    string
	IsUpsell   *bool
	OriginalID string // upsells de una venta
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// SellerTotals agregado de ventas de un vendedor en un rango.
type SellerTotals struct {
	Accounts int
	Gross    decimal.Decimal
	CashIn   decimal.Decimal
}

// SalesDispositionRepository ventas registradas.
type SalesDispositionRepository interface {
	Create(ctx context.Context, d *entity.SalesDisposition) error
	GetByID(ctx context.Context, id string) (*entity.SalesDisposition, error)
	List(ctx context.Context, f DispositionFilter) ([]*entity.SalesDisposition, int, error)
	Update(ctx context.Context, d *entity.SalesDisposition) error
	Delete(ctx context.Context, id string) error
	// SellerTotals suma las ventas (upsell o no) de un vendedor en [from, to).
	SellerTotals(ctx context.Context, sellerID string, isUpsell bool, from, to time.Time) (SellerTotals, error)
}
