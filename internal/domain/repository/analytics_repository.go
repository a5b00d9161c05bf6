package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesTotals agregado de ventas en un período.
type SalesTotals struct {
	Dispositions int
	Upsells      int
	Gross        decimal.Decimal
	CashIn       decimal.Decimal
	Remaining    decimal.Decimal
}

// SellerRanking fila del top de vendedores.
type SellerRanking struct {
	SellerID   string
	SellerName string
	Accounts   int
	Gross      decimal.Decimal
	CashIn     decimal.Decimal
}

// AnalyticsRepository consultas de solo lectura para el dashboard.
type AnalyticsRepository interface {
	SalesTotals(ctx context.Context, from, to time.Time) (SalesTotals, error)
	LeadsByStatus(ctx context.Context) (map[string]int, error)
	ProjectsByStatus(ctx context.Context) (map[string]int, error)
	TopSellers(ctx context.Context, from, to time.Time, limit int) ([]SellerRanking, error)
}
