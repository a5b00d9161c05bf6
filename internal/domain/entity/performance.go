package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Departamentos con tabla de desempeño propia.
const (
	DepartmentFrontSales = "front_sales"
	DepartmentUpseller   = "upseller"
)

// PerformanceRecord agregado mensual por vendedor.
// Month es siempre el primer día del mes a las 00:00 UTC.
type PerformanceRecord struct {
	ID               string
	Department       string
	SellerID         string
	SellerName       string
	Month            time.Time
	AccountsAchieved int
	TotalGross       decimal.Decimal
	TotalCashIn      decimal.Decimal
	TargetAccounts   int
	TargetCashIn     decimal.Decimal
	UpdatedAt        time.Time
}

// MonthStart normaliza una fecha al primer día de su mes (UTC).
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
