package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary (mes en curso).
type DashboardSummaryDTO struct {
	MonthGross       decimal.Decimal    `json:"month_gross"`
	MonthCashIn      decimal.Decimal    `json:"month_cash_in"`
	MonthRemaining   decimal.Decimal    `json:"month_remaining"`
	Dispositions     int                `json:"dispositions"`
	Upsells          int                `json:"upsells"`
	LeadsByStatus    map[string]int     `json:"leads_by_status"`
	ProjectsByStatus map[string]int     `json:"projects_by_status"`
	TopSellers       []SellerRankingDTO `json:"top_sellers"`

	// Metadatos del período
	DateLabel string `json:"date_label"` // ej: "Octubre 2026"
}

// SellerRankingDTO fila del top de vendedores.
type SellerRankingDTO struct {
	SellerID   string          `json:"seller_id"`
	SellerName string          `json:"seller_name"`
	Accounts   int             `json:"accounts"`
	Gross      decimal.Decimal `json:"gross"`
	CashIn     decimal.Decimal `json:"cash_in"`
}

// PerformanceRowDTO fila de desempeño mensual de un vendedor.
// AchievementPct = cash-in / meta × 100 (0 si no hay meta).
type PerformanceRowDTO struct {
	SellerID         string          `json:"seller_id"`
	SellerName       string          `json:"seller_name"`
	AccountsAchieved int             `json:"accounts_achieved"`
	TotalGross       decimal.Decimal `json:"total_gross"`
	TotalCashIn      decimal.Decimal `json:"total_cash_in"`
	TargetAccounts   int             `json:"target_accounts"`
	TargetCashIn     decimal.Decimal `json:"target_cash_in"`
	AchievementPct   decimal.Decimal `json:"achievement_pct"`
}

// PerformanceResponse GET /api/front-sales/performance y /api/upseller/performance.
type PerformanceResponse struct {
	Department string              `json:"department"`
	Month      string              `json:"month"` // YYYY-MM
	MonthLabel string              `json:"month_label"`
	Rows       []PerformanceRowDTO `json:"rows"`
	Totals     PerformanceRowDTO   `json:"totals"`
}
