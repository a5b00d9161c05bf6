package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Orígenes de una venta.
const (
	SaleSourceFrontSales = "front_sales"
	SaleSourceUpsell     = "upsell"
	SaleSourceReferral   = "referral"
	SaleSourceOrganic    = "organic"
	SaleSourcePaidAds    = "paid_ads"
	SaleSourceLead       = "lead"
)

// SaleSources orígenes válidos (enum sale_source en la base).
var SaleSources = []string{
	SaleSourceFrontSales, SaleSourceUpsell, SaleSourceReferral,
	SaleSourceOrganic, SaleSourcePaidAds, SaleSourceLead,
}

// Marcas/empresas bajo las que se registra una venta.
const (
	CompanyMain     = "main"
	CompanyDigital  = "digital"
	CompanyStudio   = "studio"
	CompanyPartners = "partners"
)

// SaleCompanies marcas válidas (enum sale_company en la base).
var SaleCompanies = []string{CompanyMain, CompanyDigital, CompanyStudio, CompanyPartners}

// Modos de pago.
const (
	PaymentFull        = "full"
	PaymentPartial     = "partial"
	PaymentInstallment = "installments"
)

// PaymentModes modos de pago válidos.
var PaymentModes = []string{PaymentFull, PaymentPartial, PaymentInstallment}

// SalesDisposition venta registrada; registro transaccional central del CRM.
// Invariante: Remaining = Gross - CashIn y 0 <= CashIn <= Gross.
type SalesDisposition struct {
	ID                         string
	LeadID                     *string
	OriginalSalesDispositionID *string // solo upsells
	IsUpsell                   bool
	CustomerName               string
	CustomerEmail              string
	CustomerPhone              string
	BusinessName               string
	Services                   []string
	ServiceDetails             string
	GrossValue                 decimal.Decimal
	CashIn                     decimal.Decimal
	Remaining                  decimal.Decimal
	PaymentMode                string
	Company                    string
	Source                     string
	SellerID                   string // users.id del vendedor
	SellerName                 string // desnormalizado en lecturas
	SaleDate                   time.Time
	CreatedBy                  string
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// Department indica a qué tabla de desempeño alimenta la venta.
func (d *SalesDisposition) Department() string {
	if d.IsUpsell {
		return DepartmentUpseller
	}
	return DepartmentFrontSales
}
