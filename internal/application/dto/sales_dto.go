package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleInput campos comunes a la creación de una venta, un upsell o una conversión de lead.
// Montos como número o string JSON ("1500.00"); SaleDate en formato YYYY-MM-DD (hoy si vacío).
// SellerID vacío = el usuario autenticado.
type SaleInput struct {
	CustomerName   string          `json:"customer_name" validate:"omitempty,max=200"`
	CustomerEmail  string          `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone  string          `json:"customer_phone" validate:"omitempty,max=40"`
	BusinessName   string          `json:"business_name" validate:"omitempty,max=200"`
	Services       []string        `json:"services" validate:"omitempty,dive,min=1,max=100"`
	ServiceDetails string          `json:"service_details" validate:"omitempty,max=5000"`
	GrossValue     decimal.Decimal `json:"gross_value"`
	CashIn         decimal.Decimal `json:"cash_in"`
	PaymentMode    string          `json:"payment_mode" validate:"omitempty,oneof=full partial installments"`
	Company        string          `json:"company" validate:"required,oneof=main digital studio partners"`
	Source         string          `json:"source" validate:"omitempty,oneof=front_sales upsell referral organic paid_ads lead"`
	SellerID       string          `json:"seller_id" validate:"omitempty,uuid"`
	SaleDate       string          `json:"sale_date" validate:"omitempty,datetime=2006-01-02"`
}

// CreateDispositionRequest POST /api/sales-dispositions.
type CreateDispositionRequest struct {
	SaleInput
	LeadID *string `json:"lead_id" validate:"omitempty,uuid"`
}

// UpsellRequest POST /api/sales-dispositions/:id/upsell.
type UpsellRequest struct {
	SaleInput
}

// UpdateDispositionRequest actualización parcial; remaining se recalcula siempre.
type UpdateDispositionRequest struct {
	CustomerName   *string          `json:"customer_name" validate:"omitempty,min=1,max=200"`
	CustomerEmail  *string          `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone  *string          `json:"customer_phone" validate:"omitempty,max=40"`
	BusinessName   *string          `json:"business_name" validate:"omitempty,max=200"`
	Services       []string         `json:"services" validate:"omitempty,dive,min=1,max=100"`
	ServiceDetails *string          `json:"service_details" validate:"omitempty,max=5000"`
	GrossValue     *decimal.Decimal `json:"gross_value"`
	CashIn         *decimal.Decimal `json:"cash_in"`
	PaymentMode    *string          `json:"payment_mode" validate:"omitempty,oneof=full partial installments"`
	Company        *string          `json:"company" validate:"omitempty,oneof=main digital studio partners"`
	Source         *string          `json:"source" validate:"omitempty,oneof=front_sales upsell referral organic paid_ads lead"`
	SellerID       *string          `json:"seller_id" validate:"omitempty,uuid"`
	SaleDate       *string          `json:"sale_date" validate:"omitempty,datetime=2006-01-02"`
}

// DispositionFilter query del listado. From/To en YYYY-MM-DD; To es exclusivo.
type DispositionFilter struct {
	PageRequest
	SellerID string `query:"seller_id"`
	Source   string `query:"source"`
	Company  string `query:"company"`
	IsUpsell string `query:"is_upsell"`
	From     string `query:"from"`
	To       string `query:"to"`
}

// DispositionResponse salida de una venta.
type DispositionResponse struct {
	ID                         string          `json:"id"`
	LeadID                     *string         `json:"lead_id"`
	OriginalSalesDispositionID *string         `json:"original_sales_disposition_id"`
	IsUpsell                   bool            `json:"is_upsell"`
	CustomerName               string          `json:"customer_name"`
	CustomerEmail              string          `json:"customer_email"`
	CustomerPhone              string          `json:"customer_phone"`
	BusinessName               string          `json:"business_name"`
	Services                   []string        `json:"services"`
	ServiceDetails             string          `json:"service_details"`
	GrossValue                 decimal.Decimal `json:"gross_value"`
	CashIn                     decimal.Decimal `json:"cash_in"`
	Remaining                  decimal.Decimal `json:"remaining"`
	PaymentMode                string          `json:"payment_mode"`
	Company                    string          `json:"company"`
	Source                     string          `json:"source"`
	SellerID                   string          `json:"seller_id"`
	SellerName                 string          `json:"seller_name"`
	SaleDate                   string          `json:"sale_date"`
	CreatedBy                  string          `json:"created_by"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// DispositionListResponse listado paginado.
type DispositionListResponse struct {
	Items []DispositionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
