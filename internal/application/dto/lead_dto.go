package dto

import "time"

// CreateLeadRequest alta de lead.
type CreateLeadRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Phone       string  `json:"phone" validate:"omitempty,max=40"`
	CompanyName string  `json:"company_name" validate:"omitempty,max=200"`
	Source      string  `json:"source" validate:"required,oneof=website referral social_media paid_ads cold_call email other"`
	Status      string  `json:"status" validate:"omitempty,oneof=new contacted qualified proposal lost"`
	Notes       string  `json:"notes" validate:"omitempty,max=5000"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,uuid"`
}

// UpdateLeadRequest actualización parcial. "converted" solo se alcanza vía /convert.
type UpdateLeadRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=200"`
	Source      *string `json:"source" validate:"omitempty,oneof=website referral social_media paid_ads cold_call email other"`
	Status      *string `json:"status" validate:"omitempty,oneof=new contacted qualified proposal lost"`
	Notes       *string `json:"notes" validate:"omitempty,max=5000"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,uuid"`
}

// LeadFilter query del listado.
type LeadFilter struct {
	PageRequest
	Status     string `query:"status"`
	Source     string `query:"source"`
	AssignedTo string `query:"assigned_to"`
	Q          string `query:"q"`
}

// LeadResponse salida de un lead.
type LeadResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	CompanyName        string     `json:"company_name"`
	Source             string     `json:"source"`
	Status             string     `json:"status"`
	Notes              string     `json:"notes"`
	AssignedTo         *string    `json:"assigned_to"`
	SalesDispositionID *string    `json:"sales_disposition_id"`
	ConvertedAt        *time.Time `json:"converted_at"`
	CreatedBy          string     `json:"created_by"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// LeadListResponse listado paginado.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ConvertLeadRequest datos de la venta generada a partir del lead.
// Nombre, email y teléfono del cliente se toman del lead si vienen vacíos.
type ConvertLeadRequest struct {
	SaleInput
}

// ConvertLeadResponse lead convertido y venta creada.
type ConvertLeadResponse struct {
	Lead        LeadResponse        `json:"lead"`
	Disposition DispositionResponse `json:"disposition"`
}
