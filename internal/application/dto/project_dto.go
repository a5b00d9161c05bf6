package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProjectRequest POST /api/projects. Name vacío = nombre del negocio/cliente de la venta.
type CreateProjectRequest struct {
	SalesDispositionID string  `json:"sales_disposition_id" validate:"required,uuid"`
	Name               string  `json:"name" validate:"omitempty,max=200"`
	Description        string  `json:"description" validate:"omitempty,max=5000"`
	ProjectManagerID   *string `json:"project_manager_id" validate:"omitempty,uuid"`
	DueDate            string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateProjectRequest actualización parcial.
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	ClientName  *string `json:"client_name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Status      *string `json:"status" validate:"omitempty,oneof=new in_progress review completed on_hold cancelled"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// AssignProjectRequest PUT /api/projects/:id/assign.
type AssignProjectRequest struct {
	ProjectManagerID string `json:"project_manager_id" validate:"required,uuid"`
}

// ProjectFilter query del listado.
type ProjectFilter struct {
	PageRequest
	Status           string `query:"status"`
	ProjectManagerID string `query:"project_manager_id"`
}

// ProjectFinancialsDTO acumulado de la venta original y sus upsells.
type ProjectFinancialsDTO struct {
	Gross       decimal.Decimal `json:"gross"`
	CashIn      decimal.Decimal `json:"cash_in"`
	Remaining   decimal.Decimal `json:"remaining"`
	UpsellCount int             `json:"upsell_count"`
}

// ProjectResponse salida de un proyecto. Financials solo en el detalle.
type ProjectResponse struct {
	ID                 string                `json:"id"`
	SalesDispositionID string                `json:"sales_disposition_id"`
	Name               string                `json:"name"`
	ClientName         string                `json:"client_name"`
	Description        string                `json:"description"`
	ProjectManagerID   *string               `json:"project_manager_id"`
	ProjectManagerName string                `json:"project_manager_name"`
	Status             string                `json:"status"`
	DueDate            *string               `json:"due_date"`
	Financials         *ProjectFinancialsDTO `json:"financials,omitempty"`
	CreatedBy          string                `json:"created_by"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}
