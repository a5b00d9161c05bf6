package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un proyecto.
const (
	ProjectStatusNew        = "new"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusReview     = "review"
	ProjectStatusCompleted  = "completed"
	ProjectStatusOnHold     = "on_hold"
	ProjectStatusCancelled  = "cancelled"
)

// ProjectStatuses estados válidos.
var ProjectStatuses = []string{
	ProjectStatusNew, ProjectStatusInProgress, ProjectStatusReview,
	ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusCancelled,
}

// Project trabajo derivado de una SalesDisposition.
type Project struct {
	ID                 string
	SalesDispositionID string
	Name               string
	ClientName         string
	Description        string
	ProjectManagerID   *string // employees.id
	ProjectManagerName string
	Status             string
	DueDate            *time.Time
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProjectFinancials acumulado de la venta original más sus upsells.
type ProjectFinancials struct {
	Gross       decimal.Decimal
	CashIn      decimal.Decimal
	Remaining   decimal.Decimal
	UpsellCount int
}
