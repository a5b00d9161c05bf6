package repository

import (
	"context"
	"time"

	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// LeadFilter filtros opcionales del listado de leads.
type LeadFilter struct {
	Status     string
	Source     string
	AssignedTo string
	Search     string // ILIKE sobre nombre, email y empresa
	Limit      int
	Offset     int
}

// LeadRepository prospectos comerciales.
type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	GetByID(ctx context.Context, id string) (*entity.Lead, error)
	List(ctx context.Context, f LeadFilter) ([]*entity.Lead, int, error)
	Update(ctx context.Context, lead *entity.Lead) error
	Delete(ctx context.Context, id string) error
	MarkConverted(ctx context.Context, id, dispositionID string, at time.Time) error
	// ReleaseConversion devuelve a "qualified" el lead convertido en la venta indicada.
	ReleaseConversion(ctx context.Context, dispositionID string, at time.Time) error
}
