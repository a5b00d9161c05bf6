package repository

import (
	"context"

	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// ProjectFilter filtros del listado de proyectos.
type ProjectFilter struct {
	Status           string
	ProjectManagerID string
	Limit            int
	Offset           int
}

// ProjectRepository proyectos derivados de ventas.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	GetBySalesDisposition(ctx context.Context, dispositionID string) (*entity.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]*entity.Project, error)
	Update(ctx context.Context, p *entity.Project) error
	Delete(ctx context.Context, id string) error
	// Financials suma la venta original del proyecto y sus upsells.
	Financials(ctx context.Context, projectID string) (*entity.ProjectFinancials, error)
}
