package repository

import (
	"context"

	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// EmployeeFilter filtros del listado de empleados.
type EmployeeFilter struct {
	Department string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// EmployeeRepository fichas de RR.HH.
type EmployeeRepository interface {
	Create(ctx context.Context, e *entity.Employee) error
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
	List(ctx context.Context, f EmployeeFilter) ([]*entity.Employee, error)
	Update(ctx context.Context, e *entity.Employee) error
	Deactivate(ctx context.Context, id string) error
}
