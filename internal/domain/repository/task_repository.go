package repository

import (
	"context"

	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// TaskRepository tareas, asignaciones e histórico de cumplimiento.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.Task, error)
	Update(ctx context.Context, t *entity.Task) error
	Delete(ctx context.Context, id string) error

	Assign(ctx context.Context, a *entity.TaskAssignment) error
	ListAssignments(ctx context.Context, taskID string) ([]*entity.TaskAssignment, error)

	AddPerformance(ctx context.Context, p *entity.TaskPerformance) error
	// DeletePerformance borra el cumplimiento registrado de la tarea (al reabrirla).
	DeletePerformance(ctx context.Context, taskID string) error
	PerformanceSummary(ctx context.Context, employeeID string) (*entity.TaskPerformanceSummary, error)
}
