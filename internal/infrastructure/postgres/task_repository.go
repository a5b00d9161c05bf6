package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo tareas, asignaciones e histórico de cumplimiento.
type TaskRepo struct {
	q Querier
}

// NewTaskRepository construye el adaptador (pool o tx).
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

const taskColumns = `id, project_id, title, description, status, priority, due_date, completed_at, created_by, created_at, updated_at`

func scanTask(row pgx.Row) (*entity.Task, error) {
	var (
		t         entity.Task
		createdBy *string
	)
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.CompletedAt, &createdBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.CreatedBy = deref(createdBy)
	return &t, nil
}

// Create persiste una tarea.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	query := `
		INSERT INTO tasks (id, project_id, title, description, status, priority, due_date, completed_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		t.DueDate, t.CompletedAt, nullable(t.CreatedBy), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return domain.Invalid("project_id", "el proyecto no existe")
		case isCheckViolation(err):
			return domain.Invalid("task", "estado o prioridad inválidos")
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID obtiene una tarea por ID.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	t, err := scanTask(r.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListByProject tareas del proyecto, las de vencimiento más próximo primero.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID string) ([]*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY due_date NULLS LAST, created_at`
	rows, err := r.q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	var list []*entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update actualiza la tarea completa.
func (r *TaskRepo) Update(ctx context.Context, t *entity.Task) error {
	query := `
		UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5,
			due_date = $6, completed_at = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.CompletedAt, t.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("task", "estado o prioridad inválidos")
		}
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la tarea con sus asignaciones.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Assign asigna un empleado; reasignar es idempotente.
func (r *TaskRepo) Assign(ctx context.Context, a *entity.TaskAssignment) error {
	query := `
		INSERT INTO task_assignments (task_id, employee_id, assigned_by, assigned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (task_id, employee_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query, a.TaskID, a.EmployeeID, nullable(a.AssignedBy), a.AssignedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("employee_id", "tarea o empleado inexistente")
		}
		return fmt.Errorf("assign task: %w", err)
	}
	return nil
}

// ListAssignments asignaciones de una tarea con el nombre del empleado.
func (r *TaskRepo) ListAssignments(ctx context.Context, taskID string) ([]*entity.TaskAssignment, error) {
	query := `
		SELECT a.task_id, a.employee_id, trim(e.first_name || ' ' || e.last_name), a.assigned_by, a.assigned_at
		FROM task_assignments a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.task_id = $1
		ORDER BY a.assigned_at`
	rows, err := r.q.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("list task assignments: %w", err)
	}
	defer rows.Close()
	var list []*entity.TaskAssignment
	for rows.Next() {
		var (
			a          entity.TaskAssignment
			assignedBy *string
		)
		if err := rows.Scan(&a.TaskID, &a.EmployeeID, &a.EmployeeName, &assignedBy, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("scan task assignment: %w", err)
		}
		a.AssignedBy = deref(assignedBy)
		list = append(list, &a)
	}
	return list, rows.Err()
}

// AddPerformance registra el cumplimiento; una tarea reabierta y cerrada de nuevo reemplaza el registro.
func (r *TaskRepo) AddPerformance(ctx context.Context, p *entity.TaskPerformance) error {
	query := `
		INSERT INTO task_performance (id, task_id, employee_id, due_date, completed_at, on_time, days_late, strike, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (task_id, employee_id) DO UPDATE SET
			due_date = EXCLUDED.due_date,
			completed_at = EXCLUDED.completed_at,
			on_time = EXCLUDED.on_time,
			days_late = EXCLUDED.days_late,
			strike = EXCLUDED.strike`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.TaskID, p.EmployeeID, p.DueDate, p.CompletedAt, p.OnTime, p.DaysLate, p.Strike, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task performance: %w", err)
	}
	return nil
}

func (r *TaskRepo) DeletePerformance(ctx context.Context, taskID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM task_performance WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("delete task performance: %w", err)
	}
	return nil
}

// PerformanceSummary totales de cumplimiento de un empleado.
func (r *TaskRepo) PerformanceSummary(ctx context.Context, employeeID string) (*entity.TaskPerformanceSummary, error) {
	query := `
		SELECT count(*),
			count(*) FILTER (WHERE on_time),
			count(*) FILTER (WHERE NOT on_time),
			count(*) FILTER (WHERE strike)
		FROM task_performance WHERE employee_id = $1`
	s := entity.TaskPerformanceSummary{EmployeeID: employeeID}
	if err := r.q.QueryRow(ctx, query, employeeID).Scan(&s.Completed, &s.OnTime, &s.Late, &s.Strikes); err != nil {
		return nil, fmt.Errorf("task performance summary: %w", err)
	}
	return &s, nil
}
