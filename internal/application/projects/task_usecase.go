package projects

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/performance"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

// TaskUseCase tareas de proyecto, asignaciones y cierre con histórico de cumplimiento.
type TaskUseCase struct {
	tasks     repository.TaskRepository
	projects  repository.ProjectRepository
	employees repository.EmployeeRepository
	tx        repository.TxRunner
	now       func() time.Time
}

// NewTaskUseCase construye el caso de uso.
func NewTaskUseCase(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	employees repository.EmployeeRepository,
	tx repository.TxRunner,
) *TaskUseCase {
	return &TaskUseCase{
		tasks:     tasks,
		projects:  projects,
		employees: employees,
		tx:        tx,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *TaskUseCase) activeEmployee(ctx context.Context, r repository.EmployeeRepository, id string) error {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil || !e.IsActive {
		return domain.Invalid("employee_id", "el empleado no existe o está inactivo")
	}
	return nil
}

// Create crea una tarea en el proyecto y la asigna a los empleados indicados.
func (uc *TaskUseCase) Create(ctx context.Context, actorID, projectID string, in dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Invalid("title", "es obligatorio")
	}
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}
	if !entity.Contains(entity.TaskPriorities, priority) {
		return nil, domain.Invalid("priority", "prioridad inválida: "+priority)
	}
	due, err := dto.ParseDate("due_date", in.DueDate)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	t := &entity.Task{
		ID:          uuid.New().String(),
		ProjectID:   p.ID,
		Title:       title,
		Description: in.Description,
		Status:      entity.TaskStatusTodo,
		Priority:    priority,
		DueDate:     due,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Tasks.Create(ctx, t); err != nil {
			return err
		}
		for _, empID := range in.AssigneeIDs {
			if err := uc.activeEmployee(ctx, r.Employees, empID); err != nil {
				return err
			}
			if err := r.Tasks.Assign(ctx, &entity.TaskAssignment{
				TaskID: t.ID, EmployeeID: empID, AssignedBy: actorID, AssignedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, t.ID)
}

func (uc *TaskUseCase) get(ctx context.Context, id string) (*entity.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	t, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// Get tarea con sus asignados.
func (uc *TaskUseCase) Get(ctx context.Context, id string) (*dto.TaskResponse, error) {
	t, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := uc.tasks.ListAssignments(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	out := dto.NewTaskResponse(t, assignments)
	return &out, nil
}

// ListByProject tareas del proyecto (sin asignados). Un proyecto inexistente es 404.
func (uc *TaskUseCase) ListByProject(ctx context.Context, projectID string) ([]dto.TaskResponse, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TaskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.NewTaskResponse(t, nil))
	}
	return out, nil
}

// Update actualización parcial de datos; el estado cambia con UpdateStatus.
func (uc *TaskUseCase) Update(ctx context.Context, id string, in dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	t, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
		if t.Title == "" {
			return nil, domain.Invalid("title", "no puede quedar vacío")
		}
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Priority != nil {
		if !entity.Contains(entity.TaskPriorities, *in.Priority) {
			return nil, domain.Invalid("priority", "prioridad inválida: "+*in.Priority)
		}
		t.Priority = *in.Priority
	}
	if in.DueDate != nil {
		if t.DueDate, err = dto.ParseDate("due_date", *in.DueDate); err != nil {
			return nil, err
		}
	}
	t.UpdatedAt = uc.now()
	if err := uc.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return uc.Get(ctx, t.ID)
}

// Delete elimina la tarea.
func (uc *TaskUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return uc.tasks.Delete(ctx, id)
}

// Assign agrega un empleado a la tarea (idempotente).
func (uc *TaskUseCase) Assign(ctx context.Context, actorID, id string, in dto.AssignTaskRequest) (*dto.TaskResponse, error) {
	t, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.activeEmployee(ctx, uc.employees, in.EmployeeID); err != nil {
		return nil, err
	}
	if err := uc.tasks.Assign(ctx, &entity.TaskAssignment{
		TaskID: t.ID, EmployeeID: in.EmployeeID, AssignedBy: actorID, AssignedAt: uc.now(),
	}); err != nil {
		return nil, err
	}
	return uc.Get(ctx, t.ID)
}

// UpdateStatus cambia el estado. Pasar a done fija completed_at y registra el cumplimiento
// de cada asignado; salir de done limpia completed_at y borra ese cumplimiento, que se
// vuelve a registrar cuando la tarea se cierre de nuevo.
func (uc *TaskUseCase) UpdateStatus(ctx context.Context, id string, in dto.UpdateTaskStatusRequest) (*dto.TaskResponse, error) {
	if !entity.Contains(entity.TaskStatuses, in.Status) {
		return nil, domain.Invalid("status", "estado inválido: "+in.Status)
	}
	t, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == in.Status {
		return uc.Get(ctx, t.ID)
	}
	now := uc.now()
	completing := in.Status == entity.TaskStatusDone
	reopening := t.Status == entity.TaskStatusDone
	t.Status = in.Status
	t.UpdatedAt = now
	if completing {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}

	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Tasks.Update(ctx, t); err != nil {
			return err
		}
		if reopening {
			return r.Tasks.DeletePerformance(ctx, t.ID)
		}
		if !completing {
			return nil
		}
		assignments, err := r.Tasks.ListAssignments(ctx, t.ID)
		if err != nil {
			return err
		}
		res := performance.Evaluate(t.DueDate, now)
		for _, a := range assignments {
			if err := r.Tasks.AddPerformance(ctx, &entity.TaskPerformance{
				ID:          uuid.New().String(),
				TaskID:      t.ID,
				EmployeeID:  a.EmployeeID,
				DueDate:     t.DueDate,
				CompletedAt: now,
				OnTime:      res.OnTime,
				DaysLate:    res.DaysLate,
				Strike:      res.Strike,
				CreatedAt:   now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, t.ID)
}
