package usecase

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
	"github.com/jhoicas/CRM-api/pkg/textnorm"
)

// EmployeeUseCase fichas de RR.HH. y su desempeño en tareas.
type EmployeeUseCase struct {
	repo  repository.EmployeeRepository
	tasks repository.TaskRepository
}

// NewEmployeeUseCase construye el caso de uso.
func NewEmployeeUseCase(repo repository.EmployeeRepository, tasks repository.TaskRepository) *EmployeeUseCase {
	return &EmployeeUseCase{repo: repo, tasks: tasks}
}

// Create alta de empleado con nombres normalizados.
func (uc *EmployeeUseCase) Create(ctx context.Context, in dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	first := textnorm.PersonName(in.FirstName)
	if first == "" {
		return nil, domain.Invalid("first_name", "es obligatorio")
	}
	joinDate, err := dto.ParseDate("join_date", in.JoinDate)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	e := &entity.Employee{
		ID:         uuid.New().String(),
		UserID:     in.UserID,
		FirstName:  first,
		LastName:   textnorm.PersonName(in.LastName),
		Email:      textnorm.Email(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Department: strings.TrimSpace(in.Department),
		JobTitle:   strings.TrimSpace(in.JobTitle),
		JoinDate:   joinDate,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	out := dto.NewEmployeeResponse(e)
	return &out, nil
}

func (uc *EmployeeUseCase) get(ctx context.Context, id string) (*entity.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

// GetByID obtiene un empleado.
func (uc *EmployeeUseCase) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	e, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewEmployeeResponse(e)
	return &out, nil
}

// List lista empleados filtrados.
func (uc *EmployeeUseCase) List(ctx context.Context, f dto.EmployeeFilter) ([]dto.EmployeeResponse, error) {
	f.DefaultPage()
	list, err := uc.repo.List(ctx, repository.EmployeeFilter{
		Department: f.Department,
		ActiveOnly: f.ActiveOnly,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.EmployeeResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.NewEmployeeResponse(e))
	}
	return out, nil
}

// Update actualización parcial.
func (uc *EmployeeUseCase) Update(ctx context.Context, id string, in dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	e, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.UserID != nil {
		e.UserID = in.UserID
		if *in.UserID == "" {
			e.UserID = nil
		}
	}
	if in.FirstName != nil {
		e.FirstName = textnorm.PersonName(*in.FirstName)
		if e.FirstName == "" {
			return nil, domain.Invalid("first_name", "no puede quedar vacío")
		}
	}
	if in.LastName != nil {
		e.LastName = textnorm.PersonName(*in.LastName)
	}
	if in.Email != nil {
		e.Email = textnorm.Email(*in.Email)
	}
	if in.Phone != nil {
		e.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Department != nil {
		e.Department = strings.TrimSpace(*in.Department)
	}
	if in.JobTitle != nil {
		e.JobTitle = strings.TrimSpace(*in.JobTitle)
	}
	if in.JoinDate != nil {
		if e.JoinDate, err = dto.ParseDate("join_date", *in.JoinDate); err != nil {
			return nil, err
		}
	}
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
	e.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	out := dto.NewEmployeeResponse(e)
	return &out, nil
}

// Deactivate baja lógica (is_active = false).
func (uc *EmployeeUseCase) Deactivate(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return uc.repo.Deactivate(ctx, id)
}

// Performance resumen de cumplimiento de tareas del empleado.
func (uc *EmployeeUseCase) Performance(ctx context.Context, id string) (*dto.TaskPerformanceResponse, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	s, err := uc.tasks.PerformanceSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.TaskPerformanceResponse{
		EmployeeID: id,
		Completed:  s.Completed,
		OnTime:     s.OnTime,
		Late:       s.Late,
		Strikes:    s.Strikes,
		OnTimeRate: performance.OnTimeRate(s.OnTime, s.Completed),
	}, nil
}
