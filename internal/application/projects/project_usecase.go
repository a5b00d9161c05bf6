package projects

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

// ProjectCreated payload del evento project.created.
type ProjectCreated struct {
	ID                 string    `json:"id"`
	SalesDispositionID string    `json:"sales_disposition_id"`
	Name               string    `json:"name"`
	ProjectManagerID   *string   `json:"project_manager_id,omitempty"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// ProjectUseCase proyectos derivados de ventas.
type ProjectUseCase struct {
	projects     repository.ProjectRepository
	dispositions repository.SalesDispositionRepository
	employees    repository.EmployeeRepository
	events       ports.EventPublisher
	log          *logger.Logger
	now          func() time.Time
}

// NewProjectUseCase construye el caso de uso. events puede ser nil.
func NewProjectUseCase(
	projects repository.ProjectRepository,
	dispositions repository.SalesDispositionRepository,
	employees repository.EmployeeRepository,
	events ports.EventPublisher,
	log *logger.Logger,
) *ProjectUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProjectUseCase{
		projects:     projects,
		dispositions: dispositions,
		employees:    employees,
		events:       events,
		log:          log.Component("projects"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ProjectUseCase) checkManager(ctx context.Context, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	e, err := uc.employees.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if e == nil || !e.IsActive {
		return domain.Invalid("project_manager_id", "el project manager no existe o está inactivo")
	}
	return nil
}

// Create abre el proyecto de una venta. Una venta admite un solo proyecto (ErrDuplicate).
// Los upsells no abren proyecto propio: suman al de la venta original.
func (uc *ProjectUseCase) Create(ctx context.Context, actorID string, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	d, err := uc.dispositions.GetByID(ctx, in.SalesDispositionID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.Invalid("sales_disposition_id", "la venta no existe")
	}
	if d.IsUpsell {
		return nil, domain.Invalid("sales_disposition_id", "un upsell no abre proyecto propio")
	}
	existing, err := uc.projects.GetBySalesDisposition(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := uc.checkManager(ctx, in.ProjectManagerID); err != nil {
		return nil, err
	}
	due, err := dto.ParseDate("due_date", in.DueDate)
	if err != nil {
		return nil, err
	}

	client := d.BusinessName
	if client == "" {
		client = d.CustomerName
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = client
	}
	if name == "" {
		return nil, domain.Invalid("name", "es obligatorio si la venta no tiene cliente")
	}
	now := uc.now()
	p := &entity.Project{
		ID:                 uuid.New().String(),
		SalesDispositionID: d.ID,
		Name:               name,
		ClientName:         client,
		Description:        in.Description,
		ProjectManagerID:   in.ProjectManagerID,
		Status:             entity.ProjectStatusNew,
		DueDate:            due,
		CreatedBy:          actorID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	if uc.events != nil {
		ev := ports.Event{Name: ports.EventProjectCreated, Key: p.ID, Payload: ProjectCreated{
			ID: p.ID, SalesDispositionID: p.SalesDispositionID, Name: p.Name,
			ProjectManagerID: p.ProjectManagerID, OccurredAt: now,
		}}
		if err := uc.events.Publish(ctx, ev); err != nil {
			uc.log.Warn().Err(err).Str("project_id", p.ID).Msg("no se pudo publicar evento de proyecto")
		}
	}
	return uc.Get(ctx, p.ID)
}

func (uc *ProjectUseCase) get(ctx context.Context, id string) (*entity.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := uc.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// Get detalle del proyecto con el acumulado financiero de la venta y sus upsells.
func (uc *ProjectUseCase) Get(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := uc.projects.Financials(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	out := dto.NewProjectResponse(p, f)
	return &out, nil
}

// List lista proyectos sin financials.
func (uc *ProjectUseCase) List(ctx context.Context, f dto.ProjectFilter) ([]dto.ProjectResponse, error) {
	f.DefaultPage()
	if f.Status != "" && !entity.Contains(entity.ProjectStatuses, f.Status) {
		return nil, domain.Invalid("status", "estado inválido: "+f.Status)
	}
	list, err := uc.projects.List(ctx, repository.ProjectFilter{
		Status:           f.Status,
		ProjectManagerID: f.ProjectManagerID,
		Limit:            f.Limit,
		Offset:           f.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProjectResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.NewProjectResponse(p, nil))
	}
	return out, nil
}

// Update actualización parcial.
func (uc *ProjectUseCase) Update(ctx context.Context, id string, in dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
		if p.Name == "" {
			return nil, domain.Invalid("name", "no puede quedar vacío")
		}
	}
	if in.ClientName != nil {
		p.ClientName = strings.TrimSpace(*in.ClientName)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Status != nil {
		if !entity.Contains(entity.ProjectStatuses, *in.Status) {
			return nil, domain.Invalid("status", "estado inválido: "+*in.Status)
		}
		p.Status = *in.Status
	}
	if in.DueDate != nil {
		if p.DueDate, err = dto.ParseDate("due_date", *in.DueDate); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = uc.now()
	if err := uc.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return uc.Get(ctx, p.ID)
}

// Assign asigna el project manager.
func (uc *ProjectUseCase) Assign(ctx context.Context, id string, in dto.AssignProjectRequest) (*dto.ProjectResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.checkManager(ctx, &in.ProjectManagerID); err != nil {
		return nil, err
	}
	pm := in.ProjectManagerID
	p.ProjectManagerID = &pm
	p.UpdatedAt = uc.now()
	if err := uc.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return uc.Get(ctx, p.ID)
}

// Delete elimina el proyecto y sus tareas.
func (uc *ProjectUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return uc.projects.Delete(ctx, id)
}
