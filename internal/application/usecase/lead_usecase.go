package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/textnorm"
)

// LeadUseCase CRUD de prospectos. La conversión a venta vive en el paquete sales.
type LeadUseCase struct {
	repo repository.LeadRepository
}

// NewLeadUseCase construye el caso de uso.
func NewLeadUseCase(repo repository.LeadRepository) *LeadUseCase {
	return &LeadUseCase{repo: repo}
}

// Create alta de lead; estado por defecto "new".
func (uc *LeadUseCase) Create(ctx context.Context, actorID string, in dto.CreateLeadRequest) (*dto.LeadResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "es obligatorio")
	}
	if !entity.Contains(entity.LeadSources, in.Source) {
		return nil, domain.Invalid("source", "origen inválido: "+in.Source)
	}
	status := in.Status
	if status == "" {
		status = entity.LeadStatusNew
	}
	if status == entity.LeadStatusConverted || !entity.Contains(entity.LeadStatuses, status) {
		return nil, domain.Invalid("status", "estado inválido: "+status)
	}
	now := time.Now().UTC()
	l := &entity.Lead{
		ID:          uuid.New().String(),
		Name:        name,
		Email:       textnorm.Email(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		CompanyName: strings.TrimSpace(in.CompanyName),
		Source:      in.Source,
		Status:      status,
		Notes:       in.Notes,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	out := dto.NewLeadResponse(l)
	return &out, nil
}

func (uc *LeadUseCase) get(ctx context.Context, id string) (*entity.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	l, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

// GetByID obtiene un lead.
func (uc *LeadUseCase) GetByID(ctx context.Context, id string) (*dto.LeadResponse, error) {
	l, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewLeadResponse(l)
	return &out, nil
}

// List lista leads filtrados con total.
func (uc *LeadUseCase) List(ctx context.Context, f dto.LeadFilter) (*dto.LeadListResponse, error) {
	f.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.LeadFilter{
		Status:     f.Status,
		Source:     f.Source,
		AssignedTo: f.AssignedTo,
		Search:     strings.TrimSpace(f.Q),
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.LeadListResponse{
		Items: make([]dto.LeadResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}
	for _, l := range list {
		out.Items = append(out.Items, dto.NewLeadResponse(l))
	}
	return out, nil
}

// Update actualización parcial. Un lead convertido no puede cambiar de estado.
func (uc *LeadUseCase) Update(ctx context.Context, id string, in dto.UpdateLeadRequest) (*dto.LeadResponse, error) {
	l, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		l.Name = strings.TrimSpace(*in.Name)
		if l.Name == "" {
			return nil, domain.Invalid("name", "no puede quedar vacío")
		}
	}
	if in.Email != nil {
		l.Email = textnorm.Email(*in.Email)
	}
	if in.Phone != nil {
		l.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.CompanyName != nil {
		l.CompanyName = strings.TrimSpace(*in.CompanyName)
	}
	if in.Source != nil {
		if !entity.Contains(entity.LeadSources, *in.Source) {
			return nil, domain.Invalid("source", "origen inválido: "+*in.Source)
		}
		l.Source = *in.Source
	}
	if in.Status != nil && *in.Status != l.Status {
		if l.IsConverted() {
			return nil, domain.ErrConflict
		}
		if *in.Status == entity.LeadStatusConverted || !entity.Contains(entity.LeadStatuses, *in.Status) {
			return nil, domain.Invalid("status", "estado inválido: "+*in.Status)
		}
		l.Status = *in.Status
	}
	if in.Notes != nil {
		l.Notes = *in.Notes
	}
	if in.AssignedTo != nil {
		l.AssignedTo = in.AssignedTo
		if *in.AssignedTo == "" {
			l.AssignedTo = nil
		}
	}
	l.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	out := dto.NewLeadResponse(l)
	return &out, nil
}

// Delete elimina un lead.
func (uc *LeadUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}
