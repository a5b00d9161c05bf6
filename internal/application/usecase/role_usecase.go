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
)

// RoleUseCase administración de roles y de sus flags por módulo.
type RoleUseCase struct {
	roles repository.RoleRepository
	tx    repository.TxRunner
	perms *PermissionService
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(roles repository.RoleRepository, tx repository.TxRunner, perms *PermissionService) *RoleUseCase {
	return &RoleUseCase{roles: roles, tx: tx, perms: perms}
}

// List todos los roles.
func (uc *RoleUseCase) List(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := uc.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.NewRoleResponse(r))
	}
	return out, nil
}

// Create crea un rol sin permisos (todos los flags en false hasta configurarlos).
func (uc *RoleUseCase) Create(ctx context.Context, in dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	name := strings.ToLower(strings.TrimSpace(in.Name))
	if name == "" {
		return nil, domain.Invalid("name", "es obligatorio")
	}
	if in.HierarchyLevel < 0 {
		return nil, domain.Invalid("hierarchy_level", "no puede ser negativo")
	}
	now := time.Now().UTC()
	role := &entity.Role{
		ID:             uuid.New().String(),
		Name:           name,
		DisplayName:    strings.TrimSpace(in.DisplayName),
		Description:    in.Description,
		HierarchyLevel: in.HierarchyLevel,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	out := dto.NewRoleResponse(role)
	return &out, nil
}

func (uc *RoleUseCase) mustGet(ctx context.Context, roleID string) (*entity.Role, error) {
	if _, err := uuid.Parse(roleID); err != nil {
		return nil, domain.ErrNotFound
	}
	role, err := uc.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}
	return role, nil
}

// GetPermissions flags del rol para todos los módulos (los que no tienen fila, en false).
func (uc *RoleUseCase) GetPermissions(ctx context.Context, roleID string) ([]dto.ModulePermissionDTO, error) {
	if _, err := uc.mustGet(ctx, roleID); err != nil {
		return nil, err
	}
	perms, err := uc.roles.GetPermissions(ctx, roleID)
	if err != nil {
		return nil, err
	}
	set := entity.NewPermissionSet(perms)
	out := make([]dto.ModulePermissionDTO, 0, len(entity.Modules))
	for _, m := range entity.Modules {
		p, ok := set[m]
		if !ok {
			p = entity.ModulePermission{Module: m}
		}
		out = append(out, dto.NewModulePermissionDTO(p))
	}
	return out, nil
}

// UpdatePermissions reemplaza los flags de los módulos enviados y registra la bitácora
// en la misma transacción. Después invalida la caché de los usuarios con ese rol.
func (uc *RoleUseCase) UpdatePermissions(ctx context.Context, actorID, roleID string, in dto.UpdatePermissionsRequest) ([]dto.ModulePermissionDTO, error) {
	for _, p := range in.Permissions {
		if !entity.IsValidModule(p.Module) {
			return nil, domain.Invalid("module", "módulo desconocido: "+p.Module)
		}
	}
	if _, err := uc.mustGet(ctx, roleID); err != nil {
		return nil, err
	}

	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		current, err := r.Roles.GetPermissions(ctx, roleID)
		if err != nil {
			return err
		}
		before := entity.NewPermissionSet(current)
		now := time.Now().UTC()
		for _, p := range in.Permissions {
			after := entity.ModulePermission{
				RoleID:        roleID,
				Module:        p.Module,
				CanCreate:     p.CanCreate,
				CanRead:       p.CanRead,
				CanUpdate:     p.CanUpdate,
				CanDelete:     p.CanDelete,
				ScreenVisible: p.ScreenVisible,
			}
			var prev *entity.ModulePermission
			if b, ok := before[p.Module]; ok {
				if b == after {
					continue
				}
				prev = &b
			}
			if err := r.Roles.UpsertPermission(ctx, after); err != nil {
				return err
			}
			if err := r.Roles.AddAudit(ctx, &entity.PermissionAudit{
				ID:        uuid.New().String(),
				RoleID:    roleID,
				Module:    p.Module,
				ChangedBy: actorID,
				Before:    prev,
				After:     after,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	affected, err := uc.roles.UserIDsByRole(ctx, roleID)
	if err != nil {
		uc.perms.log.Error().Err(err).Str("role_id", roleID).Msg("no se pudieron listar usuarios del rol para invalidar caché")
	} else {
		uc.perms.Invalidate(ctx, affected...)
	}
	return uc.GetPermissions(ctx, roleID)
}

// ListAudit últimos cambios de flags del rol.
func (uc *RoleUseCase) ListAudit(ctx context.Context, roleID string, limit int) ([]dto.PermissionAuditResponse, error) {
	if _, err := uc.mustGet(ctx, roleID); err != nil {
		return nil, err
	}
	list, err := uc.roles.ListAudit(ctx, roleID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PermissionAuditResponse, 0, len(list))
	for _, a := range list {
		item := dto.PermissionAuditResponse{
			ID:        a.ID,
			RoleID:    a.RoleID,
			Module:    a.Module,
			ChangedBy: a.ChangedBy,
			After:     dto.NewModulePermissionDTO(a.After),
			CreatedAt: a.CreatedAt,
		}
		if a.Before != nil {
			b := dto.NewModulePermissionDTO(*a.Before)
			item.Before = &b
		}
		out = append(out, item)
	}
	return out, nil
}
