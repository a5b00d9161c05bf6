package repository

import (
	"context"

	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// RoleRepository roles, flags por módulo y bitácora de cambios.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)

	GetPermissions(ctx context.Context, roleID string) ([]entity.ModulePermission, error)
	UpsertPermission(ctx context.Context, perm entity.ModulePermission) error

	// PermissionsForUser une user → role → role_permissions.
	PermissionsForUser(ctx context.Context, userID string) ([]entity.ModulePermission, error)
	// CheckPermission delega en la función SQL has_module_permission (false si no hay fila).
	CheckPermission(ctx context.Context, userID, module, action string) (bool, error)
	// UserIDsByRole usuarios afectados por un cambio de flags (invalidación de caché).
	UserIDsByRole(ctx context.Context, roleID string) ([]string, error)

	AddAudit(ctx context.Context, audit *entity.PermissionAudit) error
	ListAudit(ctx context.Context, roleID string, limit int) ([]*entity.PermissionAudit, error)
}
