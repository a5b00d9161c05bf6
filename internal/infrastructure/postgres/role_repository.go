package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo roles y flags por módulo sobre PostgreSQL.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador (pool o tx).
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

const roleColumns = `id, name, display_name, description, hierarchy_level, created_at, updated_at`

func scanRole(row pgx.Row) (*entity.Role, error) {
	var ro entity.Role
	if err := row.Scan(&ro.ID, &ro.Name, &ro.DisplayName, &ro.Description, &ro.HierarchyLevel, &ro.CreatedAt, &ro.UpdatedAt); err != nil {
		return nil, err
	}
	return &ro, nil
}

// Create persiste un rol nuevo.
func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	query := `
		INSERT INTO roles (id, name, display_name, description, hierarchy_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		role.ID, role.Name, role.DisplayName, role.Description, role.HierarchyLevel, role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

// GetByID obtiene un rol por ID.
func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	ro, err := scanRole(r.q.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return ro, nil
}

// GetByName obtiene un rol por nombre.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	ro, err := scanRole(r.q.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role by name: %w", err)
	}
	return ro, nil
}

// List devuelve todos los roles ordenados por jerarquía descendente.
func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY hierarchy_level DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Role
	for rows.Next() {
		ro, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		list = append(list, ro)
	}
	return list, rows.Err()
}

const permissionColumns = `rp.role_id, rp.module, rp.can_create, rp.can_read, rp.can_update, rp.can_delete, rp.screen_visible`

func scanPermissions(rows pgx.Rows) ([]entity.ModulePermission, error) {
	defer rows.Close()
	var list []entity.ModulePermission
	for rows.Next() {
		var p entity.ModulePermission
		if err := rows.Scan(&p.RoleID, &p.Module, &p.CanCreate, &p.CanRead, &p.CanUpdate, &p.CanDelete, &p.ScreenVisible); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetPermissions flags de un rol para todos los módulos con fila.
func (r *RoleRepo) GetPermissions(ctx context.Context, roleID string) ([]entity.ModulePermission, error) {
	rows, err := r.q.Query(ctx, `SELECT `+permissionColumns+` FROM role_permissions rp WHERE rp.role_id = $1 ORDER BY rp.module`, roleID)
	if err != nil {
		return nil, fmt.Errorf("get role permissions: %w", err)
	}
	return scanPermissions(rows)
}

// UpsertPermission crea o reemplaza los flags de (rol, módulo).
func (r *RoleRepo) UpsertPermission(ctx context.Context, p entity.ModulePermission) error {
	query := `
		INSERT INTO role_permissions (role_id, module, can_create, can_read, can_update, can_delete, screen_visible, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (role_id, module) DO UPDATE SET
			can_create = EXCLUDED.can_create,
			can_read = EXCLUDED.can_read,
			can_update = EXCLUDED.can_update,
			can_delete = EXCLUDED.can_delete,
			screen_visible = EXCLUDED.screen_visible,
			updated_at = now()`
	_, err := r.q.Exec(ctx, query, p.RoleID, p.Module, p.CanCreate, p.CanRead, p.CanUpdate, p.CanDelete, p.ScreenVisible)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("module", "módulo desconocido: "+p.Module)
		}
		return fmt.Errorf("upsert role permission: %w", err)
	}
	return nil
}

// PermissionsForUser flags efectivos del usuario (vacío si no tiene rol o está inactivo).
func (r *RoleRepo) PermissionsForUser(ctx context.Context, userID string) ([]entity.ModulePermission, error) {
	query := `SELECT ` + permissionColumns + `
		FROM users u
		JOIN role_permissions rp ON rp.role_id = u.role_id
		WHERE u.id = $1 AND u.is_active
		ORDER BY rp.module`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("permissions for user: %w", err)
	}
	return scanPermissions(rows)
}

// CheckPermission evalúa has_module_permission en la base.
func (r *RoleRepo) CheckPermission(ctx context.Context, userID, module, action string) (bool, error) {
	var ok bool
	if err := r.q.QueryRow(ctx, `SELECT has_module_permission($1, $2, $3)`, userID, module, action).Scan(&ok); err != nil {
		return false, fmt.Errorf("has_module_permission: %w", err)
	}
	return ok, nil
}

// UserIDsByRole IDs de los usuarios con el rol indicado.
func (r *RoleRepo) UserIDsByRole(ctx context.Context, roleID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM users WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, fmt.Errorf("users by role: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddAudit registra un cambio de flags.
func (r *RoleRepo) AddAudit(ctx context.Context, a *entity.PermissionAudit) error {
	var before []byte
	if a.Before != nil {
		b, err := json.Marshal(a.Before)
		if err != nil {
			return fmt.Errorf("marshal audit before: %w", err)
		}
		before = b
	}
	after, err := json.Marshal(a.After)
	if err != nil {
		return fmt.Errorf("marshal audit after: %w", err)
	}
	query := `
		INSERT INTO permission_audit_log (id, role_id, module, changed_by, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query, a.ID, a.RoleID, a.Module, nullable(a.ChangedBy), before, after, a.CreatedAt); err != nil {
		return fmt.Errorf("insert permission audit: %w", err)
	}
	return nil
}

// ListAudit últimos cambios de un rol.
func (r *RoleRepo) ListAudit(ctx context.Context, roleID string, limit int) ([]*entity.PermissionAudit, error) {
	limit, _ = paginate(limit, 0)
	query := `
		SELECT id, role_id, module, changed_by, before, after, created_at
		FROM permission_audit_log WHERE role_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, roleID, limit)
	if err != nil {
		return nil, fmt.Errorf("list permission audit: %w", err)
	}
	defer rows.Close()
	var list []*entity.PermissionAudit
	for rows.Next() {
		var (
			a             entity.PermissionAudit
			changedBy     *string
			before, after []byte
		)
		if err := rows.Scan(&a.ID, &a.RoleID, &a.Module, &changedBy, &before, &after, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan permission audit: %w", err)
		}
		a.ChangedBy = deref(changedBy)
		if len(before) > 0 {
			var b entity.ModulePermission
			if err := json.Unmarshal(before, &b); err == nil {
				a.Before = &b
			}
		}
		if err := json.Unmarshal(after, &a.After); err != nil {
			return nil, fmt.Errorf("unmarshal audit after: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
