package dto

import "time"

// CreateRoleRequest entrada para crear un rol.
type CreateRoleRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=50"`
	DisplayName    string `json:"display_name" validate:"required,max=100"`
	Description    string `json:"description" validate:"omitempty,max=500"`
	HierarchyLevel int    `json:"hierarchy_level" validate:"min=0,max=1000"`
}

// RoleResponse salida de un rol.
type RoleResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DisplayName    string    `json:"display_name"`
	Description    string    `json:"description"`
	HierarchyLevel int       `json:"hierarchy_level"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ModulePermissionDTO flags de un módulo.
type ModulePermissionDTO struct {
	Module        string `json:"module" validate:"required"`
	CanCreate     bool   `json:"can_create"`
	CanRead       bool   `json:"can_read"`
	CanUpdate     bool   `json:"can_update"`
	CanDelete     bool   `json:"can_delete"`
	ScreenVisible bool   `json:"screen_visible"`
}

// UpdatePermissionsRequest PUT /api/roles/:id/permissions.
type UpdatePermissionsRequest struct {
	Permissions []ModulePermissionDTO `json:"permissions" validate:"required,min=1,dive"`
}

// PermissionAuditResponse entrada de la bitácora de permisos.
type PermissionAuditResponse struct {
	ID        string               `json:"id"`
	RoleID    string               `json:"role_id"`
	Module    string               `json:"module"`
	ChangedBy string               `json:"changed_by"`
	Before    *ModulePermissionDTO `json:"before"`
	After     ModulePermissionDTO  `json:"after"`
	CreatedAt time.Time            `json:"created_at"`
}

// PermissionCheckResponse GET /api/permissions/check.
type PermissionCheckResponse struct {
	Module  string `json:"module"`
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
}
