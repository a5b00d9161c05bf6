package entity

import "time"

// Nombres de roles sembrados por la migración inicial.
const (
	RoleAdmin          = "admin"
	RoleManager        = "manager"
	RoleFrontSales     = "front_sales"
	RoleUpseller       = "upseller"
	RoleProjectManager = "project_manager"
	RoleEmployee       = "employee"
)

// Role paquete de permisos con nivel jerárquico (mayor = más privilegios).
type Role struct {
	ID             string
	Name           string
	DisplayName    string
	Description    string
	HierarchyLevel int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Módulos del CRM sobre los que se definen permisos.
const (
	ModuleDashboard  = "dashboard"
	ModuleLeads      = "leads"
	ModuleSales      = "sales"
	ModuleProjects   = "projects"
	ModuleTasks      = "tasks"
	ModuleEmployees  = "employees"
	ModuleUsers      = "users"
	ModuleRoles      = "roles"
	ModuleMessages   = "messages"
	ModuleAIChat     = "ai_chat"
	ModuleFrontSales = "front_sales"
	ModuleUpseller   = "upseller"
)

// Modules lista ordenada de todos los módulos válidos.
var Modules = []string{
	ModuleDashboard, ModuleLeads, ModuleSales, ModuleProjects, ModuleTasks, ModuleEmployees,
	ModuleUsers, ModuleRoles, ModuleMessages, ModuleAIChat, ModuleFrontSales, ModuleUpseller,
}

// IsValidModule indica si el nombre corresponde a un módulo conocido.
func IsValidModule(m string) bool {
	for _, v := range Modules {
		if v == m {
			return true
		}
	}
	return false
}

// Acciones verificables sobre un módulo.
const (
	ActionCreate  = "create"
	ActionRead    = "read"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionVisible = "visible"
)

// IsValidAction indica si la acción es una de las cinco soportadas.
func IsValidAction(a string) bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionVisible:
		return true
	}
	return false
}

// ModulePermission flags CRUD + visibilidad de un rol sobre un módulo.
type ModulePermission struct {
	RoleID        string `json:"role_id,omitempty"`
	Module        string `json:"module"`
	CanCreate     bool   `json:"can_create"`
	CanRead       bool   `json:"can_read"`
	CanUpdate     bool   `json:"can_update"`
	CanDelete     bool   `json:"can_delete"`
	ScreenVisible bool   `json:"screen_visible"`
}

// Allows devuelve el flag correspondiente a la acción. Acción desconocida = false.
func (p ModulePermission) Allows(action string) bool {
	switch action {
	case ActionCreate:
		return p.CanCreate
	case ActionRead:
		return p.CanRead
	case ActionUpdate:
		return p.CanUpdate
	case ActionDelete:
		return p.CanDelete
	case ActionVisible:
		return p.ScreenVisible
	}
	return false
}

// PermissionSet permisos efectivos de un usuario indexados por módulo.
type PermissionSet map[string]ModulePermission

// NewPermissionSet indexa una lista de permisos por módulo.
func NewPermissionSet(perms []ModulePermission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p.Module] = p
	}
	return set
}

// Can sin fila para el módulo = false.
func (s PermissionSet) Can(module, action string) bool {
	p, ok := s[module]
	if !ok {
		return false
	}
	return p.Allows(action)
}

func (s PermissionSet) CanCreate(module string) bool { return s.Can(module, ActionCreate) }
func (s PermissionSet) CanRead(module string) bool   { return s.Can(module, ActionRead) }
func (s PermissionSet) CanUpdate(module string) bool { return s.Can(module, ActionUpdate) }
func (s PermissionSet) CanDelete(module string) bool { return s.Can(module, ActionDelete) }
func (s PermissionSet) CanView(module string) bool   { return s.Can(module, ActionVisible) }

// PermissionAudit registro de cambio de flags de un rol.
type PermissionAudit struct {
	ID        string
	RoleID    string
	Module    string
	ChangedBy string
	Before    *ModulePermission // nil si el módulo no tenía fila
	After     ModulePermission
	CreatedAt time.Time
}
