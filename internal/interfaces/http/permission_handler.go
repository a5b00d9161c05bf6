package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/usecase"
)

// PermissionHandler consultas de permisos del usuario autenticado.
type PermissionHandler struct {
	perms *usecase.PermissionService
}

// NewPermissionHandler construye el handler.
func NewPermissionHandler(perms *usecase.PermissionService) *PermissionHandler {
	return &PermissionHandler{perms: perms}
}

// Me GET /api/permissions/me → permisos efectivos por módulo.
// Un error al resolverlos devuelve el mapa vacío (fail-closed).
func (h *PermissionHandler) Me(c *fiber.Ctx) error {
	set, err := h.perms.ForUser(c.UserContext(), GetUserID(c))
	if err != nil {
		return ok(c, fiber.StatusOK, map[string]dto.ModulePermissionDTO{})
	}
	return ok(c, fiber.StatusOK, dto.NewPermissionMap(set))
}

// Check GET /api/permissions/check?module=&action=
// Consulta has_module_permission en la base: refleja un cambio de rol al instante,
// sin esperar a que venza la caché que usan los middlewares.
func (h *PermissionHandler) Check(c *fiber.Ctx) error {
	module, action := c.Query("module"), c.Query("action")
	if module == "" || action == "" {
		return fail(c, fiber.StatusBadRequest, "VALIDATION", "module y action son requeridos")
	}
	return ok(c, fiber.StatusOK, dto.PermissionCheckResponse{
		Module:  module,
		Action:  action,
		Allowed: h.perms.CheckLive(c.UserContext(), GetUserID(c), module, action),
	})
}
