package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
)

// permissionChecker es el contrato mínimo que necesita el middleware.
// Lo implementa *usecase.PermissionService; el uso de interfaz evita el import circular.
type permissionChecker interface {
	Check(ctx context.Context, userID, module, action string) bool
}

// RequirePermission devuelve un middleware Fiber que verifica el flag (module, action)
// del rol del usuario. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 → no hay user_id en el contexto.
//   - 403 → el rol no tiene el flag, o la verificación falló (fail-closed, nunca 503).
func RequirePermission(checker permissionChecker, module, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("UNAUTHORIZED", "user_id no encontrado en el token"))
		}
		if !checker.Check(c.UserContext(), userID, module, action) {
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail(
				"FORBIDDEN",
				"sin permiso '"+action+"' sobre el módulo '"+module+"'",
			))
		}
		return c.Next()
	}
}
