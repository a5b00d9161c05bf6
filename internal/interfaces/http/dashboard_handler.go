package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/CRM-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen comercial del mes en curso.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (month_gross, month_cash_in, month_remaining,
// dispositions, upsells, leads_by_status, projects_by_status, top_sellers[5], date_label).
// No requiere parámetros; las fechas se calculan en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, summary)
}
