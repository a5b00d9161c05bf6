package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/CRM-api/internal/application/analytics"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// AnalyticsHandler tablas mensuales de desempeño de vendedores.
type AnalyticsHandler struct {
	uc *appanalytics.PerformanceUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *appanalytics.PerformanceUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// FrontSalesPerformance godoc
// @Summary      Desempeño mensual de front sales
// @Tags         performance
// @Security     Bearer
// @Produce      json
// @Param        month  query  string  false  "YYYY-MM (por defecto el mes en curso)"
// @Success      200    {object}  dto.Response{data=dto.PerformanceResponse}
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      403    {object}  dto.ErrorResponse
// @Router       /api/front-sales/performance [get]
func (h *AnalyticsHandler) FrontSalesPerformance(c *fiber.Ctx) error {
	return h.performance(c, entity.DepartmentFrontSales)
}

// UpsellerPerformance GET /api/upseller/performance?month=YYYY-MM
func (h *AnalyticsHandler) UpsellerPerformance(c *fiber.Ctx) error {
	return h.performance(c, entity.DepartmentUpseller)
}

func (h *AnalyticsHandler) performance(c *fiber.Ctx, department string) error {
	out, err := h.uc.List(c.UserContext(), department, c.Query("month"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}
