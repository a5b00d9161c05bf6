package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/sales"
)

// SalesHandler ventas (sales dispositions), upsells y comprobante PDF.
type SalesHandler struct {
	uc *sales.DispositionUseCase
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *sales.DispositionUseCase) *SalesHandler {
	return &SalesHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar una venta
// @Description  Calcula remaining = gross_value - cash_in y recalcula el desempeño mensual del vendedor.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDispositionRequest  true  "venta"
// @Success      201   {object}  dto.Response{data=dto.DispositionResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/sales-dispositions [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDispositionRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// List GET /api/sales-dispositions?seller_id=&source=&company=&is_upsell=&from=&to=
func (h *SalesHandler) List(c *fiber.Ctx) error {
	var f dto.DispositionFilter
	if err := parseQuery(c, &f); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *SalesHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *SalesHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDispositionRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *SalesHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"deleted": c.Params("id")})
}

// Upsell POST /api/sales-dispositions/:id/upsell
func (h *SalesHandler) Upsell(c *fiber.Ctx) error {
	var in dto.UpsellRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Upsell(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// Receipt GET /api/sales-dispositions/:id/receipt → application/pdf
func (h *SalesHandler) Receipt(c *fiber.Ctx) error {
	pdf, err := h.uc.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="venta-`+c.Params("id")+`.pdf"`)
	return c.Status(fiber.StatusOK).Send(pdf)
}
