package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Huella-api/internal/application/dto"
	"github.com/jhoicas/Huella-api/internal/application/usecase"
	"github.com/jhoicas/Huella-api/internal/domain"
)

// AuditHandler maneja las auditorías de facturas del tenant autenticado.
// Va detrás del Guard de tenant: cuando llega aquí, la sesión está activa y el
// perfil aprobado.
type AuditHandler struct {
	uc    *usecase.AuditUseCase
	store SessionReader
}

// NewAuditHandler construye el handler de auditorías.
func NewAuditHandler(uc *usecase.AuditUseCase, store SessionReader) *AuditHandler {
	return &AuditHandler{uc: uc, store: store}
}

// Upload godoc
// @Summary      Subir factura para auditar
// @Description  Extrae los datos de consumo con IA y registra la auditoría.
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UploadBillRequest  true  "factura en base64"
// @Success      201   {object}  dto.AuditResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/dashboard/audits [post]
func (h *AuditHandler) Upload(c *fiber.Ctx) error {
	var in dto.UploadBillRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Upload(c.Context(), currentUserID(h.store), in)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "file_data y mime_type son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar auditorías propias
// @Tags         dashboard
// @Produce      json
// @Param        limit   query  int  false  "tamaño de página"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.AuditListResponse
// @Router       /api/dashboard/audits [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	out, err := h.uc.List(c.Context(), currentUserID(h.store), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Métricas de carbono del tenant
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.CarbonStatsResponse
// @Router       /api/dashboard/stats [get]
func (h *AuditHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.Context(), currentUserID(h.store))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
