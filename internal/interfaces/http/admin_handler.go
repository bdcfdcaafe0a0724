package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Huella-api/internal/application/dto"
	"github.com/jhoicas/Huella-api/internal/application/usecase"
	"github.com/jhoicas/Huella-api/internal/domain"
)

// AdminHandler operaciones del operador sobre cuentas de tenant. Va detrás del
// Guard de operador.
type AdminHandler struct {
	uc *usecase.AdminUseCase
}

// NewAdminHandler construye el handler del operador.
func NewAdminHandler(uc *usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// ListProfiles godoc
// @Summary      Listar perfiles de tenant
// @Tags         admin
// @Produce      json
// @Param        limit   query  int  false  "tamaño de página"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ProfileListResponse
// @Router       /api/admin/profiles [get]
func (h *AdminHandler) ListProfiles(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	out, err := h.uc.ListProfiles(c.Context(), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Aprobar o suspender una cuenta
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "id del perfil"
// @Param        body  body  dto.UpdateProfileStatusRequest  true  "status: active | suspended"
// @Success      200   {object}  dto.ProfileResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/profiles/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateProfileStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.UpdateStatus(c.Context(), c.Params("id"), in.Status)
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(out)
}

// UpdateProfile godoc
// @Summary      Corregir datos de un perfil
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "id del perfil"
// @Param        body  body  dto.UpdateProfileRequest  true  "company_name"
// @Success      200   {object}  dto.ProfileResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/profiles/{id} [patch]
func (h *AdminHandler) UpdateProfile(c *fiber.Ctx) error {
	var in dto.UpdateProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.UpdateCompanyName(c.Context(), c.Params("id"), in.CompanyName)
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(out)
}

// TenantAudits godoc
// @Summary      Auditorías de un tenant
// @Tags         admin
// @Produce      json
// @Param        id      path   string  true   "id del perfil"
// @Param        limit   query  int     false  "tamaño de página"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.AuditListResponse
// @Router       /api/admin/profiles/{id}/audits [get]
func (h *AdminHandler) TenantAudits(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	out, err := h.uc.TenantAudits(c.Context(), c.Params("id"), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// profileError mapea errores de dominio de perfiles a HTTP.
func profileError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrProfileNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PROFILE_NOT_FOUND", Message: "el perfil no existe"})
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entrada inválida"})
	case domain.ErrInvalidTransition:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
