package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Huella-api/internal/application/dto"
	"github.com/jhoicas/Huella-api/internal/application/usecase"
)

// SessionHandler expone el estado del session store a los clientes.
type SessionHandler struct {
	store SessionReader
}

// NewSessionHandler construye el handler de sesión.
func NewSessionHandler(store SessionReader) *SessionHandler {
	return &SessionHandler{store: store}
}

// State godoc
// @Summary      Estado de la sesión
// @Description  Instantánea del session store: usuario, perfil, rol derivado y flags.
// @Tags         session
// @Produce      json
// @Success      200  {object}  dto.SessionStateResponse
// @Router       /api/session [get]
func (h *SessionHandler) State(c *fiber.Ctx) error {
	snap := h.store.Snapshot()

	resp := dto.SessionStateResponse{
		Loading:         snap.Loading,
		Authenticated:   snap.Session != nil,
		IsAdmin:         snap.IsAdmin(),
		ProfileCreating: snap.ProfileCreating,
		AuthError:       snap.AuthError,
	}
	if snap.User != nil {
		resp.User = &dto.SessionUser{ID: snap.User.ID, Email: snap.User.Email}
	}
	resp.Profile = usecase.ToProfileResponse(snap.Profile)

	return c.JSON(resp)
}
