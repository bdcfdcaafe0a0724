package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Huella-api/internal/application/dto"
	"github.com/jhoicas/Huella-api/internal/application/session"
)

// SessionReader es el contrato mínimo que necesitan los middlewares y handlers
// para leer el estado de sesión. Lo implementa *session.Store; el uso de
// interfaz evita acoplar el layer HTTP al store concreto y permite stubs en tests.
// Los guards solo LEEN el estado; nunca lo mutan.
type SessionReader interface {
	Snapshot() session.Snapshot
}

// Guard devuelve un middleware Fiber que evalúa la puerta sobre el snapshot
// actual del session store y materializa la decisión:
//
//   - Render   → c.Next() (el grupo de rutas protegido atiende la petición).
//   - Redirect → 303 See Other a la ruta nombrada por la puerta.
//   - Interim  → 200 con la vista interina o terminal (authenticating,
//     provisioning, access-revoked, connection-timeout, ...).
//
// Las denegaciones son redirecciones silenciosas, nunca errores: no se filtra
// información sobre la existencia del área protegida.
func Guard(store SessionReader, gate *session.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := store.Snapshot()
		decision := gate.Evaluate(snap)

		switch decision.Kind {
		case session.DecisionRender:
			return c.Next()
		case session.DecisionRedirect:
			return c.Redirect(decision.Path, fiber.StatusSeeOther)
		default:
			resp := dto.InterimResponse{
				State:        "interim",
				View:         decision.View,
				OfferSignOut: decision.OfferSignOut,
			}
			if decision.View == session.ViewConnectionError {
				resp.AuthError = snap.AuthError
			}
			return c.Status(fiber.StatusOK).JSON(resp)
		}
	}
}

// currentUserID devuelve el identificador del usuario de la sesión activa.
// Solo tiene sentido detrás de un Guard que ya decidió Render.
func currentUserID(store SessionReader) string {
	snap := store.Snapshot()
	if snap.User == nil {
		return ""
	}
	return snap.User.ID
}
