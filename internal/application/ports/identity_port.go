package ports

import (
	"context"
	"time"
)

// User identidad autenticada emitida por el proveedor.
// AdminClaim es el role claim embebido en la credencial (app_metadata.is_admin):
// acompaña al registro Profile de la DB como segunda fuente de verdad del rol.
type User struct {
	ID         string
	Email      string
	AdminClaim bool
}

// Session bundle de credenciales opaco emitido por el proveedor de identidad.
// Se crea en login/signup, se reemplaza en cada refresh y se destruye en sign-out.
// El adaptador de identidad es su único dueño; el resto del sistema solo lo lee.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// IdentityClient envuelve al proveedor de identidad externo.
// Contrato:
//   - CurrentSession nunca bloquea indefinidamente; se usa una vez en el arranque.
//   - Subscribe registra un listener que recibe la sesión nueva (o nil) en login,
//     logout y refresh; emite al menos un evento inmediatamente tras suscribirse
//     reflejando el estado actual. Devuelve la función para desuscribirse.
//   - SignOut es idempotente si no hay sesión activa.
//
// El adaptador NO reintenta: la política de reintentos es del caller.
type IdentityClient interface {
	CurrentSession(ctx context.Context) (*Session, error)
	Subscribe(onChange func(*Session)) (unsubscribe func())
	SignOut(ctx context.Context) error
}

// Authenticator operaciones de autenticación delegadas al proveedor (superficie
// de login/signup/recover de la API). Separado de IdentityClient para que el
// núcleo de sesión no dependa de operaciones que no usa.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	Recover(ctx context.Context, email string) error
}
