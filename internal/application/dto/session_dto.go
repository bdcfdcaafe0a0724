package dto

import "time"

// LoginRequest entrada para iniciar sesión contra el proveedor de identidad.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest entrada para registro self-service. CompanyName alimenta el
// perfil pending que queda a la espera de aprobación del operador.
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	CompanyName string `json:"company_name" validate:"required,min=1,max=200"`
}

// RecoverRequest entrada para recuperación de contraseña.
type RecoverRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SessionUser usuario embebido en la respuesta de sesión.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResponse salida de login: tokens del proveedor + usuario.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         SessionUser `json:"user"`
}

// SessionStateResponse instantánea del estado del session store expuesta en GET /api/session.
type SessionStateResponse struct {
	Loading         bool             `json:"loading"`
	Authenticated   bool             `json:"authenticated"`
	IsAdmin         bool             `json:"is_admin"`
	ProfileCreating bool             `json:"profile_creating"`
	AuthError       string           `json:"auth_error,omitempty"`
	User            *SessionUser     `json:"user,omitempty"`
	Profile         *ProfileResponse `json:"profile,omitempty"`
}

// InterimResponse vista interina que devuelve una puerta de ruta cuando el estado
// aún no permite decidir entre renderizar y redirigir (o cuando la decisión es
// una vista terminal como access-revoked o timeout).
type InterimResponse struct {
	State        string `json:"state"` // interim
	View         string `json:"view"`
	AuthError    string `json:"auth_error,omitempty"`
	OfferSignOut bool   `json:"offer_sign_out,omitempty"`
}
