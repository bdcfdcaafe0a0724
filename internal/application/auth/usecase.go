package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Huella-api/internal/application/dto"
	"github.com/jhoicas/Huella-api/internal/application/ports"
	"github.com/jhoicas/Huella-api/internal/application/session"
	"github.com/jhoicas/Huella-api/internal/domain"
	"github.com/jhoicas/Huella-api/internal/domain/entity"
	"github.com/jhoicas/Huella-api/internal/domain/repository"
)

// AuthUseCase casos de uso de autenticación. Las credenciales viven en el
// proveedor de identidad externo: aquí solo se orquesta el flujo y el perfil
// pending del signup self-service.
type AuthUseCase struct {
	authn    ports.Authenticator
	store    *session.Store
	profiles repository.ProfileRepository
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(authn ports.Authenticator, store *session.Store, profiles repository.ProfileRepository, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{authn: authn, store: store, profiles: profiles, log: log}
}

// Login delega la verificación de credenciales en el proveedor de identidad.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	sess, err := uc.authn.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		uc.log.Debug().Err(err).Str("email", in.Email).Msg("login rechazado por el proveedor")
		return nil, domain.ErrUnauthorized
	}
	return toLoginResponse(sess), nil
}

// Signup registra la cuenta en el proveedor y deja un perfil pending con el
// nombre de empresa, a la espera de aprobación del operador. El trigger de
// aprovisionamiento externo crea el mismo registro; el duplicado se ignora.
// Devuelve (nil, nil) cuando el proveedor exige confirmación por email.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.LoginResponse, error) {
	sess, err := uc.authn.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	profile := &entity.Profile{
		ID:          sess.User.ID,
		CompanyName: in.CompanyName,
		IsAdmin:     false,
		Status:      entity.StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := uc.profiles.Create(ctx, profile); err != nil && err != domain.ErrDuplicate {
		// El perfil lo terminará creando el trigger externo; no se bloquea el registro.
		uc.log.Warn().Err(err).Str("user_id", sess.User.ID).Msg("no se pudo crear el perfil pending en el signup")
	}
	return toLoginResponse(sess), nil
}

// Recover dispara la recuperación de contraseña en el proveedor.
func (uc *AuthUseCase) Recover(ctx context.Context, in dto.RecoverRequest) error {
	return uc.authn.Recover(ctx, in.Email)
}

// Logout cierra la sesión a través del session store (que limpia perfil, error
// y flag de aprovisionamiento además de invalidar la credencial).
func (uc *AuthUseCase) Logout(ctx context.Context) error {
	return uc.store.SignOut(ctx)
}

func toLoginResponse(sess *ports.Session) *dto.LoginResponse {
	return &dto.LoginResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
		User:         dto.SessionUser{ID: sess.User.ID, Email: sess.User.Email},
	}
}
