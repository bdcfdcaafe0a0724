package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Huella-api/internal/application/ports"
	"github.com/jhoicas/Huella-api/internal/domain/entity"
	"github.com/jhoicas/Huella-api/internal/domain/repository"
)

// ResolutionStatus resultado de un intento de resolución de perfil.
type ResolutionStatus int

const (
	// StatusFound el perfil existe y se devuelve tal cual (o se sintetizó por fallback).
	StatusFound ResolutionStatus = iota
	// StatusNotFound no hay fila: el trigger de aprovisionamiento aún no corrió.
	// NO es un error; el caller debe mostrar "aprovisionamiento en curso".
	StatusNotFound
	// StatusError la consulta al data store falló.
	StatusError
)

// Resolution salida del Resolver. Message solo viene con StatusError.
type Resolution struct {
	Status  ResolutionStatus
	Profile *entity.Profile
	Message string
}

// contingencyCompanyName nombre placeholder del perfil sintetizado por el fallback de confianza.
const contingencyCompanyName = "MODO CONTINGENCIA"

// Resolver determina el registro autoritativo de rol/estado para un usuario.
// Distingue "sin fila" de "consulta fallida" y aplica el fallback de confianza
// para operadores cuando el data store no responde: un límite de confianza
// explícito y acotado, no un bypass general.
type Resolver struct {
	profiles  repository.ProfileRepository
	overrides map[string]struct{}
	log       zerolog.Logger
}

// NewResolver construye el resolver. overrideIDs es la allowlist de identificadores
// de operador aprovisionados fuera de banda (configuración, nunca una constante).
func NewResolver(profiles repository.ProfileRepository, overrideIDs []string, log zerolog.Logger) *Resolver {
	ov := make(map[string]struct{}, len(overrideIDs))
	for _, id := range overrideIDs {
		ov[id] = struct{}{}
	}
	return &Resolver{profiles: profiles, overrides: ov, log: log}
}

// Resolve consulta el perfil del usuario.
//
// Si la consulta falla y el usuario trae role claim de operador (o su ID está en
// la allowlist), se sintetiza un perfil mínimo de operador para no bloquear la
// cuenta privilegiada por una caída transitoria de la capa de datos, y se
// re-lanza la misma consulta en segundo plano sin bloquear al caller. El
// resultado de esa reconciliación se entrega vía reconcile (puede ser nil).
func (r *Resolver) Resolve(ctx context.Context, user ports.User, reconcile func(Resolution)) Resolution {
	if user.ID == "" {
		return Resolution{Status: StatusError, Message: "identificador de usuario vacío"}
	}

	p, err := r.profiles.GetByID(ctx, user.ID)
	if err != nil {
		if user.AdminClaim || r.isOverride(user.ID) {
			r.log.Warn().
				Str("user_id", user.ID).
				Bool("admin_claim", user.AdminClaim).
				Err(err).
				Msg("data store inaccesible: aplicando fallback de confianza para operador")
			if reconcile != nil {
				go r.reconcile(user, reconcile)
			}
			return Resolution{Status: StatusFound, Profile: syntheticOperatorProfile(user.ID)}
		}
		return Resolution{Status: StatusError, Message: err.Error()}
	}
	if p == nil {
		return Resolution{Status: StatusNotFound}
	}
	return Resolution{Status: StatusFound, Profile: p}
}

// reconcile re-ejecuta la consulta contra el store autoritativo tras un fallback.
// El resultado pasa por la misma vía que cualquier resolución, de modo que el
// descarte por identificador obsoleto del store sigue aplicando.
func (r *Resolver) reconcile(user ports.User, apply func(Resolution)) {
	p, err := r.profiles.GetByID(context.Background(), user.ID)
	if err != nil {
		r.log.Error().Str("user_id", user.ID).Err(err).
			Msg("reconciliación de perfil tras fallback falló; se mantiene el perfil sintético")
		return
	}
	if p == nil {
		apply(Resolution{Status: StatusNotFound})
		return
	}
	if !p.IsAdmin {
		r.log.Warn().Str("user_id", user.ID).
			Msg("reconciliación: el perfil autoritativo no es operador pero el claim sí; revisar propagación")
	}
	apply(Resolution{Status: StatusFound, Profile: p})
}

func (r *Resolver) isOverride(id string) bool {
	_, ok := r.overrides[id]
	return ok
}

func syntheticOperatorProfile(id string) *entity.Profile {
	return &entity.Profile{
		ID:          id,
		CompanyName: contingencyCompanyName,
		IsAdmin:     true,
		Status:      entity.StatusActive,
		CreatedAt:   time.Now(),
	}
}
