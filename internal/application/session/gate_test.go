package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Huella-api/internal/application/ports"
	"github.com/jhoicas/Huella-api/internal/application/session"
	"github.com/jhoicas/Huella-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func sessionFor(userID string, adminClaim bool) *ports.Session {
	return &ports.Session{
		AccessToken: "tok-" + userID,
		User:        ports.User{ID: userID, Email: userID + "@test.dev", AdminClaim: adminClaim},
	}
}

func profileFor(userID, status string, isAdmin bool) *entity.Profile {
	return &entity.Profile{
		ID:          userID,
		CompanyName: "Empresa Test SAS",
		IsAdmin:     isAdmin,
		Status:      status,
		CreatedAt:   time.Now(),
	}
}

// snapFor arma un snapshot resuelto (Loading=false) para el usuario dado.
func snapFor(userID string, adminClaim bool, p *entity.Profile) session.Snapshot {
	s := sessionFor(userID, adminClaim)
	return session.Snapshot{
		Session: s,
		User:    &s.User,
		Profile: p,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Snapshot.IsAdmin — regla de doble fuente (claim OR perfil)
// ──────────────────────────────────────────────────────────────────────────────

func TestSnapshotIsAdmin_TablaDeVerdad(t *testing.T) {
	cases := []struct {
		name    string
		claim   bool
		profile *entity.Profile
		want    bool
	}{
		{"sin claim y sin perfil", false, nil, false},
		{"solo claim", true, nil, true},
		{"solo perfil admin", false, profileFor("u1", entity.StatusActive, true), true},
		{"claim y perfil admin", true, profileFor("u1", entity.StatusActive, true), true},
		{"perfil tenant sin claim", false, profileFor("u1", entity.StatusActive, false), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapFor("u1", tc.claim, tc.profile)
			assert.Equal(t, tc.want, snap.IsAdmin())
		})
	}
}

func TestSnapshotIsAdmin_SinUsuario(t *testing.T) {
	assert.False(t, session.Snapshot{}.IsAdmin(),
		"un snapshot vacío nunca es operador")
}

// ──────────────────────────────────────────────────────────────────────────────
// Puerta de tenant
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: sin sesión → redirección a login.
func TestTenantGate_SinSesion_RedirigeALogin(t *testing.T) {
	g := session.NewTenantGate()
	d := g.Evaluate(session.Snapshot{})

	assert.Equal(t, session.DecisionRedirect, d.Kind)
	assert.Equal(t, session.RouteLogin, d.Path)
}

// Caso 2: arranque en curso → vista interina de autenticación, nunca contenido.
func TestTenantGate_Loading_VistaInterina(t *testing.T) {
	g := session.NewTenantGate()
	d := g.Evaluate(session.Snapshot{Loading: true})

	assert.Equal(t, session.DecisionInterim, d.Kind)
	assert.Equal(t, session.ViewAuthenticating, d.View)
	assert.False(t, d.OfferSignOut)
}

// Caso 3: perfil aún sin fila (trigger de aprovisionamiento pendiente) →
// vista de aprovisionamiento, no error.
func TestTenantGate_Aprovisionando_VistaProvisioning(t *testing.T) {
	g := session.NewTenantGate()
	snap := snapFor("u1", false, nil)
	snap.ProfileCreating = true

	d := g.Evaluate(snap)

	assert.Equal(t, session.DecisionInterim, d.Kind)
	assert.Equal(t, session.ViewProvisioning, d.View)
}

// Caso 4: fallo de la capa de datos → vista de error de conexión con opción
// de cerrar sesión; jamás una redirección que oculte el fallo.
func TestTenantGate_ErrorDeDatos_VistaConnectionError(t *testing.T) {
	g := session.NewTenantGate()
	snap := snapFor("u1", false, nil)
	snap.AuthError = "conexión rechazada"

	d := g.Evaluate(snap)

	assert.Equal(t, session.DecisionInterim, d.Kind)
	assert.Equal(t, session.ViewConnectionError, d.View)
	assert.True(t, d.OfferSignOut)
}

// Caso 5: cuenta pendiente de aprobación → pantalla de espera.
func TestTenantGate_CuentaPendiente_RedirigeAWaiting(t *testing.T) {
	g := session.NewTenantGate()
	d := g.Evaluate(snapFor("u1", false, profileFor("u1", entity.StatusPending, false)))

	assert.Equal(t, session.DecisionRedirect, d.Kind)
	assert.Equal(t, session.RouteWaiting, d.Path)
}

// Caso 6: cuenta suspendida → vista terminal de acceso revocado. Evaluar dos
// veces el mismo estado produce la misma decisión (la puerta es función pura).
func TestTenantGate_CuentaSuspendida_AccesoRevocadoIdempotente(t *testing.T) {
	g := session.NewTenantGate()
	snap := snapFor("u1", false, profileFor("u1", entity.StatusSuspended, false))

	d1 := g.Evaluate(snap)
	d2 := g.Evaluate(snap)

	assert.Equal(t, session.DecisionInterim, d1.Kind)
	assert.Equal(t, session.ViewAccessRevoked, d1.View)
	assert.True(t, d1.OfferSignOut)
	assert.Equal(t, d1, d2, "misma entrada, misma decisión")
}

// Caso 7: un operador nunca ve la UI de tenant → redirección al área de operador.
func TestTenantGate_Operador_RedirigeAAdmin(t *testing.T) {
	g := session.NewTenantGate()
	d := g.Evaluate(snapFor("u1", true, profileFor("u1", entity.StatusActive, true)))

	assert.Equal(t, session.DecisionRedirect, d.Kind)
	assert.Equal(t, session.RouteOperatorHome, d.Path)
}

// Caso 7b: un operador cuya cuenta sigue pendiente de aprobación va a la
// pantalla de espera, no al área de operador: el estado de cuenta se evalúa
// antes que el rol.
func TestTenantGate_OperadorPendiente_RedirigeAWaiting(t *testing.T) {
	g := session.NewTenantGate()
	d := g.Evaluate(snapFor("op1", false, profileFor("op1", entity.StatusPending, true)))

	assert.Equal(t, session.DecisionRedirect, d.Kind)
	assert.Equal(t, session.RouteWaiting, d.Path)
}

// Caso 8: tenant activo → contenido protegido.
func TestTenantGate_TenantActivo_Renderiza(t *testing.T) {
	g := session.NewTenantGate()
	d := g.Evaluate(snapFor("u1", false, profileFor("u1", entity.StatusActive, false)))

	assert.Equal(t, session.DecisionRender, d.Kind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Puerta de operador
// ──────────────────────────────────────────────────────────────────────────────

const operatorWait = 5 * time.Second

// Caso 1: sin sesión → redirección silenciosa al home público (no /login:
// no se revela la existencia del área privilegiada).
func TestOperatorGate_SinSesion_RedirigeAlHomePublico(t *testing.T) {
	g := session.NewOperatorGate(operatorWait)
	d := g.Evaluate(session.Snapshot{})

	assert.Equal(t, session.DecisionRedirect, d.Kind)
	assert.Equal(t, session.RoutePublicHome, d.Path)
}

// Caso 2: el role claim basta aunque el perfil aún no haya cargado
// (cubre el lag de la resolución y la caída del data store).
func TestOperatorGate_ClaimSinPerfil_Renderiza(t *testing.T) {
	g := session.NewOperatorGate(operatorWait)
	snap := snapFor("op1", true, nil)
	snap.PendingSince = time.Now()

	d := g.Evaluate(snap)

	assert.Equal(t, session.DecisionRender, d.Kind)
}

// Caso 3: perfil de operador sin claim (claim atrasado) → también renderiza.
func TestOperatorGate_PerfilAdminSinClaim_Renderiza(t *testing.T) {
	g := session.NewOperatorGate(operatorWait)
	d := g.Evaluate(snapFor("op1", false, profileFor("op1", entity.StatusActive, true)))

	assert.Equal(t, session.DecisionRender, d.Kind)
}

// Caso 4: rol resuelto como no-operador → redirección silenciosa al home.
func TestOperatorGate_TenantResuelto_RedirigeSilencioso(t *testing.T) {
	g := session.NewOperatorGate(operatorWait)
	d := g.Evaluate(snapFor("u1", false, profileFor("u1", entity.StatusActive, false)))

	assert.Equal(t, session.DecisionRedirect, d.Kind)
	assert.Equal(t, session.RoutePublicHome, d.Path)
}

// Caso 5: fallo de datos sin claim que lo respalde → denegación silenciosa,
// nunca acceso optimista.
func TestOperatorGate_ErrorDeDatosSinClaim_Deniega(t *testing.T) {
	g := session.NewOperatorGate(operatorWait)
	snap := snapFor("u1", false, nil)
	snap.AuthError = "timeout de conexión"

	d := g.Evaluate(snap)

	assert.Equal(t, session.DecisionRedirect, d.Kind)
	assert.Equal(t, session.RoutePublicHome, d.Path)
}

// Caso 6: rol sin resolver dentro de la ventana de espera → vista interina
// de verificación de privilegios.
func TestOperatorGate_SinResolver_VistaVerifying(t *testing.T) {
	base := time.Now()
	g := session.NewOperatorGate(operatorWait, session.WithGateNow(func() time.Time {
		return base.Add(2 * time.Second)
	}))
	snap := snapFor("u1", false, nil)
	snap.PendingSince = base

	d := g.Evaluate(snap)

	assert.Equal(t, session.DecisionInterim, d.Kind)
	assert.Equal(t, session.ViewVerifying, d.View)
	assert.False(t, d.OfferSignOut)
}

// Caso 7: superada la ventana de espera → vista terminal de timeout con
// opción de cerrar sesión (un spinner sin límite es un defecto).
func TestOperatorGate_EsperaAgotada_VistaTimeout(t *testing.T) {
	base := time.Now()
	g := session.NewOperatorGate(operatorWait, session.WithGateNow(func() time.Time {
		return base.Add(6 * time.Second)
	}))
	snap := snapFor("u1", false, nil)
	snap.PendingSince = base

	d := g.Evaluate(snap)

	assert.Equal(t, session.DecisionInterim, d.Kind)
	assert.Equal(t, session.ViewTimeout, d.View)
	assert.True(t, d.OfferSignOut)
}

// Caso 7b: el timeout también aplica durante el arranque (Loading).
func TestOperatorGate_EsperaAgotadaDuranteArranque_VistaTimeout(t *testing.T) {
	base := time.Now()
	g := session.NewOperatorGate(operatorWait, session.WithGateNow(func() time.Time {
		return base.Add(operatorWait)
	}))
	snap := session.Snapshot{Loading: true, PendingSince: base}

	d := g.Evaluate(snap)

	assert.Equal(t, session.ViewTimeout, d.View)
	assert.True(t, d.OfferSignOut)
}

// Caso 8: sin PendingSince no hay ventana que agotar, aunque pase el tiempo.
func TestOperatorGate_SinPendingSince_NoHayTimeout(t *testing.T) {
	g := session.NewOperatorGate(operatorWait, session.WithGateNow(func() time.Time {
		return time.Now().Add(time.Hour)
	}))
	snap := snapFor("u1", false, nil)

	d := g.Evaluate(snap)

	assert.Equal(t, session.ViewVerifying, d.View)
}

// Caso 9: la puerta de tenant no tiene ventana de espera: puede aguardar
// el aprovisionamiento indefinidamente sin degradar a timeout.
func TestTenantGate_SinLimiteDeEspera(t *testing.T) {
	g := session.NewTenantGate(session.WithGateNow(func() time.Time {
		return time.Now().Add(time.Hour)
	}))
	snap := snapFor("u1", false, nil)
	snap.PendingSince = time.Now().Add(-time.Hour)
	snap.ProfileCreating = true

	d := g.Evaluate(snap)

	assert.Equal(t, session.ViewProvisioning, d.View)
}
