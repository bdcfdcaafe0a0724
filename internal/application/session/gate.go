package session

import (
	"time"

	"github.com/jhoicas/Huella-api/internal/domain/entity"
)

// Rutas nombradas a las que redirigen las puertas. Las puertas solo conocen
// estos nombres; el layer HTTP decide cómo materializar la redirección.
const (
	RoutePublicHome   = "/"
	RouteLogin        = "/login"
	RouteWaiting      = "/waiting-for-approval"
	RouteTenantHome   = "/dashboard"
	RouteOperatorHome = "/admin"
)

// Vistas interinas y terminales que puede producir una puerta.
const (
	ViewAuthenticating  = "authenticating"
	ViewVerifying       = "verifying-privileges"
	ViewProvisioning    = "provisioning"
	ViewConnectionError = "connection-error"
	ViewAccessRevoked   = "access-revoked"
	ViewTimeout         = "connection-timeout"
)

// DecisionKind tipo de decisión de una puerta.
type DecisionKind int

const (
	// DecisionRender el contenido protegido se muestra.
	DecisionRender DecisionKind = iota
	// DecisionRedirect el cliente va a la ruta nombrada en Path.
	DecisionRedirect
	// DecisionInterim se muestra la vista View (interina o terminal).
	DecisionInterim
)

// Decision resultado de evaluar una puerta sobre un snapshot.
type Decision struct {
	Kind DecisionKind
	Path string // solo con DecisionRedirect
	View string // solo con DecisionInterim
	// OfferSignOut true en vistas terminales (revocado, timeout) donde la única
	// salida razonable es cerrar sesión.
	OfferSignOut bool
}

// Verdict salida del predicado de una puerta.
type Verdict int

const (
	// VerdictAllow el estado autoriza el contenido protegido.
	VerdictAllow Verdict = iota
	// VerdictDeny el estado lo niega de forma resuelta (no ambigua).
	VerdictDeny
	// VerdictUnresolved el rol aún no es decidible; la puerta espera.
	VerdictUnresolved
)

// Gate región protegida genérica: una función pura del snapshot a una decisión,
// parametrizada por predicado, destino de denegación y vista interina. Las dos
// puertas (tenant y operador) comparten esta máquina en lugar de duplicarla.
//
// wait acota la espera en estado no resuelto: superado el límite, la puerta pasa
// a la vista terminal de timeout ofreciendo sign-out (un spinner sin límite se
// trata como defecto). wait cero desactiva el límite.
type Gate struct {
	name      string
	predicate func(Snapshot) Verdict
	deny      func(Snapshot) Decision
	interim   func(Snapshot) Decision
	wait      time.Duration
	now       func() time.Time
}

// GateOption configuración opcional de una puerta.
type GateOption func(*Gate)

// WithGateNow inyecta la función de reloj (para tests del timeout).
func WithGateNow(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// Name identifica la puerta en logs.
func (g *Gate) Name() string { return g.name }

// Evaluate decide render, redirect o vista interina para el snapshot dado.
// Es una función pura del estado (más el reloj para el timeout): evaluarla
// repetidas veces con el mismo estado produce la misma decisión.
func (g *Gate) Evaluate(snap Snapshot) Decision {
	if snap.Loading {
		if g.timedOut(snap) {
			return Decision{Kind: DecisionInterim, View: ViewTimeout, OfferSignOut: true}
		}
		return g.interim(snap)
	}
	switch g.predicate(snap) {
	case VerdictAllow:
		return Decision{Kind: DecisionRender}
	case VerdictDeny:
		return g.deny(snap)
	default:
		if g.timedOut(snap) {
			return Decision{Kind: DecisionInterim, View: ViewTimeout, OfferSignOut: true}
		}
		return g.interim(snap)
	}
}

func (g *Gate) timedOut(snap Snapshot) bool {
	return g.wait > 0 && !snap.PendingSince.IsZero() && g.now().Sub(snap.PendingSince) >= g.wait
}

// NewTenantGate puerta del área de tenant (dashboard).
//
// Orden de evaluación: loading → interina; sin sesión → login; error de datos →
// vista de reconexión; perfil pending → waiting-for-approval; suspended → vista
// de acceso revocado (terminal, sin redirección); operador → área de operador
// (a un tenant que también es operador nunca se le muestra la UI de tenant);
// si no, contenido protegido.
func NewTenantGate(opts ...GateOption) *Gate {
	g := &Gate{
		name: "tenant",
		predicate: func(s Snapshot) Verdict {
			switch {
			case s.Session == nil:
				return VerdictDeny
			case s.AuthError != "":
				return VerdictDeny
			case s.Profile == nil:
				return VerdictUnresolved
			case s.Profile.IsAdmin:
				return VerdictDeny
			case s.Profile.Status == entity.StatusActive:
				return VerdictAllow
			default:
				return VerdictDeny
			}
		},
		deny: func(s Snapshot) Decision {
			switch {
			case s.Session == nil:
				return Decision{Kind: DecisionRedirect, Path: RouteLogin}
			case s.AuthError != "":
				return Decision{Kind: DecisionInterim, View: ViewConnectionError, OfferSignOut: true}
			case s.Profile != nil && s.Profile.Status == entity.StatusPending:
				return Decision{Kind: DecisionRedirect, Path: RouteWaiting}
			case s.Profile != nil && s.Profile.IsAdmin:
				return Decision{Kind: DecisionRedirect, Path: RouteOperatorHome}
			case s.Profile != nil && s.Profile.Status == entity.StatusSuspended:
				return Decision{Kind: DecisionInterim, View: ViewAccessRevoked, OfferSignOut: true}
			default:
				return Decision{Kind: DecisionRedirect, Path: RouteLogin}
			}
		},
		interim: func(s Snapshot) Decision {
			if s.ProfileCreating {
				return Decision{Kind: DecisionInterim, View: ViewProvisioning}
			}
			return Decision{Kind: DecisionInterim, View: ViewAuthenticating}
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewOperatorGate puerta del área de operador.
//
// Sin sesión o con rol resuelto como no-operador redirige al home público en
// silencio: no se revela la existencia del área privilegiada. Con rol aún no
// resuelto (perfil cargando o en aprovisionamiento) la puerta NUNCA renderiza
// el contenido; espera en la vista interina como máximo wait y luego pasa a la
// vista terminal de timeout con opción de sign-out. Conceder acceso de forma
// optimista con el rol sin resolver es un defecto, no una política.
func NewOperatorGate(wait time.Duration, opts ...GateOption) *Gate {
	g := &Gate{
		name: "operator",
		wait: wait,
		predicate: func(s Snapshot) Verdict {
			switch {
			case s.Session == nil:
				return VerdictDeny
			case s.IsAdmin():
				return VerdictAllow
			case s.Profile != nil || s.AuthError != "":
				// Resuelto explícitamente como no-operador (perfil sin is_admin,
				// o fallo de datos sin claim que lo respalde).
				return VerdictDeny
			default:
				return VerdictUnresolved
			}
		},
		deny: func(Snapshot) Decision {
			return Decision{Kind: DecisionRedirect, Path: RoutePublicHome}
		},
		interim: func(Snapshot) Decision {
			return Decision{Kind: DecisionInterim, View: ViewVerifying}
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
