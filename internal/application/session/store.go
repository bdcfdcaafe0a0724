package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Huella-api/internal/application/ports"
	"github.com/jhoicas/Huella-api/internal/domain/entity"
)

// Snapshot copia de solo lectura del estado del Store en un instante.
// Los consumidores (puertas de ruta, handlers) solo leen; toda mutación pasa
// por los callbacks internos del Store o por SignOut.
type Snapshot struct {
	Session *ports.Session
	User    *ports.User
	Profile *entity.Profile
	// Loading es true desde el arranque hasta que el primer intento de resolución
	// termina (found, not_found explícito o error).
	Loading bool
	// AuthError mensaje del último fallo de la capa de datos; "" si no hay.
	AuthError string
	// ProfileCreating true cuando la resolución devolvió not_found: el trigger de
	// aprovisionamiento aún no corrió.
	ProfileCreating bool
	// PendingSince instante en que arrancó la resolución de rol en curso para la
	// sesión viva; cero cuando el rol ya quedó resuelto (perfil o error).
	PendingSince time.Time
}

// IsAdmin deriva el rol con la regla de doble fuente: role claim OR perfil.
// Se recalcula en cada llamada, nunca se cachea: el claim cubre el lag o la
// caída del store y el perfil cubre claims atrasados.
func (s Snapshot) IsAdmin() bool {
	if s.User != nil && s.User.AdminClaim {
		return true
	}
	return s.Profile != nil && s.Profile.IsAdmin
}

// Store máquina de estados de sesión/autorización. Instancia única por proceso,
// con ciclo de vida explícito (Start/Close) e inyectada a los consumidores; no
// hay variable global. Único dueño del estado sesión/perfil: un solo escritor
// lógico, serializado con mu.
type Store struct {
	identity ports.IdentityClient
	resolver *Resolver
	log      zerolog.Logger
	now      func() time.Time

	mu          sync.Mutex
	session     *ports.Session
	user        *ports.User
	profile     *entity.Profile
	loading     bool
	authError   string
	creating    bool
	pending     time.Time
	closed      bool
	unsubscribe func()

	subs    map[int]func(Snapshot)
	nextSub int

	ready     chan struct{}
	readyOnce sync.Once
}

// StoreOption configuración opcional del Store.
type StoreOption func(*Store)

// WithNow inyecta la función de reloj (para tests).
func WithNow(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore construye el store sin suscribirse aún al proveedor de identidad.
func NewStore(identity ports.IdentityClient, resolver *Resolver, log zerolog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		identity: identity,
		resolver: resolver,
		log:      log,
		now:      time.Now,
		loading:  true,
		subs:     make(map[int]func(Snapshot)),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start lee la sesión actual una única vez y se suscribe a los cambios del
// proveedor. Exactamente una suscripción queda activa durante la vida del Store.
func (s *Store) Start(ctx context.Context) error {
	sess, err := s.identity.CurrentSession(ctx)
	if err != nil {
		// Sin sesión inicial no hay nada que resolver; el error se registra y el
		// flujo sigue con el estado "no autenticado".
		s.log.Warn().Err(err).Msg("no se pudo leer la sesión inicial del proveedor")
		sess = nil
	}
	s.handleChange(sess)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	unsub := s.identity.Subscribe(s.handleChange)
	s.mu.Lock()
	s.unsubscribe = unsub
	s.mu.Unlock()
	return nil
}

// WaitReady bloquea hasta que el primer intento de resolución termine (o hasta
// que se determine que no hay sesión). El bootstrap lo usa para diferir el
// arranque del servidor hasta que el runtime esté listo.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot devuelve una copia del estado actual.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Session:         s.session,
		User:            s.user,
		Profile:         s.profile,
		Loading:         s.loading,
		AuthError:       s.authError,
		ProfileCreating: s.creating,
		PendingSince:    s.pending,
	}
}

// Subscribe registra un consumidor que recibe cada snapshot nuevo.
// Devuelve la función para desuscribirse.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SignOut invalida la sesión con el proveedor y limpia perfil, error y flag de
// aprovisionamiento. El propio evento de cambio del adaptador limpiará
// session/user cuando llegue.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.identity.SignOut(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return err
	}
	s.profile = nil
	s.authError = ""
	s.creating = false
	s.pending = time.Time{}
	s.mu.Unlock()

	s.notify()
	return err
}

// Close desuscribe del proveedor y detiene toda mutación posterior. Las
// resoluciones en vuelo pueden terminar pero sus resultados se descartan.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// handleChange callback del adaptador de identidad: login, logout o refresh.
func (s *Store) handleChange(sess *ports.Session) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if sess == nil {
		s.session = nil
		s.user = nil
		s.profile = nil
		s.authError = ""
		s.creating = false
		s.pending = time.Time{}
		s.loading = false
		s.mu.Unlock()

		s.signalReady()
		s.notify()
		return
	}

	user := sess.User
	s.session = sess
	if s.user == nil || s.user.ID != user.ID {
		// El perfil del usuario anterior no debe ser visible para el nuevo ni un instante.
		s.profile = nil
	}
	s.user = &user
	s.authError = ""
	s.creating = false
	s.pending = s.now()
	s.mu.Unlock()

	s.log.Debug().Str("user_id", user.ID).Msg("evento de sesión: resolviendo perfil")
	s.notify()

	go s.resolve(user)
}

// resolve ejecuta la resolución de perfil para user y aplica el resultado.
// La reconciliación en segundo plano del resolver entra por la misma vía, pero
// nunca antes de que el resultado primario se haya aplicado: sin ese orden una
// reconciliación rápida podría quedar pisada por el perfil sintético.
func (s *Store) resolve(user ports.User) {
	applied := make(chan struct{})
	res := s.resolver.Resolve(context.Background(), user, func(r Resolution) {
		<-applied
		s.apply(user.ID, r)
	})
	s.apply(user.ID, res)
	close(applied)
}

// apply aplica una resolución solo si sigue correspondiendo al usuario actual
// del store (last-write-wins por identificador, no por orden de finalización)
// y si el store no fue cerrado.
func (s *Store) apply(userID string, res Resolution) {
	s.mu.Lock()
	if s.closed || s.user == nil || s.user.ID != userID {
		s.mu.Unlock()
		s.log.Debug().Str("user_id", userID).Msg("resolución obsoleta descartada")
		return
	}

	switch res.Status {
	case StatusFound:
		s.profile = res.Profile
		s.authError = ""
		s.creating = false
		s.pending = time.Time{}
	case StatusNotFound:
		// Lag de aprovisionamiento: no es un error. El rol sigue sin resolver,
		// por eso pending se conserva (la puerta de operador acota la espera).
		s.profile = nil
		s.creating = true
	case StatusError:
		s.authError = res.Message
		s.pending = time.Time{}
	}
	s.loading = false
	s.mu.Unlock()

	s.signalReady()
	s.notify()
}

func (s *Store) signalReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Store) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
