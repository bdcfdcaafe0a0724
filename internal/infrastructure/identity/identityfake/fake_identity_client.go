package identityfake

import (
	"context"
	"sync"

	"github.com/jhoicas/Huella-api/internal/application/ports"
)

var _ ports.IdentityClient = (*FakeIdentityClient)(nil)

// FakeIdentityClient implementación en memoria del puerto IdentityClient para
// tests. Emit simula los eventos del proveedor (login, logout, refresh).
type FakeIdentityClient struct {
	mu      sync.Mutex
	session *ports.Session
	subs    map[int]func(*ports.Session)
	nextSub int

	// SignOutErr si no es nil, SignOut lo devuelve (sin limpiar la sesión remota).
	SignOutErr error
	// SignOutCalls cuenta las invocaciones de SignOut.
	SignOutCalls int
}

// NewFakeIdentityClient construye el fake sin sesión inicial.
func NewFakeIdentityClient() *FakeIdentityClient {
	return &FakeIdentityClient{subs: make(map[int]func(*ports.Session))}
}

// CurrentSession devuelve la sesión simulada actual.
func (f *FakeIdentityClient) CurrentSession(ctx context.Context) (*ports.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

// Subscribe registra el listener y emite inmediatamente el estado actual, igual
// que el adaptador real.
func (f *FakeIdentityClient) Subscribe(onChange func(*ports.Session)) func() {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = onChange
	current := f.session
	f.mu.Unlock()

	onChange(current)

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// SignOut simula el sign-out del proveedor: destruye la sesión y emite nil.
func (f *FakeIdentityClient) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.SignOutCalls++
	err := f.SignOutErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Emit(nil)
	return nil
}

// Emit simula un evento de cambio de sesión del proveedor.
func (f *FakeIdentityClient) Emit(sess *ports.Session) {
	f.mu.Lock()
	f.session = sess
	fns := make([]func(*ports.Session), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}
