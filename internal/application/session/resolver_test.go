package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Huella-api/internal/application/ports"
	"github.com/jhoicas/Huella-api/internal/application/session"
	"github.com/jhoicas/Huella-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// fakeProfileRepo — ProfileRepository en memoria para los tests del resolver
// y del store. Permite simular la fila ausente (nil, nil), fallos transitorios
// (failFirst) y consultas lentas por usuario (delays).
// ──────────────────────────────────────────────────────────────────────────────

type fakeProfileRepo struct {
	mu        sync.Mutex
	rows      map[string]*entity.Profile
	err       error
	failFirst int // las primeras N consultas devuelven err; luego se consulta normal
	delays    map[string]time.Duration
	calls     int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		rows:   make(map[string]*entity.Profile),
		delays: make(map[string]time.Duration),
	}
}

func (f *fakeProfileRepo) put(p *entity.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[p.ID] = p
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	f.mu.Lock()
	f.calls++
	failing := f.err != nil && (f.failFirst == 0 || f.calls <= f.failFirst)
	err := f.err
	p := f.rows[id]
	delay := f.delays[id]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failing {
		return nil, err
	}
	return p, nil // (nil, nil) cuando no hay fila
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	f.put(p)
	return nil
}

func (f *fakeProfileRepo) UpdateStatus(ctx context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[id]; ok {
		p.Status = status
	}
	return nil
}

func (f *fakeProfileRepo) UpdateCompanyName(ctx context.Context, id, companyName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[id]; ok {
		p.CompanyName = companyName
	}
	return nil
}

func (f *fakeProfileRepo) ListByCreatedAt(ctx context.Context, limit, offset int) ([]*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Profile, 0, len(f.rows))
	for _, p := range f.rows {
		out = append(out, p)
	}
	return out, nil
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }

// ──────────────────────────────────────────────────────────────────────────────
// Resolver — casos base
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: el perfil existe → StatusFound con el registro tal cual.
func TestResolver_PerfilExistente_Found(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.put(profileFor("u1", entity.StatusActive, false))
	r := session.NewResolver(repo, nil, nopLogger())

	res := r.Resolve(context.Background(), ports.User{ID: "u1"}, nil)

	require.Equal(t, session.StatusFound, res.Status)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "u1", res.Profile.ID)
	assert.Empty(t, res.Message)
}

// Caso 2: sin fila (trigger de aprovisionamiento aún no corrió) → StatusNotFound,
// que NO es un error y no lleva mensaje.
func TestResolver_SinFila_NotFound(t *testing.T) {
	repo := newFakeProfileRepo()
	r := session.NewResolver(repo, nil, nopLogger())

	res := r.Resolve(context.Background(), ports.User{ID: "u1"}, nil)

	assert.Equal(t, session.StatusNotFound, res.Status)
	assert.Nil(t, res.Profile)
	assert.Empty(t, res.Message)
}

// Caso 3: la consulta falla y el usuario no es operador → StatusError con el
// mensaje del fallo. Sin fallback: un tenant no obtiene privilegios por una caída.
func TestResolver_FalloSinClaim_Error(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.err = assert.AnError
	r := session.NewResolver(repo, nil, nopLogger())

	res := r.Resolve(context.Background(), ports.User{ID: "u1"}, nil)

	assert.Equal(t, session.StatusError, res.Status)
	assert.Nil(t, res.Profile)
	assert.NotEmpty(t, res.Message)
}

// Caso 4: identificador vacío → error inmediato sin tocar el repositorio.
func TestResolver_IDVacio_Error(t *testing.T) {
	repo := newFakeProfileRepo()
	r := session.NewResolver(repo, nil, nopLogger())

	res := r.Resolve(context.Background(), ports.User{}, nil)

	assert.Equal(t, session.StatusError, res.Status)
	assert.Zero(t, repo.calls, "no debe consultarse el repositorio con ID vacío")
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolver — fallback de confianza para operadores
// ──────────────────────────────────────────────────────────────────────────────

// Caso 5: la consulta falla pero el role claim respalda al usuario → perfil
// sintético de operador (modo contingencia) en lugar de bloquear la cuenta.
func TestResolver_FalloConClaim_PerfilSintetico(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.err = assert.AnError
	r := session.NewResolver(repo, nil, nopLogger())

	res := r.Resolve(context.Background(), ports.User{ID: "op1", AdminClaim: true}, nil)

	require.Equal(t, session.StatusFound, res.Status)
	require.NotNil(t, res.Profile)
	assert.True(t, res.Profile.IsAdmin)
	assert.Equal(t, entity.StatusActive, res.Profile.Status)
	assert.Equal(t, "MODO CONTINGENCIA", res.Profile.CompanyName)
}

// Caso 6: mismo fallback vía allowlist de configuración, sin claim.
func TestResolver_FalloConAllowlist_PerfilSintetico(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.err = assert.AnError
	r := session.NewResolver(repo, []string{"op-legacy"}, nopLogger())

	res := r.Resolve(context.Background(), ports.User{ID: "op-legacy"}, nil)

	require.Equal(t, session.StatusFound, res.Status)
	assert.True(t, res.Profile.IsAdmin)
}

// Caso 7: tras el fallback, la reconciliación en segundo plano entrega el
// perfil autoritativo por el callback cuando el data store se recupera.
func TestResolver_Fallback_ReconciliaEnSegundoPlano(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.err = assert.AnError
	repo.failFirst = 1 // solo falla la primera consulta
	repo.put(profileFor("op1", entity.StatusActive, true))
	r := session.NewResolver(repo, nil, nopLogger())

	got := make(chan session.Resolution, 1)
	res := r.Resolve(context.Background(), ports.User{ID: "op1", AdminClaim: true}, func(rec session.Resolution) {
		got <- rec
	})

	require.Equal(t, session.StatusFound, res.Status)
	assert.Equal(t, "MODO CONTINGENCIA", res.Profile.CompanyName)

	select {
	case rec := <-got:
		require.Equal(t, session.StatusFound, rec.Status)
		assert.Equal(t, "Empresa Test SAS", rec.Profile.CompanyName,
			"la reconciliación debe reemplazar el perfil sintético por el autoritativo")
	case <-time.After(2 * time.Second):
		t.Fatal("la reconciliación no llegó")
	}
}

// Caso 8: la reconciliación descubre que no hay fila → StatusNotFound por el
// callback (el perfil sintético deja de ser válido).
func TestResolver_Reconciliacion_SinFila(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.err = assert.AnError
	repo.failFirst = 1
	r := session.NewResolver(repo, nil, nopLogger())

	got := make(chan session.Resolution, 1)
	res := r.Resolve(context.Background(), ports.User{ID: "op1", AdminClaim: true}, func(rec session.Resolution) {
		got <- rec
	})
	require.Equal(t, session.StatusFound, res.Status)

	select {
	case rec := <-got:
		assert.Equal(t, session.StatusNotFound, rec.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("la reconciliación no llegó")
	}
}

// Caso 9: si la reconciliación vuelve a fallar, el perfil sintético se mantiene
// (no llega ninguna resolución por el callback).
func TestResolver_ReconciliacionFallida_MantieneSintetico(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.err = assert.AnError // falla siempre
	r := session.NewResolver(repo, nil, nopLogger())

	got := make(chan session.Resolution, 1)
	res := r.Resolve(context.Background(), ports.User{ID: "op1", AdminClaim: true}, func(rec session.Resolution) {
		got <- rec
	})
	require.Equal(t, session.StatusFound, res.Status)

	select {
	case <-got:
		t.Fatal("no debe llegar reconciliación cuando la re-consulta falla")
	case <-time.After(200 * time.Millisecond):
	}
}
