package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Huella-api/internal/application/ports"
	"github.com/jhoicas/Huella-api/pkg/config"
	pkgjwt "github.com/jhoicas/Huella-api/pkg/jwt"
)

// Verificar en tiempo de compilación que Client implementa ambos puertos.
var (
	_ ports.IdentityClient = (*Client)(nil)
	_ ports.Authenticator  = (*Client)(nil)
)

// Client adaptador del proveedor de identidad externo (API REST estilo
// GoTrue/Supabase Auth). Usa net/http de la librería estándar; no requiere SDK.
//
// El cliente es el único dueño de la sesión: la crea en sign-in/sign-up, la
// reemplaza en refresh y la destruye en sign-out, emitiendo un evento de cambio
// a los suscriptores en cada transición. No reintenta llamadas fallidas; esa
// política queda en el caller.
type Client struct {
	baseURL    string
	anonKey    string
	jwtSecret  string
	httpClient *http.Client
	log        zerolog.Logger

	mu      sync.Mutex
	session *ports.Session
	subs    map[int]func(*ports.Session)
	nextSub int
}

// NewClient construye el adaptador del proveedor de identidad.
func NewClient(cfg config.IdentityConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   cfg.URL,
		anonKey:   cfg.AnonKey,
		jwtSecret: cfg.JWTSecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second, // el contrato exige no bloquear indefinidamente
		},
		log:  log,
		subs: make(map[int]func(*ports.Session)),
	}
}

// ── Estructuras del protocolo GoTrue ──────────────────────────────────────────

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type gotrueError struct {
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

func (e gotrueError) text() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	}
	return "error del proveedor de identidad"
}

// ── ports.Authenticator ───────────────────────────────────────────────────────

// SignIn autentica con email/password contra el proveedor y deja la sesión activa.
func (c *Client) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password",
		map[string]string{"email": email, "password": password}, "", &resp)
	if err != nil {
		return nil, err
	}
	sess, err := c.sessionFromToken(resp)
	if err != nil {
		return nil, err
	}
	c.setSession(sess)
	return sess, nil
}

// SignUp registra la cuenta en el proveedor. Si el proyecto tiene confirmación
// por email, no hay sesión hasta confirmar: se devuelve (nil, nil).
func (c *Client) SignUp(ctx context.Context, email, password string) (*ports.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/signup",
		map[string]string{"email": email, "password": password}, "", &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, nil
	}
	sess, err := c.sessionFromToken(resp)
	if err != nil {
		return nil, err
	}
	c.setSession(sess)
	return sess, nil
}

// Recover dispara el flujo de recuperación de contraseña del proveedor.
func (c *Client) Recover(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/recover", map[string]string{"email": email}, "", nil)
}

// ── ports.IdentityClient ──────────────────────────────────────────────────────

// CurrentSession devuelve la sesión activa, refrescándola con el proveedor si el
// access token ya expiró. Sin sesión devuelve (nil, nil).
func (c *Client) CurrentSession(ctx context.Context) (*ports.Session, error) {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil {
		return nil, nil
	}
	if time.Now().Before(sess.ExpiresAt) || sess.RefreshToken == "" {
		return sess, nil
	}

	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token",
		map[string]string{"refresh_token": sess.RefreshToken}, "", &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh de sesión: %w", err)
	}
	refreshed, err := c.sessionFromToken(resp)
	if err != nil {
		return nil, err
	}
	c.setSession(refreshed)
	return refreshed, nil
}

// Subscribe registra un listener de cambios de sesión. Emite inmediatamente un
// evento con el estado actual y después uno por cada transición (login, logout,
// refresh). Devuelve la función para desuscribirse.
func (c *Client) Subscribe(onChange func(*ports.Session)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = onChange
	current := c.session
	c.mu.Unlock()

	onChange(current)

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// SignOut invalida la sesión con el proveedor. Idempotente sin sesión activa.
// La sesión local se destruye aunque la llamada remota falle: quedarse con una
// credencial que el usuario pidió invalidar es peor que un logout remoto perdido.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/logout", nil, sess.AccessToken, nil)
	c.setSession(nil)
	if err != nil {
		c.log.Warn().Err(err).Msg("logout remoto falló; sesión local destruida igualmente")
		return err
	}
	return nil
}

// ── Internos ──────────────────────────────────────────────────────────────────

// sessionFromToken arma la sesión a partir de la respuesta de token, validando el
// access token y extrayendo el role claim (app_metadata.is_admin).
func (c *Client) sessionFromToken(resp tokenResponse) (*ports.Session, error) {
	claims, err := pkgjwt.Parse(c.jwtSecret, resp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("access token del proveedor inválido: %w", err)
	}
	userID := resp.User.ID
	if userID == "" {
		userID = claims.Subject
	}
	email := resp.User.Email
	if email == "" {
		email = claims.Email
	}
	return &ports.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		User: ports.User{
			ID:         userID,
			Email:      email,
			AdminClaim: claims.AppMetadata.IsAdmin,
		},
	}, nil
}

// setSession reemplaza la sesión y emite el evento de cambio a los suscriptores.
func (c *Client) setSession(sess *ports.Session) {
	c.mu.Lock()
	c.session = sess
	fns := make([]func(*ports.Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}

// do ejecuta una llamada REST contra el proveedor y decodifica la respuesta en out.
func (c *Client) do(ctx context.Context, method, path string, body any, bearer string, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("identity: IDENTITY_URL no configurado")
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("identity: serializar request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("identity: crear request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("identity: leer respuesta: %w", err)
	}

	if resp.StatusCode >= 400 {
		var ge gotrueError
		if json.Unmarshal(raw, &ge) == nil {
			return fmt.Errorf("identity: HTTP %d: %s", resp.StatusCode, ge.text())
		}
		return fmt.Errorf("identity: HTTP %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("identity: deserializar respuesta: %w", err)
		}
	}
	return nil
}
