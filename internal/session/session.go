package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pizzahouse/storefront/internal/api"
	"github.com/pizzahouse/storefront/internal/localstore"
	"github.com/pizzahouse/storefront/internal/models"
)

var ErrValidation = errors.New("validation")

// TokenKey is the well-known key the bearer token is persisted under.
const TokenKey = "token"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthAPI is the slice of the HTTP boundary the session consumes.
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
}

// Manager tracks the current identity. It is the api.Client's TokenSource
// and the target of its auth-expired hook. A sign-in hook lets the cart run
// its one-shot merge at the anonymous→authenticated transition.
type Manager struct {
	mu    sync.Mutex
	api   AuthAPI
	store *localstore.Store
	log   *slog.Logger

	token string
	user  *models.User

	onSignIn  func(ctx context.Context) error
	onSignOut func()
}

func NewManager(a AuthAPI, store *localstore.Store, log *slog.Logger) *Manager {
	m := &Manager{api: a, store: store, log: log}
	var token string
	if err := store.Get(TokenKey, &token); err == nil {
		m.token = token
	}
	return m
}

// SetAPI completes the session↔client cycle: the session is the client's
// token source, so the client cannot exist before the session does.
func (m *Manager) SetAPI(a AuthAPI) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.api = a
}

// SetSignInHook registers the callback run after a successful login or
// registration. A hook error does not undo the sign-in; it is reported back
// so the caller can warn that cart sync is unconfirmed.
func (m *Manager) SetSignInHook(fn func(ctx context.Context) error) {
	m.onSignIn = fn
}

func (m *Manager) SetSignOutHook(fn func()) {
	m.onSignOut = fn
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Role prefers the identity the server returned and falls back to the role
// claim inside the token. The claim is read without signature verification;
// the server remains the authority, this only gates which screens to offer.
func (m *Manager) Role() models.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user != nil {
		return m.user.Role
	}
	if m.token == "" {
		return ""
	}
	var claims struct {
		Role string `json:"role"`
		jwt.RegisteredClaims
	}
	if _, _, err := jwt.NewParser().ParseUnverified(m.token, &claims); err != nil {
		return ""
	}
	return models.Role(claims.Role)
}

// Login validates locally, authenticates, persists the token and fires the
// sign-in hook. A failed login never mutates the persisted token.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	resp, err := m.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return m.establish(ctx, resp)
}

// Register validates the way the signup form does (required fields, minimum
// password length, email shape) before anything touches the wire.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) (*models.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	resp, err := m.api.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return m.establish(ctx, resp)
}

func validateRegistration(req api.RegisterRequest) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", req.Name},
		{"email", req.Email},
		{"password", req.Password},
		{"phone", req.Phone},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields %v: %w", missing, ErrValidation)
	}
	if len(req.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters: %w", ErrValidation)
	}
	if !emailPattern.MatchString(req.Email) {
		return fmt.Errorf("invalid email format: %w", ErrValidation)
	}
	return nil
}

func (m *Manager) establish(ctx context.Context, resp *api.AuthResponse) (*models.User, error) {
	m.mu.Lock()
	m.token = resp.Token
	m.user = &resp.User
	if err := m.store.Put(TokenKey, resp.Token); err != nil {
		m.log.Warn("could not persist token", "error", err)
	}
	hook := m.onSignIn
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			m.log.Warn("sign-in hook failed", "error", err)
			return &resp.User, fmt.Errorf("signed in, cart sync unconfirmed: %w", err)
		}
	}
	return &resp.User, nil
}

// Restore revalidates a persisted token against the server at startup. An
// invalid token is discarded; the anonymous cart is untouched.
func (m *Manager) Restore(ctx context.Context) (*models.User, error) {
	if m.Token() == "" {
		return nil, nil
	}
	user, err := m.api.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			m.teardown()
			return nil, nil
		}
		return nil, fmt.Errorf("restore session: %w", err)
	}
	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	return user, nil
}

// Logout clears the session. The anonymous cart stays; the remote cart is
// abandoned client-side and remains on the server.
func (m *Manager) Logout() {
	m.teardown()
}

// HandleAuthExpired is the HTTP boundary's 401 hook. Idempotent: a flood of
// 401s tears the session down once and the rest are no-ops, so there is no
// teardown loop.
func (m *Manager) HandleAuthExpired() {
	m.mu.Lock()
	alreadyOut := m.token == "" && m.user == nil
	m.mu.Unlock()
	if alreadyOut {
		return
	}
	m.log.Info("session expired, signing out")
	m.teardown()
}

func (m *Manager) teardown() {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	if err := m.store.Delete(TokenKey); err != nil {
		m.log.Warn("could not delete persisted token", "error", err)
	}
	hook := m.onSignOut
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
}
