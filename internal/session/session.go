// Package session управляет жизненным циклом клиентской сессии:
// создание при входе, чтение каждым авторизованным запросом, уничтожение при выходе.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/DevN0mad/Workasana/internal/services"
	"github.com/DevN0mad/Workasana/internal/storage"
)

// TokenKey фиксированный ключ, под которым хранится токен.
const TokenKey = "token"

// ErrNotLoggedIn возвращается защищёнными экранами без сессии.
var ErrNotLoggedIn = errors.New(`not logged in; run "workasana login"`)

// Store хранилище клиентского состояния.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Authenticator обменивает учётные данные на токен.
type Authenticator interface {
	Login(ctx context.Context, creds services.Credentials) (string, error)
	Signup(ctx context.Context, input services.SignupInput) (string, string, error)
}

// Session активная сессия. После выхода Token возвращает пустую строку.
type Session struct {
	mu    sync.RWMutex
	token string
}

// Token возвращает bearer-токен сессии.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Active сообщает, что сессия не уничтожена.
func (s *Session) Active() bool {
	return s.Token() != ""
}

func (s *Session) destroy() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Guard пропускает к защищённым экранам только при наличии сессии.
type Guard struct {
	store  Store
	auth   Authenticator
	logger *slog.Logger

	mu      sync.Mutex
	current *Session
}

// NewGuard создаёт охранника сессии.
func NewGuard(store Store, auth Authenticator, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{store: store, auth: auth, logger: logger}
}

// Current возвращает сессию, если токен сохранён. Токен не проверяется:
// просроченный токен обнаружится только при ответе API.
func (g *Guard) Current(ctx context.Context) (*Session, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current != nil && g.current.Active() {
		return g.current, true, nil
	}

	token, err := g.store.Get(ctx, TokenKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return nil, false, nil
	}

	g.current = &Session{token: token}
	return g.current, true, nil
}

// Require возвращает сессию или ErrNotLoggedIn.
func (g *Guard) Require(ctx context.Context) (*Session, error) {
	sess, ok, err := g.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return sess, nil
}

// Login выполняет вход и сохраняет токен. При отказе ничего не сохраняется.
func (g *Guard) Login(ctx context.Context, creds services.Credentials) (*Session, error) {
	if err := services.ValidateForm(creds); err != nil {
		return nil, err
	}

	token, err := g.auth.Login(ctx, creds)
	if err != nil {
		g.logger.Warn("Login rejected", "email", creds.Email, "error", err)
		return nil, err
	}

	sess, err := g.start(ctx, token)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Logged in", "email", creds.Email)
	return sess, nil
}

// Signup регистрирует пользователя. Если API выдал токен, сессия создаётся сразу.
func (g *Guard) Signup(ctx context.Context, input services.SignupInput) (*Session, string, error) {
	if err := services.ValidateForm(input); err != nil {
		return nil, "", err
	}

	token, msg, err := g.auth.Signup(ctx, input)
	if err != nil {
		g.logger.Warn("Signup rejected", "email", input.Email, "error", err)
		return nil, "", err
	}
	if strings.TrimSpace(token) == "" {
		return nil, msg, nil
	}

	sess, err := g.start(ctx, token)
	if err != nil {
		return nil, "", err
	}
	g.logger.Info("Signed up", "email", input.Email)
	return sess, msg, nil
}

func (g *Guard) start(ctx context.Context, token string) (*Session, error) {
	if err := g.store.Set(ctx, TokenKey, token); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != nil {
		g.current.destroy()
	}
	g.current = &Session{token: token}
	return g.current, nil
}

// Logout удаляет сохранённый токен и уничтожает текущую сессию.
func (g *Guard) Logout(ctx context.Context) error {
	if err := g.store.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != nil {
		g.current.destroy()
		g.current = nil
	}
	g.logger.Info("Logged out")
	return nil
}
