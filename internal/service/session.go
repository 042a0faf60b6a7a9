package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/storage"
	"github.com/boddenberg/shopboard-dashboard-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

// SessionStore is the single shared session of the dashboard process. It is
// read on every backend call and written only by Login, Logout and Restore.
// Every write runs the registered change hooks, whoever triggered it.
type SessionStore struct {
	mu    sync.RWMutex
	token string
	user  *domain.User

	hooksMu  sync.Mutex
	onChange []func()

	storage port.SessionStorage
	logger  *zap.Logger
	now     func() time.Time
}

// NewSessionStore creates an empty session over durable storage.
func NewSessionStore(st port.SessionStorage, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{storage: st, logger: logger, now: time.Now}
}

// OnChange registers fn to run after every sign-in, sign-out, forced logout
// and restore. Hooks run outside the session lock.
func (s *SessionStore) OnChange(fn func()) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *SessionStore) changed() {
	s.hooksMu.Lock()
	hooks := append([]func(){}, s.onChange...)
	s.hooksMu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// IsAuthenticated is true iff a token is held.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the bearer token, or "".
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *SessionStore) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// Login persists token and user, then makes them the live session. If
// persisting fails nothing is kept, in memory or on disk.
func (s *SessionStore) Login(ctx context.Context, token string, user *domain.User) error {
	ctx, span := tracer.Start(ctx, "SessionStore.Login")
	defer span.End()

	if token == "" {
		return requiredField("token")
	}
	if user == nil {
		return requiredField("userData")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user data: %w", err)
	}

	s.mu.Lock()
	if err := s.persist(ctx, token, string(data)); err != nil {
		if delErr := s.storage.Delete(ctx, storage.KeyAuthToken, storage.KeyUserData); delErr != nil {
			s.logger.Error("session: cleanup after failed login", zap.Error(delErr))
		}
		s.mu.Unlock()
		return err
	}
	s.token = token
	s.user = user.Clone()
	s.mu.Unlock()
	s.changed()

	s.logger.Info("session: signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.RoleName()),
	)
	return nil
}

func (s *SessionStore) persist(ctx context.Context, token, userData string) error {
	if s.storage == nil {
		return nil
	}
	if err := s.storage.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return fmt.Errorf("persist auth token: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyUserData, userData); err != nil {
		return fmt.Errorf("persist user data: %w", err)
	}
	return nil
}

// Logout clears memory first, then durable storage. Memory is cleared even
// when storage fails.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	err := s.clearLocked(ctx)
	s.mu.Unlock()
	s.changed()
	return err
}

func (s *SessionStore) clearLocked(ctx context.Context) error {
	wasAuthenticated := s.token != ""
	s.token = ""
	s.user = nil
	if wasAuthenticated {
		s.logger.Info("session: signed out")
	}
	if s.storage == nil {
		return nil
	}
	if err := s.storage.Delete(ctx, storage.KeyAuthToken, storage.KeyUserData); err != nil {
		return fmt.Errorf("clear session storage: %w", err)
	}
	return nil
}

// logoutIf clears the session only if it still holds token, so a failed
// revalidation never signs out a session that was replaced meanwhile.
func (s *SessionStore) logoutIf(ctx context.Context, token, reason string) error {
	s.mu.Lock()
	if s.token != "" && s.token != token {
		s.mu.Unlock()
		return nil
	}
	s.logger.Warn("session: discarding stored session", zap.String("reason", reason))
	err := s.clearLocked(ctx)
	s.mu.Unlock()
	s.changed()
	return err
}

// Restore loads a persisted session at startup. The session is populated
// optimistically and then revalidated with validator:
//   - no token: nothing to restore
//   - token without readable user data, or an expired JWT: logout
//   - validator says invalid, or the backend rejects the token: logout
//   - validator unreachable: the session is kept and the error returned
func (s *SessionStore) Restore(ctx context.Context, validator port.TokenValidator) error {
	ctx, span := tracer.Start(ctx, "SessionStore.Restore")
	defer span.End()

	if s.storage == nil {
		return nil
	}
	token, ok, err := s.storage.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("read stored token: %w", err)
	}
	if !ok || token == "" {
		// Stray user data without a token is meaningless.
		if err := s.storage.Delete(ctx, storage.KeyUserData); err != nil {
			s.logger.Warn("session: clearing stray user data", zap.Error(err))
		}
		return nil
	}

	raw, ok, err := s.storage.Get(ctx, storage.KeyUserData)
	if err != nil {
		return fmt.Errorf("read stored user: %w", err)
	}
	if !ok {
		return s.logoutIf(ctx, token, "user data missing")
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return s.logoutIf(ctx, token, "user data unreadable")
	}

	if expired(token, s.now()) {
		return s.logoutIf(ctx, token, "token expired")
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	s.changed()

	if validator == nil {
		return nil
	}
	valid, err := validator.ValidateToken(ctx, token)
	if err != nil {
		var authErr *domain.ErrAuthenticationRequired
		if errors.As(err, &authErr) {
			return s.logoutIf(ctx, token, "token rejected")
		}
		s.logger.Warn("session: could not revalidate stored token, keeping session", zap.Error(err))
		return fmt.Errorf("revalidate session: %w", err)
	}
	if !valid {
		return s.logoutIf(ctx, token, "token invalid")
	}
	s.logger.Info("session: restored", zap.String("user_id", user.ID.String()))
	return nil
}

// expired reads the exp claim without verifying the signature; the backend
// remains the authority. Opaque tokens are never considered expired here.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
