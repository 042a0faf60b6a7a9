// Package service holds the dashboard logic: the session, the permission
// evaluator, the request workflow and the screens built on them.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AuthService drives sign-in, sign-out and restore on top of the session.
type AuthService struct {
	backend   port.AuthBackend
	session   *SessionStore
	perms     *PermissionEvaluator
	validator *Validator
	logger    *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(backend port.AuthBackend, session *SessionStore, perms *PermissionEvaluator, v *Validator, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if v == nil {
		v = NewValidator()
	}
	return &AuthService{backend: backend, session: session, perms: perms, validator: v, logger: logger}
}

// OnSessionChange registers fn to run on every session change, including a
// logout forced by the API client, e.g. to drop cached screen state that
// belonged to the previous operator.
func (s *AuthService) OnSessionChange(fn func()) {
	s.session.OnChange(fn)
}

// SignIn validates the form locally, then exchanges the credentials for a
// session. A refused sign-in is *domain.ErrUnauthorized carrying the
// backend's message.
func (s *AuthService) SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.SessionView, error) {
	ctx, span := tracer.Start(ctx, "AuthService.SignIn")
	defer span.End()

	if req == nil {
		return nil, requiredField("usernameOrEmail")
	}
	req.UsernameOrEmail = strings.TrimSpace(req.UsernameOrEmail)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	resp, err := s.backend.SignIn(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "invalid credentials"
		}
		s.logger.Info("sign-in refused", zap.String("user", req.UsernameOrEmail), zap.String("message", msg))
		return nil, &domain.ErrUnauthorized{Message: msg}
	}
	if resp.Token == "" || resp.Data == nil {
		s.logger.Warn("sign-in response without token or user data")
		return nil, &domain.ErrUnauthorized{Message: "sign-in response was incomplete"}
	}

	if err := s.session.Login(ctx, resp.Token, resp.Data); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", resp.Data.ID.String()))
	return s.Current(), nil
}

// SignOut ends the session. Durable storage errors are returned after memory
// has been cleared.
func (s *AuthService) SignOut(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "AuthService.SignOut")
	defer span.End()

	return s.session.Logout(ctx)
}

// Current describes the session as the browser sees it.
func (s *AuthService) Current() *domain.SessionView {
	u := s.session.User()
	if !s.session.IsAuthenticated() || u == nil {
		return &domain.SessionView{Authenticated: false, RedirectRoute: "/signin"}
	}
	return &domain.SessionView{
		Authenticated: true,
		User:          u,
		RedirectRoute: s.perms.RedirectRoute(u),
	}
}

// Navigation lists the screens available to the session user.
func (s *AuthService) Navigation() []domain.NavigationItem {
	return s.perms.AvailableNavigationItems(nil)
}

// Restore reloads the persisted session and revalidates it. A backend that
// cannot be reached keeps the session and is logged.
func (s *AuthService) Restore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := s.session.Restore(ctx, s.backend)
	if err != nil {
		return err
	}
	if s.session.IsAuthenticated() {
		s.logger.Info("session restored", zap.String("role", s.session.User().RoleName()))
	}
	return nil
}

// CheckUpstream revalidates the live token, doubling as a reachability check
// for /healthz. Without a session there is nothing to check.
func (s *AuthService) CheckUpstream(ctx context.Context) (bool, error) {
	token := s.session.Token()
	if token == "" {
		return false, nil
	}
	valid, err := s.backend.ValidateToken(ctx, token)
	if err != nil {
		var authErr *domain.ErrAuthenticationRequired
		if errors.As(err, &authErr) {
			return true, nil
		}
		return true, err
	}
	if !valid {
		s.logger.Debug("live token no longer valid")
	}
	return true, nil
}
