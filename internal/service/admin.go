package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/port"

	"go.uber.org/zap"
)

// AdminService is the roles, users and tabs screens. Every operation checks
// the screen permission, then validates the form, then calls the backend.
type AdminService struct {
	backend   port.AdminBackend
	perms     *PermissionEvaluator
	validator *Validator
	logger    *zap.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(backend port.AdminBackend, perms *PermissionEvaluator, v *Validator, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if v == nil {
		v = NewValidator()
	}
	return &AdminService{backend: backend, perms: perms, validator: v, logger: logger}
}

func (s *AdminService) require(screen domain.Screen, tag domain.PermissionTag) error {
	if !s.perms.HasPermission(screen, tag) {
		return &domain.ErrForbidden{Action: fmt.Sprintf("%s on %s", tag, screen)}
	}
	return nil
}

// ============================================================
// Roles
// ============================================================

func (s *AdminService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	if err := s.require(domain.ScreenRole, domain.PermRead); err != nil {
		return nil, err
	}
	return s.backend.ListRoles(ctx)
}

func (s *AdminService) GetRole(ctx context.Context, id domain.ID) (*domain.Role, error) {
	if err := s.require(domain.ScreenRole, domain.PermRead); err != nil {
		return nil, err
	}
	return s.backend.GetRole(ctx, id)
}

func (s *AdminService) CreateRole(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	if err := s.require(domain.ScreenRole, domain.PermCreate); err != nil {
		return nil, err
	}
	if err := s.validateRole(role); err != nil {
		return nil, err
	}
	out, err := s.backend.CreateRole(ctx, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("role created", zap.String("name", role.Name))
	return out, nil
}

func (s *AdminService) UpdateRole(ctx context.Context, id domain.ID, role *domain.Role) (*domain.Role, error) {
	if err := s.require(domain.ScreenRole, domain.PermUpdate); err != nil {
		return nil, err
	}
	if err := s.validateRole(role); err != nil {
		return nil, err
	}
	return s.backend.UpdateRole(ctx, id, role)
}

func (s *AdminService) DeleteRole(ctx context.Context, id domain.ID) error {
	if err := s.require(domain.ScreenRole, domain.PermDelete); err != nil {
		return err
	}
	return s.backend.DeleteRole(ctx, id)
}

func (s *AdminService) validateRole(role *domain.Role) error {
	if role == nil {
		return requiredField("name")
	}
	role.Name = strings.TrimSpace(role.Name)
	return s.validator.Struct(role)
}

// ============================================================
// Users
// ============================================================

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.AdminUser, error) {
	if err := s.require(domain.ScreenUser, domain.PermRead); err != nil {
		return nil, err
	}
	return s.backend.ListUsers(ctx)
}

func (s *AdminService) GetUser(ctx context.Context, id domain.ID) (*domain.AdminUser, error) {
	if err := s.require(domain.ScreenUser, domain.PermRead); err != nil {
		return nil, err
	}
	return s.backend.GetUser(ctx, id)
}

// CreateUser requires a password and its confirmation.
func (s *AdminService) CreateUser(ctx context.Context, in *domain.UserInput) (*domain.AdminUser, error) {
	if err := s.require(domain.ScreenUser, domain.PermCreate); err != nil {
		return nil, err
	}
	if err := s.validateUser(in, true); err != nil {
		return nil, err
	}
	out, err := s.backend.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("username", in.Username))
	return out, nil
}

// UpdateUser keeps the current password when both password fields are empty.
func (s *AdminService) UpdateUser(ctx context.Context, id domain.ID, in *domain.UserInput) (*domain.AdminUser, error) {
	if err := s.require(domain.ScreenUser, domain.PermUpdate); err != nil {
		return nil, err
	}
	if err := s.validateUser(in, false); err != nil {
		return nil, err
	}
	return s.backend.UpdateUser(ctx, id, in)
}

func (s *AdminService) DeleteUser(ctx context.Context, id domain.ID) error {
	if err := s.require(domain.ScreenUser, domain.PermDelete); err != nil {
		return err
	}
	return s.backend.DeleteUser(ctx, id)
}

func (s *AdminService) validateUser(in *domain.UserInput, passwordRequired bool) error {
	if in == nil {
		return requiredField("username")
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Struct(in); err != nil {
		return err
	}
	if passwordRequired && in.Password == "" {
		return requiredField("password")
	}
	if in.Password != in.ConfirmPassword {
		return &domain.ErrValidation{
			Field:   "confirmPassword",
			Message: "does not match",
			Fields:  map[string]string{"confirmPassword": "does not match"},
		}
	}
	return nil
}

// ============================================================
// Tabs
// ============================================================

func (s *AdminService) ListTabs(ctx context.Context) ([]domain.Feature, error) {
	if err := s.require(domain.ScreenTabs, domain.PermRead); err != nil {
		return nil, err
	}
	return s.backend.ListTabs(ctx)
}

func (s *AdminService) CreateTab(ctx context.Context, tab *domain.Feature) (*domain.Feature, error) {
	if err := s.require(domain.ScreenTabs, domain.PermCreate); err != nil {
		return nil, err
	}
	if err := s.validateTab(tab); err != nil {
		return nil, err
	}
	return s.backend.CreateTab(ctx, tab)
}

func (s *AdminService) UpdateTab(ctx context.Context, id domain.ID, tab *domain.Feature) (*domain.Feature, error) {
	if err := s.require(domain.ScreenTabs, domain.PermUpdate); err != nil {
		return nil, err
	}
	if err := s.validateTab(tab); err != nil {
		return nil, err
	}
	return s.backend.UpdateTab(ctx, id, tab)
}

func (s *AdminService) DeleteTab(ctx context.Context, id domain.ID) error {
	if err := s.require(domain.ScreenTabs, domain.PermDelete); err != nil {
		return err
	}
	return s.backend.DeleteTab(ctx, id)
}

func (s *AdminService) validateTab(tab *domain.Feature) error {
	if tab == nil {
		return requiredField("name")
	}
	tab.Name = strings.TrimSpace(tab.Name)
	return s.validator.Struct(tab)
}
