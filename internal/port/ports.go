// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
)

// SessionStorage is durable client-side key-value storage.
// Get returns ok=false when the key is absent.
type SessionStorage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// SessionState is the read side of the session plus the forced-logout hook
// used by the API client.
type SessionState interface {
	Token() string
	User() *domain.User
	Logout(ctx context.Context) error
}

// TokenValidator revalidates a stored token against the backend.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (bool, error)
}

// AuthBackend signs a user in.
type AuthBackend interface {
	TokenValidator
	SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.SignInResponse, error)
}

// ShopboardBackend is the request workflow surface of the REST backend.
type ShopboardBackend interface {
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.ShopboardRequest, error)
	GetRequest(ctx context.Context, id domain.ID) (*domain.ShopboardRequest, error)
	PatchRequest(ctx context.Context, id domain.ID, patch *domain.StatusPatch) error
	EditRequest(ctx context.Context, id domain.ID, edit *domain.RequestEdit) error
	ApproveRequest(ctx context.Context, id domain.ID, comment string) error
	RejectApproval(ctx context.Context, id domain.ID, comment string) error
	ManualApprove(ctx context.Context, id domain.ID, approval *domain.ManualApproval) error
	RequestLogs(ctx context.Context, id domain.ID) ([]domain.AuditLogEntry, error)
	ListComments(ctx context.Context, id domain.ID) ([]domain.Comment, error)
	MarketingComments(ctx context.Context, id domain.ID) ([]domain.Comment, error)
	AddComment(ctx context.Context, c *domain.NewComment) error
}

// LookupBackend serves reference data.
type LookupBackend interface {
	Vendors(ctx context.Context) ([]domain.Vendor, error)
	Dealers(ctx context.Context) ([]domain.Dealer, error)
	Regions(ctx context.Context) ([]domain.Region, error)
	RequestTypes(ctx context.Context) ([]domain.RequestType, error)
	WarrantyStatuses(ctx context.Context) ([]domain.WarrantyStatus, error)
	SAPUsers(ctx context.Context) ([]domain.SAPUser, error)
	SAPVendors(ctx context.Context) ([]domain.SAPVendor, error)
}

// AdminBackend is the CRUD surface for roles, users and tabs.
type AdminBackend interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	GetRole(ctx context.Context, id domain.ID) (*domain.Role, error)
	CreateRole(ctx context.Context, role *domain.Role) (*domain.Role, error)
	UpdateRole(ctx context.Context, id domain.ID, role *domain.Role) (*domain.Role, error)
	DeleteRole(ctx context.Context, id domain.ID) error

	ListUsers(ctx context.Context) ([]domain.AdminUser, error)
	GetUser(ctx context.Context, id domain.ID) (*domain.AdminUser, error)
	CreateUser(ctx context.Context, in *domain.UserInput) (*domain.AdminUser, error)
	UpdateUser(ctx context.Context, id domain.ID, in *domain.UserInput) (*domain.AdminUser, error)
	DeleteUser(ctx context.Context, id domain.ID) error

	ListTabs(ctx context.Context) ([]domain.Feature, error)
	CreateTab(ctx context.Context, tab *domain.Feature) (*domain.Feature, error)
	UpdateTab(ctx context.Context, id domain.ID, tab *domain.Feature) (*domain.Feature, error)
	DeleteTab(ctx context.Context, id domain.ID) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
