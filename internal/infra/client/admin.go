package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
)

const (
	rolesPath = "/api/roles"
	usersPath = "/api/users"
	tabsPath  = "/api/tabs"
)

func itemPath(base string, id domain.ID) string {
	return base + "/" + url.PathEscape(id.String())
}

// userPayload is what the backend receives for a user; the confirmation
// field never leaves the dashboard.
type userPayload struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	RoleID   domain.ID `json:"role_id"`
	Password string    `json:"password,omitempty"`
}

func toUserPayload(in *domain.UserInput) userPayload {
	return userPayload{
		Username: in.Username,
		Email:    in.Email,
		RoleID:   in.RoleID,
		Password: in.Password,
	}
}

// ============================================================
// Roles
// ============================================================

// ListRoles lists all roles.
func (c *Client) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return fetchList[domain.Role](ctx, c, "Client.ListRoles", rolesPath)
}

// GetRole fetches one role.
func (c *Client) GetRole(ctx context.Context, id domain.ID) (*domain.Role, error) {
	return fetchOne[domain.Role](ctx, c, "Client.GetRole", "role", id, itemPath(rolesPath, id))
}

// CreateRole creates a role.
func (c *Client) CreateRole(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	return mutate[domain.Role](ctx, c, "Client.CreateRole", http.MethodPost, rolesPath, role)
}

// UpdateRole replaces a role.
func (c *Client) UpdateRole(ctx context.Context, id domain.ID, role *domain.Role) (*domain.Role, error) {
	return mutate[domain.Role](ctx, c, "Client.UpdateRole", http.MethodPut, itemPath(rolesPath, id), role)
}

// DeleteRole deletes a role.
func (c *Client) DeleteRole(ctx context.Context, id domain.ID) error {
	ctx, span := tracer.Start(ctx, "Client.DeleteRole")
	defer span.End()
	return c.Delete(ctx, itemPath(rolesPath, id), nil)
}

// ============================================================
// Users
// ============================================================

// ListUsers lists all users.
func (c *Client) ListUsers(ctx context.Context) ([]domain.AdminUser, error) {
	return fetchList[domain.AdminUser](ctx, c, "Client.ListUsers", usersPath)
}

// GetUser fetches one user.
func (c *Client) GetUser(ctx context.Context, id domain.ID) (*domain.AdminUser, error) {
	return fetchOne[domain.AdminUser](ctx, c, "Client.GetUser", "user", id, itemPath(usersPath, id))
}

// CreateUser creates a user.
func (c *Client) CreateUser(ctx context.Context, in *domain.UserInput) (*domain.AdminUser, error) {
	return mutate[domain.AdminUser](ctx, c, "Client.CreateUser", http.MethodPost, usersPath, toUserPayload(in))
}

// UpdateUser updates a user. An empty password leaves it unchanged.
func (c *Client) UpdateUser(ctx context.Context, id domain.ID, in *domain.UserInput) (*domain.AdminUser, error) {
	return mutate[domain.AdminUser](ctx, c, "Client.UpdateUser", http.MethodPut, itemPath(usersPath, id), toUserPayload(in))
}

// DeleteUser deletes a user.
func (c *Client) DeleteUser(ctx context.Context, id domain.ID) error {
	ctx, span := tracer.Start(ctx, "Client.DeleteUser")
	defer span.End()
	return c.Delete(ctx, itemPath(usersPath, id), nil)
}

// ============================================================
// Tabs (features)
// ============================================================

// ListTabs lists the tabs permissions can be granted on.
func (c *Client) ListTabs(ctx context.Context) ([]domain.Feature, error) {
	return fetchList[domain.Feature](ctx, c, "Client.ListTabs", tabsPath)
}

// CreateTab creates a tab.
func (c *Client) CreateTab(ctx context.Context, tab *domain.Feature) (*domain.Feature, error) {
	return mutate[domain.Feature](ctx, c, "Client.CreateTab", http.MethodPost, tabsPath, tab)
}

// UpdateTab renames a tab.
func (c *Client) UpdateTab(ctx context.Context, id domain.ID, tab *domain.Feature) (*domain.Feature, error) {
	return mutate[domain.Feature](ctx, c, "Client.UpdateTab", http.MethodPut, itemPath(tabsPath, id), tab)
}

// DeleteTab deletes a tab.
func (c *Client) DeleteTab(ctx context.Context, id domain.ID) error {
	ctx, span := tracer.Start(ctx, "Client.DeleteTab")
	defer span.End()
	return c.Delete(ctx, itemPath(tabsPath, id), nil)
}

func fetchOne[T any](ctx context.Context, c *Client, span, resource string, id domain.ID, endpoint string) (*T, error) {
	ctx, s := tracer.Start(ctx, span)
	defer s.End()

	var out T
	found := false
	if err := c.fetchData(ctx, endpoint, RequestOptions{}, &jsonPresence{target: &out, found: &found}); err != nil {
		return nil, err
	}
	if !found {
		return nil, &domain.ErrNotFound{Resource: resource, ID: id.String()}
	}
	return &out, nil
}

// mutate sends data and returns the echoed entity, or nil if the backend
// answered without one.
func mutate[T any](ctx context.Context, c *Client, span, method, endpoint string, data any) (*T, error) {
	ctx, s := tracer.Start(ctx, span)
	defer s.End()

	var out T
	found := false
	if err := c.fetchData(ctx, endpoint, RequestOptions{Method: method, Data: data}, &jsonPresence{target: &out, found: &found}); err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}
