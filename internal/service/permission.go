package service

import (
	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
)

// navigationConfig is the fixed, ordered navigation table. Order decides the
// redirect after sign-in.
var navigationConfig = []domain.NavigationItem{
	{Key: domain.ScreenDashboard, Name: "Dashboard", Path: "/dashboard", Icon: "dashboard", RequiredPermission: domain.PermRead},
	{Key: domain.ScreenUser, Name: "Users", Path: "/users", Icon: "people", RequiredPermission: domain.PermRead},
	{Key: domain.ScreenRole, Name: "Roles", Path: "/roles", Icon: "security", RequiredPermission: domain.PermRead},
	{Key: domain.ScreenTabs, Name: "Tabs", Path: "/tabs", Icon: "tab", RequiredPermission: domain.PermRead},
	{Key: domain.ScreenDealer, Name: "Dealers", Path: "/dealers", Icon: "store", RequiredPermission: domain.PermRead},
	{Key: domain.ScreenShopboardRequest, Name: "Shopboard Requests", Path: "/shopboard-requests", Icon: "assignment", RequiredPermission: domain.PermRead},
	{Key: domain.ScreenVendorRequest, Name: "Vendor Requests", Path: "/vendor-requests", Icon: "local_shipping", RequiredPermission: domain.PermRead},
	{Key: domain.ScreenMarketingRequest, Name: "Marketing Approvals", Path: "/marketing-requests", Icon: "campaign", RequiredPermission: domain.PermRead},
	{Key: domain.ScreenPricing, Name: "Pricing Adjustments", Path: "/pricing-adjustments", Icon: "price_change", RequiredPermission: domain.PermRead},
	{Key: domain.ScreenReports, Name: "Reports", Path: "/reports", Icon: "assessment", RequiredPermission: domain.PermRead},
}

// DefaultRoute is used when no navigation item is available.
const DefaultRoute = "/dashboard"

// NavigationConfig returns a copy of the navigation table.
func NavigationConfig() []domain.NavigationItem {
	out := make([]domain.NavigationItem, len(navigationConfig))
	copy(out, navigationConfig)
	return out
}

// UserSource supplies the current user. *SessionStore implements it.
type UserSource interface {
	User() *domain.User
}

// PermissionEvaluator answers authorization questions about the session user.
// Every method is a pure function of the permission map and the static table.
type PermissionEvaluator struct {
	users        UserSource
	defaultRoute string
}

// NewPermissionEvaluator creates an evaluator bound to users. An empty
// defaultRoute uses DefaultRoute.
func NewPermissionEvaluator(users UserSource, defaultRoute string) *PermissionEvaluator {
	if defaultRoute == "" {
		defaultRoute = DefaultRoute
	}
	return &PermissionEvaluator{users: users, defaultRoute: defaultRoute}
}

func (p *PermissionEvaluator) current(override *domain.User) *domain.User {
	if override != nil {
		return override
	}
	if p.users == nil {
		return nil
	}
	return p.users.User()
}

// HasPermission reports whether the session user holds tag on screen, or is
// a superuser ({"*": ["manage"]}).
func (p *PermissionEvaluator) HasPermission(screen domain.Screen, tag domain.PermissionTag) bool {
	return UserHasPermission(p.current(nil), screen, tag)
}

// HasAnyPermission reports whether at least one of tags is held on screen.
func (p *PermissionEvaluator) HasAnyPermission(screen domain.Screen, tags ...domain.PermissionTag) bool {
	u := p.current(nil)
	for _, t := range tags {
		if UserHasPermission(u, screen, t) {
			return true
		}
	}
	return false
}

// HasRole compares the role name exactly, case included.
func (p *PermissionEvaluator) HasRole(name string) bool {
	u := p.current(nil)
	return u != nil && u.Role != nil && u.Role.Name == name
}

// AvailableNavigationItems lists the screens whose key is present in the
// permission map, in table order. The permissions listed under a key are not
// consulted, and the wildcard key does not reveal any screen.
func (p *PermissionEvaluator) AvailableNavigationItems(override *domain.User) []domain.NavigationItem {
	u := p.current(override)
	items := []domain.NavigationItem{}
	if u == nil {
		return items
	}
	for _, item := range navigationConfig {
		if u.Permissions.HasKey(item.Key) {
			items = append(items, item)
		}
	}
	return items
}

// RedirectRoute is the path of the first available navigation item, or the
// default route.
func (p *PermissionEvaluator) RedirectRoute(override *domain.User) string {
	if items := p.AvailableNavigationItems(override); len(items) > 0 {
		return items[0].Path
	}
	return p.defaultRoute
}

// UserHasPermission is HasPermission for an explicit user. A nil user or a
// nil permission map grants nothing.
func UserHasPermission(u *domain.User, screen domain.Screen, tag domain.PermissionTag) bool {
	if u == nil {
		return false
	}
	return u.Permissions.Grants(screen, tag)
}
