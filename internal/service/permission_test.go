package service_test

import (
	"testing"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluatorFor(perms domain.Permissions) *service.PermissionEvaluator {
	return service.NewPermissionEvaluator(staticUsers{u: &domain.User{ID: "1", Permissions: perms, Role: &domain.RoleRef{Name: "Area Head"}}}, "")
}

func TestHasPermission_Superuser(t *testing.T) {
	p := evaluatorFor(domain.Permissions{domain.ScreenAll: {domain.PermManage}})
	screens := []domain.Screen{domain.ScreenDashboard, domain.ScreenRole, domain.ScreenMarketingRequest, "anything"}
	tags := []domain.PermissionTag{domain.PermRead, domain.PermDelete, domain.PermManualApproval}
	for _, s := range screens {
		for _, tag := range tags {
			assert.True(t, p.HasPermission(s, tag), "%s/%s", s, tag)
		}
	}
}

func TestHasPermission_ReadOnly(t *testing.T) {
	p := evaluatorFor(domain.Permissions{domain.ScreenShopboardRequest: {domain.PermRead}})
	assert.True(t, p.HasPermission(domain.ScreenShopboardRequest, domain.PermRead))
	assert.False(t, p.HasPermission(domain.ScreenShopboardRequest, domain.PermUpdate))
	assert.False(t, p.HasPermission(domain.ScreenVendorRequest, domain.PermRead))
	assert.True(t, p.HasAnyPermission(domain.ScreenShopboardRequest, domain.PermUpdate, domain.PermRead))
	assert.False(t, p.HasAnyPermission(domain.ScreenShopboardRequest))
}

func TestHasPermission_WildcardWithoutManage(t *testing.T) {
	p := evaluatorFor(domain.Permissions{domain.ScreenAll: {domain.PermRead}})
	assert.False(t, p.HasPermission(domain.ScreenDashboard, domain.PermRead))
}

func TestHasPermission_NoUser(t *testing.T) {
	p := service.NewPermissionEvaluator(staticUsers{}, "")
	assert.False(t, p.HasPermission(domain.ScreenDashboard, domain.PermRead))
	assert.False(t, p.HasRole("Area Head"))
	assert.Empty(t, p.AvailableNavigationItems(nil))
	assert.Equal(t, service.DefaultRoute, p.RedirectRoute(nil))
}

func TestHasRole_CaseSensitive(t *testing.T) {
	p := evaluatorFor(nil)
	assert.True(t, p.HasRole("Area Head"))
	assert.False(t, p.HasRole("area head"))
}

func TestAvailableNavigationItems_PresenceOnly(t *testing.T) {
	p := evaluatorFor(domain.Permissions{
		domain.ScreenUser:      {domain.PermRead},
		domain.ScreenDashboard: {},
	})
	items := p.AvailableNavigationItems(nil)
	require.Len(t, items, 2)
	assert.Equal(t, domain.ScreenDashboard, items[0].Key)
	assert.Equal(t, domain.ScreenUser, items[1].Key)
}

func TestAvailableNavigationItems_Override(t *testing.T) {
	p := evaluatorFor(domain.Permissions{domain.ScreenUser: {}})
	other := &domain.User{Permissions: domain.Permissions{domain.ScreenReports: {}}}
	items := p.AvailableNavigationItems(other)
	require.Len(t, items, 1)
	assert.Equal(t, domain.ScreenReports, items[0].Key)
}

func TestRedirectRoute(t *testing.T) {
	reports := evaluatorFor(domain.Permissions{domain.ScreenReports: {domain.PermRead}})
	assert.Equal(t, "/reports", reports.RedirectRoute(nil))

	none := evaluatorFor(domain.Permissions{})
	assert.Equal(t, "/dashboard", none.RedirectRoute(nil))

	custom := service.NewPermissionEvaluator(staticUsers{u: &domain.User{}}, "/welcome")
	assert.Equal(t, "/welcome", custom.RedirectRoute(nil))
}

func TestRedirectRoute_Deterministic(t *testing.T) {
	perms := domain.Permissions{
		domain.ScreenReports:          {},
		domain.ScreenMarketingRequest: {},
		domain.ScreenTabs:             {},
	}
	p := evaluatorFor(perms)
	for i := 0; i < 20; i++ {
		assert.Equal(t, "/tabs", p.RedirectRoute(nil))
	}
}

func TestNavigationConfig_IsCopy(t *testing.T) {
	cfg := service.NavigationConfig()
	cfg[0].Path = "/hacked"
	assert.Equal(t, "/dashboard", service.NavigationConfig()[0].Path)
}
