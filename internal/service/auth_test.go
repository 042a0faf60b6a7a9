package service_test

import (
	"context"
	"testing"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/storage"
	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuth(backend *mockBackend) (*service.AuthService, *service.SessionStore, *memStorage) {
	st := newMemStorage()
	session := service.NewSessionStore(st, zap.NewNop())
	perms := service.NewPermissionEvaluator(session, "")
	return service.NewAuthService(backend, session, perms, nil, zap.NewNop()), session, st
}

func TestAuth_SignIn(t *testing.T) {
	backend := &mockBackend{signIn: &domain.SignInResponse{
		Success: true,
		Token:   "tok",
		Data: &domain.User{ID: "7", Username: "asha", Permissions: domain.Permissions{
			domain.ScreenShopboardRequest: {domain.PermRead},
			domain.ScreenReports:          {},
		}},
	}}
	auth, session, st := newAuth(backend)
	changes := 0
	auth.OnSessionChange(func() { changes++ })

	view, err := auth.SignIn(context.Background(), &domain.SignInRequest{UsernameOrEmail: " asha ", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, view.Authenticated)
	assert.Equal(t, "/shopboard-requests", view.RedirectRoute)
	assert.Equal(t, "tok", session.Token())
	assert.True(t, st.has(storage.KeyUserData))
	assert.Equal(t, 1, changes)

	nav := auth.Navigation()
	require.Len(t, nav, 2)
	assert.Equal(t, domain.ScreenShopboardRequest, nav[0].Key)
}

func TestAuth_SignInValidatesLocally(t *testing.T) {
	backend := &mockBackend{}
	auth, _, _ := newAuth(backend)

	_, err := auth.SignIn(context.Background(), &domain.SignInRequest{UsernameOrEmail: "  ", Password: "pw"})
	var verr *domain.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "usernameOrEmail", verr.Field)

	_, err = auth.SignIn(context.Background(), &domain.SignInRequest{UsernameOrEmail: "asha"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
	assert.Zero(t, backend.signIns)
}

func TestAuth_SignInRefused(t *testing.T) {
	backend := &mockBackend{signIn: &domain.SignInResponse{Success: false, Message: "Wrong password"}}
	auth, session, _ := newAuth(backend)

	_, err := auth.SignIn(context.Background(), &domain.SignInRequest{UsernameOrEmail: "asha", Password: "x"})
	var unauth *domain.ErrUnauthorized
	require.ErrorAs(t, err, &unauth)
	assert.Equal(t, "Wrong password", unauth.Message)
	assert.False(t, session.IsAuthenticated())
}

func TestAuth_SignInIncompleteResponse(t *testing.T) {
	backend := &mockBackend{signIn: &domain.SignInResponse{Success: true, Token: "tok"}}
	auth, session, _ := newAuth(backend)

	_, err := auth.SignIn(context.Background(), &domain.SignInRequest{UsernameOrEmail: "asha", Password: "x"})
	var unauth *domain.ErrUnauthorized
	require.ErrorAs(t, err, &unauth)
	assert.False(t, session.IsAuthenticated())
}

func TestAuth_SignInTransportError(t *testing.T) {
	backend := &mockBackend{signInErr: &domain.ErrExternalService{Service: "shopboard-api", Err: errBackendDown}}
	auth, _, _ := newAuth(backend)

	_, err := auth.SignIn(context.Background(), &domain.SignInRequest{UsernameOrEmail: "asha", Password: "x"})
	var ext *domain.ErrExternalService
	require.ErrorAs(t, err, &ext)
}

func TestAuth_SignOutAndCurrent(t *testing.T) {
	auth, session, st := newAuth(&mockBackend{})
	require.NoError(t, session.Login(context.Background(), "tok", areaHead()))
	changes := 0
	auth.OnSessionChange(func() { changes++ })

	assert.True(t, auth.Current().Authenticated)
	require.NoError(t, auth.SignOut(context.Background()))

	cur := auth.Current()
	assert.False(t, cur.Authenticated)
	assert.Nil(t, cur.User)
	assert.False(t, st.has(storage.KeyAuthToken))
	assert.Equal(t, 1, changes)
	assert.Empty(t, auth.Navigation())
}

func TestAuth_RestoreAndCheckUpstream(t *testing.T) {
	backend := &mockBackend{valid: true}
	auth, session, st := newAuth(backend)

	ok, err := auth.CheckUpstream(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	persist(t, st, "tok", areaHead())
	require.NoError(t, auth.Restore(context.Background()))
	assert.True(t, session.IsAuthenticated())

	ok, err = auth.CheckUpstream(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
