package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/storage"
	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func persist(t *testing.T, st *memStorage, token string, u *domain.User) {
	t.Helper()
	st.values[storage.KeyAuthToken] = token
	if u != nil {
		b, err := json.Marshal(u)
		require.NoError(t, err)
		st.values[storage.KeyUserData] = string(b)
	}
}

func TestSessionStore_LoginLogout(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	s := service.NewSessionStore(st, zap.NewNop())

	assert.False(t, s.IsAuthenticated())
	require.NoError(t, s.Login(ctx, "tok", areaHead()))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, "areahead", s.User().Username)
	assert.True(t, st.has(storage.KeyAuthToken))
	assert.True(t, st.has(storage.KeyUserData))

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.False(t, st.has(storage.KeyAuthToken))
	assert.False(t, st.has(storage.KeyUserData))
}

func TestSessionStore_UserIsCopy(t *testing.T) {
	s := service.NewSessionStore(newMemStorage(), nil)
	require.NoError(t, s.Login(context.Background(), "tok", areaHead()))

	u := s.User()
	u.Permissions[domain.ScreenAll] = []domain.PermissionTag{domain.PermManage}
	assert.False(t, s.User().Permissions.HasKey(domain.ScreenAll))
}

func TestSessionStore_LoginRequiresBoth(t *testing.T) {
	s := service.NewSessionStore(newMemStorage(), nil)
	var verr *domain.ErrValidation

	require.ErrorAs(t, s.Login(context.Background(), "", areaHead()), &verr)
	require.ErrorAs(t, s.Login(context.Background(), "tok", nil), &verr)
	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_LoginPersistFailureKeepsNothing(t *testing.T) {
	st := newMemStorage()
	st.setErr = errors.New("disk full")
	s := service.NewSessionStore(st, nil)

	err := s.Login(context.Background(), "tok", areaHead())
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, st.has(storage.KeyAuthToken))
}

func TestSessionStore_RestoreValid(t *testing.T) {
	st := newMemStorage()
	persist(t, st, signedToken(t, time.Now().Add(time.Hour)), areaHead())
	s := service.NewSessionStore(st, nil)
	v := &mockValidator{valid: true}

	require.NoError(t, s.Restore(context.Background(), v))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, domain.ID("7"), s.User().ID)
	assert.Equal(t, 1, v.calls)
}

func TestSessionStore_RestoreInvalidLogsOut(t *testing.T) {
	st := newMemStorage()
	persist(t, st, "opaque-token", areaHead())
	s := service.NewSessionStore(st, nil)

	require.NoError(t, s.Restore(context.Background(), &mockValidator{valid: false}))
	assert.False(t, s.IsAuthenticated())
	assert.False(t, st.has(storage.KeyAuthToken))
	assert.False(t, st.has(storage.KeyUserData))
}

func TestSessionStore_RestoreRejectedLogsOut(t *testing.T) {
	st := newMemStorage()
	persist(t, st, "opaque-token", areaHead())
	s := service.NewSessionStore(st, nil)

	v := &mockValidator{err: &domain.ErrAuthenticationRequired{Status: 401}}
	require.NoError(t, s.Restore(context.Background(), v))
	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_RestoreExpiredSkipsValidation(t *testing.T) {
	st := newMemStorage()
	persist(t, st, signedToken(t, time.Now().Add(-time.Minute)), areaHead())
	s := service.NewSessionStore(st, nil)
	v := &mockValidator{valid: true}

	require.NoError(t, s.Restore(context.Background(), v))
	assert.False(t, s.IsAuthenticated())
	assert.Zero(t, v.calls)
	assert.False(t, st.has(storage.KeyAuthToken))
}

func TestSessionStore_RestoreMissingUserData(t *testing.T) {
	st := newMemStorage()
	persist(t, st, "tok", nil)
	s := service.NewSessionStore(st, nil)

	require.NoError(t, s.Restore(context.Background(), &mockValidator{valid: true}))
	assert.False(t, s.IsAuthenticated())
	assert.False(t, st.has(storage.KeyAuthToken))
}

func TestSessionStore_RestoreUnreachableKeepsSession(t *testing.T) {
	st := newMemStorage()
	persist(t, st, "tok", areaHead())
	s := service.NewSessionStore(st, nil)

	err := s.Restore(context.Background(), &mockValidator{err: &domain.ErrExternalService{Service: "shopboard-api", Err: errBackendDown}})
	require.Error(t, err)
	assert.True(t, s.IsAuthenticated())
	assert.True(t, st.has(storage.KeyAuthToken))
}

func TestSessionStore_RestoreNothingStored(t *testing.T) {
	st := newMemStorage()
	st.values[storage.KeyUserData] = `{"id":"7"}`
	s := service.NewSessionStore(st, nil)
	v := &mockValidator{valid: true}

	require.NoError(t, s.Restore(context.Background(), v))
	assert.False(t, s.IsAuthenticated())
	assert.Zero(t, v.calls)
	assert.False(t, st.has(storage.KeyUserData))
}

func TestSessionStore_RestoreStorageError(t *testing.T) {
	st := newMemStorage()
	st.getErr = errors.New("locked")
	s := service.NewSessionStore(st, nil)
	require.Error(t, s.Restore(context.Background(), nil))
}

func TestSessionStore_ChangeHooksFireOnEveryPath(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	s := service.NewSessionStore(st, zap.NewNop())
	changes := 0
	s.OnChange(func() { changes++ })

	require.NoError(t, s.Login(ctx, "tok", areaHead()))
	assert.Equal(t, 1, changes)

	// The API client signs out through the store directly on a 401/403.
	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, 2, changes)

	persist(t, st, "tok", areaHead())
	require.NoError(t, s.Restore(ctx, &mockValidator{valid: false}))
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 4, changes, "restore populates, then the invalid token is discarded")
}

func TestAuth_ForcedLogoutRunsSessionHooks(t *testing.T) {
	auth, session, _ := newAuth(&mockBackend{})
	require.NoError(t, session.Login(context.Background(), "tok", areaHead()))
	purged := false
	auth.OnSessionChange(func() { purged = true })

	require.NoError(t, session.Logout(context.Background()))

	assert.True(t, purged)
	assert.False(t, auth.Current().Authenticated)
}
