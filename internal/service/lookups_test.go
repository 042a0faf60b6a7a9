package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/cache"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLookups(t *testing.T, backend *mockBackend) (*service.LookupService, *observability.Metrics) {
	t.Helper()
	c := cache.New[any](time.Minute)
	t.Cleanup(c.Stop)
	metrics := observability.NewMetrics()
	return service.NewLookupService(backend, c, metrics, zap.NewNop()), metrics
}

func TestLookups_Cached(t *testing.T) {
	backend := &mockBackend{vendors: puneVendors()}
	s, metrics := newLookups(t, backend)

	for i := 0; i < 3; i++ {
		v, err := s.Vendors(context.Background())
		require.NoError(t, err)
		assert.Len(t, v, 2)
	}
	assert.Equal(t, 1, backend.vendorCalls)
	assert.InDelta(t, 2.0/3.0, metrics.Snapshot().CacheHitRate, 0.001)

	s.Purge()
	_, err := s.Vendors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, backend.vendorCalls)
}

func TestLookups_ErrorNotCached(t *testing.T) {
	backend := &mockBackend{vendorErr: errBackendDown}
	s, _ := newLookups(t, backend)

	_, err := s.Vendors(context.Background())
	require.ErrorIs(t, err, errBackendDown)

	backend.vendorErr = nil
	backend.vendors = puneVendors()
	v, err := s.Vendors(context.Background())
	require.NoError(t, err)
	assert.Len(t, v, 2)
}

func TestLookups_ConcurrentCallers(t *testing.T) {
	backend := &mockBackend{vendors: puneVendors()}
	s, _ := newLookups(t, backend)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Vendors(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, backend.vendorCalls, 8)
	assert.GreaterOrEqual(t, backend.vendorCalls, 1)
}

// blockingVendors holds the vendors fill open until release is closed.
type blockingVendors struct {
	*mockBackend
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (b *blockingVendors) Vendors(ctx context.Context) ([]domain.Vendor, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return b.mockBackend.Vendors(ctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestLookups_SharedFillSurvivesFirstCallerCancel(t *testing.T) {
	backend := &blockingVendors{
		mockBackend: &mockBackend{vendors: puneVendors()},
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	c := cache.New[any](time.Minute)
	t.Cleanup(c.Stop)
	s := service.NewLookupService(backend, c, observability.NewMetrics(), zap.NewNop())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := s.Vendors(ctxA)
		errA <- err
	}()
	<-backend.started

	type result struct {
		vendors []domain.Vendor
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := s.Vendors(context.Background())
		resB <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(backend.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Len(t, b.vendors, 2)
}

func TestLookups_ByKind(t *testing.T) {
	s, _ := newLookups(t, &mockBackend{})

	v, err := s.Lookup(context.Background(), service.LookupRegions)
	require.NoError(t, err)
	assert.Equal(t, []domain.Region{{ID: "1", Name: "North"}}, v)

	empty, err := s.Lookup(context.Background(), service.LookupRequestTypes)
	require.NoError(t, err)
	assert.Equal(t, []domain.RequestType{}, empty)

	_, err = s.Lookup(context.Background(), "colours")
	var nf *domain.ErrNotFound
	require.ErrorAs(t, err, &nf)
}

func TestLookups_HistoryLookupsPartial(t *testing.T) {
	backend := &mockBackend{
		vendorErr: errBackendDown,
		dealers:   []domain.Dealer{{ID: "12", Name: "Colour Point"}},
	}
	s, _ := newLookups(t, backend)

	l, err := s.HistoryLookups(context.Background())
	require.Error(t, err)
	assert.Nil(t, l.Vendors)
}

func TestLookups_MatchedVendors(t *testing.T) {
	s, _ := newLookups(t, &mockBackend{vendors: puneVendors()})

	v, err := s.MatchedVendors(context.Background(), "PUNE city")
	require.NoError(t, err)
	require.Len(t, v, 1)

	none, err := s.MatchedVendors(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestLookups_NoCache(t *testing.T) {
	backend := &mockBackend{vendors: puneVendors()}
	s := service.NewLookupService(backend, nil, nil, nil)
	_, err := s.Vendors(context.Background())
	require.NoError(t, err)
	_, err = s.Vendors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, backend.vendorCalls)
	s.Purge()
}
