package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/shopboard-dashboard-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LookupKind names a reference list served by the backend.
type LookupKind string

const (
	LookupVendors          LookupKind = "vendors"
	LookupDealers          LookupKind = "dealers"
	LookupRegions          LookupKind = "regions"
	LookupRequestTypes     LookupKind = "request-types"
	LookupWarrantyStatuses LookupKind = "warranty-statuses"
	LookupSAPUsers         LookupKind = "sap-users"
	LookupSAPVendors       LookupKind = "sap-vendors"
)

const lookupCacheName = "lookups"

// lookupFillTimeout bounds a shared fill, which no longer follows the
// cancellation of the caller that started it.
const lookupFillTimeout = 30 * time.Second

// LookupService serves reference data from a TTL cache. Concurrent misses on
// the same list share one backend call.
type LookupService struct {
	backend port.LookupBackend
	cache   port.Cache[any]
	group   singleflight.Group
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewLookupService creates a LookupService. A nil cache disables caching.
func NewLookupService(backend port.LookupBackend, c port.Cache[any], metrics *observability.Metrics, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{backend: backend, cache: c, metrics: metrics, logger: logger}
}

func cached[T any](ctx context.Context, s *LookupService, kind LookupKind, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key := string(kind)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if list, ok := v.([]T); ok {
				s.metrics.IncrCacheHit(lookupCacheName)
				return list, nil
			}
		}
	}
	s.metrics.IncrCacheMiss(lookupCacheName)

	ch := s.group.DoChan(key, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupFillTimeout)
		defer cancel()
		list, err := fetch(fillCtx)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []T{}
		}
		if s.cache != nil {
			s.cache.Set(key, list)
		}
		return list, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s: %w", kind, ctx.Err())
	}
	if res.Err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, res.Err)
	}
	if res.Shared {
		s.logger.Debug("lookup fill shared", zap.String("kind", key))
	}
	return res.Val.([]T), nil
}

func (s *LookupService) Vendors(ctx context.Context) ([]domain.Vendor, error) {
	return cached(ctx, s, LookupVendors, s.backend.Vendors)
}

func (s *LookupService) Dealers(ctx context.Context) ([]domain.Dealer, error) {
	return cached(ctx, s, LookupDealers, s.backend.Dealers)
}

func (s *LookupService) Regions(ctx context.Context) ([]domain.Region, error) {
	return cached(ctx, s, LookupRegions, s.backend.Regions)
}

func (s *LookupService) RequestTypes(ctx context.Context) ([]domain.RequestType, error) {
	return cached(ctx, s, LookupRequestTypes, s.backend.RequestTypes)
}

func (s *LookupService) WarrantyStatuses(ctx context.Context) ([]domain.WarrantyStatus, error) {
	return cached(ctx, s, LookupWarrantyStatuses, s.backend.WarrantyStatuses)
}

func (s *LookupService) SAPUsers(ctx context.Context) ([]domain.SAPUser, error) {
	return cached(ctx, s, LookupSAPUsers, s.backend.SAPUsers)
}

func (s *LookupService) SAPVendors(ctx context.Context) ([]domain.SAPVendor, error) {
	return cached(ctx, s, LookupSAPVendors, s.backend.SAPVendors)
}

// Lookup returns one list by kind, for the browser's dropdowns.
func (s *LookupService) Lookup(ctx context.Context, kind LookupKind) (any, error) {
	switch kind {
	case LookupVendors:
		return s.Vendors(ctx)
	case LookupDealers:
		return s.Dealers(ctx)
	case LookupRegions:
		return s.Regions(ctx)
	case LookupRequestTypes:
		return s.RequestTypes(ctx)
	case LookupWarrantyStatuses:
		return s.WarrantyStatuses(ctx)
	case LookupSAPUsers:
		return s.SAPUsers(ctx)
	case LookupSAPVendors:
		return s.SAPVendors(ctx)
	}
	return nil, &domain.ErrNotFound{Resource: "lookup", ID: string(kind)}
}

// HistoryLookups loads the lists the history renderer resolves ids with, in
// parallel. On error the lists that did load are still returned.
func (s *LookupService) HistoryLookups(ctx context.Context) (domain.HistoryLookups, error) {
	ctx, span := tracer.Start(ctx, "LookupService.HistoryLookups")
	defer span.End()

	var out domain.HistoryLookups
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.Vendors(gctx)
		out.Vendors = v
		return err
	})
	g.Go(func() error {
		d, err := s.Dealers(gctx)
		out.Dealers = d
		return err
	})
	g.Go(func() error {
		w, err := s.WarrantyStatuses(gctx)
		out.WarrantyStatuses = w
		return err
	})
	err := g.Wait()
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

// MatchedVendors returns the vendors serving district.
func (s *LookupService) MatchedVendors(ctx context.Context, district string) ([]domain.Vendor, error) {
	vendors, err := s.Vendors(ctx)
	if err != nil {
		return nil, err
	}
	matched := domain.MatchVendors(vendors, district)
	if matched == nil {
		matched = []domain.Vendor{}
	}
	return matched, nil
}

// Purge drops every cached list. Called on sign-in and sign-out so one
// operator never sees another's reference data.
func (s *LookupService) Purge() {
	if p, ok := s.cache.(interface{ Purge() }); ok {
		p.Purge()
		return
	}
	if s.cache == nil {
		return
	}
	for _, k := range []LookupKind{LookupVendors, LookupDealers, LookupRegions, LookupRequestTypes, LookupWarrantyStatuses, LookupSAPUsers, LookupSAPVendors} {
		s.cache.Delete(string(k))
	}
}
