package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
)

// --- Mocks ---

type memStorage struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
	getErr error
}

func newMemStorage() *memStorage {
	return &memStorage{values: map[string]string{}}
}

func (m *memStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

type staticUsers struct{ u *domain.User }

func (s staticUsers) User() *domain.User { return s.u.Clone() }

type mockValidator struct {
	valid bool
	err   error
	calls int
}

func (m *mockValidator) ValidateToken(_ context.Context, _ string) (bool, error) {
	m.calls++
	return m.valid, m.err
}

// mockBackend fakes every backend port the services use.
type mockBackend struct {
	mu sync.Mutex

	requests  []domain.ShopboardRequest
	listErr   error
	listCalls int

	patches   []*domain.StatusPatch
	patchErr  error
	edits     []*domain.RequestEdit
	approvals []string
	rejects   []string
	manual    []*domain.ManualApproval
	comments  []*domain.NewComment
	logs      []domain.AuditLogEntry
	thread    []domain.Comment

	// block, when set, holds PatchRequest until it is closed.
	block   chan struct{}
	entered chan struct{}

	vendors     []domain.Vendor
	vendorErr   error
	vendorCalls int
	dealers     []domain.Dealer
	warranty    []domain.WarrantyStatus

	signIn    *domain.SignInResponse
	signInErr error
	signIns   int
	valid     bool

	users []*domain.UserInput
	roles []*domain.Role
	tabs  []*domain.Feature
}

func (m *mockBackend) ListRequests(_ context.Context, _ domain.RequestFilter) ([]domain.ShopboardRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.ShopboardRequest(nil), m.requests...), nil
}

func (m *mockBackend) GetRequest(_ context.Context, id domain.ID) (*domain.ShopboardRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.ID == id {
			c := r
			return &c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "shopboard request", ID: id.String()}
}

func (m *mockBackend) PatchRequest(_ context.Context, id domain.ID, patch *domain.StatusPatch) error {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.patchErr != nil {
		return m.patchErr
	}
	m.patches = append(m.patches, patch)
	for i := range m.requests {
		if m.requests[i].ID == id {
			m.requests[i].Status = patch.Status
		}
	}
	return nil
}

func (m *mockBackend) EditRequest(_ context.Context, _ domain.ID, edit *domain.RequestEdit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, edit)
	return nil
}

func (m *mockBackend) ApproveRequest(_ context.Context, _ domain.ID, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals = append(m.approvals, comment)
	return nil
}

func (m *mockBackend) RejectApproval(_ context.Context, _ domain.ID, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejects = append(m.rejects, comment)
	return nil
}

func (m *mockBackend) ManualApprove(_ context.Context, _ domain.ID, a *domain.ManualApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manual = append(m.manual, a)
	return nil
}

func (m *mockBackend) RequestLogs(_ context.Context, _ domain.ID) ([]domain.AuditLogEntry, error) {
	return m.logs, nil
}

func (m *mockBackend) ListComments(_ context.Context, _ domain.ID) ([]domain.Comment, error) {
	return m.thread, nil
}

func (m *mockBackend) MarketingComments(_ context.Context, _ domain.ID) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range m.thread {
		if c.Type == domain.CommentMarketing {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockBackend) AddComment(_ context.Context, c *domain.NewComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments = append(m.comments, c)
	return nil
}

func (m *mockBackend) Vendors(_ context.Context) ([]domain.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vendorCalls++
	return m.vendors, m.vendorErr
}

func (m *mockBackend) Dealers(_ context.Context) ([]domain.Dealer, error) { return m.dealers, nil }
func (m *mockBackend) Regions(_ context.Context) ([]domain.Region, error) {
	return []domain.Region{{ID: "1", Name: "North"}}, nil
}
func (m *mockBackend) RequestTypes(_ context.Context) ([]domain.RequestType, error) { return nil, nil }
func (m *mockBackend) WarrantyStatuses(_ context.Context) ([]domain.WarrantyStatus, error) {
	return m.warranty, nil
}
func (m *mockBackend) SAPUsers(_ context.Context) ([]domain.SAPUser, error)     { return nil, nil }
func (m *mockBackend) SAPVendors(_ context.Context) ([]domain.SAPVendor, error) { return nil, nil }

func (m *mockBackend) SignIn(_ context.Context, _ *domain.SignInRequest) (*domain.SignInResponse, error) {
	m.signIns++
	return m.signIn, m.signInErr
}

func (m *mockBackend) ValidateToken(_ context.Context, _ string) (bool, error) {
	return m.valid, nil
}

func (m *mockBackend) ListRoles(_ context.Context) ([]domain.Role, error) { return nil, nil }
func (m *mockBackend) GetRole(_ context.Context, id domain.ID) (*domain.Role, error) {
	return &domain.Role{ID: id}, nil
}
func (m *mockBackend) CreateRole(_ context.Context, role *domain.Role) (*domain.Role, error) {
	m.roles = append(m.roles, role)
	return role, nil
}
func (m *mockBackend) UpdateRole(_ context.Context, _ domain.ID, role *domain.Role) (*domain.Role, error) {
	return role, nil
}
func (m *mockBackend) DeleteRole(_ context.Context, _ domain.ID) error { return nil }

func (m *mockBackend) ListUsers(_ context.Context) ([]domain.AdminUser, error) { return nil, nil }
func (m *mockBackend) GetUser(_ context.Context, id domain.ID) (*domain.AdminUser, error) {
	return &domain.AdminUser{ID: id}, nil
}
func (m *mockBackend) CreateUser(_ context.Context, in *domain.UserInput) (*domain.AdminUser, error) {
	m.users = append(m.users, in)
	return &domain.AdminUser{ID: "10", Username: in.Username}, nil
}
func (m *mockBackend) UpdateUser(_ context.Context, id domain.ID, in *domain.UserInput) (*domain.AdminUser, error) {
	m.users = append(m.users, in)
	return &domain.AdminUser{ID: id, Username: in.Username}, nil
}
func (m *mockBackend) DeleteUser(_ context.Context, _ domain.ID) error { return nil }

func (m *mockBackend) ListTabs(_ context.Context) ([]domain.Feature, error) { return nil, nil }
func (m *mockBackend) CreateTab(_ context.Context, tab *domain.Feature) (*domain.Feature, error) {
	m.tabs = append(m.tabs, tab)
	return tab, nil
}
func (m *mockBackend) UpdateTab(_ context.Context, _ domain.ID, tab *domain.Feature) (*domain.Feature, error) {
	return tab, nil
}
func (m *mockBackend) DeleteTab(_ context.Context, _ domain.ID) error { return nil }

var errBackendDown = errors.New("backend down")

// --- Fixtures ---

func areaHead() *domain.User {
	return &domain.User{
		ID:       "7",
		Username: "areahead",
		Permissions: domain.Permissions{
			domain.ScreenShopboardRequest: {domain.PermRead, domain.PermUpdate},
		},
		Role: &domain.RoleRef{ID: "2", Name: "Area Head"},
	}
}

func vendorUser() *domain.User {
	return &domain.User{
		ID:       "8",
		Username: "vendor",
		Permissions: domain.Permissions{
			domain.ScreenVendorRequest: {domain.PermRead, domain.PermUpdate},
		},
	}
}

func marketingUser(id domain.ID) *domain.User {
	return &domain.User{
		ID:       id,
		Username: "marketing-" + id.String(),
		Permissions: domain.Permissions{
			domain.ScreenMarketingRequest: {
				domain.PermRead, domain.PermApprovals, domain.PermAddComment,
				domain.PermPrint, domain.PermManualApproval,
			},
		},
	}
}

func request(id domain.ID, status domain.RequestStatus) domain.ShopboardRequest {
	return domain.ShopboardRequest{
		ID:     id,
		Status: status,
		Dealer: &domain.DealerRef{ID: "d1", Name: "Colour Point", District: "Pune"},
	}
}

func puneVendors() []domain.Vendor {
	return []domain.Vendor{
		{ID: "v1", Name: "Pune Boards", Code: "PB01", Region: "pune"},
		{ID: "v2", Name: "Delhi Signs", Code: "DS01", Region: "Delhi"},
	}
}
