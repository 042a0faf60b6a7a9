package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/shopboard-dashboard-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// BoardDeps are the collaborators shared by every request board.
type BoardDeps struct {
	Backend     port.ShopboardBackend
	Lookups     *LookupService
	Users       UserSource
	Validator   *Validator
	FileBaseURL string
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// RequestBoard is the table state of one request screen: its rows, the
// loading flag, the rows with an action in flight and the bulk selection.
// Nothing here is shared with other screens.
type RequestBoard struct {
	screen domain.Screen
	deps   BoardDeps
	logger *zap.Logger

	mu       sync.Mutex
	rows     []domain.ShopboardRequest
	loaded   bool
	loading  int // reloads in progress
	gen      int // bumped by Reset; a reload from an older generation is dropped
	inFlight map[domain.ID]bool
	selected map[domain.ID]bool
}

// NewRequestBoard creates the board of screen.
func NewRequestBoard(screen domain.Screen, deps BoardDeps) *RequestBoard {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	return &RequestBoard{
		screen:   screen,
		deps:     deps,
		logger:   deps.Logger.With(zap.String("screen", string(screen))),
		inFlight: make(map[domain.ID]bool),
		selected: make(map[domain.ID]bool),
	}
}

// Screen returns the screen the board belongs to.
func (b *RequestBoard) Screen() domain.Screen { return b.screen }

func (b *RequestBoard) user() (*domain.User, error) {
	var u *domain.User
	if b.deps.Users != nil {
		u = b.deps.Users.User()
	}
	if u == nil {
		return nil, &domain.ErrUnauthorized{Message: "no active session"}
	}
	return u, nil
}

func (b *RequestBoard) requirePermission(tag domain.PermissionTag) (*domain.User, error) {
	u, err := b.user()
	if err != nil {
		return nil, err
	}
	if !UserHasPermission(u, b.screen, tag) {
		return nil, &domain.ErrForbidden{Action: fmt.Sprintf("%s on %s", tag, b.screen)}
	}
	return u, nil
}

// Reload fetches the full list again. On failure the previous rows are kept.
func (b *RequestBoard) Reload(ctx context.Context) ([]domain.ShopboardRequest, error) {
	ctx, span := tracer.Start(ctx, "RequestBoard.Reload")
	defer span.End()
	span.SetAttributes(attribute.String("screen", string(b.screen)))

	if _, err := b.requirePermission(domain.PermRead); err != nil {
		return nil, err
	}

	gen := b.beginLoading()
	defer b.endLoading()

	rows, err := b.deps.Backend.ListRequests(ctx, domain.RequestFilter{})
	if err != nil {
		span.RecordError(err)
		b.logger.Warn("board reload failed, keeping previous rows", zap.Error(err))
		return nil, err
	}
	if rows == nil {
		rows = []domain.ShopboardRequest{}
	}

	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		b.logger.Debug("board reset during reload, dropping rows")
		return rows, nil
	}
	b.rows = rows
	b.loaded = true
	for id := range b.selected {
		if r := b.findLocked(id); r == nil || r.Status.Normalized() != domain.StatusCEOPending {
			delete(b.selected, id)
		}
	}
	out := append([]domain.ShopboardRequest(nil), b.rows...)
	b.mu.Unlock()
	return out, nil
}

func (b *RequestBoard) beginLoading() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading++
	return b.gen
}

func (b *RequestBoard) endLoading() {
	b.mu.Lock()
	b.loading--
	b.mu.Unlock()
}

// IsLoading reports whether any reload is still running.
func (b *RequestBoard) IsLoading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading > 0
}

func (b *RequestBoard) findLocked(id domain.ID) *domain.ShopboardRequest {
	for i := range b.rows {
		if b.rows[i].ID == id {
			return &b.rows[i]
		}
	}
	return nil
}

// row returns the loaded row, or fetches it when the board has not seen it.
func (b *RequestBoard) row(ctx context.Context, id domain.ID) (*domain.ShopboardRequest, error) {
	b.mu.Lock()
	if r := b.findLocked(id); r != nil {
		c := *r
		b.mu.Unlock()
		return &c, nil
	}
	b.mu.Unlock()
	return b.deps.Backend.GetRequest(ctx, id)
}

// BoardRow is one row as displayed, with the actions it offers.
type BoardRow struct {
	Request     domain.ShopboardRequest `json:"request"`
	StatusLabel string                  `json:"statusLabel"`
	Actions     []Action                `json:"actions"`
	Approval    *ApprovalState          `json:"approval,omitempty"`
	Invoice     *domain.Invoice         `json:"invoice,omitempty"`
	InFlight    bool                    `json:"inFlight"`
	Selectable  bool                    `json:"selectable"`
	Selected    bool                    `json:"selected"`
}

// BoardView is the whole table as displayed.
type BoardView struct {
	Screen              domain.Screen `json:"screen"`
	Loading             bool          `json:"loading"`
	Rows                []BoardRow    `json:"rows"`
	ShowSelectionColumn bool          `json:"showSelectionColumn"`
	Selected            []domain.ID   `json:"selected"`
	AllSelected         bool          `json:"allSelected"`
}

func (b *RequestBoard) needsVendors() bool {
	for _, r := range ActionRules(b.screen) {
		if r.RequiresVendor {
			return true
		}
	}
	return false
}

// View returns the table, loading it first if it never loaded. Controls of a
// row with an action in flight are disabled.
func (b *RequestBoard) View(ctx context.Context) (*BoardView, error) {
	u, err := b.requirePermission(domain.PermRead)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	loaded := b.loaded
	b.mu.Unlock()
	if !loaded {
		if _, err := b.Reload(ctx); err != nil {
			return nil, err
		}
	}

	var vendors []domain.Vendor
	if b.needsVendors() && b.deps.Lookups != nil {
		vendors, err = b.deps.Lookups.Vendors(ctx)
		if err != nil {
			b.logger.Warn("vendor list unavailable, assign disabled", zap.Error(err))
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	view := &BoardView{
		Screen:   b.screen,
		Loading:  b.loading > 0 || len(b.inFlight) > 0,
		Rows:     make([]BoardRow, 0, len(b.rows)),
		Selected: []domain.ID{},
	}
	selectable := 0
	for i := range b.rows {
		req := b.rows[i]
		row := BoardRow{
			Request:     req,
			StatusLabel: b.statusLabel(req.Status),
			Actions:     AvailableActions(b.screen, &req, u, vendors),
			InFlight:    b.inFlight[req.ID],
			Selectable:  req.Status.Normalized() == domain.StatusCEOPending,
		}
		if row.InFlight {
			for j := range row.Actions {
				row.Actions[j].Enabled = false
				row.Actions[j].DisabledReason = "an action is in progress"
			}
		}
		if b.screen == domain.ScreenMarketingRequest {
			st := EvaluateApproval(&req, u.ID)
			row.Approval = &st
		}
		if inv, ok := domain.ParseInvoice(req.Invoice); ok {
			row.Invoice = inv
		} else if len(req.Invoice) > 0 && string(req.Invoice) != "null" {
			b.logger.Debug("invoice metadata unreadable", zap.String("request_id", req.ID.String()))
		}
		if row.Selectable {
			selectable++
			row.Selected = b.selected[req.ID]
			if row.Selected {
				view.Selected = append(view.Selected, req.ID)
			}
		}
		view.Rows = append(view.Rows, row)
	}
	view.ShowSelectionColumn = selectable > 0
	view.AllSelected = selectable > 0 && len(view.Selected) == selectable
	return view, nil
}

func (b *RequestBoard) statusLabel(s domain.RequestStatus) string {
	if b.screen == domain.ScreenShopboardRequest {
		return s.AreaHeadLabel()
	}
	return string(s.Normalized())
}

// begin marks id as in flight; a second action on the same row is refused
// until end is called.
func (b *RequestBoard) begin(id domain.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inFlight[id] {
		return &domain.ErrInFlight{RequestID: id}
	}
	b.inFlight[id] = true
	return nil
}

func (b *RequestBoard) end(id domain.ID) {
	b.mu.Lock()
	delete(b.inFlight, id)
	b.mu.Unlock()
}

// ActionResult reports a performed action. Predicted is set for approval
// decisions; Status for transitions.
type ActionResult struct {
	Action    ActionName           `json:"action"`
	Status    domain.RequestStatus `json:"status,omitempty"`
	Predicted *ApprovalOutcome     `json:"predicted,omitempty"`
	Message   string               `json:"message,omitempty"`
}

func (b *RequestBoard) record(name ActionName, err error) {
	outcome := "ok"
	if err != nil {
		var (
			forbidden *domain.ErrForbidden
			illegal   *domain.ErrIllegalTransition
			invalid   *domain.ErrValidation
			inFlight  *domain.ErrInFlight
		)
		switch {
		case errors.As(err, &forbidden), errors.As(err, &illegal), errors.As(err, &invalid), errors.As(err, &inFlight):
			outcome = "denied"
		default:
			outcome = "error"
		}
	}
	b.deps.Metrics.IncrWorkflowAction(string(name), outcome)
}

// authorize resolves the row and checks the rule for name.
func (b *RequestBoard) authorize(ctx context.Context, id domain.ID, name ActionName) (*domain.User, *domain.ShopboardRequest, ActionRule, error) {
	u, err := b.user()
	if err != nil {
		return nil, nil, ActionRule{}, err
	}
	req, err := b.row(ctx, id)
	if err != nil {
		return nil, nil, ActionRule{}, err
	}
	rule, err := Authorize(b.screen, name, req, u)
	if err != nil {
		return nil, nil, ActionRule{}, err
	}
	return u, req, rule, nil
}

// Perform runs a row action: a status transition, an approval decision, a
// comment, or a stub. Edits and manual approvals have their own methods. On
// success the list is fetched again; rows are never patched locally.
func (b *RequestBoard) Perform(ctx context.Context, id domain.ID, name ActionName, in ActionInput) (res *ActionResult, err error) {
	ctx, span := tracer.Start(ctx, "RequestBoard.Perform")
	defer span.End()
	span.SetAttributes(
		attribute.String("screen", string(b.screen)),
		attribute.String("action", string(name)),
		attribute.String("request_id", id.String()),
	)
	defer func() {
		b.record(name, err)
		if err != nil {
			span.RecordError(err)
		}
	}()

	u, req, rule, err := b.authorize(ctx, id, name)
	if err != nil {
		return nil, err
	}
	if err := b.begin(id); err != nil {
		return nil, err
	}
	defer b.end(id)

	res = &ActionResult{Action: name}
	switch rule.Kind {
	case KindTransition:
		var vendors []domain.Vendor
		if rule.RequiresVendor && b.deps.Lookups != nil {
			if vendors, err = b.deps.Lookups.Vendors(ctx); err != nil {
				return nil, err
			}
		}
		patch, err := PlanTransition(b.screen, name, req, u, in, vendors)
		if err != nil {
			return nil, err
		}
		if err := b.deps.Backend.PatchRequest(ctx, id, patch); err != nil {
			return nil, err
		}
		res.Status = patch.Status

	case KindApproval:
		outcome, err := PredictApprovalOutcome(req, u.ID, decisionFor(name))
		if err != nil {
			return nil, err
		}
		comment := strings.TrimSpace(in.Comment)
		if outcome.Decision == DecisionReject {
			err = b.deps.Backend.RejectApproval(ctx, id, comment)
		} else {
			err = b.deps.Backend.ApproveRequest(ctx, id, comment)
		}
		if err != nil {
			return nil, err
		}
		res.Predicted = &outcome

	case KindAnnotation:
		if name != ActionAddComment {
			return nil, &domain.ErrValidation{Field: "action", Message: fmt.Sprintf("%s is submitted with its own form", name)}
		}
		c := &domain.NewComment{RequestID: id, Comment: strings.TrimSpace(in.Comment), CommentType: rule.CommentType}
		if err := b.deps.Validator.Struct(c); err != nil {
			return nil, err
		}
		if err := b.deps.Backend.AddComment(ctx, c); err != nil {
			return nil, err
		}

	case KindStub:
		b.deps.Metrics.IncrStubAction(string(name))
		b.logger.Info("stub action invoked, no backend call made",
			zap.String("action", string(name)),
			zap.String("request_id", id.String()),
		)
		res.Message = fmt.Sprintf("%s is not available yet", rule.Label)
		return res, nil

	default:
		return nil, &domain.ErrValidation{Field: "action", Message: fmt.Sprintf("%s does not change the request", name)}
	}

	b.refresh(ctx)
	return res, nil
}

// refresh reloads after a successful mutation. A failed reload leaves the
// previous rows in place; the mutation itself already succeeded.
func (b *RequestBoard) refresh(ctx context.Context) {
	if _, err := b.Reload(ctx); err != nil {
		b.logger.Warn("reload after mutation failed", zap.Error(err))
	}
}

// Edit validates and prices edit, then uploads it. Item prices and the total
// cost are derived here; values sent by the browser are overwritten.
func (b *RequestBoard) Edit(ctx context.Context, id domain.ID, edit *domain.RequestEdit) (err error) {
	ctx, span := tracer.Start(ctx, "RequestBoard.Edit")
	defer span.End()
	defer func() { b.record(ActionEdit, err) }()

	if edit == nil {
		return requiredField("body")
	}
	if _, _, _, err := b.authorize(ctx, id, ActionEdit); err != nil {
		return err
	}
	if err := b.deps.Validator.Struct(edit); err != nil {
		return err
	}
	edit.Items, edit.TotalCost = domain.PriceItems(edit.Items)

	if err := b.begin(id); err != nil {
		return err
	}
	defer b.end(id)

	if err := b.deps.Backend.EditRequest(ctx, id, edit); err != nil {
		span.RecordError(err)
		return err
	}
	b.refresh(ctx)
	return nil
}

// ManualApprove records a justification against a ceo_pending request. The
// status is left to the backend.
func (b *RequestBoard) ManualApprove(ctx context.Context, id domain.ID, approval *domain.ManualApproval) (err error) {
	ctx, span := tracer.Start(ctx, "RequestBoard.ManualApprove")
	defer span.End()
	defer func() { b.record(ActionManualApproval, err) }()

	if approval == nil {
		return requiredField("justification")
	}
	approval.Justification = strings.TrimSpace(approval.Justification)
	if _, _, _, err := b.authorize(ctx, id, ActionManualApproval); err != nil {
		return err
	}
	if err := b.deps.Validator.Struct(approval); err != nil {
		return err
	}

	if err := b.begin(id); err != nil {
		return err
	}
	defer b.end(id)

	if err := b.deps.Backend.ManualApprove(ctx, id, approval); err != nil {
		span.RecordError(err)
		return err
	}
	b.refresh(ctx)
	return nil
}

// History renders the audit log of a request. Lookup lists that fail to load
// leave the matching ids unresolved.
func (b *RequestBoard) History(ctx context.Context, id domain.ID) ([]HistoryEntry, error) {
	ctx, span := tracer.Start(ctx, "RequestBoard.History")
	defer span.End()

	if _, _, _, err := b.authorize(ctx, id, ActionViewHistory); err != nil {
		return nil, err
	}
	logs, err := b.deps.Backend.RequestLogs(ctx, id)
	if err != nil {
		return nil, err
	}
	var lookups domain.HistoryLookups
	if b.deps.Lookups != nil {
		lookups, err = b.deps.Lookups.HistoryLookups(ctx)
		if err != nil {
			b.logger.Warn("history lookups incomplete", zap.Error(err))
		}
	}
	return NewHistoryRenderer(b.deps.FileBaseURL, lookups).Render(logs), nil
}

// CommentThread selects which comments to list.
type CommentThread string

const (
	ThreadRequest   CommentThread = "request"
	ThreadVendor    CommentThread = "vendor"
	ThreadMarketing CommentThread = "marketing"
)

// Comments lists one comment thread of a request. On the Area-Head screen the
// vendor thread is only offered for a request the vendor turned down.
func (b *RequestBoard) Comments(ctx context.Context, id domain.ID, thread CommentThread) ([]domain.Comment, error) {
	ctx, span := tracer.Start(ctx, "RequestBoard.Comments")
	defer span.End()

	var (
		comments []domain.Comment
		err      error
	)
	switch thread {
	case ThreadVendor:
		if b.screen == domain.ScreenShopboardRequest {
			if _, _, _, err := b.authorize(ctx, id, ActionViewVendorComments); err != nil {
				return nil, err
			}
		} else if _, err := b.requirePermission(domain.PermRead); err != nil {
			return nil, err
		}
		all, err := b.deps.Backend.ListComments(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, c := range all {
			if c.Type == domain.CommentVendor {
				comments = append(comments, c)
			}
		}
	case ThreadMarketing:
		if _, err := b.requirePermission(domain.PermRead); err != nil {
			return nil, err
		}
		comments, err = b.deps.Backend.MarketingComments(ctx, id)
	case ThreadRequest, "":
		if _, err := b.requirePermission(domain.PermRead); err != nil {
			return nil, err
		}
		comments, err = b.deps.Backend.ListComments(ctx, id)
	default:
		return nil, &domain.ErrValidation{Field: "type", Message: fmt.Sprintf("unknown comment thread %q", thread)}
	}
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// MatchingVendors lists the vendors that serve the request's dealer district.
func (b *RequestBoard) MatchingVendors(ctx context.Context, id domain.ID) ([]domain.Vendor, error) {
	if _, err := b.requirePermission(domain.PermRead); err != nil {
		return nil, err
	}
	req, err := b.row(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.deps.Lookups == nil {
		return []domain.Vendor{}, nil
	}
	return b.deps.Lookups.MatchedVendors(ctx, req.District())
}

// PrintDocument is the printable snapshot of a ceo_pending request.
type PrintDocument struct {
	RequestID            domain.ID            `json:"requestId"`
	Status               domain.RequestStatus `json:"status"`
	Dealer               *domain.DealerRef    `json:"dealer,omitempty"`
	Items                []domain.RequestItem `json:"items"`
	TotalCost            string               `json:"totalCost"`
	ReasonForReplacement string               `json:"reasonForReplacement"`
	LastInstallationDate string               `json:"lastInstallationDate"`
	Comments             []domain.Comment     `json:"comments"`
	SitePhotos           []string             `json:"sitePhotos"`
	OldBoardPhotos       []string             `json:"oldBoardPhotos"`
	SurveyForms          []string             `json:"surveyForms"`
	Invoice              *domain.Invoice      `json:"invoice,omitempty"`
	GeneratedAt          time.Time            `json:"generatedAt"`
}

// Print builds the printable snapshot. Nothing is written.
func (b *RequestBoard) Print(ctx context.Context, id domain.ID) (*PrintDocument, error) {
	_, req, _, err := b.authorize(ctx, id, ActionPrint)
	if err != nil {
		return nil, err
	}
	items, total := domain.PriceItems(req.Items)
	doc := &PrintDocument{
		RequestID:            req.ID,
		Status:               req.Status.Normalized(),
		Dealer:               req.Dealer,
		Items:                items,
		TotalCost:            total.StringFixed(2),
		ReasonForReplacement: req.ReasonForReplacement,
		LastInstallationDate: formatDateValue(req.LastInstallationDate),
		Comments:             req.Comments,
		SitePhotos:           b.resolveAll("site_photos", req.SitePhotos),
		OldBoardPhotos:       b.resolveAll("old_board_photos", req.OldBoardPhotos),
		SurveyForms:          b.resolveAll("survey_forms", req.SurveyForms),
		GeneratedAt:          time.Now().UTC(),
	}
	if doc.Comments == nil {
		doc.Comments = []domain.Comment{}
	}
	if inv, ok := domain.ParseInvoice(req.Invoice); ok {
		inv.Files = b.resolveAll("invoices", inv.Files)
		inv.Receipts = b.resolveAll("receipts", inv.Receipts)
		doc.Invoice = inv
	}
	return doc, nil
}

func (b *RequestBoard) resolveAll(category string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if u := domain.ResolveFileURL(b.deps.FileBaseURL, category, p); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// ToggleSelection flips the selection of a ceo_pending row.
func (b *RequestBoard) ToggleSelection(id domain.ID) (bool, error) {
	if _, err := b.requirePermission(domain.PermRead); err != nil {
		return false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.findLocked(id)
	if r == nil {
		return false, &domain.ErrNotFound{Resource: "request", ID: id.String()}
	}
	if r.Status.Normalized() != domain.StatusCEOPending {
		return false, &domain.ErrValidation{Field: "id", Message: "only requests awaiting CEO approval can be selected"}
	}
	if b.selected[id] {
		delete(b.selected, id)
		return false, nil
	}
	b.selected[id] = true
	return true, nil
}

// SelectAll selects every ceo_pending row, or clears the selection when all of
// them are already selected.
func (b *RequestBoard) SelectAll() ([]domain.ID, error) {
	if _, err := b.requirePermission(domain.PermRead); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var selectable []domain.ID
	all := true
	for _, r := range b.rows {
		if r.Status.Normalized() != domain.StatusCEOPending {
			continue
		}
		selectable = append(selectable, r.ID)
		if !b.selected[r.ID] {
			all = false
		}
	}
	b.selected = make(map[domain.ID]bool)
	out := []domain.ID{}
	if all {
		return out, nil
	}
	for _, id := range selectable {
		b.selected[id] = true
		out = append(out, id)
	}
	return out, nil
}

// Selected returns the selected ids in row order.
func (b *RequestBoard) Selected() []domain.ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selectedLocked()
}

func (b *RequestBoard) selectedLocked() []domain.ID {
	out := []domain.ID{}
	for _, r := range b.rows {
		if b.selected[r.ID] {
			out = append(out, r.ID)
		}
	}
	return out
}

// SendSelectedToCEO is the bulk "Send to CEO for Approval" action. The backend
// has no endpoint for it, so the selection is logged and cleared and nothing
// is sent.
func (b *RequestBoard) SendSelectedToCEO(ctx context.Context) (res *ActionResult, err error) {
	defer func() { b.record(ActionSendToCEO, err) }()
	if _, err := b.requirePermission(domain.PermRead); err != nil {
		return nil, err
	}
	b.mu.Lock()
	ids := b.selectedLocked()
	if len(ids) == 0 {
		b.mu.Unlock()
		return nil, &domain.ErrValidation{Field: "selection", Message: "select at least one request"}
	}
	b.selected = make(map[domain.ID]bool)
	b.mu.Unlock()

	b.deps.Metrics.IncrStubAction(string(ActionSendToCEO))
	b.logger.Info("stub action invoked, no backend call made",
		zap.String("action", string(ActionSendToCEO)),
		zap.Int("count", len(ids)),
		zap.Any("request_ids", ids),
	)
	return &ActionResult{Action: ActionSendToCEO, Message: fmt.Sprintf("%d request(s) marked for CEO approval", len(ids))}, nil
}

// Reset forgets rows and selection, e.g. when the operator changes.
func (b *RequestBoard) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = nil
	b.loaded = false
	b.gen++
	b.selected = make(map[domain.ID]bool)
}

// BoardSet holds one board per request screen.
type BoardSet struct {
	boards map[domain.Screen]*RequestBoard
}

// NewBoardSet creates the boards of RequestScreens.
func NewBoardSet(deps BoardDeps) *BoardSet {
	s := &BoardSet{boards: make(map[domain.Screen]*RequestBoard, len(RequestScreens))}
	for _, screen := range RequestScreens {
		s.boards[screen] = NewRequestBoard(screen, deps)
	}
	return s
}

// Board returns the board of screen.
func (s *BoardSet) Board(screen domain.Screen) (*RequestBoard, error) {
	b, ok := s.boards[screen]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "screen", ID: string(screen)}
	}
	return b, nil
}

// Reset clears every board.
func (s *BoardSet) Reset() {
	for _, b := range s.boards {
		b.Reset()
	}
}
