package service

import (
	"fmt"
	"strings"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
)

// ActionName identifies a row action on a request screen.
type ActionName string

const (
	ActionApprove            ActionName = "approve"
	ActionAssign             ActionName = "assign"
	ActionReject             ActionName = "reject"
	ActionReviewAgain        ActionName = "review_again"
	ActionViewVendorComments ActionName = "view_vendor_comments"
	ActionSendToMarketing    ActionName = "send_to_marketing"
	ActionEdit               ActionName = "edit"
	ActionViewHistory        ActionName = "view_history"
	ActionApproveForPayment  ActionName = "approve_for_payment"
	ActionSubmitQuotation    ActionName = "submit_quotation"
	ActionVendorReject       ActionName = "vendor_reject"
	ActionApprovalApprove    ActionName = "approval_approve"
	ActionApprovalReject     ActionName = "approval_reject"
	ActionAddComment         ActionName = "add_comment"
	ActionManualApproval     ActionName = "manual_approval"
	ActionPrint              ActionName = "print"
	ActionSendToCEO          ActionName = "send_to_ceo"
)

// ActionKind says how an action reaches the backend.
type ActionKind string

const (
	// KindTransition is a PATCH of the request status.
	KindTransition ActionKind = "transition"
	// KindApproval posts to the approval chain; the backend decides the status.
	KindApproval ActionKind = "approval"
	// KindEdit is the multipart edit of details and pricing.
	KindEdit ActionKind = "edit"
	// KindAnnotation records a comment or manual approval without a status change.
	KindAnnotation ActionKind = "annotation"
	// KindReadOnly displays data.
	KindReadOnly ActionKind = "read_only"
	// KindStub has no backend effect yet.
	KindStub ActionKind = "stub"
)

// ActionRule is one row of the workflow table.
type ActionRule struct {
	Name       ActionName
	Label      string
	Screen     domain.Screen
	Permission domain.PermissionTag
	// From lists the statuses the action is offered in; empty means any.
	From []domain.RequestStatus
	// To is the status written by a transition.
	To   domain.RequestStatus
	Kind ActionKind

	RequiresVendor bool
	// CommentType is set when the action accepts an optional comment.
	CommentType domain.CommentType
	// AssignedVM is written alongside the status when set.
	AssignedVM *int
	// When further restricts the action, e.g. to active approvers.
	When func(req *domain.ShopboardRequest, u *domain.User) bool
}

func intPtr(v int) *int { return &v }

func statuses(s ...domain.RequestStatus) []domain.RequestStatus { return s }

func isActiveApprover(req *domain.ShopboardRequest, u *domain.User) bool {
	return u != nil && req.HasActiveApprover(u.ID)
}

// areaHeadCanEdit: quotation sent with update permission, or under_review as
// an active approver.
func areaHeadCanEdit(req *domain.ShopboardRequest, u *domain.User) bool {
	switch req.Status.Normalized() {
	case domain.StatusQuotationSent:
		return UserHasPermission(u, domain.ScreenShopboardRequest, domain.PermUpdate)
	case domain.StatusUnderReview:
		return isActiveApprover(req, u)
	}
	return false
}

var actionRules = []ActionRule{
	// Area Head
	{
		Name: ActionApprove, Label: "Approve", Screen: domain.ScreenShopboardRequest, Permission: domain.PermUpdate,
		From: statuses(domain.StatusUndecided, domain.StatusProcessing, domain.StatusRfqNotAccepted),
		To:   domain.StatusProcessing, Kind: KindTransition,
	},
	{
		Name: ActionAssign, Label: "Assign", Screen: domain.ScreenShopboardRequest, Permission: domain.PermUpdate,
		From: statuses(domain.StatusUndecided, domain.StatusProcessing),
		To:   domain.StatusRfq, Kind: KindTransition,
		// comment_type names the author's role; the vendor is the reader.
		RequiresVendor: true, CommentType: domain.CommentAreaHead, AssignedVM: intPtr(1),
	},
	{
		Name: ActionReject, Label: "Reject", Screen: domain.ScreenShopboardRequest, Permission: domain.PermUpdate,
		From: statuses(domain.StatusProcessing),
		To:   domain.StatusReviewRequested, Kind: KindTransition,
		CommentType: domain.CommentAreaHead,
	},
	{
		Name: ActionReviewAgain, Label: "Review Again", Screen: domain.ScreenShopboardRequest, Permission: domain.PermUpdate,
		From: statuses(domain.StatusReviewRequested),
		To:   domain.StatusUndecided, Kind: KindTransition,
	},
	{
		Name: ActionViewVendorComments, Label: "View Vendor Comments", Screen: domain.ScreenShopboardRequest, Permission: domain.PermRead,
		From: statuses(domain.StatusRfqNotAccepted), Kind: KindReadOnly,
	},
	{
		Name: ActionSendToMarketing, Label: "Send to Marketing Head", Screen: domain.ScreenShopboardRequest, Permission: domain.PermUpdate,
		From: statuses(domain.StatusQuotationSent),
		To:   domain.StatusUnderReview, Kind: KindTransition,
	},
	{
		Name: ActionEdit, Label: "Edit", Screen: domain.ScreenShopboardRequest, Permission: domain.PermRead,
		From: statuses(domain.StatusQuotationSent, domain.StatusUnderReview), Kind: KindEdit,
		When: areaHeadCanEdit,
	},
	{
		Name: ActionViewHistory, Label: "History", Screen: domain.ScreenShopboardRequest, Permission: domain.PermRead,
		Kind: KindReadOnly,
	},
	{
		Name: ActionApproveForPayment, Label: "Approve for Payment", Screen: domain.ScreenShopboardRequest, Permission: domain.PermUpdate,
		From: statuses(domain.StatusInvoiceSent), Kind: KindStub,
	},

	// Vendor
	{
		Name: ActionSubmitQuotation, Label: "Submit Quotation", Screen: domain.ScreenVendorRequest, Permission: domain.PermUpdate,
		From: statuses(domain.StatusRfq),
		To:   domain.StatusQuotationSent, Kind: KindTransition,
	},
	{
		Name: ActionVendorReject, Label: "Reject", Screen: domain.ScreenVendorRequest, Permission: domain.PermUpdate,
		From: statuses(domain.StatusRfq),
		To:   domain.StatusRfqNotAccepted, Kind: KindTransition,
		CommentType: domain.CommentVendor, AssignedVM: intPtr(0),
	},
	{
		Name: ActionViewHistory, Label: "History", Screen: domain.ScreenVendorRequest, Permission: domain.PermRead,
		Kind: KindReadOnly,
	},

	// Marketing / approval chain
	{
		Name: ActionApprovalApprove, Label: "Approve", Screen: domain.ScreenMarketingRequest, Permission: domain.PermApprovals,
		From: statuses(domain.StatusUnderReview), Kind: KindApproval,
		CommentType: domain.CommentMarketing, When: isActiveApprover,
	},
	{
		Name: ActionApprovalReject, Label: "Reject", Screen: domain.ScreenMarketingRequest, Permission: domain.PermApprovals,
		From: statuses(domain.StatusUnderReview), Kind: KindApproval,
		CommentType: domain.CommentMarketing, When: isActiveApprover,
	},
	{
		Name: ActionEdit, Label: "Edit", Screen: domain.ScreenMarketingRequest, Permission: domain.PermRead,
		From: statuses(domain.StatusUnderReview), Kind: KindEdit,
		When: isActiveApprover,
	},
	{
		Name: ActionAddComment, Label: "Comments", Screen: domain.ScreenMarketingRequest, Permission: domain.PermAddComment,
		From: statuses(domain.StatusCEOPending), Kind: KindAnnotation,
		CommentType: domain.CommentMarketing,
	},
	{
		Name: ActionManualApproval, Label: "Manual Approval", Screen: domain.ScreenMarketingRequest, Permission: domain.PermManualApproval,
		From: statuses(domain.StatusCEOPending), Kind: KindAnnotation,
	},
	{
		Name: ActionPrint, Label: "Print", Screen: domain.ScreenMarketingRequest, Permission: domain.PermPrint,
		From: statuses(domain.StatusCEOPending), Kind: KindReadOnly,
	},
	{
		Name: ActionViewHistory, Label: "History", Screen: domain.ScreenMarketingRequest, Permission: domain.PermRead,
		Kind: KindReadOnly,
	},
}

// RequestScreens are the screens that show request boards.
var RequestScreens = []domain.Screen{
	domain.ScreenShopboardRequest,
	domain.ScreenVendorRequest,
	domain.ScreenMarketingRequest,
}

// ActionRules returns the rules of one screen in table order.
func ActionRules(screen domain.Screen) []ActionRule {
	var out []ActionRule
	for _, r := range actionRules {
		if r.Screen == screen {
			out = append(out, r)
		}
	}
	return out
}

func findRule(screen domain.Screen, name ActionName) (ActionRule, bool) {
	for _, r := range actionRules {
		if r.Screen == screen && r.Name == name {
			return r, true
		}
	}
	return ActionRule{}, false
}

// Action is an action as offered on one row.
type Action struct {
	Name           ActionName           `json:"name"`
	Label          string               `json:"label"`
	Kind           ActionKind           `json:"kind"`
	Target         domain.RequestStatus `json:"target,omitempty"`
	Enabled        bool                 `json:"enabled"`
	DisabledReason string               `json:"disabledReason,omitempty"`
	AcceptsComment bool                 `json:"acceptsComment"`
	RequiresVendor bool                 `json:"requiresVendor"`
	Vendors        []domain.Vendor      `json:"vendors,omitempty"`
}

// ActionInput is what the operator supplies with an action.
type ActionInput struct {
	VendorID domain.ID `json:"vendorId"`
	Comment  string    `json:"comment"`
}

func (r ActionRule) offeredIn(s domain.RequestStatus) bool {
	if len(r.From) == 0 {
		return true
	}
	s = s.Normalized()
	for _, f := range r.From {
		if f == s {
			return true
		}
	}
	return false
}

func (r ActionRule) allows(req *domain.ShopboardRequest, u *domain.User) bool {
	if !UserHasPermission(u, r.Screen, r.Permission) {
		return false
	}
	if !r.offeredIn(req.Status) {
		return false
	}
	return r.When == nil || r.When(req, u)
}

// AvailableActions lists the actions offered on req for u, in table order.
// vendors is the full vendor list; Assign is offered disabled when none
// serves the dealer's district.
func AvailableActions(screen domain.Screen, req *domain.ShopboardRequest, u *domain.User, vendors []domain.Vendor) []Action {
	out := []Action{}
	if req == nil {
		return out
	}
	for _, r := range ActionRules(screen) {
		if !r.allows(req, u) {
			continue
		}
		a := Action{
			Name:           r.Name,
			Label:          r.Label,
			Kind:           r.Kind,
			Target:         r.To,
			Enabled:        true,
			AcceptsComment: r.CommentType != "",
			RequiresVendor: r.RequiresVendor,
		}
		if r.RequiresVendor {
			a.Vendors = domain.MatchVendors(vendors, req.District())
			if len(a.Vendors) == 0 {
				a.Enabled = false
				a.DisabledReason = fmt.Sprintf("no vendor serves district %q", req.District())
			}
		}
		out = append(out, a)
	}
	return out
}

// Authorize checks that u may run action on req from screen and returns the
// matching rule. It returns *domain.ErrNotFound for an unknown action,
// *domain.ErrForbidden when the permission is missing or the When predicate
// fails, and *domain.ErrIllegalTransition when the status rules it out.
func Authorize(screen domain.Screen, name ActionName, req *domain.ShopboardRequest, u *domain.User) (ActionRule, error) {
	r, ok := findRule(screen, name)
	if !ok {
		return ActionRule{}, &domain.ErrNotFound{Resource: "action", ID: fmt.Sprintf("%s/%s", screen, name)}
	}
	if !UserHasPermission(u, r.Screen, r.Permission) {
		return r, &domain.ErrForbidden{Action: fmt.Sprintf("%s requires %s on %s", name, r.Permission, screen)}
	}
	if !r.offeredIn(req.Status) {
		return r, &domain.ErrIllegalTransition{Action: string(name), From: req.Status.Normalized(), To: r.To}
	}
	if r.When != nil && !r.When(req, u) {
		return r, &domain.ErrForbidden{Action: fmt.Sprintf("%s is not available to this user for request %s", name, req.ID)}
	}
	return r, nil
}

// PlanTransition validates a status transition and builds the PATCH body.
// No body is built when validation fails, so no call is made.
func PlanTransition(screen domain.Screen, name ActionName, req *domain.ShopboardRequest, u *domain.User, in ActionInput, vendors []domain.Vendor) (*domain.StatusPatch, error) {
	r, err := Authorize(screen, name, req, u)
	if err != nil {
		return nil, err
	}
	if r.Kind != KindTransition {
		return nil, &domain.ErrValidation{Field: "action", Message: fmt.Sprintf("%s is not a status transition", name)}
	}
	from := req.Status.Normalized()
	if !domain.CanTransition(from, r.To) {
		return nil, &domain.ErrIllegalTransition{Action: string(name), From: from, To: r.To}
	}

	patch := &domain.StatusPatch{Status: r.To}
	if u != nil {
		patch.UpdatedBy = u.ID
	}
	if r.AssignedVM != nil {
		vm := *r.AssignedVM
		patch.AssignedVM = &vm
	}

	if r.RequiresVendor {
		if in.VendorID.IsZero() {
			return nil, requiredField("vendor_id")
		}
		if !vendorIn(domain.MatchVendors(vendors, req.District()), in.VendorID) {
			return nil, &domain.ErrValidation{
				Field:   "vendor_id",
				Message: "does not serve the dealer's district",
				Fields:  map[string]string{"vendor_id": "does not serve the dealer's district"},
			}
		}
		vendorID := in.VendorID
		patch.VendorID = &vendorID
	}

	if r.CommentType != "" {
		if c := strings.TrimSpace(in.Comment); c != "" {
			patch.Comment = c
			patch.CommentType = r.CommentType
		}
	}
	return patch, nil
}

func vendorIn(vendors []domain.Vendor, id domain.ID) bool {
	for _, v := range vendors {
		if v.ID == id {
			return true
		}
	}
	return false
}
