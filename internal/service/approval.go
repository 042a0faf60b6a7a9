package service

import (
	"fmt"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
)

// ApprovalDecision is an approver's vote on an under_review request.
type ApprovalDecision string

const (
	DecisionApprove ApprovalDecision = "approve"
	DecisionReject  ApprovalDecision = "reject"
)

// ApprovalState is the approval chain as seen by one user.
type ApprovalState struct {
	UnderReview    bool `json:"underReview"`
	IsApprover     bool `json:"isApprover"`
	Pending        int  `json:"pending"`
	IsLastApprover bool `json:"isLastApprover"`
}

// EvaluateApproval reads the approval chain of req for userID. The chain is
// owned by the backend; this only reports it.
func EvaluateApproval(req *domain.ShopboardRequest, userID domain.ID) ApprovalState {
	if req == nil {
		return ApprovalState{}
	}
	st := ApprovalState{
		UnderReview: req.Status.Normalized() == domain.StatusUnderReview,
		Pending:     len(req.ActiveApprovals),
	}
	st.IsApprover = st.UnderReview && req.HasActiveApprover(userID)
	st.IsLastApprover = st.IsApprover && st.Pending == 1
	return st
}

// ApprovalOutcome is the status the backend is expected to move to after a
// decision. It is shown to the operator and never written by the client.
type ApprovalOutcome struct {
	Decision    ApprovalDecision     `json:"decision"`
	Predicted   domain.RequestStatus `json:"predicted"`
	Description string               `json:"description"`
}

// PredictApprovalOutcome returns what the backend will do with userID's
// decision. The last approver's approval moves the request to ceo_pending;
// any rejection sends it back to quotation sent.
func PredictApprovalOutcome(req *domain.ShopboardRequest, userID domain.ID, d ApprovalDecision) (ApprovalOutcome, error) {
	st := EvaluateApproval(req, userID)
	if !st.UnderReview {
		return ApprovalOutcome{}, &domain.ErrIllegalTransition{Action: string(d), From: req.Status.Normalized()}
	}
	if !st.IsApprover {
		return ApprovalOutcome{}, &domain.ErrForbidden{Action: fmt.Sprintf("user %s is not an active approver of request %s", userID, req.ID)}
	}

	switch d {
	case DecisionApprove:
		if st.IsLastApprover {
			return ApprovalOutcome{
				Decision:    d,
				Predicted:   domain.StatusCEOPending,
				Description: "last approval: the request moves to CEO approval",
			}, nil
		}
		return ApprovalOutcome{
			Decision:    d,
			Predicted:   domain.StatusUnderReview,
			Description: fmt.Sprintf("%d approval(s) still pending after this one", st.Pending-1),
		}, nil
	case DecisionReject:
		return ApprovalOutcome{
			Decision:    d,
			Predicted:   domain.StatusQuotationSent,
			Description: "the request goes back to quotation sent",
		}, nil
	}
	return ApprovalOutcome{}, &domain.ErrValidation{Field: "decision", Message: fmt.Sprintf("unknown decision %q", d)}
}

func decisionFor(name ActionName) ApprovalDecision {
	if name == ActionApprovalReject {
		return DecisionReject
	}
	return DecisionApprove
}
