package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
)

func TestRequestStatus_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.RequestStatus
		wantErr bool
	}{
		{`null`, domain.StatusUndecided, false},
		{`""`, domain.StatusUndecided, false},
		{`"Rfq"`, domain.StatusRfq, false},
		{`"quotation sent"`, domain.StatusQuotationSent, false},
		{`"rfq"`, domain.StatusRfq, false},
		{`" rfq "`, domain.StatusRfq, false},
		{`"RFQ"`, domain.StatusRfq, false},
		{`"Processing"`, domain.StatusProcessing, false},
		{`"  "`, domain.StatusUndecided, false},
		{`"approved"`, "", true},
		{`42`, "", true},
	}
	for _, tt := range tests {
		var s domain.RequestStatus
		err := json.Unmarshal([]byte(tt.in), &s)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got %q", tt.in, s)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.in, err)
		}
		if s != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.in, tt.want, s)
		}
	}
}

func TestParseRequestStatus_Canonical(t *testing.T) {
	for _, in := range []string{"Under_Review", " under_review", "UNDER_REVIEW "} {
		got, err := domain.ParseRequestStatus(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != domain.StatusUnderReview {
			t.Errorf("%q: expected %q, got %q", in, domain.StatusUnderReview, got)
		}
	}
}

func TestRequestStatus_AreaHeadLabel(t *testing.T) {
	if got := domain.StatusQuotationSent.AreaHeadLabel(); got != "quotation received" {
		t.Errorf("expected 'quotation received', got %q", got)
	}
	if got := domain.StatusInvoiceSent.AreaHeadLabel(); got != "Invoice Received" {
		t.Errorf("expected 'Invoice Received', got %q", got)
	}
	if got := domain.RequestStatus("").AreaHeadLabel(); got != "not decided" {
		t.Errorf("expected 'not decided', got %q", got)
	}
}

func TestCanTransition(t *testing.T) {
	legal := [][2]domain.RequestStatus{
		{domain.StatusUndecided, domain.StatusProcessing},
		{"", domain.StatusRfq},
		{domain.StatusProcessing, domain.StatusProcessing},
		{domain.StatusProcessing, domain.StatusReviewRequested},
		{domain.StatusRfqNotAccepted, domain.StatusProcessing},
		{domain.StatusReviewRequested, domain.StatusUndecided},
		{domain.StatusRfq, domain.StatusQuotationSent},
		{domain.StatusRfq, domain.StatusRfqNotAccepted},
		{domain.StatusQuotationSent, domain.StatusUnderReview},
	}
	for _, p := range legal {
		if !domain.CanTransition(p[0], p[1]) {
			t.Errorf("expected %q -> %q to be legal", p[0], p[1])
		}
	}

	illegal := [][2]domain.RequestStatus{
		{domain.StatusRfq, domain.StatusPaymentReleased},
		{domain.StatusRfq, domain.StatusProcessing},
		{domain.StatusUnderReview, domain.StatusCEOPending},
		{domain.StatusCEOPending, domain.StatusInvoiceSent},
		{domain.StatusPaymentReleased, domain.StatusUndecided},
	}
	for _, p := range illegal {
		if domain.CanTransition(p[0], p[1]) {
			t.Errorf("expected %q -> %q to be illegal", p[0], p[1])
		}
	}
}

func TestNextStatuses_IsCopy(t *testing.T) {
	next := domain.NextStatuses(domain.StatusRfq)
	if len(next) != 2 {
		t.Fatalf("expected 2 statuses, got %v", next)
	}
	next[0] = domain.StatusPaymentReleased
	if domain.CanTransition(domain.StatusRfq, domain.StatusPaymentReleased) {
		t.Error("mutating the result changed the transition table")
	}
}
