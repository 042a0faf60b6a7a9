package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RequestStatus is the lifecycle state of a shopboard request.
type RequestStatus string

const (
	StatusUndecided       RequestStatus = "not decided"
	StatusProcessing      RequestStatus = "processing"
	StatusRfq             RequestStatus = "Rfq"
	StatusRfqNotAccepted  RequestStatus = "rfq not accepted"
	StatusQuotationSent   RequestStatus = "quotation sent"
	StatusUnderReview     RequestStatus = "under_review"
	StatusCEOPending      RequestStatus = "ceo_pending"
	StatusInvoiceSent     RequestStatus = "invoice_sent"
	StatusPaymentReleased RequestStatus = "payment_released"
	StatusReviewRequested RequestStatus = "review requested"
)

var validRequestStatuses = []RequestStatus{
	StatusUndecided,
	StatusProcessing,
	StatusRfq,
	StatusRfqNotAccepted,
	StatusQuotationSent,
	StatusUnderReview,
	StatusCEOPending,
	StatusInvoiceSent,
	StatusPaymentReleased,
	StatusReviewRequested,
}

// String implements fmt.Stringer.
func (s RequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RequestStatus.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRequestStatus converts raw input into a RequestStatus, ignoring case
// and surrounding space. An empty value is the undecided state, as the
// backend stores it as null.
func ParseRequestStatus(value string) (RequestStatus, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return StatusUndecided, nil
	}
	for _, candidate := range validRequestStatuses {
		if strings.EqualFold(string(candidate), value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}

// UnmarshalJSON decodes null and "" as StatusUndecided and rejects unknown values.
func (s *RequestStatus) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = StatusUndecided
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseRequestStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Normalized maps the zero value to StatusUndecided.
func (s RequestStatus) Normalized() RequestStatus {
	if s == "" {
		return StatusUndecided
	}
	return s
}

// AreaHeadLabel is the label shown on the Area-Head list. Only the label
// changes; the stored value does not.
func (s RequestStatus) AreaHeadLabel() string {
	switch s.Normalized() {
	case StatusQuotationSent:
		return "quotation received"
	case StatusInvoiceSent:
		return "Invoice Received"
	default:
		return string(s.Normalized())
	}
}

// Status writes the client may request. Server-driven moves (under_review to
// ceo_pending when the approval list empties, and everything after it) are
// not in this table.
var allowedTransitions = map[RequestStatus][]RequestStatus{
	StatusUndecided:       {StatusProcessing, StatusRfq},
	StatusProcessing:      {StatusProcessing, StatusRfq, StatusReviewRequested},
	StatusRfqNotAccepted:  {StatusProcessing},
	StatusReviewRequested: {StatusUndecided},
	StatusRfq:             {StatusQuotationSent, StatusRfqNotAccepted},
	StatusQuotationSent:   {StatusUnderReview},
}

// NextStatuses returns the statuses a client may move from into.
func NextStatuses(from RequestStatus) []RequestStatus {
	return append([]RequestStatus(nil), allowedTransitions[from.Normalized()]...)
}

// CanTransition reports whether from -> to is a legal client-initiated write.
func CanTransition(from, to RequestStatus) bool {
	for _, candidate := range allowedTransitions[from.Normalized()] {
		if candidate == to {
			return true
		}
	}
	return false
}
