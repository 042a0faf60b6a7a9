package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Shopboard request: the workflow entity
// ============================================================

// CommentType tags a comment with the role that wrote it.
type CommentType string

const (
	CommentAreaHead  CommentType = "areahead"
	CommentVendor    CommentType = "vendor"
	CommentMarketing CommentType = "marketing"
)

// RequestItem is a single board in a request.
// PricePerSqft is a form input only; the backend stores Price.
type RequestItem struct {
	ID            ID       `json:"id,omitempty"`
	RequestTypeID ID       `json:"request_type_id" validate:"required"`
	RequestType   string   `json:"request_type,omitempty"`
	Width         float64  `json:"width" validate:"gt=0"`
	Height        float64  `json:"height" validate:"gt=0"`
	PricePerSqft  *float64 `json:"price_per_sqft,omitempty"`
	Price         float64  `json:"price"`
}

// Comment is one message attached to a request.
type Comment struct {
	ID        ID          `json:"id,omitempty"`
	Author    string      `json:"author"`
	UserID    ID          `json:"user_id,omitempty"`
	Text      string      `json:"comment"`
	Type      CommentType `json:"comment_type"`
	CreatedAt time.Time   `json:"created_at"`
}

// ActiveApproval is one approver still required while under_review.
type ActiveApproval struct {
	UserID ID `json:"user_id"`
}

// DealerRef is the dealer embedded in a request row.
type DealerRef struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	District string `json:"district"`
}

// ShopboardRequest is a dealer's request for a replacement shop board.
type ShopboardRequest struct {
	ID                   ID               `json:"id"`
	DealerID             ID               `json:"dealer_id"`
	Dealer               *DealerRef       `json:"dealer,omitempty"`
	Items                []RequestItem    `json:"request_items"`
	WarrantyStatusID     ID               `json:"warranty_status_id"`
	ReasonForReplacement string           `json:"reason_for_replacement"`
	LastInstallationDate string           `json:"last_installation_date"`
	VendorID             *ID              `json:"vendor_id"`
	AssignedVM           int              `json:"assigned_vm"`
	Status               RequestStatus    `json:"status"`
	TotalCost            decimal.Decimal  `json:"total_cost"`
	SitePhotos           []string         `json:"site_photos"`
	OldBoardPhotos       []string         `json:"old_board_photos"`
	SurveyForms          []string         `json:"survey_forms"`
	Invoice              json.RawMessage  `json:"invoice,omitempty"`
	Comments             []Comment        `json:"comments"`
	ActiveApprovals      []ActiveApproval `json:"activeApprovals"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// District returns the dealer's district, or "" when the dealer is unknown.
func (r *ShopboardRequest) District() string {
	if r == nil || r.Dealer == nil {
		return ""
	}
	return r.Dealer.District
}

// HasActiveApprover reports whether userID is still required to approve.
func (r *ShopboardRequest) HasActiveApprover(userID ID) bool {
	if r == nil || userID.IsZero() {
		return false
	}
	for _, a := range r.ActiveApprovals {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// CommentsOfType returns the request comments written by one role, in order.
func (r *ShopboardRequest) CommentsOfType(t CommentType) []Comment {
	var out []Comment
	for _, c := range r.Comments {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// ============================================================
// Pricing
// ============================================================

// ItemPrice returns width × height × price_per_sqft when a per-sqft price
// is supplied, and the stored price otherwise.
func ItemPrice(item RequestItem) decimal.Decimal {
	if item.PricePerSqft == nil {
		return decimal.NewFromFloat(item.Price)
	}
	return decimal.NewFromFloat(item.Width).
		Mul(decimal.NewFromFloat(item.Height)).
		Mul(decimal.NewFromFloat(*item.PricePerSqft))
}

// PriceItems returns a copy of items with every Price derived, and the total
// cost rounded to two decimals.
func PriceItems(items []RequestItem) ([]RequestItem, decimal.Decimal) {
	priced := make([]RequestItem, len(items))
	total := decimal.Zero
	for i, item := range items {
		p := ItemPrice(item).Round(2)
		item.Price = p.InexactFloat64()
		priced[i] = item
		total = total.Add(p)
	}
	return priced, total.Round(2)
}

// TotalCost is the sum of the derived item prices.
func TotalCost(items []RequestItem) decimal.Decimal {
	_, total := PriceItems(items)
	return total
}

// ============================================================
// Edits, patches and annotations sent to the backend
// ============================================================

// StatusPatch is the body of PATCH /api/shopboard-requests/:id.
type StatusPatch struct {
	Status      RequestStatus `json:"status"`
	VendorID    *ID           `json:"vendor_id,omitempty"`
	AssignedVM  *int          `json:"assigned_vm,omitempty"`
	Comment     string        `json:"comment,omitempty"`
	CommentType CommentType   `json:"comment_type,omitempty"`
	UpdatedBy   ID            `json:"updated_by,omitempty"`
}

// FileUpload is a raw file attached to a multipart edit.
type FileUpload struct {
	FileName    string
	ContentType string
	Content     []byte
}

// RequestEdit is the multipart edit of a request's details and pricing.
type RequestEdit struct {
	DealerID               ID              `json:"dealer_id" validate:"required"`
	Items                  []RequestItem   `json:"request_items" validate:"required,min=1,dive"`
	WarrantyStatusID       ID              `json:"warranty_status_id" validate:"required"`
	ReasonForReplacement   string          `json:"reason_for_replacement"`
	LastInstallationDate   string          `json:"last_installation_date"`
	ExistingSitePhotos     []string        `json:"existing_site_photos"`
	ExistingOldBoardPhotos []string        `json:"existing_old_board_photos"`
	SitePhotos             []FileUpload    `json:"-"`
	OldBoardPhotos         []FileUpload    `json:"-"`
	TotalCost              decimal.Decimal `json:"total_cost"`
}

// ManualApproval records a justification, and optionally a supporting file,
// against a ceo_pending request.
type ManualApproval struct {
	Justification string      `json:"justification" validate:"required"`
	File          *FileUpload `json:"-"`
}

// NewComment is the body of POST /api/comments.
type NewComment struct {
	RequestID   ID          `json:"request_id"`
	Comment     string      `json:"comment" validate:"required"`
	CommentType CommentType `json:"comment_type"`
}

// RequestFilter narrows the request list.
type RequestFilter struct {
	Status   RequestStatus
	VendorID ID
}

// ============================================================
// Invoice metadata and file references
// ============================================================

// Invoice is the nested invoice metadata of a request.
type Invoice struct {
	Number   string   `json:"invoice_number"`
	Date     string   `json:"invoice_date"`
	Amount   float64  `json:"amount"`
	Files    []string `json:"invoice_files"`
	Receipts []string `json:"receipt_files"`
}

// ParseInvoice decodes invoice metadata that may arrive either as an object or
// as a JSON-encoded string. It returns false for missing or malformed data.
func ParseInvoice(raw json.RawMessage) (*Invoice, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, false
		}
		raw = []byte(strings.TrimSpace(inner))
		if len(raw) == 0 {
			return nil, false
		}
	}
	var inv Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, false
	}
	return &inv, true
}

// ResolveFileURL turns a server-relative path into an absolute URL.
// Absolute URLs are returned unchanged. A bare file name (no slash) is a
// legacy reference and is looked up under /uploads/<category>/.
func ResolveFileURL(baseURL, category, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := strings.TrimRight(baseURL, "/")
	if !strings.Contains(path, "/") && category != "" {
		return base + "/uploads/" + category + "/" + path
	}
	return base + "/" + strings.TrimLeft(path, "/")
}
