package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const requestsPath = "/api/shopboard-requests"

// Multipart field names expected by PUT /api/shopboard-requests/:id.
// The site photo field name is spelled the way the backend spells it.
const (
	fieldSitePhotos     = "site_photo_attachement"
	fieldOldBoardPhotos = "old_board_photo_attachment"
)

// ListRequests fetches the request list. Records that fail to decode are
// logged and skipped so one bad row never blanks the table.
func (c *Client) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.ShopboardRequest, error) {
	ctx, span := tracer.Start(ctx, "Client.ListRequests")
	defer span.End()

	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if !filter.VendorID.IsZero() {
		q.Set("vendor_id", filter.VendorID.String())
	}
	endpoint := requestsPath
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var records []json.RawMessage
	if err := c.fetchData(ctx, endpoint, RequestOptions{}, &records); err != nil {
		return nil, err
	}

	out := make([]domain.ShopboardRequest, 0, len(records))
	for i, rec := range records {
		var r domain.ShopboardRequest
		if err := json.Unmarshal(rec, &r); err != nil {
			c.logger.Warn("skipping malformed request record",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		out = append(out, r)
	}
	span.SetAttributes(attribute.Int("requests.count", len(out)))
	return out, nil
}

// GetRequest fetches one request.
func (c *Client) GetRequest(ctx context.Context, id domain.ID) (*domain.ShopboardRequest, error) {
	ctx, span := tracer.Start(ctx, "Client.GetRequest")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", id.String()))

	var r domain.ShopboardRequest
	found := false
	if err := c.fetchData(ctx, requestPath(id), RequestOptions{}, &jsonPresence{target: &r, found: &found}); err != nil {
		return nil, err
	}
	if !found {
		return nil, &domain.ErrNotFound{Resource: "shopboard request", ID: id.String()}
	}
	return &r, nil
}

// PatchRequest applies a status transition.
func (c *Client) PatchRequest(ctx context.Context, id domain.ID, patch *domain.StatusPatch) error {
	ctx, span := tracer.Start(ctx, "Client.PatchRequest")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.id", id.String()),
		attribute.String("request.status", string(patch.Status)),
	)
	return c.Patch(ctx, requestPath(id), patch, nil)
}

// EditRequest replaces a request's details and items with a multipart PUT.
func (c *Client) EditRequest(ctx context.Context, id domain.ID, edit *domain.RequestEdit) error {
	ctx, span := tracer.Start(ctx, "Client.EditRequest")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", id.String()))

	body, contentType, err := encodeEdit(edit)
	if err != nil {
		return err
	}
	return c.Upload(ctx, http.MethodPut, requestPath(id), body, contentType, nil)
}

// ApproveRequest records the current user's approval.
func (c *Client) ApproveRequest(ctx context.Context, id domain.ID, comment string) error {
	ctx, span := tracer.Start(ctx, "Client.ApproveRequest")
	defer span.End()
	return c.Post(ctx, requestPath(id)+"/approvals/approve", approvalBody(comment), nil)
}

// RejectApproval records the current user's rejection.
func (c *Client) RejectApproval(ctx context.Context, id domain.ID, comment string) error {
	ctx, span := tracer.Start(ctx, "Client.RejectApproval")
	defer span.End()
	return c.Post(ctx, requestPath(id)+"/approvals/reject", approvalBody(comment), nil)
}

// ManualApprove submits a manual approval with justification and optional file.
func (c *Client) ManualApprove(ctx context.Context, id domain.ID, approval *domain.ManualApproval) error {
	ctx, span := tracer.Start(ctx, "Client.ManualApprove")
	defer span.End()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("justification", approval.Justification); err != nil {
		return err
	}
	if approval.File != nil {
		if err := writeFile(w, "file", approval.File); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Upload(ctx, http.MethodPost, requestPath(id)+"/approvals/manual-approve", &buf, w.FormDataContentType(), nil)
}

// RequestLogs fetches the audit log of a request.
func (c *Client) RequestLogs(ctx context.Context, id domain.ID) ([]domain.AuditLogEntry, error) {
	ctx, span := tracer.Start(ctx, "Client.RequestLogs")
	defer span.End()

	var entries []domain.AuditLogEntry
	if err := c.fetchData(ctx, "/api/shopboard-logs/request/"+url.PathEscape(id.String()), RequestOptions{}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListComments fetches the comment thread of a request.
func (c *Client) ListComments(ctx context.Context, id domain.ID) ([]domain.Comment, error) {
	ctx, span := tracer.Start(ctx, "Client.ListComments")
	defer span.End()

	var comments []domain.Comment
	if err := c.fetchData(ctx, "/api/comments/request/"+url.PathEscape(id.String()), RequestOptions{}, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// MarketingComments fetches the marketing thread of a request.
func (c *Client) MarketingComments(ctx context.Context, id domain.ID) ([]domain.Comment, error) {
	ctx, span := tracer.Start(ctx, "Client.MarketingComments")
	defer span.End()

	var comments []domain.Comment
	if err := c.fetchData(ctx, "/api/comments/marketing/"+url.PathEscape(id.String()), RequestOptions{}, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// AddComment posts a comment.
func (c *Client) AddComment(ctx context.Context, comment *domain.NewComment) error {
	ctx, span := tracer.Start(ctx, "Client.AddComment")
	defer span.End()
	return c.Post(ctx, "/api/comments", comment, nil)
}

func requestPath(id domain.ID) string {
	return requestsPath + "/" + url.PathEscape(id.String())
}

func approvalBody(comment string) map[string]string {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return map[string]string{}
	}
	return map[string]string{"comment": comment}
}

func encodeEdit(edit *domain.RequestEdit) (*bytes.Buffer, string, error) {
	items, err := json.Marshal(edit.Items)
	if err != nil {
		return nil, "", fmt.Errorf("encode request items: %w", err)
	}
	sitePhotos, err := json.Marshal(nonNil(edit.ExistingSitePhotos))
	if err != nil {
		return nil, "", err
	}
	oldPhotos, err := json.Marshal(nonNil(edit.ExistingOldBoardPhotos))
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"dealer_id", edit.DealerID.String()},
		{"request_items", string(items)},
		{"warranty_status_id", edit.WarrantyStatusID.String()},
		{"reason_for_replacement", edit.ReasonForReplacement},
		{"last_installation_date", edit.LastInstallationDate},
		{"total_cost", edit.TotalCost.StringFixed(2)},
		{"existing_site_photos", string(sitePhotos)},
		{"existing_old_board_photos", string(oldPhotos)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	for i := range edit.SitePhotos {
		if err := writeFile(w, fieldSitePhotos, &edit.SitePhotos[i]); err != nil {
			return nil, "", err
		}
	}
	for i := range edit.OldBoardPhotos {
		if err := writeFile(w, fieldOldBoardPhotos, &edit.OldBoardPhotos[i]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, f *domain.FileUpload) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, escapeQuotes(f.FileName)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Content)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// jsonPresence decodes into target and records whether any data was present.
type jsonPresence struct {
	target any
	found  *bool
}

func (p *jsonPresence) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	*p.found = true
	return json.Unmarshal(b, p.target)
}
