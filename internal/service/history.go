package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
)

// HistoryField is one rendered field of an audit snapshot. Attachment fields
// fill URLs, the approvals list fills Lines, everything else fills Value.
type HistoryField struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Value string   `json:"value,omitempty"`
	Lines []string `json:"lines,omitempty"`
	URLs  []string `json:"urls,omitempty"`
}

// HistoryItemChange is a rendered item-level change.
type HistoryItemChange struct {
	ItemID     domain.ID      `json:"itemId"`
	ChangeType string         `json:"changeType"`
	Fields     []HistoryField `json:"fields"`
}

// HistoryEntry is one rendered audit snapshot.
type HistoryEntry struct {
	ID        domain.ID           `json:"id,omitempty"`
	Action    string              `json:"action"`
	ChangedBy string              `json:"changedBy"`
	ChangedAt time.Time           `json:"changedAt"`
	Current   bool                `json:"current"`
	Fields    []HistoryField      `json:"fields"`
	Items     []HistoryItemChange `json:"items,omitempty"`
}

type fieldFormat int

const (
	formatGeneric fieldFormat = iota
	formatVendor
	formatDealer
	formatWarranty
	formatDate
	formatAttachments
	formatText
	formatApprovals
)

type trackedField struct {
	key      string
	label    string
	format   fieldFormat
	category string
}

// trackedFields fixes the display order of known main_changes keys. Unknown
// keys follow in lexical order.
var trackedFields = []trackedField{
	{key: "status", label: "Status", format: formatText},
	{key: "vendor_code", label: "Vendor", format: formatVendor},
	{key: "dealer_id", label: "Dealer", format: formatDealer},
	{key: "warranty_status_id", label: "Warranty Status", format: formatWarranty},
	{key: "reason_for_replacement", label: "Reason for Replacement", format: formatText},
	{key: "last_installation_date", label: "Last Installation Date", format: formatDate},
	{key: "total_cost", label: "Total Cost", format: formatGeneric},
	{key: "comment", label: "Comment", format: formatText},
	{key: "site_photos", label: "Site Photos", format: formatAttachments, category: "site_photos"},
	{key: "old_board_photos", label: "Old Board Photos", format: formatAttachments, category: "old_board_photos"},
	{key: "survey_forms", label: "Survey Forms", format: formatAttachments, category: "survey_forms"},
	{key: "invoice_files", label: "Invoice Files", format: formatAttachments, category: "invoices"},
	{key: "receipt_files", label: "Receipts", format: formatAttachments, category: "receipts"},
	{key: "invoice_date", label: "Invoice Date", format: formatDate},
	{key: "created_at", label: "Created", format: formatDate},
	{key: "updated_at", label: "Updated", format: formatDate},
	{key: "approvals", label: "Approvals", format: formatApprovals},
}

const historyDateLayout = "02 Jan 2006"

// HistoryRenderer turns a request's audit log into display entries.
type HistoryRenderer struct {
	fileBaseURL string
	lookups     domain.HistoryLookups
}

// NewHistoryRenderer creates a renderer. lookups may be partially empty, in
// which case ids are shown as-is.
func NewHistoryRenderer(fileBaseURL string, lookups domain.HistoryLookups) *HistoryRenderer {
	return &HistoryRenderer{fileBaseURL: fileBaseURL, lookups: lookups}
}

// Render orders the log (CURRENT first, then newest first) and renders every
// entry. The CURRENT entry shows only the fields that differ from the entry
// right after it; every other entry shows all of its fields.
func (h *HistoryRenderer) Render(entries []domain.AuditLogEntry) []HistoryEntry {
	sorted := domain.SortAuditLog(entries)
	out := make([]HistoryEntry, 0, len(sorted))
	for i, e := range sorted {
		var previous map[string]json.RawMessage
		diff := e.IsCurrent() && i+1 < len(sorted)
		if diff {
			previous = sorted[i+1].MainChanges
		}

		view := HistoryEntry{
			ID:        e.ID,
			Action:    e.Action,
			ChangedBy: e.ChangedBy.Name,
			ChangedAt: e.ChangedAt,
			Current:   e.IsCurrent(),
			Fields:    []HistoryField{},
		}
		for _, key := range orderedKeys(e.MainChanges) {
			value := e.MainChanges[key]
			if diff && !changed(value, previous, key) {
				continue
			}
			view.Fields = append(view.Fields, h.renderField(key, value))
		}
		for _, ic := range e.ItemChanges {
			item := HistoryItemChange{ItemID: ic.ItemID, ChangeType: ic.ChangeType, Fields: []HistoryField{}}
			for _, key := range orderedKeys(ic.Changes) {
				item.Fields = append(item.Fields, genericField(key, ic.Changes[key]))
			}
			view.Items = append(view.Items, item)
		}
		out = append(out, view)
	}
	return out
}

func orderedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, f := range trackedFields {
		if _, ok := m[f.key]; ok {
			keys = append(keys, f.key)
			seen[f.key] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// changed compares serialized values; a key missing from previous counts as
// changed.
func changed(value json.RawMessage, previous map[string]json.RawMessage, key string) bool {
	prev, ok := previous[key]
	if !ok {
		return true
	}
	return !bytes.Equal(canonicalJSON(value), canonicalJSON(prev))
}

// canonicalJSON re-encodes raw so that whitespace and object key order do not
// affect comparison.
func canonicalJSON(raw json.RawMessage) []byte {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return bytes.TrimSpace(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return bytes.TrimSpace(raw)
	}
	return b
}

func lookupTracked(key string) (trackedField, bool) {
	for _, f := range trackedFields {
		if f.key == key {
			return f, true
		}
	}
	return trackedField{}, false
}

func (h *HistoryRenderer) renderField(key string, raw json.RawMessage) HistoryField {
	f, ok := lookupTracked(key)
	if !ok {
		return genericField(key, raw)
	}
	out := HistoryField{Key: key, Label: f.label}
	switch f.format {
	case formatVendor:
		out.Value = h.vendorName(scalarString(raw))
	case formatDealer:
		out.Value = h.dealerName(scalarString(raw))
	case formatWarranty:
		out.Value = h.warrantyName(scalarString(raw))
	case formatDate:
		out.Value = formatDateValue(scalarString(raw))
	case formatAttachments:
		for _, p := range stringList(raw) {
			if u := domain.ResolveFileURL(h.fileBaseURL, f.category, p); u != "" {
				out.URLs = append(out.URLs, u)
			}
		}
	case formatApprovals:
		out.Lines = approvalLines(raw)
	default:
		out.Value = scalarString(raw)
	}
	return out
}

func genericField(key string, raw json.RawMessage) HistoryField {
	return HistoryField{Key: key, Label: key, Value: scalarString(raw)}
}

// scalarString renders strings unquoted, null as empty and anything else as
// compact JSON.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(canonicalJSON(raw))
}

// stringList accepts a JSON array of paths or a JSON string holding one.
func stringList(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil
	}
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "[") {
		if err := json.Unmarshal([]byte(encoded), &list); err == nil {
			return list
		}
		return nil
	}
	if encoded == "" {
		return nil
	}
	return []string{encoded}
}

var dateInputLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func formatDateValue(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(historyDateLayout)
		}
	}
	return s
}

type approvalMessage struct {
	Author   string `json:"author"`
	User     string `json:"user"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Comment  string `json:"comment"`
	Message  string `json:"message"`
	Text     string `json:"text"`
	Status   string `json:"status"`
}

func (m approvalMessage) line() string {
	author := firstNonEmpty(m.Author, m.Username, m.Name, m.User)
	text := firstNonEmpty(m.Comment, m.Message, m.Text, m.Status)
	if author == "" {
		return text
	}
	return fmt.Sprintf("%s: %s", author, text)
}

func approvalLines(raw json.RawMessage) []string {
	var msgs []approvalMessage
	if err := json.Unmarshal(raw, &msgs); err != nil {
		if s := scalarString(raw); s != "" {
			return []string{s}
		}
		return nil
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if l := m.line(); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (h *HistoryRenderer) vendorName(v string) string {
	for _, vendor := range h.lookups.Vendors {
		if vendor.Code == v || string(vendor.ID) == v {
			return vendor.Name
		}
	}
	return v
}

func (h *HistoryRenderer) dealerName(v string) string {
	for _, d := range h.lookups.Dealers {
		if string(d.ID) == v {
			return d.Name
		}
	}
	return v
}

func (h *HistoryRenderer) warrantyName(v string) string {
	for _, w := range h.lookups.WarrantyStatuses {
		if string(w.ID) == v {
			return w.Name
		}
	}
	return v
}
