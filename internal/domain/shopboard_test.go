package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
)

func ptr(f float64) *float64 { return &f }

func TestTotalCost(t *testing.T) {
	items := []domain.RequestItem{
		{Width: 10, Height: 5, PricePerSqft: ptr(2)},
		{Width: 4, Height: 4, PricePerSqft: ptr(3)},
	}
	if got := domain.TotalCost(items).StringFixed(2); got != "148.00" {
		t.Errorf("expected 148.00, got %s", got)
	}
}

func TestPriceItems_KeepsStoredPrice(t *testing.T) {
	items := []domain.RequestItem{
		{Width: 3, Height: 3, Price: 45.5},
		{Width: 1.5, Height: 2.5, PricePerSqft: ptr(10)},
	}
	priced, total := domain.PriceItems(items)
	if priced[0].Price != 45.5 {
		t.Errorf("expected stored price 45.5, got %v", priced[0].Price)
	}
	if priced[1].Price != 37.5 {
		t.Errorf("expected derived price 37.5, got %v", priced[1].Price)
	}
	if total.StringFixed(2) != "83.00" {
		t.Errorf("expected 83.00, got %s", total.StringFixed(2))
	}
	if items[1].Price != 0 {
		t.Error("input slice was modified")
	}
}

func TestParseInvoice(t *testing.T) {
	obj := json.RawMessage(`{"invoice_number":"INV-1","amount":1200.5,"invoice_files":["a.pdf"]}`)
	inv, ok := domain.ParseInvoice(obj)
	if !ok || inv.Number != "INV-1" || inv.Amount != 1200.5 {
		t.Fatalf("object form: got %+v, %v", inv, ok)
	}

	str := json.RawMessage(`"{\"invoice_number\":\"INV-2\"}"`)
	inv, ok = domain.ParseInvoice(str)
	if !ok || inv.Number != "INV-2" {
		t.Fatalf("string form: got %+v, %v", inv, ok)
	}

	for _, bad := range []string{``, `null`, `""`, `"{not json"`, `[1,2]`} {
		if _, ok := domain.ParseInvoice(json.RawMessage(bad)); ok {
			t.Errorf("%q: expected no data", bad)
		}
	}
}

func TestResolveFileURL(t *testing.T) {
	base := "https://files.example.com/"
	tests := []struct {
		category, path, want string
	}{
		{"site_photos", "https://cdn.example.com/x.jpg", "https://cdn.example.com/x.jpg"},
		{"site_photos", "/uploads/site_photos/x.jpg", "https://files.example.com/uploads/site_photos/x.jpg"},
		{"site_photos", "uploads/x.jpg", "https://files.example.com/uploads/x.jpg"},
		{"site_photos", "legacy.jpg", "https://files.example.com/uploads/site_photos/legacy.jpg"},
		{"", "legacy.jpg", "https://files.example.com/legacy.jpg"},
		{"site_photos", "  ", ""},
	}
	for _, tt := range tests {
		if got := domain.ResolveFileURL(base, tt.category, tt.path); got != tt.want {
			t.Errorf("ResolveFileURL(%q, %q) = %q, want %q", tt.category, tt.path, got, tt.want)
		}
	}
}

func TestShopboardRequest_Decode(t *testing.T) {
	raw := `{
		"id": 17,
		"dealer": {"id": 3, "name": "Colour Point", "district": "Pune"},
		"status": null,
		"total_cost": "148.00",
		"activeApprovals": [{"user_id": 9}],
		"request_items": [{"request_type_id": 1, "width": 10, "height": 5, "price": 100}]
	}`
	var r domain.ShopboardRequest
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.ID != "17" || r.Status != domain.StatusUndecided || r.District() != "Pune" {
		t.Errorf("unexpected request %+v", r)
	}
	if !r.HasActiveApprover("9") || r.HasActiveApprover("") {
		t.Error("active approver lookup is wrong")
	}
	if r.TotalCost.StringFixed(2) != "148.00" {
		t.Errorf("expected total 148.00, got %s", r.TotalCost)
	}
}

func TestShopboardRequest_CommentsOfType(t *testing.T) {
	r := domain.ShopboardRequest{Comments: []domain.Comment{
		{Text: "a", Type: domain.CommentVendor},
		{Text: "b", Type: domain.CommentAreaHead},
		{Text: "c", Type: domain.CommentVendor},
	}}
	got := r.CommentsOfType(domain.CommentVendor)
	if len(got) != 2 || got[0].Text != "a" || got[1].Text != "c" {
		t.Errorf("unexpected vendor comments %+v", got)
	}
}

func TestSortAuditLog(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.AuditLogEntry{
		{ID: "1", Action: "CREATE", ChangedAt: t0},
		{ID: "2", Action: domain.AuditActionCurrent, ChangedAt: t0},
		{ID: "3", Action: "UPDATE", ChangedAt: t0.Add(time.Hour)},
	}
	sorted := domain.SortAuditLog(entries)
	want := []domain.ID{"2", "3", "1"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, sorted[i].ID)
		}
	}
	if entries[0].ID != "1" {
		t.Error("input slice was reordered")
	}
}

func TestActor_UnmarshalJSON(t *testing.T) {
	tests := map[string]string{
		`"asha"`:                             "asha",
		`{"id": 4, "username": "ravi"}`:      "ravi",
		`{"name": "Meera", "username": "m"}`: "Meera",
		`null`:                               "",
	}
	for in, want := range tests {
		var a domain.Actor
		if err := json.Unmarshal([]byte(in), &a); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if a.Name != want {
			t.Errorf("%s: expected %q, got %q", in, want, a.Name)
		}
	}
}

func TestMatchVendors(t *testing.T) {
	vendors := []domain.Vendor{
		{ID: "1", Region: "Pune"},
		{ID: "2", Region: "pune rural"},
		{ID: "3", Region: ""},
		{ID: "4", Region: "Delhi"},
	}
	got := domain.MatchVendors(vendors, "PUNE")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("unexpected matches %+v", got)
	}
	if got := domain.MatchVendors(vendors, " "); got != nil {
		t.Errorf("empty district matched %+v", got)
	}
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := map[string]domain.ID{`"abc"`: "abc", `12`: "12", `null`: ""}
	for in, want := range tests {
		var id domain.ID
		if err := json.Unmarshal([]byte(in), &id); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if id != want {
			t.Errorf("%s: expected %q, got %q", in, want, id)
		}
	}
	var id domain.ID
	if err := json.Unmarshal([]byte(`{}`), &id); err == nil {
		t.Error("expected error for object id")
	}
}
