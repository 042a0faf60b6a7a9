package domain

import "strings"

// ============================================================
// Reference / lookup data
// ============================================================

// Vendor is a shop board vendor serving one region.
type Vendor struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"vendor_code"`
	Region string `json:"region"`
}

// Dealer is a paint dealer.
type Dealer struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"dealer_code"`
	District string `json:"district"`
}

// Region is a sales region.
type Region struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// RequestType is a kind of board that can be requested.
type RequestType struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// WarrantyStatus describes the warranty position of the old board.
type WarrantyStatus struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// SAPUser is a user record mirrored from SAP.
type SAPUser struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Email string `json:"email"`
}

// SAPVendor is a vendor record mirrored from SAP.
type SAPVendor struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Code string `json:"vendor_code"`
}

// MatchVendors returns the vendors whose region matches district, compared
// case-insensitively as a substring in either direction. Empty values never match.
func MatchVendors(vendors []Vendor, district string) []Vendor {
	d := strings.ToLower(strings.TrimSpace(district))
	if d == "" {
		return nil
	}
	var out []Vendor
	for _, v := range vendors {
		r := strings.ToLower(strings.TrimSpace(v.Region))
		if r == "" {
			continue
		}
		if strings.Contains(r, d) || strings.Contains(d, r) {
			out = append(out, v)
		}
	}
	return out
}

// HistoryLookups resolves ids in audit snapshots to display names.
type HistoryLookups struct {
	Vendors          []Vendor
	Dealers          []Dealer
	WarrantyStatuses []WarrantyStatus
}
