package client

import (
	"context"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
)

// Reference data endpoints.
const (
	vendorsPath          = "/api/vendors"
	dealersPath          = "/api/dealers"
	regionsPath          = "/api/regions"
	requestTypesPath     = "/api/request-types"
	warrantyStatusesPath = "/api/warranty-statuses"
	sapUsersPath         = "/api/sap-users"
	sapVendorsPath       = "/api/sap/vendors"
)

func fetchList[T any](ctx context.Context, c *Client, span, endpoint string) ([]T, error) {
	ctx, s := tracer.Start(ctx, span)
	defer s.End()

	var out []T
	if err := c.fetchData(ctx, endpoint, RequestOptions{}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Vendors lists all vendors.
func (c *Client) Vendors(ctx context.Context) ([]domain.Vendor, error) {
	return fetchList[domain.Vendor](ctx, c, "Client.Vendors", vendorsPath)
}

// Dealers lists all dealers.
func (c *Client) Dealers(ctx context.Context) ([]domain.Dealer, error) {
	return fetchList[domain.Dealer](ctx, c, "Client.Dealers", dealersPath)
}

// Regions lists all regions.
func (c *Client) Regions(ctx context.Context) ([]domain.Region, error) {
	return fetchList[domain.Region](ctx, c, "Client.Regions", regionsPath)
}

// RequestTypes lists the board types.
func (c *Client) RequestTypes(ctx context.Context) ([]domain.RequestType, error) {
	return fetchList[domain.RequestType](ctx, c, "Client.RequestTypes", requestTypesPath)
}

// WarrantyStatuses lists the warranty statuses.
func (c *Client) WarrantyStatuses(ctx context.Context) ([]domain.WarrantyStatus, error) {
	return fetchList[domain.WarrantyStatus](ctx, c, "Client.WarrantyStatuses", warrantyStatusesPath)
}

// SAPUsers lists users mirrored from SAP.
func (c *Client) SAPUsers(ctx context.Context) ([]domain.SAPUser, error) {
	return fetchList[domain.SAPUser](ctx, c, "Client.SAPUsers", sapUsersPath)
}

// SAPVendors lists vendors mirrored from SAP.
func (c *Client) SAPVendors(ctx context.Context) ([]domain.SAPVendor, error) {
	return fetchList[domain.SAPVendor](ctx, c, "Client.SAPVendors", sapVendorsPath)
}
