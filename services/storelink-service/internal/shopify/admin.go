package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var (
	ErrAdminRequest = errors.New("admin api request failed")
	ErrNotFound     = errors.New("admin resource not found")
)

// AdminClient calls the merchant's Admin REST API with an offline token.
type AdminClient struct {
	http    HTTPDoer
	version string
	baseURL func(shop string) string
}

func NewAdminClient(client HTTPDoer, version string) *AdminClient {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(version) == "" {
		version = "2023-10"
	}
	return &AdminClient{http: client, version: version, baseURL: shopBaseURL}
}

// GetCustomer returns the raw "customer" object of the customer resource.
func (c *AdminClient) GetCustomer(ctx context.Context, shop, accessToken, customerID string) (json.RawMessage, error) {
	shop, err := NormalizeShopDomain(shop)
	if err != nil {
		return nil, err
	}
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, fmt.Errorf("customer id is required")
	}

	endpoint := fmt.Sprintf("%s/admin/api/%s/customers/%s.json", c.baseURL(shop), c.version, url.PathEscape(customerID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdminRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrAdminRequest, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrAdminRequest, resp.StatusCode)
	}

	var out struct {
		Customer json.RawMessage `json:"customer"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAdminRequest, err)
	}
	if len(out.Customer) == 0 {
		return nil, ErrNotFound
	}
	return out.Customer, nil
}
