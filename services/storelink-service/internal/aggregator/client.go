// Package aggregator talks to the external store aggregation service that
// ingests a merchant's catalogue once onboarding starts.
package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var ErrCreateStore = errors.New("aggregator createStore failed")

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type CreateStoreRequest struct {
	AccessToken string   `json:"accessToken"`
	StoreURL    string   `json:"storeUrl"`
	Products    []string `json:"products"`
}

type Client struct {
	baseURL string
	http    HTTPDoer
}

func NewClient(baseURL string, client HTTPDoer) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"), http: client}
}

func (c *Client) CreateStore(ctx context.Context, in CreateStoreRequest) error {
	if in.Products == nil {
		in.Products = []string{}
	}
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/shopify/createStore", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%w: status %d: %s", ErrCreateStore, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
