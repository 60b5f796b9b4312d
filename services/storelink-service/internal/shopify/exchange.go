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

const (
	tokenExchangeGrantType     = "urn:ietf:params:oauth:grant-type:token-exchange"
	subjectTokenTypeIDToken    = "urn:ietf:params:oauth:token-type:id_token"
	requestedTypeOfflineAccess = "urn:shopify:params:oauth:token-type:offline-access-token"

	maxResponseBytes = 1 << 20
)

var ErrTokenExchangeFailed = errors.New("token exchange failed")

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type AccessToken struct {
	Token string
	Scope string
}

type ExchangeConfig struct {
	ClientID     string
	ClientSecret string
	HTTPClient   HTTPDoer
	// BaseURL overrides https://{shop}; used by tests.
	BaseURL func(shop string) string
}

// TokenExchanger trades a verified session token for an offline access token.
type TokenExchanger struct {
	clientID     string
	clientSecret string
	http         HTTPDoer
	baseURL      func(shop string) string
}

func NewTokenExchanger(cfg ExchangeConfig) *TokenExchanger {
	base := cfg.BaseURL
	if base == nil {
		base = shopBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenExchanger{
		clientID:     strings.TrimSpace(cfg.ClientID),
		clientSecret: strings.TrimSpace(cfg.ClientSecret),
		http:         client,
		baseURL:      base,
	}
}

func (c *TokenExchanger) Exchange(ctx context.Context, shop, sessionToken string) (AccessToken, error) {
	shop, err := NormalizeShopDomain(shop)
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}
	if strings.TrimSpace(sessionToken) == "" {
		return AccessToken{}, fmt.Errorf("%w: session token is required", ErrTokenExchangeFailed)
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", tokenExchangeGrantType)
	form.Set("subject_token", sessionToken)
	form.Set("subject_token_type", subjectTokenTypeIDToken)
	form.Set("requested_token_type", requestedTypeOfflineAccess)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL(shop)+"/admin/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return AccessToken{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: read response: %v", ErrTokenExchangeFailed, err)
	}

	var out struct {
		AccessToken      string `json:"access_token"`
		Scope            string `json:"scope"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &out); err != nil {
			return AccessToken{}, fmt.Errorf("%w: decode response (status %d): %v", ErrTokenExchangeFailed, resp.StatusCode, err)
		}
	}
	if resp.StatusCode != http.StatusOK || out.Error != "" {
		msg := out.ErrorDescription
		if msg == "" {
			msg = out.Error
		}
		return AccessToken{}, fmt.Errorf("%w: status %d: %s", ErrTokenExchangeFailed, resp.StatusCode, msg)
	}
	if out.AccessToken == "" {
		return AccessToken{}, fmt.Errorf("%w: response missing access token", ErrTokenExchangeFailed)
	}
	return AccessToken{Token: out.AccessToken, Scope: out.Scope}, nil
}

func shopBaseURL(shop string) string {
	return "https://" + shop
}
