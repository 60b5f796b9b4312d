package shopify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/storelink/libs/auth"
)

func TestNormalizeShopDomain(t *testing.T) {
	valid := map[string]string{
		"demo.myshopify.com":          "demo.myshopify.com",
		" Demo.MyShopify.com/ ":       "demo.myshopify.com",
		"https://demo.myshopify.com/": "demo.myshopify.com",
		"demo":                        "demo.myshopify.com",
		"demo.myshopify.com:443":      "demo.myshopify.com",
	}
	for in, want := range valid {
		got, err := NormalizeShopDomain(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "evil.com", "myshopify.com", "a.myshopify.com/x", "user@evil.myshopify.com"} {
		_, err := NormalizeShopDomain(in)
		assert.Error(t, err, in)
	}
}

type exchangeRequest struct {
	path string
	form url.Values
}

func newExchangeServer(t *testing.T, status int, body string) (*httptest.Server, *exchangeRequest) {
	t.Helper()
	seen := &exchangeRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		seen.path = r.URL.Path
		seen.form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestTokenExchange(t *testing.T) {
	srv, seen := newExchangeServer(t, http.StatusOK, `{"access_token":"shpat_123","scope":"read_products"}`)
	ex := NewTokenExchanger(ExchangeConfig{
		ClientID:     "key",
		ClientSecret: "secret",
		HTTPClient:   srv.Client(),
		BaseURL:      func(string) string { return srv.URL },
	})

	tok, err := ex.Exchange(context.Background(), "demo.myshopify.com", "session-jwt")
	require.NoError(t, err)
	assert.Equal(t, "shpat_123", tok.Token)
	assert.Equal(t, "/admin/oauth/access_token", seen.path)
	assert.Equal(t, tokenExchangeGrantType, seen.form.Get("grant_type"))
	assert.Equal(t, "session-jwt", seen.form.Get("subject_token"))
	assert.Equal(t, requestedTypeOfflineAccess, seen.form.Get("requested_token_type"))
	assert.Equal(t, "key", seen.form.Get("client_id"))
}

func TestTokenExchangeErrors(t *testing.T) {
	srv, _ := newExchangeServer(t, http.StatusBadRequest, `{"error":"invalid_subject_token","error_description":"expired"}`)
	ex := NewTokenExchanger(ExchangeConfig{HTTPClient: srv.Client(), BaseURL: func(string) string { return srv.URL }})

	_, err := ex.Exchange(context.Background(), "demo.myshopify.com", "jwt")
	assert.ErrorIs(t, err, ErrTokenExchangeFailed)
	assert.Contains(t, err.Error(), "expired")

	_, err = ex.Exchange(context.Background(), "evil.com", "jwt")
	assert.ErrorIs(t, err, ErrTokenExchangeFailed)
	_, err = ex.Exchange(context.Background(), "demo.myshopify.com", " ")
	assert.ErrorIs(t, err, ErrTokenExchangeFailed)
}

func TestAdminGetCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Shopify-Access-Token") != "shpat_123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/admin/api/2024-01/customers/7.json":
			_, _ = io.WriteString(w, `{"customer":{"id":7,"email":"a@b.c"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewAdminClient(srv.Client(), "2024-01")
	c.baseURL = func(string) string { return srv.URL }

	customer, err := c.GetCustomer(context.Background(), "demo.myshopify.com", "shpat_123", "7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"email":"a@b.c"}`, string(customer))

	_, err = c.GetCustomer(context.Background(), "demo.myshopify.com", "shpat_123", "8")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetCustomer(context.Background(), "demo.myshopify.com", "wrong", "7")
	assert.ErrorIs(t, err, ErrAdminRequest)
}

type stubExchanger struct {
	shop string
	err  error
}

func (s *stubExchanger) Exchange(_ context.Context, shop, _ string) (AccessToken, error) {
	s.shop = shop
	if s.err != nil {
		return AccessToken{}, s.err
	}
	return AccessToken{Token: "offline-" + shop}, nil
}

func signedToken(t *testing.T, secret, apiKey, shop string) string {
	t.Helper()
	now := time.Now()
	tok, err := auth.SignSessionToken(auth.SessionClaims{
		Dest: "https://" + shop,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://" + shop + "/admin",
			Audience:  jwt.ClaimStrings{apiKey},
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}, secret)
	require.NoError(t, err)
	return tok
}

func TestAuthenticator(t *testing.T) {
	verifier := auth.NewSessionTokenVerifier("secret", "api-key")
	ex := &stubExchanger{}
	a := NewAuthenticator(verifier, ex)
	token := signedToken(t, "secret", "api-key", "demo.myshopify.com")

	r := httptest.NewRequest(http.MethodGet, "/app", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	s, err := a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, Session{Shop: "demo.myshopify.com", AccessToken: "offline-demo.myshopify.com"}, s)

	r = httptest.NewRequest(http.MethodGet, "/app?id_token="+token, nil)
	_, err = a.Authenticate(r)
	require.NoError(t, err)

	r = httptest.NewRequest(http.MethodGet, "/app", nil)
	_, err = a.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	r = httptest.NewRequest(http.MethodGet, "/app?id_token="+signedToken(t, "other", "api-key", "demo.myshopify.com"), nil)
	_, err = a.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ex.err = errors.New("exchange down")
	r = httptest.NewRequest(http.MethodGet, "/app?id_token="+token, nil)
	_, err = a.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, err, ex.err)
}
