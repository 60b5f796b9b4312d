package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/storelink/libs/auth"
)

var ErrUnauthenticated = errors.New("request is not authenticated")

// Session is an authenticated merchant: the shop and an offline access token for it.
type Session struct {
	Shop        string
	AccessToken string
}

type sessionTokenVerifier interface {
	Verify(token string) (*auth.SessionClaims, error)
}

type tokenExchanger interface {
	Exchange(ctx context.Context, shop, sessionToken string) (AccessToken, error)
}

// Authenticator turns an embedded-app request into a Session. The session
// token is read from the Authorization header or the id_token query parameter.
type Authenticator struct {
	verifier  sessionTokenVerifier
	exchanger tokenExchanger
}

func NewAuthenticator(verifier sessionTokenVerifier, exchanger tokenExchanger) *Authenticator {
	return &Authenticator{verifier: verifier, exchanger: exchanger}
}

func (a *Authenticator) Authenticate(r *http.Request) (Session, error) {
	raw := SessionTokenFromRequest(r)
	if raw == "" {
		return Session{}, fmt.Errorf("%w: no session token", ErrUnauthenticated)
	}
	claims, err := a.verifier.Verify(raw)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	shop, err := claims.ShopDomain()
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	tok, err := a.exchanger.Exchange(r.Context(), shop, raw)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return Session{Shop: shop, AccessToken: tok.Token}, nil
}

func SessionTokenFromRequest(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("id_token"))
}
