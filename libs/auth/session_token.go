package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// SessionClaims are the claims of an embedded-app session token. Dest is the
// shop the merchant is working in; Iss is the shop admin URL.
type SessionClaims struct {
	Dest string `json:"dest"`
	Sid  string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// ShopDomain returns the lower-cased host of the dest claim.
func (c *SessionClaims) ShopDomain() (string, error) {
	return hostOf(c.Dest)
}

// SessionTokenVerifier checks HS256 session tokens signed with the app secret
// and addressed to the app's API key.
type SessionTokenVerifier struct {
	secret []byte
	apiKey string
	leeway time.Duration
	now    func() time.Time
}

func NewSessionTokenVerifier(secret, apiKey string) *SessionTokenVerifier {
	return &SessionTokenVerifier{
		secret: []byte(strings.TrimSpace(secret)),
		apiKey: strings.TrimSpace(apiKey),
		leeway: 5 * time.Second,
		now:    time.Now,
	}
}

func (v *SessionTokenVerifier) Verify(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(v.secret) == 0 {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.apiKey),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	dest, err := hostOf(claims.Dest)
	if err != nil {
		return nil, fmt.Errorf("%w: dest: %v", ErrInvalidToken, err)
	}
	iss, err := hostOf(claims.Issuer)
	if err != nil {
		return nil, fmt.Errorf("%w: iss: %v", ErrInvalidToken, err)
	}
	if iss != dest {
		return nil, fmt.Errorf("%w: issuer and destination shops differ", ErrInvalidToken)
	}
	return claims, nil
}

// SignSessionToken produces a token the verifier accepts. The platform issues
// real tokens; this exists for local tooling and tests.
func SignSessionToken(claims SessionClaims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func hostOf(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme != "https" || u.Hostname() == "" {
		return "", fmt.Errorf("%q is not an https url", raw)
	}
	return strings.ToLower(u.Hostname()), nil
}
