package shopify

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const shopDomainSuffix = ".myshopify.com"

// NormalizeShopDomain lower-cases raw and strips any scheme, port or trailing
// slash. Bare handles get the platform suffix appended.
func NormalizeShopDomain(raw string) (string, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return "", fmt.Errorf("shop domain is required")
	}
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", err
		}
		s = u.Host
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimSuffix(s, "/")
	if s == "" || strings.ContainsAny(s, "/?#@ ") {
		return "", fmt.Errorf("invalid shop domain %q", raw)
	}
	if !strings.Contains(s, ".") {
		s += shopDomainSuffix
	}
	if !strings.HasSuffix(s, shopDomainSuffix) || s == shopDomainSuffix[1:] {
		return "", fmt.Errorf("shop domain must end with %q", shopDomainSuffix)
	}
	return s, nil
}
