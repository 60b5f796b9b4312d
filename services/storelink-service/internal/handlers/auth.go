package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/aggregator"
)

// AppEntry handles /auth/callback and /app. The merchant is sent on to the
// external onboarding site, carrying an offline token when authentication
// succeeded.
func (h *Handler) AppEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.deps.Auth.Authenticate(r)
	if err != nil {
		shop := strings.TrimSpace(r.URL.Query().Get("shop"))
		if shop == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing shop parameter"})
			return
		}
		h.logger.Warn("app entry without session, redirecting with shop only", "shop_domain", shop, "path", r.URL.Path, "err", err)
		h.redirectToOnboarding(w, r, shop, "")
		return
	}

	if err := h.deps.Stores.CreateStore(r.Context(), aggregator.CreateStoreRequest{
		AccessToken: sess.AccessToken,
		StoreURL:    sess.Shop,
	}); err != nil {
		h.logger.Error("createStore failed", "shop_domain", sess.Shop, "err", err)
	}
	h.logger.Info("app entry authenticated", "shop_domain", sess.Shop, "path", r.URL.Path)
	h.redirectToOnboarding(w, r, sess.Shop, sess.AccessToken)
}

func (h *Handler) redirectToOnboarding(w http.ResponseWriter, r *http.Request, shop, accessToken string) {
	q := url.Values{}
	q.Set("shop", shop)
	if accessToken != "" {
		q.Set("accessToken", accessToken)
	}
	target := strings.TrimRight(h.cfg.OnboardingURL, "/") + "/?" + q.Encode()

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	http.Redirect(w, r, target, http.StatusFound)
}
