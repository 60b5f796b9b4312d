package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/shopify"
)

type apiRequest struct {
	Shop       string          `json:"shop"`
	Action     string          `json:"action"`
	CustomerID json.RawMessage `json:"customerId"`
}

// AppAPI exposes the shop echo (GET) and session-scoped Admin calls (POST).
func (h *Handler) AppAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		shop := strings.TrimSpace(r.URL.Query().Get("shop"))
		if shop == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing shop parameter"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"shopDomain": shop})
	case http.MethodPost:
		h.appAction(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) appAction(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.Auth.Authenticate(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
		return
	}

	var req apiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON body"})
		return
	}
	if !sameShop(req.Shop, sess.Shop) {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "Shop mismatch"})
		return
	}

	switch req.Action {
	case "getCustomerInfo":
		customerID := rawID(req.CustomerID)
		if customerID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing customerId"})
			return
		}
		customer, err := h.deps.Admin.GetCustomer(r.Context(), sess.Shop, sess.AccessToken, customerID)
		switch {
		case errors.Is(err, shopify.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Customer not found"})
			return
		case err != nil:
			h.logger.Error("admin customer lookup failed", "shop_domain", sess.Shop, "err", err)
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": "Admin API request failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "customer": customer})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Unknown action"})
	}
}

// rawID accepts a JSON string or number.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func sameShop(a, b string) bool {
	na, err := shopify.NormalizeShopDomain(a)
	if err != nil {
		return false
	}
	nb, err := shopify.NormalizeShopDomain(b)
	return err == nil && na == nb
}
