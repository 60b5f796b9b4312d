package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/storelink/libs/httpx"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/compliance"
)

const (
	headerTopic          = "X-Event-Topic"
	headerTopicAlias     = "X-Shopify-Topic"
	headerSignature      = "X-Signature-Sha256"
	headerSignatureAlias = "X-Shopify-Hmac-Sha256"
	headerShopDomain     = "X-Shopify-Shop-Domain"
	headerDeliveryID     = "X-Shopify-Webhook-Id"
	headerDeliveryAlias  = "X-Event-Id"
)

// Webhooks serves the compliance webhook endpoint. Signature verification is
// the only authentication; once a delivery is verified it is always
// acknowledged with 200, even if processing fails.
func (h *Handler) Webhooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"message": "Webhook endpoint"})
	case http.MethodPost:
		h.receiveWebhook(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	rawTopic := firstHeader(r, headerTopic, headerTopicAlias)
	topic := compliance.ParseTopic(rawTopic)
	logger := h.logger.With("topic", rawTopic, "request_id", httpx.RequestIDFromContext(r.Context()))

	if !topic.IsCompliance() {
		h.deps.Metrics.ObserveDelivery(topic.String(), "not_compliance")
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Not a compliance webhook"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.cfg.BodyLimit+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(w, topic)
			return
		}
		logger.Warn("webhook body read failed", "err", err)
		h.deps.Metrics.ObserveDelivery(topic.String(), "malformed")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Malformed payload"})
		return
	}
	if int64(len(body)) > h.cfg.BodyLimit {
		h.tooLarge(w, topic)
		return
	}

	evt := compliance.InboundEvent{
		Topic:      topic,
		RawBody:    body,
		Signature:  exactHeader(r, headerSignature, headerSignatureAlias),
		ShopDomain: strings.TrimSpace(r.Header.Get(headerShopDomain)),
		DeliveryID: firstHeader(r, headerDeliveryID, headerDeliveryAlias),
	}

	if !compliance.Verify(evt.RawBody, evt.Signature, h.secret) {
		logger.Warn("webhook rejected", "reason", compliance.ReasonInvalidSignature.String(), "err", compliance.ErrInvalidSignature)
		h.deps.Metrics.ObserveDelivery(topic.String(), "unauthorized")
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
		return
	}

	payload, err := compliance.DecodePayload(topic, evt.RawBody, evt.ShopDomain)
	if err != nil {
		logger.Warn("webhook rejected", "reason", compliance.ReasonMalformedPayload.String(), "err", err)
		h.deps.Metrics.ObserveDelivery(topic.String(), "malformed")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Malformed payload"})
		return
	}

	// Only well-formed deliveries are claimed, so a rejected one is
	// processed normally when redelivered.
	if h.deps.Deliveries != nil && evt.DeliveryID != "" {
		first, err := h.deps.Deliveries.Claim(r.Context(), evt.DeliveryID)
		switch {
		case err != nil:
			logger.Warn("webhook dedupe unavailable, processing anyway", "delivery_id", evt.DeliveryID, "err", err)
		case !first:
			logger.Info("webhook duplicate ignored", "delivery_id", evt.DeliveryID)
			h.deps.Metrics.ObserveDelivery(topic.String(), "duplicate")
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Duplicate delivery"})
			return
		}
	}

	action := h.deps.Dispatcher.Dispatch(r.Context(), topic, payload)
	switch {
	case action.Accepted:
		h.deps.Metrics.ObserveDelivery(topic.String(), "accepted")
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case action.Reason == compliance.ReasonUnknownTopic:
		logger.Error("verified webhook with unroutable topic", "err", action.Err)
		h.deps.Metrics.ObserveDelivery(topic.String(), "unknown_topic")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Unknown webhook topic"})
	default:
		logger.Error("webhook processing failed", "reason", action.Reason.String(), "shop_domain", payload.ShopDomain, "err", action.Err)
		h.deps.Metrics.ObserveDelivery(topic.String(), "handler_failure")
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Error processing webhook, but request received",
		})
	}
}

func (h *Handler) tooLarge(w http.ResponseWriter, topic compliance.Topic) {
	h.deps.Metrics.ObserveDelivery(topic.String(), "too_large")
	writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "Payload too large"})
}

func firstHeader(r *http.Request, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.Header.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

// exactHeader is firstHeader without trimming, for values compared byte for byte.
func exactHeader(r *http.Request, keys ...string) string {
	for _, k := range keys {
		if v := r.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}
