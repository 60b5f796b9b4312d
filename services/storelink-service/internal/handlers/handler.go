package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/md-rashed-zaman/storelink/libs/metrics"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/aggregator"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/compliance"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/shopify"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/storage"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, topic compliance.Topic, payload compliance.Payload) compliance.Action
}

type DeliveryStore interface {
	Claim(ctx context.Context, deliveryID string) (bool, error)
}

type Authenticator interface {
	Authenticate(r *http.Request) (shopify.Session, error)
}

type OnboardingStore interface {
	Get(ctx context.Context, shop string) (storage.OnboardingData, error)
	Save(ctx context.Context, shop string, in storage.OnboardingInput) (storage.OnboardingData, error)
	IsComplete(ctx context.Context, shop string) (bool, error)
}

type StoreCreator interface {
	CreateStore(ctx context.Context, in aggregator.CreateStoreRequest) error
}

type CustomerFetcher interface {
	GetCustomer(ctx context.Context, shop, accessToken, customerID string) (json.RawMessage, error)
}

// Deps are the collaborators behind the HTTP surface. Deliveries may be nil,
// which turns off delivery dedupe.
type Deps struct {
	Dispatcher Dispatcher
	Deliveries DeliveryStore
	Auth       Authenticator
	Onboarding OnboardingStore
	Stores     StoreCreator
	Admin      CustomerFetcher
	Metrics    *metrics.Webhooks
}

type Config struct {
	WebhookSecret compliance.Secret
	OnboardingURL string
	BodyLimit     int64
}

type Handler struct {
	deps     Deps
	secret   compliance.Secret
	logger   *slog.Logger
	cfg      Config
	validate *validator.Validate
}

func New(deps Deps, logger *slog.Logger, cfg Config) *Handler {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 1 << 20
	}
	return &Handler{
		deps:     deps,
		secret:   cfg.WebhookSecret,
		logger:   logger,
		cfg:      cfg,
		validate: newValidator(),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
