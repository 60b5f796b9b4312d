// Package erasure fulfils the privacy obligations behind the compliance
// webhooks. Local data is removed directly; anything owned downstream is
// announced through the outbox.
package erasure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/outbox"
)

type TxRunner interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type OnboardingDeleter interface {
	Delete(ctx context.Context, tx pgx.Tx, shop string) (bool, error)
}

type EventWriter interface {
	Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) (string, error)
}

type Service struct {
	tx         TxRunner
	onboarding OnboardingDeleter
	events     EventWriter
	logger     *slog.Logger
	now        func() time.Time
}

func New(tx TxRunner, onboarding OnboardingDeleter, events EventWriter, logger *slog.Logger) *Service {
	return &Service{
		tx:         tx,
		onboarding: onboarding,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

type shopRedacted struct {
	ShopDomain        string    `json:"shop_domain"`
	ShopID            string    `json:"shop_id"`
	OnboardingDeleted bool      `json:"onboarding_deleted"`
	RequestedAt       time.Time `json:"requested_at"`
}

type customerRedacted struct {
	ShopDomain     string    `json:"shop_domain"`
	CustomerID     string    `json:"customer_id"`
	OrdersToRedact []string  `json:"orders_to_redact"`
	RequestedAt    time.Time `json:"requested_at"`
}

type customerDataRequested struct {
	ShopDomain      string    `json:"shop_domain"`
	CustomerID      string    `json:"customer_id"`
	OrdersRequested []string  `json:"orders_requested"`
	RequestedAt     time.Time `json:"requested_at"`
}

// DeleteShopData drops the shop's onboarding record and records the redaction
// in one transaction.
func (s *Service) DeleteShopData(ctx context.Context, shopDomain, shopID string) error {
	return s.tx.InTx(ctx, func(tx pgx.Tx) error {
		deleted := false
		if shopDomain != "" {
			var err error
			deleted, err = s.onboarding.Delete(ctx, tx, shopDomain)
			if err != nil {
				return fmt.Errorf("delete onboarding data: %w", err)
			}
		}
		eventID, err := s.enqueue(ctx, tx, outbox.EventShopRedact, aggregateID(shopDomain, shopID), shopRedacted{
			ShopDomain:        shopDomain,
			ShopID:            shopID,
			OnboardingDeleted: deleted,
			RequestedAt:       s.now().UTC(),
		})
		if err != nil {
			return err
		}
		s.logger.Info("shop data redacted", "shop_domain", shopDomain, "shop_id", shopID, "onboarding_deleted", deleted, "event_id", eventID)
		return nil
	})
}

// DeleteCustomerData has nothing local to delete; the request is forwarded.
func (s *Service) DeleteCustomerData(ctx context.Context, shopDomain, customerID string, ordersToRedact []string) error {
	return s.tx.InTx(ctx, func(tx pgx.Tx) error {
		eventID, err := s.enqueue(ctx, tx, outbox.EventCustomersRedact, aggregateID(shopDomain, customerID), customerRedacted{
			ShopDomain:     shopDomain,
			CustomerID:     customerID,
			OrdersToRedact: nonNil(ordersToRedact),
			RequestedAt:    s.now().UTC(),
		})
		if err != nil {
			return err
		}
		s.logger.Info("customer redaction enqueued", "shop_domain", shopDomain, "customer_id", customerID, "orders", len(ordersToRedact), "event_id", eventID)
		return nil
	})
}

func (s *Service) ExportCustomerData(ctx context.Context, shopDomain, customerID string, ordersRequested []string) error {
	return s.tx.InTx(ctx, func(tx pgx.Tx) error {
		eventID, err := s.enqueue(ctx, tx, outbox.EventCustomersDataRequest, aggregateID(shopDomain, customerID), customerDataRequested{
			ShopDomain:      shopDomain,
			CustomerID:      customerID,
			OrdersRequested: nonNil(ordersRequested),
			RequestedAt:     s.now().UTC(),
		})
		if err != nil {
			return err
		}
		s.logger.Info("customer data request enqueued", "shop_domain", shopDomain, "customer_id", customerID, "orders", len(ordersRequested), "event_id", eventID)
		return nil
	})
}

func (s *Service) enqueue(ctx context.Context, tx pgx.Tx, eventType, aggID string, body any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", eventType, err)
	}
	eventID, err := s.events.Insert(ctx, tx, outbox.Event{
		AggregateType: outbox.AggregateShop,
		AggregateID:   aggID,
		EventType:     eventType,
		Payload:       payload,
	})
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", eventType, err)
	}
	return eventID, nil
}

// aggregateID prefers the shop domain so all of a shop's events share a partition key.
func aggregateID(shopDomain, fallback string) string {
	if shopDomain != "" {
		return shopDomain
	}
	return fallback
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
