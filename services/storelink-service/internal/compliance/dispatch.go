package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/storelink/libs/metrics"
)

// Collaborators carry out the data obligations behind each privacy topic.
type Collaborators interface {
	ExportCustomerData(ctx context.Context, shopDomain, customerID string, ordersRequested []string) error
	DeleteCustomerData(ctx context.Context, shopDomain, customerID string, ordersToRedact []string) error
	DeleteShopData(ctx context.Context, shopDomain, shopID string) error
}

type Reason int

const (
	ReasonNone Reason = iota
	ReasonInvalidSignature
	ReasonMalformedPayload
	ReasonUnknownTopic
	ReasonHandlerFailure
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInvalidSignature:
		return "invalid_signature"
	case ReasonMalformedPayload:
		return "malformed_payload"
	case ReasonUnknownTopic:
		return "unknown_topic"
	case ReasonHandlerFailure:
		return "handler_failure"
	default:
		return "unknown"
	}
}

// Action is the outcome of one delivery. It is logged and returned, never stored.
type Action struct {
	Accepted bool
	Reason   Reason
	Err      error
}

func Accept() Action { return Action{Accepted: true} }

func Reject(reason Reason, err error) Action {
	return Action{Reason: reason, Err: err}
}

// InboundEvent is one delivery as read off the wire.
type InboundEvent struct {
	Topic      Topic
	RawBody    []byte
	Signature  string
	ShopDomain string
	DeliveryID string
}

type Dispatcher struct {
	collab  Collaborators
	logger  *slog.Logger
	metrics *metrics.Webhooks
	timeout time.Duration
}

type DispatcherConfig struct {
	// Timeout bounds each collaborator call. Zero means no bound.
	Timeout time.Duration
	Metrics *metrics.Webhooks
}

func NewDispatcher(collab Collaborators, logger *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		collab:  collab,
		logger:  logger,
		metrics: cfg.Metrics,
		timeout: cfg.Timeout,
	}
}

// Dispatch routes a verified payload to exactly one collaborator.
// Collaborator errors are folded into a HandlerFailure action.
func (d *Dispatcher) Dispatch(ctx context.Context, topic Topic, payload Payload) Action {
	if !topic.IsCompliance() {
		d.logger.Warn("compliance webhook with unknown topic", "topic", topic.String())
		return Reject(ReasonUnknownTopic, ErrUnknownTopic)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	err := d.invoke(ctx, topic, payload)
	d.metrics.ObserveCollaborator(topic.String(), time.Since(start), err)

	if err != nil {
		d.logger.Error("compliance handler failed",
			"topic", topic.String(),
			"shop_domain", payload.ShopDomain,
			"err", err,
		)
		return Reject(ReasonHandlerFailure, fmt.Errorf("%w: %w", ErrHandlerFailure, err))
	}
	d.logger.Info("compliance webhook handled",
		"topic", topic.String(),
		"shop_domain", payload.ShopDomain,
	)
	return Accept()
}

// invoke calls the collaborator for topic. A panicking collaborator is
// reported as an error so the delivery is still acknowledged.
func (d *Dispatcher) invoke(ctx context.Context, topic Topic, payload Payload) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	switch topic {
	case TopicCustomersDataRequest:
		return d.collab.ExportCustomerData(ctx, payload.ShopDomain, payload.CustomerID(), idStrings(payload.OrdersRequested))
	case TopicCustomersRedact:
		return d.collab.DeleteCustomerData(ctx, payload.ShopDomain, payload.CustomerID(), idStrings(payload.OrdersToRedact))
	case TopicShopRedact:
		return d.collab.DeleteShopData(ctx, payload.ShopDomain, string(payload.ShopID))
	}
	return nil
}
