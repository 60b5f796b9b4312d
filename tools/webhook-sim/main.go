package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/md-rashed-zaman/storelink/libs/auth"
)

type sendOptions struct {
	baseURL    string
	secret     string
	topic      string
	shop       string
	shopID     int64
	customerID int64
	orders     []int64
	tamper     bool
	timeout    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "webhook-sim",
		Short: "Send signed compliance webhooks to a running storelink-service",
		Long: `webhook-sim builds a sample compliance payload, signs it with the shared
app secret the way the platform does and posts it to /webhooks.

Examples:
  webhook-sim send --topic shop/redact --shop demo.myshopify.com
  webhook-sim send --topic customers/redact --customer-id 7 --orders 1,2
  webhook-sim send --topic customers/data_request --tamper
  webhook-sim session-token --shop demo.myshopify.com --api-key key`,
		SilenceUsage: true,
	}
	root.AddCommand(newSendCmd(), newSessionTokenCmd())
	return root
}

func newSendCmd() *cobra.Command {
	opts := sendOptions{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Sign and post one compliance webhook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSend(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.baseURL, "base-url", getenv("BASE_URL", "http://localhost:8090"), "service base url")
	f.StringVar(&opts.secret, "secret", os.Getenv("SHOPIFY_API_SECRET"), "app secret used for signing")
	f.StringVar(&opts.topic, "topic", "shop/redact", "customers/data_request, customers/redact or shop/redact")
	f.StringVar(&opts.shop, "shop", "demo.myshopify.com", "shop domain")
	f.Int64Var(&opts.shopID, "shop-id", 954889, "shop id")
	f.Int64Var(&opts.customerID, "customer-id", 191167, "customer id for customer topics")
	f.Int64SliceVar(&opts.orders, "orders", []int64{299938}, "order ids")
	f.BoolVar(&opts.tamper, "tamper", false, "flip one body byte after signing")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}

func runSend(ctx context.Context, out io.Writer, opts sendOptions) error {
	secret := strings.TrimSpace(opts.secret)
	if secret == "" {
		return fmt.Errorf("SHOPIFY_API_SECRET or --secret is required")
	}
	topic := strings.TrimSpace(opts.topic)

	body, err := samplePayload(topic, opts)
	if err != nil {
		return err
	}
	signature := sign(body, secret)
	if opts.tamper && len(body) > 0 {
		body[len(body)/2] ^= 0x01
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(opts.baseURL, "/")+"/webhooks", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Topic", topic)
	req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	req.Header.Set("X-Shopify-Shop-Domain", opts.shop)
	req.Header.Set("X-Shopify-Webhook-Id", uuid.NewString())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	fmt.Fprintf(out, "status=%d\n%s\n", resp.StatusCode, strings.TrimSpace(string(respBody)))
	return nil
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func samplePayload(topic string, opts sendOptions) ([]byte, error) {
	orders := opts.orders
	if orders == nil {
		orders = []int64{}
	}
	customer := map[string]any{
		"id":    opts.customerID,
		"email": "john@example.com",
		"phone": "555-625-1199",
	}
	switch topic {
	case "customers/data_request":
		return json.Marshal(map[string]any{
			"shop_id":          opts.shopID,
			"shop_domain":      opts.shop,
			"orders_requested": orders,
			"customer":         customer,
			"data_request":     map[string]any{"id": 9999},
		})
	case "customers/redact":
		return json.Marshal(map[string]any{
			"shop_id":          opts.shopID,
			"shop_domain":      opts.shop,
			"customer":         customer,
			"orders_to_redact": orders,
		})
	case "shop/redact":
		return json.Marshal(map[string]any{
			"shop_id":     opts.shopID,
			"shop_domain": opts.shop,
		})
	default:
		return nil, fmt.Errorf("unsupported topic %q", topic)
	}
}

func newSessionTokenCmd() *cobra.Command {
	var shop, apiKey, secret string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "session-token",
		Short: "Mint a session token for calling /app endpoints locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(secret) == "" || strings.TrimSpace(apiKey) == "" {
				return fmt.Errorf("--secret and --api-key are required")
			}
			now := time.Now()
			tok, err := auth.SignSessionToken(auth.SessionClaims{
				Dest: "https://" + shop,
				Sid:  uuid.NewString(),
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    "https://" + shop + "/admin",
					Audience:  jwt.ClaimStrings{apiKey},
					Subject:   "1",
					ID:        uuid.NewString(),
					IssuedAt:  jwt.NewNumericDate(now),
					NotBefore: jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
				},
			}, secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&shop, "shop", "demo.myshopify.com", "shop domain")
	f.StringVar(&apiKey, "api-key", os.Getenv("SHOPIFY_API_KEY"), "app api key (token audience)")
	f.StringVar(&secret, "secret", os.Getenv("SHOPIFY_API_SECRET"), "app secret")
	f.DurationVar(&ttl, "ttl", time.Minute, "token lifetime")
	return cmd
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
