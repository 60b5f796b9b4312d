package compliance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a platform resource id. The platform sends them as JSON numbers, but
// strings are accepted too and both normalize to the decimal form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("id %s is not an integer", n)
	}
	*id = ID(n.String())
	return nil
}

type Customer struct {
	ID    ID     `json:"id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type DataRequest struct {
	ID ID `json:"id"`
}

// Payload is the union of the three privacy webhook bodies.
type Payload struct {
	ShopID          ID           `json:"shop_id"`
	ShopDomain      string       `json:"shop_domain"`
	Customer        *Customer    `json:"customer,omitempty"`
	OrdersRequested []ID         `json:"orders_requested,omitempty"`
	OrdersToRedact  []ID         `json:"orders_to_redact,omitempty"`
	DataRequest     *DataRequest `json:"data_request,omitempty"`
}

func (p Payload) CustomerID() string {
	if p.Customer == nil {
		return ""
	}
	return string(p.Customer.ID)
}

// DecodePayload parses an already verified body and checks that the id the
// topic routes on is present. headerShop fills ShopDomain when the body has none.
func DecodePayload(topic Topic, rawBody []byte, headerShop string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	p.ShopDomain = strings.TrimSpace(p.ShopDomain)
	if p.ShopDomain == "" {
		p.ShopDomain = strings.TrimSpace(headerShop)
	}

	switch topic {
	case TopicCustomersDataRequest, TopicCustomersRedact:
		if p.CustomerID() == "" {
			return Payload{}, fmt.Errorf("%w: customer.id is required for %s", ErrMalformedPayload, topic)
		}
	case TopicShopRedact:
		if p.ShopID == "" {
			return Payload{}, fmt.Errorf("%w: shop_id is required for %s", ErrMalformedPayload, topic)
		}
	default:
		return Payload{}, ErrUnknownTopic
	}
	return p, nil
}

func idStrings(ids []ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, string(id))
		}
	}
	return out
}
