package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadShopDomainFallback(t *testing.T) {
	p, err := DecodePayload(TopicShopRedact, []byte(`{"shop_id":42}`), "demo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, ID("42"), p.ShopID)
	assert.Equal(t, "demo.myshopify.com", p.ShopDomain)

	p, err = DecodePayload(TopicShopRedact, []byte(`{"shop_id":42,"shop_domain":"body.myshopify.com"}`), "header.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, "body.myshopify.com", p.ShopDomain)
}

func TestDecodePayloadMalformed(t *testing.T) {
	tests := []struct {
		name  string
		topic Topic
		body  string
	}{
		{"not json", TopicShopRedact, `{"shop_id":`},
		{"missing shop id", TopicShopRedact, `{"shop_domain":"a.myshopify.com"}`},
		{"missing customer", TopicCustomersRedact, `{"shop_id":1}`},
		{"customer without id", TopicCustomersDataRequest, `{"shop_id":1,"customer":{"email":"a@b.c"}}`},
		{"fractional id", TopicShopRedact, `{"shop_id":1.5}`},
		{"array body", TopicShopRedact, `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayload(tt.topic, []byte(tt.body), "")
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestDecodePayloadUnknownTopic(t *testing.T) {
	_, err := DecodePayload(TopicUnknown, []byte(`{"shop_id":1}`), "")
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	p, err := DecodePayload(TopicCustomersRedact, []byte(`{"customer":{"id":"191167"},"orders_to_redact":[299938,"280263",null]}`), "")
	require.NoError(t, err)
	assert.Equal(t, "191167", p.CustomerID())
	assert.Equal(t, []string{"299938", "280263"}, idStrings(p.OrdersToRedact))
}
