package aggregator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStore(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/shopify/createStore", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", srv.Client())
	require.NoError(t, c.CreateStore(context.Background(), CreateStoreRequest{
		AccessToken: "shpat_1",
		StoreURL:    "demo.myshopify.com",
	}))
	assert.Equal(t, "shpat_1", got["accessToken"])
	assert.Equal(t, "demo.myshopify.com", got["storeUrl"])
	assert.Equal(t, []any{}, got["products"])
}

func TestCreateStoreFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "store exists", http.StatusConflict)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, srv.Client()).CreateStore(context.Background(), CreateStoreRequest{StoreURL: "x"})
	assert.ErrorIs(t, err, ErrCreateStore)
	assert.Contains(t, err.Error(), "store exists")
}
