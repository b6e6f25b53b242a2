package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rahatbaksh/bulk-order-api/internal/cart"
)

func TestHTTPClientAddItemCapturesToken(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/cart/items", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		http.SetCookie(w, &http.Cookie{Name: "fct_cart_hash", Value: "tok-123"})
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := cart.NewHTTPClient(srv.URL, "sess-1", "fct_cart_hash", 0)
	err := c.AddItem(context.Background(), cart.Item{ProductID: 7, VariantID: 70, Quantity: 3, UnitPrice: 1250})
	require.NoError(t, err)
	require.Equal(t, "sess-1", got["sessionId"])
	require.EqualValues(t, 70, got["variantId"])
	require.EqualValues(t, 3, got["quantity"])

	tok, err := c.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-123", tok)
}

func TestHTTPClientAddItemServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := cart.NewHTTPClient(srv.URL, "sess-1", "fct_cart_hash", 0)
	err := c.AddItem(context.Background(), cart.Item{ProductID: 1, VariantID: 2, Quantity: 1})
	require.Error(t, err)
}

func TestHTTPClientUnavailable(t *testing.T) {
	c := cart.NewHTTPClient("http://127.0.0.1:1", "sess-1", "", 0)
	err := c.AddItem(context.Background(), cart.Item{ProductID: 1, VariantID: 2, Quantity: 1})
	require.ErrorIs(t, err, cart.ErrUnavailable)
}

func TestHTTPClientTokenSessionLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cart/session", r.URL.Path)
		require.Equal(t, "sess-9", r.URL.Query().Get("sessionId"))
		http.SetCookie(w, &http.Cookie{Name: "fct_cart_hash", Value: "tok-9"})
	}))
	defer srv.Close()

	c := cart.NewHTTPClient(srv.URL, "sess-9", "fct_cart_hash", 0)
	tok, err := c.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-9", tok)
}
