package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGateway_GenerateClientToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/client_token", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"clientToken": "tok-123"})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 2*time.Second)
	token, err := g.GenerateClientToken(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestHTTPGateway_GenerateClientToken_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"clientToken": ""})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 2*time.Second)
	_, err := g.GenerateClientToken(context.Background(), "buyer-1")
	assert.ErrorIs(t, err, ErrTokenUnavailable)
}

func TestHTTPGateway_Sale_Approved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions", r.URL.Path)

		var req SaleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "fake-valid-nonce", req.Nonce)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"transaction": map[string]interface{}{
				"id":       "txn_1",
				"amount":   req.Amount,
				"currency": "USD",
			},
		})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 2*time.Second)
	outcome, err := g.Sale(context.Background(), SaleRequest{Nonce: "fake-valid-nonce", Amount: "14.99", Currency: "USD"})
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "txn_1", outcome.Transaction.ID)
}

func TestHTTPGateway_Sale_Declined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Processor Declined",
			"validation_errors": map[string][]string{
				"amount": {"Amount is an invalid format."},
			},
		})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 2*time.Second)
	outcome, err := g.Sale(context.Background(), SaleRequest{Nonce: "n", Amount: "x"})
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "Processor Declined", outcome.Error.Message)
	assert.Equal(t, []string{"Amount is an invalid format."}, outcome.Error.ValidationErrors["amount"])
}

func TestHTTPGateway_Sale_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 2*time.Second)
	_, err := g.Sale(context.Background(), SaleRequest{Nonce: "n", Amount: "10.00"})
	assert.ErrorIs(t, err, ErrGatewayDown)
}
