package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *HTTPClient {
	return NewHTTPClient(&ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "sk-test",
	})
}

func TestCreateInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/invoices", r.URL.Path)

		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "sk-test", user)

		var req CreateInvoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pycon-payment-42", req.ExternalID)
		assert.Equal(t, 450000, req.Amount)

		json.NewEncoder(w).Encode(Invoice{
			ID:            "inv-1",
			TransactionID: "txn-1",
			Status:        "PENDING",
			PaymentURL:    "https://checkout.example.com/inv-1",
		})
	}))
	defer srv.Close()

	invoice, err := newTestClient(srv).CreateInvoice(context.Background(), CreateInvoiceRequest{
		ExternalID: "pycon-payment-42",
		Amount:     450000,
	})
	require.NoError(t, err)
	assert.Equal(t, "inv-1", invoice.ID)
	assert.Equal(t, "https://checkout.example.com/inv-1", invoice.PaymentURL)
}

func TestGetInvoice_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetInvoice(context.Background(), "inv-missing")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestExpireInvoice(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestClient(srv).ExpireInvoice(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "/v2/invoices/inv-1/expire", gotPath)
}

func TestGetInvoice_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetInvoice(context.Background(), "inv-1")
	assert.ErrorContains(t, err, "502")
}
