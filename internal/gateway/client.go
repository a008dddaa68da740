package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type ClientConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`

	// TimeoutSeconds bounds every outbound call so a hung provider
	// cannot hold a checkout transaction open indefinitely.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// HTTPClient implements Client against the provider's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewHTTPClient(conf *ClientConfig) *HTTPClient {
	timeout := time.Duration(conf.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		baseURL: conf.BaseURL,
		apiKey:  conf.APIKey,
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPClient) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error) {
	var invoice Invoice
	if err := c.do(ctx, http.MethodPost, "/v2/invoices", req, &invoice); err != nil {
		return Invoice{}, fmt.Errorf("create invoice -> %w", err)
	}

	return invoice, nil
}

func (c *HTTPClient) GetInvoice(ctx context.Context, id string) (Invoice, error) {
	var invoice Invoice
	if err := c.do(ctx, http.MethodGet, "/v2/invoices/"+id, nil, &invoice); err != nil {
		return Invoice{}, fmt.Errorf("get invoice -> %w", err)
	}

	return invoice, nil
}

func (c *HTTPClient) ExpireInvoice(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodPost, "/v2/invoices/"+id+"/expire", nil, nil); err != nil {
		return fmt.Errorf("expire invoice -> %w", err)
	}

	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrInvoiceNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("gateway returned %v", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
