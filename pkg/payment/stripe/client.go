package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client represents a Stripe API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Stripe client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// CreateIntent creates a payment intent and returns its client secret.
func (c *Client) CreateIntent(ctx context.Context, req CreateIntentRequest) (*PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidRequest
	}

	currency := req.Currency
	if currency == "" {
		currency = c.config.Currency
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", currency)
	if req.ReceiptEmail != "" {
		form.Set("receipt_email", req.ReceiptEmail)
	}
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	resp, err := c.doRequest(ctx, "payment_intents", form, req.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(resp, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}

	return &intent, nil
}

// ConfirmIntent confirms a payment intent with a payment method.
func (c *Client) ConfirmIntent(ctx context.Context, req ConfirmIntentRequest) (*PaymentIntent, error) {
	if req.IntentID == "" || req.PaymentMethod == "" {
		return nil, ErrInvalidRequest
	}

	form := url.Values{}
	form.Set("payment_method", req.PaymentMethod)

	endpoint := fmt.Sprintf("payment_intents/%s/confirm", req.IntentID)
	resp, err := c.doRequest(ctx, endpoint, form, "")
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment intent: %w", err)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(resp, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}

	return &intent, nil
}

// doRequest performs a form-encoded HTTP request to the Stripe API
func (c *Client) doRequest(ctx context.Context, endpoint string, form url.Values, idempotencyKey string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/%s", c.config.BaseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp apiError
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
		}

		errorMsg := fmt.Sprintf("Stripe API error - Status: %d, Type: %s, Code: %s, Message: %s",
			resp.StatusCode, errResp.Error.Type, errResp.Error.Code, errResp.Error.Message)

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errorMsg)
		case errResp.Error.Code == "card_declined":
			return nil, fmt.Errorf("%w: %s", ErrCardDeclined, errResp.Error.Message)
		case resp.StatusCode == http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, errorMsg)
		default:
			return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, errorMsg)
		}
	}

	return body, nil
}
