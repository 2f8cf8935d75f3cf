package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/config"
	pkgerrors "github.com/beezio/settlement-backend/pkg/errors"
)

const errorBodyReadLimit int64 = 1024

// OrderFulfillmentRequest asks the orders service to start fulfillment
// for a settled transaction.
type OrderFulfillmentRequest struct {
	TransactionID   uuid.UUID  `json:"transaction_id"`
	OrderID         *uuid.UUID `json:"order_id,omitempty"`
	SellerID        uuid.UUID  `json:"seller_id"`
	PaymentIntentID string     `json:"payment_intent_id"`
	TotalCents      int64      `json:"total_cents"`
	Currency        string     `json:"currency"`
	SettledAt       time.Time  `json:"settled_at"`
}

// DropshipOrderRequest forwards a settled drop-shipped sale to the
// supplier integration.
type DropshipOrderRequest struct {
	TransactionID uuid.UUID  `json:"transaction_id"`
	OrderID       *uuid.UUID `json:"order_id,omitempty"`
	Currency      string     `json:"currency"`
}

// CancelFulfillmentRequest halts fulfillment after a refund or dispute.
type CancelFulfillmentRequest struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Reason        string    `json:"reason"`
}

// Client calls the downstream fulfillment surfaces over HTTP.
type Client struct {
	httpClient  *http.Client
	ordersURL   string
	dropshipURL string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the fulfillment client from configuration.
func NewClient(cfg config.FulfillmentConfig, opts ...Option) (*Client, error) {
	ordersURL := strings.TrimRight(strings.TrimSpace(cfg.OrdersURL), "/")
	if ordersURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment orders url required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		ordersURL:   ordersURL,
		dropshipURL: strings.TrimRight(strings.TrimSpace(cfg.DropshipURL), "/"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// DropshipConfigured reports whether a supplier endpoint is available.
func (c *Client) DropshipConfigured() bool {
	return c != nil && c.dropshipURL != ""
}

// StartFulfillment notifies the orders service that a settled payment
// is ready to ship.
func (c *Client) StartFulfillment(ctx context.Context, req OrderFulfillmentRequest) error {
	if req.TransactionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	return c.post(ctx, c.ordersURL+"/fulfillments", req)
}

// CreateDropshipOrder places the supplier order for drop-shipped items.
func (c *Client) CreateDropshipOrder(ctx context.Context, req DropshipOrderRequest) error {
	if !c.DropshipConfigured() {
		return pkgerrors.New(pkgerrors.CodeDependency, "dropship endpoint not configured")
	}
	if req.TransactionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	return c.post(ctx, c.dropshipURL+"/orders", req)
}

// CancelFulfillment halts any in-flight fulfillment for a transaction.
func (c *Client) CancelFulfillment(ctx context.Context, req CancelFulfillmentRequest) error {
	if req.TransactionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	return c.post(ctx, c.ordersURL+"/fulfillments/"+req.TransactionID.String()+"/cancel", req)
}

func (c *Client) post(ctx context.Context, url string, body any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "fulfillment client not configured")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal fulfillment request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build fulfillment request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute fulfillment request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	return pkgerrors.Wrap(pkgerrors.CodeDependency,
		fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		"fulfillment request failed")
}
