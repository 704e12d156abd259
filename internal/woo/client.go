// Package woo implements the REST client for the external WooCommerce-style
// order system. The engine treats this system as an external collaborator:
// orders are fetched from it and status changes are pushed back to it.
package woo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"familyhub_backend/platform/logger"
)

const (
	ordersPath = "/wp-json/wc/v3/orders"
	pageSize   = 100

	// dateLayout is the store's GMT timestamp format (no zone suffix).
	dateLayout = "2006-01-02T15:04:05"
)

// Credentials identify one family's store connection.
type Credentials struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
}

// MetaEntry is one key/value pair of unstructured line-item metadata.
// Values are arbitrary scalars or strings as delivered by the store.
type MetaEntry struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// LineItem is one purchased product on an order.
type LineItem struct {
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	MetaData []MetaEntry `json:"meta_data"`
}

// Order is a snapshot of one order as observed in the external store.
type Order struct {
	ID        int64
	Number    string
	Status    string
	Total     string
	Currency  string
	Customer  string
	CreatedAt time.Time // store creation time, UTC
	LineItems []LineItem
}

// SyncError is returned when a call to the external store fails. It is always
// non-fatal to local mutations; callers log it and move on.
type SyncError struct {
	Op         string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: store returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SyncError) Unwrap() error { return e.Err }

// Client talks to the external store's REST API.
type Client struct {
	http *http.Client
	log  *logger.Logger
}

// NewClient creates a store client.
func NewClient(log *logger.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
}

type wireOrder struct {
	ID             int64      `json:"id"`
	Number         string     `json:"number"`
	Status         string     `json:"status"`
	Total          string     `json:"total"`
	Currency       string     `json:"currency"`
	DateCreatedGMT string     `json:"date_created_gmt"`
	Billing        struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"billing"`
	LineItems []LineItem `json:"line_items"`
}

// FetchOrders retrieves all orders modified since the given time, paging
// through the store's API. A zero since fetches everything.
func (c *Client) FetchOrders(ctx context.Context, creds Credentials, since time.Time) ([]Order, error) {
	var orders []Order

	for page := 1; ; page++ {
		batch, err := c.fetchPage(ctx, creds, since, page)
		if err != nil {
			return nil, err
		}
		orders = append(orders, batch...)
		if len(batch) < pageSize {
			return orders, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, creds Credentials, since time.Time, page int) ([]Order, error) {
	endpoint := strings.TrimRight(creds.BaseURL, "/") + ordersPath

	query := url.Values{}
	query.Set("consumer_key", creds.ConsumerKey)
	query.Set("consumer_secret", creds.ConsumerSecret)
	query.Set("per_page", fmt.Sprintf("%d", pageSize))
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("orderby", "date")
	query.Set("order", "asc")
	if !since.IsZero() {
		query.Set("modified_after", since.UTC().Format(dateLayout))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SyncError{Op: "fetch orders", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &SyncError{Op: "fetch orders", StatusCode: resp.StatusCode}
	}

	var wire []wireOrder
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &SyncError{Op: "fetch orders", Err: fmt.Errorf("decode response: %w", err)}
	}

	orders := make([]Order, 0, len(wire))
	for _, w := range wire {
		orders = append(orders, w.toOrder())
	}
	return orders, nil
}

// PushStatus writes a new status onto an order in the external store.
func (c *Client) PushStatus(ctx context.Context, creds Credentials, externalID int64, status string) error {
	endpoint := fmt.Sprintf("%s%s/%d", strings.TrimRight(creds.BaseURL, "/"), ordersPath, externalID)

	query := url.Values{}
	query.Set("consumer_key", creds.ConsumerKey)
	query.Set("consumer_secret", creds.ConsumerSecret)

	body, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("marshal status payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint+"?"+query.Encode(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &SyncError{Op: "push status", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return &SyncError{
			Op:         "push status",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(data))),
		}
	}

	c.log.Info("status pushed to store", "externalId", externalID, "status", status)
	return nil
}

func (w wireOrder) toOrder() Order {
	createdAt, err := time.ParseInLocation(dateLayout, w.DateCreatedGMT, time.UTC)
	if err != nil {
		createdAt = time.Time{}
	}

	customer := strings.TrimSpace(w.Billing.FirstName + " " + w.Billing.LastName)

	return Order{
		ID:        w.ID,
		Number:    w.Number,
		Status:    w.Status,
		Total:     w.Total,
		Currency:  w.Currency,
		Customer:  customer,
		CreatedAt: createdAt,
		LineItems: w.LineItems,
	}
}
