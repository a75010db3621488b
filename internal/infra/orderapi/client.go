// internal/infra/orderapi/client.go
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"kitchen_notification_bot/internal/domain/order"
)

const defaultTimeout = 10 * time.Second

// Client talks to the external order service. It implements the
// order.SnapshotSource, order.DishEnricher and order.ItemService interfaces.
// Any non-2xx response is treated as total failure; the next poll provides
// eventual correction.
type Client struct {
	baseURL    string
	scope      string
	httpClient *http.Client
}

func NewClient(baseURL, staffScope string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		scope:      staffScope,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type snapshotResponse struct {
	Orders []order.Order `json:"orders"`
}

// Snapshot fetches the full current set of orders for the configured scope.
func (c *Client) Snapshot(ctx context.Context) (*order.Snapshot, error) {
	endpoint := fmt.Sprintf("%s/orders?scope=%s", c.baseURL, url.QueryEscape(c.scope))
	var resp snapshotResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch order snapshot: %w", err)
	}
	return &order.Snapshot{TakenAt: time.Now(), Orders: resp.Orders}, nil
}

type lineItemResponse struct {
	DishID   string `json:"dish_id"`
	DishName string `json:"dish_name"`
}

// DishName resolves the display name of the dish behind a line item.
func (c *Client) DishName(ctx context.Context, lineItemID string) (string, error) {
	endpoint := fmt.Sprintf("%s/line-item/%s", c.baseURL, url.PathEscape(lineItemID))
	var resp lineItemResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return "", fmt.Errorf("failed to enrich line item %s: %w", lineItemID, err)
	}
	if resp.DishName == "" {
		return "", fmt.Errorf("order service returned an empty dish name for line item %s", lineItemID)
	}
	return resp.DishName, nil
}

type batchStatusRequest struct {
	Status       order.Status `json:"status"`
	OrderItemIDs []string     `json:"orderItemIds"`
}

// BulkUpdateStatus issues one bulk status transition for the given items.
func (c *Client) BulkUpdateStatus(ctx context.Context, lineItemIDs []string, status order.Status) error {
	endpoint := fmt.Sprintf("%s/order-items/batch-status", c.baseURL)
	body := batchStatusRequest{Status: status, OrderItemIDs: lineItemIDs}
	if err := c.postJSON(ctx, endpoint, body); err != nil {
		return fmt.Errorf("bulk status update failed: %w", err)
	}
	return nil
}

// ConfirmDelivered marks a single line item as delivered to the guest.
func (c *Client) ConfirmDelivered(ctx context.Context, lineItemID string) error {
	endpoint := fmt.Sprintf("%s/order-items/%s/delivered", c.baseURL, url.PathEscape(lineItemID))
	if err := c.postJSON(ctx, endpoint, nil); err != nil {
		return fmt.Errorf("delivered confirmation failed: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("order service returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("order service returned status %d", resp.StatusCode)
	}
	return nil
}
