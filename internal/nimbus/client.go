package nimbus

import (
	"bytes"
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

// Client calls the Nimbus gateway REST API.
// The base URL is threaded in at construction; there is no process-wide
// mutable address. Thread-safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Nimbus API client for the given base URL.
// timeout bounds every call so a stalled gateway cannot hang a run.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured gateway address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes GET /health. A transport error means the gateway is
// unreachable; a non-200 response is reported separately so the caller
// can warn instead of stopping.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nimbus is unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Title: "health check failed", HTTPStatus: resp.StatusCode}
	}
	return nil
}

// CreateNotification posts a notification to the gateway.
// idempotencyKey, when non-empty, is sent as the Idempotency-Key header so
// a retried call cannot double-send.
func (c *Client) CreateNotification(ctx context.Context, req CreateNotificationRequest, idempotencyKey string) (*CreateNotificationResponse, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	var out CreateNotificationResponse
	if err := c.do(ctx, http.MethodPost, "/v1/notifications", nil, req, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetNotification fetches a single notification by id.
func (c *Client) GetNotification(ctx context.Context, id string) (*Notification, error) {
	var out Notification
	if err := c.do(ctx, http.MethodGet, "/v1/notifications/"+url.PathEscape(id), nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNotifications lists a tenant's notifications, newest first.
// limit <= 0 falls back to the gateway default.
func (c *Client) ListNotifications(ctx context.Context, tenantID string, limit int) (*NotificationList, error) {
	query := url.Values{"tenant_id": {tenantID}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var out NotificationList
	if err := c.do(ctx, http.MethodGet, "/v1/notifications", query, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDeadLetters lists a tenant's dead-lettered notifications.
func (c *Client) ListDeadLetters(ctx context.Context, tenantID string, limit int) (*DeadLetterList, error) {
	query := url.Values{"tenant_id": {tenantID}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var out DeadLetterList
	if err := c.do(ctx, http.MethodGet, "/v1/dlq", query, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetryDeadLetter requeues a dead-lettered notification as a new one.
func (c *Client) RetryDeadLetter(ctx context.Context, id string) (*RetryDeadLetterResponse, error) {
	var out RetryDeadLetterResponse
	if err := c.do(ctx, http.MethodPost, "/v1/dlq/"+url.PathEscape(id)+"/retry", nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do issues one request and decodes the response into out.
// Non-2xx responses are decoded as problem+json and returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}, headers map[string]string, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call nimbus: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		if jsonErr := json.Unmarshal(responseBody, apiErr); jsonErr != nil || apiErr.Title == "" {
			apiErr.Title = strings.TrimSpace(string(responseBody))
			if apiErr.Title == "" {
				apiErr.Title = http.StatusText(resp.StatusCode)
			}
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(responseBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
