package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalithlochan/nimbus-agent/internal/nimbus"
)

func newGatewayClient(t *testing.T, handler http.HandlerFunc) *nimbus.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return nimbus.NewClient(server.URL, 5*time.Second)
}

func TestCreateNotificationTool_Success(t *testing.T) {
	t.Parallel()

	var gotIdempotencyKey string
	client := newGatewayClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/notifications", r.URL.Path)
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req nimbus.CreateNotificationRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "email", req.Channel)
		assert.Equal(t, "a@example.com", req.Payload.To)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"notif-1"}`))
	})

	tool := NewCreateNotificationTool(client)
	result, err := tool.Execute(context.Background(), json.RawMessage(`{
		"tenant_id":"00000000-0000-0000-0000-000000000001",
		"user_id":"00000000-0000-0000-0000-000000000002",
		"channel":"email",
		"recipient":"a@example.com",
		"subject":"Hello",
		"body":"Test message"
	}`))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.NotEmpty(t, gotIdempotencyKey, "create must carry an Idempotency-Key")

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(result.Content), &payload))
	assert.Equal(t, "notif-1", payload["notification_id"])
	assert.Equal(t, "created", payload["status"])
	assert.Equal(t, "Email notification created successfully", payload["message"])
}

func TestCreateNotificationTool_GatewayErrorIsSoftFailure(t *testing.T) {
	t.Parallel()

	client := newGatewayClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"invalid_request","title":"Invalid channel","status":400}`))
	})

	tool := NewCreateNotificationTool(client)
	result, err := tool.Execute(context.Background(), json.RawMessage(`{
		"tenant_id":"t","user_id":"u","channel":"carrier-pigeon","recipient":"a@example.com"
	}`))
	require.NoError(t, err, "gateway failures must not raise past the tool")
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "Invalid channel")
}

func TestCreateNotificationTool_UnreachableGateway(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	tool := NewCreateNotificationTool(nimbus.NewClient(url, time.Second))
	result, err := tool.Execute(context.Background(), json.RawMessage(`{
		"tenant_id":"t","user_id":"u","channel":"email","recipient":"a@example.com"
	}`))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "Failed to create notification")
}

func TestNotificationStatusTool(t *testing.T) {
	t.Parallel()

	client := newGatewayClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/notifications/notif-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"notif-1","channel":"email","status":"sent",
			"created_at":"2026-08-01T10:00:00Z","updated_at":"2026-08-01T10:00:05Z"
		}`))
	})

	tool := NewNotificationStatusTool(client)
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"notification_id":"notif-1"}`))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Content), &payload))
	assert.Equal(t, "sent", payload["status"])
	assert.Equal(t, "email", payload["channel"])
	assert.Equal(t, "2026-08-01T10:00:00Z", payload["created_at"])
}

func TestNotificationStatusTool_FailedDeliveryIncludesError(t *testing.T) {
	t.Parallel()

	client := newGatewayClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"notif-2","channel":"webhook","status":"failed","error_message":"connection refused",
			"created_at":"2026-08-01T10:00:00Z","updated_at":"2026-08-01T10:00:05Z"
		}`))
	})

	tool := NewNotificationStatusTool(client)
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"notification_id":"notif-2"}`))
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Content), &payload))
	assert.Equal(t, "failed", payload["status"])
	assert.Equal(t, "connection refused", payload["error_message"])
}

func TestListNotificationsTool(t *testing.T) {
	t.Parallel()

	client := newGatewayClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tenant-1", r.URL.Query().Get("tenant_id"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"), "limit defaults to 10")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data":[
				{"id":"n1","channel":"email","status":"sent","payload":{"to":"a@example.com"},
				 "created_at":"2026-08-01T10:00:00Z","updated_at":"2026-08-01T10:00:00Z"}
			],
			"limit":10,"offset":0,"count":1
		}`))
	})

	tool := NewListNotificationsTool(client)
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"tenant_id":"tenant-1"}`))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload struct {
		Notifications []map[string]interface{} `json:"notifications"`
		Count         int                      `json:"count"`
		TenantID      string                   `json:"tenant_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content), &payload))
	assert.Equal(t, 1, payload.Count)
	assert.Equal(t, "tenant-1", payload.TenantID)
	require.Len(t, payload.Notifications, 1)
	assert.Equal(t, "n1", payload.Notifications[0]["id"])
	assert.NotContains(t, payload.Notifications[0], "payload", "raw payloads stay out of the transcript")
}

func TestListDeadLettersTool(t *testing.T) {
	t.Parallel()

	client := newGatewayClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/dlq", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data":[{"id":"d1","original_notification_id":"n9","channel":"webhook","attempts":5,
				"last_error":"410 gone","status":"pending","created_at":"2026-08-01T12:00:00Z"}],
			"limit":20,"offset":0,"count":1
		}`))
	})

	tool := NewListDeadLettersTool(client)
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"tenant_id":"tenant-1"}`))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload struct {
		DeadLetters []map[string]interface{} `json:"dead_letters"`
		Count       int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content), &payload))
	require.Len(t, payload.DeadLetters, 1)
	assert.Equal(t, "410 gone", payload.DeadLetters[0]["last_error"])
}

func TestRetryDeadLetterTool(t *testing.T) {
	t.Parallel()

	client := newGatewayClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/dlq/d1/retry", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"d1","status":"retried","new_notification_id":"n10"}`))
	})

	tool := NewRetryDeadLetterTool(client)
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"dead_letter_id":"d1"}`))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(result.Content), &payload))
	assert.Equal(t, "retried", payload["status"])
	assert.Equal(t, "n10", payload["new_notification_id"])
}

func TestNewNimbusRegistry(t *testing.T) {
	t.Parallel()

	client := nimbus.NewClient("http://localhost:8080", time.Second)
	registry, err := NewNimbusRegistry(client)
	require.NoError(t, err)

	assert.Equal(t, 5, registry.Count())
	assert.ElementsMatch(t, []string{
		"create_notification",
		"get_notification_status",
		"list_notifications",
		"list_dead_letters",
		"retry_dead_letter",
	}, registry.List())
}
