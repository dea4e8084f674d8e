package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lalithlochan/nimbus-agent/internal/nimbus"
)

// ListDeadLettersTool lists notifications that exhausted their delivery
// retries and landed in the gateway's dead letter queue
type ListDeadLettersTool struct {
	client *nimbus.Client
}

// ListDeadLettersArgs represents the arguments for listing dead letters
type ListDeadLettersArgs struct {
	TenantID string `json:"tenant_id"`
	Limit    int    `json:"limit,omitempty"`
}

// NewListDeadLettersTool creates a new dead letter listing tool
func NewListDeadLettersTool(client *nimbus.Client) *ListDeadLettersTool {
	return &ListDeadLettersTool{client: client}
}

func (t *ListDeadLettersTool) Name() string {
	return "list_dead_letters"
}

func (t *ListDeadLettersTool) Description() string {
	return "List notifications that permanently failed delivery for a tenant, including the last delivery error. Use this to diagnose why a notification was not delivered."
}

func (t *ListDeadLettersTool) Parameters() json.RawMessage {
	schema := `{
		"type": "object",
		"properties": {
			"tenant_id": {
				"type": "string",
				"description": "Tenant UUID"
			},
			"limit": {
				"type": "integer",
				"description": "Maximum number of entries to return (default 10)"
			}
		},
		"required": ["tenant_id"]
	}`
	return json.RawMessage(schema)
}

func (t *ListDeadLettersTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var listArgs ListDeadLettersArgs
	if err := json.Unmarshal(args, &listArgs); err != nil {
		return ToolResult{
			Content: fmt.Sprintf("Failed to parse dead letter arguments: %v", err),
			IsError: true,
		}, nil
	}
	if listArgs.Limit <= 0 {
		listArgs.Limit = 10
	}

	list, err := t.client.ListDeadLetters(ctx, listArgs.TenantID, listArgs.Limit)
	if err != nil {
		return ToolResult{
			Content: fmt.Sprintf("Failed to list dead letters: %v", err),
			IsError: true,
		}, nil
	}

	summaries := make([]map[string]interface{}, 0, len(list.Data))
	for _, d := range list.Data {
		summaries = append(summaries, map[string]interface{}{
			"id":                       d.ID,
			"original_notification_id": d.OriginalNotificationID,
			"channel":                  d.Channel,
			"attempts":                 d.Attempts,
			"last_error":               d.LastError,
			"status":                   d.Status,
			"created_at":               d.CreatedAt.Format(time.RFC3339),
		})
	}

	content, err := json.Marshal(map[string]interface{}{
		"dead_letters": summaries,
		"count":        list.Count,
		"tenant_id":    listArgs.TenantID,
	})
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to encode result: %v", err), IsError: true}, nil
	}

	return ToolResult{Content: string(content)}, nil
}

// RetryDeadLetterTool requeues a dead-lettered notification for delivery
type RetryDeadLetterTool struct {
	client *nimbus.Client
}

// RetryDeadLetterArgs represents the arguments for a dead letter retry
type RetryDeadLetterArgs struct {
	DeadLetterID string `json:"dead_letter_id"`
}

// NewRetryDeadLetterTool creates a new dead letter retry tool
func NewRetryDeadLetterTool(client *nimbus.Client) *RetryDeadLetterTool {
	return &RetryDeadLetterTool{client: client}
}

func (t *RetryDeadLetterTool) Name() string {
	return "retry_dead_letter"
}

func (t *RetryDeadLetterTool) Description() string {
	return "Retry a permanently failed notification from the dead letter queue. Creates a fresh notification and returns its id."
}

func (t *RetryDeadLetterTool) Parameters() json.RawMessage {
	schema := `{
		"type": "object",
		"properties": {
			"dead_letter_id": {
				"type": "string",
				"description": "UUID of the dead letter entry to retry"
			}
		},
		"required": ["dead_letter_id"]
	}`
	return json.RawMessage(schema)
}

func (t *RetryDeadLetterTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var retryArgs RetryDeadLetterArgs
	if err := json.Unmarshal(args, &retryArgs); err != nil {
		return ToolResult{
			Content: fmt.Sprintf("Failed to parse retry arguments: %v", err),
			IsError: true,
		}, nil
	}

	resp, err := t.client.RetryDeadLetter(ctx, retryArgs.DeadLetterID)
	if err != nil {
		return ToolResult{
			Content: fmt.Sprintf("Failed to retry dead letter: %v", err),
			IsError: true,
		}, nil
	}

	content, err := json.Marshal(map[string]string{
		"dead_letter_id":      retryArgs.DeadLetterID,
		"status":              resp.Status,
		"new_notification_id": resp.NewNotificationID,
	})
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to encode result: %v", err), IsError: true}, nil
	}

	return ToolResult{Content: string(content)}, nil
}
