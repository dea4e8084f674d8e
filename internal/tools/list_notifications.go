package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lalithlochan/nimbus-agent/internal/nimbus"
)

// ListNotificationsTool lists recent notifications for a tenant
type ListNotificationsTool struct {
	client *nimbus.Client
}

// ListNotificationsArgs represents the arguments for listing notifications
type ListNotificationsArgs struct {
	TenantID string `json:"tenant_id"`
	Limit    int    `json:"limit,omitempty"`
}

// NewListNotificationsTool creates a new listing tool
func NewListNotificationsTool(client *nimbus.Client) *ListNotificationsTool {
	return &ListNotificationsTool{client: client}
}

func (t *ListNotificationsTool) Name() string {
	return "list_notifications"
}

func (t *ListNotificationsTool) Description() string {
	return "List recent notifications for a tenant"
}

func (t *ListNotificationsTool) Parameters() json.RawMessage {
	schema := `{
		"type": "object",
		"properties": {
			"tenant_id": {
				"type": "string",
				"description": "Tenant UUID"
			},
			"limit": {
				"type": "integer",
				"description": "Maximum number of notifications to return (default 10)"
			}
		},
		"required": ["tenant_id"]
	}`
	return json.RawMessage(schema)
}

func (t *ListNotificationsTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var listArgs ListNotificationsArgs
	if err := json.Unmarshal(args, &listArgs); err != nil {
		return ToolResult{
			Content: fmt.Sprintf("Failed to parse list arguments: %v", err),
			IsError: true,
		}, nil
	}
	if listArgs.Limit <= 0 {
		listArgs.Limit = 10
	}

	list, err := t.client.ListNotifications(ctx, listArgs.TenantID, listArgs.Limit)
	if err != nil {
		return ToolResult{
			Content: fmt.Sprintf("Failed to list notifications: %v", err),
			IsError: true,
		}, nil
	}

	// Summarize for the model; raw payloads stay out of the transcript.
	summaries := make([]map[string]interface{}, 0, len(list.Data))
	for _, n := range list.Data {
		summary := map[string]interface{}{
			"id":         n.ID,
			"channel":    n.Channel,
			"status":     n.Status,
			"created_at": n.CreatedAt.Format(time.RFC3339),
		}
		if n.ErrorMessage != nil && *n.ErrorMessage != "" {
			summary["error_message"] = *n.ErrorMessage
		}
		summaries = append(summaries, summary)
	}

	content, err := json.Marshal(map[string]interface{}{
		"notifications": summaries,
		"count":         list.Count,
		"tenant_id":     listArgs.TenantID,
	})
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to encode result: %v", err), IsError: true}, nil
	}

	return ToolResult{Content: string(content)}, nil
}
