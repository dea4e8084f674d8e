package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lalithlochan/nimbus-agent/internal/nimbus"
)

// NotificationStatusTool checks the delivery status of a notification
type NotificationStatusTool struct {
	client *nimbus.Client
}

// NotificationStatusArgs represents the arguments for a status check
type NotificationStatusArgs struct {
	NotificationID string `json:"notification_id"`
}

// NewNotificationStatusTool creates a new status check tool
func NewNotificationStatusTool(client *nimbus.Client) *NotificationStatusTool {
	return &NotificationStatusTool{client: client}
}

func (t *NotificationStatusTool) Name() string {
	return "get_notification_status"
}

func (t *NotificationStatusTool) Description() string {
	return "Check the delivery status of a notification"
}

func (t *NotificationStatusTool) Parameters() json.RawMessage {
	schema := `{
		"type": "object",
		"properties": {
			"notification_id": {
				"type": "string",
				"description": "UUID of the notification to check"
			}
		},
		"required": ["notification_id"]
	}`
	return json.RawMessage(schema)
}

func (t *NotificationStatusTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var statusArgs NotificationStatusArgs
	if err := json.Unmarshal(args, &statusArgs); err != nil {
		return ToolResult{
			Content: fmt.Sprintf("Failed to parse status arguments: %v", err),
			IsError: true,
		}, nil
	}

	notif, err := t.client.GetNotification(ctx, statusArgs.NotificationID)
	if err != nil {
		return ToolResult{
			Content: fmt.Sprintf("Failed to get notification status: %v", err),
			IsError: true,
		}, nil
	}

	result := map[string]interface{}{
		"id":         notif.ID,
		"status":     notif.Status,
		"channel":    notif.Channel,
		"created_at": notif.CreatedAt.Format(time.RFC3339),
	}
	if notif.ErrorMessage != nil && *notif.ErrorMessage != "" {
		result["error_message"] = *notif.ErrorMessage
	}

	content, err := json.Marshal(result)
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to encode result: %v", err), IsError: true}, nil
	}

	return ToolResult{Content: string(content)}, nil
}
