package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lalithlochan/nimbus-agent/internal/nimbus"
)

// CreateNotificationTool creates and sends a notification through Nimbus
type CreateNotificationTool struct {
	client *nimbus.Client
}

// CreateNotificationArgs represents the arguments for notification creation
type CreateNotificationArgs struct {
	TenantID  string `json:"tenant_id"`
	UserID    string `json:"user_id"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body,omitempty"`
}

// NewCreateNotificationTool creates a new notification creation tool
func NewCreateNotificationTool(client *nimbus.Client) *CreateNotificationTool {
	return &CreateNotificationTool{client: client}
}

func (t *CreateNotificationTool) Name() string {
	return "create_notification"
}

func (t *CreateNotificationTool) Description() string {
	return "Create and send a notification via email, SMS, or webhook through Nimbus"
}

func (t *CreateNotificationTool) Parameters() json.RawMessage {
	schema := `{
		"type": "object",
		"properties": {
			"tenant_id": {
				"type": "string",
				"description": "Tenant UUID (use default: 00000000-0000-0000-0000-000000000001)"
			},
			"user_id": {
				"type": "string",
				"description": "User UUID (use default: 00000000-0000-0000-0000-000000000002)"
			},
			"channel": {
				"type": "string",
				"enum": ["email", "sms", "webhook"],
				"description": "Notification channel"
			},
			"recipient": {
				"type": "string",
				"description": "Email address, phone number, or webhook URL"
			},
			"subject": {
				"type": "string",
				"description": "Email subject (optional, for email channel only)"
			},
			"body": {
				"type": "string",
				"description": "Notification body/message content"
			}
		},
		"required": ["tenant_id", "user_id", "channel", "recipient"]
	}`
	return json.RawMessage(schema)
}

func (t *CreateNotificationTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var createArgs CreateNotificationArgs
	if err := json.Unmarshal(args, &createArgs); err != nil {
		return ToolResult{
			Content: fmt.Sprintf("Failed to parse notification arguments: %v", err),
			IsError: true,
		}, nil
	}

	req := nimbus.CreateNotificationRequest{
		TenantID: createArgs.TenantID,
		UserID:   createArgs.UserID,
		Channel:  createArgs.Channel,
		Payload: nimbus.NotificationPayload{
			To:      createArgs.Recipient,
			Subject: createArgs.Subject,
			Body:    createArgs.Body,
		},
	}

	// One fresh key per call; a gateway-side retry of the same call cannot
	// double-send.
	resp, err := t.client.CreateNotification(ctx, req, uuid.NewString())
	if err != nil {
		return ToolResult{
			Content: fmt.Sprintf("Failed to create notification: %v", err),
			IsError: true,
		}, nil
	}

	content, err := json.Marshal(map[string]string{
		"notification_id": resp.ID,
		"status":          "created",
		"message":         fmt.Sprintf("%s notification created successfully", capitalize(createArgs.Channel)),
	})
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to encode result: %v", err), IsError: true}, nil
	}

	return ToolResult{Content: string(content)}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
