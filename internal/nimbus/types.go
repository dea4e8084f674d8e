// Package nimbus is a thin HTTP client for the Nimbus notification gateway.
// It maps transport failures and non-2xx responses to errors; interpreting
// domain fields is left to the callers (the agent tools).
package nimbus

import (
	"encoding/json"
	"fmt"
	"time"
)

// Channel constants accepted by the gateway
const (
	ChannelEmail   = "email"
	ChannelSMS     = "sms"
	ChannelWebhook = "webhook"
)

// NotificationPayload is the channel-specific payload of a notification
type NotificationPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

// CreateNotificationRequest is the body of POST /v1/notifications
type CreateNotificationRequest struct {
	TenantID string              `json:"tenant_id"`
	UserID   string              `json:"user_id"`
	Channel  string              `json:"channel"`
	Payload  NotificationPayload `json:"payload"`
}

// CreateNotificationResponse is returned by the gateway after creation
type CreateNotificationResponse struct {
	ID string `json:"id"`
}

// Notification mirrors the gateway's notification record
type Notification struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenant_id"`
	UserID       string          `json:"user_id"`
	Channel      string          `json:"channel"`
	Payload      json.RawMessage `json:"payload"`
	Status       string          `json:"status"`
	Attempt      int             `json:"attempt"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NotificationList is the envelope of GET /v1/notifications
type NotificationList struct {
	Data   []Notification `json:"data"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Count  int            `json:"count"`
}

// DeadLetter mirrors the gateway's dead-letter record
type DeadLetter struct {
	ID                     string          `json:"id"`
	OriginalNotificationID string          `json:"original_notification_id"`
	TenantID               string          `json:"tenant_id"`
	UserID                 string          `json:"user_id"`
	Channel                string          `json:"channel"`
	Payload                json.RawMessage `json:"payload"`
	Attempts               int             `json:"attempts"`
	LastError              string          `json:"last_error"`
	Status                 string          `json:"status"`
	CreatedAt              time.Time       `json:"created_at"`
}

// DeadLetterList is the envelope of GET /v1/dlq
type DeadLetterList struct {
	Data   []DeadLetter `json:"data"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	Count  int          `json:"count"`
}

// RetryDeadLetterResponse is returned by POST /v1/dlq/{id}/retry
type RetryDeadLetterResponse struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	NewNotificationID string `json:"new_notification_id"`
}

// APIError is the gateway's problem+json error body
type APIError struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("nimbus API error (status %d): %s: %s", e.HTTPStatus, e.Title, e.Detail)
	}
	return fmt.Sprintf("nimbus API error (status %d): %s", e.HTTPStatus, e.Title)
}
