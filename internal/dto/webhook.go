package dto

import "encoding/json"

// WebhookPayload is the part of a Todoist webhook body we look at.
type WebhookPayload struct {
	EventName   string          `json:"event_name"`
	UserID      string          `json:"user_id"`
	TriggeredAt string          `json:"triggered_at"`
	EventData   json.RawMessage `json:"event_data,omitempty"`
}

// WebhookNotice is forwarded to event stream subscribers.
type WebhookNotice struct {
	EventName   string `json:"event_name"`
	TriggeredAt string `json:"triggered_at,omitempty"`
}
