package models

import "time"

const (
	EventTypeUnknown = "unknown"
)

// Column widths of the bounded string columns, in characters.
const (
	EventTypeMaxLen    = 100
	ContactEmailMaxLen = 255
	ContactIDMaxLen    = 50
	SourceIPMaxLen     = 64
)

// WebhookEvent is one received ActiveCampaign callback. Rows are written once
// and never updated.
type WebhookEvent struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventType    string    `gorm:"type:varchar(100);not null;index:idx_webhook_events_event_type" json:"event_type"`
	Payload      string    `gorm:"type:text;not null" json:"payload"`
	ContactEmail string    `gorm:"type:varchar(255);index:idx_webhook_events_contact_email" json:"contact_email,omitempty"`
	ContactID    string    `gorm:"type:varchar(50)" json:"contact_id,omitempty"`
	SourceIP     string    `gorm:"type:varchar(64)" json:"source_ip,omitempty"`
	ParseOK      bool      `gorm:"not null" json:"parse_ok"`
	TestMode     bool      `gorm:"not null" json:"test_mode"`
	ReceivedAt   time.Time `gorm:"not null;index:idx_webhook_events_received_at" json:"received_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// EventTypeCount is one row of the per-type aggregate.
type EventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}
