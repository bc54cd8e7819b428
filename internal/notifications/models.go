package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypePurchaseReserved  NotificationType = "PURCHASE_RESERVED"
	TypePurchaseConfirmed NotificationType = "PURCHASE_CONFIRMED"
	TypePurchaseCancelled NotificationType = "PURCHASE_CANCELLED"
	TypePurchaseExpired   NotificationType = "PURCHASE_EXPIRED"
	TypeMatchReminder     NotificationType = "MATCH_REMINDER"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "PENDING"
	StatusQueued  NotificationStatus = "QUEUED"
	StatusSent    NotificationStatus = "SENT"
	StatusFailed  NotificationStatus = "FAILED"
)

// Notification is the message carried on the notification topic and
// rendered into an email by the consumer
type Notification struct {
	ID   uuid.UUID        `json:"id"`
	Type NotificationType `json:"type"`

	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`

	OrderID      string            `json:"order_id,omitempty"`
	MatchID      uint              `json:"match_id,omitempty"`
	Subject      string            `json:"subject"`
	TemplateData map[string]string `json:"template_data"`

	Status    NotificationStatus `json:"status"`
	LastError *string            `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	SentAt    *time.Time         `json:"sent_at,omitempty"`
}

// New builds a pending notification addressed to one recipient
func New(notType NotificationType, email, name string) *Notification {
	return &Notification{
		ID:             uuid.New(),
		Type:           notType,
		RecipientEmail: email,
		RecipientName:  name,
		Subject:        DefaultSubject(notType),
		TemplateData:   make(map[string]string),
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}
}

// WithOrder attaches the purchase the notification is about
func (n *Notification) WithOrder(orderID string, matchID uint) *Notification {
	n.OrderID = orderID
	n.MatchID = matchID
	n.TemplateData["order_id"] = orderID
	return n
}

// With adds one template value
func (n *Notification) With(key, value string) *Notification {
	n.TemplateData[key] = value
	return n
}

func DefaultSubject(notType NotificationType) string {
	switch notType {
	case TypePurchaseReserved:
		return "Your ServeTix seats are reserved"
	case TypePurchaseConfirmed:
		return "Payment confirmed: your e-ticket is ready"
	case TypePurchaseCancelled:
		return "Your ServeTix order was cancelled"
	case TypePurchaseExpired:
		return "Your seat hold has expired"
	case TypeMatchReminder:
		return "Your match is tomorrow"
	default:
		return "ServeTix notification"
	}
}

// PartitionKey keeps every message of one order on one partition
func (n *Notification) PartitionKey() string {
	if n.OrderID != "" {
		return n.OrderID
	}
	return n.RecipientEmail
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func (n *Notification) MarkSent() {
	now := time.Now()
	n.Status = StatusSent
	n.SentAt = &now
}

func (n *Notification) MarkFailed(err error) {
	n.Status = StatusFailed
	msg := err.Error()
	n.LastError = &msg
}

// ReminderTarget is one confirmed buyer of a match starting soon
type ReminderTarget struct {
	OrderID    string
	BuyerName  string
	BuyerEmail string
	MatchID    uint
	MatchTitle string
	StartTime  time.Time
	VenueName  string
}
