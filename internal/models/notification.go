package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NotificationType is the kind of event a notification describes.
type NotificationType string

const (
	NotificationPaymentReminder5D NotificationType = "PAYMENT_REMINDER_5D"
	NotificationPaymentReminder1D NotificationType = "PAYMENT_REMINDER_1D"
	NotificationPaymentDue        NotificationType = "PAYMENT_DUE"
)

// Notification is an outbox row for the notification sink.
//
// The core only appends rows; a separate dispatcher polls unsent rows,
// delivers them and sets SentAt. Delivery is at-least-once: the sweeps that
// emit notifications carry no de-duplication guard, so running them twice
// on the same day appends duplicate rows. Sinks that need exactly-once
// semantics have to dedupe on their side.
type Notification struct {
	DefaultModel
	UserID        uuid.UUID        `json:"userId" gorm:"index"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	RelatedAmount decimal.Decimal  `json:"relatedAmount" gorm:"type:DECIMAL(20,8)"`
	ScheduledFor  time.Time        `json:"scheduledFor"`
	SentAt        *time.Time       `json:"sentAt"`
}
