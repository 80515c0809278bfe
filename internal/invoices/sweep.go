package invoices

import (
	"fmt"
	"time"

	"github.com/centavo/backend/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var notificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invoice_notifications_emitted_total",
	Help: "How many notification events have been emitted, partitioned by type.",
}, []string{"type"})

// StatusSweepResult reports how many invoices a status sweep touched.
// Failed counts invoices that could not be updated; they do not abort the
// sweep.
type StatusSweepResult struct {
	Closed  int `json:"closed"`
	Overdue int `json:"overdue"`
	Failed  int `json:"failed"`
}

// UpdateStatuses transitions all invoices whose dates have passed.
//
// OPEN invoices past their closing date become CLOSED. Unpaid invoices past
// their due date become OVERDUE, with one PAYMENT_DUE notification appended
// per invoice. The sweep is designed to run once per day; it carries no
// de-duplication guard, so re-running it re-emits notifications for
// invoices that are already OVERDUE.
func UpdateStatuses(db *gorm.DB, now time.Time) (StatusSweepResult, error) {
	var result StatusSweepResult
	today := day(now)

	// OPEN -> CLOSED while the due date has not passed
	var toClose []models.Invoice
	err := db.
		Where("status = ?", models.InvoiceOpen).
		Where("date(closing_date) < date(?)", today).
		Where("date(due_date) >= date(?)", today).
		Find(&toClose).Error
	if err != nil {
		return result, err
	}

	for _, invoice := range toClose {
		err := db.Model(&invoice).Update("Status", models.InvoiceClosed).Error
		if err != nil {
			log.Error().Err(err).Str("invoice", invoice.ID.String()).Msg("closing invoice failed")
			result.Failed++
			continue
		}

		result.Closed++
	}

	// Everything unpaid past the due date -> OVERDUE
	var toFlag []models.Invoice
	err = db.
		Joins("Card").
		Where("invoices.status != ?", models.InvoicePaid).
		Where("date(invoices.due_date) < date(?)", today).
		Find(&toFlag).Error
	if err != nil {
		return result, err
	}

	for _, invoice := range toFlag {
		if invoice.Remaining().LessThanOrEqual(decimal.Zero) {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			err := tx.Model(&invoice).Update("Status", models.InvoiceOverdue).Error
			if err != nil {
				return err
			}

			return emitDueNotification(tx, invoice, models.NotificationPaymentDue, today)
		})
		if err != nil {
			log.Error().Err(err).Str("invoice", invoice.ID.String()).Msg("flagging invoice as overdue failed")
			result.Failed++
			continue
		}

		result.Overdue++
	}

	return result, nil
}

// ReminderSweepResult reports how many reminders a reminder sweep emitted.
type ReminderSweepResult struct {
	Emitted int `json:"emitted"`
	Failed  int `json:"failed"`
}

// reminderOffsets are the due date offsets at which reminders are emitted,
// leaf to root: five days ahead, one day ahead and on the day itself.
var reminderOffsets = []struct {
	days int
	kind models.NotificationType
}{
	{5, models.NotificationPaymentReminder5D},
	{1, models.NotificationPaymentReminder1D},
	{0, models.NotificationPaymentDue},
}

// GenerateDueReminders emits a notification for every unpaid invoice whose
// due date is in exactly five days, tomorrow or today.
//
// Due dates are matched on day granularity, not as a range: an invoice due
// in four days gets no reminder today. Designed to run once per day;
// calling it twice on the same day emits duplicate notifications, the sink
// has to dedupe if it needs exactly-once delivery.
func GenerateDueReminders(db *gorm.DB, now time.Time) (ReminderSweepResult, error) {
	var result ReminderSweepResult
	today := day(now)

	for _, offset := range reminderOffsets {
		target := today.AddDate(0, 0, offset.days)

		var due []models.Invoice
		err := db.
			Joins("Card").
			Where("invoices.status != ?", models.InvoicePaid).
			Where("date(invoices.due_date) = date(?)", target).
			Find(&due).Error
		if err != nil {
			return result, err
		}

		for _, invoice := range due {
			if invoice.Remaining().LessThanOrEqual(decimal.Zero) {
				continue
			}

			err := emitDueNotification(db, invoice, offset.kind, target)
			if err != nil {
				log.Error().Err(err).Str("invoice", invoice.ID.String()).Msg("emitting reminder failed")
				result.Failed++
				continue
			}

			result.Emitted++
		}
	}

	return result, nil
}

// emitDueNotification appends one outbox row for an invoice. The card must
// be preloaded on the invoice.
func emitDueNotification(db *gorm.DB, invoice models.Invoice, kind models.NotificationType, scheduledFor time.Time) error {
	remaining := invoice.Remaining()

	title := "Invoice payment due"
	message := fmt.Sprintf("The invoice for card %q is due on %s, %s remaining.", invoice.Card.Name, invoice.DueDate.Format("2006-01-02"), remaining)

	notification := models.Notification{
		UserID:        invoice.Card.UserID,
		Type:          kind,
		Title:         title,
		Message:       message,
		RelatedAmount: remaining,
		ScheduledFor:  scheduledFor,
	}

	err := db.Create(&notification).Error
	if err != nil {
		return err
	}

	notificationsEmitted.WithLabelValues(string(kind)).Inc()
	return nil
}

// day truncates a time to its UTC calendar day.
func day(t time.Time) time.Time {
	year, month, d := t.UTC().Date()
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
