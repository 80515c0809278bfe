package invoices_test

import (
	"testing"
	"time"

	"github.com/centavo/backend/internal/invoices"
	"github.com/centavo/backend/internal/models"
	"github.com/centavo/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestUpdateStatuses() {
	now := time.Date(2024, 4, 15, 8, 0, 0, 0, time.UTC)
	card := suite.createTestCard(models.Card{})

	tests := []struct {
		name    string
		invoice models.Invoice
		want    models.InvoiceStatus
	}{
		{
			"Open invoice past closing closes",
			models.Invoice{
				ReferenceMonth: types.NewMonth(2024, time.April),
				ClosingDate:    date(2024, time.April, 10),
				DueDate:        date(2024, time.April, 25),
				TotalAmount:    decimal.NewFromFloat(100),
				Status:         models.InvoiceOpen,
			},
			models.InvoiceClosed,
		},
		{
			"Open invoice before closing stays open",
			models.Invoice{
				ReferenceMonth: types.NewMonth(2024, time.May),
				ClosingDate:    date(2024, time.May, 10),
				DueDate:        date(2024, time.May, 25),
				TotalAmount:    decimal.NewFromFloat(100),
				Status:         models.InvoiceOpen,
			},
			models.InvoiceOpen,
		},
		{
			"Closed invoice past due becomes overdue",
			models.Invoice{
				ReferenceMonth: types.NewMonth(2024, time.March),
				ClosingDate:    date(2024, time.March, 10),
				DueDate:        date(2024, time.March, 25),
				TotalAmount:    decimal.NewFromFloat(100),
				Status:         models.InvoiceClosed,
			},
			models.InvoiceOverdue,
		},
		{
			"Partially paid invoice past due becomes overdue",
			models.Invoice{
				ReferenceMonth: types.NewMonth(2024, time.February),
				ClosingDate:    date(2024, time.February, 10),
				DueDate:        date(2024, time.February, 25),
				TotalAmount:    decimal.NewFromFloat(100),
				PaidAmount:     decimal.NewFromFloat(40),
				Status:         models.InvoicePartial,
			},
			models.InvoiceOverdue,
		},
		{
			"Paid invoice past due stays paid",
			models.Invoice{
				ReferenceMonth: types.NewMonth(2024, time.January),
				ClosingDate:    date(2024, time.January, 10),
				DueDate:        date(2024, time.January, 25),
				TotalAmount:    decimal.NewFromFloat(100),
				PaidAmount:     decimal.NewFromFloat(100),
				Status:         models.InvoicePaid,
			},
			models.InvoicePaid,
		},
	}

	ids := make(map[string]int)
	for i, tt := range tests {
		tests[i].invoice.CardID = card.ID
		tests[i].invoice = suite.createTestInvoice(tests[i].invoice)
		ids[tt.name] = i
	}

	result, err := invoices.UpdateStatuses(models.DB, now)
	require.Nil(suite.T(), err)

	assert.Equal(suite.T(), 1, result.Closed)
	assert.Equal(suite.T(), 2, result.Overdue)
	assert.Equal(suite.T(), 0, result.Failed)

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var reloaded models.Invoice
			require.Nil(t, models.DB.First(&reloaded, "id = ?", tests[ids[tt.name]].invoice.ID).Error)
			assert.Equal(t, tt.want, reloaded.Status)
		})
	}

	// One PAYMENT_DUE notification per overdue invoice
	var notifications []models.Notification
	require.Nil(suite.T(), models.DB.Where("type = ?", models.NotificationPaymentDue).Find(&notifications).Error)
	assert.Len(suite.T(), notifications, 2)
}

func (suite *TestSuiteStandard) TestUpdateStatusesReEmits() {
	now := time.Date(2024, 4, 15, 8, 0, 0, 0, time.UTC)
	card := suite.createTestCard(models.Card{})

	_ = suite.createTestInvoice(models.Invoice{
		CardID:         card.ID,
		ReferenceMonth: types.NewMonth(2024, time.March),
		ClosingDate:    date(2024, time.March, 10),
		DueDate:        date(2024, time.March, 25),
		TotalAmount:    decimal.NewFromFloat(100),
		Status:         models.InvoiceClosed,
	})

	for run := 1; run <= 2; run++ {
		result, err := invoices.UpdateStatuses(models.DB, now)
		require.Nil(suite.T(), err)
		assert.Equal(suite.T(), 1, result.Overdue, "Run %d", run)
	}

	// The sweep carries no de-duplication guard, a second run within the
	// same day appends a second notification
	var count int64
	require.Nil(suite.T(), models.DB.Model(&models.Notification{}).Where("type = ?", models.NotificationPaymentDue).Count(&count).Error)
	assert.Equal(suite.T(), int64(2), count)
}

func (suite *TestSuiteStandard) TestGenerateDueReminders() {
	now := time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC)
	card := suite.createTestCard(models.Card{Name: "Platinum"})

	newInvoice := func(month time.Month, due time.Time, paid float64, status models.InvoiceStatus) models.Invoice {
		return suite.createTestInvoice(models.Invoice{
			CardID:         card.ID,
			ReferenceMonth: types.NewMonth(2024, month),
			ClosingDate:    due.AddDate(0, 0, -15),
			DueDate:        due,
			TotalAmount:    decimal.NewFromFloat(100),
			PaidAmount:     decimal.NewFromFloat(paid),
			Status:         status,
		})
	}

	_ = newInvoice(time.March, date(2024, time.April, 15), 0, models.InvoiceClosed)     // due in 5 days
	_ = newInvoice(time.February, date(2024, time.April, 11), 0, models.InvoiceClosed)  // due tomorrow
	_ = newInvoice(time.January, date(2024, time.April, 10), 30, models.InvoicePartial) // due today
	_ = newInvoice(time.May, date(2024, time.April, 14), 0, models.InvoiceClosed)       // due in 4 days, no reminder
	_ = newInvoice(time.June, date(2024, time.April, 15), 100, models.InvoicePaid)      // paid, no reminder

	result, err := invoices.GenerateDueReminders(models.DB, now)
	require.Nil(suite.T(), err)

	assert.Equal(suite.T(), 3, result.Emitted)
	assert.Equal(suite.T(), 0, result.Failed)

	counts := map[models.NotificationType]int64{}
	for _, kind := range []models.NotificationType{
		models.NotificationPaymentReminder5D,
		models.NotificationPaymentReminder1D,
		models.NotificationPaymentDue,
	} {
		var count int64
		require.Nil(suite.T(), models.DB.Model(&models.Notification{}).Where("type = ?", kind).Count(&count).Error)
		counts[kind] = count
	}

	assert.Equal(suite.T(), int64(1), counts[models.NotificationPaymentReminder5D])
	assert.Equal(suite.T(), int64(1), counts[models.NotificationPaymentReminder1D])
	assert.Equal(suite.T(), int64(1), counts[models.NotificationPaymentDue])

	// The notification carries the card, the due date and the remaining balance
	var notification models.Notification
	require.Nil(suite.T(), models.DB.Where("type = ?", models.NotificationPaymentDue).First(&notification).Error)
	assert.Equal(suite.T(), card.UserID, notification.UserID)
	assert.Contains(suite.T(), notification.Message, "Platinum")
	assert.Contains(suite.T(), notification.Message, "2024-04-10")
	assert.True(suite.T(), notification.RelatedAmount.Equal(decimal.NewFromFloat(70)), "Related amount is %s", notification.RelatedAmount)
	assert.Nil(suite.T(), notification.SentAt)
}
