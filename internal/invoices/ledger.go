package invoices

import (
	"errors"
	"fmt"
	"time"

	"github.com/centavo/backend/internal/models"
	"github.com/centavo/backend/internal/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAlreadyPaid      = errors.New("the invoice is already fully paid")
	ErrInvalidAmount    = errors.New("the payment amount must be larger than zero")
	ErrExceedsRemaining = errors.New("the payment amount exceeds the remaining balance of the invoice")
	ErrNoAmountDue      = errors.New("there is no amount due for the current cycle")
	ErrConcurrentUpdate = errors.New("the invoice was modified concurrently, please retry")
)

// minimumPaymentRate is the fraction of the total amount a cardholder may
// pay without the invoice remaining fully open.
var minimumPaymentRate = decimal.NewFromFloat(0.15)

var (
	invoicesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoices_generated_total",
		Help: "How many invoice generations and refreshes have been performed.",
	})

	paymentsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoice_payments_applied_total",
		Help: "How many invoice payments have been applied.",
	})
)

// GenerateOrRefresh computes the invoice of the card for the reference
// month from the card transactions in its window.
//
// If the invoice already exists, its amounts and dates are recomputed in
// place; the paid amount is never touched, so refreshing is always safe,
// also while payments are being applied. If it does not exist, it is
// created as OPEN with nothing paid.
func GenerateOrRefresh(db *gorm.DB, userID, cardID uuid.UUID, month types.Month) (models.Invoice, error) {
	var card models.Card
	err := db.First(&card, "id = ? AND user_id = ?", cardID, userID).Error
	if err != nil {
		return models.Invoice{}, err
	}

	closing, due := CycleDates(card.ClosingDay, card.DueDay, month)
	start, end := TransactionWindow(card.ClosingDay, month)

	total, err := models.CardTransactionsSum(db, card.ID, start, end)
	if err != nil {
		return models.Invoice{}, err
	}

	minimum := total.Mul(minimumPaymentRate)

	var invoice models.Invoice
	err = db.Where("card_id = ?", card.ID).Where("reference_month = ?", month).First(&invoice).Error
	if err != nil && !errors.Is(err, models.ErrResourceNotFound) {
		return models.Invoice{}, err
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		invoice = models.Invoice{
			CardID:         card.ID,
			ReferenceMonth: month,
			ClosingDate:    closing,
			DueDate:        due,
			TotalAmount:    total,
			PaidAmount:     decimal.Zero,
			MinimumPayment: minimum,
			Status:         models.InvoiceOpen,
		}

		err = db.Create(&invoice).Error
		if err != nil {
			return models.Invoice{}, err
		}

		invoicesGenerated.Inc()
		return invoice, nil
	}

	invoice.TotalAmount = total
	invoice.MinimumPayment = minimum
	invoice.ClosingDate = closing
	invoice.DueDate = due

	err = db.Model(&invoice).Select("TotalAmount", "MinimumPayment", "ClosingDate", "DueDate").Updates(&invoice).Error
	if err != nil {
		return models.Invoice{}, err
	}

	invoicesGenerated.Inc()
	return invoice, nil
}

// PaymentRequest are the caller-supplied values for a payment.
type PaymentRequest struct {
	Amount        decimal.Decimal
	PaymentType   models.PaymentType
	PaymentMethod string
	BankAccountID *uuid.UUID
	Notes         string
}

// PaymentResult is the payment record together with the updated invoice
// summary.
type PaymentResult struct {
	Payment models.InvoicePayment
	Invoice models.Invoice
}

// ApplyPayment applies one payment to an invoice.
//
// The amount is resolved from the payment type before anything is
// persisted and validated against the remaining balance, so an invoice can
// never be paid past zero. The whole sequence runs in one database
// transaction with a compare-and-swap on the paid amount, which keeps two
// concurrent payments from both consuming the same remaining balance.
func ApplyPayment(db *gorm.DB, userID, invoiceID uuid.UUID, request PaymentRequest) (PaymentResult, error) {
	var result PaymentResult

	err := db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		err := tx.First(&invoice, "id = ?", invoiceID).Error
		if err != nil {
			return err
		}

		// Ownership check via the card the invoice belongs to
		var card models.Card
		err = tx.First(&card, "id = ? AND user_id = ?", invoice.CardID, userID).Error
		if err != nil {
			return fmt.Errorf("%w invoice matching your query", models.ErrResourceNotFound)
		}

		remaining := invoice.Remaining()
		if remaining.LessThanOrEqual(decimal.Zero) {
			return ErrAlreadyPaid
		}

		amount, err := resolveAmount(invoice, request, remaining)
		if err != nil {
			return err
		}

		if request.BankAccountID != nil {
			var account models.BankAccount
			err = tx.First(&account, "id = ? AND user_id = ?", *request.BankAccountID, userID).Error
			if err != nil {
				return err
			}
		}

		payment := models.InvoicePayment{
			InvoiceID:     invoice.ID,
			Amount:        amount,
			PaymentType:   request.PaymentType,
			PaymentMethod: request.PaymentMethod,
			BankAccountID: request.BankAccountID,
			Notes:         request.Notes,
		}

		err = tx.Create(&payment).Error
		if err != nil {
			return err
		}

		paid := invoice.PaidAmount.Add(amount)

		// The status is re-evaluated on every payment, independent of the
		// previous state: an OVERDUE invoice that is paid off becomes PAID.
		updates := map[string]any{
			"paid_amount": paid,
			"status":      models.InvoicePartial,
		}

		if invoice.TotalAmount.Sub(paid).LessThanOrEqual(decimal.Zero) {
			updates["status"] = models.InvoicePaid
			updates["paid_at"] = time.Now().In(time.UTC)
		}

		// Compare-and-swap on the paid amount. If another payment got in
		// between our read and this write, no row matches and we roll back
		// instead of overpaying.
		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND paid_amount = ?", invoice.ID, invoice.PaidAmount).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		// A payment frees up the card's available limit again
		err = card.AdjustAvailableLimit(tx, amount)
		if err != nil {
			return err
		}

		err = tx.First(&invoice, "id = ?", invoice.ID).Error
		if err != nil {
			return err
		}

		result = PaymentResult{
			Payment: payment,
			Invoice: invoice,
		}

		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}

	paymentsApplied.Inc()
	return result, nil
}

// resolveAmount resolves the amount of a payment from its type.
func resolveAmount(invoice models.Invoice, request PaymentRequest, remaining decimal.Decimal) (decimal.Decimal, error) {
	switch request.PaymentType {
	case models.PaymentFull:
		return remaining, nil

	case models.PaymentMinimum:
		if invoice.MinimumPayment.GreaterThan(remaining) {
			return remaining, nil
		}
		return invoice.MinimumPayment, nil

	case models.PaymentPartial, models.PaymentAdvance:
		if request.Amount.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, ErrInvalidAmount
		}

		if request.Amount.GreaterThan(remaining) {
			return decimal.Zero, ErrExceedsRemaining
		}

		return request.Amount, nil
	}

	return decimal.Zero, fmt.Errorf("%w: unknown payment type %q", ErrInvalidAmount, request.PaymentType)
}

// AdvancePayment pays an amount against the running cycle's invoice,
// generating the invoice first if it does not exist yet.
func AdvancePayment(db *gorm.DB, userID, cardID uuid.UUID, amount decimal.Decimal, bankAccountID *uuid.UUID, now time.Time) (PaymentResult, error) {
	var card models.Card
	err := db.First(&card, "id = ? AND user_id = ?", cardID, userID).Error
	if err != nil {
		return PaymentResult{}, err
	}

	// Once this month's window has closed, the running cycle is next
	// month's statement
	month := types.MonthOf(now)
	if day(now).After(month.Day(card.ClosingDay)) {
		month = month.AddDate(0, 1)
	}

	invoice, err := GenerateOrRefresh(db, userID, cardID, month)
	if err != nil {
		return PaymentResult{}, err
	}

	if invoice.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return PaymentResult{}, ErrNoAmountDue
	}

	return ApplyPayment(db, userID, invoice.ID, PaymentRequest{
		Amount:        amount,
		PaymentType:   models.PaymentAdvance,
		BankAccountID: bankAccountID,
	})
}
