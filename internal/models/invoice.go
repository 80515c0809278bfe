package models

import (
	"errors"
	"time"

	"github.com/centavo/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
//
// OPEN    - transactions still accrue to this cycle
// CLOSED  - the cycle has closed, the balance is awaiting payment
// PARTIAL - some, but not all, of the balance has been paid
// PAID    - the balance has been paid in full; terminal
// OVERDUE - the due date has passed with a remaining balance
type InvoiceStatus string

const (
	InvoiceOpen    InvoiceStatus = "OPEN"
	InvoiceClosed  InvoiceStatus = "CLOSED"
	InvoicePaid    InvoiceStatus = "PAID"
	InvoicePartial InvoiceStatus = "PARTIAL"
	InvoiceOverdue InvoiceStatus = "OVERDUE"
)

// Invoice represents one card's statement for a single month cycle.
//
// There is exactly one invoice per card and reference month. It is created
// on the first generation request for a cycle, refreshed in place on every
// subsequent one and never deleted.
type Invoice struct {
	DefaultModel
	CardID         uuid.UUID       `json:"cardId" gorm:"uniqueIndex:invoice_card_month"`
	Card           Card            `json:"-"`
	ReferenceMonth types.Month     `json:"referenceMonth" gorm:"uniqueIndex:invoice_card_month"`
	ClosingDate    time.Time       `json:"closingDate"`
	DueDate        time.Time       `json:"dueDate" gorm:"index"`
	TotalAmount    decimal.Decimal `json:"totalAmount" gorm:"type:DECIMAL(20,8)"`
	PaidAmount     decimal.Decimal `json:"paidAmount" gorm:"type:DECIMAL(20,8)"`
	MinimumPayment decimal.Decimal `json:"minimumPayment" gorm:"type:DECIMAL(20,8)"`
	Status         InvoiceStatus   `json:"status" gorm:"default:OPEN"`
	PaidAt         *time.Time      `json:"paidAt"`
}

var ErrInvoiceMonthNotUnique = errors.New("you can not create multiple invoices for the same card and month")

// Remaining returns the unpaid part of the invoice balance.
func (i Invoice) Remaining() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}
