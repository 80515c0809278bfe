package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentType determines how the amount of a payment is resolved.
type PaymentType string

const (
	PaymentFull    PaymentType = "FULL"    // pays the remaining balance
	PaymentPartial PaymentType = "PARTIAL" // pays a caller-supplied amount
	PaymentMinimum PaymentType = "MINIMUM" // pays the minimum payment, capped at the remaining balance
	PaymentAdvance PaymentType = "ADVANCE" // pays a caller-supplied amount before the cycle closes
)

// InvoicePayment is the record of one payment event against an invoice.
//
// Payments are append-only: they are created, never updated and never
// deleted. The paid amount on the invoice is derived from them.
type InvoicePayment struct {
	DefaultModel
	InvoiceID     uuid.UUID       `json:"invoiceId" gorm:"index"`
	Invoice       Invoice         `json:"-"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	PaymentDate   time.Time       `json:"paymentDate"`
	PaymentType   PaymentType     `json:"paymentType"`
	PaymentMethod string          `json:"paymentMethod"`
	BankAccountID *uuid.UUID      `json:"bankAccountId"`
	Notes         string          `json:"notes"`
}

func (p *InvoicePayment) BeforeSave(_ *gorm.DB) error {
	p.Notes = strings.TrimSpace(p.Notes)

	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().In(time.UTC)
	} else {
		p.PaymentDate = p.PaymentDate.In(time.UTC)
	}

	return nil
}
