package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Card represents a credit card together with its billing cycle
// configuration. The closing day ends the transaction window of a cycle,
// the due day is the day the invoice balance is payable.
type Card struct {
	DefaultModel
	UserID         uuid.UUID       `json:"userId" gorm:"index"`
	Name           string          `json:"name"`
	ClosingDay     int             `json:"closingDay"`
	DueDay         int             `json:"dueDay"`
	CreditLimit    decimal.Decimal `json:"creditLimit" gorm:"type:DECIMAL(20,8)"`
	AvailableLimit decimal.Decimal `json:"availableLimit" gorm:"type:DECIMAL(20,8)"`
}

var ErrCardDayOutOfRange = errors.New("closing day and due day must be between 1 and 31")

func (c *Card) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)

	if c.ClosingDay < 1 || c.ClosingDay > 31 || c.DueDay < 1 || c.DueDay > 31 {
		return ErrCardDayOutOfRange
	}

	return nil
}

// AdjustAvailableLimit raises the card's available limit by the given
// amount, clamped so that it never exceeds the credit limit.
func (c *Card) AdjustAvailableLimit(tx *gorm.DB, amount decimal.Decimal) error {
	available := c.AvailableLimit.Add(amount)
	if available.GreaterThan(c.CreditLimit) {
		available = c.CreditLimit
	}

	return tx.Model(c).Update("AvailableLimit", available).Error
}
