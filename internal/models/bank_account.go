package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BankAccount represents an account that invoice payments can be made from.
type BankAccount struct {
	DefaultModel
	UserID  uuid.UUID       `json:"userId" gorm:"index"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,8)"`
}

func (a *BankAccount) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	return nil
}
