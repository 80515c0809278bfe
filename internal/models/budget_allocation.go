package models

import (
	"errors"
	"strings"

	"github.com/centavo/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetAllocation is a named percentage-of-income spending envelope for
// one month. A user can have any number of allocations per month; if none
// exist when the month is first read, system defaults are materialized.
type BudgetAllocation struct {
	DefaultModel
	UserID     uuid.UUID       `json:"userId" gorm:"index:allocation_user_month"`
	ProfileID  *uuid.UUID      `json:"profileId"`
	Month      types.Month     `json:"month" gorm:"index:allocation_user_month"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage" gorm:"type:DECIMAL(20,8)"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Color      string          `json:"color"`
	Icon       string          `json:"icon"`
}

var ErrAllocationPercentOutOfRange = errors.New("allocation percentages must be between 0 and 100")

func (a *BudgetAllocation) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	return nil
}

func (a *BudgetAllocation) AfterSave(_ *gorm.DB) error {
	if a.Percentage.IsNegative() || a.Percentage.GreaterThan(oneHundred) {
		return ErrAllocationPercentOutOfRange
	}

	return nil
}
