package models

import (
	"errors"

	"github.com/centavo/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget is the monthly plan for a user: the expected income and the
// percentages reserved for investment and the emergency fund.
//
// A Budget expresses top-level savings targets. The spending-category
// envelopes are BudgetAllocations, which are scaled against the budget's
// expected income.
type Budget struct {
	DefaultModel
	UserID           uuid.UUID       `json:"userId" gorm:"uniqueIndex:budget_user_profile_month"`
	ProfileID        *uuid.UUID      `json:"profileId" gorm:"uniqueIndex:budget_user_profile_month"`
	Month            types.Month     `json:"month" gorm:"uniqueIndex:budget_user_profile_month"`
	IncomeExpected   decimal.Decimal `json:"incomeExpected" gorm:"type:DECIMAL(20,8)"`
	InvestPercent    decimal.Decimal `json:"investPercent" gorm:"type:DECIMAL(20,8)"`
	EmergencyPercent decimal.Decimal `json:"emergencyPercent" gorm:"type:DECIMAL(20,8)"`
}

var (
	ErrBudgetMonthNotUnique  = errors.New("you can not create multiple budgets for the same month")
	ErrBudgetPercentsTooHigh = errors.New("investment and emergency percentages must not exceed 100 combined")
)

var oneHundred = decimal.NewFromInt(100)

func (b *Budget) AfterSave(_ *gorm.DB) error {
	if b.InvestPercent.Add(b.EmergencyPercent).GreaterThan(oneHundred) {
		return ErrBudgetPercentsTooHigh
	}

	return nil
}

// RecommendedInvestment returns the amount of the expected income that
// should go to investments.
func (b Budget) RecommendedInvestment() decimal.Decimal {
	return b.IncomeExpected.Mul(b.InvestPercent).Div(oneHundred)
}

// RecommendedEmergency returns the amount of the expected income that
// should go to the emergency fund.
func (b Budget) RecommendedEmergency() decimal.Decimal {
	return b.IncomeExpected.Mul(b.EmergencyPercent).Div(oneHundred)
}

// SpendingLimit returns the income left for spending after the savings
// targets are taken out.
func (b Budget) SpendingLimit() decimal.Decimal {
	return b.IncomeExpected.Sub(b.RecommendedInvestment()).Sub(b.RecommendedEmergency())
}
