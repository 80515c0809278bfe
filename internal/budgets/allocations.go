package budgets

import (
	"errors"
	"fmt"

	"github.com/centavo/backend/internal/models"
	"github.com/centavo/backend/internal/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInvalidPercentages = errors.New("allocation percentages must add up to 100")

// DefaultReferenceIncome is the income the default allocations are scaled
// against when the user has not set up a budget for the month yet.
var DefaultReferenceIncome = decimal.NewFromInt(3000)

// percentTolerance absorbs rounding noise in user-supplied percentages.
var percentTolerance = decimal.NewFromFloat(0.01)

var oneHundred = decimal.NewFromInt(100)

var allocationsMaterialized = promauto.NewCounter(prometheus.CounterOpts{
	Name: "budget_allocations_materialized_total",
	Help: "How many times the default allocations have been materialized for a month.",
})

// defaultAllocations are materialized for a month that has none yet.
var defaultAllocations = []struct {
	name       string
	percentage int64
	color      string
	icon       string
}{
	{"Essentials", 50, "#2c3e50", "home"},
	{"Personal", 20, "#8e44ad", "user"},
	{"Investments", 15, "#27ae60", "trending-up"},
	{"Emergency", 10, "#c0392b", "shield"},
	{"Leisure", 5, "#f39c12", "sun"},
}

// AllocationStatus is an allocation enriched with its consumption for the
// month. Spent is recomputed on every read, nothing is cached.
type AllocationStatus struct {
	models.BudgetAllocation
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Progress  decimal.Decimal `json:"progress"`
}

// AllocationInput are the caller-supplied values for one allocation in a
// replacement request.
type AllocationInput struct {
	Name       string          `json:"name" binding:"required"`
	Percentage decimal.Decimal `json:"percentage"`
	Color      string          `json:"color"`
	Icon       string          `json:"icon"`
}

// ProfileScope scopes a query to one profile, treating nil as the default
// profile rather than a wildcard.
func ProfileScope(profileID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if profileID == nil {
			return db.Where("profile_id IS NULL")
		}

		return db.Where("profile_id = ?", profileID)
	}
}

// referenceIncome returns the income the allocation amounts are scaled
// against: the month's budgeted income, floored at DefaultReferenceIncome.
func referenceIncome(db *gorm.DB, userID uuid.UUID, profileID *uuid.UUID, month types.Month) (decimal.Decimal, error) {
	var budget models.Budget
	err := db.
		Scopes(ProfileScope(profileID)).
		Where("user_id = ?", userID).
		Where("month = ?", month).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, models.ErrResourceNotFound) {
			return DefaultReferenceIncome, nil
		}

		return decimal.Zero, err
	}

	if budget.IncomeExpected.LessThan(DefaultReferenceIncome) {
		return DefaultReferenceIncome, nil
	}

	return budget.IncomeExpected, nil
}

// EnsureAllocations returns the allocations for the month, materializing
// the system defaults first when the month has none.
func EnsureAllocations(db *gorm.DB, userID uuid.UUID, profileID *uuid.UUID, month types.Month) ([]AllocationStatus, error) {
	var allocations []models.BudgetAllocation
	err := db.
		Scopes(ProfileScope(profileID)).
		Where("user_id = ?", userID).
		Where("month = ?", month).
		Order("percentage desc, name asc").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	if len(allocations) == 0 {
		income, err := referenceIncome(db, userID, profileID, month)
		if err != nil {
			return nil, err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			for _, preset := range defaultAllocations {
				percentage := decimal.NewFromInt(preset.percentage)

				allocation := models.BudgetAllocation{
					UserID:     userID,
					ProfileID:  profileID,
					Month:      month,
					Name:       preset.name,
					Percentage: percentage,
					Amount:     income.Mul(percentage).Div(oneHundred),
					Color:      preset.color,
					Icon:       preset.icon,
				}

				err := tx.Create(&allocation).Error
				if err != nil {
					return err
				}

				allocations = append(allocations, allocation)
			}

			return nil
		})
		if err != nil {
			return nil, err
		}

		allocationsMaterialized.Inc()
	}

	statuses := make([]AllocationStatus, 0, len(allocations))
	for _, allocation := range allocations {
		spent, err := allocationSpent(db, allocation)
		if err != nil {
			return nil, err
		}

		statuses = append(statuses, newAllocationStatus(allocation, spent))
	}

	return statuses, nil
}

// newAllocationStatus derives the consumption fields of one allocation.
func newAllocationStatus(allocation models.BudgetAllocation, spent decimal.Decimal) AllocationStatus {
	progress := decimal.Zero
	if allocation.Amount.IsPositive() {
		progress = spent.Div(allocation.Amount).Mul(oneHundred)
		if progress.GreaterThan(oneHundred) {
			progress = oneHundred
		}
	}

	return AllocationStatus{
		BudgetAllocation: allocation,
		Spent:            spent,
		Remaining:        allocation.Amount.Sub(spent),
		Progress:         progress,
	}
}

// allocationSpent sums the month's transactions of all categories linked to
// the allocation.
func allocationSpent(db *gorm.DB, allocation models.BudgetAllocation) (decimal.Decimal, error) {
	var categoryIDs []uuid.UUID
	err := db.
		Model(&models.Category{}).
		Where("budget_allocation_id = ?", allocation.ID).
		Pluck("id", &categoryIDs).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading linked categories failed: %w", err)
	}

	return models.CategoryTransactionsSum(db, categoryIDs, allocation.Month)
}

// ReplaceAllocations replaces the month's allocations with the supplied
// set, scaling the amounts against the supplied income. Without an income,
// the month's reference income is used instead.
//
// The percentages must add up to 100, within a tolerance of 0.01 for
// rounding noise. The replacement is all-or-nothing: the existing
// allocations are deleted and the new ones created in one transaction, so
// a failed validation leaves the month untouched.
func ReplaceAllocations(db *gorm.DB, userID uuid.UUID, profileID *uuid.UUID, month types.Month, income decimal.Decimal, inputs []AllocationInput) ([]AllocationStatus, error) {
	sum := decimal.Zero
	for _, input := range inputs {
		sum = sum.Add(input.Percentage)
	}

	if sum.Sub(oneHundred).Abs().GreaterThan(percentTolerance) {
		return nil, fmt.Errorf("%w, got %s", ErrInvalidPercentages, sum)
	}

	if !income.IsPositive() {
		var err error
		income, err = referenceIncome(db, userID, profileID, month)
		if err != nil {
			return nil, err
		}
	}

	var allocations []models.BudgetAllocation
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Scopes(ProfileScope(profileID)).
			Where("user_id = ?", userID).
			Where("month = ?", month).
			Delete(&models.BudgetAllocation{}).Error
		if err != nil {
			return err
		}

		for _, input := range inputs {
			allocation := models.BudgetAllocation{
				UserID:     userID,
				ProfileID:  profileID,
				Month:      month,
				Name:       input.Name,
				Percentage: input.Percentage,
				Amount:     income.Mul(input.Percentage).Div(oneHundred),
				Color:      input.Color,
				Icon:       input.Icon,
			}

			err := tx.Create(&allocation).Error
			if err != nil {
				return err
			}

			allocations = append(allocations, allocation)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	statuses := make([]AllocationStatus, 0, len(allocations))
	for _, allocation := range allocations {
		spent, err := allocationSpent(db, allocation)
		if err != nil {
			return nil, err
		}

		statuses = append(statuses, newAllocationStatus(allocation, spent))
	}

	return statuses, nil
}
