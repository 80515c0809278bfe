package budgets

import (
	"errors"
	"time"

	"github.com/centavo/backend/internal/models"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WarningBudgetExceeded is set on a HealthResult when the prospective
// expense would push the linked allocation over its limit.
const WarningBudgetExceeded = "BUDGET_EXCEEDED"

var healthChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "budget_health_checks_total",
	Help: "How many budget health checks have been performed, partitioned by outcome.",
}, []string{"outcome"})

// HealthResult is the decision of a budget health check.
//
// Linked is false when the expense does not count against any allocation,
// in which case Allowed is always true and the amount fields are zero.
type HealthResult struct {
	Allowed   bool            `json:"allowed"`
	Linked    bool            `json:"linked"`
	Warning   string          `json:"warning,omitempty"`
	Envelope  string          `json:"envelope,omitempty"`
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	NewTotal  decimal.Decimal `json:"newTotal"`
	ExceedsBy decimal.Decimal `json:"exceedsBy"`
}

// CheckHealth decides whether a prospective expense fits into the budget.
//
// The category's allocation link is followed to the envelope the expense
// counts against; a category without a link, an unknown category or a link
// into another user's or another profile's data never blocks. The check is
// a pure decision, it writes nothing: enforcing the decision, or
// overriding it, is the caller's business.
func CheckHealth(db *gorm.DB, userID uuid.UUID, profileID *uuid.UUID, categoryID uuid.UUID, amount decimal.Decimal) (HealthResult, error) {
	passThrough := HealthResult{Allowed: true, Linked: false}

	var category models.Category
	err := db.First(&category, "id = ? AND user_id = ?", categoryID, userID).Error
	if err != nil {
		if errors.Is(err, models.ErrResourceNotFound) {
			healthChecks.WithLabelValues("unlinked").Inc()
			return passThrough, nil
		}

		return HealthResult{}, err
	}

	if category.BudgetAllocationID == nil {
		healthChecks.WithLabelValues("unlinked").Inc()
		return passThrough, nil
	}

	var allocation models.BudgetAllocation
	err = db.First(&allocation, "id = ? AND user_id = ?", category.BudgetAllocationID, userID).Error
	if err != nil {
		if errors.Is(err, models.ErrResourceNotFound) {
			healthChecks.WithLabelValues("unlinked").Inc()
			return passThrough, nil
		}

		return HealthResult{}, err
	}

	// An envelope of another profile does not count against this expense
	if !sameProfile(allocation.ProfileID, profileID) {
		healthChecks.WithLabelValues("unlinked").Inc()
		return passThrough, nil
	}

	spent, err := allocationSpent(db, allocation)
	if err != nil {
		return HealthResult{}, err
	}

	newTotal := spent.Add(amount)

	result := HealthResult{
		Allowed:  true,
		Linked:   true,
		Envelope: allocation.Name,
		Limit:    allocation.Amount,
		Spent:    spent,
		NewTotal: newTotal,
	}

	if newTotal.GreaterThan(allocation.Amount) {
		result.Allowed = false
		result.Warning = WarningBudgetExceeded
		result.ExceedsBy = newTotal.Sub(allocation.Amount)
		healthChecks.WithLabelValues("blocked").Inc()
		return result, nil
	}

	healthChecks.WithLabelValues("allowed").Inc()
	return result, nil
}

// sameProfile reports whether two profile references point at the same
// profile. A nil reference means the default profile, so nil only matches
// nil.
func sameProfile(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

// ResetStreak zeroes the user's streak counter. It is called when the user
// forces an expense through a failed health check.
func ResetStreak(db *gorm.DB, userID uuid.UUID) error {
	var streak models.Streak
	err := db.First(&streak, "user_id = ?", userID).Error
	if err != nil {
		if !errors.Is(err, models.ErrResourceNotFound) {
			return err
		}

		streak = models.Streak{UserID: userID, LastActivity: time.Now().In(time.UTC)}
		return db.Create(&streak).Error
	}

	return db.Model(&streak).Updates(map[string]any{
		"count":         0,
		"last_activity": time.Now().In(time.UTC),
	}).Error
}
