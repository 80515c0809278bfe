package budgets_test

import (
	"time"

	"github.com/centavo/backend/internal/budgets"
	"github.com/centavo/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestCheckHealthUnlinked() {
	category := suite.createTestCategory(models.Category{})

	// A category without an allocation link never blocks
	result, err := budgets.CheckHealth(models.DB, category.UserID, nil, category.ID, decimal.NewFromFloat(1000000))
	require.Nil(suite.T(), err)
	assert.True(suite.T(), result.Allowed)
	assert.False(suite.T(), result.Linked)
	assert.Empty(suite.T(), result.Warning)

	// Neither does an unknown category
	result, err = budgets.CheckHealth(models.DB, category.UserID, nil, uuid.New(), decimal.NewFromFloat(1000000))
	require.Nil(suite.T(), err)
	assert.True(suite.T(), result.Allowed)
	assert.False(suite.T(), result.Linked)

	// Nor a category of another user
	result, err = budgets.CheckHealth(models.DB, uuid.New(), nil, category.ID, decimal.NewFromFloat(1000000))
	require.Nil(suite.T(), err)
	assert.True(suite.T(), result.Allowed)
	assert.False(suite.T(), result.Linked)
}

func (suite *TestSuiteStandard) TestCheckHealthWithinBudget() {
	allocation := suite.createTestAllocation(models.BudgetAllocation{
		Month:  monthOf(2024, time.March),
		Name:   "Essentials",
		Amount: decimal.NewFromFloat(1000),
	})

	category := suite.createTestCategory(models.Category{
		UserID:             allocation.UserID,
		BudgetAllocationID: &allocation.ID,
	})

	_ = suite.createTestExpense(category, models.TransactionManual, 400, "2024-03-05")

	result, err := budgets.CheckHealth(models.DB, allocation.UserID, nil, category.ID, decimal.NewFromFloat(100))
	require.Nil(suite.T(), err)

	assert.True(suite.T(), result.Allowed)
	assert.True(suite.T(), result.Linked)
	assert.Empty(suite.T(), result.Warning)
	assert.Equal(suite.T(), "Essentials", result.Envelope)
	assert.True(suite.T(), result.Spent.Equal(decimal.NewFromFloat(400)), "Spent is %s", result.Spent)
	assert.True(suite.T(), result.NewTotal.Equal(decimal.NewFromFloat(500)), "New total is %s", result.NewTotal)

	// Consuming the envelope exactly is still allowed
	result, err = budgets.CheckHealth(models.DB, allocation.UserID, nil, category.ID, decimal.NewFromFloat(600))
	require.Nil(suite.T(), err)
	assert.True(suite.T(), result.Allowed)
}

func (suite *TestSuiteStandard) TestCheckHealthBudgetExceeded() {
	allocation := suite.createTestAllocation(models.BudgetAllocation{
		Month:  monthOf(2024, time.March),
		Name:   "Leisure",
		Amount: decimal.NewFromFloat(150),
	})

	category := suite.createTestCategory(models.Category{
		UserID:             allocation.UserID,
		BudgetAllocationID: &allocation.ID,
	})

	_ = suite.createTestExpense(category, models.TransactionManual, 100, "2024-03-05")

	result, err := budgets.CheckHealth(models.DB, allocation.UserID, nil, category.ID, decimal.NewFromFloat(75))
	require.Nil(suite.T(), err)

	assert.False(suite.T(), result.Allowed)
	assert.True(suite.T(), result.Linked)
	assert.Equal(suite.T(), budgets.WarningBudgetExceeded, result.Warning)
	assert.True(suite.T(), result.NewTotal.Equal(decimal.NewFromFloat(175)), "New total is %s", result.NewTotal)
	assert.True(suite.T(), result.ExceedsBy.Equal(decimal.NewFromFloat(25)), "Exceeds by %s", result.ExceedsBy)

	// The check never writes, so repeating it gives the same answer
	again, err := budgets.CheckHealth(models.DB, allocation.UserID, nil, category.ID, decimal.NewFromFloat(75))
	require.Nil(suite.T(), err)
	assert.Equal(suite.T(), result, again)
}

func (suite *TestSuiteStandard) TestCheckHealthProfileIsolation() {
	profileID := uuid.New()

	allocation := suite.createTestAllocation(models.BudgetAllocation{
		ProfileID: &profileID,
		Month:     monthOf(2024, time.March),
		Name:      "Leisure",
		Amount:    decimal.NewFromFloat(100),
	})

	category := suite.createTestCategory(models.Category{
		UserID:             allocation.UserID,
		BudgetAllocationID: &allocation.ID,
	})

	_ = suite.createTestExpense(category, models.TransactionManual, 90, "2024-03-05")

	// An envelope of another profile does not block spending on this one
	result, err := budgets.CheckHealth(models.DB, allocation.UserID, nil, category.ID, decimal.NewFromFloat(50))
	require.Nil(suite.T(), err)
	assert.True(suite.T(), result.Allowed)
	assert.False(suite.T(), result.Linked)

	otherProfile := uuid.New()
	result, err = budgets.CheckHealth(models.DB, allocation.UserID, &otherProfile, category.ID, decimal.NewFromFloat(50))
	require.Nil(suite.T(), err)
	assert.True(suite.T(), result.Allowed)
	assert.False(suite.T(), result.Linked)

	// On its own profile the envelope counts as usual
	result, err = budgets.CheckHealth(models.DB, allocation.UserID, &profileID, category.ID, decimal.NewFromFloat(50))
	require.Nil(suite.T(), err)
	assert.False(suite.T(), result.Allowed)
	assert.True(suite.T(), result.Linked)
	assert.Equal(suite.T(), budgets.WarningBudgetExceeded, result.Warning)
	assert.True(suite.T(), result.ExceedsBy.Equal(decimal.NewFromFloat(40)), "Exceeds by %s", result.ExceedsBy)
}

func (suite *TestSuiteStandard) TestResetStreak() {
	userID := uuid.New()

	// Resetting without a streak row creates one at zero
	require.Nil(suite.T(), budgets.ResetStreak(models.DB, userID))

	var streak models.Streak
	require.Nil(suite.T(), models.DB.First(&streak, "user_id = ?", userID).Error)
	assert.Equal(suite.T(), 0, streak.Count)

	require.Nil(suite.T(), models.DB.Model(&streak).Update("Count", 12).Error)

	require.Nil(suite.T(), budgets.ResetStreak(models.DB, userID))
	require.Nil(suite.T(), models.DB.First(&streak, "user_id = ?", userID).Error)
	assert.Equal(suite.T(), 0, streak.Count)
}
