package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/centavo/backend/internal/budgets"
	v1 "github.com/centavo/backend/internal/controllers/v1"
	"github.com/centavo/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestBudgetPlan() {
	// The plan does not exist yet
	recorder := suite.request(http.MethodGet, "/v1/budgets/2024/3", "")
	test.AssertHTTPStatus(suite.T(), http.StatusNotFound, &recorder)

	// Create it
	recorder = suite.request(http.MethodPut, "/v1/budgets/2024/3", v1.BudgetEditable{
		IncomeExpected:   decimal.NewFromFloat(5000),
		InvestPercent:    decimal.NewFromFloat(15),
		EmergencyPercent: decimal.NewFromFloat(10),
	})
	test.AssertHTTPStatus(suite.T(), http.StatusCreated, &recorder)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	require.NotNil(suite.T(), response.Data)

	assert.True(suite.T(), response.Data.RecommendedInvestment.Equal(decimal.NewFromFloat(750)), "Recommended investment is %s", response.Data.RecommendedInvestment)
	assert.True(suite.T(), response.Data.RecommendedEmergency.Equal(decimal.NewFromFloat(500)), "Recommended emergency is %s", response.Data.RecommendedEmergency)
	assert.True(suite.T(), response.Data.SpendingLimit.Equal(decimal.NewFromFloat(3750)), "Spending limit is %s", response.Data.SpendingLimit)

	// Update it in place
	recorder = suite.request(http.MethodPut, "/v1/budgets/2024/3", v1.BudgetEditable{
		IncomeExpected:   decimal.NewFromFloat(6000),
		InvestPercent:    decimal.NewFromFloat(20),
		EmergencyPercent: decimal.NewFromFloat(10),
	})
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &recorder)

	// Reading it back returns the update
	recorder = suite.request(http.MethodGet, "/v1/budgets/2024/3", "")
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &recorder)

	test.DecodeResponse(suite.T(), &recorder, &response)
	require.NotNil(suite.T(), response.Data)
	assert.True(suite.T(), response.Data.IncomeExpected.Equal(decimal.NewFromFloat(6000)), "Income is %s", response.Data.IncomeExpected)
}

func (suite *TestSuiteStandard) TestBudgetPlanProfiles() {
	profileID := uuid.New()

	// One plan on the default profile, one on a named profile
	recorder := suite.request(http.MethodPut, "/v1/budgets/2024/3", v1.BudgetEditable{
		IncomeExpected: decimal.NewFromFloat(5000),
	})
	test.AssertHTTPStatus(suite.T(), http.StatusCreated, &recorder)

	recorder = suite.request(http.MethodPut, "/v1/budgets/2024/3", v1.BudgetEditable{
		ProfileID:      &profileID,
		IncomeExpected: decimal.NewFromFloat(8000),
	})
	test.AssertHTTPStatus(suite.T(), http.StatusCreated, &recorder)

	// Each read addresses its own plan
	recorder = suite.request(http.MethodGet, "/v1/budgets/2024/3", "")
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &recorder)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	require.NotNil(suite.T(), response.Data)
	assert.True(suite.T(), response.Data.IncomeExpected.Equal(decimal.NewFromFloat(5000)), "Income is %s", response.Data.IncomeExpected)

	recorder = suite.request(http.MethodGet, fmt.Sprintf("/v1/budgets/2024/3?profileId=%s", profileID), "")
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &recorder)

	test.DecodeResponse(suite.T(), &recorder, &response)
	require.NotNil(suite.T(), response.Data)
	assert.True(suite.T(), response.Data.IncomeExpected.Equal(decimal.NewFromFloat(8000)), "Income is %s", response.Data.IncomeExpected)

	// Updating the named profile's plan leaves the default one alone
	recorder = suite.request(http.MethodPut, "/v1/budgets/2024/3", v1.BudgetEditable{
		ProfileID:      &profileID,
		IncomeExpected: decimal.NewFromFloat(9000),
	})
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &recorder)

	recorder = suite.request(http.MethodGet, "/v1/budgets/2024/3", "")
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &recorder)

	test.DecodeResponse(suite.T(), &recorder, &response)
	require.NotNil(suite.T(), response.Data)
	assert.True(suite.T(), response.Data.IncomeExpected.Equal(decimal.NewFromFloat(5000)), "Income is %s", response.Data.IncomeExpected)
}

func (suite *TestSuiteStandard) TestBudgetPlanValidation() {
	// Percentages that cannot be satisfied are rejected
	recorder := suite.request(http.MethodPut, "/v1/budgets/2024/3", v1.BudgetEditable{
		IncomeExpected:   decimal.NewFromFloat(5000),
		InvestPercent:    decimal.NewFromFloat(70),
		EmergencyPercent: decimal.NewFromFloat(40),
	})
	test.AssertHTTPStatus(suite.T(), http.StatusBadRequest, &recorder)
}

func (suite *TestSuiteStandard) TestAllocationDefaults() {
	recorder := suite.request(http.MethodGet, "/v1/budgets/2024/3/allocations", "")
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &recorder)

	var response v1.AllocationListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	require.Len(suite.T(), response.Data, 5)

	assert.Equal(suite.T(), "Essentials", response.Data[0].Name)
	assert.True(suite.T(), response.Data[0].Amount.Equal(decimal.NewFromFloat(1500)), "Essentials amount is %s", response.Data[0].Amount)

	sum := decimal.Zero
	for _, status := range response.Data {
		sum = sum.Add(status.Percentage)
	}
	assert.True(suite.T(), sum.Equal(decimal.NewFromInt(100)), "Percentages add up to %s", sum)
}

func (suite *TestSuiteStandard) TestAllocationReplace() {
	tests := []struct {
		name        string
		percentages []float64
		status      int
	}{
		{"Valid set", []float64{60, 40}, http.StatusOK},
		{"Within tolerance", []float64{33.33, 33.33, 33.33}, http.StatusOK},
		{"Sum too low", []float64{60, 30}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			inputs := make([]budgets.AllocationInput, 0, len(tt.percentages))
			for i, percentage := range tt.percentages {
				inputs = append(inputs, budgets.AllocationInput{
					Name:       string(rune('A' + i)),
					Percentage: decimal.NewFromFloat(percentage),
				})
			}

			recorder := suite.request(http.MethodPut, "/v1/budgets/2024/3/allocations", v1.ReplaceAllocationsEditable{
				Allocations: inputs,
			})
			test.AssertHTTPStatus(t, tt.status, &recorder)

			if tt.status == http.StatusOK {
				var response v1.AllocationListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Len(t, response.Data, len(tt.percentages))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationReplaceWithIncome() {
	// The amounts are scaled against the income of the request
	recorder := suite.request(http.MethodPut, "/v1/budgets/2024/3/allocations", v1.ReplaceAllocationsEditable{
		Income: decimal.NewFromFloat(6000),
		Allocations: []budgets.AllocationInput{
			{Name: "Fixed costs", Percentage: decimal.NewFromFloat(70)},
			{Name: "Fun", Percentage: decimal.NewFromFloat(30)},
		},
	})
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &recorder)

	var response v1.AllocationListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	require.Len(suite.T(), response.Data, 2)

	assert.True(suite.T(), response.Data[0].Amount.Equal(decimal.NewFromFloat(4200)), "Amount is %s", response.Data[0].Amount)
	assert.True(suite.T(), response.Data[1].Amount.Equal(decimal.NewFromFloat(1800)), "Amount is %s", response.Data[1].Amount)
}
