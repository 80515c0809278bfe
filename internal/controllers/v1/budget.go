package v1

import (
	"errors"
	"net/http"

	"github.com/centavo/backend/internal/budgets"
	"github.com/centavo/backend/internal/httputil"
	"github.com/centavo/backend/internal/models"
	ct_uuid "github.com/centavo/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetQuery is the query string of the budget and allocation reads. An
// unset profile ID addresses the default profile.
type BudgetQuery struct {
	ProfileID ct_uuid.UUID `form:"profileId"`
}

func (q BudgetQuery) profile() *uuid.UUID {
	if q.ProfileID == ct_uuid.Nil {
		return nil
	}

	id := q.ProfileID.UUID
	return &id
}

// RegisterBudgetRoutes registers the routes for budgets with
// the RouterGroup that is passed.
func RegisterBudgetRoutes(r *gin.RouterGroup) {
	// The monthly plan
	{
		r.OPTIONS("/:year/:month", OptionsBudget)
		r.GET("/:year/:month", GetBudget)
		r.PUT("/:year/:month", UpdateBudget)
	}

	// The envelopes of the month
	{
		r.OPTIONS("/:year/:month/allocations", OptionsAllocations)
		r.GET("/:year/:month/allocations", GetAllocations)
		r.PUT("/:year/:month/allocations", UpdateAllocations)
	}
}

func OptionsBudget(c *gin.Context) {
	httputil.OptionsGetPut(c)
}

func OptionsAllocations(c *gin.Context) {
	httputil.OptionsGetPut(c)
}

// Budget is a models.Budget with its derived recommendation amounts.
type Budget struct {
	models.Budget
	RecommendedInvestment decimal.Decimal `json:"recommendedInvestment"`
	RecommendedEmergency  decimal.Decimal `json:"recommendedEmergency"`
	SpendingLimit         decimal.Decimal `json:"spendingLimit"`
}

func newBudget(model models.Budget) Budget {
	return Budget{
		Budget:                model,
		RecommendedInvestment: model.RecommendedInvestment(),
		RecommendedEmergency:  model.RecommendedEmergency(),
		SpendingLimit:         model.SpendingLimit(),
	}
}

type BudgetResponse struct {
	Data  *Budget `json:"data"`
	Error *string `json:"error"`
}

// BudgetEditable are the fields of a budget that the API client can set.
type BudgetEditable struct {
	ProfileID        *uuid.UUID      `json:"profileId"`
	IncomeExpected   decimal.Decimal `json:"incomeExpected" example:"4500"`
	InvestPercent    decimal.Decimal `json:"investPercent" example:"15"`
	EmergencyPercent decimal.Decimal `json:"emergencyPercent" example:"10"`
}

// GetBudget returns the budget plan for a month.
func GetBudget(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri URIPeriod
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{Error: &e})
		return
	}

	var query BudgetQuery
	err = c.ShouldBindQuery(&query)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, BudgetResponse{Error: &e})
		return
	}

	var budget models.Budget
	err = models.DB.
		Scopes(budgets.ProfileScope(query.profile())).
		Where("user_id = ?", userID).
		Where("month = ?", uri.period()).
		First(&budget).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{Error: &e})
		return
	}

	data := newBudget(budget)
	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// UpdateBudget creates or replaces the budget plan for a month.
func UpdateBudget(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri URIPeriod
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{Error: &e})
		return
	}

	var editable BudgetEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, BudgetResponse{Error: &e})
		return
	}

	var budget models.Budget
	err = models.DB.
		Scopes(budgets.ProfileScope(editable.ProfileID)).
		Where("user_id = ?", userID).
		Where("month = ?", uri.period()).
		First(&budget).Error
	if err != nil && !errors.Is(err, models.ErrResourceNotFound) {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{Error: &e})
		return
	}

	created := errors.Is(err, models.ErrResourceNotFound)
	if created {
		budget = models.Budget{
			UserID: userID,
			Month:  uri.period(),
		}
	}

	budget.ProfileID = editable.ProfileID
	budget.IncomeExpected = editable.IncomeExpected
	budget.InvestPercent = editable.InvestPercent
	budget.EmergencyPercent = editable.EmergencyPercent

	err = models.DB.Save(&budget).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{Error: &e})
		return
	}

	responseStatus := http.StatusOK
	if created {
		responseStatus = http.StatusCreated
	}

	data := newBudget(budget)
	c.JSON(responseStatus, BudgetResponse{Data: &data})
}

type AllocationListResponse struct {
	Data  []budgets.AllocationStatus `json:"data"`
	Error *string                    `json:"error"`
}

// ReplaceAllocationsEditable is the replacement set of allocations for a
// month. Without an income, the amounts are scaled against the month's
// reference income.
type ReplaceAllocationsEditable struct {
	ProfileID   *uuid.UUID                `json:"profileId"`
	Income      decimal.Decimal           `json:"income" example:"4500"`
	Allocations []budgets.AllocationInput `json:"allocations" binding:"required,dive"`
}

// GetAllocations returns the allocations for a month with their current
// consumption, materializing the defaults if the month has none yet.
func GetAllocations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri URIPeriod
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationListResponse{Error: &e})
		return
	}

	var query BudgetQuery
	err = c.ShouldBindQuery(&query)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, AllocationListResponse{Error: &e})
		return
	}

	statuses, err := budgets.EnsureAllocations(models.DB, userID, query.profile(), uri.period())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationListResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, AllocationListResponse{Data: statuses})
}

// UpdateAllocations replaces the allocations for a month.
func UpdateAllocations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri URIPeriod
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationListResponse{Error: &e})
		return
	}

	var editable ReplaceAllocationsEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, AllocationListResponse{Error: &e})
		return
	}

	statuses, err := budgets.ReplaceAllocations(models.DB, userID, editable.ProfileID, uri.period(), editable.Income, editable.Allocations)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationListResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, AllocationListResponse{Data: statuses})
}
