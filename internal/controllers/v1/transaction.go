package v1

import (
	"net/http"
	"time"

	"github.com/centavo/backend/internal/budgets"
	"github.com/centavo/backend/internal/httputil"
	"github.com/centavo/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func RegisterTransactionRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsTransactions)
	r.POST("", CreateTransaction)
}

func OptionsTransactions(c *gin.Context) {
	httputil.OptionsPost(c)
}

// TransactionEditable are the fields of a transaction that the API client
// can set.
type TransactionEditable struct {
	Kind        models.TransactionKind `json:"kind" example:"MANUAL"`
	ProfileID   *uuid.UUID             `json:"profileId"`
	CardID      *uuid.UUID             `json:"cardId"`
	CategoryID  *uuid.UUID             `json:"categoryId"`
	Amount      decimal.Decimal        `json:"amount" binding:"required" example:"42.13"`
	Date        time.Time              `json:"date"`
	Description string                 `json:"description" example:"Groceries at the corner store"`

	// Force creates the transaction even when it fails the budget health
	// check. Forcing an over-budget expense through resets the streak.
	Force bool `json:"force"`
}

type TransactionData struct {
	Transaction models.Transaction    `json:"transaction"`
	Health      *budgets.HealthResult `json:"health,omitempty"`
}

type TransactionResponse struct {
	Data  *TransactionData `json:"data"`
	Error *string          `json:"error"`
}

// CreateTransaction creates a new transaction.
//
// When the transaction's category is linked to a budget allocation, the
// budget health check runs first. A transaction that would exceed the
// envelope is rejected with the health result attached, unless the client
// forces it through.
func CreateTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var editable TransactionEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, TransactionResponse{Error: &e})
		return
	}

	if editable.Kind == "" {
		editable.Kind = models.TransactionManual
	}

	var health *budgets.HealthResult
	if editable.CategoryID != nil {
		result, err := budgets.CheckHealth(models.DB, userID, editable.ProfileID, *editable.CategoryID, editable.Amount)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), TransactionResponse{Error: &e})
			return
		}

		health = &result

		if !result.Allowed && !editable.Force {
			e := budgets.WarningBudgetExceeded
			c.JSON(http.StatusConflict, TransactionResponse{
				Data:  &TransactionData{Health: health},
				Error: &e,
			})
			return
		}
	}

	transaction := models.Transaction{
		Kind:        editable.Kind,
		UserID:      userID,
		ProfileID:   editable.ProfileID,
		CardID:      editable.CardID,
		CategoryID:  editable.CategoryID,
		Amount:      editable.Amount,
		Date:        editable.Date,
		Description: editable.Description,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		// A card transaction consumes the card's available limit
		if transaction.Kind == models.TransactionCard {
			if transaction.CardID == nil {
				return models.ErrCardTransactionWithoutCard
			}

			var card models.Card
			err := tx.First(&card, "id = ? AND user_id = ?", transaction.CardID, userID).Error
			if err != nil {
				return err
			}

			err = card.AdjustAvailableLimit(tx, transaction.Amount.Neg())
			if err != nil {
				return err
			}
		}

		return tx.Create(&transaction).Error
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	// Forcing an over-budget expense through costs the streak
	if health != nil && !health.Allowed {
		err = budgets.ResetStreak(models.DB, userID)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), TransactionResponse{Error: &e})
			return
		}
	}

	data := TransactionData{
		Transaction: transaction,
		Health:      health,
	}
	c.JSON(http.StatusCreated, TransactionResponse{Data: &data})
}
