package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/centavo/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionKind discriminates the origin of a transaction.
// All kinds share one table so that aggregations over a category iterate
// one sequence instead of three.
type TransactionKind string

const (
	TransactionManual           TransactionKind = "MANUAL"
	TransactionCard             TransactionKind = "CARD"
	TransactionGoalContribution TransactionKind = "GOAL_CONTRIBUTION"
)

// Transaction represents a single expense or contribution.
type Transaction struct {
	DefaultModel
	Kind        TransactionKind `json:"kind" gorm:"index"`
	UserID      uuid.UUID       `json:"userId" gorm:"index"`
	ProfileID   *uuid.UUID      `json:"profileId"`
	CardID      *uuid.UUID      `json:"cardId" gorm:"index"`
	Card        *Card           `json:"-"`
	CategoryID  *uuid.UUID      `json:"categoryId" gorm:"index"`
	Category    *Category       `json:"-"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

var ErrCardTransactionWithoutCard = errors.New("card transactions must reference a card")

// BeforeSave sets the timezone for the date to UTC.
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Description = strings.TrimSpace(t.Description)

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	if t.Kind == TransactionCard && t.CardID == nil {
		return ErrCardTransactionWithoutCard
	}

	return nil
}

func (t *Transaction) AfterFind(_ *gorm.DB) error {
	t.Date = t.Date.In(time.UTC)
	return nil
}

// CardTransactionsSum returns the sum of all card transactions for the card
// with dates in [from, to], inclusive on both ends.
func CardTransactionsSum(db *gorm.DB, cardID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := db.
		Table("transactions").
		Select("SUM(amount)").
		Where("kind = ?", TransactionCard).
		Where("card_id = ?", cardID).
		Where("date >= date(?) AND date < date(?)", from, to.AddDate(0, 0, 1)).
		Where("deleted_at IS NULL").
		Find(&sum).
		Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing card transactions failed: %w", err)
	}

	// If no transactions are found, the value is nil
	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}

// CategoryTransactionsSum returns the sum of all transactions of every kind
// for the categories in the given month.
func CategoryTransactionsSum(db *gorm.DB, categoryIDs []uuid.UUID, month types.Month) (decimal.Decimal, error) {
	if len(categoryIDs) == 0 {
		return decimal.Zero, nil
	}

	var sum decimal.NullDecimal

	err := db.
		Table("transactions").
		Select("SUM(amount)").
		Where("category_id IN ?", categoryIDs).
		Where("date >= date(?) AND date < date(?)", time.Time(month), time.Time(month.AddDate(0, 1))).
		Where("deleted_at IS NULL").
		Find(&sum).
		Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing category transactions failed: %w", err)
	}

	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}
