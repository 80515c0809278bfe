package models_test

import (
	"strings"
	"testing"

	"github.com/centavo/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestCardDayValidation() {
	tests := []struct {
		name       string
		closingDay int
		dueDay     int
		err        error
	}{
		{"Valid days", 25, 10, nil},
		{"Closing day too low", 0, 10, models.ErrCardDayOutOfRange},
		{"Closing day too high", 32, 10, models.ErrCardDayOutOfRange},
		{"Due day too low", 25, 0, models.ErrCardDayOutOfRange},
		{"Due day too high", 25, 32, models.ErrCardDayOutOfRange},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			card := models.Card{
				UserID:     uuid.New(),
				ClosingDay: tt.closingDay,
				DueDay:     tt.dueDay,
			}

			err := models.DB.Create(&card).Error
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func (suite *TestSuiteStandard) TestCardTrimWhitespace() {
	name := "  Black Card \t"

	card := suite.createTestCard(models.Card{Name: name})
	assert.Equal(suite.T(), strings.TrimSpace(name), card.Name)
}

func (suite *TestSuiteStandard) TestCardAdjustAvailableLimit() {
	card := suite.createTestCard(models.Card{
		CreditLimit:    decimal.NewFromFloat(1000),
		AvailableLimit: decimal.NewFromFloat(650),
	})

	// A payment frees up limit again
	err := card.AdjustAvailableLimit(models.DB, decimal.NewFromFloat(200))
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), card.AvailableLimit.Equal(decimal.NewFromFloat(850)), "Available limit is %s", card.AvailableLimit)

	// The available limit never exceeds the credit limit
	err = card.AdjustAvailableLimit(models.DB, decimal.NewFromFloat(500))
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), card.AvailableLimit.Equal(decimal.NewFromFloat(1000)), "Available limit is %s", card.AvailableLimit)
}
