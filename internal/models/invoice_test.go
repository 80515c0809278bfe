package models_test

import (
	"time"

	"github.com/centavo/backend/internal/models"
	"github.com/centavo/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestInvoiceRemaining() {
	invoice := models.Invoice{
		TotalAmount: decimal.NewFromFloat(350),
		PaidAmount:  decimal.NewFromFloat(120.5),
	}

	assert.True(suite.T(), invoice.Remaining().Equal(decimal.NewFromFloat(229.5)), "Remaining is %s", invoice.Remaining())
}

func (suite *TestSuiteStandard) TestInvoiceCardMonthUnique() {
	card := suite.createTestCard(models.Card{})
	month := types.NewMonth(2024, time.March)

	_ = suite.createTestInvoice(models.Invoice{CardID: card.ID, ReferenceMonth: month})

	err := models.DB.Create(&models.Invoice{CardID: card.ID, ReferenceMonth: month}).Error
	assert.ErrorIs(suite.T(), err, models.ErrInvoiceMonthNotUnique)
}

func (suite *TestSuiteStandard) TestInvoiceDefaultStatus() {
	card := suite.createTestCard(models.Card{})

	invoice := suite.createTestInvoice(models.Invoice{
		CardID:         card.ID,
		ReferenceMonth: types.NewMonth(2024, time.April),
	})

	var reloaded models.Invoice
	err := models.DB.First(&reloaded, invoice.ID).Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), models.InvoiceOpen, reloaded.Status)
}

func (suite *TestSuiteStandard) TestInvoicePaymentTrimWhitespace() {
	card := suite.createTestCard(models.Card{})
	invoice := suite.createTestInvoice(models.Invoice{
		CardID:         card.ID,
		ReferenceMonth: types.NewMonth(2024, time.March),
		TotalAmount:    decimal.NewFromFloat(100),
	})

	payment := models.InvoicePayment{
		InvoiceID:   invoice.ID,
		Amount:      decimal.NewFromFloat(50),
		PaymentType: models.PaymentPartial,
		Notes:       "  paid at the bank  ",
	}

	err := models.DB.Create(&payment).Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), "paid at the bank", payment.Notes)
	assert.WithinDuration(suite.T(), time.Now().In(time.UTC), payment.PaymentDate, time.Minute)
}
