package v1

import (
	"net/http"
	"time"

	"github.com/centavo/backend/internal/httputil"
	"github.com/centavo/backend/internal/invoices"
	"github.com/centavo/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterCardRoutes registers the routes for cards with
// the RouterGroup that is passed.
func RegisterCardRoutes(r *gin.RouterGroup) {
	// Invoice cycle of a card
	{
		r.OPTIONS("/:id/invoices/:year/:month", OptionsCardInvoice)
		r.GET("/:id/invoices/:year/:month", GetInvoice)
		r.POST("/:id/invoices/:year/:month", GenerateInvoice)
	}

	// Payments before the cycle closes
	{
		r.OPTIONS("/:id/advance-payments", OptionsAdvancePayments)
		r.POST("/:id/advance-payments", CreateAdvancePayment)
	}
}

// RegisterInvoiceRoutes registers the routes for invoices with
// the RouterGroup that is passed.
func RegisterInvoiceRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:id/payments", OptionsInvoicePayments)
	r.POST("/:id/payments", CreateInvoicePayment)
}

// Invoice is a models.Invoice with its derived remaining balance.
type Invoice struct {
	models.Invoice
	Remaining decimal.Decimal `json:"remaining"`
}

func newInvoice(model models.Invoice) Invoice {
	return Invoice{
		Invoice:   model,
		Remaining: model.Remaining(),
	}
}

type InvoiceResponse struct {
	Data  *Invoice `json:"data"`
	Error *string  `json:"error"`
}

// PaymentEditable are the fields of a payment that the API client can set.
type PaymentEditable struct {
	Amount        decimal.Decimal    `json:"amount" example:"271.50"`
	PaymentType   models.PaymentType `json:"paymentType" binding:"required" example:"PARTIAL"`
	PaymentMethod string             `json:"paymentMethod" example:"PIX"`
	BankAccountID *uuid.UUID         `json:"bankAccountId"`
	Notes         string             `json:"notes"`
}

type PaymentData struct {
	Payment models.InvoicePayment `json:"payment"`
	Invoice Invoice               `json:"invoice"`
}

type PaymentResponse struct {
	Data  *PaymentData `json:"data"`
	Error *string      `json:"error"`
}

func OptionsCardInvoice(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsAdvancePayments(c *gin.Context) {
	httputil.OptionsPost(c)
}

func OptionsInvoicePayments(c *gin.Context) {
	httputil.OptionsPost(c)
}

// GenerateInvoice computes the invoice for a card and reference month from
// the card's transactions, creating or refreshing it as needed.
func GenerateInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri URIIDPeriod
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{Error: &e})
		return
	}

	invoice, err := invoices.GenerateOrRefresh(models.DB, userID, uri.ID.UUID, uri.period())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{Error: &e})
		return
	}

	data := newInvoice(invoice)
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}

// GetInvoice returns the invoice for a card and reference month.
func GetInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri URIIDPeriod
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{Error: &e})
		return
	}

	var card models.Card
	err = models.DB.First(&card, "id = ? AND user_id = ?", uri.ID.UUID, userID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{Error: &e})
		return
	}

	var invoice models.Invoice
	err = models.DB.
		Where("card_id = ?", card.ID).
		Where("reference_month = ?", uri.period()).
		First(&invoice).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{Error: &e})
		return
	}

	data := newInvoice(invoice)
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}

// CreateInvoicePayment applies a payment to an invoice.
func CreateInvoicePayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &e})
		return
	}

	var editable PaymentEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, PaymentResponse{Error: &e})
		return
	}

	result, err := invoices.ApplyPayment(models.DB, userID, uri.ID.UUID, invoices.PaymentRequest{
		Amount:        editable.Amount,
		PaymentType:   editable.PaymentType,
		PaymentMethod: editable.PaymentMethod,
		BankAccountID: editable.BankAccountID,
		Notes:         editable.Notes,
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &e})
		return
	}

	data := PaymentData{
		Payment: result.Payment,
		Invoice: newInvoice(result.Invoice),
	}
	c.JSON(http.StatusCreated, PaymentResponse{Data: &data})
}

// AdvancePaymentEditable are the fields of an advance payment that the API
// client can set.
type AdvancePaymentEditable struct {
	Amount        decimal.Decimal `json:"amount" binding:"required" example:"100"`
	BankAccountID *uuid.UUID      `json:"bankAccountId"`
}

// CreateAdvancePayment pays an amount against the running cycle of a card
// before the invoice closes.
func CreateAdvancePayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &e})
		return
	}

	var editable AdvancePaymentEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, PaymentResponse{Error: &e})
		return
	}

	result, err := invoices.AdvancePayment(models.DB, userID, uri.ID.UUID, editable.Amount, editable.BankAccountID, time.Now())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &e})
		return
	}

	data := PaymentData{
		Payment: result.Payment,
		Invoice: newInvoice(result.Invoice),
	}
	c.JSON(http.StatusCreated, PaymentResponse{Data: &data})
}
