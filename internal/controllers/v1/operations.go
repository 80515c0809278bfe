package v1

import (
	"net/http"
	"time"

	"github.com/centavo/backend/internal/httputil"
	"github.com/centavo/backend/internal/invoices"
	"github.com/centavo/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// RegisterOperationRoutes registers the routes for maintenance operations
// with the RouterGroup that is passed. These are the entrypoints for
// external schedulers; the built-in cron calls the same functions.
func RegisterOperationRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/invoice-status", OptionsOperation)
	r.POST("/invoice-status", UpdateInvoiceStatuses)

	r.OPTIONS("/reminders", OptionsOperation)
	r.POST("/reminders", GenerateReminders)
}

func OptionsOperation(c *gin.Context) {
	httputil.OptionsPost(c)
}

type StatusSweepResponse struct {
	Data  *invoices.StatusSweepResult `json:"data"`
	Error *string                     `json:"error"`
}

// UpdateInvoiceStatuses transitions all invoices whose closing or due
// dates have passed.
func UpdateInvoiceStatuses(c *gin.Context) {
	result, err := invoices.UpdateStatuses(models.DB, time.Now())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), StatusSweepResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, StatusSweepResponse{Data: &result})
}

type ReminderSweepResponse struct {
	Data  *invoices.ReminderSweepResult `json:"data"`
	Error *string                       `json:"error"`
}

// GenerateReminders emits due date reminders for all unpaid invoices.
func GenerateReminders(c *gin.Context) {
	result, err := invoices.GenerateDueReminders(models.DB, time.Now())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReminderSweepResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, ReminderSweepResponse{Data: &result})
}
