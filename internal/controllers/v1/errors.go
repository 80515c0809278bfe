package v1

import (
	"errors"
	"net/http"

	"github.com/centavo/backend/internal/invoices"
	"github.com/centavo/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"The specified resource ID is not a valid UUID"`
}

// status returns the appropriate status for a core engine error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, invoices.ErrConcurrentUpdate) {
		return http.StatusConflict
	}

	return http.StatusBadRequest
}
