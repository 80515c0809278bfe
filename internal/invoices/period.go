// Package invoices implements the lifecycle of card invoices: cycle and
// window computation, generation from the underlying transactions, payment
// application and the scheduled status and reminder sweeps.
package invoices

import (
	"time"

	"github.com/centavo/backend/internal/types"
)

// CycleDates computes the closing and due date of the invoice cycle for the
// given reference month.
//
// The due date rolls over to the following month when the due day is not
// after the closing day. This models cards whose statement is always due
// after it closes, even when the numeric due day is smaller than the
// closing day.
func CycleDates(closingDay, dueDay int, month types.Month) (closing, due time.Time) {
	closing = month.Day(closingDay)

	dueMonth := month
	if dueDay <= closingDay {
		dueMonth = month.AddDate(0, 1)
	}
	due = dueMonth.Day(dueDay)

	return closing, due
}

// TransactionWindow computes the first and last day of the transaction
// window for the given reference month.
//
// The window starts the day after the previous month's closing day and ends
// on the current month's closing day, so that every transaction belongs to
// exactly one invoice: consecutive windows share no days and leave no gap.
func TransactionWindow(closingDay int, month types.Month) (start, end time.Time) {
	start = month.AddDate(0, -1).Day(closingDay).AddDate(0, 0, 1)
	end = month.Day(closingDay)

	return start, end
}
