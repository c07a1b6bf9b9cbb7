// Package recurrence derives the next instance of a recurring bill once
// the current one settles.
package recurrence

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pcashin/hearthtab/internal/model"
)

// Type is a bill's recurrence cadence.
type Type string

const (
	None         Type = ""
	Weekly       Type = "weekly"
	Biweekly     Type = "biweekly"
	Monthly      Type = "monthly"
	Quarterly    Type = "quarterly"
	Semiannually Type = "semiannually"
	Yearly       Type = "yearly"
)

// Normalize maps a stored recurrence string to a known Type. The empty
// string means not recurring. Anything unrecognized falls back to monthly
// with a logged warning, since stored data has carried loose values.
func Normalize(s string) Type {
	switch Type(s) {
	case None, Weekly, Biweekly, Monthly, Quarterly, Semiannually, Yearly:
		return Type(s)
	default:
		slog.Warn("unknown recurrence type, falling back to monthly", "type", s)
		return Monthly
	}
}

// NextDueDate advances a due date by one recurrence period. Calendar
// arithmetic follows time.AddDate normalization: overflowing a shorter
// month rolls forward, so Jan 31 + 1 month lands on Mar 2 (Mar 3 in
// non-leap years).
func NextDueDate(due time.Time, typ Type) time.Time {
	switch typ {
	case Weekly:
		return due.AddDate(0, 0, 7)
	case Biweekly:
		return due.AddDate(0, 0, 14)
	case Quarterly:
		return due.AddDate(0, 3, 0)
	case Semiannually:
		return due.AddDate(0, 6, 0)
	case Yearly:
		return due.AddDate(1, 0, 0)
	default:
		return due.AddDate(0, 1, 0)
	}
}

// SpawnSuccessor builds the next instance of a settled recurring bill: a
// fresh id, the same category, amount, splits, and cadence, the due date
// advanced one period, and every payment record zeroed. The settled bill
// stays behind as the historical record.
func SpawnSuccessor(settled model.Bill) model.Bill {
	next := model.Bill{
		ID:         uuid.NewString(),
		Category:   settled.Category,
		Amount:     settled.Amount,
		DueDate:    NextDueDate(settled.DueDate, Normalize(settled.Recurrence)),
		Recurrence: settled.Recurrence,
		Splits:     make(map[string]float64, len(settled.Splits)),
		Payments:   make(map[string]model.PaymentRecord, len(settled.Splits)),
	}
	for key, pct := range settled.Splits {
		next.Splits[key] = pct
		next.Payments[key] = model.PaymentRecord{}
	}
	return next
}
