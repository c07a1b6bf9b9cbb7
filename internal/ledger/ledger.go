// Package ledger implements the shared-bill logic: splitting a bill's
// amount across members by percentage, recording per-member payments, and
// detecting the settlement transition.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pcashin/hearthtab/internal/model"
)

// ErrInvalidSplit is returned when a bill cannot be created: non-positive
// amount, no shares, a non-positive share, or shares that do not sum
// to 100.
var ErrInvalidSplit = errors.New("ledger: invalid split")

// ErrNoShare is returned when a payment is recorded for a member who has
// no share of the bill.
var ErrNoShare = errors.New("ledger: member has no share of this bill")

// SplitTolerance is how far the share percentages may drift from 100
// before the split is rejected. Covers float accumulation, nothing more.
const SplitTolerance = 0.01

// NewBill validates the split and builds a bill with every member's
// payment record zeroed. Splits are keyed by member split key and are
// immutable after creation; validation happens here and only here.
func NewBill(category string, amount float64, dueDate time.Time, recurrence string, splits map[string]float64) (model.Bill, error) {
	if amount <= 0 {
		return model.Bill{}, fmt.Errorf("%w: amount must be positive, got %.2f", ErrInvalidSplit, amount)
	}
	if len(splits) == 0 {
		return model.Bill{}, fmt.Errorf("%w: no shares given", ErrInvalidSplit)
	}

	var sum float64
	for key, pct := range splits {
		if pct <= 0 {
			return model.Bill{}, fmt.Errorf("%w: share for %q must be positive, got %.2f", ErrInvalidSplit, key, pct)
		}
		sum += pct
	}
	if math.Abs(sum-100) > SplitTolerance {
		return model.Bill{}, fmt.Errorf("%w: shares sum to %.2f, want 100", ErrInvalidSplit, sum)
	}

	b := model.Bill{
		ID:         uuid.NewString(),
		Category:   category,
		Amount:     amount,
		DueDate:    dueDate,
		Recurrence: recurrence,
		Splits:     make(map[string]float64, len(splits)),
		Payments:   make(map[string]model.PaymentRecord, len(splits)),
	}
	for key, pct := range splits {
		b.Splits[key] = pct
		b.Payments[key] = model.PaymentRecord{}
	}
	return b, nil
}

// RecordPayment marks the member's share paid as of now. Re-recording an
// already-paid share is a no-op, not an error: the original paid date is
// kept and settled reports false so settlement side effects fire exactly
// once, on the unpaid-to-paid transition of the last outstanding share.
func RecordPayment(b model.Bill, memberKey string, now time.Time) (out model.Bill, settled bool, err error) {
	rec, ok := b.Payments[memberKey]
	if !ok {
		return b, false, fmt.Errorf("%w: %q", ErrNoShare, memberKey)
	}
	if rec.Paid {
		return b, false, nil
	}

	out = cloneBill(b)
	out.Payments[memberKey] = model.PaymentRecord{Paid: true, PaidDate: &now}

	wasPaid := b.Paid
	out.Paid = allPaid(out)
	return out, out.Paid && !wasPaid, nil
}

// ShareAmount returns the currency amount of a member's share. ok is
// false when the member has no share.
func ShareAmount(b model.Bill, memberKey string) (float64, bool) {
	pct, ok := b.Splits[memberKey]
	if !ok {
		return 0, false
	}
	return b.Amount * pct / 100, true
}

// Outstanding returns the total amount still unpaid across all shares.
func Outstanding(b model.Bill) float64 {
	var due float64
	for key, rec := range b.Payments {
		if !rec.Paid {
			due += b.Amount * b.Splits[key] / 100
		}
	}
	return due
}

// SplitsFromAmounts converts currency-entry shares into the percentage
// form bills store. This is an input convenience for callers composing a
// split before NewBill; float drift is absorbed into the largest share so
// the result always sums to exactly 100.
func SplitsFromAmounts(amounts map[string]float64, total float64) (map[string]float64, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: total must be positive, got %.2f", ErrInvalidSplit, total)
	}
	if len(amounts) == 0 {
		return nil, fmt.Errorf("%w: no shares given", ErrInvalidSplit)
	}

	var sum float64
	for key, amt := range amounts {
		if amt <= 0 {
			return nil, fmt.Errorf("%w: share amount for %q must be positive, got %.2f", ErrInvalidSplit, key, amt)
		}
		sum += amt
	}
	if math.Abs(sum-total) > SplitTolerance {
		return nil, fmt.Errorf("%w: share amounts sum to %.2f, want %.2f", ErrInvalidSplit, sum, total)
	}

	splits := make(map[string]float64, len(amounts))
	var pctSum float64
	var largest string
	for key, amt := range amounts {
		splits[key] = amt / total * 100
		pctSum += splits[key]
		if largest == "" || splits[key] > splits[largest] {
			largest = key
		}
	}
	splits[largest] += 100 - pctSum
	return splits, nil
}

func allPaid(b model.Bill) bool {
	for _, rec := range b.Payments {
		if !rec.Paid {
			return false
		}
	}
	return true
}

func cloneBill(b model.Bill) model.Bill {
	splits := make(map[string]float64, len(b.Splits))
	for k, v := range b.Splits {
		splits[k] = v
	}
	payments := make(map[string]model.PaymentRecord, len(b.Payments))
	for k, v := range b.Payments {
		payments[k] = v
	}
	b.Splits = splits
	b.Payments = payments
	return b
}
