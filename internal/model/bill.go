package model

import "time"

// PaymentRecord tracks one member's share of a bill.
type PaymentRecord struct {
	Paid     bool       `json:"paid"`
	PaidDate *time.Time `json:"paidDate"`
}

// Bill is a shared financial obligation split across members by
// percentage. Splits and Payments are keyed by member split key
// (Member.SplitKey). Splits are fixed at creation; the only mutation a
// bill sees afterwards is individual payments being recorded.
//
// Paid is true exactly when every payment record is paid.
type Bill struct {
	ID         string                   `json:"id"`
	Category   string                   `json:"category"`
	Amount     float64                  `json:"amount"`
	DueDate    time.Time                `json:"dueDate"`
	Paid       bool                     `json:"paid"`
	Recurrence string                   `json:"recurrence,omitempty"`
	Splits     map[string]float64       `json:"splits"`
	Payments   map[string]PaymentRecord `json:"payments"`
}

// IsRecurring reports whether the bill regenerates after settlement.
func (b Bill) IsRecurring() bool {
	return b.Recurrence != ""
}
