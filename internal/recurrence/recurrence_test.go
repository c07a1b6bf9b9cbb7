package recurrence

import (
	"testing"
	"time"

	"github.com/pcashin/hearthtab/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		typ  Type
		due  time.Time
		want time.Time
	}{
		{Weekly, date(2026, 1, 15), date(2026, 1, 22)},
		{Biweekly, date(2026, 1, 15), date(2026, 1, 29)},
		{Monthly, date(2026, 1, 15), date(2026, 2, 15)},
		{Quarterly, date(2026, 1, 15), date(2026, 4, 15)},
		{Semiannually, date(2026, 1, 15), date(2026, 7, 15)},
		{Yearly, date(2026, 2, 28), date(2027, 2, 28)},
	}
	for _, tt := range tests {
		got := NextDueDate(tt.due, tt.typ)
		if !got.Equal(tt.want) {
			t.Errorf("NextDueDate(%v, %s) = %v, want %v", tt.due, tt.typ, got, tt.want)
		}
	}
}

func TestNextDueDateMonthOverflow(t *testing.T) {
	// AddDate normalization: Jan 31 + 1 month = Feb 31 = Mar 3 in 2026.
	got := NextDueDate(date(2026, 1, 31), Monthly)
	want := date(2026, 3, 3)
	if !got.Equal(want) {
		t.Errorf("Jan 31 + monthly = %v, want %v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	for _, typ := range []Type{None, Weekly, Biweekly, Monthly, Quarterly, Semiannually, Yearly} {
		if got := Normalize(string(typ)); got != typ {
			t.Errorf("Normalize(%q) = %q, want %q", typ, got, typ)
		}
	}
}

func TestNormalizeUnknownFallsBackToMonthly(t *testing.T) {
	if got := Normalize("fortnightly"); got != Monthly {
		t.Errorf("Normalize(fortnightly) = %q, want monthly", got)
	}
}

func TestSpawnSuccessor(t *testing.T) {
	paidAt := date(2026, 1, 14)
	settled := model.Bill{
		ID:         "bill-1",
		Category:   "Rent",
		Amount:     1500,
		DueDate:    date(2026, 1, 15),
		Paid:       true,
		Recurrence: "monthly",
		Splits:     map[string]float64{"1": 50, "2": 50},
		Payments: map[string]model.PaymentRecord{
			"1": {Paid: true, PaidDate: &paidAt},
			"2": {Paid: true, PaidDate: &paidAt},
		},
	}

	next := SpawnSuccessor(settled)
	if next.ID == "" || next.ID == settled.ID {
		t.Errorf("successor id = %q, want fresh id", next.ID)
	}
	if !next.DueDate.Equal(date(2026, 2, 15)) {
		t.Errorf("due = %v, want 2026-02-15", next.DueDate)
	}
	if next.Paid {
		t.Error("successor reports paid")
	}
	if next.Category != "Rent" || next.Amount != 1500 || next.Recurrence != "monthly" {
		t.Errorf("successor = %+v, want category/amount/recurrence carried over", next)
	}
	if len(next.Splits) != 2 || next.Splits["1"] != 50 {
		t.Errorf("splits = %v, want copied", next.Splits)
	}
	for key, rec := range next.Payments {
		if rec.Paid || rec.PaidDate != nil {
			t.Errorf("payment[%s] = %+v, want zeroed", key, rec)
		}
	}
}

func TestSpawnSuccessorCopiesSplits(t *testing.T) {
	settled := model.Bill{
		ID:         "bill-1",
		Amount:     100,
		DueDate:    date(2026, 1, 1),
		Recurrence: "weekly",
		Splits:     map[string]float64{"1": 100},
		Payments:   map[string]model.PaymentRecord{"1": {Paid: true}},
	}

	next := SpawnSuccessor(settled)
	next.Splits["1"] = 10
	if settled.Splits["1"] != 100 {
		t.Error("successor shares the predecessor's splits map")
	}
}
