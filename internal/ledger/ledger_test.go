package ledger

import (
	"errors"
	"math"
	"testing"
	"time"
)

var due = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func TestNewBill(t *testing.T) {
	b, err := NewBill("Rent", 1500, due, "monthly", map[string]float64{
		"1": 50, "2": 25, "3": 25,
	})
	if err != nil {
		t.Fatalf("new bill: %v", err)
	}
	if b.ID == "" {
		t.Error("bill has no id")
	}
	if b.Paid {
		t.Error("new bill reports paid")
	}
	if len(b.Payments) != 3 {
		t.Fatalf("payments len = %d, want 3", len(b.Payments))
	}
	for key, rec := range b.Payments {
		if rec.Paid || rec.PaidDate != nil {
			t.Errorf("payment[%s] = %+v, want zeroed", key, rec)
		}
	}

	var sum float64
	for _, pct := range b.Splits {
		sum += pct
	}
	if math.Abs(sum-100) > SplitTolerance {
		t.Errorf("splits sum = %v, want 100", sum)
	}
}

func TestNewBillRejectsBadSplits(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		splits map[string]float64
	}{
		{"sum 99", 100, map[string]float64{"1": 50, "2": 49}},
		{"sum 101", 100, map[string]float64{"1": 50, "2": 51}},
		{"zero amount", 0, map[string]float64{"1": 100}},
		{"negative amount", -20, map[string]float64{"1": 100}},
		{"empty splits", 100, map[string]float64{}},
		{"negative share summing to 100", 300, map[string]float64{"1": 150, "2": -50}},
		{"zero share", 100, map[string]float64{"1": 100, "2": 0}},
	}
	for _, tt := range tests {
		_, err := NewBill("Utilities", tt.amount, due, "", tt.splits)
		if !errors.Is(err, ErrInvalidSplit) {
			t.Errorf("%s: err = %v, want ErrInvalidSplit", tt.name, err)
		}
	}
}

func TestNewBillAcceptsSumWithinTolerance(t *testing.T) {
	_, err := NewBill("Internet", 60, due, "", map[string]float64{
		"1": 33.33, "2": 33.33, "3": 33.34,
	})
	if err != nil {
		t.Errorf("new bill: %v", err)
	}
}

func TestRecordPayment(t *testing.T) {
	b, _ := NewBill("Power", 120, due, "", map[string]float64{"1": 60, "2": 40})
	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	b, settled, err := RecordPayment(b, "1", now)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if settled {
		t.Error("settled after one of two payments")
	}
	if b.Paid {
		t.Error("paid flag set with a share outstanding")
	}
	rec := b.Payments["1"]
	if !rec.Paid || rec.PaidDate == nil || !rec.PaidDate.Equal(now) {
		t.Errorf("payment[1] = %+v, want paid at %v", rec, now)
	}
}

func TestRecordPaymentSettles(t *testing.T) {
	b, _ := NewBill("Power", 120, due, "", map[string]float64{"1": 60, "2": 40})

	b, _, _ = RecordPayment(b, "1", time.Now())
	b, settled, err := RecordPayment(b, "2", time.Now())
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if !settled {
		t.Error("final payment did not report settlement")
	}
	if !b.Paid {
		t.Error("paid flag false after all shares paid")
	}
}

func TestRecordPaymentIdempotent(t *testing.T) {
	b, _ := NewBill("Power", 120, due, "", map[string]float64{"1": 100})
	first := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	b, settled, _ := RecordPayment(b, "1", first)
	if !settled {
		t.Fatal("expected settlement on first payment")
	}

	again, settled, err := RecordPayment(b, "1", later)
	if err != nil {
		t.Fatalf("repeat payment: %v", err)
	}
	if settled {
		t.Error("settlement reported twice")
	}
	if !again.Payments["1"].PaidDate.Equal(first) {
		t.Errorf("paidDate = %v, want original %v", again.Payments["1"].PaidDate, first)
	}
	if !again.Paid {
		t.Error("paid flag lost on no-op payment")
	}
}

func TestRecordPaymentUnknownMember(t *testing.T) {
	b, _ := NewBill("Power", 120, due, "", map[string]float64{"1": 100})

	_, _, err := RecordPayment(b, "9", time.Now())
	if !errors.Is(err, ErrNoShare) {
		t.Errorf("err = %v, want ErrNoShare", err)
	}
}

func TestPaidFlagMatchesPaymentRecords(t *testing.T) {
	b, _ := NewBill("Water", 90, due, "", map[string]float64{"1": 30, "2": 30, "3": 40})

	keys := []string{"2", "1", "3"}
	for i, key := range keys {
		var err error
		b, _, err = RecordPayment(b, key, time.Now())
		if err != nil {
			t.Fatalf("payment %d: %v", i, err)
		}
		want := i == len(keys)-1
		if b.Paid != want {
			t.Errorf("after %d payments paid = %v, want %v", i+1, b.Paid, want)
		}
		if b.Paid != allPaid(b) {
			t.Error("paid flag disagrees with payment records")
		}
	}
}

func TestThreeWaySplitScenario(t *testing.T) {
	// Three members split $300 40/30/30; member 2 pays.
	b, err := NewBill("Rent", 300, due, "", map[string]float64{"1": 40, "2": 30, "3": 30})
	if err != nil {
		t.Fatalf("new bill: %v", err)
	}

	b, _, err = RecordPayment(b, "2", time.Now())
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if b.Paid {
		t.Error("bill settled with two shares outstanding")
	}

	share, ok := ShareAmount(b, "2")
	if !ok || share != 90 {
		t.Errorf("share(2) = %.2f ok=%v, want 90.00 true", share, ok)
	}
	if !b.Payments["2"].Paid {
		t.Error("member 2's share not marked paid")
	}
	if out := Outstanding(b); math.Abs(out-210) > 1e-9 {
		t.Errorf("outstanding = %.2f, want 210.00", out)
	}
}

func TestShareAmountUnknownMember(t *testing.T) {
	b, _ := NewBill("Rent", 300, due, "", map[string]float64{"1": 100})
	if _, ok := ShareAmount(b, "2"); ok {
		t.Error("expected ok=false for member with no share")
	}
}

func TestSplitsFromAmounts(t *testing.T) {
	splits, err := SplitsFromAmounts(map[string]float64{"1": 120, "2": 90, "3": 90}, 300)
	if err != nil {
		t.Fatalf("splits from amounts: %v", err)
	}
	if splits["1"] != 40 || splits["2"] != 30 || splits["3"] != 30 {
		t.Errorf("splits = %v, want 40/30/30", splits)
	}

	var sum float64
	for _, pct := range splits {
		sum += pct
	}
	if sum != 100 {
		t.Errorf("sum = %v, want exactly 100", sum)
	}
}

func TestSplitsFromAmountsAbsorbsDrift(t *testing.T) {
	// 100/3 does not divide evenly; the largest share absorbs the remainder.
	splits, err := SplitsFromAmounts(map[string]float64{"1": 33.34, "2": 33.33, "3": 33.33}, 100)
	if err != nil {
		t.Fatalf("splits from amounts: %v", err)
	}
	var sum float64
	for _, pct := range splits {
		sum += pct
	}
	if sum != 100 {
		t.Errorf("sum = %v, want exactly 100", sum)
	}
}

func TestSplitsFromAmountsRejectsMismatch(t *testing.T) {
	_, err := SplitsFromAmounts(map[string]float64{"1": 100}, 300)
	if !errors.Is(err, ErrInvalidSplit) {
		t.Errorf("err = %v, want ErrInvalidSplit", err)
	}
}

func TestSplitsFromAmountsRejectsNonPositiveShare(t *testing.T) {
	_, err := SplitsFromAmounts(map[string]float64{"1": 350, "2": -50}, 300)
	if !errors.Is(err, ErrInvalidSplit) {
		t.Errorf("negative share: err = %v, want ErrInvalidSplit", err)
	}

	_, err = SplitsFromAmounts(map[string]float64{"1": 300, "2": 0}, 300)
	if !errors.Is(err, ErrInvalidSplit) {
		t.Errorf("zero share: err = %v, want ErrInvalidSplit", err)
	}
}

func TestRecordPaymentDoesNotMutateInput(t *testing.T) {
	b, _ := NewBill("Power", 120, due, "", map[string]float64{"1": 100})

	if _, _, err := RecordPayment(b, "1", time.Now()); err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if b.Payments["1"].Paid || b.Paid {
		t.Error("record payment mutated its input")
	}
}
