package model

import "time"

// Fulfillment records who last took care of a duty and when.
type Fulfillment struct {
	By string    `json:"by"`
	At time.Time `json:"at"`
}

// RotatingDuty is a recurring responsibility (restocking a consumable,
// doing a monthly chore) handed around the household in a fixed order.
//
// Rotation holds member names in turn order. CurrentIndex points at the
// member whose turn has just passed, so the next turn belongs to
// (CurrentIndex+1) mod len(Rotation). Skipped holds members sat out for
// the current pass only; they stay in the rotation and are eligible again
// once the cursor moves.
//
// When Rotation is empty there is no valid next person. Callers must
// treat that as a not-applicable state, never as an index to compute.
type RotatingDuty struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Rotation     []string     `json:"rotation"`
	CurrentIndex int          `json:"currentIndex"`
	LastDone     *Fulfillment `json:"lastDone,omitempty"`
	Skipped      []string     `json:"skipped,omitempty"`
}

// IsSkipped reports whether name is sat out for the current pass.
func (d RotatingDuty) IsSkipped(name string) bool {
	for _, s := range d.Skipped {
		if s == name {
			return true
		}
	}
	return false
}
