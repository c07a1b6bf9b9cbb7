package model

import "time"

// ActivityRecord is an append-only audit trail entry produced as a side
// effect of state-changing operations. Newest entries come first.
type ActivityRecord struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
