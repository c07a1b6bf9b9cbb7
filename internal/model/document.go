package model

import "time"

// ChoreCompletion is an archived monthly-chore fulfillment, kept per
// month label in the document's chore history.
type ChoreCompletion struct {
	DutyID   string    `json:"dutyId"`
	DutyName string    `json:"dutyName"`
	By       string    `json:"by"`
	At       time.Time `json:"at"`
}

// Document is the whole household state persisted as one JSON blob under
// a single logical key. The field names are load-bearing: existing data
// uses exactly this shape.
type Document struct {
	Items         []RotatingDuty               `json:"items"`
	MonthlyChores []RotatingDuty               `json:"monthlyChores"`
	Bills         []Bill                       `json:"bills"`
	Activity      []ActivityRecord             `json:"activity"`
	CurrentMonth  string                       `json:"currentMonth"`
	ChoreHistory  map[string][]ChoreCompletion `json:"choreHistory"`
}

// Duty returns a pointer to the duty with the given id, searching both
// consumable items and monthly chores.
func (doc *Document) Duty(id string) *RotatingDuty {
	for i := range doc.Items {
		if doc.Items[i].ID == id {
			return &doc.Items[i]
		}
	}
	for i := range doc.MonthlyChores {
		if doc.MonthlyChores[i].ID == id {
			return &doc.MonthlyChores[i]
		}
	}
	return nil
}

// Bill returns a pointer to the bill with the given id, or nil.
func (doc *Document) Bill(id string) *Bill {
	for i := range doc.Bills {
		if doc.Bills[i].ID == id {
			return &doc.Bills[i]
		}
	}
	return nil
}
