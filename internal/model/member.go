package model

import (
	"strconv"
	"time"
)

// Member is a household participant. Rotations reference members by name
// (the stored document keeps names for compatibility); bill splits key by
// SplitKey, the stringified member id.
type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	HasPIN    bool      `json:"has_pin"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SplitKey returns the key under which this member appears in a bill's
// splits and payments maps.
func (m Member) SplitKey() string {
	return strconv.FormatInt(m.ID, 10)
}
