// Package rotation implements the pure turn-taking logic for rotating
// duties: whose turn is next, fulfilling a turn, sitting a member out for
// a pass, and editing the rotation order without losing the cursor.
//
// All functions take and return duty values; callers persist the result.
package rotation

import (
	"errors"
	"slices"
	"time"

	"github.com/pcashin/hearthtab/internal/model"
)

var (
	// ErrOutOfTurn is returned when a member tries to fulfill a duty
	// while it is someone else's turn. Recoverable: skip the blocker or
	// force-advance as an administrator.
	ErrOutOfTurn = errors.New("rotation: not this member's turn")

	// ErrNotInRotation is returned when the fulfilling member is not part
	// of the duty's rotation at all.
	ErrNotInRotation = errors.New("rotation: member not in rotation")

	// ErrEmptyRotation is returned by mutations on a duty whose rotation
	// has no members. It signals a not-applicable state, not a fault;
	// membership changes can empty a rotation at any time.
	ErrEmptyRotation = errors.New("rotation: no members in rotation")
)

// NextAssignee returns the member whose turn is next, in strict order:
// the member after the cursor, ignoring the skip set. ok is false when
// the rotation is empty.
func NextAssignee(d model.RotatingDuty) (string, bool) {
	if len(d.Rotation) == 0 {
		return "", false
	}
	return d.Rotation[(d.CurrentIndex+1)%len(d.Rotation)], true
}

// NextEligible returns the member who may actually fulfill the duty now:
// the first member after the cursor who is not sat out for this pass.
// If everyone remaining is skipped it falls back to strict order.
func NextEligible(d model.RotatingDuty) (string, bool) {
	n := len(d.Rotation)
	if n == 0 {
		return "", false
	}
	for k := 1; k <= n; k++ {
		cand := d.Rotation[(d.CurrentIndex+k)%n]
		if !d.IsSkipped(cand) {
			return cand, true
		}
	}
	return d.Rotation[(d.CurrentIndex+1)%n], true
}

// Advance records that member fulfilled the duty at now: the cursor moves
// to the member's position, the fulfillment is recorded, and the skip set
// is cleared for the new pass.
//
// Unless force is set, only the eligible next member may advance; anyone
// else gets ErrOutOfTurn. Force is the administrator override for
// out-of-order fulfillment.
func Advance(d model.RotatingDuty, member string, force bool, now time.Time) (model.RotatingDuty, error) {
	if len(d.Rotation) == 0 {
		return d, ErrEmptyRotation
	}
	pos := slices.Index(d.Rotation, member)
	if pos < 0 {
		return d, ErrNotInRotation
	}
	if !force {
		next, _ := NextEligible(d)
		if member != next {
			return d, ErrOutOfTurn
		}
	}

	out := clone(d)
	out.CurrentIndex = pos
	out.LastDone = &model.Fulfillment{By: member, At: now}
	out.Skipped = nil
	return out, nil
}

// Skip sits member out for the current pass without moving the cursor.
// The member stays in the rotation and is eligible again on the next
// pass. Skipping is idempotent. Returns ErrNotInRotation for unknown
// members and ErrEmptyRotation when there is no rotation to skip in.
func Skip(d model.RotatingDuty, member string) (model.RotatingDuty, error) {
	if len(d.Rotation) == 0 {
		return d, ErrEmptyRotation
	}
	if !slices.Contains(d.Rotation, member) {
		return d, ErrNotInRotation
	}
	if d.IsSkipped(member) {
		return d, nil
	}
	out := clone(d)
	out.Skipped = append(out.Skipped, member)
	return out, nil
}

// Reorder replaces the rotation sequence while keeping the cursor
// meaningful: if the member the cursor pointed at is still present, the
// cursor follows them to their new position; otherwise it is clamped to
// min(CurrentIndex, len-1). An emptied rotation resets the cursor to
// zero and callers must treat the duty as having no next person.
// Skip entries for members no longer in the sequence are dropped.
func Reorder(d model.RotatingDuty, sequence []string) model.RotatingDuty {
	out := clone(d)
	out.Rotation = slices.Clone(sequence)

	if len(sequence) == 0 {
		out.CurrentIndex = 0
		out.Skipped = nil
		return out
	}

	var current string
	if d.CurrentIndex >= 0 && d.CurrentIndex < len(d.Rotation) {
		current = d.Rotation[d.CurrentIndex]
	}
	if i := slices.Index(sequence, current); i >= 0 {
		out.CurrentIndex = i
	} else {
		out.CurrentIndex = min(d.CurrentIndex, len(sequence)-1)
		if out.CurrentIndex < 0 {
			out.CurrentIndex = 0
		}
	}

	out.Skipped = nil
	for _, s := range d.Skipped {
		if slices.Contains(sequence, s) {
			out.Skipped = append(out.Skipped, s)
		}
	}
	return out
}

// Remove drops member from the rotation, clamping the cursor per Reorder.
func Remove(d model.RotatingDuty, member string) model.RotatingDuty {
	seq := make([]string, 0, len(d.Rotation))
	for _, name := range d.Rotation {
		if name != member {
			seq = append(seq, name)
		}
	}
	return Reorder(d, seq)
}

func clone(d model.RotatingDuty) model.RotatingDuty {
	d.Rotation = slices.Clone(d.Rotation)
	d.Skipped = slices.Clone(d.Skipped)
	if d.LastDone != nil {
		f := *d.LastDone
		d.LastDone = &f
	}
	return d
}
