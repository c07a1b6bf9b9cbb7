// Package roster reconciles household membership changes against the
// duties and bills that reference members. Rotations key members by name,
// so removals and renames must be pushed through every duty; bill splits
// are left alone by policy (see OnMemberRemoved).
package roster

import (
	"github.com/pcashin/hearthtab/internal/model"
	"github.com/pcashin/hearthtab/internal/rotation"
)

// OnMemberRemoved drops the member from every rotation, clamping each
// duty's cursor per rotation.Reorder.
//
// Bills are deliberately untouched: a removed member's share stays in
// already-created bills as a permanent historical record of the debt.
// Splits are immutable after creation and there is no redistribution
// policy.
func OnMemberRemoved(doc model.Document, name string) model.Document {
	doc.Items = removeFromAll(doc.Items, name)
	doc.MonthlyChores = removeFromAll(doc.MonthlyChores, name)
	return doc
}

// OnMemberRenamed rewrites every occurrence of oldName in every rotation
// to newName: the rotation sequence, the skip set, and the last
// fulfillment record. A rename never changes cardinality, so cursors are
// untouched.
func OnMemberRenamed(doc model.Document, oldName, newName string) model.Document {
	doc.Items = renameInAll(doc.Items, oldName, newName)
	doc.MonthlyChores = renameInAll(doc.MonthlyChores, oldName, newName)
	return doc
}

// OnMemberAdded is deliberately a no-op on existing duties and bills: a
// new member joins rotations and splits only when an administrator opts
// them in, so an in-progress round is never disrupted.
func OnMemberAdded(doc model.Document, member model.Member) model.Document {
	return doc
}

func removeFromAll(duties []model.RotatingDuty, name string) []model.RotatingDuty {
	out := make([]model.RotatingDuty, len(duties))
	for i, d := range duties {
		out[i] = rotation.Remove(d, name)
	}
	return out
}

func renameInAll(duties []model.RotatingDuty, oldName, newName string) []model.RotatingDuty {
	out := make([]model.RotatingDuty, len(duties))
	for i, d := range duties {
		out[i] = renameIn(d, oldName, newName)
	}
	return out
}

func renameIn(d model.RotatingDuty, oldName, newName string) model.RotatingDuty {
	out := d
	out.Rotation = replaceAll(d.Rotation, oldName, newName)
	out.Skipped = replaceAll(d.Skipped, oldName, newName)
	if d.LastDone != nil {
		f := *d.LastDone
		if f.By == oldName {
			f.By = newName
		}
		out.LastDone = &f
	}
	return out
}

func replaceAll(names []string, oldName, newName string) []string {
	if names == nil {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		if n == oldName {
			out[i] = newName
		} else {
			out[i] = n
		}
	}
	return out
}
