// Package household orchestrates the pure rotation and ledger logic
// around the persisted document: every operation loads the document,
// applies a state transition, appends an activity record, and saves with
// an optimistic-concurrency check. Version conflicts are retried with
// backoff, so concurrent administrators cannot silently lose updates.
package household

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/pcashin/hearthtab/internal/ledger"
	"github.com/pcashin/hearthtab/internal/metrics"
	"github.com/pcashin/hearthtab/internal/model"
	"github.com/pcashin/hearthtab/internal/recurrence"
	"github.com/pcashin/hearthtab/internal/roster"
	"github.com/pcashin/hearthtab/internal/rotation"
	"github.com/pcashin/hearthtab/internal/store"
	"github.com/pcashin/hearthtab/internal/websocket"
)

// ErrNotFound is returned when a duty or bill id does not exist.
var ErrNotFound = errors.New("household: not found")

// DutyKind routes a new duty into the right document section.
type DutyKind string

const (
	KindItem  DutyKind = "item"
	KindChore DutyKind = "chore"
)

// Newest-first activity entries kept in the document.
const activityLimit = 200

const (
	maxSaveRetries = 5
	retryBase      = 10 * time.Millisecond
)

type Service struct {
	docs    *store.DocumentStore
	members *store.MemberStore
	hub     *websocket.Hub
	logger  *slog.Logger
	now     func() time.Time
}

func New(docs *store.DocumentStore, members *store.MemberStore, hub *websocket.Hub, logger *slog.Logger) *Service {
	return &Service{
		docs:    docs,
		members: members,
		hub:     hub,
		logger:  logger,
		now:     time.Now,
	}
}

// Document returns the current household document, rolling the month
// forward first if the calendar has moved on since the last write.
func (s *Service) Document(ctx context.Context) (model.Document, error) {
	doc, _, err := s.docs.Load()
	if err != nil {
		return model.Document{}, err
	}
	if doc.CurrentMonth != monthLabel(s.now()) {
		return s.update(ctx, "month_rollover", func(doc *model.Document) error { return nil })
	}
	return doc, nil
}

// --- Duties ---

// AddDuty creates a duty with the given rotation. The cursor starts on
// the last member so the first-listed member takes the first turn.
func (s *Service) AddDuty(ctx context.Context, kind DutyKind, name string, members []string) (model.RotatingDuty, error) {
	duty := model.RotatingDuty{
		ID:       uuid.NewString(),
		Name:     name,
		Rotation: append([]string(nil), members...),
	}
	if len(duty.Rotation) > 0 {
		duty.CurrentIndex = len(duty.Rotation) - 1
	}

	_, err := s.update(ctx, "add_duty", func(doc *model.Document) error {
		switch kind {
		case KindChore:
			doc.MonthlyChores = append(doc.MonthlyChores, duty)
		default:
			doc.Items = append(doc.Items, duty)
		}
		s.logActivity(doc, fmt.Sprintf("Added %s to the rotation board", name))
		return nil
	})
	if err != nil {
		return model.RotatingDuty{}, err
	}
	s.broadcast(websocket.NewEvent("duty", "created", duty.ID, nil))
	return duty, nil
}

// FulfillDuty records that member took their turn. Unless force is set,
// out-of-order fulfillment is rejected with rotation.ErrOutOfTurn.
func (s *Service) FulfillDuty(ctx context.Context, id, member string, force bool) (model.RotatingDuty, error) {
	var out model.RotatingDuty
	_, err := s.update(ctx, "fulfill_duty", func(doc *model.Document) error {
		d := doc.Duty(id)
		if d == nil {
			return fmt.Errorf("%w: duty %s", ErrNotFound, id)
		}
		advanced, err := rotation.Advance(*d, member, force, s.now())
		if err != nil {
			return err
		}
		*d = advanced
		out = advanced
		s.logActivity(doc, fmt.Sprintf("%s took care of %s", member, d.Name))
		return nil
	})
	if err != nil {
		return model.RotatingDuty{}, err
	}
	s.broadcast(websocket.NewEvent("duty", "advanced", id, map[string]any{"by": member}))
	return out, nil
}

// SkipDuty sits member out for the current pass.
func (s *Service) SkipDuty(ctx context.Context, id, member string) (model.RotatingDuty, error) {
	var out model.RotatingDuty
	_, err := s.update(ctx, "skip_duty", func(doc *model.Document) error {
		d := doc.Duty(id)
		if d == nil {
			return fmt.Errorf("%w: duty %s", ErrNotFound, id)
		}
		skipped, err := rotation.Skip(*d, member)
		if err != nil {
			return err
		}
		*d = skipped
		out = skipped
		s.logActivity(doc, fmt.Sprintf("%s skipped their turn for %s", member, d.Name))
		return nil
	})
	if err != nil {
		return model.RotatingDuty{}, err
	}
	s.broadcast(websocket.NewEvent("duty", "skipped", id, map[string]any{"member": member}))
	return out, nil
}

// ReorderDuty replaces a duty's rotation sequence, clamping the cursor.
func (s *Service) ReorderDuty(ctx context.Context, id string, sequence []string) (model.RotatingDuty, error) {
	var out model.RotatingDuty
	_, err := s.update(ctx, "reorder_duty", func(doc *model.Document) error {
		d := doc.Duty(id)
		if d == nil {
			return fmt.Errorf("%w: duty %s", ErrNotFound, id)
		}
		*d = rotation.Reorder(*d, sequence)
		out = *d
		return nil
	})
	if err != nil {
		return model.RotatingDuty{}, err
	}
	s.broadcast(websocket.NewEvent("duty", "reordered", id, nil))
	return out, nil
}

func (s *Service) RemoveDuty(ctx context.Context, id string) error {
	_, err := s.update(ctx, "remove_duty", func(doc *model.Document) error {
		if doc.Duty(id) == nil {
			return fmt.Errorf("%w: duty %s", ErrNotFound, id)
		}
		doc.Items = dropDuty(doc.Items, id)
		doc.MonthlyChores = dropDuty(doc.MonthlyChores, id)
		return nil
	})
	if err != nil {
		return err
	}
	s.broadcast(websocket.NewEvent("duty", "deleted", id, nil))
	return nil
}

// --- Bills ---

// CreateBill validates the split and appends a new bill. The recurrence
// string is normalized before storage; unknown values become monthly.
func (s *Service) CreateBill(ctx context.Context, category string, amount float64, dueDate time.Time, recur string, splits map[string]float64) (model.Bill, error) {
	if recur != "" {
		recur = string(recurrence.Normalize(recur))
	}
	bill, err := ledger.NewBill(category, amount, dueDate, recur, splits)
	if err != nil {
		return model.Bill{}, err
	}

	_, err = s.update(ctx, "create_bill", func(doc *model.Document) error {
		doc.Bills = append(doc.Bills, bill)
		s.logActivity(doc, fmt.Sprintf("Added bill %s ($%.2f)", category, amount))
		return nil
	})
	if err != nil {
		return model.Bill{}, err
	}
	s.broadcast(websocket.NewEvent("bill", "created", bill.ID, nil))
	return bill, nil
}

// PayBill marks one member's share paid. On the settlement transition it
// appends the activity entry once and, for recurring bills, spawns the
// successor bill in the same save.
func (s *Service) PayBill(ctx context.Context, id, memberKey string) (model.Bill, error) {
	var out model.Bill
	var settled bool
	_, err := s.update(ctx, "pay_bill", func(doc *model.Document) error {
		b := doc.Bill(id)
		if b == nil {
			return fmt.Errorf("%w: bill %s", ErrNotFound, id)
		}
		paid, justSettled, err := ledger.RecordPayment(*b, memberKey, s.now())
		if err != nil {
			return err
		}
		*b = paid
		out = paid
		settled = justSettled

		if justSettled {
			s.logActivity(doc, fmt.Sprintf("Bill %s settled in full", b.Category))
			if paid.IsRecurring() {
				next := recurrence.SpawnSuccessor(paid)
				doc.Bills = append(doc.Bills, next)
				s.logActivity(doc, fmt.Sprintf("Next %s bill due %s", next.Category, next.DueDate.Format("Jan 2")))
			}
		}
		return nil
	})
	if err != nil {
		return model.Bill{}, err
	}

	if settled {
		metrics.Settlements.Inc()
		s.broadcast(websocket.NewEvent("bill", "settled", id, nil))
	} else {
		s.broadcast(websocket.NewEvent("bill", "paid", id, map[string]any{"member": memberKey}))
	}
	return out, nil
}

func (s *Service) RemoveBill(ctx context.Context, id string) error {
	_, err := s.update(ctx, "remove_bill", func(doc *model.Document) error {
		for i := range doc.Bills {
			if doc.Bills[i].ID == id {
				doc.Bills = append(doc.Bills[:i], doc.Bills[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: bill %s", ErrNotFound, id)
	})
	if err != nil {
		return err
	}
	s.broadcast(websocket.NewEvent("bill", "deleted", id, nil))
	return nil
}

// --- Roster ---

// AddMember creates the member record. Existing rotations and bills are
// untouched: new members are opted into each duty explicitly.
func (s *Service) AddMember(ctx context.Context, name, color string) (*model.Member, error) {
	m, err := s.members.Create(name, color)
	if err != nil {
		return nil, err
	}
	if _, err := s.update(ctx, "add_member", func(doc *model.Document) error {
		*doc = roster.OnMemberAdded(*doc, *m)
		s.logActivity(doc, fmt.Sprintf("%s joined the household", name))
		return nil
	}); err != nil {
		return nil, err
	}
	s.broadcast(websocket.NewEvent("member", "created", m.SplitKey(), nil))
	return m, nil
}

// RenameMember updates the member record and rewrites the name through
// every rotation.
func (s *Service) RenameMember(ctx context.Context, id int64, newName, color string) (*model.Member, error) {
	m, err := s.members.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: member %d", ErrNotFound, id)
	}
	oldName := m.Name

	updated, err := s.members.Update(id, newName, color)
	if err != nil {
		return nil, err
	}
	if oldName != newName {
		if _, err := s.update(ctx, "rename_member", func(doc *model.Document) error {
			*doc = roster.OnMemberRenamed(*doc, oldName, newName)
			return nil
		}); err != nil {
			return nil, err
		}
	}
	s.broadcast(websocket.NewEvent("member", "updated", updated.SplitKey(), nil))
	return updated, nil
}

// RemoveMember deletes the member record and drops them from every
// rotation. Bill splits keep the member's share as historical debt.
func (s *Service) RemoveMember(ctx context.Context, id int64) error {
	m, err := s.members.GetByID(id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%w: member %d", ErrNotFound, id)
	}

	if err := s.members.Delete(id); err != nil {
		return err
	}
	if _, err := s.update(ctx, "remove_member", func(doc *model.Document) error {
		*doc = roster.OnMemberRemoved(*doc, m.Name)
		s.logActivity(doc, fmt.Sprintf("%s left the household", m.Name))
		return nil
	}); err != nil {
		return err
	}
	s.broadcast(websocket.NewEvent("member", "deleted", m.SplitKey(), nil))
	return nil
}

// --- internals ---

// update runs the read-modify-write cycle: load the document and its
// version, roll the month forward if needed, apply fn, and save with the
// version check. A conflicting concurrent write retries the whole cycle
// against the fresh document.
func (s *Service) update(ctx context.Context, op string, fn func(*model.Document) error) (model.Document, error) {
	var out model.Document
	backoff := retry.WithMaxRetries(maxSaveRetries, retry.NewFibonacci(retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		doc, version, err := s.docs.Load()
		if err != nil {
			return err
		}
		s.rollMonth(&doc)
		if err := fn(&doc); err != nil {
			return err
		}
		if err := s.docs.Save(doc, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				metrics.VersionConflicts.Inc()
				s.logger.Debug("document version conflict, retrying", "op", op)
				return retry.RetryableError(err)
			}
			return err
		}
		out = doc
		return nil
	})
	if err != nil {
		return model.Document{}, err
	}
	metrics.Operations.WithLabelValues(op).Inc()
	return out, nil
}

// rollMonth archives monthly-chore fulfillments under the outgoing month
// label and starts the new month with cleared skip sets. Rotation order
// and cursors carry over.
func (s *Service) rollMonth(doc *model.Document) {
	label := monthLabel(s.now())
	if doc.CurrentMonth == label {
		return
	}

	if doc.CurrentMonth != "" {
		if doc.ChoreHistory == nil {
			doc.ChoreHistory = make(map[string][]model.ChoreCompletion)
		}
		for i := range doc.MonthlyChores {
			c := &doc.MonthlyChores[i]
			if c.LastDone != nil {
				doc.ChoreHistory[doc.CurrentMonth] = append(doc.ChoreHistory[doc.CurrentMonth], model.ChoreCompletion{
					DutyID:   c.ID,
					DutyName: c.Name,
					By:       c.LastDone.By,
					At:       c.LastDone.At,
				})
			}
			c.LastDone = nil
			c.Skipped = nil
		}
		s.logger.Info("rolled household month", "from", doc.CurrentMonth, "to", label)
	}
	doc.CurrentMonth = label
}

func (s *Service) logActivity(doc *model.Document, message string) {
	entry := model.ActivityRecord{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: s.now(),
	}
	doc.Activity = append([]model.ActivityRecord{entry}, doc.Activity...)
	if len(doc.Activity) > activityLimit {
		doc.Activity = doc.Activity[:activityLimit]
	}
}

func (s *Service) broadcast(ev websocket.Event) {
	if s.hub != nil {
		s.hub.Broadcast(ev)
	}
}

func dropDuty(duties []model.RotatingDuty, id string) []model.RotatingDuty {
	for i := range duties {
		if duties[i].ID == id {
			return append(duties[:i], duties[i+1:]...)
		}
	}
	return duties
}

func monthLabel(t time.Time) string {
	return t.Format("January 2006")
}
