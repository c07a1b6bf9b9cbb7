package store

import (
	"errors"
	"testing"
	"time"

	"github.com/pcashin/hearthtab/internal/database"
	"github.com/pcashin/hearthtab/internal/model"
)

func setupDocumentTestDB(t *testing.T) *DocumentStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDocumentStore(db)
}

func TestLoadEmptyDocument(t *testing.T) {
	ds := setupDocumentTestDB(t)

	doc, version, err := ds.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
	if len(doc.Items) != 0 || len(doc.Bills) != 0 {
		t.Errorf("fresh document not empty: %+v", doc)
	}
}

func TestSaveAndReload(t *testing.T) {
	ds := setupDocumentTestDB(t)

	doc, version, _ := ds.Load()
	doc.CurrentMonth = "March 2026"
	doc.Items = append(doc.Items, model.RotatingDuty{
		ID:       "i1",
		Name:     "Toilet paper",
		Rotation: []string{"Ana", "Ben"},
		LastDone: &model.Fulfillment{By: "Ana", At: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)},
	})
	doc.Bills = append(doc.Bills, model.Bill{
		ID: "b1", Category: "Rent", Amount: 900,
		DueDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Splits:   map[string]float64{"1": 100},
		Payments: map[string]model.PaymentRecord{"1": {}},
	})

	if err := ds.Save(doc, version); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, version2, err := ds.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if version2 != version+1 {
		t.Errorf("version = %d, want %d", version2, version+1)
	}
	if got.CurrentMonth != "March 2026" {
		t.Errorf("currentMonth = %q, want %q", got.CurrentMonth, "March 2026")
	}
	if len(got.Items) != 1 || got.Items[0].LastDone == nil || got.Items[0].LastDone.By != "Ana" {
		t.Errorf("items = %+v, want round-tripped duty", got.Items)
	}
	if got.Bills[0].Splits["1"] != 100 {
		t.Errorf("bill splits = %v, want round-tripped", got.Bills[0].Splits)
	}
}

func TestSaveVersionConflict(t *testing.T) {
	ds := setupDocumentTestDB(t)

	doc, version, _ := ds.Load()
	if err := ds.Save(doc, version); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Second writer still holds the old version.
	err := ds.Save(doc, version)
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("err = %v, want ErrVersionConflict", err)
	}
}
