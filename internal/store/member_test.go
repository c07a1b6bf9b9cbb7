package store

import (
	"testing"

	"github.com/pcashin/hearthtab/internal/database"
)

func setupMemberTestDB(t *testing.T) *MemberStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMemberStore(db)
}

func TestMemberCRUD(t *testing.T) {
	ms := setupMemberTestDB(t)

	m, err := ms.Create("Ana", "#e06666")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if m.Name != "Ana" || m.Color != "#e06666" {
		t.Errorf("member = %+v, want Ana/#e06666", m)
	}
	if m.HasPIN {
		t.Error("new member reports a PIN")
	}

	got, err := ms.GetByName("Ana")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if got == nil || got.ID != m.ID {
		t.Errorf("get by name = %+v, want id %d", got, m.ID)
	}

	updated, err := ms.Update(m.ID, "Anna", "#e06666")
	if err != nil {
		t.Fatalf("update member: %v", err)
	}
	if updated.Name != "Anna" {
		t.Errorf("name = %q, want %q", updated.Name, "Anna")
	}

	if err := ms.Delete(m.ID); err != nil {
		t.Fatalf("delete member: %v", err)
	}
	got, err = ms.GetByID(m.ID)
	if err != nil {
		t.Fatalf("get deleted member: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted member")
	}
}

func TestMemberSortOrder(t *testing.T) {
	ms := setupMemberTestDB(t)

	a, _ := ms.Create("Ana", "")
	b, _ := ms.Create("Ben", "")
	if err := ms.UpdateSortOrder([]int64{b.ID, a.ID}); err != nil {
		t.Fatalf("update sort order: %v", err)
	}

	members, err := ms.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(members) != 2 || members[0].Name != "Ben" {
		t.Errorf("members = %+v, want Ben first", members)
	}
}

func TestMemberPIN(t *testing.T) {
	ms := setupMemberTestDB(t)

	m, _ := ms.Create("Ana", "")
	if err := ms.SetPIN(m.ID, "4271"); err != nil {
		t.Fatalf("set pin: %v", err)
	}

	got, _ := ms.GetByID(m.ID)
	if !got.HasPIN {
		t.Error("has_pin = false after SetPIN")
	}

	ok, err := ms.VerifyPIN(m.ID, "4271")
	if err != nil || !ok {
		t.Errorf("verify correct pin: ok=%v err=%v", ok, err)
	}
	ok, _ = ms.VerifyPIN(m.ID, "0000")
	if ok {
		t.Error("wrong PIN verified")
	}

	if err := ms.ClearPIN(m.ID); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	ok, _ = ms.VerifyPIN(m.ID, "4271")
	if ok {
		t.Error("cleared PIN still verifies")
	}
}

func TestVerifyPINUnknownMember(t *testing.T) {
	ms := setupMemberTestDB(t)

	ok, err := ms.VerifyPIN(999, "1234")
	if err != nil {
		t.Fatalf("verify pin: %v", err)
	}
	if ok {
		t.Error("unknown member verified")
	}
}
