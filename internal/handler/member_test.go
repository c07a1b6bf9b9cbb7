package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pcashin/hearthtab/internal/database"
	"github.com/pcashin/hearthtab/internal/household"
	"github.com/pcashin/hearthtab/internal/model"
	"github.com/pcashin/hearthtab/internal/store"
)

func setupMemberHandler(t *testing.T) (*MemberHandler, *store.MemberStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	members := store.NewMemberStore(db)
	svc := household.New(store.NewDocumentStore(db), members, nil, slog.Default())
	return NewMemberHandler(svc, members, slog.Default()), members
}

func putMember(t *testing.T, h *MemberHandler, id int64, body memberRequest) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/members/%d", id), bytes.NewReader(data))
	req.SetPathValue("id", fmt.Sprintf("%d", id))
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	return rec
}

func TestCreateMemberDuplicateName(t *testing.T) {
	h, _ := setupMemberHandler(t)

	rec := postJSON(t, h.Create, "/api/members", memberRequest{Name: "Alice", Color: "#f00"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	rec = postJSON(t, h.Create, "/api/members", memberRequest{Name: "Alice", Color: "#0f0"})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestUpdateMemberNameConflict(t *testing.T) {
	h, members := setupMemberHandler(t)

	alice, err := members.Create("Alice", "#f00")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	if _, err := members.Create("Bob", "#00f"); err != nil {
		t.Fatalf("create bob: %v", err)
	}

	rec := putMember(t, h, alice.ID, memberRequest{Name: "Bob", Color: "#f00"})
	if rec.Code != http.StatusConflict {
		t.Errorf("rename to taken name: status = %d, want 409", rec.Code)
	}
}

func TestUpdateMemberKeepOwnName(t *testing.T) {
	h, members := setupMemberHandler(t)

	alice, err := members.Create("Alice", "#f00")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}

	// Changing only the color resubmits the member's own name, which must
	// not count as a conflict.
	rec := putMember(t, h, alice.ID, memberRequest{Name: "Alice", Color: "#0f0"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var m model.Member
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if m.Color != "#0f0" {
		t.Errorf("color = %q, want %q", m.Color, "#0f0")
	}
}

func TestUpdateMemberNotFound(t *testing.T) {
	h, _ := setupMemberHandler(t)

	rec := putMember(t, h, 99, memberRequest{Name: "Nobody"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
