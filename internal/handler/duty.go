package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pcashin/hearthtab/internal/household"
	"github.com/pcashin/hearthtab/internal/model"
	"github.com/pcashin/hearthtab/internal/rotation"
)

type DutyHandler struct {
	svc    *household.Service
	logger *slog.Logger
}

func NewDutyHandler(svc *household.Service, logger *slog.Logger) *DutyHandler {
	return &DutyHandler{svc: svc, logger: logger}
}

// dutyResponse augments a duty with who is up next, so clients never
// compute turn order themselves.
type dutyResponse struct {
	model.RotatingDuty
	NextUp string `json:"nextUp,omitempty"`
}

func toDutyResponse(d model.RotatingDuty) dutyResponse {
	resp := dutyResponse{RotatingDuty: d}
	if next, ok := rotation.NextEligible(d); ok {
		resp.NextUp = next
	}
	return resp
}

func (h *DutyHandler) List(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Document(r.Context())
	if err != nil {
		h.logger.Error("load document", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load duties")
		return
	}

	items := make([]dutyResponse, 0, len(doc.Items))
	for _, d := range doc.Items {
		items = append(items, toDutyResponse(d))
	}
	chores := make([]dutyResponse, 0, len(doc.MonthlyChores))
	for _, d := range doc.MonthlyChores {
		chores = append(chores, toDutyResponse(d))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":         items,
		"monthlyChores": chores,
		"currentMonth":  doc.CurrentMonth,
	})
}

type createDutyRequest struct {
	Kind     string   `json:"kind"`
	Name     string   `json:"name"`
	Rotation []string `json:"rotation"`
}

func (h *DutyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDutyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	kind := household.KindItem
	if req.Kind == string(household.KindChore) {
		kind = household.KindChore
	}

	duty, err := h.svc.AddDuty(r.Context(), kind, req.Name, req.Rotation)
	if err != nil {
		h.logger.Error("create duty", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create duty")
		return
	}
	writeJSON(w, http.StatusCreated, toDutyResponse(duty))
}

type fulfillRequest struct {
	Member string `json:"member"`
	Force  bool   `json:"force"`
}

func (h *DutyHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	var req fulfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Member == "" {
		writeError(w, http.StatusBadRequest, "member is required")
		return
	}

	duty, err := h.svc.FulfillDuty(r.Context(), r.PathValue("id"), req.Member, req.Force)
	if err != nil {
		h.writeDutyError(w, err, "failed to fulfill duty")
		return
	}
	writeJSON(w, http.StatusOK, toDutyResponse(duty))
}

func (h *DutyHandler) Skip(w http.ResponseWriter, r *http.Request) {
	var req fulfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Member == "" {
		writeError(w, http.StatusBadRequest, "member is required")
		return
	}

	duty, err := h.svc.SkipDuty(r.Context(), r.PathValue("id"), req.Member)
	if err != nil {
		h.writeDutyError(w, err, "failed to skip turn")
		return
	}
	writeJSON(w, http.StatusOK, toDutyResponse(duty))
}

type reorderRequest struct {
	Rotation []string `json:"rotation"`
}

func (h *DutyHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	duty, err := h.svc.ReorderDuty(r.Context(), r.PathValue("id"), req.Rotation)
	if err != nil {
		h.writeDutyError(w, err, "failed to update rotation")
		return
	}
	writeJSON(w, http.StatusOK, toDutyResponse(duty))
}

func (h *DutyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveDuty(r.Context(), r.PathValue("id")); err != nil {
		h.writeDutyError(w, err, "failed to delete duty")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *DutyHandler) writeDutyError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, household.ErrNotFound):
		writeError(w, http.StatusNotFound, "duty not found")
	case errors.Is(err, rotation.ErrOutOfTurn):
		writeError(w, http.StatusConflict, "not this member's turn")
	case errors.Is(err, rotation.ErrNotInRotation):
		writeError(w, http.StatusBadRequest, "member is not in this rotation")
	case errors.Is(err, rotation.ErrEmptyRotation):
		writeError(w, http.StatusConflict, "rotation has no members")
	default:
		h.logger.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
