package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pcashin/hearthtab/internal/household"
	"github.com/pcashin/hearthtab/internal/ledger"
	"github.com/pcashin/hearthtab/internal/model"
)

type BillHandler struct {
	svc    *household.Service
	logger *slog.Logger
}

func NewBillHandler(svc *household.Service, logger *slog.Logger) *BillHandler {
	return &BillHandler{svc: svc, logger: logger}
}

// billResponse augments a bill with per-member currency amounts and the
// remaining balance, both derived from the stored percentages.
type billResponse struct {
	model.Bill
	ShareAmounts map[string]float64 `json:"shareAmounts"`
	Outstanding  float64            `json:"outstanding"`
}

func toBillResponse(b model.Bill) billResponse {
	shares := make(map[string]float64, len(b.Splits))
	for key := range b.Splits {
		amount, _ := ledger.ShareAmount(b, key)
		shares[key] = amount
	}
	return billResponse{
		Bill:         b,
		ShareAmounts: shares,
		Outstanding:  ledger.Outstanding(b),
	}
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Document(r.Context())
	if err != nil {
		h.logger.Error("load document", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load bills")
		return
	}

	bills := make([]billResponse, 0, len(doc.Bills))
	for _, b := range doc.Bills {
		bills = append(bills, toBillResponse(b))
	}
	writeJSON(w, http.StatusOK, bills)
}

type createBillRequest struct {
	Category   string             `json:"category"`
	Amount     float64            `json:"amount"`
	DueDate    string             `json:"dueDate"`
	Recurrence string             `json:"recurrence"`
	Splits     map[string]float64 `json:"splits"`
	// SplitMode "amount" means Splits holds currency amounts to convert;
	// anything else means percentages.
	SplitMode string `json:"splitMode"`
}

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "dueDate must be YYYY-MM-DD")
		return
	}

	splits := req.Splits
	if req.SplitMode == "amount" {
		splits, err = ledger.SplitsFromAmounts(req.Splits, req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	bill, err := h.svc.CreateBill(r.Context(), req.Category, req.Amount, dueDate, req.Recurrence, splits)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidSplit) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("create bill", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create bill")
		return
	}
	writeJSON(w, http.StatusCreated, toBillResponse(bill))
}

type payRequest struct {
	Member string `json:"member"`
}

func (h *BillHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Member == "" {
		writeError(w, http.StatusBadRequest, "member is required")
		return
	}

	bill, err := h.svc.PayBill(r.Context(), r.PathValue("id"), req.Member)
	if err != nil {
		switch {
		case errors.Is(err, household.ErrNotFound):
			writeError(w, http.StatusNotFound, "bill not found")
		case errors.Is(err, ledger.ErrNoShare):
			writeError(w, http.StatusBadRequest, "member has no share of this bill")
		default:
			h.logger.Error("record payment", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to record payment")
		}
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveBill(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, household.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bill not found")
			return
		}
		h.logger.Error("delete bill", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete bill")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
