package handler

import (
	"log/slog"
	"net/http"

	"github.com/pcashin/hearthtab/internal/household"
	"github.com/pcashin/hearthtab/internal/model"
)

type ActivityHandler struct {
	svc    *household.Service
	logger *slog.Logger
}

func NewActivityHandler(svc *household.Service, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{svc: svc, logger: logger}
}

// List returns the activity log, newest first.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Document(r.Context())
	if err != nil {
		h.logger.Error("load document", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load activity")
		return
	}
	activity := doc.Activity
	if activity == nil {
		activity = []model.ActivityRecord{}
	}
	writeJSON(w, http.StatusOK, activity)
}
