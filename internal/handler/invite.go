package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pcashin/hearthtab/internal/email"
	"github.com/pcashin/hearthtab/internal/invite"
)

type InviteHandler struct {
	signer        *invite.Signer
	email         *email.Client
	householdName string
	logger        *slog.Logger
}

func NewInviteHandler(signer *invite.Signer, emailClient *email.Client, householdName string, logger *slog.Logger) *InviteHandler {
	return &InviteHandler{signer: signer, email: emailClient, householdName: householdName, logger: logger}
}

type inviteRequest struct {
	Email string `json:"email"`
}

// Create mints an invite token and emails the invitation link. Without a
// configured mail client the token is returned directly so the link can
// be shared by hand.
func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.signer == nil {
		writeError(w, http.StatusServiceUnavailable, "invites are not configured")
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	token, err := h.signer.Token(req.Email)
	if err != nil {
		h.logger.Error("mint invite token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create invite")
		return
	}

	if h.email != nil && h.email.Configured() {
		if err := h.email.SendInvite(req.Email, token, h.householdName); err != nil {
			h.logger.Error("send invite email", "email", req.Email, "error", err)
			writeError(w, http.StatusBadGateway, "failed to send invite email")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "created", "token": token})
}

// Accept verifies an invitation link.
func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	if h.signer == nil {
		writeError(w, http.StatusServiceUnavailable, "invites are not configured")
		return
	}

	addr, err := h.signer.Verify(r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired invitation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"email":     addr,
		"household": h.householdName,
	})
}
