package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pcashin/hearthtab/internal/backup"
	"github.com/pcashin/hearthtab/internal/config"
	"github.com/pcashin/hearthtab/internal/email"
	"github.com/pcashin/hearthtab/internal/handler"
	"github.com/pcashin/hearthtab/internal/household"
	"github.com/pcashin/hearthtab/internal/invite"
	"github.com/pcashin/hearthtab/internal/middleware"
	"github.com/pcashin/hearthtab/internal/store"
	ws "github.com/pcashin/hearthtab/internal/websocket"
)

type Server struct {
	hub           *ws.Hub
	dutyH         *handler.DutyHandler
	billH         *handler.BillHandler
	memberH       *handler.MemberHandler
	activityH     *handler.ActivityHandler
	inviteH       *handler.InviteHandler
	backupH       *handler.BackupHandler
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	docStore := store.NewDocumentStore(db)
	memberStore := store.NewMemberStore(db)
	svc := household.New(docStore, memberStore, hub, logger.With("component", "household"))

	var signer *invite.Signer
	if cfg.InviteSecret != "" {
		signer = invite.NewSigner([]byte(cfg.InviteSecret), cfg.HouseholdName, cfg.InviteTTL)
	}
	emailClient := email.NewClient(cfg.PostmarkToken, cfg.EmailFrom, cfg.BaseURL)

	backupMgr := backup.NewManager(backup.Config{
		Endpoint:  cfg.Backup.Endpoint,
		Bucket:    cfg.Backup.Bucket,
		Region:    cfg.Backup.Region,
		AccessKey: cfg.Backup.AccessKey,
		SecretKey: cfg.Backup.SecretKey,
		Prefix:    cfg.Backup.Prefix,
		Interval:  cfg.Backup.Interval,
	}, docStore, logger.With("component", "backup"))

	return &Server{
		hub:           hub,
		dutyH:         handler.NewDutyHandler(svc, logger.With("component", "duty")),
		billH:         handler.NewBillHandler(svc, logger.With("component", "bill")),
		memberH:       handler.NewMemberHandler(svc, memberStore, logger.With("component", "member")),
		activityH:     handler.NewActivityHandler(svc, logger.With("component", "activity")),
		inviteH:       handler.NewInviteHandler(signer, emailClient, cfg.HouseholdName, logger.With("component", "invite")),
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup")),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// BackupManager returns the backup manager so main can run its schedule.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws", ws.Handler(s.hub))

	// Members
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.HandleFunc("POST /api/members", s.memberH.Create)
	mux.HandleFunc("PUT /api/members/sort", s.memberH.UpdateSortOrder)
	mux.HandleFunc("PUT /api/members/{id}", s.memberH.Update)
	mux.HandleFunc("DELETE /api/members/{id}", s.memberH.Delete)
	mux.HandleFunc("POST /api/members/{id}/pin", s.memberH.SetPIN)
	mux.HandleFunc("DELETE /api/members/{id}/pin", s.memberH.ClearPIN)
	mux.HandleFunc("POST /api/members/{id}/pin/verify", s.memberH.VerifyPIN)

	// Rotating duties
	mux.HandleFunc("GET /api/duties", s.dutyH.List)
	mux.HandleFunc("POST /api/duties", s.dutyH.Create)
	mux.HandleFunc("POST /api/duties/{id}/fulfill", s.dutyH.Fulfill)
	mux.HandleFunc("POST /api/duties/{id}/skip", s.dutyH.Skip)
	mux.HandleFunc("PUT /api/duties/{id}/rotation", s.dutyH.Reorder)
	mux.HandleFunc("DELETE /api/duties/{id}", s.dutyH.Delete)

	// Bills
	mux.HandleFunc("GET /api/bills", s.billH.List)
	mux.HandleFunc("POST /api/bills", s.billH.Create)
	mux.HandleFunc("POST /api/bills/{id}/payments", s.billH.Pay)
	mux.HandleFunc("DELETE /api/bills/{id}", s.billH.Delete)

	// Activity
	mux.HandleFunc("GET /api/activity", s.activityH.List)

	// Invites
	mux.HandleFunc("POST /api/invites", s.inviteH.Create)
	mux.HandleFunc("GET /invite/accept", s.inviteH.Accept)

	// Backups
	mux.HandleFunc("POST /api/backup", s.backupH.Trigger)
	mux.HandleFunc("GET /api/backup/status", s.backupH.Status)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
