package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/mkarlsen/chorecoin/internal/backup"
	"github.com/mkarlsen/chorecoin/internal/handler"
	"github.com/mkarlsen/chorecoin/internal/middleware"
	"github.com/mkarlsen/chorecoin/internal/profile"
	"github.com/mkarlsen/chorecoin/internal/store"
	ws "github.com/mkarlsen/chorecoin/internal/websocket"
)

type Server struct {
	db       *sql.DB
	hub      *ws.Hub
	profiles *profile.Service

	profileH  *handler.ProfileHandler
	activityH *handler.ActivityHandler
	rewardH   *handler.RewardHandler
	snapshotH *handler.SnapshotHandler
	logger    *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	profileStore := store.NewProfileStore(db)
	svc := profile.NewService(profileStore, logger.With("component", "profile"))

	return &Server{
		db:        db,
		hub:       hub,
		profiles:  svc,
		profileH:  handler.NewProfileHandler(svc, hub, logger.With("component", "profile_handler")),
		activityH: handler.NewActivityHandler(svc, hub, logger.With("component", "activity_handler")),
		rewardH:   handler.NewRewardHandler(svc, hub, logger.With("component", "reward_handler")),
		logger:    logger,
	}
}

// Profiles returns the profile service, exposed for tests.
func (s *Server) Profiles() *profile.Service {
	return s.profiles
}

// NewSnapshotManager builds the snapshot manager wired to this
// server's database and websocket hub, and registers its routes.
func (s *Server) NewSnapshotManager(cfg backup.Config) *backup.Manager {
	m := backup.NewManager(cfg, s.db, store.NewSnapshotStore(s.db),
		s.logger.With("component", "backup"),
		func(status backup.Status) {
			s.hub.Broadcast(ws.NewMessage("snapshot", string(status.State), "", ""))
		})
	s.snapshotH = handler.NewSnapshotHandler(m, s.logger.With("component", "snapshot_handler"))
	return m
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	mux.HandleFunc("GET /api/profiles", s.profileH.List)
	mux.HandleFunc("POST /api/profiles", s.profileH.Create)
	mux.HandleFunc("POST /api/profiles/select", s.profileH.Select)
	mux.HandleFunc("GET /api/profile", s.profileH.Get)
	mux.HandleFunc("PUT /api/profile", s.profileH.Update)
	mux.HandleFunc("DELETE /api/profile", s.profileH.Delete)
	mux.HandleFunc("POST /api/profile/logout", s.profileH.Logout)
	mux.HandleFunc("POST /api/profile/import-legacy", s.profileH.ImportLegacy)

	mux.HandleFunc("GET /api/week", s.activityH.Week)
	mux.HandleFunc("GET /api/history", s.activityH.History)
	mux.HandleFunc("POST /api/activities", s.activityH.Create)
	mux.HandleFunc("POST /api/activities/{id}/toggle", s.activityH.Toggle)
	mux.HandleFunc("PUT /api/activities/{id}/override", s.activityH.Override)
	mux.HandleFunc("POST /api/activities/{id}/delete-week", s.activityH.DeleteWeek)

	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("PUT /api/rewards/{id}", s.rewardH.Update)
	mux.HandleFunc("DELETE /api/rewards/{id}", s.rewardH.Delete)
	mux.HandleFunc("POST /api/rewards/{id}/redeem", s.rewardH.Redeem)
	mux.HandleFunc("POST /api/redeemed/{uniqueId}/toggle-used", s.rewardH.ToggleUsed)

	if s.snapshotH != nil {
		mux.HandleFunc("GET /api/snapshots", s.snapshotH.List)
		mux.HandleFunc("POST /api/snapshots", s.snapshotH.RunNow)
		mux.HandleFunc("GET /api/snapshots/status", s.snapshotH.Status)
		mux.HandleFunc("GET /api/snapshots/{id}/download", s.snapshotH.Download)
		mux.HandleFunc("POST /api/snapshots/{id}/restore", s.snapshotH.Restore)
	}

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		http.Error(w, "db unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}
