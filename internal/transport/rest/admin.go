package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/internal/relay"
	"github.com/heartmarshall/hearme-backend/internal/service/matching"
	"github.com/heartmarshall/hearme-backend/pkg/ctxutil"
)

type adminService interface {
	ForceRejectPending(ctx context.Context, matchingID int64) ([]domain.Matching, error)
	RebuildPresence(ctx context.Context) (*matching.RebuildResult, error)
}

type relayStats interface {
	Stats() relay.Stats
}

// AdminHandler serves admin REST endpoints.
type AdminHandler struct {
	svc   adminService
	relay relayStats
	log   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc adminService, relay relayStats, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:   svc,
		relay: relay,
		log:   logger.With("handler", "admin"),
	}
}

type rebuildResponse struct {
	ActiveProfiles     int `json:"activeProfiles"`
	AvailableSpeakers  int `json:"availableSpeakers"`
	AvailableListeners int `json:"availableListeners"`
}

// RejectPending rejects every pending request to the listener of a matching.
// POST /admin/matchings/{id}/reject-pending
func (h *AdminHandler) RejectPending(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	rejected, err := h.svc.ForceRejectPending(r.Context(), id)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchingList(rejected))
}

// RebuildPresence recomputes the presence cache.
// POST /admin/presence/rebuild
func (h *AdminHandler) RebuildPresence(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	res, err := h.svc.RebuildPresence(r.Context())
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rebuildResponse{
		ActiveProfiles:     res.ActiveProfiles,
		AvailableSpeakers:  res.Available[domain.RoleSpeaker],
		AvailableListeners: res.Available[domain.RoleListener],
	})
}

// RelayStats reports the event relay state.
// GET /admin/relay
func (h *AdminHandler) RelayStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, h.relay.Stats())
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !ctxutil.IsAdminCtx(r.Context()) {
		writeError(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}
