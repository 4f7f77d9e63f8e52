package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/internal/service/matching"
)

type waitingService interface {
	Enqueue(ctx context.Context, input matching.EnqueueInput) (*domain.WaitingEntry, error)
	CancelWaiting(ctx context.Context, role domain.Role) error
	ListWaiting(ctx context.Context, input matching.ListWaitingInput) ([]domain.WaitingEntry, error)
}

// WaitingHandler serves the waiting pool endpoints.
type WaitingHandler struct {
	svc waitingService
	log *slog.Logger
}

// NewWaitingHandler creates a WaitingHandler.
func NewWaitingHandler(svc waitingService, logger *slog.Logger) *WaitingHandler {
	return &WaitingHandler{svc: svc, log: logger.With("handler", "waiting")}
}

type enqueueRequest struct {
	Role   string   `json:"role"`
	Topics []string `json:"topics"`
	Style  *string  `json:"style"`
}

// Enqueue handles POST /waiting.
func (h *WaitingHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var body enqueueRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	e, err := h.svc.Enqueue(r.Context(), matching.EnqueueInput{
		Role:   domain.Role(strings.ToUpper(body.Role)),
		Topics: body.Topics,
		Style:  stylePtr(body.Style),
	})
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWaitingResponse(e))
}

// Leave handles DELETE /waiting/{role}.
func (h *WaitingHandler) Leave(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(strings.ToUpper(r.PathValue("role")))
	if err := h.svc.CancelWaiting(r.Context(), role); err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /waiting?role=&topics=a,b&style=&limit=.
func (h *WaitingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	q := r.URL.Query()
	style := q.Get("style")

	es, err := h.svc.ListWaiting(r.Context(), matching.ListWaitingInput{
		Role:   domain.Role(strings.ToUpper(q.Get("role"))),
		Topics: splitCSV(q.Get("topics")),
		Style:  stylePtr(&style),
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWaitingList(es))
}

func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
