package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/internal/service/matching"
)

type matchingService interface {
	RequestMatch(ctx context.Context, req matching.MatchRequest) (*matching.RequestResult, error)
	Accept(ctx context.Context, matchingID int64) (*domain.Matching, error)
	Reject(ctx context.Context, input matching.RejectInput) (*domain.Matching, error)
	Cancel(ctx context.Context, matchingID int64) (*domain.Matching, error)
	Complete(ctx context.Context, matchingID int64) (*domain.Matching, error)
	GetMatching(ctx context.Context, id int64) (*domain.Matching, error)
	ListMyMatchings(ctx context.Context, input matching.ListMyMatchingsInput) ([]domain.Matching, error)
}

// MatchingHandler serves the matching lifecycle endpoints.
type MatchingHandler struct {
	svc matchingService
	log *slog.Logger
}

// NewMatchingHandler creates a MatchingHandler.
func NewMatchingHandler(svc matchingService, logger *slog.Logger) *MatchingHandler {
	return &MatchingHandler{svc: svc, log: logger.With("handler", "matching")}
}

type requestMatchRequest struct {
	Strategy      string   `json:"strategy"`
	Role          string   `json:"role"`
	Topics        []string `json:"topics"`
	Style         *string  `json:"style"`
	CounterpartID int64    `json:"counterpartId"`
}

type requestMatchResponse struct {
	Matching *matchingResponse `json:"matching,omitempty"`
	Waiting  *waitingResponse  `json:"waiting,omitempty"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (req requestMatchRequest) toMatchRequest() (matching.MatchRequest, error) {
	role := domain.Role(req.Role)
	switch domain.Strategy(strings.ToUpper(req.Strategy)) {
	case domain.StrategyRandom:
		return matching.RandomRequest{Role: role}, nil
	case domain.StrategyPreference:
		return matching.PreferenceRequest{Role: role, Topics: req.Topics, Style: stylePtr(req.Style)}, nil
	case domain.StrategyManual:
		return matching.ManualRequest{Role: role, CounterpartID: req.CounterpartID, Topics: req.Topics}, nil
	}
	return nil, domain.NewValidationError("strategy", "must be RANDOM, PREFERENCE or MANUAL")
}

// Request handles POST /matchings. A new matching is 201; when no
// counterpart was found the caller is put in the pool and gets 202.
func (h *MatchingHandler) Request(w http.ResponseWriter, r *http.Request) {
	var body requestMatchRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	req, err := body.toMatchRequest()
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	res, err := h.svc.RequestMatch(r.Context(), req)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	if res.Matching != nil {
		m := toMatchingResponse(res.Matching)
		writeJSON(w, http.StatusCreated, requestMatchResponse{Matching: &m})
		return
	}
	var resp requestMatchResponse
	if res.Waiting != nil {
		e := toWaitingResponse(res.Waiting)
		resp.Waiting = &e
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// List handles GET /matchings?status=&limit=.
func (h *MatchingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	input := matching.ListMyMatchingsInput{Limit: limit}
	if v := r.URL.Query().Get("status"); v != "" {
		st := domain.MatchingStatus(strings.ToUpper(v))
		input.Status = &st
	}

	ms, err := h.svc.ListMyMatchings(r.Context(), input)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchingList(ms))
}

// Get handles GET /matchings/{id}.
func (h *MatchingHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, h.svc.GetMatching)
}

// Accept handles POST /matchings/{id}/accept.
func (h *MatchingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, h.svc.Accept)
}

// Cancel handles POST /matchings/{id}/cancel.
func (h *MatchingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, h.svc.Cancel)
}

// Complete handles POST /matchings/{id}/complete.
func (h *MatchingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, h.svc.Complete)
}

// Reject handles POST /matchings/{id}/reject with an optional reason.
func (h *MatchingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	var body rejectRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &body); err != nil {
			writeServiceError(h.log, w, r, err)
			return
		}
	}

	m, err := h.svc.Reject(r.Context(), matching.RejectInput{MatchingID: id, Reason: body.Reason})
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchingResponse(m))
}

func (h *MatchingHandler) withID(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (*domain.Matching, error)) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	m, err := fn(r.Context(), id)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchingResponse(m))
}
