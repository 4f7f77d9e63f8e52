package rest

import (
	"time"

	"github.com/heartmarshall/hearme-backend/internal/domain"
)

type matchingResponse struct {
	ID                int64      `json:"id"`
	SpeakerProfileID  int64      `json:"speakerProfileId"`
	ListenerProfileID int64      `json:"listenerProfileId"`
	Strategy          string     `json:"strategy"`
	InitiatorRole     string     `json:"initiatorRole"`
	RequestedTopics   []string   `json:"requestedTopics"`
	Status            string     `json:"status"`
	RejectReason      *string    `json:"rejectReason,omitempty"`
	ChatRoomID        *string    `json:"chatRoomId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	MatchedAt         *time.Time `json:"matchedAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

func toMatchingResponse(m *domain.Matching) matchingResponse {
	topics := m.RequestedTopics
	if topics == nil {
		topics = []string{}
	}
	return matchingResponse{
		ID:                m.ID,
		SpeakerProfileID:  m.SpeakerProfileID,
		ListenerProfileID: m.ListenerProfileID,
		Strategy:          string(m.Strategy),
		InitiatorRole:     string(m.InitiatorRole),
		RequestedTopics:   topics,
		Status:            string(m.Status),
		RejectReason:      m.RejectReason,
		ChatRoomID:        m.ChatRoomID,
		CreatedAt:         m.CreatedAt,
		MatchedAt:         m.MatchedAt,
		CompletedAt:       m.CompletedAt,
	}
}

func toMatchingList(ms []domain.Matching) []matchingResponse {
	out := make([]matchingResponse, len(ms))
	for i := range ms {
		out[i] = toMatchingResponse(&ms[i])
	}
	return out
}

type waitingResponse struct {
	ID         int64     `json:"id"`
	ProfileID  int64     `json:"profileId"`
	Role       string    `json:"role"`
	Topics     []string  `json:"topics"`
	Style      *string   `json:"style,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

func toWaitingResponse(e *domain.WaitingEntry) waitingResponse {
	resp := waitingResponse{
		ID:         e.ID,
		ProfileID:  e.ProfileID,
		Role:       string(e.Role),
		Topics:     e.Topics,
		EnqueuedAt: e.EnqueuedAt,
	}
	if resp.Topics == nil {
		resp.Topics = []string{}
	}
	if e.Style != nil {
		s := string(*e.Style)
		resp.Style = &s
	}
	return resp
}

func toWaitingList(es []domain.WaitingEntry) []waitingResponse {
	out := make([]waitingResponse, len(es))
	for i := range es {
		out[i] = toWaitingResponse(&es[i])
	}
	return out
}

func stylePtr(s *string) *domain.CounselingStyle {
	if s == nil || *s == "" {
		return nil
	}
	cs := domain.CounselingStyle(*s)
	return &cs
}
