package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// MatchingEvent is the payload published for every lifecycle transition.
type MatchingEvent struct {
	EventID           uuid.UUID `json:"eventId"`
	EventType         EventType `json:"eventType"`
	AggregateID       int64     `json:"aggregateId"`
	SpeakerProfileID  int64     `json:"speakerProfileId"`
	ListenerProfileID int64     `json:"listenerProfileId"`
	InitiatorRole     Role      `json:"initiatorRole"`
	OccurredAt        time.Time `json:"occurredAt"`
}

// NewMatchingEvent builds the event for m with a fresh id.
func NewMatchingEvent(eventType EventType, m *Matching, now time.Time) MatchingEvent {
	return MatchingEvent{
		EventID:           uuid.New(),
		EventType:         eventType,
		AggregateID:       m.ID,
		SpeakerProfileID:  m.SpeakerProfileID,
		ListenerProfileID: m.ListenerProfileID,
		InitiatorRole:     m.InitiatorRole,
		OccurredAt:        now,
	}
}

// Key is the partition key: all events of one matching share a partition.
func (e MatchingEvent) Key() string {
	return strconv.FormatInt(e.AggregateID, 10)
}

func (e MatchingEvent) initiatorID() int64 {
	if e.InitiatorRole == RoleListener {
		return e.ListenerProfileID
	}
	return e.SpeakerProfileID
}

func (e MatchingEvent) counterpartID() int64 {
	if e.InitiatorRole == RoleListener {
		return e.SpeakerProfileID
	}
	return e.ListenerProfileID
}

// Recipients returns the profiles to notify about this event.
func (e MatchingEvent) Recipients() []int64 {
	switch e.EventType {
	case EventMatchingRequested, EventMatchingCanceled:
		return []int64{e.counterpartID()}
	case EventMatchingAccepted, EventMatchingRejected:
		return []int64{e.initiatorID()}
	case EventMatchingCompleted:
		return []int64{e.SpeakerProfileID, e.ListenerProfileID}
	}
	return nil
}

// Notifications expands the event into one notification per recipient.
func (e MatchingEvent) Notifications() []Notification {
	recipients := e.Recipients()
	out := make([]Notification, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, Notification{
			RecipientID: r,
			MatchingID:  e.AggregateID,
			Kind:        e.EventType,
			EventID:     e.EventID,
		})
	}
	return out
}

// Notification is what the notification subsystem receives.
type Notification struct {
	RecipientID int64     `json:"recipientId"`
	MatchingID  int64     `json:"matchingId"`
	Kind        EventType `json:"kind"`
	EventID     uuid.UUID `json:"eventId"`
}

// Key partitions notifications by recipient.
func (n Notification) Key() string {
	return strconv.FormatInt(n.RecipientID, 10)
}
