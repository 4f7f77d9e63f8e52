package domain

import (
	"fmt"
	"time"
)

// Matching is one pairing attempt between a speaker and a listener.
type Matching struct {
	ID                int64
	SpeakerProfileID  int64
	ListenerProfileID int64
	Strategy          Strategy
	InitiatorRole     Role
	RequestedTopics   []string
	Status            MatchingStatus
	RejectReason      *string
	ChatRoomID        *string
	CreatedAt         time.Time
	MatchedAt         *time.Time
	CompletedAt       *time.Time
	UpdatedAt         time.Time
}

// ProfileFor returns the profile holding the given role in the pairing.
func (m *Matching) ProfileFor(role Role) int64 {
	if role == RoleSpeaker {
		return m.SpeakerProfileID
	}
	return m.ListenerProfileID
}

// InitiatorID is the profile that created the request.
func (m *Matching) InitiatorID() int64 {
	return m.ProfileFor(m.InitiatorRole)
}

// CounterpartID is the profile the request was addressed to.
func (m *Matching) CounterpartID() int64 {
	return m.ProfileFor(m.InitiatorRole.Opposite())
}

// IsParty reports whether profileID is the speaker or the listener.
func (m *Matching) IsParty(profileID int64) bool {
	return profileID == m.SpeakerProfileID || profileID == m.ListenerProfileID
}

// Validate checks the structural invariants of a new matching.
func (m *Matching) Validate() error {
	var errs []FieldError
	if m.SpeakerProfileID <= 0 {
		errs = append(errs, FieldError{Field: "speaker_profile_id", Message: "required"})
	}
	if m.ListenerProfileID <= 0 {
		errs = append(errs, FieldError{Field: "listener_profile_id", Message: "required"})
	}
	if m.SpeakerProfileID == m.ListenerProfileID && m.SpeakerProfileID > 0 {
		errs = append(errs, FieldError{Field: "listener_profile_id", Message: "must differ from speaker"})
	}
	if !m.Strategy.IsValid() {
		errs = append(errs, FieldError{Field: "strategy", Message: "invalid"})
	}
	if !m.InitiatorRole.IsValid() {
		errs = append(errs, FieldError{Field: "initiator_role", Message: "invalid"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Transition is a named state change of a Matching.
type Transition string

const (
	TransitionAccept   Transition = "accept"
	TransitionReject   Transition = "reject"
	TransitionCancel   Transition = "cancel"
	TransitionComplete Transition = "complete"
	// TransitionSystemReject is a rejection issued by the engine itself
	// (superseded requests, admin voids). It skips actor checks and quota.
	TransitionSystemReject Transition = "system_reject"
)

type actorRule int

const (
	actorCounterpart actorRule = iota
	actorInitiator
	actorEitherParty
	actorSystem
)

type transitionRule struct {
	from  []MatchingStatus
	to    MatchingStatus
	event EventType
	actor actorRule
}

var transitionRules = map[Transition]transitionRule{
	TransitionAccept: {
		from:  []MatchingStatus{MatchingStatusRequested},
		to:    MatchingStatusAccepted,
		event: EventMatchingAccepted,
		actor: actorCounterpart,
	},
	TransitionReject: {
		from:  []MatchingStatus{MatchingStatusRequested},
		to:    MatchingStatusRejected,
		event: EventMatchingRejected,
		actor: actorCounterpart,
	},
	TransitionCancel: {
		from:  []MatchingStatus{MatchingStatusRequested, MatchingStatusAccepted},
		to:    MatchingStatusCanceled,
		event: EventMatchingCanceled,
		actor: actorInitiator,
	},
	TransitionComplete: {
		from:  []MatchingStatus{MatchingStatusAccepted},
		to:    MatchingStatusCompleted,
		event: EventMatchingCompleted,
		actor: actorEitherParty,
	},
	TransitionSystemReject: {
		from:  []MatchingStatus{MatchingStatusRequested},
		to:    MatchingStatusRejected,
		event: EventMatchingRejected,
		actor: actorSystem,
	},
}

func (t Transition) rule() transitionRule {
	r, ok := transitionRules[t]
	if !ok {
		panic(fmt.Sprintf("domain: unknown transition %q", string(t)))
	}
	return r
}

func (t Transition) String() string { return string(t) }

// Sources returns the statuses the transition may start from.
func (t Transition) Sources() []MatchingStatus {
	src := t.rule().from
	out := make([]MatchingStatus, len(src))
	copy(out, src)
	return out
}

func (t Transition) Target() MatchingStatus { return t.rule().to }

func (t Transition) Event() EventType { return t.rule().event }

// Authorize checks that actorID may perform t on m.
func (m *Matching) Authorize(t Transition, actorID int64) error {
	switch t.rule().actor {
	case actorCounterpart:
		if actorID == m.CounterpartID() {
			return nil
		}
	case actorInitiator:
		if actorID == m.InitiatorID() {
			return nil
		}
	case actorEitherParty:
		if m.IsParty(actorID) {
			return nil
		}
	case actorSystem:
		return nil
	}
	return fmt.Errorf("%s matching %d by profile %d: %w", t, m.ID, actorID, ErrForbidden)
}

// CanTransition checks that m is in a source status of t.
func (m *Matching) CanTransition(t Transition) error {
	for _, s := range t.rule().from {
		if m.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%s matching %d in status %s: %w", t, m.ID, m.Status, ErrInvalidStatus)
}

// Apply performs t on m in memory after both checks pass. On error m is
// unchanged.
func (m *Matching) Apply(t Transition, actorID int64, now time.Time) error {
	if err := m.Authorize(t, actorID); err != nil {
		return err
	}
	if err := m.CanTransition(t); err != nil {
		return err
	}
	m.Status = t.Target()
	m.UpdatedAt = now
	switch m.Status {
	case MatchingStatusAccepted:
		m.MatchedAt = &now
	case MatchingStatusCompleted:
		m.CompletedAt = &now
	}
	return nil
}

// MatchingFilter narrows ListMatchings queries.
type MatchingFilter struct {
	ProfileID int64
	Status    *MatchingStatus
	Limit     int
}
