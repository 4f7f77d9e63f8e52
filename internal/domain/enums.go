package domain

// Role is the side a profile takes in a pairing.
type Role string

const (
	RoleSpeaker  Role = "SPEAKER"
	RoleListener Role = "LISTENER"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleSpeaker, RoleListener:
		return true
	}
	return false
}

// Opposite returns the complementary role. It panics on an invalid role,
// which is a programming error: roles are validated at the service boundary.
func (r Role) Opposite() Role {
	switch r {
	case RoleSpeaker:
		return RoleListener
	case RoleListener:
		return RoleSpeaker
	}
	panic("domain: opposite of invalid role " + string(r))
}

// Strategy is the way a matching was produced.
type Strategy string

const (
	StrategyRandom     Strategy = "RANDOM"
	StrategyPreference Strategy = "PREFERENCE"
	StrategyManual     Strategy = "MANUAL"
)

func (s Strategy) String() string { return string(s) }

func (s Strategy) IsValid() bool {
	switch s {
	case StrategyRandom, StrategyPreference, StrategyManual:
		return true
	}
	return false
}

// MatchingStatus is the lifecycle state of a matching.
type MatchingStatus string

const (
	MatchingStatusRequested MatchingStatus = "REQUESTED"
	MatchingStatusAccepted  MatchingStatus = "ACCEPTED"
	MatchingStatusRejected  MatchingStatus = "REJECTED"
	MatchingStatusCanceled  MatchingStatus = "CANCELED"
	MatchingStatusCompleted MatchingStatus = "COMPLETED"
)

func (s MatchingStatus) String() string { return string(s) }

func (s MatchingStatus) IsValid() bool {
	switch s {
	case MatchingStatusRequested, MatchingStatusAccepted, MatchingStatusRejected,
		MatchingStatusCanceled, MatchingStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s MatchingStatus) IsTerminal() bool {
	switch s {
	case MatchingStatusRejected, MatchingStatusCanceled, MatchingStatusCompleted:
		return true
	}
	return false
}

// OpenMatchingStatuses are the statuses that hold a presence slot.
var OpenMatchingStatuses = []MatchingStatus{MatchingStatusRequested, MatchingStatusAccepted}

// CounselingStyle is the conversational style a profile prefers.
type CounselingStyle string

const (
	StyleEmpathy  CounselingStyle = "EMPATHY"
	StyleAdvice   CounselingStyle = "ADVICE"
	StyleDirect   CounselingStyle = "DIRECT"
	StyleListenIn CounselingStyle = "LISTEN_ONLY"
)

func (s CounselingStyle) String() string { return string(s) }

func (s CounselingStyle) IsValid() bool {
	switch s {
	case StyleEmpathy, StyleAdvice, StyleDirect, StyleListenIn:
		return true
	}
	return false
}

// EventType identifies a matching lifecycle event on the event channel.
type EventType string

const (
	EventMatchingRequested EventType = "MATCHING_REQUESTED"
	EventMatchingAccepted  EventType = "MATCHING_ACCEPTED"
	EventMatchingRejected  EventType = "MATCHING_REJECTED"
	EventMatchingCanceled  EventType = "MATCHING_CANCELED"
	EventMatchingCompleted EventType = "MATCHING_COMPLETED"
)

func (e EventType) String() string { return string(e) }

func (e EventType) IsValid() bool {
	switch e {
	case EventMatchingRequested, EventMatchingAccepted, EventMatchingRejected,
		EventMatchingCanceled, EventMatchingCompleted:
		return true
	}
	return false
}

// QuotaAction names a rate-limited user action.
type QuotaAction string

const (
	QuotaActionReject QuotaAction = "REJECT"
	QuotaActionCancel QuotaAction = "CANCEL"
)

func (a QuotaAction) String() string { return string(a) }

// UserRole represents the authorization level of a caller.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin:
		return true
	}
	return false
}

func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin
}
