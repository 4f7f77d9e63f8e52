package domain

import "time"

// WaitingEntry records that a profile is available to be matched in a role.
// Entries are deactivated, never deleted.
type WaitingEntry struct {
	ID            int64
	ProfileID     int64
	Role          Role
	Topics        []string
	Style         *CounselingStyle
	Active        bool
	EnqueuedAt    time.Time
	UpdatedAt     time.Time
	DeactivatedAt *time.Time
}

// Matches reports whether the entry satisfies a candidate filter: at least
// one shared topic when topics is non-empty, and the same style when style
// is given.
func (e *WaitingEntry) Matches(topics []string, style *CounselingStyle) bool {
	if len(topics) > 0 && !TopicsOverlap(e.Topics, topics) {
		return false
	}
	if style != nil && (e.Style == nil || *e.Style != *style) {
		return false
	}
	return true
}

// WaitingFilter selects active waiters of one role, oldest first.
type WaitingFilter struct {
	Role   Role
	Topics []string
	Style  *CounselingStyle
	Limit  int
}
