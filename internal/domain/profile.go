package domain

import "time"

// Profile is the slice of a user profile the matching engine reads and
// updates. Profile management itself lives elsewhere.
type Profile struct {
	ID              int64
	Nickname        string
	CounselingCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ChatRoom links an accepted matching to the room the chat subsystem opened.
type ChatRoom struct {
	ID         string
	MatchingID int64
	CreatedAt  time.Time
}
