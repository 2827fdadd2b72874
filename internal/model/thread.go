package model

import "time"

// ThreadParticipant is a per-actor aggregate within one conversation thread.
type ThreadParticipant struct {
	Login         string
	IsBot         bool
	IsSelf        bool
	CommentCount  int
	LastCommentAt time.Time
}

// ConversationThread groups a root inline comment with its full reply chain.
// Identity is the root comment's "path:line:id" tuple.
type ConversationThread struct {
	ThreadID      string
	Path          string
	Line          int
	Comments      []RawComment // chronological order
	Participants  []ThreadParticipant
	TotalComments int
	LastActivity  time.Time
	NeedsResponse bool

	// LastExternalCommentID is the newest comment not authored by the
	// authenticated actor; OwnLastResponseID is the newest one that is.
	// Either may be empty.
	LastExternalCommentID string
	OwnLastResponseID     string
}
