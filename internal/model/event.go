package model

// PullRequestRef identifies a pull request across the API surface.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

// ReviewState is the submitted state of a pull request review.
type ReviewState string

const (
	ReviewStateApproved         ReviewState = "APPROVED"
	ReviewStateChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewStateCommented        ReviewState = "COMMENTED"
	ReviewStatePending          ReviewState = "PENDING"
)

// StatusState is the outcome of a commit status or check.
type StatusState string

const (
	StatusStateSuccess StatusState = "success"
	StatusStateFailure StatusState = "failure"
	StatusStatePending StatusState = "pending"
)

// Event is the closed union of triageable PR events. Only ReviewEvent,
// CommentEvent and StatusEvent implement it; dispatch with a type switch
// listing all three.
type Event interface {
	Base() EventBase
	isEvent()
}

// EventBase carries the fields common to every event kind.
type EventBase struct {
	PR         PullRequestRef
	ActorLogin string
	ActorName  string
	EventID    string
	DeliveryID string
}

func (e EventBase) Base() EventBase { return e }

// ReviewEvent is a submitted pull request review.
type ReviewEvent struct {
	EventBase
	State ReviewState
	Body  string
}

func (ReviewEvent) isEvent() {}

// CommentEvent is a new issue or review comment on a pull request.
type CommentEvent struct {
	EventBase
	CommentID string
	Body      string
	Path      string
	Line      int
	InReplyTo string
}

func (CommentEvent) isEvent() {}

// StatusEvent is a commit status change on the PR head.
type StatusEvent struct {
	EventBase
	State     StatusState
	Context   string
	TargetURL string
}

func (StatusEvent) isEvent() {}
