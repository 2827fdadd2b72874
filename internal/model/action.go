package model

// ActionType enumerates side effects the automation may request.
type ActionType string

const (
	ActionApplyLabel           ActionType = "apply_label"
	ActionRemoveLabel          ActionType = "remove_label"
	ActionAssign               ActionType = "assign"
	ActionUnassign             ActionType = "unassign"
	ActionRequestReview        ActionType = "request_review"
	ActionComment              ActionType = "comment"
	ActionRerunChecks          ActionType = "rerun_checks"
	ActionOpenIssue            ActionType = "open_issue"
	ActionResolveThread        ActionType = "resolve_thread"
	ActionSubmitReview         ActionType = "submit_review"
	ActionDismissReview        ActionType = "dismiss_review"
	ActionAddReviewComment     ActionType = "add_review_comment"
	ActionReplyToPendingReview ActionType = "reply_to_pending_review"
)

// ActionMetadata carries the targeting context for an action.
// PR may be nil when the caller relies on downstream context injection.
type ActionMetadata struct {
	PR        *PullRequestRef
	EventID   string
	CommentID string
	InReplyTo string
	Path      string
	Line      int
	CommitID  string
	ThreadID  string
	Context   string // check context for rerun actions, review event for submit actions
	URL       string
}

// Action is a requested side effect. Never mutated after creation, except
// that a missing PR reference may be filled in before execution.
type Action struct {
	Type     ActionType
	Value    string
	Metadata ActionMetadata
}

// ActionResult reports the outcome of applying a single action.
type ActionResult struct {
	Action  Action
	Success bool
	Detail  string
}

// TriagedActions is the decision set produced for one event.
type TriagedActions struct {
	Actions     []Action
	Labels      []string
	Assignments []string
}
