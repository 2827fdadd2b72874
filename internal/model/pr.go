package model

import "time"

// PullRequestInfo is the subset of PR attributes the automation reads.
type PullRequestInfo struct {
	Number      int
	Title       string
	State       string
	AuthorLogin string
	URL         string
	HeadSHA     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Review is one submitted pull request review.
type Review struct {
	ID          string
	State       ReviewState
	AuthorLogin string
	Body        string
	SubmittedAt time.Time
}

// PendingReview is a review that was started but not yet submitted.
type PendingReview struct {
	ID          string // GraphQL node id, needed for the submit mutation
	DatabaseID  int64
	State       ReviewState
	AuthorLogin string
	Body        string
	Comments    []RawComment
}

// PendingReviewSection holds pending reviews for a PR. A nil
// *PendingReviewSection means the section was not fetched, which is
// distinct from a fetched section with Count == 0.
type PendingReviewSection struct {
	Reviews     []PendingReview
	Count       int
	HasComments bool
}

// PRData aggregates everything fetched for one pull request.
type PRData struct {
	Info           PullRequestInfo
	Reviews        []Review
	IssueComments  []RawComment
	InlineComments []RawComment
	PendingReviews *PendingReviewSection
}

// ConversationAnalysis summarizes thread state for one PR.
type ConversationAnalysis struct {
	Threads                []ConversationThread
	Priority               []ConversationThread
	TotalReviews           int
	TotalInlineComments    int
	ThreadsNeedingResponse int
}

// ActionPriority orders suggested actions for the caller.
type ActionPriority string

const (
	PriorityHigh   ActionPriority = "high"
	PriorityMedium ActionPriority = "medium"
	PriorityLow    ActionPriority = "low"
)

// PriorityActionType tags entries in the prioritized action list.
type PriorityActionType string

const (
	PriorityRespondToComment PriorityActionType = "respond_to_comment"
	PriorityApplyLabel       PriorityActionType = "apply_label"
	PriorityPendingReviews   PriorityActionType = "pending_reviews_detected"
)

// PriorityAction is one prioritized suggestion produced by a full PR review.
// Only the fields relevant to its Type are set.
type PriorityAction struct {
	Type         PriorityActionType
	Priority     ActionPriority
	CommentID    string
	Path         string
	Line         int
	Participants []string
	Label        string
	Count        int
	Suggested    Action
}

// PRStatus is the overall conversational state of a pull request.
type PRStatus string

const (
	StatusNeedsResponses    PRStatus = "needs_responses"
	StatusHasPendingReviews PRStatus = "has_pending_reviews"
	StatusUpToDate          PRStatus = "up_to_date"
)

// ReviewSummary is the executive summary of a full PR review pass.
type ReviewSummary struct {
	PRNumber               int
	Title                  string
	State                  string
	Author                 string
	TotalReviews           int
	TotalInlineComments    int
	ConversationThreads    int
	ThreadsNeedingResponse int
	PendingReviews         int
	SuggestedLabels        []string
	Status                 PRStatus
	NextAction             string
}

// PRReviewResult is the result of the full review_pr workflow.
type PRReviewResult struct {
	PRInfo          PullRequestInfo
	Conversation    ConversationAnalysis
	PriorityActions []PriorityAction
	Summary         ReviewSummary
}
