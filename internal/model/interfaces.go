package model

import (
	"context"
)

// PRProvider defines the operations the automation needs from the code host.
type PRProvider interface {
	// Webhook handling
	ValidateWebhook(payload []byte, signature string) error
	ParseWebhookEvent(eventType string, payload []byte) (Event, error)

	// Read operations
	GetPullRequest(ctx context.Context, ref PullRequestRef) (*PullRequestInfo, error)
	GetReviews(ctx context.Context, ref PullRequestRef) ([]Review, error)
	GetIssueComments(ctx context.Context, ref PullRequestRef) ([]RawComment, error)
	GetInlineComments(ctx context.Context, ref PullRequestRef) ([]RawComment, error)
	GetPendingReviews(ctx context.Context, ref PullRequestRef) (*PendingReviewSection, error)
	GetCurrentUser(ctx context.Context) (*User, error)

	// Write operations
	CreateIssueComment(ctx context.Context, ref PullRequestRef, body string) (string, error)
	CreateReviewComment(ctx context.Context, ref PullRequestRef, body, path string, line int, commitID string) (string, error)
	ReplyToReviewComment(ctx context.Context, ref PullRequestRef, inReplyTo, body string) (string, error)
	AddLabels(ctx context.Context, ref PullRequestRef, labels []string) error
	SubmitPendingReview(ctx context.Context, ref PullRequestRef, reviewID string, event ReviewState, body string) error
	RerunCheck(ctx context.Context, url string) error
}

// ActionApplier applies triaged actions, honoring dry-run mode.
type ActionApplier interface {
	Apply(ctx context.Context, actions []Action) []ActionResult
}

// ThreadStore persists generated thread ids keyed by source comment id.
type ThreadStore interface {
	MapThread(ctx context.Context, commentID, file string, line int, commitID string) (string, error)
	LookupThread(ctx context.Context, commentID string) (string, error)
	Health(ctx context.Context) error
}
