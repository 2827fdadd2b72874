package model

import "time"

// RawComment is the external representation of one inline or general PR comment.
// Immutable once fetched. Optional fields use zero values: an empty Path or a
// zero Line means the attribute was absent upstream.
type RawComment struct {
	ID           string
	AuthorLogin  string
	AuthorName   string
	Body         string
	CreatedAt    time.Time
	Path         string
	Line         int
	OriginalLine int
	DiffHunk     string
	InReplyToID  string
	CommitID     string
}

// IsReply reports whether the comment is part of a reply chain.
func (c RawComment) IsReply() bool {
	return c.InReplyToID != ""
}

// EffectiveLine returns Line when set, falling back to OriginalLine.
func (c RawComment) EffectiveLine() int {
	if c.Line != 0 {
		return c.Line
	}
	return c.OriginalLine
}

// CommentType defines the API shape a comment belongs to.
// The set is closed: every dispatch over CommentType lists all members.
type CommentType string

const (
	CommentTypeIssue             CommentType = "issue_comment"   // General PR discussion
	CommentTypeReview            CommentType = "review_comment"  // Inline code comment
	CommentTypeReviewReply       CommentType = "review_reply"    // Reply to inline comment
	CommentTypePullRequestReview CommentType = "pr_review"       // Overall PR review
	CommentTypePendingReview     CommentType = "pending_comment" // Pending inline comment
	CommentTypeSuggestion        CommentType = "suggestion"      // Code suggestion
)

// CommentMetadata is the classification of a RawComment for API dispatch.
// Computed on demand from a RawComment and its reply chain, never stored.
type CommentMetadata struct {
	Type             CommentType
	PRNumber         int
	CommentID        string
	Path             string
	Line             int
	CommitID         string
	InReplyTo        string
	RequiresCommitID bool
}
