package classify

import (
	"fmt"
	"strconv"

	"github.com/maxbolgarin/prtriage/internal/model"
)

// CommentClassifier derives the API shape for responding to a raw comment.
// It is stateless; every method is a pure function of its arguments.
type CommentClassifier struct{}

// NewCommentClassifier creates a comment classifier.
func NewCommentClassifier() *CommentClassifier {
	return &CommentClassifier{}
}

// Classify inspects a raw comment's structural attributes and returns the
// metadata needed to dispatch a response through the correct endpoint.
func (CommentClassifier) Classify(comment model.RawComment, prNumber int) model.CommentMetadata {
	hasPath := comment.Path != ""
	hasLine := comment.EffectiveLine() != 0
	hasDiffHunk := comment.DiffHunk != ""
	isReply := comment.IsReply()

	commentType := model.CommentTypeIssue
	if hasPath && hasLine && hasDiffHunk {
		if isReply {
			commentType = model.CommentTypeReviewReply
		} else {
			commentType = model.CommentTypeReview
		}
	}

	meta := model.CommentMetadata{
		Type:             commentType,
		PRNumber:         prNumber,
		CommentID:        comment.ID,
		Path:             comment.Path,
		Line:             comment.EffectiveLine(),
		CommitID:         comment.CommitID,
		RequiresCommitID: commentType == model.CommentTypeReview,
	}
	if isReply {
		meta.InReplyTo = comment.InReplyToID
	}
	return meta
}

// Endpoint returns the API path template for the comment type. Owner and
// repo stay as placeholders; the PR number is interpolated.
func (CommentClassifier) Endpoint(meta model.CommentMetadata) string {
	switch meta.Type {
	case model.CommentTypeReview, model.CommentTypeReviewReply:
		return fmt.Sprintf("/repos/{owner}/{repo}/pulls/%d/comments", meta.PRNumber)
	case model.CommentTypeIssue, model.CommentTypePullRequestReview,
		model.CommentTypePendingReview, model.CommentTypeSuggestion:
		return fmt.Sprintf("/repos/{owner}/{repo}/issues/%d/comments", meta.PRNumber)
	}
	return fmt.Sprintf("/repos/{owner}/{repo}/issues/%d/comments", meta.PRNumber)
}

// Payload builds the request body for posting a comment of the classified
// type. The commit sha for inline comments may be empty; it is auto-detected
// downstream.
func (CommentClassifier) Payload(meta model.CommentMetadata, body string) map[string]any {
	payload := map[string]any{"body": body}

	switch meta.Type {
	case model.CommentTypeReview:
		payload["path"] = meta.Path
		payload["line"] = meta.Line
		payload["commit_sha"] = meta.CommitID
	case model.CommentTypeReviewReply:
		if n, err := strconv.Atoi(meta.InReplyTo); err == nil {
			payload["in_reply_to"] = n
		}
	case model.CommentTypeIssue, model.CommentTypePullRequestReview,
		model.CommentTypePendingReview, model.CommentTypeSuggestion:
		// body only
	}
	return payload
}

// Validate returns advisory errors for metadata missing fields required by
// its comment type. A missing commit id is never an error. Callers must
// check the list before dispatch.
func (CommentClassifier) Validate(meta model.CommentMetadata) []string {
	var errors []string

	switch meta.Type {
	case model.CommentTypeReview:
		if meta.Path == "" {
			errors = append(errors, "path required for inline comments")
		}
		if meta.Line == 0 {
			errors = append(errors, "line required for inline comments")
		}
	case model.CommentTypeReviewReply:
		if meta.InReplyTo == "" {
			errors = append(errors, "in_reply_to required for comment replies")
		}
	case model.CommentTypeIssue, model.CommentTypePullRequestReview,
		model.CommentTypePendingReview, model.CommentTypeSuggestion:
		// nothing required
	}
	return errors
}
