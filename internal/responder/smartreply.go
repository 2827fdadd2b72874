package responder

import (
	"context"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/prtriage/internal/classify"
	"github.com/maxbolgarin/prtriage/internal/model"
)

// SmartReply posts a reply to a comment, automatically picking the correct
// API comment type from the comment's structural attributes.
type SmartReply struct {
	applier    model.ActionApplier
	classifier *classify.CommentClassifier
	log        logze.Logger
}

// NewSmartReply creates a smart reply helper.
func NewSmartReply(applier model.ActionApplier, classifier *classify.CommentClassifier) *SmartReply {
	return &SmartReply{
		applier:    applier,
		classifier: classifier,
		log:        logze.With("component", "smart_reply"),
	}
}

// ReplyToComment classifies the target comment and dispatches the reply
// through the matching endpoint shape. Path, line and diffHunk are optional
// hints; when they indicate an inline thread the reply goes out as a review
// comment reply, otherwise as a general PR comment.
func (s *SmartReply) ReplyToComment(
	ctx context.Context,
	ref model.PullRequestRef,
	commentID, replyText string,
	path string, line int, diffHunk string,
) (model.ActionResult, error) {
	comment := model.RawComment{
		ID:          commentID,
		Path:        path,
		Line:        line,
		DiffHunk:    diffHunk,
		InReplyToID: commentID, // replying makes the target the parent
	}

	meta := s.classifier.Classify(comment, ref.Number)
	if errs := s.classifier.Validate(meta); len(errs) > 0 {
		return model.ActionResult{}, errm.New("invalid reply metadata: " + errs[0])
	}

	actionType := model.ActionComment
	if meta.Type == model.CommentTypeReviewReply {
		actionType = model.ActionAddReviewComment
	}
	action := model.Action{
		Type:  actionType,
		Value: replyText,
		Metadata: model.ActionMetadata{
			PR:        &ref,
			InReplyTo: commentID,
			Path:      meta.Path,
			Line:      meta.Line,
		},
	}

	results := s.applier.Apply(ctx, []model.Action{action})
	if len(results) == 0 {
		return model.ActionResult{Action: action, Detail: "no results returned"}, nil
	}
	return results[0], nil
}
