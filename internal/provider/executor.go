package provider

import (
	"context"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/prtriage/internal/model"
)

var _ model.ActionApplier = (*Executor)(nil)

// Executor applies triaged actions against a code host. In dry-run mode
// every action is reported as successful without touching the API.
type Executor struct {
	provider model.PRProvider
	dryRun   bool
	log      logze.Logger
}

// NewExecutor creates an action executor.
func NewExecutor(p model.PRProvider, dryRun bool) *Executor {
	return &Executor{
		provider: p,
		dryRun:   dryRun,
		log:      logze.With("component", "executor"),
	}
}

// Apply executes each action in order and reports per-action outcomes.
// A failed action never stops the rest of the batch.
func (e *Executor) Apply(ctx context.Context, actions []model.Action) []model.ActionResult {
	results := make([]model.ActionResult, 0, len(actions))
	for _, action := range actions {
		if e.dryRun {
			e.log.Info("dry-run, skipping action", "type", action.Type, "value", action.Value)
			results = append(results, model.ActionResult{Action: action, Success: true, Detail: "dry-run"})
			continue
		}

		if err := e.apply(ctx, action); err != nil {
			e.log.Error("action failed", "type", action.Type, "error", err)
			results = append(results, model.ActionResult{Action: action, Success: false, Detail: err.Error()})
			continue
		}
		results = append(results, model.ActionResult{Action: action, Success: true})
	}
	return results
}

func (e *Executor) apply(ctx context.Context, action model.Action) error {
	meta := action.Metadata

	switch action.Type {
	case model.ActionComment:
		if meta.PR == nil {
			return errm.New("comment action without PR reference")
		}
		_, err := e.provider.CreateIssueComment(ctx, *meta.PR, action.Value)
		return err

	case model.ActionAddReviewComment:
		if meta.PR == nil {
			return errm.New("review comment action without PR reference")
		}
		if meta.InReplyTo != "" {
			_, err := e.provider.ReplyToReviewComment(ctx, *meta.PR, meta.InReplyTo, action.Value)
			return err
		}
		_, err := e.provider.CreateReviewComment(ctx, *meta.PR, action.Value, meta.Path, meta.Line, meta.CommitID)
		return err

	case model.ActionApplyLabel:
		if meta.PR == nil {
			return errm.New("label action without PR reference")
		}
		return e.provider.AddLabels(ctx, *meta.PR, []string{action.Value})

	case model.ActionRerunChecks:
		if meta.URL == "" {
			return errm.New("rerun action without a check url")
		}
		return e.provider.RerunCheck(ctx, meta.URL)

	case model.ActionSubmitReview:
		if meta.PR == nil || meta.CommentID == "" {
			return errm.New("submit review action without review reference")
		}
		state := model.ReviewState(meta.Context)
		if state == "" {
			state = model.ReviewStateCommented
		}
		return e.provider.SubmitPendingReview(ctx, *meta.PR, meta.CommentID, state, action.Value)

	default:
		return errm.New("unsupported action type: %s", action.Type)
	}
}
