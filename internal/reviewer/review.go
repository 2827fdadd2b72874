package reviewer

import (
	"context"
	"fmt"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"

	"github.com/maxbolgarin/prtriage/internal/model"
)

// ReviewPR runs the complete review workflow for one pull request: fetch
// every data section, analyze conversation threads, derive suggested labels
// and merge everything into a prioritized action list with a summary.
// Any fetch failure short-circuits the whole call, there is no partial
// result.
func (r *Reviewer) ReviewPR(ctx context.Context, ref model.PullRequestRef) (*model.PRReviewResult, error) {
	log := r.log.WithFields(
		"owner", ref.Owner,
		"repo", ref.Repo,
		"pr", ref.Number,
	)
	timer := abstract.StartTimer()

	data, err := r.fetchPRData(ctx, ref)
	if err != nil {
		return nil, err
	}

	analysis := r.analyzeConversations(data)
	labels := r.deriveLabels(data, analysis)
	priorityActions := r.buildPriorityActions(ref, data, analysis, labels)
	summary := r.buildSummary(data, analysis, labels)

	log.Info("pull request review finished",
		"threads", len(analysis.Threads),
		"needing_response", analysis.ThreadsNeedingResponse,
		"actions", len(priorityActions),
		"status", summary.Status,
		"elapsed", timer.ElapsedTime().String(),
	)

	return &model.PRReviewResult{
		PRInfo:          data.Info,
		Conversation:    analysis,
		PriorityActions: priorityActions,
		Summary:         summary,
	}, nil
}

func (r *Reviewer) fetchPRData(ctx context.Context, ref model.PullRequestRef) (*model.PRData, error) {
	info, err := r.provider.GetPullRequest(ctx, ref)
	if err != nil {
		return nil, errm.Wrap(err, "get pull request")
	}

	reviews, err := r.provider.GetReviews(ctx, ref)
	if err != nil {
		return nil, errm.Wrap(err, "get reviews")
	}

	issueComments, err := r.provider.GetIssueComments(ctx, ref)
	if err != nil {
		return nil, errm.Wrap(err, "get issue comments")
	}

	inlineComments, err := r.provider.GetInlineComments(ctx, ref)
	if err != nil {
		return nil, errm.Wrap(err, "get inline comments")
	}

	pending, err := r.provider.GetPendingReviews(ctx, ref)
	if err != nil {
		return nil, errm.Wrap(err, "get pending reviews")
	}

	return &model.PRData{
		Info:           *info,
		Reviews:        reviews,
		IssueComments:  issueComments,
		InlineComments: inlineComments,
		PendingReviews: pending,
	}, nil
}

func (r *Reviewer) analyzeConversations(data *model.PRData) model.ConversationAnalysis {
	threadList := r.analyzer.Analyze(data.InlineComments)

	needing := 0
	for _, thread := range threadList {
		if thread.NeedsResponse {
			needing++
		}
	}

	return model.ConversationAnalysis{
		Threads:                threadList,
		Priority:               r.analyzer.Priority(threadList, r.cfg.PriorityLimit),
		TotalReviews:           len(data.Reviews),
		TotalInlineComments:    len(data.InlineComments),
		ThreadsNeedingResponse: needing,
	}
}

// deriveLabels suggests labels from conversation and review state. At most
// one review-state label is suggested, changes requested wins over approval.
func (r *Reviewer) deriveLabels(data *model.PRData, analysis model.ConversationAnalysis) []string {
	var labels []string

	if analysis.ThreadsNeedingResponse > 0 {
		labels = append(labels, "needs-response")
	}

	hasChangesRequested := false
	hasApproved := false
	for _, review := range data.Reviews {
		switch review.State {
		case model.ReviewStateChangesRequested:
			hasChangesRequested = true
		case model.ReviewStateApproved:
			hasApproved = true
		}
	}
	if hasChangesRequested {
		labels = append(labels, "needs-changes")
	} else if hasApproved {
		labels = append(labels, "approved")
	}

	return labels
}

// buildPriorityActions merges per-thread responses, pending review
// submissions and label suggestions in descending priority order.
func (r *Reviewer) buildPriorityActions(ref model.PullRequestRef, data *model.PRData, analysis model.ConversationAnalysis, labels []string) []model.PriorityAction {
	var actions []model.PriorityAction

	for _, thread := range analysis.Priority {
		participants := make([]string, 0, len(thread.Participants))
		for _, participant := range thread.Participants {
			participants = append(participants, participant.Login)
		}
		actions = append(actions, model.PriorityAction{
			Type:         model.PriorityRespondToComment,
			Priority:     model.PriorityHigh,
			CommentID:    thread.LastExternalCommentID,
			Path:         thread.Path,
			Line:         thread.Line,
			Participants: participants,
			Suggested: model.Action{
				Type: model.ActionComment,
				Metadata: model.ActionMetadata{
					PR:        &ref,
					InReplyTo: thread.LastExternalCommentID,
					ThreadID:  thread.ThreadID,
				},
			},
		})
	}

	if data.PendingReviews != nil && data.PendingReviews.Count > 0 {
		actions = append(actions, model.PriorityAction{
			Type:     model.PriorityPendingReviews,
			Priority: model.PriorityMedium,
			Count:    data.PendingReviews.Count,
		})
	}

	for _, label := range labels {
		actions = append(actions, model.PriorityAction{
			Type:     model.PriorityApplyLabel,
			Priority: model.PriorityLow,
			Label:    label,
			Suggested: model.Action{
				Type:     model.ActionApplyLabel,
				Value:    label,
				Metadata: model.ActionMetadata{PR: &ref},
			},
		})
	}

	return actions
}

func (r *Reviewer) buildSummary(data *model.PRData, analysis model.ConversationAnalysis, labels []string) model.ReviewSummary {
	pendingCount := 0
	if data.PendingReviews != nil {
		pendingCount = data.PendingReviews.Count
	}

	summary := model.ReviewSummary{
		PRNumber:               data.Info.Number,
		Title:                  data.Info.Title,
		State:                  data.Info.State,
		Author:                 data.Info.AuthorLogin,
		TotalReviews:           analysis.TotalReviews,
		TotalInlineComments:    analysis.TotalInlineComments,
		ConversationThreads:    len(analysis.Threads),
		ThreadsNeedingResponse: analysis.ThreadsNeedingResponse,
		PendingReviews:         pendingCount,
		SuggestedLabels:        labels,
	}

	switch {
	case analysis.ThreadsNeedingResponse > 0:
		summary.Status = model.StatusNeedsResponses
		summary.NextAction = fmt.Sprintf("Respond to %d conversation threads", analysis.ThreadsNeedingResponse)
	case pendingCount > 0:
		summary.Status = model.StatusHasPendingReviews
		summary.NextAction = fmt.Sprintf("Submit %d pending reviews", pendingCount)
	default:
		summary.Status = model.StatusUpToDate
		summary.NextAction = "No immediate actions needed"
	}

	return summary
}
