package reviewer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/prtriage/internal/classify"
	"github.com/maxbolgarin/prtriage/internal/model"
	"github.com/maxbolgarin/prtriage/internal/threads"
	"github.com/maxbolgarin/prtriage/internal/triage"
)

const selfLogin = "review-bot"

type fakeProvider struct {
	info     model.PullRequestInfo
	reviews  []model.Review
	inline   []model.RawComment
	pending  *model.PendingReviewSection
	failWith error
}

func (f *fakeProvider) ValidateWebhook(payload []byte, signature string) error { return nil }
func (f *fakeProvider) ParseWebhookEvent(eventType string, payload []byte) (model.Event, error) {
	return nil, errm.New("not implemented")
}
func (f *fakeProvider) GetPullRequest(ctx context.Context, ref model.PullRequestRef) (*model.PullRequestInfo, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	info := f.info
	return &info, nil
}
func (f *fakeProvider) GetReviews(ctx context.Context, ref model.PullRequestRef) ([]model.Review, error) {
	return f.reviews, nil
}
func (f *fakeProvider) GetIssueComments(ctx context.Context, ref model.PullRequestRef) ([]model.RawComment, error) {
	return nil, nil
}
func (f *fakeProvider) GetInlineComments(ctx context.Context, ref model.PullRequestRef) ([]model.RawComment, error) {
	return f.inline, nil
}
func (f *fakeProvider) GetPendingReviews(ctx context.Context, ref model.PullRequestRef) (*model.PendingReviewSection, error) {
	if f.pending == nil {
		return &model.PendingReviewSection{}, nil
	}
	return f.pending, nil
}
func (f *fakeProvider) GetCurrentUser(ctx context.Context) (*model.User, error) {
	return &model.User{Username: selfLogin}, nil
}
func (f *fakeProvider) CreateIssueComment(ctx context.Context, ref model.PullRequestRef, body string) (string, error) {
	return "1", nil
}
func (f *fakeProvider) CreateReviewComment(ctx context.Context, ref model.PullRequestRef, body, path string, line int, commitID string) (string, error) {
	return "2", nil
}
func (f *fakeProvider) ReplyToReviewComment(ctx context.Context, ref model.PullRequestRef, inReplyTo, body string) (string, error) {
	return "3", nil
}
func (f *fakeProvider) AddLabels(ctx context.Context, ref model.PullRequestRef, labels []string) error {
	return nil
}
func (f *fakeProvider) SubmitPendingReview(ctx context.Context, ref model.PullRequestRef, reviewID string, event model.ReviewState, body string) error {
	return nil
}
func (f *fakeProvider) RerunCheck(ctx context.Context, url string) error { return nil }

type recordingApplier struct {
	actions []model.Action
	done    chan struct{}
}

func (a *recordingApplier) Apply(ctx context.Context, actions []model.Action) []model.ActionResult {
	a.actions = append(a.actions, actions...)
	results := make([]model.ActionResult, 0, len(actions))
	for _, action := range actions {
		results = append(results, model.ActionResult{Action: action, Success: true})
	}
	if a.done != nil {
		close(a.done)
	}
	return results
}

func newReviewer(t *testing.T, provider model.PRProvider, applier model.ActionApplier) *Reviewer {
	t.Helper()

	classifier, err := classify.NewActorClassifier(classify.ActorConfig{NoCache: true})
	require.NoError(t, err)

	r, err := New(Config{}, provider, threads.NewAnalyzer(nil, selfLogin), triage.NewEngine(classifier, nil), applier)
	require.NoError(t, err)
	t.Cleanup(r.Stop)
	return r
}

func testInfo() model.PullRequestInfo {
	return model.PullRequestInfo{Number: 7, Title: "Add retries", State: "open", AuthorLogin: selfLogin}
}

func inlineAt(id, author string, minute int, reply string) model.RawComment {
	return model.RawComment{
		ID:          id,
		AuthorLogin: author,
		Body:        "comment " + id,
		CreatedAt:   time.Date(2026, 8, 1, 12, minute, 0, 0, time.UTC),
		Path:        "internal/server/server.go",
		Line:        10,
		InReplyToID: reply,
	}
}

func TestReviewPR_NeedsResponses(t *testing.T) {
	provider := &fakeProvider{
		info: testInfo(),
		inline: []model.RawComment{
			inlineAt("a", "alice", 0, ""),
			inlineAt("b", "alice", 1, "a"),
		},
	}
	r := newReviewer(t, provider, &recordingApplier{})

	result, err := r.ReviewPR(context.Background(), model.PullRequestRef{Owner: "octo", Repo: "demo", Number: 7})
	require.NoError(t, err)

	assert.Equal(t, model.StatusNeedsResponses, result.Summary.Status)
	assert.Equal(t, "Respond to 1 conversation threads", result.Summary.NextAction)
	assert.Equal(t, 1, result.Summary.ThreadsNeedingResponse)
	assert.Contains(t, result.Summary.SuggestedLabels, "needs-response")

	require.NotEmpty(t, result.PriorityActions)
	first := result.PriorityActions[0]
	assert.Equal(t, model.PriorityRespondToComment, first.Type)
	assert.Equal(t, model.PriorityHigh, first.Priority)
	assert.Equal(t, "b", first.CommentID)
	assert.Equal(t, []string{"alice"}, first.Participants)
	assert.Equal(t, model.ActionComment, first.Suggested.Type)
	assert.Equal(t, "b", first.Suggested.Metadata.InReplyTo)
}

func TestReviewPR_HasPendingReviews(t *testing.T) {
	provider := &fakeProvider{
		info: testInfo(),
		pending: &model.PendingReviewSection{
			Reviews: []model.PendingReview{{ID: "PRR_1", State: model.ReviewStatePending}},
			Count:   1,
		},
	}
	r := newReviewer(t, provider, &recordingApplier{})

	result, err := r.ReviewPR(context.Background(), model.PullRequestRef{Owner: "octo", Repo: "demo", Number: 7})
	require.NoError(t, err)

	assert.Equal(t, model.StatusHasPendingReviews, result.Summary.Status)
	assert.Equal(t, "Submit 1 pending reviews", result.Summary.NextAction)

	require.Len(t, result.PriorityActions, 1)
	assert.Equal(t, model.PriorityPendingReviews, result.PriorityActions[0].Type)
	assert.Equal(t, model.PriorityMedium, result.PriorityActions[0].Priority)
	assert.Equal(t, 1, result.PriorityActions[0].Count)
}

func TestReviewPR_UpToDate(t *testing.T) {
	provider := &fakeProvider{info: testInfo()}
	r := newReviewer(t, provider, &recordingApplier{})

	result, err := r.ReviewPR(context.Background(), model.PullRequestRef{Owner: "octo", Repo: "demo", Number: 7})
	require.NoError(t, err)

	assert.Equal(t, model.StatusUpToDate, result.Summary.Status)
	assert.Equal(t, "No immediate actions needed", result.Summary.NextAction)
	assert.Empty(t, result.PriorityActions)
	assert.Empty(t, result.Summary.SuggestedLabels)
}

func TestReviewPR_PriorityOrdering(t *testing.T) {
	provider := &fakeProvider{
		info:    testInfo(),
		reviews: []model.Review{{ID: "9", State: model.ReviewStateChangesRequested, AuthorLogin: "alice"}},
		inline:  []model.RawComment{inlineAt("a", "alice", 0, "")},
		pending: &model.PendingReviewSection{
			Reviews: []model.PendingReview{{ID: "PRR_1", State: model.ReviewStatePending}},
			Count:   1,
		},
	}
	r := newReviewer(t, provider, &recordingApplier{})

	result, err := r.ReviewPR(context.Background(), model.PullRequestRef{Owner: "octo", Repo: "demo", Number: 7})
	require.NoError(t, err)

	var priorities []model.ActionPriority
	for _, action := range result.PriorityActions {
		priorities = append(priorities, action.Priority)
	}
	assert.Equal(t, []model.ActionPriority{
		model.PriorityHigh,
		model.PriorityMedium,
		model.PriorityLow,
		model.PriorityLow,
	}, priorities)

	assert.Equal(t, []string{"needs-response", "needs-changes"}, result.Summary.SuggestedLabels)
}

func TestReviewPR_ChangesRequestedWinsOverApproved(t *testing.T) {
	provider := &fakeProvider{
		info: testInfo(),
		reviews: []model.Review{
			{ID: "1", State: model.ReviewStateApproved, AuthorLogin: "bob"},
			{ID: "2", State: model.ReviewStateChangesRequested, AuthorLogin: "alice"},
		},
	}
	r := newReviewer(t, provider, &recordingApplier{})

	result, err := r.ReviewPR(context.Background(), model.PullRequestRef{Owner: "octo", Repo: "demo", Number: 7})
	require.NoError(t, err)

	assert.Equal(t, []string{"needs-changes"}, result.Summary.SuggestedLabels)
	assert.NotContains(t, result.Summary.SuggestedLabels, "approved")
}

func TestReviewPR_FetchErrorShortCircuits(t *testing.T) {
	provider := &fakeProvider{failWith: errm.New("boom")}
	r := newReviewer(t, provider, &recordingApplier{})

	_, err := r.ReviewPR(context.Background(), model.PullRequestRef{Owner: "octo", Repo: "demo", Number: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get pull request")
}

func TestHandleEvent_AppliesLabelActions(t *testing.T) {
	applier := &recordingApplier{done: make(chan struct{})}
	r := newReviewer(t, &fakeProvider{info: testInfo()}, applier)

	err := r.HandleEvent(context.Background(), model.ReviewEvent{
		EventBase: model.EventBase{
			PR:         model.PullRequestRef{Owner: "octo", Repo: "demo", Number: 7},
			ActorLogin: "alice",
			EventID:    "review-55",
		},
		State: model.ReviewStateChangesRequested,
	})
	require.NoError(t, err)

	select {
	case <-applier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("actions were not applied")
	}

	var labels []string
	for _, action := range applier.actions {
		if action.Type == model.ActionApplyLabel {
			labels = append(labels, action.Value)
			assert.Equal(t, 7, action.Metadata.PR.Number)
		}
	}
	assert.Contains(t, labels, "needs-changes")
}

func TestHandleEvent_StatusEventSkipsLabels(t *testing.T) {
	applier := &recordingApplier{done: make(chan struct{})}
	r := newReviewer(t, &fakeProvider{info: testInfo()}, applier)

	err := r.HandleEvent(context.Background(), model.StatusEvent{
		EventBase: model.EventBase{
			PR:         model.PullRequestRef{Owner: "octo", Repo: "demo"},
			ActorLogin: "ci-bot",
			EventID:    "status-400",
		},
		State:     model.StatusStateFailure,
		Context:   "ci/tests",
		TargetURL: "https://ci.example.com/run/9",
	})
	require.NoError(t, err)

	select {
	case <-applier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("actions were not applied")
	}

	for _, action := range applier.actions {
		assert.NotEqual(t, model.ActionApplyLabel, action.Type)
	}
}
