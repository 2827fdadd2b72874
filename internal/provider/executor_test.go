package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/prtriage/internal/model"
)

type call struct {
	method string
	value  string
}

type fakeProvider struct {
	calls   []call
	failAll bool
}

func (f *fakeProvider) record(method, value string) error {
	f.calls = append(f.calls, call{method: method, value: value})
	if f.failAll {
		return errm.New("api failure")
	}
	return nil
}

func (f *fakeProvider) ValidateWebhook(payload []byte, signature string) error { return nil }
func (f *fakeProvider) ParseWebhookEvent(eventType string, payload []byte) (model.Event, error) {
	return nil, errm.New("not implemented")
}
func (f *fakeProvider) GetPullRequest(ctx context.Context, ref model.PullRequestRef) (*model.PullRequestInfo, error) {
	return &model.PullRequestInfo{Number: ref.Number}, nil
}
func (f *fakeProvider) GetReviews(ctx context.Context, ref model.PullRequestRef) ([]model.Review, error) {
	return nil, nil
}
func (f *fakeProvider) GetIssueComments(ctx context.Context, ref model.PullRequestRef) ([]model.RawComment, error) {
	return nil, nil
}
func (f *fakeProvider) GetInlineComments(ctx context.Context, ref model.PullRequestRef) ([]model.RawComment, error) {
	return nil, nil
}
func (f *fakeProvider) GetPendingReviews(ctx context.Context, ref model.PullRequestRef) (*model.PendingReviewSection, error) {
	return &model.PendingReviewSection{}, nil
}
func (f *fakeProvider) GetCurrentUser(ctx context.Context) (*model.User, error) {
	return &model.User{Username: "review-bot"}, nil
}
func (f *fakeProvider) CreateIssueComment(ctx context.Context, ref model.PullRequestRef, body string) (string, error) {
	return "1", f.record("CreateIssueComment", body)
}
func (f *fakeProvider) CreateReviewComment(ctx context.Context, ref model.PullRequestRef, body, path string, line int, commitID string) (string, error) {
	return "2", f.record("CreateReviewComment", body)
}
func (f *fakeProvider) ReplyToReviewComment(ctx context.Context, ref model.PullRequestRef, inReplyTo, body string) (string, error) {
	return "3", f.record("ReplyToReviewComment", body)
}
func (f *fakeProvider) AddLabels(ctx context.Context, ref model.PullRequestRef, labels []string) error {
	return f.record("AddLabels", labels[0])
}
func (f *fakeProvider) SubmitPendingReview(ctx context.Context, ref model.PullRequestRef, reviewID string, event model.ReviewState, body string) error {
	return f.record("SubmitPendingReview", string(event))
}
func (f *fakeProvider) RerunCheck(ctx context.Context, url string) error {
	return f.record("RerunCheck", url)
}

func ref() *model.PullRequestRef {
	return &model.PullRequestRef{Owner: "octo", Repo: "demo", Number: 7}
}

func TestExecutor_DryRun(t *testing.T) {
	fake := &fakeProvider{}
	e := NewExecutor(fake, true)

	results := e.Apply(context.Background(), []model.Action{
		{Type: model.ActionComment, Value: "hello", Metadata: model.ActionMetadata{PR: ref()}},
		{Type: model.ActionApplyLabel, Value: "approved", Metadata: model.ActionMetadata{PR: ref()}},
	})

	require.Len(t, results, 2)
	for _, result := range results {
		assert.True(t, result.Success)
		assert.Equal(t, "dry-run", result.Detail)
	}
	assert.Empty(t, fake.calls, "dry-run must not touch the API")
}

func TestExecutor_Dispatch(t *testing.T) {
	tests := []struct {
		name       string
		action     model.Action
		wantMethod string
	}{
		{
			name:       "issue comment",
			action:     model.Action{Type: model.ActionComment, Value: "hi", Metadata: model.ActionMetadata{PR: ref()}},
			wantMethod: "CreateIssueComment",
		},
		{
			name: "inline comment",
			action: model.Action{Type: model.ActionAddReviewComment, Value: "hi", Metadata: model.ActionMetadata{
				PR: ref(), Path: "main.go", Line: 3,
			}},
			wantMethod: "CreateReviewComment",
		},
		{
			name: "inline reply",
			action: model.Action{Type: model.ActionAddReviewComment, Value: "hi", Metadata: model.ActionMetadata{
				PR: ref(), InReplyTo: "101",
			}},
			wantMethod: "ReplyToReviewComment",
		},
		{
			name:       "label",
			action:     model.Action{Type: model.ActionApplyLabel, Value: "approved", Metadata: model.ActionMetadata{PR: ref()}},
			wantMethod: "AddLabels",
		},
		{
			name: "rerun",
			action: model.Action{Type: model.ActionRerunChecks, Metadata: model.ActionMetadata{
				PR: ref(), URL: "https://ci.example.com/run/9",
			}},
			wantMethod: "RerunCheck",
		},
		{
			name: "submit review",
			action: model.Action{Type: model.ActionSubmitReview, Value: "lgtm", Metadata: model.ActionMetadata{
				PR: ref(), CommentID: "PRR_1",
			}},
			wantMethod: "SubmitPendingReview",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProvider{}
			e := NewExecutor(fake, false)

			results := e.Apply(context.Background(), []model.Action{tt.action})
			require.Len(t, results, 1)
			assert.True(t, results[0].Success, results[0].Detail)
			require.Len(t, fake.calls, 1)
			assert.Equal(t, tt.wantMethod, fake.calls[0].method)
		})
	}
}

func TestExecutor_SubmitReviewDefaultsToComment(t *testing.T) {
	fake := &fakeProvider{}
	e := NewExecutor(fake, false)

	e.Apply(context.Background(), []model.Action{{
		Type:     model.ActionSubmitReview,
		Metadata: model.ActionMetadata{PR: ref(), CommentID: "PRR_1"},
	}})

	require.Len(t, fake.calls, 1)
	assert.Equal(t, string(model.ReviewStateCommented), fake.calls[0].value)
}

func TestExecutor_MissingTargets(t *testing.T) {
	fake := &fakeProvider{}
	e := NewExecutor(fake, false)

	results := e.Apply(context.Background(), []model.Action{
		{Type: model.ActionComment, Value: "no pr"},
		{Type: model.ActionRerunChecks, Metadata: model.ActionMetadata{PR: ref()}},
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Empty(t, fake.calls)
}

func TestExecutor_UnsupportedType(t *testing.T) {
	e := NewExecutor(&fakeProvider{}, false)

	results := e.Apply(context.Background(), []model.Action{
		{Type: model.ActionOpenIssue, Value: "x", Metadata: model.ActionMetadata{PR: ref()}},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Detail, "unsupported action type")
}

func TestExecutor_FailureDoesNotStopBatch(t *testing.T) {
	fake := &fakeProvider{failAll: true}
	e := NewExecutor(fake, false)

	results := e.Apply(context.Background(), []model.Action{
		{Type: model.ActionComment, Value: "a", Metadata: model.ActionMetadata{PR: ref()}},
		{Type: model.ActionComment, Value: "b", Metadata: model.ActionMetadata{PR: ref()}},
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Len(t, fake.calls, 2)
}
