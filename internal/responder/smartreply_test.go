package responder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxbolgarin/prtriage/internal/classify"
	"github.com/maxbolgarin/prtriage/internal/model"
)

type fakeApplier struct {
	applied []model.Action
}

func (f *fakeApplier) Apply(ctx context.Context, actions []model.Action) []model.ActionResult {
	f.applied = append(f.applied, actions...)
	results := make([]model.ActionResult, 0, len(actions))
	for _, action := range actions {
		results = append(results, model.ActionResult{Action: action, Success: true})
	}
	return results
}

func testRef() model.PullRequestRef {
	return model.PullRequestRef{Owner: "octo", Repo: "demo", Number: 7}
}

func TestSmartReply_InlineReply(t *testing.T) {
	applier := &fakeApplier{}
	s := NewSmartReply(applier, classify.NewCommentClassifier())

	result, err := s.ReplyToComment(
		context.Background(), testRef(),
		"101", "on it",
		"internal/app/app.go", 42, "@@ -1 +1 @@",
	)
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, applier.applied, 1)
	action := applier.applied[0]
	assert.Equal(t, model.ActionAddReviewComment, action.Type)
	assert.Equal(t, "on it", action.Value)
	assert.Equal(t, "101", action.Metadata.InReplyTo)
	require.NotNil(t, action.Metadata.PR)
	assert.Equal(t, 7, action.Metadata.PR.Number)
}

func TestSmartReply_GeneralReply(t *testing.T) {
	applier := &fakeApplier{}
	s := NewSmartReply(applier, classify.NewCommentClassifier())

	result, err := s.ReplyToComment(
		context.Background(), testRef(),
		"102", "thanks",
		"", 0, "",
	)
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, applier.applied, 1)
	assert.Equal(t, model.ActionComment, applier.applied[0].Type)
}
