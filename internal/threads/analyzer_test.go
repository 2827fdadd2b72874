package threads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxbolgarin/prtriage/internal/model"
)

const self = "review-bot"

func at(minute int) time.Time {
	return time.Date(2026, 3, 10, 12, minute, 0, 0, time.UTC)
}

func comment(id, author string, minute int) model.RawComment {
	return model.RawComment{
		ID:          id,
		AuthorLogin: author,
		Body:        "comment " + id,
		CreatedAt:   at(minute),
		Path:        "internal/server/server.go",
		Line:        10,
		DiffHunk:    "@@",
	}
}

func reply(id, author, parent string, minute int) model.RawComment {
	c := comment(id, author, minute)
	c.InReplyToID = parent
	return c
}

func TestAnalyzer_GroupsReplyChains(t *testing.T) {
	a := NewAnalyzer(nil, self)

	// A <- B <- C resolve to one thread rooted at A.
	threads := a.Analyze([]model.RawComment{
		comment("a", "alice", 1),
		reply("b", "bob", "a", 2),
		reply("c", "alice", "b", 3),
	})

	require.Len(t, threads, 1)
	thread := threads[0]
	assert.Equal(t, "internal/server/server.go:10:a", thread.ThreadID)
	assert.Equal(t, 3, thread.TotalComments)
	assert.Equal(t, at(3), thread.LastActivity)
	assert.Len(t, thread.Participants, 2)
}

func TestAnalyzer_SeparateThreadsPerRoot(t *testing.T) {
	a := NewAnalyzer(nil, self)

	other := comment("x", "carol", 5)
	other.Path = "cmd/main/main.go"
	other.Line = 3

	threads := a.Analyze([]model.RawComment{
		comment("a", "alice", 1),
		other,
	})
	require.Len(t, threads, 2)
	assert.NotEqual(t, threads[0].ThreadID, threads[1].ThreadID)
}

func TestAnalyzer_NeedsResponse(t *testing.T) {
	a := NewAnalyzer(nil, self)

	tests := []struct {
		name     string
		comments []model.RawComment
		want     bool
	}{
		{
			name:     "external comment unanswered",
			comments: []model.RawComment{comment("a", "alice", 1)},
			want:     true,
		},
		{
			name: "own reply is the newest",
			comments: []model.RawComment{
				comment("a", "alice", 1),
				reply("b", self, "a", 2),
			},
			want: false,
		},
		{
			name: "external comment after own reply",
			comments: []model.RawComment{
				comment("a", "alice", 1),
				reply("b", self, "a", 2),
				reply("c", "alice", "a", 3),
			},
			want: true,
		},
		{
			name: "bot comment counts as external",
			comments: []model.RawComment{
				comment("a", "dependabot[bot]", 1),
			},
			want: true,
		},
		{
			name: "own thread with no external comments",
			comments: []model.RawComment{
				comment("a", self, 1),
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			threads := a.Analyze(tt.comments)
			require.Len(t, threads, 1)
			assert.Equal(t, tt.want, threads[0].NeedsResponse)
		})
	}
}

func TestAnalyzer_LastExternalAndOwnResponse(t *testing.T) {
	a := NewAnalyzer(nil, self)

	threads := a.Analyze([]model.RawComment{
		comment("a", "alice", 1),
		reply("b", self, "a", 2),
		reply("c", "alice", "a", 3),
	})
	require.Len(t, threads, 1)

	assert.Equal(t, "c", threads[0].LastExternalCommentID)
	assert.Equal(t, "b", threads[0].OwnLastResponseID)
}

func TestAnalyzer_SortsNeedingResponseFirst(t *testing.T) {
	a := NewAnalyzer(nil, self)

	answered := []model.RawComment{
		comment("a", "alice", 1),
		reply("b", self, "a", 9),
	}
	unanswered := comment("x", "carol", 5)
	unanswered.Path = "cmd/main/main.go"

	threads := a.Analyze(append(answered, unanswered))
	require.Len(t, threads, 2)
	assert.True(t, threads[0].NeedsResponse)
	assert.False(t, threads[1].NeedsResponse)
}

func TestAnalyzer_MissingParentFallsBackToComment(t *testing.T) {
	a := NewAnalyzer(nil, self)

	orphan := reply("b", "bob", "nonexistent", 2)
	threads := a.Analyze([]model.RawComment{orphan})

	require.Len(t, threads, 1)
	assert.Equal(t, "internal/server/server.go:10:b", threads[0].ThreadID)
}

func TestAnalyzer_CyclicReplyChainTerminates(t *testing.T) {
	a := NewAnalyzer(nil, self)

	first := reply("a", "alice", "b", 1)
	second := reply("b", "bob", "a", 2)

	threads := a.Analyze([]model.RawComment{first, second})
	assert.NotEmpty(t, threads)
}

func TestAnalyzer_MissingPathUsesUnknown(t *testing.T) {
	a := NewAnalyzer(nil, self)

	c := model.RawComment{ID: "a", AuthorLogin: "alice", CreatedAt: at(1)}
	threads := a.Analyze([]model.RawComment{c})

	require.Len(t, threads, 1)
	assert.Equal(t, "unknown:0:a", threads[0].ThreadID)
}

func TestAnalyzer_ParticipantRoster(t *testing.T) {
	a := NewAnalyzer([]string{"dependabot"}, self)

	threads := a.Analyze([]model.RawComment{
		comment("a", "alice", 1),
		reply("b", "dependabot[bot]", "a", 2),
		reply("c", self, "a", 3),
		reply("d", "alice", "a", 4),
	})
	require.Len(t, threads, 1)

	participants := threads[0].Participants
	require.Len(t, participants, 3)

	assert.Equal(t, "alice", participants[0].Login)
	assert.Equal(t, 2, participants[0].CommentCount)
	assert.Equal(t, at(4), participants[0].LastCommentAt)
	assert.False(t, participants[0].IsBot)

	assert.Equal(t, "dependabot[bot]", participants[1].Login)
	assert.True(t, participants[1].IsBot)

	assert.Equal(t, self, participants[2].Login)
	assert.True(t, participants[2].IsSelf)
}

func TestAnalyzer_Priority(t *testing.T) {
	a := NewAnalyzer(nil, self)

	var comments []model.RawComment
	for i := 0; i < 8; i++ {
		c := comment(string(rune('a'+i)), "alice", i)
		c.Line = 100 + i
		comments = append(comments, c)
	}
	threads := a.Analyze(comments)
	require.Len(t, threads, 8)

	limited := a.Priority(threads, 3)
	assert.Len(t, limited, 3)

	defaulted := a.Priority(threads, 0)
	assert.Len(t, defaulted, DefaultPriorityLimit)

	for _, thread := range a.Priority(threads, 10) {
		assert.True(t, thread.NeedsResponse)
	}
}
