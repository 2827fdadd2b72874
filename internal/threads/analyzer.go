// Package threads groups inline PR comments into conversation threads and
// computes per-thread response state.
package threads

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/prtriage/internal/model"
)

// DefaultPriorityLimit caps how many threads Priority returns.
const DefaultPriorityLimit = 5

// Analyzer groups raw inline comments by reply chain and decides which
// threads still wait for a response from the authenticated actor.
//
// Bot detection here is a flat case-insensitive substring match against the
// configured pattern list. It is intentionally decoupled from the actor
// classifier: the analyzer must not depend on classifier cache state.
type Analyzer struct {
	botPatterns []string
	selfLogin   string
	log         logze.Logger
}

// NewAnalyzer creates a thread analyzer for the authenticated login.
func NewAnalyzer(botPatterns []string, selfLogin string) *Analyzer {
	lowered := make([]string, 0, len(botPatterns))
	for _, p := range botPatterns {
		lowered = append(lowered, strings.ToLower(p))
	}
	return &Analyzer{
		botPatterns: lowered,
		selfLogin:   selfLogin,
		log:         logze.With("component", "thread_analyzer"),
	}
}

// Analyze groups comments into conversation threads and computes their
// state. Threads needing a response sort first; ties break by most recent
// activity.
func (a *Analyzer) Analyze(comments []model.RawComment) []model.ConversationThread {
	byID := make(map[string]model.RawComment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	grouped := make(map[string][]model.RawComment)
	order := make([]string, 0)
	for _, c := range comments {
		key := a.threadKey(c, byID)
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], c)
	}

	analyzed := make([]model.ConversationThread, 0, len(grouped))
	for _, key := range order {
		analyzed = append(analyzed, a.analyzeThread(key, grouped[key]))
	}

	sort.SliceStable(analyzed, func(i, j int) bool {
		if analyzed[i].NeedsResponse != analyzed[j].NeedsResponse {
			return analyzed[i].NeedsResponse
		}
		return analyzed[i].LastActivity.After(analyzed[j].LastActivity)
	})
	return analyzed
}

// Priority filters to threads that still need a response, preserving
// incoming order and truncating to limit. A non-positive limit uses
// DefaultPriorityLimit.
func (a *Analyzer) Priority(threads []model.ConversationThread, limit int) []model.ConversationThread {
	if limit <= 0 {
		limit = DefaultPriorityLimit
	}
	out := make([]model.ConversationThread, 0, limit)
	for _, t := range threads {
		if !t.NeedsResponse {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}

// threadKey resolves a comment to its root and builds the thread identity.
func (a *Analyzer) threadKey(comment model.RawComment, byID map[string]model.RawComment) string {
	root := a.findRoot(comment, byID)
	return fmt.Sprintf("%s:%d:%s", pathOrUnknown(root.Path), root.EffectiveLine(), root.ID)
}

// findRoot walks the reply chain to the root comment. The walk carries a
// visited set so a malformed or cyclic reply graph terminates: an
// unresolvable parent falls back to the current comment as root.
func (a *Analyzer) findRoot(comment model.RawComment, byID map[string]model.RawComment) model.RawComment {
	visited := map[string]bool{comment.ID: true}
	current := comment
	for current.InReplyToID != "" {
		parent, ok := byID[current.InReplyToID]
		if !ok {
			return current
		}
		if visited[parent.ID] {
			a.log.Warn("cycle in reply chain, using current comment as root", "comment_id", current.ID)
			return current
		}
		visited[parent.ID] = true
		current = parent
	}
	return current
}

func (a *Analyzer) analyzeThread(key string, comments []model.RawComment) model.ConversationThread {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	first := comments[0]
	last := comments[len(comments)-1]

	var ownLast, lastExternal *model.RawComment
	for i := len(comments) - 1; i >= 0; i-- {
		c := comments[i]
		if c.AuthorLogin == a.selfLogin {
			if ownLast == nil {
				ownLast = &comments[i]
			}
		} else if lastExternal == nil {
			lastExternal = &comments[i]
		}
	}

	// The thread needs a response when the newest comment is external and
	// no own reply postdates it. Bots count as external: only the
	// authenticated identity suppresses the flag.
	needsResponse := last.AuthorLogin != a.selfLogin &&
		(ownLast == nil ||
			(lastExternal != nil && lastExternal.CreatedAt.After(ownLast.CreatedAt)))

	thread := model.ConversationThread{
		ThreadID:      key,
		Path:          first.Path,
		Line:          first.EffectiveLine(),
		Comments:      comments,
		Participants:  a.participants(comments),
		TotalComments: len(comments),
		LastActivity:  last.CreatedAt,
		NeedsResponse: needsResponse,
	}
	if lastExternal != nil {
		thread.LastExternalCommentID = lastExternal.ID
	}
	if ownLast != nil {
		thread.OwnLastResponseID = ownLast.ID
	}
	return thread
}

func (a *Analyzer) participants(comments []model.RawComment) []model.ThreadParticipant {
	byLogin := make(map[string]*model.ThreadParticipant)
	order := make([]string, 0)

	for _, c := range comments {
		p, ok := byLogin[c.AuthorLogin]
		if !ok {
			p = &model.ThreadParticipant{
				Login:         c.AuthorLogin,
				IsBot:         a.isBot(c.AuthorLogin),
				IsSelf:        c.AuthorLogin == a.selfLogin,
				LastCommentAt: c.CreatedAt,
			}
			byLogin[c.AuthorLogin] = p
			order = append(order, c.AuthorLogin)
		}
		p.CommentCount++
		if c.CreatedAt.After(p.LastCommentAt) {
			p.LastCommentAt = c.CreatedAt
		}
	}

	out := make([]model.ThreadParticipant, 0, len(order))
	for _, login := range order {
		out = append(out, *byLogin[login])
	}
	return out
}

func (a *Analyzer) isBot(login string) bool {
	lowered := strings.ToLower(login)
	for _, pattern := range a.botPatterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}

// A missing path renders as "unknown" in thread identifiers.
func pathOrUnknown(path string) string {
	if path == "" {
		return "unknown"
	}
	return path
}
