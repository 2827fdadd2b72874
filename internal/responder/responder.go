// Package responder generates reply bodies for review comments depending on
// who wrote them.
package responder

import (
	"fmt"
	"strings"

	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/prtriage/internal/model"
)

// ThreadContext identifies the conversation a reply targets.
type ThreadContext struct {
	ID   string
	File string
	Line int
}

// CodeContext carries the code surrounding a review comment.
type CodeContext struct {
	Path   string
	Before string
	After  string
}

// ReplyRequest asks for a reply to one comment.
type ReplyRequest struct {
	ActorType   model.ActorType
	Thread      ThreadContext
	Comment     string
	CodeContext *CodeContext
}

// ReplyResponse is a generated reply plus any follow-up actions.
type ReplyResponse struct {
	Body          string
	ResolveThread bool
	Followups     []model.Action
}

// Responder generates replies for comments and review threads.
type Responder struct {
	log logze.Logger
}

// New creates a responder.
func New() *Responder {
	return &Responder{log: logze.With("component", "responder")}
}

// Generate builds a reply for the request. Bot authors get a short
// automated acknowledgment; humans get a templated reply referencing their
// comment and location.
func (r *Responder) Generate(request ReplyRequest) ReplyResponse {
	r.log.Info("generating reply", "actor_type", request.ActorType, "thread_id", request.Thread.ID)

	if request.ActorType == model.ActorTypeBot {
		return ReplyResponse{
			Body: r.botReply(request),
			Followups: []model.Action{{
				Type:     model.ActionComment,
				Value:    "Bot response tracked",
				Metadata: model.ActionMetadata{ThreadID: request.Thread.ID},
			}},
		}
	}

	response := ReplyResponse{Body: r.humanReply(request)}
	if request.CodeContext != nil && request.CodeContext.After != "" {
		response.Followups = append(response.Followups, model.Action{
			Type:     model.ActionComment,
			Value:    fmt.Sprintf("Proposed change:\n```diff\n%s\n```", request.CodeContext.After),
			Metadata: model.ActionMetadata{ThreadID: request.Thread.ID},
		})
	}
	return response
}

func (r *Responder) botReply(request ReplyRequest) string {
	base := "🤖 Thanks for the automated update."
	if request.CodeContext != nil {
		base += " We'll verify the suggested changes against policy."
	}
	return base
}

func (r *Responder) humanReply(request ReplyRequest) string {
	parts := []string{"Thanks for taking the time to review this change."}

	lines := strings.Split(strings.TrimSpace(request.Comment), "\n")
	if len(lines) > 0 && lines[0] != "" {
		parts = append(parts, fmt.Sprintf("You mentioned: %q", lines[0]))
	}
	if request.Thread.File != "" && request.Thread.Line != 0 {
		parts = append(parts, fmt.Sprintf(
			"We'll revisit `%s` line %d and follow up shortly.",
			request.Thread.File, request.Thread.Line,
		))
	}
	return strings.Join(parts, " ")
}
