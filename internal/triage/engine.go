// Package triage decides which follow-up actions a PR event warrants.
package triage

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/prtriage/internal/classify"
	"github.com/maxbolgarin/prtriage/internal/model"
)

const (
	ackChangesRequested = "Thanks for the thorough review! We'll address these changes."
	ackBotComment       = "🤖 Automated feedback noted. Running follow-up automation if required."
	ackHumanComment     = "Thanks for the feedback! We'll take a look right away."

	labelNeedsChanges = "needs-changes"
	labelApproved     = "approved"
	labelCIFailed     = "ci-failed"
	labelCIPassed     = "ci-passed"
)

// Engine maps a classified event plus policy configuration to suggested
// labels and reply actions. Stateless per call; it performs no network I/O.
type Engine struct {
	classifier *classify.ActorClassifier
	policy     atomic.Pointer[Policy]
	log        logze.Logger
}

// NewEngine creates a triage engine with an initial policy snapshot.
func NewEngine(classifier *classify.ActorClassifier, policy *Policy) *Engine {
	e := &Engine{
		classifier: classifier,
		log:        logze.With("component", "triage"),
	}
	if policy == nil {
		policy = &Policy{}
		policy.PrepareAndValidate()
	}
	e.policy.Store(policy)
	return e
}

// SetPolicy atomically replaces the policy snapshot.
func (e *Engine) SetPolicy(policy *Policy) {
	if policy == nil {
		return
	}
	e.policy.Store(policy)
}

// Policy returns the current policy snapshot.
func (e *Engine) Policy() *Policy {
	return e.policy.Load()
}

// Triage decides actions, labels and assignments for one event. Events are
// assumed well-typed: malformed payloads are rejected before reaching here.
func (e *Engine) Triage(event model.Event) model.TriagedActions {
	base := event.Base()
	classification := e.classifier.Classify(base.ActorLogin, base.ActorName)

	e.log.Info("triaging event",
		"event_id", base.EventID,
		"actor", base.ActorLogin,
		"actor_type", classification.ActorType,
	)

	var triaged model.TriagedActions
	switch ev := event.(type) {
	case model.ReviewEvent:
		e.handleReview(ev, &triaged)
	case model.CommentEvent:
		e.handleComment(ev, classification.ActorType, &triaged)
	case model.StatusEvent:
		e.handleStatus(ev, &triaged)
	}
	return triaged
}

func (e *Engine) handleReview(event model.ReviewEvent, triaged *model.TriagedActions) {
	switch event.State {
	case model.ReviewStateChangesRequested:
		triaged.Actions = append(triaged.Actions, model.Action{
			Type:     model.ActionComment,
			Value:    ackChangesRequested,
			Metadata: model.ActionMetadata{PR: &event.PR, EventID: event.EventID},
		})
		triaged.Labels = append(triaged.Labels, labelNeedsChanges)
	case model.ReviewStateApproved:
		triaged.Labels = append(triaged.Labels, labelApproved)
	case model.ReviewStateCommented, model.ReviewStatePending:
	}
}

func (e *Engine) handleComment(event model.CommentEvent, actorType model.ActorType, triaged *model.TriagedActions) {
	body := ackHumanComment
	if actorType == model.ActorTypeBot {
		body = ackBotComment
	}
	triaged.Actions = append(triaged.Actions, model.Action{
		Type:  model.ActionComment,
		Value: body,
		Metadata: model.ActionMetadata{
			PR:        &event.PR,
			EventID:   event.EventID,
			CommentID: event.CommentID,
		},
	})

	if event.Path == "" {
		return
	}

	policy := e.Policy()
	prefixes := make([]string, 0, len(policy.Labels))
	for prefix := range policy.Labels {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	seen := make(map[string]bool, len(triaged.Labels))
	for _, l := range triaged.Labels {
		seen[l] = true
	}
	for _, prefix := range prefixes {
		if !strings.HasPrefix(event.Path, prefix) {
			continue
		}
		for _, label := range policy.Labels[prefix] {
			if seen[label] {
				continue
			}
			seen[label] = true
			triaged.Labels = append(triaged.Labels, label)
		}
	}
}

func (e *Engine) handleStatus(event model.StatusEvent, triaged *model.TriagedActions) {
	switch event.State {
	case model.StatusStateFailure:
		triaged.Labels = append(triaged.Labels, labelCIFailed)
		triaged.Actions = append(triaged.Actions, model.Action{
			Type: model.ActionRerunChecks,
			Metadata: model.ActionMetadata{
				PR:      &event.PR,
				Context: event.Context,
				URL:     event.TargetURL,
			},
		})
	case model.StatusStateSuccess:
		triaged.Labels = append(triaged.Labels, labelCIPassed)
	case model.StatusStatePending:
	}
}
