// Package reviewer orchestrates the full PR review workflow: fetch,
// conversation analysis, triage and prioritized action suggestions.
package reviewer

import (
	"context"

	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/maxbolgarin/prtriage/internal/model"
	"github.com/maxbolgarin/prtriage/internal/threads"
	"github.com/maxbolgarin/prtriage/internal/triage"
)

// Reviewer composes the provider, thread analyzer and triage engine into
// the review workflow and asynchronous event handling.
type Reviewer struct {
	provider model.PRProvider
	analyzer *threads.Analyzer
	engine   *triage.Engine
	applier  model.ActionApplier
	pool     *ants.Pool

	cfg Config
	log logze.Logger
}

// New creates a new reviewer.
func New(cfg Config, provider model.PRProvider, analyzer *threads.Analyzer, engine *triage.Engine, applier model.ActionApplier) (*Reviewer, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "failed to prepare and validate config")
	}

	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create ants pool")
	}

	return &Reviewer{
		provider: provider,
		analyzer: analyzer,
		engine:   engine,
		applier:  applier,
		pool:     pool,
		cfg:      cfg,
		log:      logze.With("component", "reviewer"),
	}, nil
}

// HandleEvent triages a webhook event and applies the resulting actions on
// the worker pool. Returns once the work is scheduled.
func (r *Reviewer) HandleEvent(ctx context.Context, event model.Event) error {
	base := event.Base()
	log := r.log.WithFields(
		"event_id", base.EventID,
		"actor", base.ActorLogin,
		"pr", base.PR.Number,
	)

	triaged := r.engine.Triage(event)

	actions := triaged.Actions
	for _, label := range triaged.Labels {
		// Status events carry no PR number, their labels stay suggestions.
		if base.PR.Number == 0 {
			break
		}
		actions = append(actions, model.Action{
			Type:     model.ActionApplyLabel,
			Value:    label,
			Metadata: model.ActionMetadata{PR: &base.PR, EventID: base.EventID},
		})
	}
	if len(actions) == 0 {
		log.Debug("no actions for event")
		return nil
	}

	err := r.pool.Submit(func() {
		results := r.applier.Apply(ctx, actions)
		for _, result := range results {
			if !result.Success {
				log.Error("action failed", "type", result.Action.Type, "detail", result.Detail)
			}
		}
	})
	if err != nil {
		return erro.Wrap(err, "failed to submit event handling")
	}
	return nil
}

// Stop releases the worker pool.
func (r *Reviewer) Stop() {
	r.pool.Release()
}
