// Package app wires every component of the service together.
package app

import (
	"context"

	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/prtriage/internal/classify"
	"github.com/maxbolgarin/prtriage/internal/model"
	"github.com/maxbolgarin/prtriage/internal/provider"
	"github.com/maxbolgarin/prtriage/internal/provider/github"
	"github.com/maxbolgarin/prtriage/internal/responder"
	"github.com/maxbolgarin/prtriage/internal/reviewer"
	"github.com/maxbolgarin/prtriage/internal/server"
	"github.com/maxbolgarin/prtriage/internal/storage"
	"github.com/maxbolgarin/prtriage/internal/threads"
	"github.com/maxbolgarin/prtriage/internal/triage"
)

// App is the main service that orchestrates all components.
type App struct {
	provider   model.PRProvider
	store      *storage.SQLiteStore
	classifier *classify.ActorClassifier
	analyzer   *threads.Analyzer
	engine     *triage.Engine
	executor   *provider.Executor
	reviewer   *reviewer.Reviewer
	responder  *responder.Responder
	smartReply *responder.SmartReply
	webhook    *server.Server

	cfg Config
	log logze.Logger
}

// New creates the service and registers shutdown hooks on the context.
func New(ctx contem.Context, cfg Config) (*App, error) {
	service := &App{
		cfg: cfg,
		log: logze.With("component", "app"),
	}

	if err := service.init(ctx, cfg); err != nil {
		return nil, errm.Wrap(err, "failed to initialize service")
	}

	return service, nil
}

// StartWebhook starts the webhook server.
func (s *App) StartWebhook(ctx context.Context) error {
	if err := s.webhook.Start(ctx); err != nil {
		return errm.Wrap(err, "failed to start webhook server")
	}
	return nil
}

// ReviewPR runs the full review workflow for one pull request.
func (s *App) ReviewPR(ctx context.Context, owner, repo string, number int) (*model.PRReviewResult, error) {
	return s.reviewer.ReviewPR(ctx, model.PullRequestRef{
		Owner:  owner,
		Repo:   repo,
		Number: number,
	})
}

// ReplyToComment posts a reply to a review comment, picking the right API
// shape for the target. An empty message generates a templated reply from
// the comment's author classification.
func (s *App) ReplyToComment(ctx context.Context, ref model.PullRequestRef, commentID, message string) (model.ActionResult, error) {
	comment, err := s.findInlineComment(ctx, ref, commentID)
	if err != nil {
		return model.ActionResult{}, err
	}

	if message == "" {
		classification := s.classifier.Classify(comment.AuthorLogin, comment.AuthorName)
		reply := s.responder.Generate(responder.ReplyRequest{
			ActorType: classification.ActorType,
			Thread: responder.ThreadContext{
				File: comment.Path,
				Line: comment.EffectiveLine(),
			},
			Comment: comment.Body,
		})
		message = reply.Body
	}

	result, err := s.smartReply.ReplyToComment(ctx, ref, commentID, message, comment.Path, comment.EffectiveLine(), comment.DiffHunk)
	if err != nil {
		return result, err
	}

	if result.Success {
		threadID, err := s.store.MapThread(ctx, commentID, comment.Path, comment.EffectiveLine(), comment.CommitID)
		if err != nil {
			s.log.Warn("failed to track reply thread", "comment_id", commentID, "error", err)
		} else {
			s.log.Debug("reply tracked", "comment_id", commentID, "thread_id", threadID)
		}
	}
	return result, nil
}

func (s *App) findInlineComment(ctx context.Context, ref model.PullRequestRef, commentID string) (model.RawComment, error) {
	comments, err := s.provider.GetInlineComments(ctx, ref)
	if err != nil {
		return model.RawComment{}, errm.Wrap(err, "get inline comments")
	}
	for _, comment := range comments {
		if comment.ID == commentID {
			return comment, nil
		}
	}
	// General PR comments have no inline anchor, replying still works.
	return model.RawComment{ID: commentID}, nil
}

func (s *App) init(ctx contem.Context, cfg Config) (err error) {
	s.provider, err = github.New(cfg.Provider)
	if err != nil {
		return errm.Wrap(err, "failed to create provider")
	}

	s.store, err = storage.NewSQLiteStore(cfg.Storage)
	if err != nil {
		return errm.Wrap(err, "failed to create thread store")
	}
	ctx.Add(func(context.Context) error { return s.store.Close() })

	if err := cfg.Classifier.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "invalid classifier config")
	}
	s.classifier, err = classify.NewActorClassifier(cfg.Classifier)
	if err != nil {
		return errm.Wrap(err, "failed to create actor classifier")
	}

	selfLogin := cfg.Provider.BotUsername
	if selfLogin == "" {
		user, err := s.provider.GetCurrentUser(ctx)
		if err != nil {
			return errm.Wrap(err, "failed to resolve bot account")
		}
		selfLogin = user.Username
		s.log.Info("resolved bot account", "login", selfLogin)
	}
	s.analyzer = threads.NewAnalyzer(cfg.Classifier.BotPatterns, selfLogin)

	policy, err := triage.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return errm.Wrap(err, "failed to load triage policy")
	}
	s.engine = triage.NewEngine(s.classifier, policy)

	s.executor = provider.NewExecutor(s.provider, cfg.Provider.DryRun)
	s.responder = responder.New()
	s.smartReply = responder.NewSmartReply(s.executor, classify.NewCommentClassifier())

	s.reviewer, err = reviewer.New(cfg.Review, s.provider, s.analyzer, s.engine, s.executor)
	if err != nil {
		return errm.Wrap(err, "failed to create reviewer")
	}
	ctx.Add(func(context.Context) error { s.reviewer.Stop(); return nil })

	s.webhook, err = server.New(cfg.Server, s.provider, s.reviewer, s.store)
	if err != nil {
		return errm.Wrap(err, "failed to create webhook server")
	}
	ctx.Add(s.webhook.Stop)

	return nil
}
