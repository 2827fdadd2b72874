// Package github implements the PR provider on top of the GitHub REST and
// GraphQL APIs.
package github

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"golang.org/x/oauth2"

	"github.com/maxbolgarin/prtriage/internal/model"
	"github.com/maxbolgarin/prtriage/internal/provider"
)

var _ model.PRProvider = (*Provider)(nil)

// Provider implements the PRProvider interface for GitHub.
type Provider struct {
	client  *github.Client
	graphql *graphQLClient
	config  provider.Config
	logger  logze.Logger
}

// New creates a new GitHub provider.
func New(config provider.Config) (*Provider, error) {
	if err := config.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "invalid provider config")
	}
	log := logze.With("provider", "github")

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: config.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = config.RESTTimeout

	client := github.NewClient(tc)

	// Custom base URL means GitHub Enterprise.
	if config.BaseURL != "" {
		var err error
		client, err = github.NewClient(tc).WithEnterpriseURLs(config.BaseURL, config.BaseURL)
		if err != nil {
			return nil, errm.Wrap(err, "create GitHub Enterprise client")
		}
	}

	graphql, err := newGraphQLClient(config, log)
	if err != nil {
		return nil, errm.Wrap(err, "create GraphQL client")
	}

	return &Provider{
		client:  client,
		graphql: graphql,
		config:  config,
		logger:  log,
	}, nil
}

// GetPullRequest retrieves the pull request attributes the automation reads.
func (p *Provider) GetPullRequest(ctx context.Context, ref model.PullRequestRef) (*model.PullRequestInfo, error) {
	var pr *github.PullRequest
	err := p.withRetry(ctx, "get pull request", func() error {
		var err error
		pr, _, err = p.client.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
		return translateErr(err, "get pull request")
	})
	if err != nil {
		return nil, err
	}

	return &model.PullRequestInfo{
		Number:      pr.GetNumber(),
		Title:       pr.GetTitle(),
		State:       pr.GetState(),
		AuthorLogin: pr.GetUser().GetLogin(),
		URL:         pr.GetHTMLURL(),
		HeadSHA:     pr.GetHead().GetSHA(),
		CreatedAt:   pr.GetCreatedAt().Time,
		UpdatedAt:   pr.GetUpdatedAt().Time,
	}, nil
}

// GetReviews retrieves all submitted reviews for a pull request.
func (p *Provider) GetReviews(ctx context.Context, ref model.PullRequestRef) ([]model.Review, error) {
	opts := &github.ListOptions{PerPage: 100}
	var all []*github.PullRequestReview

	err := p.withRetry(ctx, "list reviews", func() error {
		all = all[:0]
		opts.Page = 0
		for {
			reviews, resp, err := p.client.PullRequests.ListReviews(ctx, ref.Owner, ref.Repo, ref.Number, opts)
			if err != nil {
				return translateErr(err, "list reviews")
			}
			all = append(all, reviews...)
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Review, 0, len(all))
	for _, review := range all {
		out = append(out, model.Review{
			ID:          strconv.FormatInt(review.GetID(), 10),
			State:       model.ReviewState(strings.ToUpper(review.GetState())),
			AuthorLogin: review.GetUser().GetLogin(),
			Body:        review.GetBody(),
			SubmittedAt: review.GetSubmittedAt().Time,
		})
	}
	return out, nil
}

// GetIssueComments retrieves general discussion comments on a pull request.
func (p *Provider) GetIssueComments(ctx context.Context, ref model.PullRequestRef) ([]model.RawComment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var all []*github.IssueComment

	err := p.withRetry(ctx, "list issue comments", func() error {
		all = all[:0]
		opts.Page = 0
		for {
			comments, resp, err := p.client.Issues.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, opts)
			if err != nil {
				return translateErr(err, "list issue comments")
			}
			all = append(all, comments...)
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.RawComment, 0, len(all))
	for _, comment := range all {
		out = append(out, model.RawComment{
			ID:          strconv.FormatInt(comment.GetID(), 10),
			AuthorLogin: comment.GetUser().GetLogin(),
			AuthorName:  comment.GetUser().GetName(),
			Body:        comment.GetBody(),
			CreatedAt:   comment.GetCreatedAt().Time,
		})
	}
	return out, nil
}

// GetInlineComments retrieves review comments anchored to diff positions.
func (p *Provider) GetInlineComments(ctx context.Context, ref model.PullRequestRef) ([]model.RawComment, error) {
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var all []*github.PullRequestComment

	err := p.withRetry(ctx, "list inline comments", func() error {
		all = all[:0]
		opts.Page = 0
		for {
			comments, resp, err := p.client.PullRequests.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, opts)
			if err != nil {
				return translateErr(err, "list inline comments")
			}
			all = append(all, comments...)
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.RawComment, 0, len(all))
	for _, comment := range all {
		raw := model.RawComment{
			ID:           strconv.FormatInt(comment.GetID(), 10),
			AuthorLogin:  comment.GetUser().GetLogin(),
			AuthorName:   comment.GetUser().GetName(),
			Body:         comment.GetBody(),
			CreatedAt:    comment.GetCreatedAt().Time,
			Path:         comment.GetPath(),
			Line:         comment.GetLine(),
			OriginalLine: comment.GetOriginalLine(),
			DiffHunk:     comment.GetDiffHunk(),
			CommitID:     comment.GetCommitID(),
		}
		if comment.InReplyTo != nil {
			raw.InReplyToID = strconv.FormatInt(comment.GetInReplyTo(), 10)
		}
		out = append(out, raw)
	}
	return out, nil
}

// GetPendingReviews retrieves unsubmitted reviews via the GraphQL API.
// REST does not expose reviews in the PENDING state.
func (p *Provider) GetPendingReviews(ctx context.Context, ref model.PullRequestRef) (*model.PendingReviewSection, error) {
	return p.graphql.PendingReviews(ctx, ref)
}

// GetCurrentUser retrieves the authenticated bot account.
func (p *Provider) GetCurrentUser(ctx context.Context) (*model.User, error) {
	var user *github.User
	err := p.withRetry(ctx, "get current user", func() error {
		var err error
		user, _, err = p.client.Users.Get(ctx, "")
		return translateErr(err, "get current user")
	})
	if err != nil {
		return nil, err
	}

	return &model.User{
		ID:       strconv.FormatInt(user.GetID(), 10),
		Username: user.GetLogin(),
		Name:     user.GetName(),
	}, nil
}

// CreateIssueComment posts a general comment on a pull request and returns
// the created comment id.
func (p *Provider) CreateIssueComment(ctx context.Context, ref model.PullRequestRef, body string) (string, error) {
	var created *github.IssueComment
	err := p.withRetry(ctx, "create issue comment", func() error {
		var err error
		created, _, err = p.client.Issues.CreateComment(ctx, ref.Owner, ref.Repo, ref.Number, &github.IssueComment{
			Body: github.String(body),
		})
		return translateErr(err, "create issue comment")
	})
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(created.GetID(), 10), nil
}

// CreateReviewComment posts an inline comment anchored to a diff line. An
// empty commitID is resolved to the current PR head.
func (p *Provider) CreateReviewComment(ctx context.Context, ref model.PullRequestRef, body, path string, line int, commitID string) (string, error) {
	if commitID == "" {
		info, err := p.GetPullRequest(ctx, ref)
		if err != nil {
			return "", errm.Wrap(err, "resolve head commit for inline comment")
		}
		commitID = info.HeadSHA
	}

	var created *github.PullRequestComment
	err := p.withRetry(ctx, "create review comment", func() error {
		var err error
		created, _, err = p.client.PullRequests.CreateComment(ctx, ref.Owner, ref.Repo, ref.Number, &github.PullRequestComment{
			Body:     github.String(body),
			Path:     github.String(path),
			Line:     github.Int(line),
			CommitID: github.String(commitID),
		})
		return translateErr(err, "create review comment")
	})
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(created.GetID(), 10), nil
}

// ReplyToReviewComment posts a threaded reply to an existing inline comment.
func (p *Provider) ReplyToReviewComment(ctx context.Context, ref model.PullRequestRef, inReplyTo, body string) (string, error) {
	parentID, err := strconv.ParseInt(inReplyTo, 10, 64)
	if err != nil {
		return "", errm.Wrap(err, "invalid parent comment id")
	}

	var created *github.PullRequestComment
	err = p.withRetry(ctx, "reply to review comment", func() error {
		var err error
		created, _, err = p.client.PullRequests.CreateCommentInReplyTo(ctx, ref.Owner, ref.Repo, ref.Number, body, parentID)
		return translateErr(err, "reply to review comment")
	})
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(created.GetID(), 10), nil
}

// AddLabels attaches labels to a pull request.
func (p *Provider) AddLabels(ctx context.Context, ref model.PullRequestRef, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	return p.withRetry(ctx, "add labels", func() error {
		_, _, err := p.client.Issues.AddLabelsToIssue(ctx, ref.Owner, ref.Repo, ref.Number, labels)
		return translateErr(err, "add labels")
	})
}

// SubmitPendingReview submits an unsubmitted review via the GraphQL mutation.
func (p *Provider) SubmitPendingReview(ctx context.Context, ref model.PullRequestRef, reviewID string, event model.ReviewState, body string) error {
	return p.graphql.SubmitReview(ctx, reviewID, event, body)
}

// RerunCheck triggers a re-run of a check via the rerequest URL carried by
// the originating status event.
func (p *Provider) RerunCheck(ctx context.Context, url string) error {
	return p.withRetry(ctx, "rerun check", func() error {
		req, err := p.client.NewRequest(http.MethodPost, url, nil)
		if err != nil {
			return errm.Wrap(err, "build rerun request")
		}
		_, err = p.client.Do(ctx, req, nil)
		return translateErr(err, "rerun check")
	})
}

// withRetry runs fn up to MaxRetries times with exponential backoff. Only
// connection-level failures are retried; translated API errors return
// immediately.
func (p *Provider) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	delay := p.config.RetryBase

	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
		if attempt == p.config.MaxRetries {
			break
		}

		p.logger.Warn("transient failure, retrying", "op", op, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, p.config.RetryCap)
	}
	return errm.Wrap(lastErr, "retries exhausted for "+op)
}

// translateErr maps go-github failures onto the provider error taxonomy.
func translateErr(err error, msg string) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return errm.Wrap(provider.ErrRateLimited, msg)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return errm.Wrap(provider.ErrInvalidCredentials, msg)
		case http.StatusNotFound:
			return errm.Wrap(provider.ErrNotFound, msg)
		case http.StatusForbidden:
			return errm.Wrap(provider.ErrRateLimited, msg)
		}
	}
	return errm.Wrap(err, msg)
}

// isTransient reports whether an error may succeed on retry. API-level
// failures never do, connection-level ones may.
func isTransient(err error) bool {
	if errm.Is(err, provider.ErrInvalidCredentials) ||
		errm.Is(err, provider.ErrNotFound) ||
		errm.Is(err, provider.ErrRateLimited) {
		return false
	}
	var respErr *github.ErrorResponse
	return !errors.As(err, &respErr)
}
