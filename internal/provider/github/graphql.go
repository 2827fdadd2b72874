package github

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/prtriage/internal/model"
	"github.com/maxbolgarin/prtriage/internal/provider"
)

const defaultGraphQLURL = "https://api.github.com/graphql"

const pendingReviewsQuery = `
query($owner: String!, $repo: String!, $number: Int!) {
  repository(owner: $owner, name: $repo) {
    pullRequest(number: $number) {
      reviews(first: 10, states: [PENDING]) {
        nodes {
          id
          databaseId
          state
          body
          author {
            login
          }
          comments(first: 10) {
            nodes {
              databaseId
              body
              path
              line
              originalLine
              diffHunk
              createdAt
              author {
                login
              }
            }
          }
        }
      }
    }
  }
}`

const submitReviewMutation = `
mutation($input: SubmitPullRequestReviewInput!) {
  submitPullRequestReview(input: $input) {
    pullRequestReview {
      id
      databaseId
      state
    }
  }
}`

// graphQLClient covers the operations REST does not expose, most notably
// reviews in the PENDING state.
type graphQLClient struct {
	cli *cliex.HTTP
	url string
	log logze.Logger
}

func newGraphQLClient(config provider.Config, log logze.Logger) (*graphQLClient, error) {
	cli, err := cliex.NewWithConfig(cliex.Config{
		RequestTimeout: config.GraphQLTimeout,
	})
	if err != nil {
		return nil, errm.Wrap(err, "create HTTP client")
	}
	cli.C().SetHeader("Authorization", "Bearer "+config.Token)
	cli.C().SetHeader("Content-Type", "application/json")

	url := defaultGraphQLURL
	if config.BaseURL != "" {
		url = strings.TrimSuffix(config.BaseURL, "/") + "/api/graphql"
	}

	return &graphQLClient{
		cli: cli,
		url: url,
		log: log.WithFields("api", "graphql"),
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type pendingReviewsResponse struct {
	Data struct {
		Repository struct {
			PullRequest struct {
				Reviews struct {
					Nodes []pendingReviewNode `json:"nodes"`
				} `json:"reviews"`
			} `json:"pullRequest"`
		} `json:"repository"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type pendingReviewNode struct {
	ID         string `json:"id"`
	DatabaseID int64  `json:"databaseId"`
	State      string `json:"state"`
	Body       string `json:"body"`
	Author     struct {
		Login string `json:"login"`
	} `json:"author"`
	Comments struct {
		Nodes []pendingCommentNode `json:"nodes"`
	} `json:"comments"`
}

type pendingCommentNode struct {
	DatabaseID   int64     `json:"databaseId"`
	Body         string    `json:"body"`
	Path         string    `json:"path"`
	Line         int       `json:"line"`
	OriginalLine int       `json:"originalLine"`
	DiffHunk     string    `json:"diffHunk"`
	CreatedAt    time.Time `json:"createdAt"`
	Author       struct {
		Login string `json:"login"`
	} `json:"author"`
}

type submitReviewResponse struct {
	Data struct {
		SubmitPullRequestReview struct {
			PullRequestReview struct {
				ID         string `json:"id"`
				DatabaseID int64  `json:"databaseId"`
				State      string `json:"state"`
			} `json:"pullRequestReview"`
		} `json:"submitPullRequestReview"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// PendingReviews returns all unsubmitted reviews with their inline comments.
func (c *graphQLClient) PendingReviews(ctx context.Context, ref model.PullRequestRef) (*model.PendingReviewSection, error) {
	var out pendingReviewsResponse
	err := c.do(ctx, "pending_reviews", pendingReviewsQuery, map[string]any{
		"owner":  ref.Owner,
		"repo":   ref.Repo,
		"number": ref.Number,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, errm.New("graphql error: %s", out.Errors[0].Message)
	}

	nodes := out.Data.Repository.PullRequest.Reviews.Nodes
	section := &model.PendingReviewSection{
		Reviews: make([]model.PendingReview, 0, len(nodes)),
		Count:   len(nodes),
	}
	for _, node := range nodes {
		review := model.PendingReview{
			ID:          node.ID,
			DatabaseID:  node.DatabaseID,
			State:       model.ReviewState(node.State),
			AuthorLogin: node.Author.Login,
			Body:        node.Body,
		}
		for _, comment := range node.Comments.Nodes {
			review.Comments = append(review.Comments, model.RawComment{
				ID:           strconv.FormatInt(comment.DatabaseID, 10),
				AuthorLogin:  comment.Author.Login,
				Body:         comment.Body,
				CreatedAt:    comment.CreatedAt,
				Path:         comment.Path,
				Line:         comment.Line,
				OriginalLine: comment.OriginalLine,
				DiffHunk:     comment.DiffHunk,
			})
		}
		if len(review.Comments) > 0 {
			section.HasComments = true
		}
		section.Reviews = append(section.Reviews, review)
	}
	return section, nil
}

// SubmitReview submits a pending review with the given event and body.
func (c *graphQLClient) SubmitReview(ctx context.Context, reviewID string, event model.ReviewState, body string) error {
	var out submitReviewResponse
	err := c.do(ctx, "submit_pending_review", submitReviewMutation, map[string]any{
		"input": map[string]any{
			"pullRequestReviewId": reviewID,
			"event":               string(event),
			"body":                body,
		},
	}, &out)
	if err != nil {
		return err
	}
	if len(out.Errors) > 0 {
		return errm.New("graphql error: %s", out.Errors[0].Message)
	}

	c.log.Info("pending review submitted",
		"review_id", out.Data.SubmitPullRequestReview.PullRequestReview.ID,
		"state", out.Data.SubmitPullRequestReview.PullRequestReview.State)
	return nil
}

func (c *graphQLClient) do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	resp, err := c.cli.Post(ctx, c.url, graphQLRequest{
		Query:     query,
		Variables: variables,
	}, out)
	if resp != nil {
		if remaining := resp.Header().Get("X-RateLimit-Remaining"); remaining != "" {
			c.log.Debug("graphql request finished", "operation", operation, "rate_limit_remaining", remaining)
		}
		switch resp.StatusCode() {
		case 401:
			return errm.Wrap(provider.ErrInvalidCredentials, operation)
		case 403:
			return errm.Wrap(provider.ErrRateLimited, operation)
		case 404:
			return errm.Wrap(provider.ErrNotFound, operation)
		}
	}
	if err != nil {
		return errm.Wrap(err, "graphql request "+operation)
	}
	return nil
}
