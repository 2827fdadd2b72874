package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/errm"

	"github.com/maxbolgarin/prtriage/internal/model"
	"github.com/maxbolgarin/prtriage/internal/provider"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Webhook event types the automation handles.
const (
	eventTypeReview        = "pull_request_review"
	eventTypeIssueComment  = "issue_comment"
	eventTypeReviewComment = "pull_request_review_comment"
	eventTypeStatus        = "status"
)

// ValidateWebhook checks the X-Hub-Signature-256 header against the
// configured secret. No secret configured means validation is skipped.
func (p *Provider) ValidateWebhook(payload []byte, signature string) error {
	if p.config.WebhookSecret == "" {
		return nil
	}

	if !strings.HasPrefix(signature, "sha256=") {
		return errm.New("invalid signature format")
	}
	expected := strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(p.config.WebhookSecret))
	mac.Write(payload)
	calculated := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(calculated)) {
		return errm.New("webhook signature verification failed")
	}
	return nil
}

// ParseWebhookEvent converts a raw webhook delivery into a typed event.
// Event types outside the handled set return ErrUnsupportedEvent.
func (p *Provider) ParseWebhookEvent(eventType string, payload []byte) (model.Event, error) {
	switch eventType {
	case eventTypeReview:
		return parseReviewEvent(payload)
	case eventTypeIssueComment:
		return parseIssueCommentEvent(payload)
	case eventTypeReviewComment:
		return parseReviewCommentEvent(payload)
	case eventTypeStatus:
		return parseStatusEvent(payload)
	default:
		return nil, errm.Wrap(provider.ErrUnsupportedEvent, eventType)
	}
}

func parseReviewEvent(payload []byte) (model.Event, error) {
	var body reviewEventPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, errm.Wrap(err, "parse review payload")
	}

	return model.ReviewEvent{
		EventBase: model.EventBase{
			PR:         prRef(body.Repository.FullName, body.PullRequest.Number),
			ActorLogin: body.Review.User.Login,
			ActorName:  body.Review.User.Name,
			EventID:    fmt.Sprintf("review-%d", body.Review.ID),
		},
		State: model.ReviewState(strings.ToUpper(body.Review.State)),
		Body:  body.Review.Body,
	}, nil
}

func parseIssueCommentEvent(payload []byte) (model.Event, error) {
	var body issueCommentPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, errm.Wrap(err, "parse issue comment payload")
	}
	if body.Issue.PullRequest == nil {
		return nil, errm.Wrap(provider.ErrUnsupportedEvent, "issue comment outside a pull request")
	}

	return model.CommentEvent{
		EventBase: model.EventBase{
			PR:         prRef(body.Repository.FullName, body.Issue.Number),
			ActorLogin: body.Comment.User.Login,
			ActorName:  body.Comment.User.Name,
			EventID:    fmt.Sprintf("comment-%d", body.Comment.ID),
		},
		CommentID: strconv.FormatInt(body.Comment.ID, 10),
		Body:      body.Comment.Body,
	}, nil
}

func parseReviewCommentEvent(payload []byte) (model.Event, error) {
	var body reviewCommentPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, errm.Wrap(err, "parse review comment payload")
	}

	event := model.CommentEvent{
		EventBase: model.EventBase{
			PR:         prRef(body.Repository.FullName, body.PullRequest.Number),
			ActorLogin: body.Comment.User.Login,
			ActorName:  body.Comment.User.Name,
			EventID:    fmt.Sprintf("comment-%d", body.Comment.ID),
		},
		CommentID: strconv.FormatInt(body.Comment.ID, 10),
		Body:      body.Comment.Body,
		Path:      body.Comment.Path,
		Line:      body.Comment.Line,
	}
	if body.Comment.InReplyTo != 0 {
		event.InReplyTo = strconv.FormatInt(body.Comment.InReplyTo, 10)
	}
	return event, nil
}

func parseStatusEvent(payload []byte) (model.Event, error) {
	var body statusEventPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, errm.Wrap(err, "parse status payload")
	}

	// Status events carry no PR number, only the head SHA.
	return model.StatusEvent{
		EventBase: model.EventBase{
			PR:         prRef(body.Repository.FullName, 0),
			ActorLogin: body.Sender.Login,
			ActorName:  body.Sender.Name,
			EventID:    fmt.Sprintf("status-%d", body.ID),
		},
		State:     model.StatusState(body.State),
		Context:   body.Context,
		TargetURL: body.TargetURL,
	}, nil
}

func prRef(fullName string, number int) model.PullRequestRef {
	ref := model.PullRequestRef{Number: number}
	if owner, repo, ok := strings.Cut(fullName, "/"); ok {
		ref.Owner = owner
		ref.Repo = repo
	}
	return ref
}
