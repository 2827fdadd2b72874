package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/prtriage/internal/app"
	"github.com/maxbolgarin/prtriage/internal/model"
)

var (
	Version, Branch, Commit, BuildDate string
)

var (
	configPath = kingpin.Flag("config", "path to config file").Short('c').String()

	serveCmd = kingpin.Command("serve", "start the webhook server")

	reviewCmd  = kingpin.Command("review", "run a full review of one pull request")
	reviewRepo = reviewCmd.Flag("repo", "repository in owner/name form").Required().String()
	reviewPR   = reviewCmd.Flag("pr", "pull request number").Required().Int()

	replyCmd     = kingpin.Command("reply", "reply to a review comment")
	replyRepo    = replyCmd.Flag("repo", "repository in owner/name form").Required().String()
	replyPR      = replyCmd.Flag("pr", "pull request number").Required().Int()
	replyComment = replyCmd.Flag("comment", "comment id to reply to").Required().String()
	replyMessage = replyCmd.Flag("message", "reply body, generated from the comment when omitted").String()
)

func main() {
	command := kingpin.Parse()

	var err error
	ctx := contem.New(contem.WithLogger(logze.DefaultPtr()), contem.Exit(&err))
	defer ctx.Shutdown()

	err = run(ctx, command)
	if err != nil {
		logze.DefaultPtr().Error("cannot run", "error", err)
	}
}

func run(ctx contem.Context, command string) error {
	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		return erro.Wrap(err, "load config")
	}

	level := logze.LevelInfo
	if cfg.LogLevel == "debug" {
		level = logze.LevelDebug
	}
	logze.Init(logze.C().WithConsole().WithLevel(level))

	service, err := app.New(ctx, cfg)
	if err != nil {
		return erro.Wrap(err, "create service")
	}

	switch command {
	case serveCmd.FullCommand():
		if err := service.StartWebhook(ctx); err != nil {
			return erro.Wrap(err, "start webhook")
		}
		<-ctx.Done()
		return nil

	case reviewCmd.FullCommand():
		ref, err := parseRef(*reviewRepo, *reviewPR)
		if err != nil {
			return err
		}
		result, err := service.ReviewPR(ctx, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			return erro.Wrap(err, "review pull request")
		}
		return printJSON(result)

	case replyCmd.FullCommand():
		ref, err := parseRef(*replyRepo, *replyPR)
		if err != nil {
			return err
		}
		result, err := service.ReplyToComment(ctx, ref, *replyComment, *replyMessage)
		if err != nil {
			return erro.Wrap(err, "reply to comment")
		}
		return printJSON(result)
	}

	return erro.New("unknown command: %s", command)
}

func parseRef(repo string, number int) (model.PullRequestRef, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return model.PullRequestRef{}, erro.New("invalid repo format, expected 'owner/name': %s", repo)
	}
	return model.PullRequestRef{Owner: owner, Repo: name, Number: number}, nil
}

func printJSON(v any) error {
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return erro.Wrap(err, "marshal result")
	}
	fmt.Println(string(out))
	return nil
}
