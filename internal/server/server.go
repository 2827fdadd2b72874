// Package server exposes the GitHub webhook endpoint.
package server

import (
	"context"
	"net/http"

	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"

	"github.com/maxbolgarin/prtriage/internal/model"
	"github.com/maxbolgarin/prtriage/internal/provider"
	"github.com/maxbolgarin/prtriage/internal/reviewer"
)

// GitHub webhook delivery headers.
const (
	headerSignature = "X-Hub-Signature-256"
	headerEvent     = "X-GitHub-Event"
	headerDelivery  = "X-GitHub-Delivery"
)

// Server handles webhook requests from GitHub.
type Server struct {
	provider model.PRProvider
	reviewer *reviewer.Reviewer
	store    model.ThreadStore
	config   Config
	log      logze.Logger
	server   *servex.Server
}

// New creates a new webhook server.
func New(cfg Config, prov model.PRProvider, rev *reviewer.Reviewer, store model.ThreadStore) (*Server, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	log := logze.With("module", "server")

	server, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithDefaultMetrics(),
		servex.WithCertificate(cfg.Certificate),
	)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create server")
	}

	h := &Server{
		provider: prov,
		reviewer: rev,
		store:    store,
		config:   cfg,
		log:      log,
		server:   server,
	}

	server.HandleFunc(cfg.Endpoint, h.handleWebhook)
	server.HandleFunc("/readyz", h.handleReady)

	return h, nil
}

// Start starts the webhook server.
func (h *Server) Start(ctx context.Context) error {
	if h.config.EnableHTTPS {
		return h.server.StartHTTPS(h.config.Address)
	}
	return h.server.StartHTTP(h.config.Address)
}

// Stop stops the webhook server.
func (h *Server) Stop(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// handleWebhook verifies, parses and dispatches one webhook delivery.
// Processing is asynchronous: a valid delivery is acknowledged with 202
// before its actions are applied.
func (h *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	body, err := ctx.Read()
	if err != nil {
		ctx.BadRequest(err, "failed to read webhook body")
		return
	}

	if err := h.provider.ValidateWebhook(body, r.Header.Get(headerSignature)); err != nil {
		ctx.Unauthorized(err, "webhook validation failed")
		return
	}

	eventType := r.Header.Get(headerEvent)
	event, err := h.provider.ParseWebhookEvent(eventType, body)
	if err != nil {
		if errm.Is(err, provider.ErrUnsupportedEvent) {
			h.log.Debug("ignoring webhook event", "event_type", eventType)
			ctx.Response(http.StatusOK)
			return
		}
		ctx.BadRequest(err, "failed to parse webhook event")
		return
	}

	base := event.Base()
	h.log.Info("received webhook event",
		"event_type", eventType,
		"event_id", base.EventID,
		"delivery", r.Header.Get(headerDelivery),
		"actor", base.ActorLogin,
	)

	if err := h.reviewer.HandleEvent(ctx, event); err != nil {
		ctx.InternalServerError(err, "failed to handle event")
		return
	}

	ctx.Response(http.StatusAccepted)
}

// handleReady reports readiness including storage health.
func (h *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	if h.store != nil {
		if err := h.store.Health(r.Context()); err != nil {
			ctx.InternalServerError(err, "storage is not healthy")
			return
		}
	}
	ctx.Response(http.StatusOK)
}
