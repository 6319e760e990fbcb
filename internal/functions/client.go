// Package functions calls the platform's hosted serverless endpoints.
package functions

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mindhouselabs/miod/internal/affect"
	"github.com/mindhouselabs/miod/internal/config"
)

const defaultTimeout = 30 * time.Second

// Client invokes hosted functions with service-key auth. Calls are not
// retried; the caller decides what a failure means.
type Client struct {
	http     *resty.Client
	validate *validator.Validate
	logger   *zap.Logger
}

// New builds a function client from config.
func New(cfg config.FunctionsConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.ServiceKey).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:     http,
		validate: validator.New(),
		logger:   logger,
	}
}

func (c *Client) post(ctx context.Context, name string, body, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		Post("/" + name)
	if err != nil {
		return fmt.Errorf("calling function %s: %w", name, err)
	}
	if resp.IsError() {
		return fmt.Errorf("function %s returned %d", name, resp.StatusCode())
	}
	return nil
}

// AnalyzeAffect calls the hosted affect analyzer. Satisfies
// affect.Overrider.
func (c *Client) AnalyzeAffect(ctx context.Context, message string) (*affect.RemoteResult, error) {
	req := analyzeRequest{Message: message}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid affect-analyze request: %w", err)
	}

	var out affect.RemoteResult
	if err := c.post(ctx, "affect-analyze", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CoachReply asks the hosted coach function for the next reply.
func (c *Client) CoachReply(ctx context.Context, req CoachReplyRequest) (*CoachReplyResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid coach-reply request: %w", err)
	}

	var out CoachReplyResponse
	if err := c.post(ctx, "coach-reply", req, &out); err != nil {
		return nil, err
	}

	c.logger.Debug("coach reply received",
		zap.String("conversation_id", req.ConversationID),
		zap.Int("reply_len", len(out.Reply)))
	return &out, nil
}

// TagSync pushes a user's tags to the CRM.
func (c *Client) TagSync(ctx context.Context, req TagSyncRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid tag-sync request: %w", err)
	}

	var out tagSyncResponse
	if err := c.post(ctx, "tag-sync", req, &out); err != nil {
		return err
	}
	if !out.Synced {
		return fmt.Errorf("tag-sync for %s not applied", req.UserID)
	}
	return nil
}

// BinderGenerate renders a user's season binder and returns where the
// generated document was stored.
func (c *Client) BinderGenerate(ctx context.Context, req BinderRequest) (*BinderResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid binder-generate request: %w", err)
	}

	var out BinderResponse
	if err := c.post(ctx, "binder-generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Embed returns embeddings for a batch of texts from the hosted embed
// function.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out embedResponse
	if err := c.post(ctx, "embed", embedRequest{Texts: texts}, &out); err != nil {
		return nil, err
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed returned %d vectors for %d texts", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}
