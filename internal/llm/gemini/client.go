package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/medview/labreport/internal/llm"
)

// Client implements llm.Generator against the Gemini API. With no
// credential configured it constructs in disabled mode: every call
// returns llm.ErrUnavailable and the pipeline stages degrade per their
// documented fallbacks.
type Client struct {
	cfg    Config
	client *genai.Client // nil when disabled
	logger *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	logger = ensureLogger(logger)

	if cfg.APIKey == "" {
		logger.Warn("llm.gemini.disabled", "hint", "GEMINI_API_KEY not configured")
		return &Client{cfg: cfg, logger: logger}, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	logger.Info("llm.gemini.ready", "model", cfg.Model)
	return &Client{cfg: cfg, client: gc, logger: logger}, nil
}

// Available reports whether a backend credential is configured.
func (c *Client) Available() bool {
	return c.client != nil
}

// Generate sends one instruction and returns the raw response text.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	if c.client == nil {
		return "", llm.ErrUnavailable
	}

	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", req.Temperature,
		"max_tokens", req.MaxOutputTokens,
		"prompt_len", len(req.Prompt),
	)

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	res, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxOutputTokens,
	})
	if err != nil {
		c.logger.Error("llm.generate.failed",
			"req_id", rid,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := res.Text()
	if text == "" {
		c.logger.Error("llm.generate.empty", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("gemini: empty response")
	}

	c.logger.Info("llm.generate.ok",
		"req_id", rid,
		"resp_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
