// Package classifier decides which target table(s) a source collection maps
// to. The remote completion service is the primary classifier; the rule
// engine reproduces equivalent decisions offline and serves as the mandatory
// fallback when every configured model fails.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/apperrors"
	"github.com/ledgermap/ledgermap-engine/pkg/llm"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
	"github.com/ledgermap/ledgermap-engine/pkg/retry"
	"github.com/ledgermap/ledgermap-engine/pkg/rules"
)

// Config is the immutable per-run classifier configuration. Each pipeline
// run constructs its own Classifier from it, so model-rotation state never
// leaks between runs.
type Config struct {
	Models      []llm.ModelConfig
	MaxAttempts int
	Backoff     time.Duration
	Temperature float64
}

// Classifier maps analyzed collections onto the target catalog.
type Classifier struct {
	cfg     Config
	clients []llm.Client
	rules   *rules.Engine
	logger  *zap.Logger
}

// New constructs a classifier, creating one client per configured model.
func New(cfg Config, ruleEngine *rules.Engine, logger *zap.Logger) (*Classifier, error) {
	if len(cfg.Models) == 0 {
		return nil, apperrors.ErrNoModelsConfig
	}

	clients := make([]llm.Client, 0, len(cfg.Models))
	for _, mc := range cfg.Models {
		client, err := llm.New(mc, logger)
		if err != nil {
			return nil, fmt.Errorf("create client for %s: %w", mc.Model, err)
		}
		clients = append(clients, client)
	}
	return NewWithClients(cfg, clients, ruleEngine, logger), nil
}

// NewWithClients constructs a classifier over pre-built clients. Used by
// tests to inject mocks.
func NewWithClients(cfg Config, clients []llm.Client, ruleEngine *rules.Engine, logger *zap.Logger) *Classifier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	return &Classifier{
		cfg:     cfg,
		clients: clients,
		rules:   ruleEngine,
		logger:  logger.Named("classifier"),
	}
}

// Classify asks the completion service for a table mapping, retrying each
// model up to MaxAttempts with linear backoff and rotating to the next model
// on exhaustion. The returned mapping is always validated against the
// catalog; hallucinated tables and columns never survive.
func (c *Classifier) Classify(ctx context.Context, a *models.CollectionAnalysis) (*models.MappingResult, error) {
	if len(c.clients) == 0 {
		return nil, apperrors.ErrNoModelsConfig
	}

	prompt := buildPrompt(a)
	system := buildSystemMessage()
	retryCfg := &retry.Config{MaxAttempts: c.cfg.MaxAttempts, Delay: c.cfg.Backoff}

	var errs []error
	for _, client := range c.clients {
		result, err := retry.DoWithResult(ctx, retryCfg, func() (*models.MappingResult, error) {
			raw, err := client.Complete(ctx, prompt, system, c.cfg.Temperature)
			if err != nil {
				return nil, err
			}
			parsed, err := parseResponse(raw)
			if err != nil {
				// Malformed output is transient: the next attempt may
				// produce parseable JSON.
				return nil, llm.NewError(llm.ErrorTypeResponse, "malformed mapping response", true, err, client.Model())
			}
			return c.validate(parsed, a), nil
		})
		if err == nil {
			c.logger.Info("collection classified",
				zap.String("collection", a.CollectionID),
				zap.String("model", client.Model()),
				zap.Int("tables", len(result.Tables)),
				zap.Int("unmapped", len(result.UnmappedFields)))
			return result, nil
		}

		c.logger.Warn("model exhausted, rotating",
			zap.String("collection", a.CollectionID),
			zap.String("model", client.Model()),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", client.Model(), err))
	}

	return nil, fmt.Errorf("all models failed: %w", errors.Join(errs...))
}

// DetermineMapping never fails: when every configured model is exhausted it
// falls back to the deterministic rule engine. The rule engine is purely a
// fallback, not a second vote.
func (c *Classifier) DetermineMapping(ctx context.Context, a *models.CollectionAnalysis) *models.MappingResult {
	result, err := c.Classify(ctx, a)
	if err == nil {
		return result
	}

	c.logger.Warn("classifier unavailable, using rule engine",
		zap.String("collection", a.CollectionID),
		zap.Error(err))
	return c.rules.Classify(a)
}
