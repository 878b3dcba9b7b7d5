package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/amite/personal-triage-agent/internal/debuglog"
	"github.com/amite/personal-triage-agent/internal/llm"
	"github.com/amite/personal-triage-agent/internal/tools"
	"github.com/amite/personal-triage-agent/pkg/models"
)

const triageTemperature = 0.3

// Triager runs the full decomposition pipeline: prompt the LLM with a
// hard timeout, parse the untrusted response through the staged parser,
// and fall back to rule-based decomposition on any failure along the way.
type Triager struct {
	client   llm.Client
	prompts  *PromptBuilder
	parser   *ResponseParser
	fallback *FallbackParser
	timeout  time.Duration
	logger   *debuglog.Logger
}

// Options configures optional Triager collaborators.
type Options struct {
	// Timeout bounds the LLM call. Zero means no per-call timeout beyond
	// the caller's context.
	Timeout time.Duration
	// FallbackTokenLimit bounds the generic fallback task content.
	FallbackTokenLimit int
	// Logger receives pipeline diagnostics. Nil disables logging.
	Logger *debuglog.Logger
}

// New creates a Triager. client may be nil, in which case every request
// goes straight to the fallback parser.
func New(client llm.Client, registry *tools.Registry, opts Options) *Triager {
	return &Triager{
		client:   client,
		prompts:  NewPromptBuilder(registry),
		parser:   NewResponseParser(registry),
		fallback: NewFallbackParser(opts.FallbackTokenLimit),
		timeout:  opts.Timeout,
		logger:   opts.Logger,
	}
}

// ParseRequest decomposes a request into tasks. It is total: LLM
// transport failures, timeouts, and unparseable output all route to the
// fallback parser, so the returned result always has at least one task.
func (t *Triager) ParseRequest(ctx context.Context, request string) *models.ParseResult {
	if t.client == nil {
		t.logf("triage: no llm client, using fallback")
		return t.fallback.Parse(request)
	}

	response, err := t.generate(ctx, request)
	if err != nil {
		t.logf("triage: llm call failed, using fallback: %v", err)
		return t.fallback.Parse(request)
	}

	result, err := t.parser.Parse(response)
	if err != nil {
		t.logf("triage: response unparseable, using fallback: %v", err)
		return t.fallback.Parse(request)
	}

	for _, warning := range result.Warnings {
		t.logf("triage: %s", warning)
	}
	return result
}

func (t *Triager) generate(ctx context.Context, request string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	response, err := t.client.Generate(ctx, t.prompts.Build(request), triageTemperature)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return response, nil
}

func (t *Triager) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Log(format, args...)
	}
}
