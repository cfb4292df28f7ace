package generator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"brightpath/internal/llm"
)

// ProviderDeterministic is the provenance name for the fallback generator.
const ProviderDeterministic = "deterministic"

const draftMaxTokens = 1024

// ErrDuplicate indicates two consecutive drafts duplicated an existing
// question text in the same session. This points at provider degeneracy
// rather than a caller mistake.
var ErrDuplicate = errors.New("unable to generate a fresh question")

// Generator orchestrates question generation: provider selection,
// retries, draft validation and duplicate re-rolls.
type Generator struct {
	cfg      Config
	provider llm.Provider // nil selects the deterministic generator
}

// New builds a Generator from configuration. A configured provider with
// a missing credential is a fatal configuration error. An empty provider
// name, or disabled live calls, selects the deterministic generator.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.Provider == "" || !cfg.LiveCallsEnabled {
		return &Generator{cfg: cfg}, nil
	}

	if cfg.Credential == "" {
		return nil, fmt.Errorf("credential is missing for provider %q", cfg.Provider)
	}

	var provider llm.Provider
	var err error
	switch cfg.Provider {
	case "openai":
		provider, err = llm.NewOpenAIProvider(cfg.Credential, cfg.Model)
	case "cerebras":
		provider, err = llm.NewCerebrasProvider(cfg.Credential, cfg.Model)
	case "anthropic":
		provider, err = llm.NewAnthropicProvider(cfg.Credential, cfg.Model)
	case "gemini":
		provider, err = llm.NewGeminiProvider(ctx, cfg.Credential, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q, must be one of: openai, cerebras, anthropic, gemini", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return &Generator{cfg: cfg, provider: provider}, nil
}

// NewWithProvider builds a Generator around an existing provider.
// Used by tests to inject a mock.
func NewWithProvider(cfg Config, provider llm.Provider) *Generator {
	return &Generator{cfg: cfg, provider: provider}
}

// Generate produces one finalized question draft. existingTexts holds
// the question texts already generated in the session; an exact match
// triggers a single re-roll with an incremented seed before failing.
func (g *Generator) Generate(ctx context.Context, req Request, existingTexts []string) (*Result, error) {
	result, err := g.draft(ctx, req)
	if err != nil {
		return nil, err
	}

	if !containsText(existingTexts, result.Draft.QuestionText) {
		return result, nil
	}

	retry := req
	retry.Seed++
	result, err = g.draft(ctx, retry)
	if err != nil {
		return nil, err
	}
	if containsText(existingTexts, result.Draft.QuestionText) {
		return nil, ErrDuplicate
	}
	return result, nil
}

// draft produces a single validated draft, retrying provider and
// validation failures up to MaxRetries additional times.
func (g *Generator) draft(ctx context.Context, req Request) (*Result, error) {
	if g.provider == nil {
		return &Result{
			Draft: Deterministic(req),
			Provenance: Provenance{
				Provider: ProviderDeterministic,
				Attempts: 1,
				Seed:     req.Seed,
			},
		}, nil
	}

	llmReq := llm.Request{
		System:    systemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: userPrompt(req)}},
		Schema:    draftSchema(req.MaxHints),
		MaxTokens: draftMaxTokens,
	}

	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxRetries+1; attempt++ {
		draft, model, err := g.callOnce(ctx, llmReq, req)
		if err == nil {
			return &Result{
				Draft: draft,
				Provenance: Provenance{
					Provider: g.cfg.Provider,
					Model:    model,
					Attempts: attempt,
					Seed:     req.Seed,
				},
			}, nil
		}
		lastErr = err
		if attempt <= g.cfg.MaxRetries {
			log.Printf("question generation attempt %d/%d failed: %v", attempt, g.cfg.MaxRetries+1, err)
		}
	}

	return nil, fmt.Errorf("failed to generate question from %s: %w", g.cfg.Provider, lastErr)
}

func (g *Generator) callOnce(ctx context.Context, llmReq llm.Request, req Request) (Draft, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.provider.Generate(callCtx, llmReq)
	if err != nil {
		return Draft{}, "", err
	}

	draft, err := ParseDraft(resp.Content, req)
	if err != nil {
		return Draft{}, "", err
	}

	model := resp.Model
	if model == "" {
		model = g.provider.ModelID()
	}
	return draft, model, nil
}

func containsText(texts []string, target string) bool {
	for _, t := range texts {
		if t == target {
			return true
		}
	}
	return false
}
