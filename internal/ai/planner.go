package ai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"

	"github.com/sunstone-app/sunstone/internal/types"
)

// Model selection is tiered by task weight: full-day plans get the
// high-end model, swap and party suggestions the cost-efficient one.
const (
	// ModelSonnet is the high-end model for full plan generation.
	ModelSonnet = "claude-sonnet-4-5-20250929"

	// ModelHaiku is the cost-efficient model for swap suggestions.
	ModelHaiku = "claude-3-5-haiku-20241022"
)

// GetDefaultModel returns the planning model, honoring SUNSTONE_MODEL.
func GetDefaultModel() string {
	if model := os.Getenv("SUNSTONE_MODEL"); model != "" {
		return model
	}
	return ModelSonnet
}

// GetSwapModel returns the swap-suggestion model, honoring
// SUNSTONE_MODEL_SWAP.
func GetSwapModel() string {
	if model := os.Getenv("SUNSTONE_MODEL_SWAP"); model != "" {
		return model
	}
	return ModelHaiku
}

// Planner drafts candidate plan and swap documents via the Anthropic API.
// It implements the Proposer contract: failures degrade to the tagged
// no-result sentinels, never to errors, so the engine's deterministic
// validation and fallback paths stay in charge.
type Planner struct {
	client         *anthropic.Client
	model          string
	swapModel      string
	retry          RetryConfig
	circuitBreaker *CircuitBreaker
	concurrencySem *semaphore.Weighted
}

var _ types.Proposer = (*Planner)(nil)

// Config holds planner configuration.
type Config struct {
	// APIKey is the Anthropic API key. Empty reads ANTHROPIC_API_KEY.
	APIKey string

	// Model overrides the plan-generation model.
	Model string

	// SwapModel overrides the swap-suggestion model.
	SwapModel string

	// Retry overrides the retry configuration (defaults if zero).
	Retry RetryConfig
}

// NewPlanner creates a planner backed by the Anthropic API.
func NewPlanner(cfg *Config) (*Planner, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel()
	}
	swapModel := cfg.SwapModel
	if swapModel == "" {
		swapModel = GetSwapModel()
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 && retry.Timeout == 0 {
		retry = DefaultRetryConfig()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	var circuitBreaker *CircuitBreaker
	if retry.CircuitBreakerEnabled {
		circuitBreaker = NewCircuitBreaker(retry.FailureThreshold, retry.SuccessThreshold, retry.OpenTimeout)
	}
	var concurrencySem *semaphore.Weighted
	if retry.MaxConcurrentCalls > 0 {
		concurrencySem = semaphore.NewWeighted(int64(retry.MaxConcurrentCalls))
	}

	return &Planner{
		client:         &client,
		model:          model,
		swapModel:      swapModel,
		retry:          retry,
		circuitBreaker: circuitBreaker,
		concurrencySem: concurrencySem,
	}, nil
}

// ProposePlan drafts a candidate full-day plan. Any failure, from network
// to malformed output, is reported through the Unavailable sentinel.
func (p *Planner) ProposePlan(ctx context.Context, pc *types.PlannerContext) types.PlanProposal {
	if pc == nil {
		return types.Unavailable("no planner context")
	}

	text, err := p.complete(ctx, "plan proposal", p.model, buildPlanPrompt(pc))
	if err != nil {
		slog.Warn("plan proposal unavailable", "user", pc.UserID, "date", pc.Date, "error", err)
		return types.Unavailable(fmt.Sprintf("proposal call failed: %v", err))
	}

	result := Parse[types.PlanDocument](text, ParseOptions{Context: "plan proposal"})
	if !result.Success {
		slog.Warn("plan proposal unparseable", "user", pc.UserID, "date", pc.Date, "error", result.Error)
		return types.Unavailable(result.Error)
	}
	doc := result.Data
	return types.PlanProposal{Doc: &doc}
}

// ProposeSwaps drafts a candidate swap set against the pending missions.
// The ceiling in sc is advisory for the model; enforcement stays with the
// caller.
func (p *Planner) ProposeSwaps(ctx context.Context, sc *types.SwapContext) types.SwapProposal {
	if sc == nil {
		return types.SwapUnavailable("no swap context")
	}

	text, err := p.complete(ctx, "swap proposal", p.swapModel, buildSwapPrompt(sc))
	if err != nil {
		slog.Warn("swap proposal unavailable", "user", sc.UserID, "date", sc.Date, "error", err)
		return types.SwapUnavailable(fmt.Sprintf("proposal call failed: %v", err))
	}

	result := Parse[types.SwapDocument](text, ParseOptions{Context: "swap proposal"})
	if !result.Success {
		slog.Warn("swap proposal unparseable", "user", sc.UserID, "date", sc.Date, "error", result.Error)
		return types.SwapUnavailable(result.Error)
	}
	doc := result.Data
	return types.SwapProposal{Doc: &doc}
}

// complete sends a single-turn prompt and returns the concatenated text
// content of the response.
func (p *Planner) complete(ctx context.Context, operation, model, prompt string) (string, error) {
	var response *anthropic.Message
	err := p.retryWithBackoff(ctx, operation, func(attemptCtx context.Context) error {
		resp, apiErr := p.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(model),
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", err
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
