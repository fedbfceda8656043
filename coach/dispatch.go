package coach

import (
	"context"
	"fmt"
	"time"

	"github.com/threadlyhq/threadly-core/coach/provider"
)

// DefaultDispatchBudget caps how long a single provider call may take before
// the caller gets a timeout error.
const DefaultDispatchBudget = 30 * time.Second

// DispatchConfig selects the backend for one call.
type DispatchConfig struct {
	Provider   Provider
	Credential string
	Model      string // "" means the provider default
}

// Dispatcher routes a prompt to the adapter for the chosen provider and races
// the call against the time budget.
type Dispatcher struct {
	callers map[Provider]provider.Caller
	budget  time.Duration
}

// NewDispatcher wires the default adapter set. All adapters share the same
// system instructions.
func NewDispatcher(instructions string) *Dispatcher {
	return &Dispatcher{
		callers: map[Provider]provider.Caller{
			ProviderGemini:      provider.NewGemini(instructions),
			ProviderOpenAI:      provider.NewOpenAI(instructions),
			ProviderClaude:      provider.NewAnthropic(instructions),
			ProviderOpenRouter:  provider.NewOpenRouter(instructions),
			ProviderHuggingFace: provider.NewHuggingFace(instructions),
		},
		budget: DefaultDispatchBudget,
	}
}

// NewDispatcherWithCallers builds a dispatcher over an explicit adapter map,
// mainly for tests.
func NewDispatcherWithCallers(callers map[Provider]provider.Caller, budget time.Duration) *Dispatcher {
	if budget <= 0 {
		budget = DefaultDispatchBudget
	}
	return &Dispatcher{callers: callers, budget: budget}
}

type dispatchResult struct {
	text string
	err  error
}

// Dispatch sends the prompt to the configured provider and returns the raw
// completion text. A call that outlives the budget is abandoned; its goroutine
// drains into a buffered channel and its context is cancelled shortly after
// so the underlying HTTP request does not linger.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string, cfg DispatchConfig) (string, *AnalysisError) {
	caller, ok := d.callers[cfg.Provider]
	if !ok {
		return "", &AnalysisError{
			Kind:     ErrKindProvider,
			Provider: cfg.Provider,
			Message:  fmt.Sprintf("unsupported provider %q", cfg.Provider),
		}
	}

	// The call context gets a slightly larger deadline than the race so an
	// abandoned loser still terminates on its own.
	callCtx, cancel := context.WithTimeout(ctx, d.budget+5*time.Second)

	ch := make(chan dispatchResult, 1)
	go func() {
		defer cancel()
		text, err := caller.Call(callCtx, prompt, cfg.Credential, cfg.Model)
		ch <- dispatchResult{text: text, err: err}
	}()

	timer := time.NewTimer(d.budget)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return "", Classify(cfg.Provider, res.err)
		}
		return res.text, nil
	case <-timer.C:
		return "", &AnalysisError{
			Kind:     ErrKindTimeout,
			Provider: cfg.Provider,
			Message:  "Request timed out. Check your connection and try again.",
		}
	case <-ctx.Done():
		return "", Classify(cfg.Provider, ctx.Err())
	}
}
