package llm

import (
	"context"
	"encoding/json"

	llmclient "depdoctor/internal/llmClient"
)

// PromptHook observes every completion call. Implementations must not block
// for long or panic.
type PromptHook interface {
	Before(ctx context.Context, stage, prompt string, input any)
	After(ctx context.Context, stage string, raw json.RawMessage, err error)
}

// WithHook calls hook around each GenerateJSON. A nil hook is a no-op.
func WithHook(hook PromptHook) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		if hook == nil {
			return next
		}
		return &hooked{next: next, hook: hook}
	}
}

type hooked struct {
	next llmclient.LLMClient
	hook PromptHook
}

func (h *hooked) Name() string { return h.next.Name() }
func (h *hooked) Close() error { return h.next.Close() }

func (h *hooked) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	stage := llmclient.StageFrom(ctx)
	h.hook.Before(ctx, stage, prompt, input)
	raw, err := h.next.GenerateJSON(ctx, prompt, input)
	h.hook.After(ctx, stage, raw, err)
	return raw, err
}
