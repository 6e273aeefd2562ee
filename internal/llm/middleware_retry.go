package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	llmclient "depdoctor/internal/llmClient"
)

// Retry retries GenerateJSON up to maxAttempts with exponential backoff
// starting at baseDelay. Rate-limited responses wait for the provider's
// suggested delay instead when it is longer. maxAttempts of 1 disables retry.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next llmclient.LLMClient
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	var last error
	for i := 0; i < r.max; i++ {
		resp, err := r.next.GenerateJSON(ctx, prompt, input)
		if err == nil {
			return resp, nil
		}
		var pErr *llmclient.PermanentError
		if errors.As(err, &pErr) {
			return nil, err
		}
		last = err
		if i == r.max-1 {
			break
		}
		delay := r.base * time.Duration(1<<i)
		var rl *llmclient.RateLimitError
		if errors.As(err, &rl) && rl.Wait() > delay {
			delay = rl.Wait()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, last
}
