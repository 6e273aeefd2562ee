package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	llmclient "depdoctor/internal/llmClient"
)

// WithLogging logs request size, latency and errors. A nil logger uses
// slog.Default().
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.LLMClient
	log  *slog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.Marshal(input)
	stage := llmclient.StageFrom(ctx)
	l.log.Debug("LLM request", "client", l.next.Name(), "stage", stage, "bytes", len(prompt)+len(in))
	start := time.Now()
	raw, err := l.next.GenerateJSON(ctx, prompt, input)
	if err != nil {
		l.log.Warn("LLM error", "client", l.next.Name(), "stage", stage, "err", err)
		return raw, err
	}
	l.log.Info("LLM response", "client", l.next.Name(), "stage", stage, "bytes", len(raw), "elapsed", time.Since(start))
	return raw, err
}
