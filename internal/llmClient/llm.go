package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrInvalidJSON = errors.New("invalid json from LLM")

// LLMClient is a structured-completion backend: it sends a prompt plus a JSON
// input and returns the model's JSON answer.
type LLMClient interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

type stageKey struct{}

// WithStage tags ctx with the pipeline stage issuing a completion.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey{}, stage)
}

// StageFrom returns the stage stored in ctx, or "unknown".
func StageFrom(ctx context.Context) string {
	if v := ctx.Value(stageKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

func inputJSON(input any) string {
	in, _ := json.MarshalIndent(input, "", "  ")
	return "[INPUT JSON]\n" + string(in)
}
