// Package llm layers cross-cutting behavior over structured-completion
// clients and decodes their answers into typed values.
package llm

import (
	"context"
	"fmt"

	llmclient "depdoctor/internal/llmClient"
	"depdoctor/internal/util/jsonutil"
)

// GenerateInto runs one completion for stage and decodes the answer into T.
// A payload that does not decode is reported as llmclient.ErrInvalidJSON.
func GenerateInto[T any](ctx context.Context, cli llmclient.LLMClient, stage, prompt string, input any) (T, error) {
	var out T
	raw, err := cli.GenerateJSON(llmclient.WithStage(ctx, stage), prompt, input)
	if err != nil {
		return out, fmt.Errorf("llm %s: %w", stage, err)
	}
	if err := jsonutil.UnmarshalFlex(raw, &out); err != nil {
		return out, fmt.Errorf("llm %s: %w: %v", stage, llmclient.ErrInvalidJSON, err)
	}
	return out, nil
}
