package llmclient

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeCall records one request made to a FakeClient.
type FakeCall struct {
	Stage  string
	Prompt string
	Input  any
}

// FakeClient returns scripted JSON per stage for offline runs and tests.
// Stages without a script get a minimal deterministic payload.
type FakeClient struct {
	mu        sync.Mutex
	responses map[string]json.RawMessage
	errs      map[string]error
	calls     []FakeCall
}

func NewFakeClient() *FakeClient {
	return &FakeClient{responses: map[string]json.RawMessage{}, errs: map[string]error{}}
}

// Script sets the raw JSON returned for stage.
func (f *FakeClient) Script(stage, raw string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[stage] = json.RawMessage(raw)
	return f
}

// Fail makes calls for stage return err.
func (f *FakeClient) Fail(stage string, err error) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[stage] = err
	return f
}

// Calls returns the recorded requests in order.
func (f *FakeClient) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeCall(nil), f.calls...)
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	stage := StageFrom(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, FakeCall{Stage: stage, Prompt: prompt, Input: input})
	if err, ok := f.errs[stage]; ok {
		return nil, err
	}
	if raw, ok := f.responses[stage]; ok {
		return raw, nil
	}
	switch stage {
	case "classify":
		return json.RawMessage(`{"package_name":"unknown"}`), nil
	case "summarize":
		return json.RawMessage(`{"entries":[]}`), nil
	default:
		return json.RawMessage(`{}`), nil
	}
}
