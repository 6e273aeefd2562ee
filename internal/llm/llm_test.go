package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	llmclient "depdoctor/internal/llmClient"
	"depdoctor/internal/tester"
)

type flaky struct {
	errs  []error
	calls int
	out   json.RawMessage
}

func (f *flaky) Name() string { return "flaky" }
func (f *flaky) Close() error { return nil }
func (f *flaky) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return nil, f.errs[f.calls-1]
	}
	return f.out, nil
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	inner := &flaky{errs: []error{errors.New("503"), errors.New("503")}, out: json.RawMessage(`{}`)}
	cli := Wrap(inner, Retry(3, time.Millisecond))
	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, inner.calls, 3)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	inner := &flaky{errs: []error{llmclient.NewPermanentError(errors.New("401"))}}
	cli := Wrap(inner, Retry(5, time.Millisecond))
	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	tester.True(t, err != nil, "expected error")
	tester.Eq(t, inner.calls, 1)
}

func TestRetrySingleAttemptMeansNoRetry(t *testing.T) {
	inner := &flaky{errs: []error{errors.New("boom")}}
	cli := Wrap(inner, Retry(1, time.Millisecond))
	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	tester.True(t, err != nil, "expected error")
	tester.Eq(t, inner.calls, 1)
}

func TestRetryHonorsCanceledContext(t *testing.T) {
	rl := &llmclient.RateLimitError{
		Headers: llmclient.RateLimitHeaders{RetryAfterSeconds: 60},
		Err:     errors.New(http.StatusText(http.StatusTooManyRequests)),
	}
	inner := &flaky{errs: []error{rl, rl}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Wrap(inner, Retry(2, time.Millisecond)).GenerateJSON(ctx, "p", nil)
	tester.ErrIs(t, err, context.DeadlineExceeded)
	tester.Eq(t, inner.calls, 1)
}

func TestWithLoggingRecordsStage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	inner := &flaky{out: json.RawMessage(`{"ok":true}`)}
	cli := Wrap(inner, WithLogging(logger))

	ctx := llmclient.WithStage(context.Background(), "classify")
	_, err := cli.GenerateJSON(ctx, "prompt", map[string]string{"a": "b"})
	tester.NoErr(t, err)
	tester.Contains(t, buf.String(), "stage=classify")
	tester.Contains(t, buf.String(), "LLM response")
	tester.Eq(t, cli.Name(), "flaky")
}

type answer struct {
	PackageName string `json:"package_name"`
}

func TestGenerateIntoDecodes(t *testing.T) {
	fake := llmclient.NewFakeClient().Script("classify", `{"package_name":"jackson"}`)
	got, err := GenerateInto[answer](context.Background(), fake, "classify", "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, got.PackageName, "jackson")
	tester.Eq(t, fake.Calls()[0].Stage, "classify")
}

func TestGenerateIntoMalformedIsInvalidJSON(t *testing.T) {
	fake := llmclient.NewFakeClient().Script("classify", `["not","an","object"]`)
	_, err := GenerateInto[answer](context.Background(), fake, "classify", "p", nil)
	tester.ErrIs(t, err, llmclient.ErrInvalidJSON)
}

func TestGenerateIntoPropagatesClientError(t *testing.T) {
	boom := errors.New("boom")
	fake := llmclient.NewFakeClient().Fail("summarize", boom)
	_, err := GenerateInto[answer](context.Background(), fake, "summarize", "p", nil)
	tester.ErrIs(t, err, boom)
}
