package llm

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	llmclient "depdoctor/internal/llmClient"
	"depdoctor/internal/tester"
)

type recordingHook struct{ events []string }

func (r *recordingHook) Before(_ context.Context, stage, prompt string, _ any) {
	r.events = append(r.events, "before:"+stage+":"+prompt)
}

func (r *recordingHook) After(_ context.Context, stage string, raw json.RawMessage, err error) {
	r.events = append(r.events, "after:"+stage+":"+string(raw))
}

func TestWithHookSeesStage(t *testing.T) {
	hook := &recordingHook{}
	fake := llmclient.NewFakeClient().Script("classify", `{"package_name":"bar"}`)
	cli := Wrap(fake, WithHook(hook))

	_, err := cli.GenerateJSON(llmclient.WithStage(context.Background(), "classify"), "P", nil)
	tester.NoErr(t, err)
	tester.Eq(t, hook.events, []string{"before:classify:P", `after:classify:{"package_name":"bar"}`})
}

func TestWithNilHookIsPassThrough(t *testing.T) {
	fake := llmclient.NewFakeClient()
	tester.True(t, Wrap(fake, WithHook(nil)) == llmclient.LLMClient(fake), "nil hook should not wrap")
}

func TestPromptSaverWritesTranscript(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	fake := llmclient.NewFakeClient().
		Script("summarize", `{"entries":[]}`).
		Fail("classify", errors.New("quota"))
	cli := Wrap(fake, WithHook(&PromptSaver{Dir: dir}))

	ctx := context.Background()
	_, err := cli.GenerateJSON(llmclient.WithStage(ctx, "summarize"), "SUMMARY PROMPT", map[string]string{"changelog": "<h2>2.0</h2>"})
	tester.NoErr(t, err)
	_, err = cli.GenerateJSON(llmclient.WithStage(ctx, "classify"), "CLASSIFY PROMPT", nil)
	tester.True(t, err != nil, "expected scripted failure")

	sum, err := os.ReadFile(filepath.Join(dir, "summarize.txt"))
	tester.NoErr(t, err)
	tester.Contains(t, string(sum), "SUMMARY PROMPT")
	tester.Contains(t, string(sum), `"changelog": "<h2>2.0</h2>"`)
	tester.Contains(t, string(sum), "[RESPONSE]\n{\"entries\":[]}")

	raw, err := os.ReadFile(filepath.Join(dir, "summarize.raw.json"))
	tester.NoErr(t, err)
	tester.Eq(t, string(raw), `{"entries":[]}`)

	cls, err := os.ReadFile(filepath.Join(dir, "classify.txt"))
	tester.NoErr(t, err)
	tester.True(t, strings.Contains(string(cls), "ERROR: quota"), "error recorded")
	_, err = os.Stat(filepath.Join(dir, "classify.raw.json"))
	tester.True(t, os.IsNotExist(err), "no raw dump on error")
}
