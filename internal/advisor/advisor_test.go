package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmclient "depdoctor/internal/llmClient"
	"depdoctor/internal/llmtool"
)

func TestClassifierReturnsPackage(t *testing.T) {
	fake := llmclient.NewFakeClient().Script(StageClassify, `{"package_name":" bar "}`)
	c := &Classifier{LLM: fake}

	got, err := c.Run(context.Background(), "ERROR: class Foo not found in bar-core")
	require.NoError(t, err)
	assert.Equal(t, "bar", got.PackageName)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, StageClassify, calls[0].Stage)
	assert.Contains(t, calls[0].Prompt, "[PURPOSE]")
	assert.Contains(t, calls[0].Prompt, "package_name")
	assert.Equal(t, map[string]any{"errors": "ERROR: class Foo not found in bar-core"}, calls[0].Input)
}

func TestClassifierAcceptsFencedJSON(t *testing.T) {
	fake := llmclient.NewFakeClient().Script(StageClassify, "```json\n{\"package_name\":\"jackson\"}\n```")
	got, err := (&Classifier{LLM: fake}).Run(context.Background(), "ERROR: x")
	require.NoError(t, err)
	assert.Equal(t, "jackson", got.PackageName)
}

func TestClassifierMalformedIsInvalidJSON(t *testing.T) {
	fake := llmclient.NewFakeClient().Script(StageClassify, `not json`)
	_, err := (&Classifier{LLM: fake}).Run(context.Background(), "ERROR: x")
	assert.ErrorIs(t, err, llmclient.ErrInvalidJSON)
	assert.Len(t, fake.Calls(), 1)
}

func TestClassifierEmptyName(t *testing.T) {
	fake := llmclient.NewFakeClient().Script(StageClassify, `{"package_name":""}`)
	_, err := (&Classifier{LLM: fake}).Run(context.Background(), "ERROR: x")
	assert.ErrorIs(t, err, ErrEmptyPackage)
}

func TestClassifierPropagatesClientError(t *testing.T) {
	boom := errors.New("boom")
	fake := llmclient.NewFakeClient().Fail(StageClassify, boom)
	_, err := (&Classifier{LLM: fake}).Run(context.Background(), "ERROR: x")
	assert.ErrorIs(t, err, boom)
}

func TestSummarizerDecodesEntries(t *testing.T) {
	fake := llmclient.NewFakeClient().Script(StageSummarize, `{"entries":[{"version":"2.0","release_date":"2024-03-01","changelog_snippet":"Removed Foo","explanation":"Foo is gone","fix_advice":"pin 1.0"}]}`)
	s := &Summarizer{LLM: fake}
	in := SummaryInput{Package: "bar", ArtifactID: "bar-core", Used: "1.0", Oldest: "1.0", Newest: "2.0", Changelog: "2.0 Removed Foo", Errors: "ERROR: class Foo not found in bar-core"}

	out, err := s.Run(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "2.0", out.Entries[0].Version)
	assert.Equal(t, "2024-03-01", out.Entries[0].ReleaseDate)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, StageSummarize, calls[0].Stage)
	assert.Equal(t, in, calls[0].Input)
	assert.Contains(t, calls[0].Prompt, "Exclude pure bugfix")
}

func TestSummarizerEmptyEntriesIsNotNil(t *testing.T) {
	fake := llmclient.NewFakeClient().Script(StageSummarize, `{}`)
	out, err := (&Summarizer{LLM: fake}).Run(context.Background(), SummaryInput{ArtifactID: "bar-core"})
	require.NoError(t, err)
	assert.NotNil(t, out.Entries)
	assert.Empty(t, out.Entries)
}

func TestPromptsRender(t *testing.T) {
	for _, spec := range []struct {
		name  string
		field string
	}{
		{"classify", "package_name"},
		{"summarize", "entries[].changelog_snippet"},
	} {
		t.Run(spec.name, func(t *testing.T) {
			src := classifyPromptSpec
			if spec.name == "summarize" {
				src = summarizePromptSpec
			}
			text, err := llmtool.Render(src)
			require.NoError(t, err)
			assert.Contains(t, text, "[OUTPUT]")
			assert.Contains(t, text, spec.field)
		})
	}
}
