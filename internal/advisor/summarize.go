package advisor

import (
	"context"
	"fmt"

	"depdoctor/internal/llm"
	llmclient "depdoctor/internal/llmClient"
	"depdoctor/internal/llmtool"
	t "depdoctor/internal/types"
)

var summarizePromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:      "Pick the changelog entries that explain a build failure caused by conflicting dependency versions.",
	Background:   "The input carries a slice of a library's changelog between the oldest and newest versions found in the dependency tree, the versions involved, and the build error lines.",
	OutputFields: llmtool.MustFieldsFromStruct(t.ChangelogAnalysisOutput{}),
	Constraints: []string{
		"Only entries that introduce, remove, rename or break the exact symbols named in the error qualify.",
		"Exclude pure bugfix, documentation and performance entries.",
		"Prefer the entry that first introduced the change over later refactors of it.",
		"Cite the version of every entry, and its date in ISO form (YYYY-MM-DD) when the changelog shows one.",
		"changelog_snippet must be quoted from the input changelog.",
	},
	Rules: []string{
		"Return an empty entries list when nothing qualifies.",
		"fix_advice names a concrete build change, for example pinning the used version or excluding the transitive artifact.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent())

// SummaryInput is what the summarizer sends next to its prompt.
type SummaryInput struct {
	Package    string `json:"package"`
	ArtifactID string `json:"artifact_id"`
	Used       string `json:"used_version"`
	Oldest     string `json:"oldest_version"`
	Newest     string `json:"newest_version"`
	Changelog  string `json:"changelog"`
	Errors     string `json:"errors"`
}

// Summarizer asks the model which changelog entries explain the error.
type Summarizer struct{ LLM llmclient.LLMClient }

func (s *Summarizer) Run(ctx context.Context, in SummaryInput) (t.ChangelogAnalysisOutput, error) {
	prompt, err := llmtool.Render(summarizePromptSpec)
	if err != nil {
		return t.ChangelogAnalysisOutput{}, err
	}
	out, err := llm.GenerateInto[t.ChangelogAnalysisOutput](ctx, s.LLM, StageSummarize, prompt, in)
	if err != nil {
		return t.ChangelogAnalysisOutput{}, fmt.Errorf("summarize %s: %w", in.ArtifactID, err)
	}
	if out.Entries == nil {
		out.Entries = []t.ChangelogEntryAnalysis{}
	}
	return out, nil
}
