// Package advisor holds the two language-model stages of the diagnosis: the
// package classifier and the changelog summarizer.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"depdoctor/internal/llm"
	llmclient "depdoctor/internal/llmClient"
	"depdoctor/internal/llmtool"
	t "depdoctor/internal/types"
)

const (
	StageClassify  = "classify"
	StageSummarize = "summarize"
)

var ErrEmptyPackage = errors.New("advisor: classifier returned an empty package name")

var classifyPromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:      "Name the library a failed Java build is complaining about.",
	Background:   "The input holds the error lines of a Maven build. The answer is matched as a substring against groupId and artifactId of every node in the dependency tree.",
	OutputFields: llmtool.MustFieldsFromStruct(t.ProblematicPackage{}),
	Constraints: []string{
		"Return exactly one package name.",
		"Strip namespace prefixes such as org., com., io., net. and the vendor segment (org.apache.logging.log4j -> log4j).",
		"No version numbers, no class names, no file paths.",
	},
	Rules: []string{
		"Prefer the library that owns the missing or incompatible symbol over the project's own modules.",
		"If several libraries are mentioned, pick the one named in the first error.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
	Examples: []llmtool.PromptExample{{
		InputJSON:  `{"errors": "[ERROR] cannot access org.slf4j.impl.StaticLoggerBinder"}`,
		OutputJSON: llmtool.ExampleJSON(t.ProblematicPackage{PackageName: "slf4j"}),
	}},
}, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent())

// Classifier asks the model which package the build error points at.
type Classifier struct{ LLM llmclient.LLMClient }

func (c *Classifier) Run(ctx context.Context, errorText string) (t.ProblematicPackage, error) {
	prompt, err := llmtool.Render(classifyPromptSpec)
	if err != nil {
		return t.ProblematicPackage{}, err
	}
	out, err := llm.GenerateInto[t.ProblematicPackage](ctx, c.LLM, StageClassify, prompt, map[string]any{
		"errors": errorText,
	})
	if err != nil {
		return t.ProblematicPackage{}, fmt.Errorf("classify: %w", err)
	}
	out.PackageName = strings.TrimSpace(out.PackageName)
	if out.PackageName == "" {
		return out, ErrEmptyPackage
	}
	return out, nil
}
