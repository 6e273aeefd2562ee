// Package llmtool renders sectioned prompts for structured completions.
package llmtool

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PromptField is one field of the JSON answer the model must produce.
type PromptField struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

func (f PromptField) line() string {
	need := "optional"
	if f.Required {
		need = "required"
	}
	s := fmt.Sprintf("- %s (%s, %s)", strings.TrimSpace(f.Name), f.Type, need)
	if f.Description != "" {
		s += ": " + f.Description
	}
	return s
}

// PromptExample is an optional worked input/output pair.
type PromptExample struct {
	InputJSON  string
	OutputJSON string
}

// StructuredPromptSpec lists the sections of a prompt. Empty sections are
// left out of the rendered text.
type StructuredPromptSpec struct {
	Purpose      string
	Background   string
	OutputFields []PromptField
	Constraints  []string
	Rules        []string
	Assumptions  []string
	OutputFormat string
	Language     string
	Examples     []PromptExample
}

var (
	errNoPurpose = errors.New("llmtool: purpose is empty")
	errNoFields  = errors.New("llmtool: output fields are empty")
)

// Render produces the prompt text. The input is not embedded; clients send it
// next to the prompt as JSON.
func Render(spec StructuredPromptSpec) (string, error) {
	if strings.TrimSpace(spec.Purpose) == "" {
		return "", errNoPurpose
	}
	if len(spec.OutputFields) == 0 {
		return "", errNoFields
	}

	sections := []struct {
		title string
		body  string
	}{
		{"PURPOSE", spec.Purpose},
		{"BACKGROUND", spec.Background},
		{"OUTPUT", fieldLines(spec.OutputFields)},
		{"CONSTRAINTS", bullets(spec.Constraints)},
		{"RULES", bullets(spec.Rules)},
		{"ASSUMPTIONS", bullets(spec.Assumptions)},
		{"OUTPUT_FORMAT", spec.OutputFormat},
		{"LANGUAGE", spec.Language},
		{"EXAMPLES", examples(spec.Examples)},
	}
	var b strings.Builder
	for _, sec := range sections {
		body := strings.TrimRight(sec.body, "\n")
		if strings.TrimSpace(body) == "" {
			continue
		}
		fmt.Fprintf(&b, "[%s]\n%s\n\n", sec.title, body)
	}
	return strings.TrimSpace(b.String()) + "\n", nil
}

// MustRender panics on error; for package-level prompt literals.
func MustRender(spec StructuredPromptSpec) string {
	out, err := Render(spec)
	if err != nil {
		panic(err)
	}
	return out
}

// ExampleJSON marshals v for use in a PromptExample.
func ExampleJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

func fieldLines(fields []PromptField) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f.Name) != "" {
			lines = append(lines, f.line())
		}
	}
	return strings.Join(lines, "\n")
}

func bullets(items []string) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			lines = append(lines, "- "+it)
		}
	}
	return strings.Join(lines, "\n")
}

func examples(exs []PromptExample) string {
	blocks := make([]string, 0, len(exs))
	for i, ex := range exs {
		block := fmt.Sprintf("Example %d:", i+1)
		if in := strings.TrimSpace(ex.InputJSON); in != "" {
			block += "\nINPUT:\n" + in
		}
		if out := strings.TrimSpace(ex.OutputJSON); out != "" {
			block += "\nOUTPUT:\n" + out
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}
