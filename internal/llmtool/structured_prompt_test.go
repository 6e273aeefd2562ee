package llmtool

import (
	"strings"
	"testing"
)

func TestRenderSections(t *testing.T) {
	spec := StructuredPromptSpec{
		Purpose:      "Name the package behind a build error.",
		Background:   "Maven compile output.",
		OutputFormat: "JSON only.",
		Language:     "English",
		OutputFields: []PromptField{
			{Name: "package_name", Type: "string", Required: true, Description: "Plain name."},
			{Name: "notes", Type: "[]string", Required: false},
		},
		Constraints: []string{"No markdown."},
		Rules:       []string{"Be concise."},
		Assumptions: []string{"If unsure, return an empty string."},
		Examples: []PromptExample{
			{InputJSON: `{"errors":"x"}`, OutputJSON: `{"package_name":"log4j"}`},
		},
	}

	out, err := Render(spec)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, sec := range []string{
		"[PURPOSE]", "[BACKGROUND]", "[OUTPUT]", "[CONSTRAINTS]", "[RULES]",
		"[ASSUMPTIONS]", "[OUTPUT_FORMAT]", "[LANGUAGE]", "[EXAMPLES]",
	} {
		if !strings.Contains(out, sec) {
			t.Fatalf("expected section %s in prompt", sec)
		}
	}
	if !strings.Contains(out, "- package_name (string, required): Plain name.") {
		t.Fatalf("field line missing:\n%s", out)
	}
	if !strings.Contains(out, "- notes ([]string, optional)") {
		t.Fatalf("optional field line missing:\n%s", out)
	}
}

func TestRenderSkipsEmptySections(t *testing.T) {
	out, err := Render(StructuredPromptSpec{
		Purpose:      "x",
		OutputFields: []PromptField{{Name: "a", Type: "string", Required: true}},
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if strings.Contains(out, "[RULES]") || strings.Contains(out, "[EXAMPLES]") {
		t.Fatalf("unexpected empty section:\n%s", out)
	}
}

func TestRenderRequiresPurpose(t *testing.T) {
	_, err := Render(StructuredPromptSpec{
		OutputFields: []PromptField{{Name: "summary", Type: "string", Required: true}},
	})
	if err == nil || !strings.Contains(err.Error(), "purpose") {
		t.Fatalf("expected purpose error, got %v", err)
	}
}

func TestRenderRequiresOutputFields(t *testing.T) {
	_, err := Render(StructuredPromptSpec{Purpose: "x"})
	if err == nil || !strings.Contains(err.Error(), "output fields") {
		t.Fatalf("expected output fields error, got %v", err)
	}
}

func TestApplyPresetsPrepends(t *testing.T) {
	spec := ApplyPresets(StructuredPromptSpec{Constraints: []string{"own"}}, PresetStrictJSON(), PresetCautious())
	if spec.Constraints[0] != "Return strict JSON only." || spec.Constraints[len(spec.Constraints)-1] != "own" {
		t.Fatalf("unexpected constraints: %v", spec.Constraints)
	}
	if len(spec.Rules) != 1 {
		t.Fatalf("unexpected rules: %v", spec.Rules)
	}
}
