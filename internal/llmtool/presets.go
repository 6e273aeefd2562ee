package llmtool

import "slices"

// PromptPreset is a reusable set of constraints and rules.
type PromptPreset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets puts the presets' constraints and rules, in argument order,
// ahead of the spec's own.
func ApplyPresets(spec StructuredPromptSpec, presets ...PromptPreset) StructuredPromptSpec {
	cons := make([][]string, 0, len(presets)+1)
	rules := make([][]string, 0, len(presets)+1)
	for _, p := range presets {
		cons = append(cons, p.Constraints)
		rules = append(rules, p.Rules)
	}
	spec.Constraints = slices.Concat(append(cons, spec.Constraints)...)
	spec.Rules = slices.Concat(append(rules, spec.Rules)...)
	return spec
}

// PresetStrictJSON asks for bare JSON matching the OUTPUT section.
func PresetStrictJSON() PromptPreset {
	return PromptPreset{Constraints: []string{
		"Return strict JSON only.",
		"Use exactly the fields listed under OUTPUT.",
		"No markdown fences, comments or trailing commas.",
	}}
}

// PresetNoInvent forbids versions, dates and symbols that are not in the input.
func PresetNoInvent() PromptPreset {
	return PromptPreset{Constraints: []string{
		"Every version, date, class name and changelog quote must come from the input.",
	}}
}

// PresetCautious prefers an empty answer to a guess.
func PresetCautious() PromptPreset {
	return PromptPreset{Rules: []string{
		"When the input does not support an answer, return empty strings or an empty list.",
	}}
}
