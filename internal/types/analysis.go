package types

// ProblematicPackage is the classifier's answer: the package the build error
// points at, without namespace prefixes such as "org.apache.".
type ProblematicPackage struct {
	PackageName string `json:"package_name" prompt_desc:"Plain package name blamed by the build error, lower-case, without namespace prefixes like org., com., io. or net. (e.g. log4j, jackson, slf4j)."`
}

// ChangelogEntryAnalysis is one changelog entry judged relevant to a failure.
// ReleaseDate is free text; it is not guaranteed to parse as a date.
type ChangelogEntryAnalysis struct {
	Version          string `json:"version" yaml:"version" prompt_desc:"Version the entry belongs to, exactly as written in the changelog."`
	ReleaseDate      string `json:"release_date" yaml:"release_date" prompt_desc:"Release date in ISO form (YYYY-MM-DD) if the changelog shows one, otherwise empty."`
	ChangelogSnippet string `json:"changelog_snippet" yaml:"changelog_snippet" prompt_desc:"Verbatim quote of the changelog entry."`
	Explanation      string `json:"explanation" yaml:"explanation" prompt_desc:"How this entry explains the build error."`
	FixAdvice        string `json:"fix_advice" yaml:"fix_advice" prompt_desc:"Concrete change to the build (pin, exclude, upgrade) that resolves the error."`
}

// ChangelogAnalysisOutput is the summarizer's answer and the tool's final output.
type ChangelogAnalysisOutput struct {
	Entries []ChangelogEntryAnalysis `json:"entries" yaml:"entries" prompt_type:"[]ChangelogEntryAnalysis" prompt_desc:"Relevant entries, ordered as they appear in the changelog. Empty when nothing qualifies."`
}
