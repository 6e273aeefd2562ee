// Package report renders the diagnosis for stdout.
package report

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	t "depdoctor/internal/types"
	"depdoctor/internal/util/jsonutil"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the accepted output formats.
func Formats() []string { return []string{FormatJSON, FormatYAML} }

// ValidFormat reports whether name is an accepted format; empty counts as JSON.
func ValidFormat(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatJSON, FormatYAML, "yml":
		return true
	}
	return false
}

// Write renders out to w. Entries are never rendered as null.
func Write(w io.Writer, out t.ChangelogAnalysisOutput, format string) error {
	if out.Entries == nil {
		out.Entries = []t.ChangelogEntryAnalysis{}
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		b, err := jsonutil.MarshalNoEscapeIndent(out, "", "  ")
		if err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
		_, err = io.WriteString(w, "\n")
		return err
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("report: unknown format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}
