// Package errscan pulls the error lines out of captured build output.
package errscan

import "strings"

// Marker is matched case-insensitively against every output line.
const Marker = "error"

// Lines splits output into lines and keeps those containing Marker in any
// case. Order is preserved and duplicates are kept.
func Lines(output string) []string {
	return Filter(strings.Split(output, "\n"))
}

// Filter keeps the lines containing Marker in any case.
func Filter(lines []string) []string {
	var out []string
	for _, ln := range lines {
		ln = strings.TrimRight(ln, "\r")
		if strings.Contains(strings.ToLower(ln), Marker) {
			out = append(out, ln)
		}
	}
	return out
}

// Join renders filtered lines back into the text handed to the classifier
// and summarizer.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}
