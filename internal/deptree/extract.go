package deptree

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrStartMarkerNotFound means the tree goal's header line never appeared.
	ErrStartMarkerNotFound = errors.New("deptree: start marker not found")
	// ErrEndMarkerNotFound means the tree block was never closed.
	ErrEndMarkerNotFound = errors.New("deptree: end marker not found")
)

// Extractor isolates the serialized tree from surrounding build log output.
type Extractor interface {
	Extract(lines []string) ([]string, error)
}

// EndMarker decides where the tree block stops.
type EndMarker interface {
	Name() string
	IsEnd(line string) bool
	// IncludesEnd reports whether the end line belongs to the payload.
	IncludesEnd() bool
}

// IsStartMarker matches the header Maven prints before the tree goal's output,
// e.g. "[INFO] --- dependency:3.6.1:tree (default-cli) @ app ---".
func IsStartMarker(line string) bool {
	return strings.Contains(line, "dependency") && strings.Contains(line, ":tree")
}

// BraceEnd ends the block at the first line whose text right after the log
// prefix is a lone "}" ("[INFO] }"). Nested closing braces are indented, so
// their second space-separated token is empty and they do not match.
type BraceEnd struct{}

func (BraceEnd) Name() string      { return "brace" }
func (BraceEnd) IncludesEnd() bool { return true }

func (BraceEnd) IsEnd(line string) bool {
	tokens := strings.Split(strings.TrimRight(line, "\r"), " ")
	return len(tokens) > 1 && tokens[1] == "}"
}

// SeparatorEnd ends the block at the first line whose last token is a single
// character repeated at least MinRun times, such as Maven's dashed rule.
type SeparatorEnd struct {
	MinRun int
}

func (SeparatorEnd) Name() string      { return "separator" }
func (SeparatorEnd) IncludesEnd() bool { return false }

func (s SeparatorEnd) IsEnd(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return false
	}
	last := fields[len(fields)-1]
	minRun := s.MinRun
	if minRun < 2 {
		minRun = 3
	}
	if utf8.RuneCountInString(last) < minRun {
		return false
	}
	first, _ := utf8.DecodeRuneInString(last)
	for _, r := range last {
		if r != first {
			return false
		}
	}
	return true
}

// MarkerExtractor finds the start marker line, then the first end line after
// it, and strips the log prefix from every line in between.
type MarkerExtractor struct {
	End EndMarker
}

// NewExtractor returns the marker extractor for a named end strategy:
// "brace" (default) or "separator".
func NewExtractor(name string) (*MarkerExtractor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "brace":
		return &MarkerExtractor{End: BraceEnd{}}, nil
	case "separator":
		return &MarkerExtractor{End: SeparatorEnd{MinRun: 3}}, nil
	default:
		return nil, fmt.Errorf("deptree: unknown end marker strategy %q", name)
	}
}

func (m *MarkerExtractor) Extract(lines []string) ([]string, error) {
	end := m.End
	if end == nil {
		end = BraceEnd{}
	}
	start := -1
	for i, ln := range lines {
		if IsStartMarker(ln) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrStartMarkerNotFound
	}
	stop := -1
	for i := start + 1; i < len(lines); i++ {
		if end.IsEnd(lines[i]) {
			stop = i
			break
		}
	}
	if stop < 0 {
		return nil, fmt.Errorf("%w (strategy %s)", ErrEndMarkerNotFound, end.Name())
	}
	if end.IncludesEnd() {
		stop++
	}
	payload := make([]string, 0, stop-start-1)
	for _, ln := range lines[start+1 : stop] {
		payload = append(payload, StripPrefix(ln))
	}
	return payload, nil
}

// StripPrefix drops the first space-delimited token (the logger prefix) and
// keeps the rest of the line, indentation included.
func StripPrefix(line string) string {
	line = strings.TrimRight(line, "\r")
	_, rest, ok := strings.Cut(line, " ")
	if !ok {
		return ""
	}
	return rest
}
