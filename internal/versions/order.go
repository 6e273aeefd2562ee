package versions

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Order compares two version strings, returning <0, 0 or >0.
type Order interface {
	Name() string
	Compare(a, b string) int
}

// Lexical compares raw strings byte by byte, so "2.10" sorts before "2.9".
type Lexical struct{}

func (Lexical) Name() string { return "lexical" }

func (Lexical) Compare(a, b string) int { return strings.Compare(a, b) }

// Semantic orders versions as semver after adding a "v" prefix. Strings that
// are not valid semver ("1.0.Final", "1.0-SNAPSHOT", "1.2.3.4") fall back to
// lexical order against each other and sort before valid versions.
type Semantic struct{}

func (Semantic) Name() string { return "semver" }

func (Semantic) Compare(a, b string) int {
	va, vb := canonical(a), canonical(b)
	okA, okB := semver.IsValid(va), semver.IsValid(vb)
	switch {
	case okA && okB:
		if c := semver.Compare(va, vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case okA:
		return 1
	case okB:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// OrderFor resolves an order by name: "lexical" (default) or "semver".
func OrderFor(name string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lexical":
		return Lexical{}, nil
	case "semver", "semantic":
		return Semantic{}, nil
	default:
		return nil, fmt.Errorf("versions: unknown order %q", name)
	}
}
