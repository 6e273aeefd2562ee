package deptree

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"depdoctor/internal/build"
)

// TreeGoals makes Maven log the resolved tree as JSON.
var TreeGoals = []string{"dependency:tree", "-DoutputType=json"}

// Fetcher re-runs Maven in tree mode and decodes the result.
type Fetcher struct {
	Runner    build.Runner
	Extractor Extractor
	// Maven is the executable; empty means "mvn".
	Maven  string
	Logger *slog.Logger
}

// Fetch runs the tree goal for p and returns the decoded root node. The
// goal's exit status is not checked: the markers decide whether usable
// output was produced.
func (f *Fetcher) Fetch(ctx context.Context, p build.Project) (*Node, error) {
	argv := build.MavenArgv(f.Maven, p, TreeGoals...)
	res, err := f.Runner.Run(ctx, p.Dir, argv)
	if err != nil {
		return nil, fmt.Errorf("deptree: run tree goal: %w", err)
	}
	root, err := Parse(res.Output, f.Extractor)
	if err != nil {
		return nil, err
	}
	f.logger().Info("dependency tree decoded", "root", root.Coordinates(), "nodes", root.Size())
	return root, nil
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Parse extracts the tree block from raw build output and decodes it.
func Parse(output string, ex Extractor) (*Node, error) {
	if ex == nil {
		ex = &MarkerExtractor{End: BraceEnd{}}
	}
	payload, err := ex.Extract(strings.Split(output, "\n"))
	if err != nil {
		return nil, err
	}
	return Decode(strings.Join(payload, "\n"))
}

// Decode parses a serialized tree.
func Decode(payload string) (*Node, error) {
	var root Node
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return nil, fmt.Errorf("deptree: decode tree: %w", err)
	}
	return &root, nil
}
