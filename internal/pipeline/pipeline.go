// Package pipeline runs the diagnosis stages in order: build, error filter,
// dependency tree, classification, version conflicts, changelog lookup and
// summary. Every stage failure ends the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"depdoctor/internal/advisor"
	"depdoctor/internal/build"
	"depdoctor/internal/changelog"
	"depdoctor/internal/deptree"
	"depdoctor/internal/errscan"
	t "depdoctor/internal/types"
	"depdoctor/internal/versions"
)

// ErrNoConflicts means the classified package has no artifact resolved to
// more than one version. It is benign: the report is returned alongside it.
var ErrNoConflicts = errors.New("pipeline: no multi-version artifact for package")

// TreeFetcher returns the project's decoded dependency tree.
type TreeFetcher interface {
	Fetch(ctx context.Context, p build.Project) (*deptree.Node, error)
}

// Classifier names the package a build error is about.
type Classifier interface {
	Run(ctx context.Context, errorText string) (t.ProblematicPackage, error)
}

// Locator finds the changelog section covering a conflict.
type Locator interface {
	Locate(ctx context.Context, pkg string, c versions.Conflict) (changelog.Section, error)
}

// Summarizer picks the changelog entries that explain the error.
type Summarizer interface {
	Run(ctx context.Context, in advisor.SummaryInput) (t.ChangelogAnalysisOutput, error)
}

// Report is everything one run found. Output is the part printed to the user.
type Report struct {
	BuildSucceeded bool                      `json:"build_succeeded"`
	Errors         []string                  `json:"errors,omitempty"`
	Package        string                    `json:"package,omitempty"`
	Conflicts      []versions.Conflict       `json:"conflicts,omitempty"`
	Sections       []changelog.Section       `json:"sections,omitempty"`
	Output         t.ChangelogAnalysisOutput `json:"output"`
	Elapsed        time.Duration             `json:"elapsed"`
}

type Pipeline struct {
	Runner     build.Runner
	Tree       TreeFetcher
	Classifier Classifier
	Locator    Locator
	Summarizer Summarizer
	// Order ranks versions for oldest/newest; nil means lexical.
	Order  versions.Order
	Logger *slog.Logger
}

// Run diagnoses p. A successful build returns a report with BuildSucceeded
// set and nothing else done.
func (pl *Pipeline) Run(ctx context.Context, p build.Project) (*Report, error) {
	start := time.Now()
	log := pl.logger()
	rep := &Report{Output: t.ChangelogAnalysisOutput{Entries: []t.ChangelogEntryAnalysis{}}}
	defer func() { rep.Elapsed = time.Since(start) }()

	if err := p.Validate(); err != nil {
		return rep, err
	}

	res, err := pl.Runner.Build(ctx, p)
	if err != nil {
		return rep, fmt.Errorf("build: %w", err)
	}
	if res.Succeeded() {
		log.Info("build succeeded, nothing to diagnose", "duration", res.Duration)
		rep.BuildSucceeded = true
		return rep, nil
	}
	log.Info("build failed", "exit_code", res.ExitCode, "duration", res.Duration)

	rep.Errors = errscan.Filter(errscan.Lines(res.Output))
	errorText := errscan.Join(rep.Errors)
	log.Debug("error lines filtered", "count", len(rep.Errors))

	tree, err := pl.Tree.Fetch(ctx, p)
	if err != nil {
		return rep, err
	}

	pkg, err := pl.Classifier.Run(ctx, errorText)
	if err != nil {
		return rep, err
	}
	rep.Package = pkg.PackageName
	log.Info("package classified", "package", rep.Package)

	coll := versions.Collect(tree, rep.Package)
	rep.Conflicts = versions.Resolve(coll, pl.Order)
	if len(rep.Conflicts) == 0 {
		log.Warn("no conflicting versions", "package", rep.Package, "artifacts", coll.Len())
		return rep, ErrNoConflicts
	}

	for _, c := range rep.Conflicts {
		log.Info("version conflict",
			"artifact", c.ArtifactID, "used", c.Used, "oldest", c.Oldest, "newest", c.Newest)
		sec, err := pl.Locator.Locate(ctx, rep.Package, c)
		if err != nil {
			return rep, fmt.Errorf("locate changelog for %s: %w", c.ArtifactID, err)
		}
		rep.Sections = append(rep.Sections, sec)

		out, err := pl.Summarizer.Run(ctx, advisor.SummaryInput{
			Package:    rep.Package,
			ArtifactID: c.ArtifactID,
			Used:       c.Used,
			Oldest:     c.Oldest,
			Newest:     c.Newest,
			Changelog:  sec.Text,
			Errors:     errorText,
		})
		if err != nil {
			return rep, err
		}
		rep.Output.Entries = append(rep.Output.Entries, out.Entries...)
	}
	log.Info("diagnosis complete", "entries", len(rep.Output.Entries))
	return rep, nil
}

func (pl *Pipeline) logger() *slog.Logger {
	if pl.Logger != nil {
		return pl.Logger
	}
	return slog.Default()
}
