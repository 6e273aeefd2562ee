// Package changelog finds a dependency's changelog on the web and cuts out
// the part covering the conflicting versions.
package changelog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"depdoctor/internal/versions"
)

var (
	ErrNoSearchResult  = errors.New("changelog: no search result")
	ErrFetchFailed     = errors.New("changelog: fetch failed")
	ErrVersionNotFound = errors.New("changelog: version not found on page")
)

// Searcher returns the first result URL for a web query.
type Searcher interface {
	FirstResult(ctx context.Context, query string) (string, error)
}

// Fetcher downloads a page, failing unless the status is 200.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Section is the slice of a changelog page between two version mentions.
type Section struct {
	URL   string `json:"url"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Locator chains search, fetch and slicing.
type Locator struct {
	Search Searcher
	Fetch  Fetcher
	// StripHTML replaces the section text with PlainText of it. Offsets
	// still refer to the raw page.
	StripHTML bool
	Logger    *slog.Logger
}

// Query is the search issued for a package.
func Query(pkg string) string { return pkg + " changelog" }

// Locate searches for pkg's changelog, fetches the first hit and slices the
// region between the conflict's newest and oldest versions.
func (l *Locator) Locate(ctx context.Context, pkg string, c versions.Conflict) (Section, error) {
	link, err := l.Search.FirstResult(ctx, Query(pkg))
	if err != nil {
		return Section{}, err
	}
	page, err := l.Fetch.Fetch(ctx, link)
	if err != nil {
		return Section{}, err
	}
	sec, err := Slice(page, c)
	if err != nil {
		return Section{}, err
	}
	if l.StripHTML {
		sec.Text = PlainText(sec.Text)
	}
	l.logger().Info("changelog section located", "url", sec.URL, "artifact", c.ArtifactID, "bytes", len(sec.Text))
	return sec, nil
}

func (l *Locator) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Slice requires the oldest and used versions to appear on the page, then
// returns the text between the first occurrences of newest and oldest,
// whichever comes first on the page being the start.
func Slice(page Page, c versions.Conflict) (Section, error) {
	body := page.Body
	for _, v := range []string{c.Oldest, c.Used} {
		if !strings.Contains(body, v) {
			return Section{}, fmt.Errorf("%w: %q on %s (wrong page?)", ErrVersionNotFound, v, page.URL)
		}
	}
	start := strings.Index(body, c.Newest)
	end := strings.Index(body, c.Oldest)
	if start < 0 {
		return Section{}, fmt.Errorf("%w: %q on %s", ErrVersionNotFound, c.Newest, page.URL)
	}
	// Changelogs usually list the newest release first.
	if start > end {
		start, end = end, start
	}
	return Section{URL: page.URL, Text: body[start:end], Start: start, End: end}, nil
}
