package changelog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depdoctor/internal/versions"
)

const page = `<h2>2.0 (2024-03-01)</h2><p>Removed Foo.bar()</p>` +
	`<h2>1.5 (2023-07-10)</h2><p>Deprecated Foo.bar()</p>` +
	`<h2>1.0 (2022-01-01)</h2><p>Initial release</p>`

func TestSliceNewestFirstPage(t *testing.T) {
	sec, err := Slice(Page{URL: "u", Body: page}, versions.Conflict{Used: "1.0", Oldest: "1.0", Newest: "2.0"})
	require.NoError(t, err)
	assert.True(t, len(sec.Text) > 0)
	assert.Equal(t, "2.0 (2024-03-01)</h2><p>Removed Foo.bar()</p><h2>1.5 (2023-07-10)</h2><p>Deprecated Foo.bar()</p><h2>", sec.Text)
	assert.Less(t, sec.Start, sec.End)
}

func TestSliceOldestFirstPageSwaps(t *testing.T) {
	body := `<li>1.0 initial</li><li>1.5 deprecate</li><li>2.0 remove</li>`
	sec, err := Slice(Page{Body: body}, versions.Conflict{Used: "1.0", Oldest: "1.0", Newest: "2.0"})
	require.NoError(t, err)
	assert.Equal(t, "1.0 initial</li><li>1.5 deprecate</li><li>", sec.Text)
}

func TestSliceRequiresOldestAndUsed(t *testing.T) {
	_, err := Slice(Page{Body: page}, versions.Conflict{Used: "1.7", Oldest: "1.0", Newest: "2.0"})
	assert.ErrorIs(t, err, ErrVersionNotFound)

	_, err = Slice(Page{Body: page}, versions.Conflict{Used: "2.0", Oldest: "0.9", Newest: "2.0"})
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestSliceRequiresNewest(t *testing.T) {
	_, err := Slice(Page{Body: page}, versions.Conflict{Used: "1.0", Oldest: "1.0", Newest: "3.0"})
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

type stubSearch struct {
	url     string
	err     error
	queries []string
}

func (s *stubSearch) FirstResult(_ context.Context, q string) (string, error) {
	s.queries = append(s.queries, q)
	return s.url, s.err
}

type stubFetch struct {
	pages map[string]Page
}

func (s *stubFetch) Fetch(_ context.Context, u string) (Page, error) {
	p, ok := s.pages[u]
	if !ok {
		return Page{}, ErrFetchFailed
	}
	return p, nil
}

func TestLocatorChainsStages(t *testing.T) {
	search := &stubSearch{url: "https://example.org/changes"}
	loc := &Locator{Search: search, Fetch: &stubFetch{pages: map[string]Page{
		"https://example.org/changes": {URL: "https://example.org/changes", StatusCode: 200, Body: page},
	}}}

	sec, err := loc.Locate(context.Background(), "bar", versions.Conflict{ArtifactID: "bar-core", Used: "1.0", Oldest: "1.0", Newest: "2.0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bar changelog"}, search.queries)
	assert.Equal(t, "https://example.org/changes", sec.URL)
}

func TestLocatorPropagatesSearchError(t *testing.T) {
	loc := &Locator{Search: &stubSearch{err: ErrNoSearchResult}, Fetch: &stubFetch{}}
	_, err := loc.Locate(context.Background(), "bar", versions.Conflict{})
	assert.True(t, errors.Is(err, ErrNoSearchResult))
}

func TestLocatorPropagatesFetchError(t *testing.T) {
	loc := &Locator{Search: &stubSearch{url: "https://missing"}, Fetch: &stubFetch{}}
	_, err := loc.Locate(context.Background(), "bar", versions.Conflict{})
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func conflict(used, oldest, newest string) versions.Conflict {
	return versions.Conflict{ArtifactID: "bar-core", Used: used, Oldest: oldest, Newest: newest}
}
