package changelog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultSearchURL      = "https://html.duckduckgo.com/html/?q=%s"
	DefaultResultSelector = "a.result__a"
	DefaultUserAgent      = "depdoctor/1.0 (+https://github.com/depdoctor/depdoctor)"
	DefaultTimeout        = 10 * time.Second
)

// Page is a fetched document.
type Page struct {
	URL        string
	StatusCode int
	Body       string
}

// WebOptions configures a WebClient. Zero values take the defaults above.
type WebOptions struct {
	SearchURL      string
	ResultSelector string
	UserAgent      string
	Timeout        time.Duration
	CacheSize      int
	Logger         *slog.Logger
}

// WebClient searches the web and fetches pages with colly. Results are kept
// in an LRU cache keyed by URL for the lifetime of the client.
type WebClient struct {
	opts     WebOptions
	pages    *lru.Cache[string, Page]
	searches *lru.Cache[string, string]
	log      *slog.Logger
}

func NewWebClient(opts WebOptions) (*WebClient, error) {
	if opts.SearchURL == "" {
		opts.SearchURL = DefaultSearchURL
	}
	if !strings.Contains(opts.SearchURL, "%s") {
		return nil, fmt.Errorf("changelog: search url %q has no %%s placeholder", opts.SearchURL)
	}
	if opts.ResultSelector == "" {
		opts.ResultSelector = DefaultResultSelector
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	pages, err := lru.New[string, Page](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	searches, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WebClient{opts: opts, pages: pages, searches: searches, log: logger}, nil
}

func (w *WebClient) collector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(w.opts.UserAgent),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(w.opts.Timeout)
	return c
}

// FirstResult runs a web search and returns the first result link.
func (w *WebClient) FirstResult(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf(w.opts.SearchURL, url.QueryEscape(query))
	if hit, ok := w.searches.Get(searchURL); ok {
		w.log.Debug("search cache hit", "query", query, "result", hit)
		return hit, nil
	}

	c := w.collector(ctx)
	var first string
	var visitErr error
	c.OnHTML(w.opts.ResultSelector, func(e *colly.HTMLElement) {
		if first != "" {
			return
		}
		if href := strings.TrimSpace(e.Attr("href")); href != "" {
			first = unwrapRedirect(e.Request.AbsoluteURL(href))
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	w.log.Info("searching", "query", query)
	if err := c.Visit(searchURL); err != nil && visitErr == nil {
		visitErr = err
	}
	if visitErr != nil {
		return "", fmt.Errorf("%w: search %q: %v", ErrNoSearchResult, query, visitErr)
	}
	if first == "" {
		return "", fmt.Errorf("%w: %q", ErrNoSearchResult, query)
	}
	w.searches.Add(searchURL, first)
	return first, nil
}

// Fetch downloads rawURL. Anything but HTTP 200 is ErrFetchFailed.
func (w *WebClient) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if p, ok := w.pages.Get(rawURL); ok {
		w.log.Debug("page cache hit", "url", rawURL)
		return p, nil
	}

	c := w.collector(ctx)
	page := Page{URL: rawURL}
	var visitErr error
	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.Body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		page.StatusCode = r.StatusCode
		visitErr = err
	})

	w.log.Info("fetching changelog", "url", rawURL, "timeout", w.opts.Timeout)
	if err := c.Visit(rawURL); err != nil && visitErr == nil {
		visitErr = err
	}
	if visitErr != nil {
		return page, fmt.Errorf("%w: %s (status %d): %v", ErrFetchFailed, rawURL, page.StatusCode, visitErr)
	}
	if page.StatusCode != http.StatusOK {
		return page, fmt.Errorf("%w: %s returned status %d", ErrFetchFailed, rawURL, page.StatusCode)
	}
	w.pages.Add(rawURL, page)
	return page, nil
}

// unwrapRedirect resolves DuckDuckGo style "/l/?uddg=<target>" links.
func unwrapRedirect(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return link
}
