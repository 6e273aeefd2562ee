package llmclient

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitHeaders represents normalized provider rate-limit signals.
type RateLimitHeaders struct {
	RetryAfterSeconds int

	LimitRequests     int
	LimitTokens       int
	RemainingRequests int
	RemainingTokens   int

	ResetRequests time.Duration
	ResetTokens   time.Duration
}

// NextWait converts the signals to how long a caller should hold off.
func (h RateLimitHeaders) NextWait() time.Duration {
	if h.RetryAfterSeconds > 0 {
		return time.Duration(h.RetryAfterSeconds) * time.Second
	}
	if h.RemainingTokens == 0 && h.ResetTokens > 0 {
		return h.ResetTokens
	}
	if h.RemainingRequests == 0 && h.ResetRequests > 0 {
		return h.ResetRequests
	}
	return 0
}

// RateLimitError is returned for HTTP 429 responses.
type RateLimitError struct {
	Headers RateLimitHeaders
	Err     error
}

func (e *RateLimitError) Error() string { return e.Err.Error() }
func (e *RateLimitError) Unwrap() error { return e.Err }

// Wait is the provider-suggested delay before the next attempt.
func (e *RateLimitError) Wait() time.Duration { return e.Headers.NextWait() }

func newRateLimitError(provider string, resp *http.Response, body []byte) error {
	h, _ := parseRateLimitHeaders(resp.Header)
	return &RateLimitError{
		Headers: h,
		Err:     fmt.Errorf("%s: rate limited (%s): %s", provider, resp.Status, string(body)),
	}
}

// parseRateLimitHeaders reads the x-ratelimit-* family shared by OpenAI and
// Groq. Reset values are Go-style durations ("7.66s", "2m59.56s").
func parseRateLimitHeaders(h http.Header) (RateLimitHeaders, bool) {
	out := RateLimitHeaders{}
	found := false

	readInt := func(key string) (int, bool) {
		v := strings.TrimSpace(h.Get(key))
		if v == "" {
			return 0, false
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	readDur := func(key string) (time.Duration, bool) {
		v := strings.TrimSpace(h.Get(key))
		if v == "" {
			return 0, false
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, false
		}
		return d, true
	}

	if v, ok := readInt("retry-after"); ok {
		out.RetryAfterSeconds = v
		found = true
	}
	if v, ok := readInt("x-ratelimit-limit-requests"); ok {
		out.LimitRequests = v
		found = true
	}
	if v, ok := readInt("x-ratelimit-limit-tokens"); ok {
		out.LimitTokens = v
		found = true
	}
	if v, ok := readInt("x-ratelimit-remaining-requests"); ok {
		out.RemainingRequests = v
		found = true
	}
	if v, ok := readInt("x-ratelimit-remaining-tokens"); ok {
		out.RemainingTokens = v
		found = true
	}
	if v, ok := readDur("x-ratelimit-reset-requests"); ok {
		out.ResetRequests = v
		found = true
	}
	if v, ok := readDur("x-ratelimit-reset-tokens"); ok {
		out.ResetTokens = v
		found = true
	}

	return out, found
}
