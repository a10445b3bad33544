package infrastructure

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"infobot/internal/lib/sl"
)

const (
	fetchAttempts = 3
	// DefaultFetchTimeout bounds a single request attempt. A couple of the
	// lookup providers are documented slow and get a larger value.
	DefaultFetchTimeout = 20 * time.Second
)

// Fetcher performs best-effort GETs against external JSON endpoints. It has
// no shared state: every failure path collapses into the single (nil, false)
// result so callers have exactly one branch to handle.
type Fetcher struct {
	log *slog.Logger

	// Test seams. Production values are set by NewFetcher.
	attempts   int
	baseDelay  time.Duration
	lookupHost func(host string) ([]string, error)
	newClient  func(timeout time.Duration) *retryablehttp.Client
}

func NewFetcher(log *slog.Logger) *Fetcher {
	return &Fetcher{
		log:        log,
		attempts:   fetchAttempts,
		baseDelay:  time.Second,
		lookupHost: net.LookupHost,
		newClient:  newRetryClient,
	}
}

// newRetryClient builds a fresh client whose own retry policy handles
// connection failures and 500/502/504 with exponential waits, layered under
// the outer attempt loop in FetchJSON. A server that keeps answering 5xx is
// handed back as the final response, not an error, so FetchJSON treats it as
// terminal instead of burning outer attempts on it.
func newRetryClient(timeout time.Duration) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 1 * time.Second
	c.RetryWaitMax = 4 * time.Second
	c.HTTPClient.Timeout = timeout
	c.Logger = nil
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		switch resp.StatusCode {
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
	return c
}

// FetchJSON resolves the target host, then attempts the GET up to three
// times, sleeping 1s/2s/4s between attempts on connection-level errors only.
// Non-200 statuses and undecodable bodies are terminal. The returned bool is
// false whenever no usable JSON was obtained.
func (f *Fetcher) FetchJSON(rawURL string, timeout time.Duration) (json.RawMessage, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		f.log.Error("invalid lookup url", slog.String("url", rawURL))
		return nil, false
	}

	// Fail fast before touching the network at all.
	if _, err := f.lookupHost(u.Hostname()); err != nil {
		f.log.Error("dns resolution failed", slog.String("host", u.Hostname()), sl.Err(err))
		return nil, false
	}

	for attempt := 0; attempt < f.attempts; attempt++ {
		client := f.newClient(timeout)
		resp, err := client.Get(rawURL)
		if err != nil {
			f.log.Warn("connection failed",
				slog.String("url", rawURL),
				slog.Int("attempt", attempt+1),
				sl.Err(err))
			if attempt < f.attempts-1 {
				time.Sleep(f.baseDelay << attempt)
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		f.log.Info("api request",
			slog.String("url", rawURL),
			slog.Int("status", resp.StatusCode))

		if resp.StatusCode != http.StatusOK {
			return nil, false
		}
		if readErr != nil {
			f.log.Error("reading response body", slog.String("url", rawURL), sl.Err(readErr))
			return nil, false
		}

		var probe any
		if err := json.Unmarshal(body, &probe); err != nil {
			f.log.Error("json decode failed", slog.String("url", rawURL), sl.Err(err))
			return nil, false
		}
		return json.RawMessage(body), true
	}

	f.log.Error("max retries reached", slog.String("url", rawURL))
	return nil, false
}
