package infrastructure

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *Fetcher {
	return &Fetcher{
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		attempts:   3,
		baseDelay:  0,
		lookupHost: func(string) ([]string, error) { return []string{"127.0.0.1"}, nil },
		newClient: func(timeout time.Duration) *retryablehttp.Client {
			c := retryablehttp.NewClient()
			c.RetryMax = 0
			c.HTTPClient.Timeout = timeout
			c.Logger = nil
			return c
		},
	}
}

func TestFetchJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	raw, ok := newTestFetcher().FetchJSON(srv.URL, time.Second)
	require.True(t, ok)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestFetchJSONDNSFailureSkipsNetwork(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	f := newTestFetcher()
	f.lookupHost = func(string) ([]string, error) { return nil, errors.New("no such host") }

	raw, ok := f.FetchJSON(srv.URL, time.Second)
	assert.False(t, ok)
	assert.Nil(t, raw)
	assert.Zero(t, requests.Load(), "a failed preflight must not hit the network")
}

func TestFetchJSONInvalidURL(t *testing.T) {
	_, ok := newTestFetcher().FetchJSON("not a url", time.Second)
	assert.False(t, ok)
}

func TestFetchJSONRetriesConnectionFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()

	dead := httptest.NewServer(http.HandlerFunc(nil))
	deadURL := dead.URL
	dead.Close()

	// First two attempts dial a dead address via a rewriting transport,
	// exercising the connection-error branch of the outer loop.
	f := newTestFetcher()
	base := f.newClient
	attempt := atomic.Int32{}
	f.newClient = func(timeout time.Duration) *retryablehttp.Client {
		c := base(timeout)
		c.HTTPClient.Transport = roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if attempt.Add(1) <= 2 {
				req := r.Clone(r.Context())
				req.URL, _ = req.URL.Parse(deadURL)
				return http.DefaultTransport.RoundTrip(req)
			}
			return http.DefaultTransport.RoundTrip(r)
		})
		return c
	}

	raw, ok := f.FetchJSON(srv.URL, time.Second)
	require.True(t, ok)
	assert.JSONEq(t, `[1,2,3]`, string(raw))
	assert.Equal(t, int32(3), attempt.Load())
}

func TestFetchJSONGivesUpAfterMaxAttempts(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(nil))
	deadURL := dead.URL
	dead.Close()

	f := newTestFetcher()
	var created atomic.Int32
	base := f.newClient
	f.newClient = func(timeout time.Duration) *retryablehttp.Client {
		created.Add(1)
		return base(timeout)
	}

	raw, ok := f.FetchJSON(deadURL, 100*time.Millisecond)
	assert.False(t, ok)
	assert.Nil(t, raw)
	assert.Equal(t, int32(3), created.Load(), "one client per outer attempt")
}

func TestFetchJSONNon200IsTerminal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	raw, ok := newTestFetcher().FetchJSON(srv.URL, time.Second)
	assert.False(t, ok)
	assert.Nil(t, raw)
	assert.Equal(t, int32(1), hits.Load(), "non-200 must not trigger the outer retry")
}

// fastRetryClient is the production client with the waits shrunk so tests
// exercise the real retry policy without the real backoff.
func fastRetryClient(timeout time.Duration) *retryablehttp.Client {
	c := newRetryClient(timeout)
	c.RetryWaitMin = time.Millisecond
	c.RetryWaitMax = time.Millisecond
	return c
}

func TestFetchJSONPersistentServerErrorIsTerminal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher()
	var created atomic.Int32
	f.newClient = func(timeout time.Duration) *retryablehttp.Client {
		created.Add(1)
		return fastRetryClient(timeout)
	}

	raw, ok := f.FetchJSON(srv.URL, time.Second)
	assert.False(t, ok)
	assert.Nil(t, raw)
	assert.Equal(t, int32(4), hits.Load(), "initial request plus three inner retries")
	assert.Equal(t, int32(1), created.Load(), "an unhealthy upstream must not burn the outer attempts")
}

func TestFetchJSONRetryPolicyLimitedToGatewayErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newTestFetcher()
	f.newClient = fastRetryClient

	_, ok := f.FetchJSON(srv.URL, time.Second)
	assert.False(t, ok)
	assert.Equal(t, int32(1), hits.Load(), "503 is outside the retryable set")
}

func TestFetchJSONBadJSONIsTerminal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	raw, ok := newTestFetcher().FetchJSON(srv.URL, time.Second)
	assert.False(t, ok)
	assert.Nil(t, raw)
	assert.Equal(t, int32(1), hits.Load())
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
