package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smart-docs/internal/cache"
	"smart-docs/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc, cfg GitHubConfig) *GitHubFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.APIBaseURL = srv.URL
	f := NewGitHubFetcher(testLogger(), cfg)
	f.backoff = time.Millisecond
	return f
}

func TestGitHubFetcherReadme(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/foo/bar/readme", r.URL.Path)
		assert.Equal(t, "application/vnd.github.raw+json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("# Bar\n"))
	}, GitHubConfig{Token: "secret"})

	readme, err := f.FetchReadme(context.Background(), "foo", "bar")
	require.NoError(t, err)
	assert.Equal(t, "# Bar\n", readme)
}

func TestGitHubFetcherRejectsInvalidNames(t *testing.T) {
	var calls atomic.Int32
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, GitHubConfig{})

	for _, name := range [][2]string{{"foo", ".."}, {"foo", "a/b"}, {"", "bar"}} {
		_, err := f.FetchReadme(context.Background(), name[0], name[1])
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}
	assert.Zero(t, calls.Load())
}

func TestGitHubFetcherNotFound(t *testing.T) {
	var calls atomic.Int32
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}, GitHubConfig{MaxRetries: 3})

	_, err := f.FetchReadme(context.Background(), "foo", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Contains(t, err.Error(), "GitHub API error 404")
	assert.Equal(t, int32(1), calls.Load(), "4xx responses are not retried")
}

func TestGitHubFetcherRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}, GitHubConfig{MaxRetries: 3})

	readme, err := f.FetchReadme(context.Background(), "foo", "bar")
	require.NoError(t, err)
	assert.Equal(t, "ok", readme)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGitHubFetcherGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, GitHubConfig{MaxRetries: 2})

	_, err := f.FetchReadme(context.Background(), "foo", "bar")
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGitHubFetcherTimeout(t *testing.T) {
	release := make(chan struct{})
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, GitHubConfig{Timeout: 50 * time.Millisecond})
	defer close(release)

	_, err := f.FetchReadme(context.Background(), "foo", "bar")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Contains(t, err.Error(), "timed out")
}

func TestGitHubFetcherReadmeTooLarge(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}, GitHubConfig{MaxReadmeSize: 32})

	_, err := f.FetchReadme(context.Background(), "foo", "bar")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCachedFetcher(t *testing.T) {
	ctx := context.Background()
	key := cache.Key("foo", "bar")

	t.Run("hit skips fetch", func(t *testing.T) {
		c := new(cache.MockCache)
		c.On("GetReadme", mock.Anything, key).Return("# cached", true, nil).Once()
		next := fetcherFunc(func(context.Context, string, string) (string, error) {
			t.Fatal("fetcher should not be called on a cache hit")
			return "", nil
		})

		readme, err := NewCachedFetcher(next, c, time.Minute, testLogger()).FetchReadme(ctx, "foo", "bar")
		require.NoError(t, err)
		assert.Equal(t, "# cached", readme)
		c.AssertExpectations(t)
	})

	t.Run("miss fetches and stores", func(t *testing.T) {
		c := new(cache.MockCache)
		c.On("GetReadme", mock.Anything, key).Return("", false, nil).Once()
		c.On("SetReadme", mock.Anything, key, "# fresh", time.Minute).Return(nil).Once()
		next := fetcherFunc(func(context.Context, string, string) (string, error) { return "# fresh", nil })

		readme, err := NewCachedFetcher(next, c, time.Minute, testLogger()).FetchReadme(ctx, "foo", "bar")
		require.NoError(t, err)
		assert.Equal(t, "# fresh", readme)
		c.AssertExpectations(t)
	})

	t.Run("fetch error is not cached", func(t *testing.T) {
		c := new(cache.MockCache)
		c.On("GetReadme", mock.Anything, key).Return("", false, nil).Once()
		next := fetcherFunc(func(context.Context, string, string) (string, error) { return "", domain.ErrNetwork })

		_, err := NewCachedFetcher(next, c, time.Minute, testLogger()).FetchReadme(ctx, "foo", "bar")
		assert.ErrorIs(t, err, domain.ErrNetwork)
		c.AssertNotCalled(t, "SetReadme", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
