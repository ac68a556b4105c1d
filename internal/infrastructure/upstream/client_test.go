package upstream

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readvault/internal/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestClient(endpoint string, maxRetries int) *Client {
	return NewClient(Config{
		Endpoint:       endpoint,
		Token:          "secret-token",
		RateDelay:      time.Millisecond,
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		Timeout:        5 * time.Second,
	}, discard())
}

func TestFetchReturnsBodyAndSendsCredentials(t *testing.T) {
	t.Parallel()

	var gotAuth, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		gotID = r.PostFormValue("identifier")
		w.Write([]byte("<html><body><p>hello</p></body></html>"))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL, 3).Fetch(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "1001", raw.ID)
	assert.Contains(t, raw.HTML, "<p>hello</p>")
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "1001", gotID)
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<p>recovered</p>"))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL, 5).Fetch(context.Background(), "7")
	require.NoError(t, err)
	assert.Contains(t, raw.HTML, "recovered")
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchExhaustsRetriesOnPersistentTransientFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).Fetch(context.Background(), "7")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchTransient)
	assert.NotErrorIs(t, err, domain.ErrFetchPermanent)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchDoesNotRetryPermanentFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 5).Fetch(context.Background(), "7")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchPermanent)
	assert.Equal(t, int32(1), calls.Load(), "a gone item must not be retried")
}

func TestFetchTreatsEmptyContentAsPermanent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("   \n"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 5).Fetch(context.Background(), "7")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchPermanent)
}

func TestFetchEnforcesMinimumInterCallDelay(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>ok</p>"))
	}))
	defer srv.Close()

	c := NewClient(Config{
		Endpoint:   srv.URL,
		RateDelay:  120 * time.Millisecond,
		MaxRetries: 1,
	}, discard())

	start := time.Now()
	_, err := c.Fetch(context.Background(), "1")
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), "2")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond,
		"second call must wait out the rate delay")
}
