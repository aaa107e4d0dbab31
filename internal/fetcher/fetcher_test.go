package fetcher_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MichalMitros/coral-price-aggregator/internal/fetcher"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userAgent      = "test/0.0.0"
	acceptLanguage = "en-CA,en;q=0.9"
	response       = "hello-world"
	endpoint       = "/page"
	jitter         = 250 * time.Millisecond
)

func TestUnitFetchWithRetry(t *testing.T) {
	wantHeaders := map[string]string{
		"User-Agent":      userAgent,
		"Accept-Language": acceptLanguage,
		"Cache-Control":   "no-cache",
	}

	tests := map[string]struct {
		statuses     []int
		retryAfter   string
		maxAttempts  int
		wantBody     string
		wantStatus   int
		wantRequests int32
		wantWaits    []time.Duration
	}{
		"ok": {
			statuses:     []int{http.StatusOK},
			maxAttempts:  10,
			wantBody:     response,
			wantRequests: 1,
		},
		"retry after header": {
			statuses:     []int{http.StatusTooManyRequests, http.StatusOK},
			retryAfter:   "2",
			maxAttempts:  10,
			wantBody:     response,
			wantRequests: 2,
			wantWaits:    []time.Duration{2*time.Second + jitter},
		},
		"exponential backoff": {
			statuses:     []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusInternalServerError, http.StatusOK},
			maxAttempts:  10,
			wantBody:     response,
			wantRequests: 4,
			wantWaits: []time.Duration{
				1200*time.Millisecond + jitter,
				2400*time.Millisecond + jitter,
				4800*time.Millisecond + jitter,
			},
		},
		"invalid retry after falls back to backoff": {
			statuses:     []int{http.StatusTooManyRequests, http.StatusOK},
			retryAfter:   "soon",
			maxAttempts:  10,
			wantBody:     response,
			wantRequests: 2,
			wantWaits:    []time.Duration{1200*time.Millisecond + jitter},
		},
		"not retryable status": {
			statuses:     []int{http.StatusNotFound, http.StatusOK},
			maxAttempts:  10,
			wantStatus:   http.StatusNotFound,
			wantRequests: 1,
		},
		"attempts exhausted": {
			statuses:     []int{http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests},
			maxAttempts:  3,
			wantStatus:   http.StatusTooManyRequests,
			wantRequests: 3,
			wantWaits:    []time.Duration{1200*time.Millisecond + jitter, 2400*time.Millisecond + jitter},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var requests atomic.Int32

			srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
				validateHeaders(t, req.Header, wantHeaders)
				ix := int(requests.Add(1)) - 1
				status := tt.statuses[min(ix, len(tt.statuses)-1)]
				if tt.retryAfter != "" {
					wrt.Header().Set("Retry-After", tt.retryAfter)
				}
				wrt.WriteHeader(status)
				_, _ = wrt.Write([]byte(response))
			}))
			t.Cleanup(srv.Close)

			timer := &fakeTimer{}
			fet := fetcher.NewFetcher(srv.Client(), userAgent, acceptLanguage,
				fetcher.WithJitter(func() time.Duration { return jitter }),
				fetcher.WithTimer(func() backoff.Timer { return timer }),
			)

			resp, err := fet.FetchWithRetry(context.TODO(), srv.URL+endpoint, tt.maxAttempts)

			if tt.wantStatus != 0 {
				var statusErr *fetcher.StatusError
				require.ErrorAs(t, err, &statusErr, "should return status error")
				assert.Equal(t, tt.wantStatus, statusErr.StatusCode, "should return last status")
			} else {
				require.NoError(t, err, "shouldn't return any error")
				assert.Equal(t, tt.wantBody, readAndClose(t, resp.Body), "should return correct response")
			}

			assert.Equal(t, tt.wantRequests, requests.Load(), "should send correct number of requests")
			assert.Equal(t, tt.wantWaits, timer.waits, "should wait correct durations between attempts")
		})
	}
}

func TestUnitFetchWithRetryRealTimer(t *testing.T) {
	var requests atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) == 1 {
			wrt.Header().Set("Retry-After", "0.05")
			wrt.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = wrt.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	fet := fetcher.NewFetcher(srv.Client(), userAgent, acceptLanguage,
		fetcher.WithJitter(func() time.Duration { return 0 }),
	)

	start := time.Now()
	body, err := fet.FetchHTML(context.TODO(), srv.URL)

	require.NoError(t, err, "shouldn't return any error")
	assert.Equal(t, response, body, "should return body of successful attempt")
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "should wait before retry")
}

func TestUnitFetchWithRetryCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
		wrt.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fet := fetcher.NewFetcher(srv.Client(), userAgent, acceptLanguage)
	_, err := fet.FetchWithRetry(ctx, srv.URL, 10)

	require.ErrorIs(t, err, context.Canceled, "should stop on canceled context")
}

func TestUnitFetchJSON(t *testing.T) {
	tests := map[string]struct {
		body     string
		wantName string
		wantErr  error
	}{
		"ok":           {body: `{"name":"torch"}`, wantName: "torch"},
		"invalid json": {body: `<html>`, wantErr: fetcher.ErrInvalidJSON},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
				_, _ = wrt.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			var dst struct {
				Name string `json:"name"`
			}
			fet := fetcher.NewFetcher(srv.Client(), userAgent, acceptLanguage)
			err := fet.FetchJSON(context.TODO(), srv.URL, &dst)

			require.ErrorIs(t, err, tt.wantErr, "should return correct error")
			assert.Equal(t, tt.wantName, dst.Name, "should decode body")
		})
	}
}

// fakeTimer fires immediately and records requested durations.
type fakeTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func (t *fakeTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time {
	return t.c
}

// readAndClose reads ReadCloser, closes it and returns result as string.
func readAndClose(t *testing.T, reader io.ReadCloser) string {
	t.Helper()

	if !assert.NotNil(t, reader, "reader shouldn't be nil") {
		return ""
	}

	result, err := io.ReadAll(reader)
	if !assert.NoError(t, err, "can't read reader") {
		return ""
	}

	assert.NoError(t, reader.Close(), "can't close reader")

	return string(result)
}

// validateHeaders asserts that request contains expected headers.
func validateHeaders(t *testing.T, headers http.Header, expected map[string]string) {
	t.Helper()

	for header, expectedValue := range expected {
		assert.Equalf(t, expectedValue, headers.Get(header), "request should contain correct value for header %s", header)
	}
}
