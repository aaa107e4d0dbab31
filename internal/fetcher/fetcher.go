package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxAttempts is number of attempts used by FetchHTML and FetchJSON.
	DefaultMaxAttempts = 10

	baseBackoff = 1200 * time.Millisecond
	maxBackoff  = 60 * time.Second
	maxJitter   = 600 * time.Millisecond
)

// Option is custom configuration of Fetcher.
type Option func(f *Fetcher)

// Fetcher fetches storefront pages and payloads, retrying rate limited and failed requests.
type Fetcher struct {
	client         *http.Client
	userAgent      string
	acceptLanguage string
	maxAttempts    int
	jitter         func() time.Duration
	newTimer       func() backoff.Timer
	logger         *zerolog.Logger
}

// NewFetcher returns new Fetcher.
func NewFetcher(client *http.Client, userAgent, acceptLanguage string, ops ...Option) *Fetcher {
	nop := zerolog.Nop()

	f := &Fetcher{
		client:         client,
		userAgent:      userAgent,
		acceptLanguage: acceptLanguage,
		maxAttempts:    DefaultMaxAttempts,
		jitter:         randomJitter,
		newTimer:       func() backoff.Timer { return &realTimer{} },
		logger:         &nop,
	}

	for _, op := range ops {
		op(f)
	}

	return f
}

// FetchWithRetry sends GET request to url and returns response with 2xx status.
// Responses with 429 or 5xx status and transport errors are retried up to maxAttempts
// with Retry-After or exponential backoff plus jitter. Other statuses fail immediately with StatusError.
// The caller is responsible for closing returned response body.
func (f *Fetcher) FetchWithRetry(ctx context.Context, url string, maxAttempts int) (*http.Response, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := &retryPolicy{jitter: f.jitter}
	var resp *http.Response

	operation := func() error {
		var err error
		resp, err = f.get(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			policy.retryAfter = 0
			return fmt.Errorf("can't get http response: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		statusErr := &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
		}
		resp = nil

		if !statusErr.Retryable() {
			return backoff.Permanent(statusErr)
		}

		policy.retryAfter = parseRetryAfter(statusErr.RetryAfter)
		return statusErr
	}

	notify := func(err error, wait time.Duration) {
		f.logger.Debug().
			Err(err).
			Str("url", url).
			Dur("wait", wait).
			Msg("retrying request")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxAttempts-1)), ctx)
	if err := backoff.RetryNotifyWithTimer(operation, b, notify, f.newTimer()); err != nil {
		return nil, err
	}

	return resp, nil
}

// FetchHTML returns body of page at url.
func (f *Fetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	resp, err := f.FetchWithRetry(ctx, url, f.maxAttempts)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("can't read response body: %w", err)
	}

	return string(body), nil
}

// FetchJSON decodes JSON body of response from url into dst.
func (f *Fetcher) FetchJSON(ctx context.Context, url string, dst any) error {
	resp, err := f.FetchWithRetry(ctx, url, f.maxAttempts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	return nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("can't build http request: %w", err))
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", f.acceptLanguage)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	return f.client.Do(req)
}

// retryPolicy is backoff.BackOff preferring server provided Retry-After.
type retryPolicy struct {
	attempt    int
	retryAfter time.Duration
	jitter     func() time.Duration
}

// NextBackOff returns wait before next attempt.
func (p *retryPolicy) NextBackOff() time.Duration {
	p.attempt++

	wait := p.retryAfter
	if wait <= 0 {
		wait = exponentialBackoff(p.attempt)
	}

	return wait + p.jitter()
}

// Reset resets policy to initial state.
func (p *retryPolicy) Reset() {
	p.attempt = 0
	p.retryAfter = 0
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		return maxBackoff
	}

	return min(maxBackoff, baseBackoff*time.Duration(1<<(attempt-1)))
}

func parseRetryAfter(value string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || secs <= 0 {
		return 0
	}

	return time.Duration(secs * float64(time.Second))
}

func randomJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(maxJitter) + 1))
}

type realTimer struct {
	timer *time.Timer
}

func (t *realTimer) Start(d time.Duration) {
	if t.timer == nil {
		t.timer = time.NewTimer(d)
		return
	}
	t.timer.Reset(d)
}

func (t *realTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *realTimer) C() <-chan time.Time {
	return t.timer.C
}

// WithMaxAttempts sets number of attempts used by FetchHTML and FetchJSON.
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		f.maxAttempts = n
	}
}

// WithJitter sets custom jitter source.
func WithJitter(fn func() time.Duration) Option {
	return func(f *Fetcher) {
		f.jitter = fn
	}
}

// WithTimer sets custom backoff timer factory.
func WithTimer(fn func() backoff.Timer) Option {
	return func(f *Fetcher) {
		f.newTimer = fn
	}
}

// WithLogger sets Fetcher's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}
