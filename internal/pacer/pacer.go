// Package pacer spaces out sequential requests to one origin.
package pacer

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Throttle blocks until next task may start.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Pacer lets tasks start at most once per interval, each start is delayed by random jitter.
type Pacer struct {
	limiter *rate.Limiter
	jitter  time.Duration
	random  func(n int64) int64
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option is custom configuration of Pacer.
type Option func(p *Pacer)

// New returns new Pacer. Non-positive interval disables limiting and non-positive jitter disables jitter.
func New(interval, jitter time.Duration, ops ...Option) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	p := &Pacer{
		limiter: rate.NewLimiter(limit, 1),
		jitter:  jitter,
		random:  rand.Int63n,
		sleep:   sleep,
	}

	for _, op := range ops {
		op(p)
	}

	return p
}

// Unlimited returns Pacer which never waits.
func Unlimited() *Pacer {
	return New(0, 0)
}

// Wait blocks until interval since previous task passed plus jitter.
// First call returns without interval wait.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	if p.jitter <= 0 {
		return ctx.Err()
	}

	return p.sleep(ctx, time.Duration(p.random(int64(p.jitter)+1)))
}

// Each runs fn for items in order, waiting on throttle before every item.
// It stops at first error returned by throttle or fn.
func Each[T any](ctx context.Context, throttle Throttle, items []T, fn func(context.Context, T) error) error {
	for _, item := range items {
		if err := throttle.Wait(ctx); err != nil {
			return err
		}
		if err := fn(ctx, item); err != nil {
			return err
		}
	}

	return nil
}

// WithSleep sets custom sleep function used for jitter.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pacer) {
		p.sleep = fn
	}
}

// WithRandom sets custom random source returning value in [0;n).
func WithRandom(fn func(n int64) int64) Option {
	return func(p *Pacer) {
		p.random = fn
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
