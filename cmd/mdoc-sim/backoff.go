package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Open retry defaults. A failed Open leaves the transport FAILED, so every
// attempt runs on a fresh session.
const (
	InitialOpenBackoff = 250 * time.Millisecond
	MaxOpenBackoff     = 5 * time.Second
	BackoffMultiplier  = 2.0
	JitterFactor       = 0.25
)

// Backoff calculates exponential backoff delays with jitter.
type Backoff struct {
	mu sync.Mutex

	current    time.Duration
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
	attempts   int

	rng *rand.Rand
}

// BackoffConfig allows customizing backoff parameters. Zero values take
// the defaults above; a negative Jitter disables jitter.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// NewBackoff creates a backoff calculator.
func NewBackoff(cfg BackoffConfig) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = InitialOpenBackoff
	}
	if cfg.Max <= 0 {
		cfg.Max = MaxOpenBackoff
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = BackoffMultiplier
	}
	if cfg.Jitter == 0 {
		cfg.Jitter = JitterFactor
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}

	return &Backoff{
		current:    cfg.Initial,
		initial:    cfg.Initial,
		max:        cfg.Max,
		multiplier: cfg.Multiplier,
		jitter:     cfg.Jitter,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next delay (with jitter) and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.current
	if b.jitter > 0 {
		delay += time.Duration(float64(b.current) * b.jitter * b.rng.Float64())
	}

	b.attempts++
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next
	return delay
}

// Reset puts the backoff back to its initial delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}

// Attempts returns the number of delays handed out since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// openWithRetry opens the session's holder transport, resetting the session
// and backing off between failed attempts. It returns the number of
// attempts made.
func openWithRetry(ctx context.Context, s *session, attempts int, b *Backoff) (int, error) {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = s.Open(ctx); err == nil {
			return i, nil
		}
		if i == attempts || ctx.Err() != nil {
			return i, err
		}

		delay := b.Next()
		s.logger.Warn("open failed, retrying", "attempt", i, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return i, fmt.Errorf("open: %w", ctx.Err())
		}
		if rerr := s.Reset(); rerr != nil {
			return i, rerr
		}
	}
	return attempts, err
}
