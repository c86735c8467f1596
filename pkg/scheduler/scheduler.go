// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/tombee/webconn/internal/log"
)

// ErrClosed is returned by Submit after Close has been called.
var ErrClosed = errors.New("scheduler: closed")

// Scheduler dispatches units of work under per-bucket rate limits.
type Scheduler interface {
	// RegisterBucket sets the minimum interval between dispatches in bucket
	// id. An interval <= 0 means unlimited. Registering an existing bucket
	// is a no-op.
	RegisterBucket(id int, interval time.Duration)

	// Submit queues run for execution in bucket. If the work cannot be
	// started after Submit returned nil (for example ctx is canceled while
	// waiting for admission), abort is called instead of run.
	Submit(ctx context.Context, bucket int, run func(ctx context.Context), abort func(error)) error

	// Close stops accepting work and waits for queued work to finish.
	Close(ctx context.Context) error
}

// Config configures a RateLimited scheduler.
type Config struct {
	// CapacityFraction is the share of runtime.NumCPU() used as concurrent
	// worker slots when Workers is 0. Default: 0.4. Must be in (0, 1].
	CapacityFraction float64

	// Workers fixes the number of worker slots. 0 derives it from
	// CapacityFraction.
	Workers int

	// DefaultInterval applies to buckets registered lazily on first use.
	// Default: 0 (unlimited).
	DefaultInterval time.Duration

	// Logger receives lifecycle and admission logs. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{CapacityFraction: 0.4}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Workers == 0 && (c.CapacityFraction <= 0 || c.CapacityFraction > 1) {
		return fmt.Errorf("capacity_fraction must be in (0, 1], got %v", c.CapacityFraction)
	}
	if c.DefaultInterval < 0 {
		return fmt.Errorf("default_interval must be >= 0, got %v", c.DefaultInterval)
	}
	return nil
}

// WorkerCount returns the number of worker slots the config yields; never
// less than one.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	n := int(math.Floor(float64(runtime.NumCPU()) * c.CapacityFraction))
	if n < 1 {
		n = 1
	}
	return n
}

// RateLimited is a Scheduler backed by one token bucket per rate bucket and a
// weighted semaphore bounding concurrent work.
type RateLimited struct {
	slots           *semaphore.Weighted
	workers         int
	defaultInterval time.Duration
	logger          *slog.Logger

	mu      sync.Mutex
	buckets map[int]*rate.Limiter
	closed  bool
	wg      sync.WaitGroup
}

var _ Scheduler = (*RateLimited)(nil)

// NewRateLimited creates a RateLimited scheduler.
func NewRateLimited(cfg Config) (*RateLimited, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	workers := cfg.WorkerCount()
	s := &RateLimited{
		slots:           semaphore.NewWeighted(int64(workers)),
		workers:         workers,
		defaultInterval: cfg.DefaultInterval,
		logger:          log.WithComponent(cfg.Logger, "scheduler"),
		buckets:         make(map[int]*rate.Limiter),
	}

	s.logger.Debug("scheduler started", "workers", workers)
	return s, nil
}

// Workers returns the number of concurrent worker slots.
func (s *RateLimited) Workers() int {
	return s.workers
}

// RegisterBucket implements Scheduler.
func (s *RateLimited) RegisterBucket(id int, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerLocked(id, interval)
}

func (s *RateLimited) registerLocked(id int, interval time.Duration) *rate.Limiter {
	if lim, ok := s.buckets[id]; ok {
		return lim
	}

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	lim := rate.NewLimiter(limit, 1)
	s.buckets[id] = lim

	s.logger.Debug("rate bucket registered", log.BucketKey, id, "interval", interval.String())
	return lim
}

// Interval reports the registered interval of bucket id. ok is false for
// unknown buckets; an unlimited bucket reports 0.
func (s *RateLimited) Interval(id int) (interval time.Duration, ok bool) {
	s.mu.Lock()
	lim, ok := s.buckets[id]
	s.mu.Unlock()
	if !ok {
		return 0, false
	}
	if lim.Limit() == rate.Inf {
		return 0, true
	}
	return time.Duration(float64(time.Second) / float64(lim.Limit())), true
}

// Submit implements Scheduler.
func (s *RateLimited) Submit(ctx context.Context, bucket int, run func(ctx context.Context), abort func(error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		rejectedTotal.WithLabelValues("closed").Inc()
		return ErrClosed
	}
	lim := s.registerLocked(bucket, s.defaultInterval)
	s.wg.Add(1)
	s.mu.Unlock()

	label := strconv.Itoa(bucket)
	submittedTotal.WithLabelValues(label).Inc()

	go func() {
		defer s.wg.Done()
		queued := time.Now()

		if err := lim.Wait(ctx); err != nil {
			rejectedTotal.WithLabelValues("canceled").Inc()
			abort(err)
			return
		}
		if err := s.slots.Acquire(ctx, 1); err != nil {
			rejectedTotal.WithLabelValues("canceled").Inc()
			abort(err)
			return
		}
		defer s.slots.Release(1)

		admissionWait.WithLabelValues(label).Observe(time.Since(queued).Seconds())
		inFlight.Inc()
		defer inFlight.Dec()

		run(ctx)
	}()

	return nil
}

// Close implements Scheduler. It is safe to call more than once.
func (s *RateLimited) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Debug("scheduler closed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
