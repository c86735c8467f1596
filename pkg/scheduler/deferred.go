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
	"fmt"
	"sync"
	"time"

	webconnerrors "github.com/tombee/webconn/pkg/errors"
)

// Deferred is the handle to a unit of work that completes asynchronously.
//
// A Deferred resolves exactly once with a value and an error. When the work
// ran, the value is meaningful even if the error is set: work may report a
// failure through its fail callback and still return a value describing it.
// When the work never ran (scheduler closed, context canceled before
// admission) Ran reports false and the value is the one produced by the
// fallback passed to GoWithFallback, or the zero value under Go.
type Deferred[R any] struct {
	done   chan struct{}
	once   sync.Once
	value  R
	err    error
	ran    bool
	valued bool
	label  string
}

func newDeferred[R any](label string) *Deferred[R] {
	return &Deferred[R]{done: make(chan struct{}), label: label}
}

// Resolved returns a Deferred that is already complete. The value counts as
// having run.
func Resolved[R any](value R, err error) *Deferred[R] {
	d := newDeferred[R]("resolved value")
	d.resolve(value, err, true)
	return d
}

func (d *Deferred[R]) resolve(value R, err error, ran bool) {
	d.settle(value, err, ran, ran)
}

func (d *Deferred[R]) settle(value R, err error, ran, valued bool) {
	d.once.Do(func() {
		d.value = value
		d.err = err
		d.ran = ran
		d.valued = valued
		close(d.done)
	})
}

// Done is closed once the Deferred has resolved.
func (d *Deferred[R]) Done() <-chan struct{} {
	return d.done
}

// Ran reports whether the work executed. Only meaningful after Done.
func (d *Deferred[R]) Ran() bool {
	<-d.done
	return d.ran
}

// Wait blocks until the Deferred resolves or ctx is done.
func (d *Deferred[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// WaitTimeout blocks for at most timeout. On expiry it returns a
// *errors.TimeoutError; the work itself keeps running.
func (d *Deferred[R]) WaitTimeout(timeout time.Duration) (R, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d.done:
		return d.value, d.err
	case <-timer.C:
		var zero R
		return zero, &webconnerrors.TimeoutError{
			Operation: "wait for " + d.label,
			Duration:  timeout,
			Cause:     context.DeadlineExceeded,
		}
	}
}

// Then registers callbacks invoked on a separate goroutine once the Deferred
// resolves: onError when the error is set, onSuccess otherwise. Either may
// be nil.
func (d *Deferred[R]) Then(onSuccess func(R), onError func(error)) {
	d.OnComplete(func(value R, err error) {
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(value)
		}
	})
}

// OnComplete registers fn to receive both value and error once the Deferred
// resolves. fn runs on a separate goroutine.
func (d *Deferred[R]) OnComplete(fn func(R, error)) {
	go func() {
		<-d.done
		fn(d.value, d.err)
	}()
}

// Map derives a Deferred whose value is fn applied to d's value. fn runs if
// d's work ran or a fallback supplied the value, and it also sees values that
// carry an error so it can re-shape failure results. An error from fn takes
// precedence over d's. The derived Deferred reports the same Ran as d.
func Map[R, O any](d *Deferred[R], fn func(R) (O, error)) *Deferred[O] {
	out := newDeferred[O](d.label)
	go func() {
		<-d.done
		if !d.valued {
			var zero O
			out.resolve(zero, d.err, false)
			return
		}

		value, err := fn(d.value)
		if err == nil {
			err = d.err
		}
		out.settle(value, err, d.ran, true)
	}()
	return out
}

// Go submits work to s in the given bucket and returns its Deferred.
//
// work receives a fail callback; each call forwards the error to onError
// immediately and the first one becomes the Deferred's error. A panic in
// work resolves the Deferred with an error instead of crashing the process.
// If s refuses the submission or the work is aborted before it starts,
// onError is called and the Deferred resolves with Ran() == false and the
// zero value.
func Go[R any](ctx context.Context, s Scheduler, bucket int, onError func(error), work func(ctx context.Context, fail func(error)) R) *Deferred[R] {
	return GoWithFallback(ctx, s, bucket, onError, nil, work)
}

// GoWithFallback is Go with a value for work that never produced one. When
// the submission is refused, aborted before admission or the work panics,
// the Deferred resolves with fallback(err) instead of the zero value.
func GoWithFallback[R any](ctx context.Context, s Scheduler, bucket int, onError func(error), fallback func(error) R, work func(ctx context.Context, fail func(error)) R) *Deferred[R] {
	d := newDeferred[R](fmt.Sprintf("work in bucket %d", bucket))

	report := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	abort := func(err error) {
		report(err)
		if fallback == nil {
			var zero R
			d.resolve(zero, err, false)
			return
		}
		d.settle(fallback(err), err, false, true)
	}

	run := func(ctx context.Context) {
		var (
			mu       sync.Mutex
			reported error
		)
		fail := func(err error) {
			if err == nil {
				return
			}
			mu.Lock()
			if reported == nil {
				reported = err
			}
			mu.Unlock()
			report(err)
		}

		defer func() {
			if r := recover(); r != nil {
				abort(fmt.Errorf("scheduled work panicked: %v", r))
			}
		}()

		value := work(ctx, fail)

		mu.Lock()
		err := reported
		mu.Unlock()
		d.resolve(value, err, true)
	}

	if err := s.Submit(ctx, bucket, run, abort); err != nil {
		abort(err)
	}
	return d
}
