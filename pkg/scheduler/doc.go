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

// Package scheduler runs units of blocking work under per-bucket rate limits
// and hands back Deferred results.
//
// A bucket is a logical rate-limit group identified by an int. Buckets are
// registered with a minimum interval between dispatches; unknown buckets are
// registered lazily on first use with the scheduler's default interval.
//
//	s, err := scheduler.NewRateLimited(scheduler.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	s.RegisterBucket(1, 500*time.Millisecond)
//
//	d := scheduler.Go(ctx, s, 1, nil, func(ctx context.Context, fail func(error)) int {
//	    return 42
//	})
//	v, err := d.WaitTimeout(5 * time.Second)
//
// Work that never runs (closed scheduler, cancelled context, panic) resolves
// to the zero value. GoWithFallback builds the value from the error instead.
package scheduler
