// Package resource bounds the memory and I/O a process spends on frames.
//
//   - Memory: event matrices materialized from a store reserve their size
//     up front and fail fast when the budget is exhausted.
//   - IO: store reads and writes wait on a token bucket measured in bytes.
//
// A nil *Controller imposes no limits, so callers never need to check.
package resource
