// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package result

// Result is a Success/Failure wrapper. Exactly one variant is ever set.
// Success carries degradation flags: booleans that record non-critical
// subsystem failures encountered while producing the value (for example
// knn_disabled). The HTTP layer emits the flags as part of the response.
type Result[T any] struct {
	value   T
	err     *DomainError
	flags   map[string]bool
	failure bool
}

// Ok wraps a successful value with no degradation.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// OkDegraded wraps a successful value computed along a reduced path.
func OkDegraded[T any](value T, flags map[string]bool) Result[T] {
	copied := make(map[string]bool, len(flags))
	for k, v := range flags {
		copied[k] = v
	}
	return Result[T]{value: value, flags: copied}
}

// Err wraps a domain error.
func Err[T any](err *DomainError) Result[T] {
	return Result[T]{err: err, failure: true}
}

// IsSuccess reports whether the result holds a value.
func (r Result[T]) IsSuccess() bool {
	return !r.failure
}

// IsFailure reports whether the result holds an error.
func (r Result[T]) IsFailure() bool {
	return r.failure
}

// Value returns the success value. Only meaningful when IsSuccess.
func (r Result[T]) Value() T {
	return r.value
}

// Error returns the domain error, or nil on success.
func (r Result[T]) Error() *DomainError {
	return r.err
}

// Flag reports whether a degradation flag is set.
func (r Result[T]) Flag(name string) bool {
	return r.flags[name]
}

// DegradationFlags returns a copy of the flags map.
func (r Result[T]) DegradationFlags() map[string]bool {
	out := make(map[string]bool, len(r.flags))
	for k, v := range r.flags {
		out[k] = v
	}
	return out
}

// WithFlag returns a copy of a successful result with one more flag
// set. Calling WithFlag on a failure returns the failure unchanged.
func (r Result[T]) WithFlag(name string) Result[T] {
	if r.failure {
		return r
	}
	flags := r.DegradationFlags()
	flags[name] = true
	return Result[T]{value: r.value, flags: flags}
}
