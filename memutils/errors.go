package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// ErrOutOfSpace is returned by allocators that cannot find room for a request. Allocators wrap it with the
// size that was requested, so use errors.Is to test for it.
var ErrOutOfSpace error = errors.New("allocator out of space")

// ErrEmpty is returned when popping from a ring that holds no elements
var ErrEmpty error = errors.New("allocator is empty")

// ErrInvalidFree is returned when a region is released that was never allocated, or was allocated with a
// different size
var ErrInvalidFree error = errors.New("region is not a live allocation")

// ErrInvalidSize is returned for zero-sized or negative requests
var ErrInvalidSize error = errors.New("allocation size must be greater than zero")
