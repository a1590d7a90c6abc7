package rhi

import "github.com/cockroachdb/errors"

var (
	// ErrAlreadyCompiled is returned when compiling a command list that is no longer recording
	ErrAlreadyCompiled = errors.New("command list was already compiled")
	// ErrNotCompiled is returned when submitting a command list that has not been compiled
	ErrNotCompiled = errors.New("command list has not been compiled")
	// ErrQueueMismatch is returned when a command list is submitted to a queue type other than the one it was
	// allocated for
	ErrQueueMismatch = errors.New("command list was allocated for a different queue")
	// ErrStillExecuting is returned when recycling a command list the GPU has not finished with
	ErrStillExecuting = errors.New("command list is still executing")
	// ErrUnknownCommand is returned when a command list contains a command the device cannot translate
	ErrUnknownCommand = errors.New("unknown render command")
	// ErrNotMappable is returned when mapping a buffer that lives in device-local memory
	ErrNotMappable = errors.New("buffer memory is not host visible")
	// ErrInvalidDescriptor is returned when a resource description cannot be satisfied
	ErrInvalidDescriptor = errors.New("invalid resource description")
	// ErrNotBindless is returned when asking for the global descriptor of a view that does not have one
	ErrNotBindless = errors.New("view is not in the global descriptor table")
)

// ErrOutOfBounds is returned when a copy or upload reaches past the end of a resource
var ErrOutOfBounds = errors.New("access is out of the resource's bounds")
