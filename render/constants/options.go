package constants

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/rhi/memutils"
)

const (
	DefaultMaxVersions     int = 3
	DefaultQuantum         int = 256
	DefaultMaxConstantSize int = 1024
	DefaultTransientSize   int = 256_000
	DefaultPersistentSize  int = 256_000

	stagingAlignment int = 16
)

// Options contains optional settings when creating a Manager. Zero fields take their default.
type Options struct {
	// MaxVersions is the number of device-local copies persistent constants rotate through. Staging memory
	// for a version is only reused once the copies that read it have finished.
	MaxVersions int
	// Quantum is the granularity of every constant allocation and must be a power of two
	Quantum int
	// MaxConstantSize is the largest constant that can be allocated
	MaxConstantSize int
	// TransientSize is the size of the upload ring transient constants are carved from
	TransientSize int
	// PersistentSize is the size of each version's device-local buffer
	PersistentSize int
	// StagingSize is the size of each version's staging buffer. It defaults to PersistentSize.
	StagingSize int
}

func (o Options) withDefaults() Options {
	if o.MaxVersions == 0 {
		o.MaxVersions = DefaultMaxVersions
	}
	if o.Quantum == 0 {
		o.Quantum = DefaultQuantum
	}
	if o.MaxConstantSize == 0 {
		o.MaxConstantSize = DefaultMaxConstantSize
	}
	if o.TransientSize == 0 {
		o.TransientSize = DefaultTransientSize
	}
	if o.PersistentSize == 0 {
		o.PersistentSize = DefaultPersistentSize
	}
	if o.StagingSize == 0 {
		o.StagingSize = o.PersistentSize
	}
	return o
}

func (o Options) validate() error {
	if o.MaxVersions < 1 {
		return errors.Newf("max versions must be at least 1, but was %d", o.MaxVersions)
	}

	err := memutils.CheckPow2(o.Quantum, "quantum")
	if err != nil {
		return err
	}

	if o.MaxConstantSize > o.TransientSize || o.MaxConstantSize > o.PersistentSize {
		return errors.Newf("max constant size %d does not fit the transient (%d) or persistent (%d) buffers", o.MaxConstantSize, o.TransientSize, o.PersistentSize)
	}
	if o.TransientSize < o.Quantum || o.PersistentSize < o.Quantum || o.StagingSize < o.Quantum {
		return errors.Newf("buffer sizes must be at least one quantum (%d bytes)", o.Quantum)
	}

	return nil
}

// Validate reports whether a Manager could be created with o once defaults are applied
func (o Options) Validate() error {
	return o.withDefaults().validate()
}
