//go:build debug_mem_utils

package memutils

const (
	// poisonValue is written over memory that has been handed back to an allocator so that reads through a
	// stale slice are easy to spot
	poisonValue byte = 0xCD
)

// DebugPoison overwrites a released region with a recognizable byte pattern.
// This method no-ops unless the debug_mem_utils build tag is present.
func DebugPoison(data []byte) {
	for i := range data {
		data[i] = poisonValue
	}
}

// IsPoisoned reports whether every byte of data still carries the pattern written by DebugPoison.
// This method always returns true unless the debug_mem_utils build tag is present.
func IsPoisoned(data []byte) bool {
	for _, b := range data {
		if b != poisonValue {
			return false
		}
	}

	return true
}

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_mem_utils build tag is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops unless the debug_mem_utils build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}
