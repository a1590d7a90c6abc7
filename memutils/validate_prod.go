//go:build !debug_mem_utils

package memutils

// DebugPoison overwrites a released region with a recognizable byte pattern.
// This method no-ops unless the debug_mem_utils build tag is present.
func DebugPoison(data []byte) {
}

// IsPoisoned reports whether every byte of data still carries the pattern written by DebugPoison.
// This method always returns true unless the debug_mem_utils build tag is present.
func IsPoisoned(data []byte) bool {
	return true
}

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_mem_utils build tag is present
func DebugValidate(validatable Validatable) {
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops unless the debug_mem_utils build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
}
