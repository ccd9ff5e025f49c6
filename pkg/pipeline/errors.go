package pipeline

import (
	"fmt"

	"packpipe/pkg/platform"
	"packpipe/pkg/registry"
)

// ValidationError reports bad input: unknown algorithm, level out of range,
// empty file set. It is always raised before any codec runs.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// UnsupportedPlatformError reports an algorithm that exists but is not
// shipped for the current execution target.
type UnsupportedPlatformError struct {
	Name   string
	Kind   registry.Kind
	Target platform.Platform
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("%s %q is not available on platform %s", e.Kind, e.Name, e.Target)
}

// CorruptInputError reports bytes that Restore could not parse as the
// declared format.
type CorruptInputError struct {
	Reason string
	Err    error
}

func (e *CorruptInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt input: %s: %v", e.Reason, e.Err)
	}
	return "corrupt input: " + e.Reason
}

func (e *CorruptInputError) Unwrap() error { return e.Err }

// AlgorithmMismatchError reports input whose magic header contradicts the
// algorithm Restore was told to use. Detected is empty when the header
// matches no known algorithm.
type AlgorithmMismatchError struct {
	Declared string
	Detected string
}

func (e *AlgorithmMismatchError) Error() string {
	if e.Detected == "" {
		return fmt.Sprintf("input does not look like %s data", e.Declared)
	}
	return fmt.Sprintf("declared algorithm %s but input looks like %s", e.Declared, e.Detected)
}
