package common

import (
	"fmt"
	"strings"
)

// MissingSourceError indicates that a bin file referenced by a cue sheet could
// not be found under any of the accepted name variants.
type MissingSourceError struct {
	CuePath string
	Name    string
	Tried   []string
}

func (e *MissingSourceError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("%s: %q referenced by %s", ErrFileDoesNotExist, e.Name, e.CuePath)
	}
	return fmt.Sprintf("%s: %q referenced by %s (tried %s)",
		ErrFileDoesNotExist, e.Name, e.CuePath, strings.Join(e.Tried, ", "))
}

// FormatError indicates malformed input: a bad magic, a timecode that does not
// parse or a record shorter than its declared length.
type FormatError struct {
	Source string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := e.Reason
	if e.Source != "" {
		msg = fmt.Sprintf("%s: %s", e.Source, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// PreconditionError indicates well-formed input that the operation cannot
// handle, such as a non MODE2/2352 image for CU2 generation.
type PreconditionError struct {
	Source string
	Reason string
}

func (e *PreconditionError) Error() string {
	if e.Source == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

// ExistingOutputError indicates that an output file is already present.
type ExistingOutputError struct {
	Path string
}

func (e *ExistingOutputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTargetExists, e.Path)
}
