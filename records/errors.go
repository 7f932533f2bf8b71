// Copyright (c) 2026 Deepsel Systems. All rights reserved.

package records

import "fmt"

// ErrMalformedVersion is returned when the canonical record's value
// cannot be parsed as a three-integer dotted version.
type ErrMalformedVersion struct {
	Path  string
	Value string
	Err   error
}

func (e *ErrMalformedVersion) Error() string {
	return fmt.Sprintf("malformed version %q in %s: %v", e.Value, e.Path, e.Err)
}

func (e *ErrMalformedVersion) Unwrap() error {
	return e.Err
}

// ErrWriteFile is returned when file I/O operations fail.
type ErrWriteFile struct {
	Op   string // read, write, find
	Path string
	Err  error
}

func (e *ErrWriteFile) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ErrWriteFile) Unwrap() error {
	return e.Err
}
