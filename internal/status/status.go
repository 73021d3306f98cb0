// Package status defines the error kinds returned across the bundle resolver.
// Callers match on kind with errors.Is:
//
//	if errors.Is(err, status.NotFound) { ... }
package status

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies a resolver failure
type Kind int

const (
	Unknown Kind = iota
	InvalidArgument
	NotFound
	ReadFailure
	CorruptArchive
	UnsupportedCompression
	TruncatedEntry
)

var kindNames = map[Kind]string{
	Unknown:                "unknown",
	InvalidArgument:        "invalid argument",
	NotFound:               "not found",
	ReadFailure:            "read failure",
	CorruptArchive:         "corrupt archive",
	UnsupportedCompression: "unsupported compression",
	TruncatedEntry:         "truncated entry",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error lets a bare Kind act as a sentinel for errors.Is
func (k Kind) Error() string {
	return k.String()
}

// Error is a failure with a kind, a human readable message and an optional cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against a Kind sentinel. NotFound also matches fs.ErrNotExist.
func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return k == e.Kind
	}
	return e.Kind == NotFound && target == fs.ErrNotExist
}

// Errorf builds an Error of the given kind
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around a cause
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Unknown
}
