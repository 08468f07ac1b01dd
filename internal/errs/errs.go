// Package errs defines the semantic error kinds used throughout the
// forensic decoder and wraps them with github.com/juju/errors so causes
// and stack traces survive the many layers of page/record decoding.
package errs

import (
	jerrors "github.com/juju/errors"
)

// Kind is one of the error kinds named in spec.md §7. It is semantic,
// not a Go type — every Kind is carried by the same wrapped error value.
type Kind string

const (
	// InvalidBuffer: cursor read past end, or a buffer's length does not
	// match the page/block size it is supposed to hold.
	InvalidBuffer Kind = "invalid_buffer"
	// ChecksumMismatch: neither checksum algorithm validates a page.
	ChecksumMismatch Kind = "checksum_mismatch"
	// UnknownType: a page type, redo record type, or column type is not
	// in the relevant dispatch table.
	UnknownType Kind = "unknown_type"
	// InvalidSpecification: a textual data-type spec failed to parse.
	InvalidSpecification Kind = "invalid_specification"
	// SchemaMissing: no describer was supplied for a requested index.
	SchemaMissing Kind = "schema_missing"
	// DictionaryCorruption: a self-describing dictionary table failed to
	// parse using its own bootstrap describer.
	DictionaryCorruption Kind = "dictionary_corruption"
	// ListLengthMismatch: a walked linked list's length disagrees with
	// its declared base length.
	ListLengthMismatch Kind = "list_length_mismatch"
)

// kindError pairs a Kind with the juju/errors-wrapped cause so Is() can
// recover the kind after any number of Annotate layers.
type kindError struct {
	kind Kind
	err  error
}

func (k *kindError) Error() string { return k.err.Error() }
func (k *kindError) Unwrap() error { return k.err }
func (k *kindError) Cause() error  { return jerrors.Cause(k.err) }

// New creates a fresh error of the given kind.
func New(kind Kind, msg string) error {
	return &kindError{kind: kind, err: jerrors.New(msg)}
}

// Errorf creates a fresh error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &kindError{kind: kind, err: jerrors.Errorf(format, args...)}
}

// Annotate wraps err with msg, preserving its kind if it already has one,
// or tagging it with kind if it doesn't.
func Annotate(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	wrapped := jerrors.Annotate(err, msg)
	if ke, ok := err.(*kindError); ok {
		return &kindError{kind: ke.kind, err: wrapped}
	}
	return &kindError{kind: kind, err: wrapped}
}

// Annotatef is Annotate with a format string.
func Annotatef(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	wrapped := jerrors.Annotatef(err, format, args...)
	if ke, ok := err.(*kindError); ok {
		return &kindError{kind: ke.kind, err: wrapped}
	}
	return &kindError{kind: kind, err: wrapped}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ke, ok := err.(*kindError); ok {
			return ke.kind == kind
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// KindOf returns the Kind carried by err, and false if err carries none.
func KindOf(err error) (Kind, bool) {
	if ke, ok := err.(*kindError); ok {
		return ke.kind, true
	}
	return "", false
}

// Stack renders the full juju/errors trace, for diagnostics/logging.
func Stack(err error) string {
	return jerrors.ErrorStack(err)
}
