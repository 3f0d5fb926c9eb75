// Package types error taxonomy.
//
// Every decode failure is a *DecodeError carrying a machine-readable code
// and a structured details map, never a bare string. Callers branch on the
// code via CodeOf or errors.As rather than string matching.
package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code classifies a decode failure.
type Code string

// Failure codes. Every stage fails fast with the first error encountered;
// no stage swallows or downgrades an earlier stage's error.
const (
	// CodeSpecInvalid indicates the codec spec fails its structural invariants.
	CodeSpecInvalid Code = "SPEC_INVALID"

	// CodeStreamNotFound indicates the replay file does not exist.
	CodeStreamNotFound Code = "STREAM_NOT_FOUND"

	// CodeIOError indicates the replay file is unreadable or the container
	// is structurally corrupt.
	CodeIOError Code = "IO_ERROR"

	// CodeUnknownSymbol indicates an extracted order id has no entry in the
	// spec's symbol table.
	CodeUnknownSymbol Code = "UNKNOWN_SYMBOL"

	// CodeChecksumMismatch indicates the decoded payload failed integrity
	// verification.
	CodeChecksumMismatch Code = "CHECKSUM_MISMATCH"

	// CodePayloadInvalid indicates the payload violates the structural or
	// schema contract.
	CodePayloadInvalid Code = "PAYLOAD_INVALID"
)

// DecodeError is a classified decode failure.
// It preserves any underlying error in the chain for errors.Is/As.
type DecodeError struct {
	Code    Code
	Msg     string
	Details map[string]any
	Err     error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Details[k])
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewError creates a classified decode error without details.
func NewError(code Code, msg string) *DecodeError {
	return &DecodeError{Code: code, Msg: msg}
}

// NewErrorf creates a classified decode error with a formatted message.
func NewErrorf(code Code, format string, args ...any) *DecodeError {
	return &DecodeError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// WithDetails attaches a structured details map and returns the error.
func (e *DecodeError) WithDetails(details map[string]any) *DecodeError {
	e.Details = details
	return e
}

// WithCause attaches an underlying error and returns the error.
func (e *DecodeError) WithCause(err error) *DecodeError {
	e.Err = err
	return e
}

// CodeOf returns the classification code of err, or "" if err is not a
// DecodeError.
func CodeOf(err error) Code {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a DecodeError with the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
