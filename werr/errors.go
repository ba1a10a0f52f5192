// Package werr defines the closed taxonomy of wire-parse and framing
// errors produced by the message, body and response packages.
package werr

import (
	"errors"
	"fmt"
)

// Kind distinguishes the error taxonomy from spec §7.
type Kind int

const (
	InvalidRequestLine Kind = iota
	LimitRequestLine
	InvalidRequestMethod
	InvalidHTTPVersion
	InvalidHeader
	InvalidHeaderName
	LimitRequestHeaders
	NoMoreData
	InvalidChunkSize
	UnsupportedTransferCoding
	ConfigurationProblem
)

func (k Kind) String() string {
	switch k {
	case InvalidRequestLine:
		return "InvalidRequestLine"
	case LimitRequestLine:
		return "LimitRequestLine"
	case InvalidRequestMethod:
		return "InvalidRequestMethod"
	case InvalidHTTPVersion:
		return "InvalidHTTPVersion"
	case InvalidHeader:
		return "InvalidHeader"
	case InvalidHeaderName:
		return "InvalidHeaderName"
	case LimitRequestHeaders:
		return "LimitRequestHeaders"
	case NoMoreData:
		return "NoMoreData"
	case InvalidChunkSize:
		return "InvalidChunkSize"
	case UnsupportedTransferCoding:
		return "UnsupportedTransferCoding"
	case ConfigurationProblem:
		return "ConfigurationProblem"
	default:
		return "Unknown"
	}
}

// ParseError is a wire-level failure tagged with its Kind, the way
// fasthttp wraps errSmallBuffer and friends with fmt.Errorf("...: %w").
type ParseError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// New builds a ParseError of the given kind.
func New(kind Kind, msg string) *ParseError {
	return &ParseError{Kind: kind, Msg: msg}
}

// Newf builds a ParseError with a formatted message.
func Newf(kind Kind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a ParseError carrying an underlying cause.
func Wrap(kind Kind, msg string, err error) *ParseError {
	return &ParseError{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is a ParseError of the given kind.
func Is(err error, kind Kind) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// Bug panics with a "BUG: " prefix, fasthttp's convention for
// programming errors that should never occur at runtime (double
// set_status, headers_data before body, etc).
func Bug(msg string) {
	panic("BUG: " + msg)
}
