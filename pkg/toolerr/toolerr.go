// Package toolerr defines the tagged errors that tool handlers surface to
// callers. Every failure a tool can produce carries one of a fixed set of
// codes; the dispatcher renders them as error results so that no failure
// crosses the transport boundary unlabeled.
package toolerr

import (
	"errors"
	"fmt"
)

// Code identifies a failure class.
type Code string

const (
	// UpstreamRejected means the image service returned a non-success status.
	UpstreamRejected Code = "UpstreamRejected"
	// MalformedUpstreamResponse means the image service answered success but
	// the response body was missing the expected result fields.
	MalformedUpstreamResponse Code = "MalformedUpstreamResponse"
	// NoChannelConfigured means no channel was supplied and no process-wide
	// default exists.
	NoChannelConfigured Code = "NoChannelConfigured"
	// MessagingRejected means the messaging service's response envelope
	// reported a logical failure, regardless of HTTP status.
	MessagingRejected Code = "MessagingRejected"
	// AmbiguousOrMissingFileReference means zero or both of file id and
	// private URL were supplied.
	AmbiguousOrMissingFileReference Code = "AmbiguousOrMissingFileReference"
	// FileLookupFailed means the file id could not be resolved to a private
	// download address.
	FileLookupFailed Code = "FileLookupFailed"
	// FileDownloadFailed means the resolved address could not be downloaded.
	FileDownloadFailed Code = "FileDownloadFailed"
	// ResultExtractionFailed means a rendered edit summary did not contain a
	// recoverable result URL.
	ResultExtractionFailed Code = "ResultExtractionFailed"
	// UnknownOperation means the invoked tool name is not in the catalog.
	UnknownOperation Code = "UnknownOperation"
)

// Error is a failure tagged with a Code.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

// New creates a tagged error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a tagged error that wraps an underlying cause. The cause's
// text becomes the message.
func Wrap(code Code, err error) *Error {
	return &Error{Code: code, Message: err.Error(), wrapped: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// CodeOf returns the Code carried by err, or "" if err carries none.
func CodeOf(err error) Code {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}

	return ""
}

// Is reports whether err is tagged with code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
