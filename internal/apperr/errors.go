// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperr classifies the failures of the aggregation pipeline.
package apperr

import (
	"errors"
	"fmt"
)

// Kind names an error category.
type Kind string

const (
	// KindValidation marks bad caller input. Never retried.
	KindValidation Kind = "validation"
	// KindTransient marks rate limiting, server errors, timeouts and
	// connection failures that survived the retry budget.
	KindTransient Kind = "source_transient"
	// KindSource marks a non-retryable API failure such as a 4xx status.
	KindSource Kind = "source"
	// KindParse marks an undecodable response envelope.
	KindParse Kind = "parse"
	// KindNormalization marks a record missing a required field.
	KindNormalization Kind = "normalization"
)

// Error is a classified pipeline error. Source is empty for validation errors.
type Error struct {
	Kind    Kind
	Source  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a caller-input error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Transient returns a retry-exhausted fetch error for source.
func Transient(source string, err error, format string, args ...any) *Error {
	return &Error{Kind: KindTransient, Source: source, Message: fmt.Sprintf(format, args...), Err: err}
}

// Source returns a non-retryable API error for source.
func Source(source string, err error, format string, args ...any) *Error {
	return &Error{Kind: KindSource, Source: source, Message: fmt.Sprintf(format, args...), Err: err}
}

// Parse returns an envelope decoding error for source.
func Parse(source string, err error, format string, args ...any) *Error {
	return &Error{Kind: KindParse, Source: source, Message: fmt.Sprintf(format, args...), Err: err}
}

// Normalization returns a required-field error for source.
func Normalization(source string, format string, args ...any) *Error {
	return &Error{Kind: KindNormalization, Source: source, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
