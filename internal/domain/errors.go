// Package domain defines the core types and interfaces for Redline.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for callers.
type ErrorKind string

const (
	// KindInvalidInput means a caller-supplied value violates a statutory
	// ceiling or a structural precondition.
	KindInvalidInput ErrorKind = "INVALID_INPUT"

	// KindUnavailable means upstream rate or reference data could not be
	// obtained. Infrastructure state, not caller error.
	KindUnavailable ErrorKind = "UNAVAILABLE"

	// KindNotFound means a handle or resource URI resolved to nothing.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindUnexpected covers everything else; surfaced as a short generic
	// payload at the boundary.
	KindUnexpected ErrorKind = "UNEXPECTED"
)

// Wire codes; JSON-RPC conventions where one exists.
const (
	CodeInvalidInput = -32602
	CodeUnavailable  = -32001
	CodeNotFound     = -32002
	CodeUnexpected   = -32603
)

// Error is the structured failure payload carried unchanged from the
// calculation layer to the boundary, where it is serialized for the caller.
type Error struct {
	Code    int            `json:"code"`
	Kind    ErrorKind      `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewInvalidInput creates an InvalidInput error with structured details.
func NewInvalidInput(message string, details map[string]any) *Error {
	return &Error{Code: CodeInvalidInput, Kind: KindInvalidInput, Message: message, Details: details}
}

// NewUnavailable creates an Unavailable error.
func NewUnavailable(message string) *Error {
	return &Error{Code: CodeUnavailable, Kind: KindUnavailable, Message: message}
}

// NewNotFound creates a NotFound error.
func NewNotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Kind: KindNotFound, Message: message}
}

// NewUnexpected wraps an arbitrary fault as a generic internal error.
// The original error text stays in logs, not in the payload.
func NewUnexpected(message string) *Error {
	return &Error{Code: CodeUnexpected, Kind: KindUnexpected, Message: message}
}

// KindOf returns the kind of err, or KindUnexpected for untyped errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// AsError converts err into a structured *Error, wrapping untyped faults
// as Unexpected without leaking internals beyond a short message.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return NewUnexpected("internal error")
}

// RiskLevel grades how close a value sits to a statutory ceiling.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical" // over a red line
)

// RedLineViolation carries the structured fields of a statutory-cap
// rejection. It travels inside an InvalidInput error, never inside a
// success result.
type RedLineViolation struct {
	RiskLevel  RiskLevel `json:"risk_level"`
	LegalBasis string    `json:"legal_basis"`
	Limit      float64   `json:"limit"`
	Provided   float64   `json:"provided"`
}

// Details renders the violation as error payload details.
func (v RedLineViolation) Details() map[string]any {
	return map[string]any{
		"risk_level":  string(v.RiskLevel),
		"legal_basis": v.LegalBasis,
		"limit":       v.Limit,
		"provided":    v.Provided,
	}
}
