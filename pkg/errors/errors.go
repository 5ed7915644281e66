// Package errors provides structured error types for qreuse.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and library callers
//   - Machine-readable error codes for programmatic handling
//   - Typed details for the outcomes callers branch on (malformed input,
//     infeasible targets, exhausted budgets)
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MALFORMED_CIRCUIT: The circuit violates the static-circuit contract
//   - *_INFEASIBLE*: A reduction target cannot be met
//   - BUDGET_EXCEEDED: A bounded search stopped before a definitive answer
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "target must be >= 0, got %d", k)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Typed details carry their own code
//	var mc *errors.MalformedCircuitError
//	if stderrors.As(err, &mc) {
//	    fmt.Println(mc.Qubit, mc.Index)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidMethod     Code = "INVALID_METHOD"
	ErrCodeInvalidHeuristic  Code = "INVALID_HEURISTIC"
	ErrCodeInvalidAssignment Code = "INVALID_ASSIGNMENT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Circuit contract violations
	ErrCodeMalformedCircuit Code = "MALFORMED_CIRCUIT"

	// Reduction outcomes
	ErrCodeInfeasibleAtTarget     Code = "INFEASIBLE_AT_TARGET"
	ErrCodeStructurallyInfeasible Code = "STRUCTURALLY_INFEASIBLE"
	ErrCodeBudgetExceeded         Code = "BUDGET_EXCEEDED"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal          Code = "INTERNAL_ERROR"
	ErrCodeInternalInvariant Code = "INTERNAL_INVARIANT"
	ErrCodeUnsupported       Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coded is implemented by the typed detail errors below.
type coded interface {
	error
	ErrorCode() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed detail error
// with a matching code.
func Is(err error, code Code) bool {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			if e.Code == code {
				return true
			}
		case coded:
			if e.ErrorCode() == code {
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coded:
			return e.ErrorCode()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// MalformedCircuitError reports a violation of the static-circuit contract:
// every logical qubit is measured exactly once as its last operation.
type MalformedCircuitError struct {
	Qubit  int    // Offending logical qubit (-1 when not qubit specific)
	Index  int    // Input operation index (-1 when not op specific)
	Reason string // Short description, e.g. "operation after measurement"
}

func (e *MalformedCircuitError) Error() string {
	switch {
	case e.Qubit >= 0 && e.Index >= 0:
		return fmt.Sprintf("malformed circuit: qubit %d at operation %d: %s", e.Qubit, e.Index, e.Reason)
	case e.Qubit >= 0:
		return fmt.Sprintf("malformed circuit: qubit %d: %s", e.Qubit, e.Reason)
	case e.Index >= 0:
		return fmt.Sprintf("malformed circuit: operation %d: %s", e.Index, e.Reason)
	}
	return "malformed circuit: " + e.Reason
}

// ErrorCode returns ErrCodeMalformedCircuit.
func (e *MalformedCircuitError) ErrorCode() Code { return ErrCodeMalformedCircuit }

// InfeasibleAtTargetError reports that a heuristic produced a valid
// assignment but could not fit it within the requested slot count, even
// though the target is structurally reachable.
type InfeasibleAtTargetError struct {
	Target    int
	Achieved  int
	Heuristic string
}

func (e *InfeasibleAtTargetError) Error() string {
	return fmt.Sprintf("%s reached %d slots, target was %d", e.Heuristic, e.Achieved, e.Target)
}

// ErrorCode returns ErrCodeInfeasibleAtTarget.
func (e *InfeasibleAtTargetError) ErrorCode() Code { return ErrCodeInfeasibleAtTarget }

// BudgetExceededError reports that a bounded search stopped before reaching
// a definitive answer. It never means "impossible".
type BudgetExceededError struct {
	Stage string // e.g. "graph", "minimum_remaining_values"
	Steps int64  // Steps performed before stopping
	Limit int64  // Configured step limit (0 when a deadline stopped the search)
}

func (e *BudgetExceededError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("%s: step budget of %d exhausted", e.Stage, e.Limit)
	}
	return fmt.Sprintf("%s: time budget exhausted after %d steps", e.Stage, e.Steps)
}

// ErrorCode returns ErrCodeBudgetExceeded.
func (e *BudgetExceededError) ErrorCode() Code { return ErrCodeBudgetExceeded }
