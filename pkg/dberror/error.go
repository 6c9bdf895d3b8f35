// Package dberror defines the structured error type shared by the storage and
// execution layers.
package dberror

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCategory classifies errors by their nature and appropriate handling strategy.
type ErrorCategory int

const (
	// ErrCategoryUser represents errors caused by invalid caller input: bad field
	// numbers, out-of-range vector components, unsupported operators.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategorySetup represents construction-time failures of an operator.
	// The instance that produced it must not be used further.
	ErrCategorySetup

	// ErrCategorySystem represents failures reported by a lower storage layer.
	ErrCategorySystem

	// ErrCategoryData represents errors related to malformed stored bytes.
	ErrCategoryData
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryUser:
		return "user"
	case ErrCategorySetup:
		return "setup"
	case ErrCategorySystem:
		return "system"
	case ErrCategoryData:
		return "data"
	default:
		return "unknown"
	}
}

// Error codes.
const (
	CodeRange                = "RANGE_ERROR"
	CodeIndex                = "INDEX_ERROR"
	CodeNullArgument         = "NULL_ARGUMENT"
	CodeTypeMismatch         = "TYPE_MISMATCH"
	CodeUnknownAttributeType = "UNKNOWN_ATTRIBUTE_TYPE"
	CodeFieldOutOfBounds     = "FIELD_OUT_OF_BOUNDS"
	CodeInvalidRelation      = "INVALID_RELATION"
	CodeSetup                = "SETUP_ERROR"
	CodePredicateEval        = "PREDICATE_EVAL_ERROR"
	CodeUnknownIndexType     = "UNKNOWN_INDEX_TYPE"
	CodeUnknownKeyType       = "UNKNOWN_KEY_TYPE"
	CodeStoreNotFound        = "STORE_NOT_FOUND"
	CodeIndexNotFound        = "INDEX_NOT_FOUND"
	CodeIndexSetup           = "INDEX_SETUP_ERROR"
	CodeSchema               = "SCHEMA_ERROR"
	CodeIndexScan            = "INDEX_SCAN_ERROR"
	CodeScanClosed           = "SCAN_CLOSED"
	CodeCorruptRecord        = "CORRUPT_RECORD"
)

// DBError represents a structured database error with rich context information.
type DBError struct {
	// Code is a unique identifier for this error type (e.g., "FIELD_OUT_OF_BOUNDS").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific error instance,
	// including secondary failures that were recorded but not surfaced.
	Detail string

	// Operation identifies the stage that was running when the error occurred.
	// Examples: "cursor pull", "record fetch", "predicate evaluation".
	Operation string

	// Component identifies the system component where the error originated.
	// Examples: "IndexScan", "BTreeIndex", "PredicateEvaluator".
	Component string

	// Cause is the underlying error that triggered this database error.
	Cause error

	// Stack contains the call stack where this error was created.
	Stack []uintptr
}

// New creates a new DBError with the specified code, category, and message.
func New(category ErrorCategory, code, message string) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Newf is New with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...any) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Stack:    captureStack(),
	}
}

// Wrap wraps an existing error with database-specific context information.
// If the error is already a DBError, it enriches the existing error with
// operation and component context (only if not already set).
func Wrap(err error, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	if dbErr, ok := err.(*DBError); ok && dbErr.Code == code {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Code:      code,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// WithDetail sets Detail and returns the receiver for chaining.
func (e *DBError) WithDetail(detail string) *DBError {
	e.Detail = detail
	return e
}

// WithCause sets Cause and returns the receiver for chaining.
func (e *DBError) WithCause(cause error) *DBError {
	e.Cause = cause
	return e
}

// WithComponent sets Component and returns the receiver for chaining.
func (e *DBError) WithComponent(component string) *DBError {
	e.Component = component
	return e
}

// HasCode reports whether any DBError in err's chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var dbErr *DBError
		if !errors.As(err, &dbErr) {
			return false
		}
		if dbErr.Code == code {
			return true
		}
		err = dbErr.Cause
	}
	return false
}

// CodeOf returns the code of the outermost DBError in err's chain, or "".
func CodeOf(err error) string {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Code
	}
	return ""
}

// captureStack skips captureStack, New/Wrap and runtime.Callers itself.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the standard Go error interface
//
// The format follows the pattern:
// [ERROR_CODE] Message: Detail (operation: Operation, component: Component) caused by: underlying error
func (e *DBError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}

	if e.Operation != "" {
		fmt.Fprintf(&b, " (operation: %s", e.Operation)
		if e.Component != "" {
			fmt.Fprintf(&b, ", component: %s", e.Component)
		}
		b.WriteString(")")
	}

	if e.Cause != nil && e.Cause.Error() != e.Message {
		fmt.Fprintf(&b, " caused by: %v", e.Cause)
	}

	return b.String()
}

// Unwrap returns the underlying cause error, enabling error chain traversal
// with Go's standard error handling functions like errors.Is and errors.As.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// FormatStack returns a human-readable stack trace for debugging purposes.
func (e *DBError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "  %s\n    %s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}

	return b.String()
}
