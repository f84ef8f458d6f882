// Package errors provides structured error types with helpful suggestions.
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents the category of error.
type ErrorCode string

const (
	// Pool errors
	ErrPoolTimeout    ErrorCode = "POOL_TIMEOUT"
	ErrPoolShutdown   ErrorCode = "POOL_SHUTDOWN"
	ErrPoolAtCapacity ErrorCode = "POOL_AT_CAPACITY"
	ErrConnFailed     ErrorCode = "CONN_FAILED"
	ErrConnNotReady   ErrorCode = "CONN_NOT_CONNECTED"

	// Query errors
	ErrQueryRejected ErrorCode = "QUERY_REJECTED"
	ErrQueryFailed   ErrorCode = "QUERY_FAILED"
	ErrTxFailed      ErrorCode = "TX_FAILED"
	ErrTableUnknown  ErrorCode = "TABLE_UNKNOWN"

	// Config errors
	ErrConfigInvalid  ErrorCode = "CONFIG_INVALID"
	ErrConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"

	// General errors
	ErrGeneral ErrorCode = "GENERAL_ERROR"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorBold  = "\033[1m"
)

// StrataError is a structured error with a code and an actionable suggestion.
type StrataError struct {
	Code       ErrorCode
	Message    string
	Suggestion string
	Cause      error
}

// Error implements the error interface.
func (e *StrataError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *StrataError) Unwrap() error {
	return e.Cause
}

// Print outputs the error in a user-friendly colored format.
func (e *StrataError) Print() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s%sError:%s %s\n", colorBold, colorRed, colorReset, e.Message))
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("  %v\n", e.Cause))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n%sSuggestion:%s %s\n", colorCyan, colorReset, e.Suggestion))
	}

	return sb.String()
}

// NewPoolError creates a pool-related error.
func NewPoolError(code ErrorCode, message string) *StrataError {
	return &StrataError{
		Code:       code,
		Message:    message,
		Suggestion: Suggestions[code],
	}
}

// NewQueryError creates a query-related error.
func NewQueryError(code ErrorCode, message string) *StrataError {
	return &StrataError{
		Code:       code,
		Message:    message,
		Suggestion: Suggestions[code],
	}
}

// NewConfigError creates a configuration-related error.
func NewConfigError(code ErrorCode, message string) *StrataError {
	return &StrataError{
		Code:       code,
		Message:    message,
		Suggestion: Suggestions[code],
	}
}

// WithSuggestion replaces the suggestion on the error.
func (e *StrataError) WithSuggestion(suggestion string) *StrataError {
	e.Suggestion = suggestion
	return e
}

// WithCause attaches the underlying error.
func (e *StrataError) WithCause(err error) *StrataError {
	e.Cause = err
	return e
}

// Suggestions provides common suggestion messages.
var Suggestions = map[ErrorCode]string{
	ErrPoolTimeout:    "The pool is exhausted. Raise max_connections or reduce concurrent load.",
	ErrPoolShutdown:   "The server is shutting down; retry against a running instance.",
	ErrPoolAtCapacity: "Raise max_connections in strata.yaml, or release borrowed connections sooner.",
	ErrConnFailed:     "Check that the database is reachable and the DSN in strata.yaml is correct.",
	ErrQueryRejected:  "Each tool accepts one statement kind: query (SELECT), exec (INSERT/UPDATE/DELETE), ddl (CREATE/ALTER/DROP).",
	ErrConfigNotFound: "Run 'strata init' to create a strata.yaml in the current directory.",
	ErrConfigInvalid:  "min_connections must be <= max_connections and all durations must be positive.",
}

// SuggestSimilar finds similar strings using Levenshtein distance.
func SuggestSimilar(input string, options []string) string {
	input = strings.ToLower(input)
	var best string
	bestDist := len(input) + 1

	for _, opt := range options {
		dist := levenshtein(input, strings.ToLower(opt))
		if dist < bestDist && dist <= 3 { // Only suggest if close enough
			bestDist = dist
			best = opt
		}
	}

	if best != "" {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return ""
}

// levenshtein calculates the edit distance between two strings.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
