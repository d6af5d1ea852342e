package errors

import (
	"fmt"
	"strings"
	"time"
)

// Error types for the analysis pipeline
type ErrorType string

const (
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeParse    ErrorType = "parse"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeInvalidFile  ErrorType = "invalid_file"

	ErrorTypeConfig ErrorType = "config"

	// Symbol graph errors
	ErrorTypeCycle     ErrorType = "cycle"
	ErrorTypeDuplicate ErrorType = "duplicate"
)

// AnalysisError represents an error during an analysis run
type AnalysisError struct {
	Type       ErrorType
	FilePath   string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewAnalysisError creates a new analysis error with context
func NewAnalysisError(op string, err error) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypeAnalysis,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error
func (e *AnalysisError) WithFile(path string) *AnalysisError {
	e.FilePath = path
	return e
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a syntax error reported by the parser
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d (near token %q): %v",
		e.FilePath, e.Line, e.Column, e.Token, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	switch {
	case isPermissionError(err):
		errorType = ErrorTypePermission
	case op == "validate":
		errorType = ErrorTypeInvalidFile
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.HasSuffix(errStr, "permission denied") || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Suggestion string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithSuggestion attaches a "did you mean" hint
func (e *ConfigError) WithSuggestion(s string) *ConfigError {
	e.Suggestion = s
	return e
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// CycleError reports an inheritance chain that loops back on itself.
// Chain lists the qualified type names in walk order, ending with the
// first repeated name.
type CycleError struct {
	Type      ErrorType
	Chain     []string
	Timestamp time.Time
}

// NewCycleError creates a new cycle error
func NewCycleError(chain []string) *CycleError {
	return &CycleError{
		Type:      ErrorTypeCycle,
		Chain:     chain,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic inheritance: %s", strings.Join(e.Chain, " -> "))
}

// DuplicateDeclarationError records two declarations claiming the same
// qualified name. It is informational: the later declaration wins.
type DuplicateDeclarationError struct {
	Type      ErrorType
	Key       string
	First     string
	Second    string
	Timestamp time.Time
}

// NewDuplicateDeclarationError creates a new duplicate declaration error
func NewDuplicateDeclarationError(key, first, second string) *DuplicateDeclarationError {
	return &DuplicateDeclarationError{
		Type:      ErrorTypeDuplicate,
		Key:       key,
		First:     first,
		Second:    second,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("duplicate declaration %s: %s replaced by %s", e.Key, e.First, e.Second)
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
