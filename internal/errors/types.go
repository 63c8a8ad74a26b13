package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// JORFError represents a failure while reading, parsing or persisting gazette data
type JORFError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	Err         error     `json:"-"`
}

// ErrorType represents the categories of failures the extractor reports
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidPath
	ErrorTypeMarkerNotFound
	ErrorTypeMalformedCandidate
	ErrorTypeSeriesCodeInvalid
	ErrorTypeDateNotFound
	ErrorTypeInvalidPDF
	ErrorTypeCorruptState
	ErrorTypePersistence
)

// Error implements the error interface
func (e *JORFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.FilePath != "" {
		msg += " (" + e.FilePath + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *JORFError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidPath:
		return "INVALID_PATH"
	case ErrorTypeMarkerNotFound:
		return "MARKER_NOT_FOUND"
	case ErrorTypeMalformedCandidate:
		return "MALFORMED_CANDIDATE"
	case ErrorTypeSeriesCodeInvalid:
		return "SERIES_CODE_INVALID"
	case ErrorTypeDateNotFound:
		return "DATE_NOT_FOUND"
	case ErrorTypeInvalidPDF:
		return "INVALID_PDF"
	case ErrorTypeCorruptState:
		return "CORRUPT_STATE"
	case ErrorTypePersistence:
		return "PERSISTENCE"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether processing may continue after an error of this type.
// Persistence and corrupt-state failures end the run; everything else is isolated
// to a single document, candidate or setting.
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeInvalidPath, ErrorTypeMarkerNotFound, ErrorTypeMalformedCandidate,
		ErrorTypeSeriesCodeInvalid, ErrorTypeDateNotFound, ErrorTypeInvalidPDF:
		return true
	default:
		return false
	}
}

// New creates a new JORFError
func New(errorType ErrorType, message string) *JORFError {
	return &JORFError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// Wrap wraps err as a JORFError of the given type
func Wrap(errorType ErrorType, message string, err error) *JORFError {
	e := New(errorType, message)
	e.Err = err
	return e
}

// WithContext adds context to an existing JORFError
func (e *JORFError) WithContext(context string) *JORFError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing JORFError
func (e *JORFError) WithFile(filePath string) *JORFError {
	e.FilePath = filePath
	return e
}

// IsType reports whether any error in err's chain is a JORFError of type t
func IsType(err error, t ErrorType) bool {
	var je *JORFError
	if !stderrors.As(err, &je) {
		return false
	}
	return je.Type == t
}

// IsRecoverable reports whether err is a JORFError that does not end the run
func IsRecoverable(err error) bool {
	var je *JORFError
	if !stderrors.As(err, &je) {
		return false
	}
	return je.Recoverable
}

// ErrorCollection gathers the failures of one batch run
type ErrorCollection struct {
	Errors   []*JORFError `json:"errors"`
	Warnings []*JORFError `json:"warnings"`
}

// NewErrorCollection creates a new error collection
func NewErrorCollection() *ErrorCollection {
	return &ErrorCollection{
		Errors:   make([]*JORFError, 0),
		Warnings: make([]*JORFError, 0),
	}
}

// Add records err. Plain errors are wrapped as unknown errors. Recoverable
// errors are collected as errors too, since each one failed a document; use
// Warn for conditions that did not fail anything.
func (ec *ErrorCollection) Add(err error) {
	if err == nil {
		return
	}
	var je *JORFError
	if !stderrors.As(err, &je) {
		je = Wrap(ErrorTypeUnknown, "unexpected failure", err)
	}
	ec.Errors = append(ec.Errors, je)
}

// Warn records a non-failing condition
func (ec *ErrorCollection) Warn(err *JORFError) {
	if err == nil {
		return
	}
	ec.Warnings = append(ec.Warnings, err)
}

// Count returns the total number of errors and warnings
func (ec *ErrorCollection) Count() (errors, warnings int) {
	return len(ec.Errors), len(ec.Warnings)
}

// Summary returns a text summary of all errors and warnings
func (ec *ErrorCollection) Summary() string {
	errorCount, warningCount := ec.Count()
	if errorCount == 0 && warningCount == 0 {
		return "No errors or warnings"
	}
	return fmt.Sprintf("Found %d error(s) and %d warning(s)", errorCount, warningCount)
}
