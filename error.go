package scholarmail

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFLICT = "conflict"
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"

	// EEXTRACT marks a failure of the structured extraction backend.
	EEXTRACT = "extract"

	// ESTORAGE marks a failure of the document store.
	ESTORAGE = "storage"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("scholarmail error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// FormatError reports that an email body does not look like a Google Scholar
// alert digest. It is returned as a value by a Validator; the email it names
// has been read and inspected, so it must still be marked processed.
type FormatError struct {
	EmailID               string
	Reason                string
	IsParsed              bool
	IsGoogleScholarFormat bool
}

// NewFormatError returns a FormatError for an email that was parsed but did
// not match the expected shape.
func NewFormatError(emailID, reason string) *FormatError {
	return &FormatError{
		EmailID:               emailID,
		Reason:                reason,
		IsParsed:              true,
		IsGoogleScholarFormat: false,
	}
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("email %s is not a Google Scholar alert: %s", e.EmailID, e.Reason)
}
