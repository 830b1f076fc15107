// Package apperr provides the coded error taxonomy shared by the session and
// its collaborators.
package apperr

import "fmt"

// Code is a machine-readable error code.
type Code string

const (
	// CodeValidation reports bad user input such as an oversized or non-image upload.
	CodeValidation Code = "VALIDATION"
	// CodeInvalidState reports an operation outside its allowed workflow state.
	CodeInvalidState Code = "INVALID_STATE"
	// CodeAssetLoadFailed reports a stamp image that could not be fetched or decoded.
	CodeAssetLoadFailed Code = "ASSET_LOAD_FAILED"
	// CodeNotReady reports an export with no base image or no overlays.
	CodeNotReady Code = "NOT_READY"
)

// Sentinels for errors.Is; they match any *Error with the same code.
var (
	ErrValidation      = &Error{Code: CodeValidation}
	ErrInvalidState    = &Error{Code: CodeInvalidState}
	ErrAssetLoadFailed = &Error{Code: CodeAssetLoadFailed}
	ErrNotReady        = &Error{Code: CodeNotReady}
)

// Error is the domain error type.
type Error struct {
	Code      Code   // Machine-readable error code
	Message   string // User-facing message
	OverlayID string // Offending overlay, if any
	Cause     error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a format string.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// AssetLoad creates an AssetLoadFailed error naming the overlay.
func AssetLoad(overlayID, alt string, cause error) *Error {
	return &Error{
		Code:      CodeAssetLoadFailed,
		Message:   fmt.Sprintf("failed to load stamp image %q (overlay %s)", alt, overlayID),
		OverlayID: overlayID,
		Cause:     cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
