package core

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the top-level category of an import failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindNetwork
	KindDecode
	KindParsing
	KindRendering
	KindSave
	KindCancelled
)

// String returns the category name used in logs.
func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "InvalidURL"
	case KindNetwork:
		return "NetworkError"
	case KindDecode:
		return "DecodeError"
	case KindParsing:
		return "ParsingError"
	case KindRendering:
		return "RenderingFailed"
	case KindSave:
		return "SaveFailed"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Reason narrows a Network or Parsing failure.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTimeout
	ReasonConnectionFailed
	ReasonTLSFailure
	ReasonMalformedURL
	ReasonHTTPStatus
	ReasonDataTooLarge
	ReasonOther
	ReasonNoMainContent
	ReasonNoReadableContent
	ReasonContentTooLong
)

// String returns the reason name used in logs.
func (r Reason) String() string {
	switch r {
	case ReasonTimeout:
		return "Timeout"
	case ReasonConnectionFailed:
		return "ConnectionFailed"
	case ReasonTLSFailure:
		return "TLSFailure"
	case ReasonMalformedURL:
		return "MalformedURL"
	case ReasonHTTPStatus:
		return "HTTPStatus"
	case ReasonDataTooLarge:
		return "DataTooLarge"
	case ReasonOther:
		return "Other"
	case ReasonNoMainContent:
		return "NoMainContent"
	case ReasonNoReadableContent:
		return "NoReadableContent"
	case ReasonContentTooLong:
		return "ContentTooLong"
	default:
		return ""
	}
}

// Error is the typed failure returned by every pipeline stage.
// Use errors.Is with the sentinels below to test for a category or reason.
type Error struct {
	Kind       Kind
	Reason     Reason
	StatusCode int   // set when Reason is ReasonHTTPStatus
	Err        error // underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	name := e.Kind.String()
	if e.Reason != ReasonNone {
		name += "." + e.Reason.String()
	}
	if e.Reason == ReasonHTTPStatus {
		name = fmt.Sprintf("%s(%d)", name, e.StatusCode)
	}
	if e.Err != nil {
		return name + ": " + e.Err.Error()
	}
	return name
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels of the same kind. A sentinel without a reason matches
// every reason of its kind; a sentinel with a status code matches only that code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Reason != ReasonNone && t.Reason != e.Reason {
		return false
	}
	if t.StatusCode != 0 && t.StatusCode != e.StatusCode {
		return false
	}
	return true
}

// Message returns the text shown to the user for this failure.
func (e *Error) Message() string {
	switch e.Kind {
	case KindInvalidURL:
		return "The URL you entered is not valid. Please check it and try again."
	case KindNetwork:
		switch e.Reason {
		case ReasonTimeout:
			return "The website took too long to respond. Try again later or try a different website."
		case ReasonConnectionFailed:
			return "Could not connect to the website. Check the address and your internet connection."
		case ReasonTLSFailure:
			return "The website's security certificate could not be verified."
		case ReasonMalformedURL:
			return "The URL format is invalid. Enter a web address starting with http:// or https://."
		case ReasonHTTPStatus:
			return fmt.Sprintf("The website answered with HTTP %d and no content could be imported.", e.StatusCode)
		case ReasonDataTooLarge:
			return "The page is too large to import."
		default:
			return "Could not retrieve content from this website."
		}
	case KindDecode:
		return "The page could not be decoded as UTF-8 text."
	case KindParsing:
		switch e.Reason {
		case ReasonNoMainContent:
			return "Could not find the main content of this page."
		case ReasonNoReadableContent:
			return "No readable content was found on this page."
		case ReasonContentTooLong:
			return "This page is too long to import. Try a shorter article."
		default:
			return "The page content could not be parsed."
		}
	case KindRendering:
		return "An error occurred while converting the content into a document."
	case KindSave:
		return "The document was created but could not be saved to your library."
	case KindCancelled:
		return "The import was cancelled."
	default:
		return "The import failed."
	}
}

// Sentinels for errors.Is.
var (
	ErrInvalidURL = &Error{Kind: KindInvalidURL}

	ErrNetwork          = &Error{Kind: KindNetwork}
	ErrTimeout          = &Error{Kind: KindNetwork, Reason: ReasonTimeout}
	ErrConnectionFailed = &Error{Kind: KindNetwork, Reason: ReasonConnectionFailed}
	ErrTLSFailure       = &Error{Kind: KindNetwork, Reason: ReasonTLSFailure}
	ErrMalformedURL     = &Error{Kind: KindNetwork, Reason: ReasonMalformedURL}
	ErrHTTPStatus       = &Error{Kind: KindNetwork, Reason: ReasonHTTPStatus}
	ErrDataTooLarge     = &Error{Kind: KindNetwork, Reason: ReasonDataTooLarge}

	ErrDecode = &Error{Kind: KindDecode}

	ErrParsing           = &Error{Kind: KindParsing}
	ErrNoMainContent     = &Error{Kind: KindParsing, Reason: ReasonNoMainContent}
	ErrNoReadableContent = &Error{Kind: KindParsing, Reason: ReasonNoReadableContent}
	ErrContentTooLong    = &Error{Kind: KindParsing, Reason: ReasonContentTooLong}

	ErrRenderingFailed = &Error{Kind: KindRendering}
	ErrSaveFailed      = &Error{Kind: KindSave}
	ErrCancelled       = &Error{Kind: KindCancelled}
)

// NewError builds a typed failure wrapping cause.
func NewError(kind Kind, reason Reason, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: cause}
}

// HTTPStatusError builds the failure for a non-2xx response.
func HTTPStatusError(code int) *Error {
	return &Error{Kind: KindNetwork, Reason: ReasonHTTPStatus, StatusCode: code}
}

// Cancelled builds a cancellation failure from a context error.
func Cancelled(cause error) *Error {
	return &Error{Kind: KindCancelled, Err: cause}
}

// CheckCancelled returns a Cancelled failure if ctx is done, otherwise nil.
// Stages call it before starting work and before each unit of sub-work.
func CheckCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if cause := context.Cause(ctx); cause != nil {
			var typed *Error
			if errors.As(cause, &typed) {
				return typed
			}
			return Cancelled(cause)
		}
		return Cancelled(err)
	}
	return nil
}

// AsError returns err as a *Error, classifying unknown errors as Kind Unknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return &Error{Kind: KindUnknown, Err: err}
}
