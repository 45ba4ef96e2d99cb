package couch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the error body the CouchDB server returns when it
// fails to process a request, e.g. {"error": "not_found", "reason": "missing"}.
// Both fields are mandatory when decoding.
type ErrorResponse struct {
	Err    string `json:"error"`
	Reason string `json:"reason"`
}

func (e ErrorResponse) String() string {
	return e.Err + ": " + e.Reason
}

// UnmarshalJSON rejects bodies that lack either field instead of
// defaulting them to empty strings.
func (e *ErrorResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Err    *string `json:"error"`
		Reason *string `json:"reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Err == nil {
		return fmt.Errorf("error response is missing required field %q", "error")
	}
	if raw.Reason == nil {
		return fmt.Errorf("error response is missing required field %q", "reason")
	}
	e.Err = *raw.Err
	e.Reason = *raw.Reason
	return nil
}

// DatabaseExistsError means the database already exists.
type DatabaseExistsError struct {
	Response ErrorResponse
}

func (e *DatabaseExistsError) Error() string {
	return "the database already exists: " + e.Response.String()
}

// DocumentConflictError means a document with the same id already exists
// or the given revision is not the latest revision for the document.
type DocumentConflictError struct {
	Response ErrorResponse
}

func (e *DocumentConflictError) Error() string {
	return "a conflicting document with the same id exists: " + e.Response.String()
}

// NotFoundError means the target resource, e.g. database or document,
// does not exist or is deleted.
type NotFoundError struct {
	Response ErrorResponse
}

func (e *NotFoundError) Error() string {
	return "the resource cannot be found: " + e.Response.String()
}

// UnauthorizedError means the client lacks permission to complete the action.
type UnauthorizedError struct {
	Response ErrorResponse
}

func (e *UnauthorizedError) Error() string {
	return "the client has insufficient privilege: " + e.Response.String()
}

// ServerResponseError is the catch-all for error statuses that have no
// more specific classification. Response is nil when the error body could
// not be decoded; the status code is preserved either way.
type ServerResponseError struct {
	StatusCode int
	Response   *ErrorResponse
}

func (e *ServerResponseError) Error() string {
	var description string
	if e.StatusCode >= 400 && e.StatusCode < 600 {
		description = "the server responded with an error"
	} else {
		description = "the server responded with an unexpected status"
	}
	s := fmt.Sprintf("%s (%d", description, e.StatusCode)
	if reason := http.StatusText(e.StatusCode); reason != "" {
		s += ": " + reason
	}
	s += ")"
	if e.Response != nil {
		s += ": " + e.Response.String()
	}
	return s
}

// ResponseNotJSONError means the response carried a non-JSON content type
// where a JSON body was expected. ContentType is empty when the response
// had no content type at all.
type ResponseNotJSONError struct {
	ContentType string
}

func (e *ResponseNotJSONError) Error() string {
	if e.ContentType == "" {
		return "the response content has no type"
	}
	return "the response has non-JSON content: content type is " + e.ContentType
}

// UnexpectedResponseError means the response was successful and valid
// JSON, but did not match the expected structure.
type UnexpectedResponseError struct {
	Description string
}

func (e *UnexpectedResponseError) Error() string {
	return "the server responded unexpectedly: " + e.Description
}

// JSONDecodeError wraps a failure to decode a JSON body.
type JSONDecodeError struct {
	Cause error
}

func (e *JSONDecodeError) Error() string {
	return "an error occurred while decoding JSON: " + e.Cause.Error()
}

func (e *JSONDecodeError) Unwrap() error { return e.Cause }

// JSONEncodeError wraps a failure to encode a request body as JSON.
type JSONEncodeError struct {
	Cause error
}

func (e *JSONEncodeError) Error() string {
	return "an error occurred while encoding JSON: " + e.Cause.Error()
}

func (e *JSONEncodeError) Unwrap() error { return e.Cause }

// TransportError wraps a network-level failure from the HTTP transport.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return "an HTTP transport error occurred: " + e.Cause.Error()
}

func (e *TransportError) Unwrap() error { return e.Cause }

// URLParseError wraps a failure to form a request URL.
type URLParseError struct {
	Cause error
}

func (e *URLParseError) Error() string {
	return "the URL is badly formatted: " + e.Cause.Error()
}

func (e *URLParseError) Unwrap() error { return e.Cause }

// PathParseErrorKind identifies which structural rule a resource path violated.
type PathParseErrorKind int

const (
	BadSegment PathParseErrorKind = iota
	EmptySegment
	NoLeadingSlash
	TooFewSegments
	TooManySegments
	TrailingSlash
)

// PathParseError means a resource path is badly formatted. It signals a
// defect in the caller's input, never a transient condition.
type PathParseError struct {
	Kind PathParseErrorKind

	// Detail qualifies BadSegment, e.g. the keyword segment that was
	// expected or the separator that was found.
	Detail string
}

func (e *PathParseError) Error() string {
	return "the path is badly formatted: " + e.kindDescription()
}

func (e *PathParseError) kindDescription() string {
	switch e.Kind {
	case BadSegment:
		return fmt.Sprintf("segment is bad, %s", e.Detail)
	case EmptySegment:
		return "path segment is empty"
	case NoLeadingSlash:
		return "path does not begin with a slash"
	case TooFewSegments:
		return "too few path segments"
	case TooManySegments:
		return "too many path segments"
	case TrailingSlash:
		return "path ends with a slash"
	}
	return "unknown path defect"
}

// RevisionParseErrorKind identifies which structural rule a revision
// token violated.
type RevisionParseErrorKind int

const (
	DigestNotAllHex RevisionParseErrorKind = iota
	DigestParse
	NumberParse
	TooFewParts
	ZeroSequenceNumber
)

// RevisionParseError means a revision token is badly formatted. Cause is
// set for the kinds that wrap an underlying parse failure.
type RevisionParseError struct {
	Kind  RevisionParseErrorKind
	Cause error
}

func (e *RevisionParseError) Error() string {
	return "the revision is badly formatted: " + e.kindDescription()
}

func (e *RevisionParseError) kindDescription() string {
	switch e.Kind {
	case DigestNotAllHex:
		return "digest part contains one or more non-hexadecimal characters"
	case DigestParse:
		return "the digest part is invalid: " + e.Cause.Error()
	case NumberParse:
		return "the number part is invalid: " + e.Cause.Error()
	case TooFewParts:
		return "too few parts, missing number part and/or digest part"
	case ZeroSequenceNumber:
		return "the number part is zero"
	}
	return "unknown revision defect"
}

func (e *RevisionParseError) Unwrap() error { return e.Cause }

// decodeStrict unmarshals data into v, rejecting unknown fields.
func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
