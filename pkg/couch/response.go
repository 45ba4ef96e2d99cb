package couch

import (
	"encoding/json"
	"mime"
	"net/http"
)

// Intent is the caller-declared purpose of a request. The server reuses
// status codes across operations: a 409 means "database exists" when
// creating a database but "document conflict" when writing a document.
// Classification is therefore parameterized by intent, not status code
// alone.
type Intent int

const (
	// IntentRead covers lookups and any operation without a more
	// specific meaning attached to its status codes.
	IntentRead Intent = iota

	// IntentCreateDatabase marks a database creation, where a 409
	// means the database already exists.
	IntentCreateDatabase

	// IntentWriteDocument marks a document write, where a 409 means a
	// revision conflict.
	IntentWriteDocument
)

// Response is the decoded result of one HTTP exchange: the status code,
// the content type (empty if the server sent none) and the full body.
// It is inert data; classification never mutates it.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsJSON reports whether the response declares a JSON media type.
func (r *Response) IsJSON() bool {
	if r.ContentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// DecodeErrorResponse decodes the body as a server error description.
// Decoding is never assumed to succeed, even for documented error
// statuses: a non-JSON content type yields ResponseNotJSONError and a
// malformed or truncated body yields JSONDecodeError.
func (r *Response) DecodeErrorResponse() (ErrorResponse, error) {
	if !r.IsJSON() {
		return ErrorResponse{}, &ResponseNotJSONError{ContentType: r.ContentType}
	}
	var errorResponse ErrorResponse
	if err := json.Unmarshal(r.Body, &errorResponse); err != nil {
		return ErrorResponse{}, &JSONDecodeError{Cause: err}
	}
	return errorResponse, nil
}

// Classify maps one HTTP exchange onto the error taxonomy. It returns
// nil for a JSON-bearing success, meaning the caller should proceed to
// decode the payload. It performs no I/O and never retries; it is safe
// to classify many responses concurrently.
func Classify(intent Intent, resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// An unexpected content type on a success indicates a
		// protocol mismatch, surfaced distinctly from a decode error.
		if !resp.IsJSON() {
			return &ResponseNotJSONError{ContentType: resp.ContentType}
		}
		return nil
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return classified(resp, func(er ErrorResponse) error {
			return &NotFoundError{Response: er}
		})
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return classified(resp, func(er ErrorResponse) error {
			return &UnauthorizedError{Response: er}
		})
	case resp.StatusCode == http.StatusConflict && intent == IntentCreateDatabase:
		return classified(resp, func(er ErrorResponse) error {
			return &DatabaseExistsError{Response: er}
		})
	case resp.StatusCode == http.StatusConflict && intent == IntentWriteDocument:
		return classified(resp, func(er ErrorResponse) error {
			return &DocumentConflictError{Response: er}
		})
	}

	// Generic fallback: keep the status for diagnostics. The error body
	// is optional here; a failed decode is recorded as a nil Response
	// rather than discarding the status.
	var errorResponse *ErrorResponse
	if er, err := resp.DecodeErrorResponse(); err == nil {
		errorResponse = &er
	}
	return &ServerResponseError{StatusCode: resp.StatusCode, Response: errorResponse}
}

// classified builds the taxonomy variant for a status with a known
// meaning. A failure to decode the error body is itself the result.
func classified(resp *Response, wrap func(ErrorResponse) error) error {
	errorResponse, err := resp.DecodeErrorResponse()
	if err != nil {
		return err
	}
	return wrap(errorResponse)
}

// DecodeSuccess decodes a 2xx JSON payload into v. The content type is
// checked even though Classify already did so, keeping the helper safe
// to use on its own.
func DecodeSuccess(resp *Response, v interface{}) error {
	if !resp.IsJSON() {
		return &ResponseNotJSONError{ContentType: resp.ContentType}
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &JSONDecodeError{Cause: err}
	}
	return nil
}
