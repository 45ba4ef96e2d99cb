package couch

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonResponse(status int, body string) *Response {
	return &Response{
		StatusCode:  status,
		ContentType: "application/json",
		Body:        []byte(body),
	}
}

func TestResponse_IsJSON(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        bool
	}{
		{"Plain", "application/json", true},
		{"WithCharset", "application/json; charset=utf-8", true},
		{"HTML", "text/html", false},
		{"Missing", "", false},
		{"Garbage", ";;;", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &Response{ContentType: tc.contentType}
			assert.Equal(t, tc.want, resp.IsJSON())
		})
	}
}

func TestClassify_SuccessIsNil(t *testing.T) {
	assert.NoError(t, Classify(IntentRead, jsonResponse(200, `{"ok":true}`)))
	assert.NoError(t, Classify(IntentCreateDatabase, jsonResponse(201, `{"ok":true}`)))
	assert.NoError(t, Classify(IntentWriteDocument, jsonResponse(202, `{"ok":true}`)))
}

func TestClassify_SuccessWithoutJSONContent(t *testing.T) {
	resp := &Response{StatusCode: 200, ContentType: "text/html", Body: []byte("<html></html>")}
	err := Classify(IntentRead, resp)

	var notJSON *ResponseNotJSONError
	require.ErrorAs(t, err, &notJSON)
	assert.Equal(t, "text/html", notJSON.ContentType)
}

func TestClassify_NotFound(t *testing.T) {
	err := Classify(IntentRead, jsonResponse(404, `{"error":"not_found","reason":"missing"}`))

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "not_found", notFound.Response.Err)
	assert.Equal(t, "missing", notFound.Response.Reason)
}

func TestClassify_Unauthorized(t *testing.T) {
	body := `{"error":"unauthorized","reason":"Name or password is incorrect."}`

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		err := Classify(IntentRead, jsonResponse(status, body))

		var unauthorized *UnauthorizedError
		require.ErrorAs(t, err, &unauthorized, "status %d", status)
		assert.Equal(t, "unauthorized", unauthorized.Response.Err)
	}
}

func TestClassify_ConflictDependsOnIntent(t *testing.T) {
	existsBody := `{"error":"file_exists","reason":"The database could not be created, the file already exists."}`
	conflictBody := `{"error":"conflict","reason":"Document update conflict."}`

	t.Run("CreateDatabase", func(t *testing.T) {
		err := Classify(IntentCreateDatabase, jsonResponse(409, existsBody))

		var exists *DatabaseExistsError
		require.ErrorAs(t, err, &exists)
		assert.Equal(t, "file_exists", exists.Response.Err)
	})

	t.Run("WriteDocument", func(t *testing.T) {
		err := Classify(IntentWriteDocument, jsonResponse(409, conflictBody))

		var conflict *DocumentConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "conflict", conflict.Response.Err)
	})

	t.Run("Read", func(t *testing.T) {
		// A 409 without a writing intent has no specific meaning and
		// falls through to the generic classification.
		err := Classify(IntentRead, jsonResponse(409, conflictBody))

		var server *ServerResponseError
		require.ErrorAs(t, err, &server)
		assert.Equal(t, 409, server.StatusCode)
		require.NotNil(t, server.Response)
		assert.Equal(t, "conflict", server.Response.Err)
	})
}

func TestClassify_GenericErrorKeepsStatus(t *testing.T) {
	t.Run("UndecodableBody", func(t *testing.T) {
		resp := &Response{StatusCode: 500, ContentType: "text/plain", Body: []byte("gateway exploded")}
		err := Classify(IntentRead, resp)

		var server *ServerResponseError
		require.ErrorAs(t, err, &server)
		assert.Equal(t, 500, server.StatusCode)
		assert.Nil(t, server.Response)
	})

	t.Run("DecodableBody", func(t *testing.T) {
		err := Classify(IntentRead, jsonResponse(500, `{"error":"internal_server_error","reason":"broken"}`))

		var server *ServerResponseError
		require.ErrorAs(t, err, &server)
		assert.Equal(t, 500, server.StatusCode)
		require.NotNil(t, server.Response)
		assert.Equal(t, "internal_server_error", server.Response.Err)
	})
}

func TestClassify_SpecificStatusWithBrokenBody(t *testing.T) {
	t.Run("NotJSON", func(t *testing.T) {
		resp := &Response{StatusCode: 404, ContentType: "text/html", Body: []byte("<html>not found</html>")}
		err := Classify(IntentRead, resp)

		var notJSON *ResponseNotJSONError
		assert.ErrorAs(t, err, &notJSON)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		err := Classify(IntentRead, jsonResponse(404, `{"error":"not_found"`))

		var decodeErr *JSONDecodeError
		assert.ErrorAs(t, err, &decodeErr)
	})

	t.Run("IncompleteErrorBody", func(t *testing.T) {
		err := Classify(IntentRead, jsonResponse(404, `{"error":"not_found"}`))

		var decodeErr *JSONDecodeError
		assert.ErrorAs(t, err, &decodeErr)
	})
}

func TestDecodeErrorResponse(t *testing.T) {
	er, err := jsonResponse(404, `{"error":"not_found","reason":"deleted"}`).DecodeErrorResponse()
	require.NoError(t, err)
	assert.Equal(t, ErrorResponse{Err: "not_found", Reason: "deleted"}, er)

	_, err = (&Response{StatusCode: 404, ContentType: "text/plain", Body: []byte("nope")}).DecodeErrorResponse()
	var notJSON *ResponseNotJSONError
	assert.ErrorAs(t, err, &notJSON)
}

func TestDecodeSuccess(t *testing.T) {
	var result struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, DecodeSuccess(jsonResponse(200, `{"ok":true}`), &result))
	assert.True(t, result.OK)

	err := DecodeSuccess(jsonResponse(200, `{"ok":`), &result)
	var decodeErr *JSONDecodeError
	assert.ErrorAs(t, err, &decodeErr)
}
