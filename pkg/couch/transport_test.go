package couch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/things", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("descending"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"db_name":"things"}`))
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL, nil, nil, nil)
	require.NoError(t, err)

	query := url.Values{}
	query.Set("descending", "true")
	resp, err := transport.Send(context.Background(), http.MethodGet, "/things", query, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"db_name":"things"}`, string(resp.Body))
}

func TestHTTPTransport_JoinsBasePath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/couch/things", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL+"/couch/", nil, nil, nil)
	require.NoError(t, err)

	_, err = transport.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil)
	require.NoError(t, err)
}

func TestHTTPTransport_ContentTypeFollowsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		} else {
			assert.Empty(t, r.Header.Get("Content-Type"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL, nil, nil, nil)
	require.NoError(t, err)

	_, err = transport.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil)
	require.NoError(t, err)

	_, err = transport.Send(context.Background(), http.MethodPut, "/things", nil, nil, strings.NewReader(`{}`))
	require.NoError(t, err)
}

func TestHTTPTransport_HeaderOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL, nil, nil, nil)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Content-Type", "image/png")
	_, err = transport.Send(context.Background(), http.MethodPut, "/things/doc/att", nil, header, strings.NewReader("binary"))
	require.NoError(t, err)
}

func TestHTTPTransport_AppliesAuthenticator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "admin", username)
		assert.Equal(t, "secret", password)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL, nil, BasicAuth("admin", "secret"), nil)
	require.NoError(t, err)

	_, err = transport.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil)
	require.NoError(t, err)
}

func TestHTTPTransport_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	transport, err := NewHTTPTransport(serverURL, nil, nil, nil)
	require.NoError(t, err)

	_, err = transport.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.NotNil(t, transportErr.Cause)
}

func TestNewHTTPTransport_BadURL(t *testing.T) {
	_, err := NewHTTPTransport("://missing-scheme", nil, nil, nil)

	var urlErr *URLParseError
	assert.ErrorAs(t, err, &urlErr)
}
