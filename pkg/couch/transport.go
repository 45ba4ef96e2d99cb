package couch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Transport is the boundary to the HTTP layer: send one request, receive
// the status code, content type and body. Implementations do the only
// blocking work in this package; cancellation and timeouts belong to
// them and to the caller's context. Classification of the result happens
// after Send returns and is not the transport's concern.
type Transport interface {
	Send(ctx context.Context, method, path string, query url.Values, header http.Header, body io.Reader) (*Response, error)
}

// HTTPTransport is the net/http-backed Transport. It issues exactly one
// request per Send: no retries, no caching, no redirect policy beyond
// the http.Client's own.
type HTTPTransport struct {
	base   *url.URL
	client *http.Client
	auth   Authenticator
	logger *slog.Logger
}

// NewHTTPTransport builds a transport for the given server base URL,
// e.g. "http://localhost:5984". A URL that does not parse is a caller
// defect reported as URLParseError.
func NewHTTPTransport(serverURL string, client *http.Client, auth Authenticator, logger *slog.Logger) (*HTTPTransport, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, &URLParseError{Cause: err}
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPTransport{base: base, client: client, auth: auth, logger: logger}, nil
}

func (t *HTTPTransport) Send(ctx context.Context, method, path string, query url.Values, header http.Header, body io.Reader) (*Response, error) {
	u := *t.base
	u.Path = strings.TrimSuffix(t.base.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &URLParseError{Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		req.Header[key] = values
	}
	if t.auth != nil {
		if err := t.auth.Authenticate(req); err != nil {
			return nil, err
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}

	t.logger.Debug("couchdb exchange",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode))

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
