package couch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PixelPirate/chill/internal/config"
)

// Client talks to one CouchDB server. It is stateless apart from its
// transport and safe for concurrent use.
type Client struct {
	transport Transport
}

type options struct {
	httpClient *http.Client
	auth       Authenticator
	logger     *slog.Logger
	transport  Transport
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sets the http.Client the default transport uses.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithAuthenticator sets the authenticator applied to every request.
func WithAuthenticator(a Authenticator) Option {
	return func(o *options) { o.auth = a }
}

// WithLogger sets the logger for transport debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTransport replaces the transport entirely; the server URL and the
// other transport options are ignored when set.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// NewClient returns a client for the server at the given base URL, e.g.
// "http://localhost:5984".
func NewClient(serverURL string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.transport == nil {
		transport, err := NewHTTPTransport(serverURL, o.httpClient, o.auth, o.logger)
		if err != nil {
			return nil, err
		}
		o.transport = transport
	}
	return &Client{transport: o.transport}, nil
}

// NewClientFromConfig builds a client from the layered configuration
// files and environment. Explicit options take precedence over the
// configured values.
func NewClientFromConfig(opts ...Option) (*Client, error) {
	cfg := config.Load()
	base := make([]Option, 0, len(opts)+2)
	if cfg.Server.Timeout > 0 {
		base = append(base, WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Server.Timeout) * time.Second,
		}))
	}
	switch {
	case cfg.Auth.JWTSecret != "":
		base = append(base, WithAuthenticator(
			JWTAuthHS256(cfg.Auth.Username, []byte(cfg.Auth.JWTSecret), 0)))
	case cfg.Auth.Username != "":
		base = append(base, WithAuthenticator(
			BasicAuth(cfg.Auth.Username, cfg.Auth.Password)))
	}
	return NewClient(cfg.Server.URL, append(base, opts...)...)
}

// DB returns a handle on a database. The name is validated; the server
// is not contacted.
func (c *Client) DB(name string) (*Database, error) {
	path, err := NewDatabasePath(name)
	if err != nil {
		return nil, err
	}
	return &Database{client: c, path: path}, nil
}

// CreateDatabase creates a database. A database that already exists is
// reported as DatabaseExistsError.
func (c *Client) CreateDatabase(ctx context.Context, name string) error {
	path, err := NewDatabasePath(name)
	if err != nil {
		return err
	}
	resp, err := c.transport.Send(ctx, http.MethodPut, path.String(), nil, nil, nil)
	if err != nil {
		return err
	}
	return Classify(IntentCreateDatabase, resp)
}

// DeleteDatabase deletes a database and everything in it.
func (c *Client) DeleteDatabase(ctx context.Context, name string) error {
	path, err := NewDatabasePath(name)
	if err != nil {
		return err
	}
	resp, err := c.transport.Send(ctx, http.MethodDelete, path.String(), nil, nil, nil)
	if err != nil {
		return err
	}
	return Classify(IntentRead, resp)
}

// DatabaseExists checks for a database with a HEAD request.
func (c *Client) DatabaseExists(ctx context.Context, name string) (bool, error) {
	path, err := NewDatabasePath(name)
	if err != nil {
		return false, err
	}
	resp, err := c.transport.Send(ctx, http.MethodHead, path.String(), nil, nil, nil)
	if err != nil {
		return false, err
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	}
	return false, Classify(IntentRead, resp)
}

// Database is a handle on one database of a client's server.
type Database struct {
	client *Client
	path   DatabasePath
}

// Name returns the database name.
func (d *Database) Name() string { return d.path.DatabaseName() }

// CreateDocument stores a new document. An empty docID gets a random one
// assigned; the final ID and the first revision are returned. Writing to
// an ID that already exists is reported as DocumentConflictError.
func (d *Database) CreateDocument(ctx context.Context, docID string, content interface{}) (string, Revision, error) {
	if docID == "" {
		docID = NewDocumentID()
	}
	path, err := d.path.Document(docID)
	if err != nil {
		return "", Revision{}, err
	}
	body, err := encodeBody(content)
	if err != nil {
		return "", Revision{}, err
	}
	resp, err := d.client.transport.Send(ctx, http.MethodPut, path.String(), nil, nil, body)
	if err != nil {
		return "", Revision{}, err
	}
	if err := Classify(IntentWriteDocument, resp); err != nil {
		return "", Revision{}, err
	}
	return decodeWriteResult(resp)
}

// ReadDocument reads the latest revision of a document into `into` and
// returns that revision. Pass nil to fetch only the revision.
func (d *Database) ReadDocument(ctx context.Context, docID string, into interface{}) (Revision, error) {
	path, err := d.path.Document(docID)
	if err != nil {
		return Revision{}, err
	}
	resp, err := d.client.transport.Send(ctx, http.MethodGet, path.String(), nil, nil, nil)
	if err != nil {
		return Revision{}, err
	}
	if err := Classify(IntentRead, resp); err != nil {
		return Revision{}, err
	}
	rev, err := decodeDocumentRevision(resp)
	if err != nil {
		return Revision{}, err
	}
	if into != nil {
		if err := DecodeSuccess(resp, into); err != nil {
			return Revision{}, err
		}
	}
	return rev, nil
}

// UpdateDocument replaces a document's content, guarded by the revision
// the caller believes is current. A stale revision is reported as
// DocumentConflictError.
func (d *Database) UpdateDocument(ctx context.Context, docID string, rev Revision, content interface{}) (Revision, error) {
	path, err := d.path.Document(docID)
	if err != nil {
		return Revision{}, err
	}
	body, err := encodeBody(content)
	if err != nil {
		return Revision{}, err
	}
	resp, err := d.client.transport.Send(ctx, http.MethodPut, path.String(), revisionQuery(rev), nil, body)
	if err != nil {
		return Revision{}, err
	}
	if err := Classify(IntentWriteDocument, resp); err != nil {
		return Revision{}, err
	}
	_, newRev, err := decodeWriteResult(resp)
	return newRev, err
}

// DeleteDocument deletes a document at the given revision and returns
// the deletion revision.
func (d *Database) DeleteDocument(ctx context.Context, docID string, rev Revision) (Revision, error) {
	path, err := d.path.Document(docID)
	if err != nil {
		return Revision{}, err
	}
	resp, err := d.client.transport.Send(ctx, http.MethodDelete, path.String(), revisionQuery(rev), nil, nil)
	if err != nil {
		return Revision{}, err
	}
	if err := Classify(IntentWriteDocument, resp); err != nil {
		return Revision{}, err
	}
	_, newRev, err := decodeWriteResult(resp)
	return newRev, err
}

// PutDesignDocument creates or updates a design document. Pass the zero
// Revision when creating.
func (d *Database) PutDesignDocument(ctx context.Context, name string, design *Design, rev Revision) (Revision, error) {
	path, err := d.path.DesignDocument(name)
	if err != nil {
		return Revision{}, err
	}
	body, err := encodeBody(design)
	if err != nil {
		return Revision{}, err
	}
	var query url.Values
	if !rev.IsZero() {
		query = revisionQuery(rev)
	}
	resp, err := d.client.transport.Send(ctx, http.MethodPut, path.String(), query, nil, body)
	if err != nil {
		return Revision{}, err
	}
	if err := Classify(IntentWriteDocument, resp); err != nil {
		return Revision{}, err
	}
	_, newRev, err := decodeWriteResult(resp)
	return newRev, err
}

// ReadDesignDocument reads a design document's content and revision.
func (d *Database) ReadDesignDocument(ctx context.Context, name string) (*Design, Revision, error) {
	path, err := d.path.DesignDocument(name)
	if err != nil {
		return nil, Revision{}, err
	}
	resp, err := d.client.transport.Send(ctx, http.MethodGet, path.String(), nil, nil, nil)
	if err != nil {
		return nil, Revision{}, err
	}
	if err := Classify(IntentRead, resp); err != nil {
		return nil, Revision{}, err
	}
	rev, err := decodeDocumentRevision(resp)
	if err != nil {
		return nil, Revision{}, err
	}
	var design Design
	if err := DecodeSuccess(resp, &design); err != nil {
		return nil, Revision{}, err
	}
	return &design, rev, nil
}

// PutAttachment stores an attachment on a document at the given revision
// and returns the document's new revision.
func (d *Database) PutAttachment(ctx context.Context, docID, name, contentType string, content []byte, rev Revision) (Revision, error) {
	docPath, err := d.path.Document(docID)
	if err != nil {
		return Revision{}, err
	}
	path, err := docPath.Attachment(name)
	if err != nil {
		return Revision{}, err
	}
	header := http.Header{}
	header.Set("Content-Type", contentType)
	resp, err := d.client.transport.Send(ctx, http.MethodPut, path.String(), revisionQuery(rev), header, bytes.NewReader(content))
	if err != nil {
		return Revision{}, err
	}
	if err := Classify(IntentWriteDocument, resp); err != nil {
		return Revision{}, err
	}
	_, newRev, err := decodeWriteResult(resp)
	return newRev, err
}

// ReadAttachment reads an attachment's content and content type. The
// body is returned verbatim; attachments are not JSON-bearing.
func (d *Database) ReadAttachment(ctx context.Context, docID, name string) ([]byte, string, error) {
	docPath, err := d.path.Document(docID)
	if err != nil {
		return nil, "", err
	}
	path, err := docPath.Attachment(name)
	if err != nil {
		return nil, "", err
	}
	resp, err := d.client.transport.Send(ctx, http.MethodGet, path.String(), nil, nil, nil)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, resp.ContentType, nil
	}
	return nil, "", Classify(IntentRead, resp)
}

// writeResult is the server's answer to a successful write.
type writeResult struct {
	OK  bool   `json:"ok"`
	ID  string `json:"id"`
	Rev string `json:"rev"`
}

func decodeWriteResult(resp *Response) (string, Revision, error) {
	var result writeResult
	if err := DecodeSuccess(resp, &result); err != nil {
		return "", Revision{}, err
	}
	if result.Rev == "" {
		return "", Revision{}, &UnexpectedResponseError{Description: "write result is missing a revision"}
	}
	rev, err := ParseRevision(result.Rev)
	if err != nil {
		return "", Revision{}, err
	}
	return result.ID, rev, nil
}

// decodeDocumentRevision extracts the _rev field of a document body.
func decodeDocumentRevision(resp *Response) (Revision, error) {
	var meta struct {
		Rev string `json:"_rev"`
	}
	if err := DecodeSuccess(resp, &meta); err != nil {
		return Revision{}, err
	}
	if meta.Rev == "" {
		return Revision{}, &UnexpectedResponseError{Description: "document is missing a revision"}
	}
	return ParseRevision(meta.Rev)
}

func encodeBody(content interface{}) (io.Reader, error) {
	data, err := json.Marshal(content)
	if err != nil {
		return nil, &JSONEncodeError{Cause: err}
	}
	return bytes.NewReader(data), nil
}

func revisionQuery(rev Revision) url.Values {
	query := url.Values{}
	query.Set("rev", rev.String())
	return query
}
