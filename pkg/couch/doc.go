// Package couch adapts CouchDB's string-based REST conventions to
// strongly typed Go values.
//
// Three pieces carry the protocol semantics: Revision parses, orders and
// re-serializes the server's compound revision token; the resource path
// types (DatabasePath, DocumentPath, AttachmentPath, DesignDocumentPath,
// ViewPath) validate and render the slash-delimited addresses the REST
// API uses; and Classify maps a status code plus optional JSON error
// body onto a closed set of typed errors, parameterized by the request's
// Intent, since the server reuses status codes across operations.
//
// On top of those, Client and Database provide the usual operations:
// creating and deleting databases, reading and writing documents and
// attachments, and storing and querying design document views.
//
//	client, err := couch.NewClient("http://localhost:5984",
//		couch.WithAuthenticator(couch.BasicAuth("admin", "secret")))
//	db, err := client.DB("things")
//	id, rev, err := db.CreateDocument(ctx, "", thing)
//
// A write that loses a race is reported as *DocumentConflictError; the
// caller decides whether to re-read and retry. This package never
// retries, caches or reorders requests.
package couch
