package couch

import "strings"

// Keyword segments the server uses to address design resources.
const (
	designKeyword = "_design"
	viewKeyword   = "_view"
)

// validateSegment applies the rules every path segment must satisfy:
// non-empty and free of the path separator. Violations are caller
// defects, never transient conditions.
func validateSegment(segment string) error {
	if segment == "" {
		return &PathParseError{Kind: EmptySegment}
	}
	if strings.Contains(segment, "/") {
		return &PathParseError{Kind: BadSegment, Detail: `found unexpected separator "/"`}
	}
	return nil
}

// splitPath splits a rendered path into its raw segments, enforcing the
// canonical form: a leading slash, no trailing slash.
func splitPath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, &PathParseError{Kind: NoLeadingSlash}
	}
	if strings.HasSuffix(path, "/") {
		return nil, &PathParseError{Kind: TrailingSlash}
	}
	return strings.Split(path[1:], "/"), nil
}

func renderPath(segments ...string) string {
	return "/" + strings.Join(segments, "/")
}

func expectKeyword(segment, keyword string) error {
	if segment != keyword {
		return &PathParseError{Kind: BadSegment, Detail: `expected "` + keyword + `"`}
	}
	return nil
}

// DatabasePath addresses a database, rendered as "/db".
type DatabasePath struct {
	db string
}

// NewDatabasePath validates the database name and composes its path.
func NewDatabasePath(name string) (DatabasePath, error) {
	if err := validateSegment(name); err != nil {
		return DatabasePath{}, err
	}
	return DatabasePath{db: name}, nil
}

// ParseDatabasePath parses a rendered database path, e.g. "/db".
func ParseDatabasePath(path string) (DatabasePath, error) {
	segments, err := splitPath(path)
	if err != nil {
		return DatabasePath{}, err
	}
	// splitPath always yields at least one segment, so only the upper
	// bound needs checking here; an empty name is caught below.
	if len(segments) > 1 {
		return DatabasePath{}, &PathParseError{Kind: TooManySegments}
	}
	return NewDatabasePath(segments[0])
}

func (p DatabasePath) DatabaseName() string { return p.db }

func (p DatabasePath) String() string { return renderPath(p.db) }

// Document composes a document path within this database.
func (p DatabasePath) Document(docID string) (DocumentPath, error) {
	return NewDocumentPath(p.db, docID)
}

// DesignDocument composes a design document path within this database.
func (p DatabasePath) DesignDocument(designName string) (DesignDocumentPath, error) {
	return NewDesignDocumentPath(p.db, designName)
}

// DocumentPath addresses a document, rendered as "/db/doc".
type DocumentPath struct {
	db  string
	doc string
}

// NewDocumentPath validates both segments and composes the path.
func NewDocumentPath(db, docID string) (DocumentPath, error) {
	for _, segment := range []string{db, docID} {
		if err := validateSegment(segment); err != nil {
			return DocumentPath{}, err
		}
	}
	return DocumentPath{db: db, doc: docID}, nil
}

// ParseDocumentPath parses a rendered document path, e.g. "/db/doc".
func ParseDocumentPath(path string) (DocumentPath, error) {
	segments, err := splitPath(path)
	if err != nil {
		return DocumentPath{}, err
	}
	if len(segments) < 2 {
		return DocumentPath{}, &PathParseError{Kind: TooFewSegments}
	}
	if len(segments) > 2 {
		return DocumentPath{}, &PathParseError{Kind: TooManySegments}
	}
	return NewDocumentPath(segments[0], segments[1])
}

func (p DocumentPath) DatabaseName() string { return p.db }

func (p DocumentPath) DocumentID() string { return p.doc }

func (p DocumentPath) String() string { return renderPath(p.db, p.doc) }

// Attachment composes an attachment path under this document.
func (p DocumentPath) Attachment(name string) (AttachmentPath, error) {
	return NewAttachmentPath(p.db, p.doc, name)
}

// AttachmentPath addresses a document attachment, rendered as "/db/doc/att".
type AttachmentPath struct {
	db  string
	doc string
	att string
}

// NewAttachmentPath validates all three segments and composes the path.
func NewAttachmentPath(db, docID, attachmentName string) (AttachmentPath, error) {
	for _, segment := range []string{db, docID, attachmentName} {
		if err := validateSegment(segment); err != nil {
			return AttachmentPath{}, err
		}
	}
	return AttachmentPath{db: db, doc: docID, att: attachmentName}, nil
}

// ParseAttachmentPath parses a rendered attachment path, e.g. "/db/doc/att".
func ParseAttachmentPath(path string) (AttachmentPath, error) {
	segments, err := splitPath(path)
	if err != nil {
		return AttachmentPath{}, err
	}
	if len(segments) < 3 {
		return AttachmentPath{}, &PathParseError{Kind: TooFewSegments}
	}
	if len(segments) > 3 {
		return AttachmentPath{}, &PathParseError{Kind: TooManySegments}
	}
	return NewAttachmentPath(segments[0], segments[1], segments[2])
}

func (p AttachmentPath) DatabaseName() string { return p.db }

func (p AttachmentPath) DocumentID() string { return p.doc }

func (p AttachmentPath) AttachmentName() string { return p.att }

func (p AttachmentPath) String() string { return renderPath(p.db, p.doc, p.att) }

// DesignDocumentPath addresses a design document, rendered as
// "/db/_design/ddoc". The "_design" keyword is part of the rendered form
// but not an addressable segment.
type DesignDocumentPath struct {
	db   string
	ddoc string
}

// NewDesignDocumentPath validates both addressable segments and composes
// the path.
func NewDesignDocumentPath(db, designName string) (DesignDocumentPath, error) {
	for _, segment := range []string{db, designName} {
		if err := validateSegment(segment); err != nil {
			return DesignDocumentPath{}, err
		}
	}
	return DesignDocumentPath{db: db, ddoc: designName}, nil
}

// ParseDesignDocumentPath parses a rendered design document path, e.g.
// "/db/_design/ddoc".
func ParseDesignDocumentPath(path string) (DesignDocumentPath, error) {
	segments, err := splitPath(path)
	if err != nil {
		return DesignDocumentPath{}, err
	}
	if len(segments) < 3 {
		return DesignDocumentPath{}, &PathParseError{Kind: TooFewSegments}
	}
	if len(segments) > 3 {
		return DesignDocumentPath{}, &PathParseError{Kind: TooManySegments}
	}
	if err := expectKeyword(segments[1], designKeyword); err != nil {
		return DesignDocumentPath{}, err
	}
	return NewDesignDocumentPath(segments[0], segments[2])
}

func (p DesignDocumentPath) DatabaseName() string { return p.db }

func (p DesignDocumentPath) DesignDocumentName() string { return p.ddoc }

func (p DesignDocumentPath) String() string {
	return renderPath(p.db, designKeyword, p.ddoc)
}

// View composes a view path under this design document.
func (p DesignDocumentPath) View(viewName string) (ViewPath, error) {
	return NewViewPath(p.db, p.ddoc, viewName)
}

// ViewPath addresses a view of a design document, rendered as
// "/db/_design/ddoc/_view/view".
type ViewPath struct {
	db   string
	ddoc string
	view string
}

// NewViewPath validates all three addressable segments and composes the
// path.
func NewViewPath(db, designName, viewName string) (ViewPath, error) {
	for _, segment := range []string{db, designName, viewName} {
		if err := validateSegment(segment); err != nil {
			return ViewPath{}, err
		}
	}
	return ViewPath{db: db, ddoc: designName, view: viewName}, nil
}

// ParseViewPath parses a rendered view path, e.g.
// "/db/_design/ddoc/_view/view".
func ParseViewPath(path string) (ViewPath, error) {
	segments, err := splitPath(path)
	if err != nil {
		return ViewPath{}, err
	}
	if len(segments) < 5 {
		return ViewPath{}, &PathParseError{Kind: TooFewSegments}
	}
	if len(segments) > 5 {
		return ViewPath{}, &PathParseError{Kind: TooManySegments}
	}
	if err := expectKeyword(segments[1], designKeyword); err != nil {
		return ViewPath{}, err
	}
	if err := expectKeyword(segments[3], viewKeyword); err != nil {
		return ViewPath{}, err
	}
	return NewViewPath(segments[0], segments[2], segments[4])
}

func (p ViewPath) DatabaseName() string { return p.db }

func (p ViewPath) DesignDocumentName() string { return p.ddoc }

func (p ViewPath) ViewName() string { return p.view }

func (p ViewPath) String() string {
	return renderPath(p.db, designKeyword, p.ddoc, viewKeyword, p.view)
}
