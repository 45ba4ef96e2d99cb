package couch

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Revision is the compound token CouchDB uses to version a document,
// e.g. "42-967a00dff5e02add41819138abb3284d". It is made of an update
// sequence number and a content digest. Only valid instances exist: a
// Revision is obtained by parsing a token or through NewRevision, both
// of which validate their input.
//
// Revisions are immutable and safe to share between goroutines.
type Revision struct {
	sequence uint64
	digest   string
}

// ParseRevision parses a revision token of the form "<sequence>-<digest>".
//
// The sequence part must be a positive decimal integer; revision numbering
// starts at 1. The digest part must consist of hexadecimal characters and
// form a 128-bit identifier. The digest is stored verbatim, without case
// folding, so parsing and formatting round-trip exactly.
func ParseRevision(s string) (Revision, error) {
	numPart, digestPart, found := strings.Cut(s, "-")
	if !found {
		return Revision{}, &RevisionParseError{Kind: TooFewParts}
	}
	sequence, err := strconv.ParseUint(numPart, 10, 64)
	if err != nil {
		return Revision{}, &RevisionParseError{Kind: NumberParse, Cause: err}
	}
	if sequence == 0 {
		return Revision{}, &RevisionParseError{Kind: ZeroSequenceNumber}
	}
	if err := validateDigest(digestPart); err != nil {
		return Revision{}, err
	}
	return Revision{sequence: sequence, digest: digestPart}, nil
}

// NewRevision constructs a Revision from an already-split sequence number
// and digest, applying the same validation as ParseRevision.
func NewRevision(sequence uint64, digest string) (Revision, error) {
	if sequence == 0 {
		return Revision{}, &RevisionParseError{Kind: ZeroSequenceNumber}
	}
	if err := validateDigest(digest); err != nil {
		return Revision{}, err
	}
	return Revision{sequence: sequence, digest: digest}, nil
}

func validateDigest(digest string) error {
	for _, c := range digest {
		if !isHexDigit(c) {
			return &RevisionParseError{Kind: DigestNotAllHex}
		}
	}
	// The digest must be a well-formed 128-bit identifier. The parsed
	// value is discarded: the digest text is kept verbatim so that
	// comparison stays case-sensitive, matching server behavior.
	if _, err := uuid.Parse(digest); err != nil {
		return &RevisionParseError{Kind: DigestParse, Cause: err}
	}
	return nil
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Sequence returns the update sequence number. It is always >= 1.
func (r Revision) Sequence() uint64 { return r.sequence }

// Digest returns the digest part exactly as it was parsed.
func (r Revision) Digest() string { return r.digest }

// IsZero reports whether r is the zero value, i.e. not a parsed revision.
func (r Revision) IsZero() bool { return r == Revision{} }

// String renders the token in its wire form, "<sequence>-<digest>".
// ParseRevision(r.String()) always yields r.
func (r Revision) String() string {
	return strconv.FormatUint(r.sequence, 10) + "-" + r.digest
}

// Compare orders revisions by sequence number first, with ties broken by
// byte-wise digest comparison. It returns -1, 0 or +1. The order is total
// and transitive, which makes conflict detection across replicas
// deterministic.
func (r Revision) Compare(other Revision) int {
	if r.sequence != other.sequence {
		if r.sequence < other.sequence {
			return -1
		}
		return 1
	}
	return strings.Compare(r.digest, other.digest)
}

// Less reports whether r orders before other.
func (r Revision) Less(other Revision) bool {
	return r.Compare(other) < 0
}

// MarshalJSON encodes the revision as its wire token.
func (r Revision) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a wire token, validating it via ParseRevision.
func (r *Revision) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRevision(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
