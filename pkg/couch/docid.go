package couch

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// NewDocumentID returns a random document ID. The server would assign
// one itself for a create without an ID; generating it client-side keeps
// the ID known before the request is sent.
func NewDocumentID() string {
	return uuid.New().String()
}

// DerivedDocumentID returns a deterministic 128-bit document ID derived
// from the given parts, hex-encoded. The same parts always produce the
// same ID, which makes creates idempotent for documents that have a
// natural key.
func DerivedDocumentID(parts ...string) string {
	hash := blake3.Sum256([]byte(strings.Join(parts, "/")))
	return hex.EncodeToString(hash[:16])
}
