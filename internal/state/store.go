package state

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/inful/mdfp"
)

// Store is the persistence boundary used by the generator.
type Store interface {
	// Page returns the record for path, or ok=false when none exists.
	Page(ctx context.Context, path string) (rec PageRecord, ok bool, err error)
	PutPage(ctx context.Context, rec PageRecord) error
	// PrunePages deletes records whose path is not in keep and returns them.
	PrunePages(ctx context.Context, keep []string) ([]PageRecord, error)
	RecordBuild(ctx context.Context, rec BuildRecord) error
	// LastBuild returns the most recent build, or ok=false before the first one.
	LastBuild(ctx context.Context) (rec BuildRecord, ok bool, err error)
	Close() error
}

// TemplateDigest hashes the parts of a page's output that do not come from its
// Markdown source.
func TemplateDigest(template, basePath string) string {
	h := sha256.New()
	h.Write([]byte(template))
	h.Write([]byte{0})
	h.Write([]byte(basePath))
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the page fingerprint for body rendered with templateDigest.
func Fingerprint(templateDigest string, body []byte) string {
	return mdfp.CalculateFingerprintFromParts(templateDigest, string(body))
}
