package ftl

import "io"

// BlobStore holds the bytes of binary inputs out of band, keyed by content
// hash, plus named metadata items such as database snapshots.
// All operations stream through io.Reader/io.Writer.
type BlobStore interface {
	// Put stores content identified by its hash.
	// The operation is idempotent: storing the same hash multiple times is safe.
	// size is the number of bytes that will be read from r.
	Put(hash string, r io.Reader, size int64) error

	// Get retrieves content by hash and writes it to w.
	Get(hash string, w io.Writer) error

	// Delete removes content by hash. Deleting a missing hash is not an error.
	Delete(hash string) error

	// PutMetadata stores a named metadata item for a site.
	// version is stored alongside the metadata for consistency checks.
	PutMetadata(siteID string, name string, r io.Reader, size int64, version int64) error

	// GetMetadata retrieves a named metadata item for a site and writes it to w.
	GetMetadata(siteID string, name string, w io.Writer) error

	// GetMetadataVersion returns the version of a named item, 0 when absent.
	GetMetadataVersion(siteID string, name string) (int64, error)

	// ValidateSetup verifies that the store is accessible and properly configured.
	ValidateSetup() error
}
