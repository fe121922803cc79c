package ftl

import (
	"encoding/hex"
	"slices"

	"github.com/zeebo/blake3"
)

// ContentHash returns the BLAKE3-256 digest of data as lowercase hex.
func ContentHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// InputFileID derives the identity of an input from its path and content hash.
func InputFileID(path, hash string) string {
	h := blake3.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(hash))
	return hex.EncodeToString(h.Sum(nil))
}

// RevisionID derives the identity of a revision from its member input ids.
// The ids are sorted and de-duplicated first, so walk order never matters.
func RevisionID(memberIDs []string) string {
	return RoutedRevisionID(memberIDs, nil)
}

// RoutedRevisionID derives the identity of a revision whose member set
// includes documents that are not routed, such as drafts or pages outside
// their publish window. Two builds of the same files only share a revision
// when they also route the same pages. With no unrouted ids it equals
// RevisionID.
func RoutedRevisionID(memberIDs, unroutedIDs []string) string {
	h := blake3.New()
	writeIDs := func(ids []string) {
		ids = slices.Clone(ids)
		slices.Sort(ids)
		for _, id := range slices.Compact(ids) {
			h.Write([]byte(id))
			h.Write([]byte{'\n'})
		}
	}
	writeIDs(memberIDs)
	if len(unroutedIDs) > 0 {
		h.Write([]byte{'!', '\n'})
		writeIDs(unroutedIDs)
	}
	return hex.EncodeToString(h.Sum(nil))
}
