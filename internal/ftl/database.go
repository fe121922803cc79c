package ftl

import (
	"time"

	"ftl-go/internal/model"
)

// RevisionMetadata is everything derived from a revision's inputs before
// rendering. It is persisted in one transaction.
type RevisionMetadata struct {
	Pages        []*model.Page // newly parsed pages only
	Templates    []*model.Template
	Routes       []*model.Route
	Dependencies []*model.Dependency
}

// RevisionStats counts the rows owned by a revision.
type RevisionStats struct {
	Files   int64
	Pages   int64
	Routes  int64
	Outputs int64
}

// DatabaseStats summarizes the store as a whole.
type DatabaseStats struct {
	InputFiles  int64
	Revisions   int64
	Pinned      int64
	Pages       int64
	Routes      int64
	Outputs     int64
	OutputBytes int64
	SizeBytes   int64
}

// CollectResult reports what a collection pass removed.
type CollectResult struct {
	Revisions  []string
	InputFiles int64
	// OrphanBlobs are hashes of binary inputs no longer referenced by any row.
	OrphanBlobs []string
}

// Database provides an interface for metadata storage operations.
// Lookups return nil, nil when the row does not exist. Every multi-row
// mutation is a single transaction, and mutations are serialized.
type Database interface {
	// Input files

	// FindInputFile returns the input with the given id.
	FindInputFile(id string) (*model.InputFile, error)

	// FindInputFileByPathAndHash returns the input at path with the given content hash.
	FindInputFileByPathAndHash(path, hash string) (*model.InputFile, error)

	// CreateInputFile inserts f. Returns false when an identical row already exists.
	CreateInputFile(f *model.InputFile) (bool, error)

	// FindInputFilesForRevision returns the members of a revision ordered by path.
	FindInputFilesForRevision(revision string) ([]*model.InputFile, error)

	// FindInputFilesByPath returns every stored version of a path, newest first.
	FindInputFilesByPath(path string) ([]*model.InputFile, error)

	// FindRevisionsContainingInputFile returns ids of revisions that include the input.
	FindRevisionsContainingInputFile(id string) ([]string, error)

	// Revisions

	FindRevision(id string) (*model.Revision, error)
	FindRevisionByName(name string) (*model.Revision, error)
	FindRevisionsByIDPrefix(prefix string) ([]*model.Revision, error)
	ListRevisions() ([]*model.Revision, error)

	// CreateRevision inserts an unstable revision and its membership rows.
	CreateRevision(rev *model.Revision, memberIDs []string) error

	// DeleteRevision removes a revision and, by cascade, everything it owns.
	DeleteRevision(id string) error

	SetRevisionPinned(id string, pinned bool) error
	SetRevisionName(id string, name string) error

	// StabilizeRevision flips the stable flag and makes the revision current.
	// Returns ErrPagesPending when a page route still lacks output.
	StabilizeRevision(id string, at time.Time) error

	// CurrentRevision returns the revision served by default.
	CurrentRevision() (*model.Revision, error)
	SetCurrentRevision(id string) error

	RevisionStats(id string) (*RevisionStats, error)

	// Revision metadata

	FindPage(id string) (*model.Page, error)
	FindPagesForRevision(revision string) ([]*model.Page, error)

	// SaveRevisionMetadata persists pages, templates, routes and dependencies
	// of an unstable revision.
	SaveRevisionMetadata(revision string, meta *RevisionMetadata) error

	FindRoutesForRevision(revision string) ([]*model.Route, error)
	FindRoute(revision, route string) (*model.Route, error)
	FindRoutesForInput(revision, id string) ([]*model.Route, error)
	FindTemplatesForRevision(revision string) ([]*model.Template, error)
	FindDependenciesForRevision(revision string) ([]*model.Dependency, error)

	// Outputs

	// CarryForwardOutputs copies outputs of the given page ids from one
	// revision to another wherever the route still exists.
	CarryForwardOutputs(from, to string, ids []string) (int64, error)

	// CommitOutput writes one output. When it was the last pending page route
	// of its revision, the revision is stabilized in the same transaction and
	// true is returned.
	CommitOutput(out *model.Output, at time.Time) (bool, error)

	FindOutput(revision, route string) (*model.Output, error)
	FindOutputsForRevision(revision string) ([]*model.Output, error)

	// FindPendingRoutes returns page routes of the revision without output.
	FindPendingRoutes(revision string) ([]*model.Route, error)

	// Garbage collection

	// Collect deletes unpinned revisions that are unstable or not current,
	// then every input no revision references.
	Collect() (*CollectResult, error)

	// Compact reclaims storage after deletions.
	Compact() error

	// Clear deletes all revisions, inputs and build history.
	Clear() error

	// Build history

	CreateBuild(b *model.Build) error
	FinishBuild(b *model.Build) error
	ListBuilds(limit int) ([]*model.Build, error)

	// Maintenance

	Stats() (*DatabaseStats, error)
	Path() string
	CheckMigrations() error
	BackupTo(destPath string) error
	Close() error
}
