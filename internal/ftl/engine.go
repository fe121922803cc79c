package ftl

import (
	"errors"
	"fmt"
	"sync"

	"ftl-go/internal/model"
)

// Options tunes an Engine.
type Options struct {
	// Workers bounds parallel ingestion and rendering. Defaults to 4.
	Workers int
	// DefaultTemplate is used by pages that name no template.
	DefaultTemplate string
	// Drafts routes draft and unpublished pages.
	Drafts bool
}

// Engine is the orchestration layer that coordinates the content store,
// dependency graph, route resolver, revision manager and output store.
type Engine struct {
	database Database
	blobs    BlobStore
	parser   Parser
	renderer Renderer
	logger   Logger
	clock    Clock
	idgen    IDGenerator
	opts     Options

	// buildMu admits one build or collection at a time.
	buildMu sync.Mutex
}

// NewEngine creates a new Engine with the provided dependencies.
func NewEngine(database Database, blobs BlobStore, parser Parser, renderer Renderer, logger Logger, clock Clock, idgen IDGenerator, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.DefaultTemplate == "" {
		opts.DefaultTemplate = "page.html"
	}
	return &Engine{
		database: database,
		blobs:    blobs,
		parser:   parser,
		renderer: renderer,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		opts:     opts,
	}
}

// minPrefix is the shortest id prefix accepted as a revision reference.
const minPrefix = 6

// LookupRevision resolves a revision reference: an empty ref means the
// current revision, otherwise a full id, a name, or a unique id prefix.
func (e *Engine) LookupRevision(ref string) (*model.Revision, error) {
	if ref == "" {
		rev, err := e.database.CurrentRevision()
		if err != nil {
			return nil, fmt.Errorf("finding current revision: %w", err)
		}
		if rev == nil {
			return nil, fmt.Errorf("no current revision: %w", ErrNotFound)
		}
		return rev, nil
	}

	rev, err := e.database.FindRevision(ref)
	if err != nil {
		return nil, fmt.Errorf("finding revision: %w", err)
	}
	if rev != nil {
		return rev, nil
	}

	rev, err = e.database.FindRevisionByName(ref)
	if err != nil {
		return nil, fmt.Errorf("finding revision by name: %w", err)
	}
	if rev != nil {
		return rev, nil
	}

	if len(ref) >= minPrefix {
		revs, err := e.database.FindRevisionsByIDPrefix(ref)
		if err != nil {
			return nil, fmt.Errorf("finding revision by prefix: %w", err)
		}
		switch len(revs) {
		case 0:
		case 1:
			return revs[0], nil
		default:
			return nil, fmt.Errorf("revision prefix %q matches %d revisions: %w", ref, len(revs), ErrAmbiguous)
		}
	}

	return nil, fmt.Errorf("revision %q: %w", ref, ErrNotFound)
}

// lookupStable is LookupRevision restricted to stable revisions.
func (e *Engine) lookupStable(ref string) (*model.Revision, error) {
	rev, err := e.LookupRevision(ref)
	if err != nil {
		return nil, err
	}
	if !rev.Stable {
		return nil, fmt.Errorf("revision %s: %w", ShortID(rev.ID), ErrNotStable)
	}
	return rev, nil
}

// ShortID abbreviates a digest for display.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// IsFatal reports whether err aborts a build. Ingest warnings do not.
func IsFatal(err error) bool {
	var ie IngestErrors
	return err != nil && !errors.As(err, &ie)
}
