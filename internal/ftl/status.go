package ftl

import (
	"context"
	"fmt"

	"ftl-go/internal/model"
)

// TreeStatus describes the working tree relative to the current revision.
type TreeStatus struct {
	// Revision is nil when nothing has been built yet.
	Revision *model.Revision
	Changes  *Changes
	Warnings IngestErrors
}

// Status diffs tree against the current revision without storing anything.
func (e *Engine) Status(ctx context.Context, tree SourceTree) (*TreeStatus, error) {
	paths, err := tree.Files()
	if err != nil {
		return nil, fmt.Errorf("listing source files: %w", err)
	}

	st := &TreeStatus{}
	var candidate []*model.InputFile
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := tree.ReadFile(p)
		if err != nil {
			st.Warnings = append(st.Warnings, &IngestError{Path: p, Err: err})
			continue
		}
		hash := ContentHash(data)
		candidate = append(candidate, &model.InputFile{
			ID:        InputFileID(p, hash),
			Path:      p,
			Hash:      hash,
			Extension: Extension(p),
			Size:      int64(len(data)),
		})
	}

	rev, err := e.database.CurrentRevision()
	if err != nil {
		return nil, fmt.Errorf("finding current revision: %w", err)
	}
	var prev []*model.InputFile
	if rev != nil {
		prev, err = e.database.FindInputFilesForRevision(rev.ID)
		if err != nil {
			return nil, fmt.Errorf("loading revision inputs: %w", err)
		}
	}
	st.Revision = rev
	st.Changes = Diff(prev, candidate)
	return st, nil
}
