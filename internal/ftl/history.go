package ftl

import (
	"fmt"

	"ftl-go/internal/model"
)

// History returns the most recent builds, newest first.
func (e *Engine) History(limit int) ([]*model.Build, error) {
	builds, err := e.database.ListBuilds(limit)
	if err != nil {
		return nil, fmt.Errorf("listing builds: %w", err)
	}
	return builds, nil
}

// FileVersion is one stored version of a source path.
type FileVersion struct {
	Input     *model.InputFile
	Revisions []string
}

// FileLog returns every stored version of a source path, newest first,
// with the revisions that include each.
func (e *Engine) FileLog(path string) ([]*FileVersion, error) {
	files, err := e.database.FindInputFilesByPath(path)
	if err != nil {
		return nil, fmt.Errorf("finding inputs: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("path %s: %w", path, ErrNotFound)
	}

	versions := make([]*FileVersion, len(files))
	for i, f := range files {
		revs, err := e.database.FindRevisionsContainingInputFile(f.ID)
		if err != nil {
			return nil, fmt.Errorf("finding revisions for %s: %w", ShortID(f.ID), err)
		}
		versions[i] = &FileVersion{Input: f, Revisions: revs}
	}
	return versions, nil
}
