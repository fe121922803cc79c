package ftl

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"ftl-go/internal/model"
)

// inlineExtensions are the extensions whose files are stored inline when
// they are valid UTF-8.
var inlineExtensions = map[string]bool{
	"md": true, "markdown": true, "html": true, "htm": true, "tmpl": true,
	"css": true, "scss": true, "js": true, "json": true, "toml": true,
	"yaml": true, "yml": true, "txt": true, "xml": true, "svg": true, "csv": true,
}

// Extension returns the lowercase extension of p without the dot.
func Extension(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// IsInline reports whether a file is stored inline rather than in the blob store.
func IsInline(p string, data []byte) bool {
	return inlineExtensions[Extension(p)] && utf8.Valid(data)
}

// Ingest stores one source file and returns its input. created is false
// when an input with the same path and content already existed.
func (e *Engine) Ingest(p string, data []byte) (*model.InputFile, bool, error) {
	hash := ContentHash(data)

	existing, err := e.database.FindInputFileByPathAndHash(p, hash)
	if err != nil {
		return nil, false, fmt.Errorf("checking for existing input: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	f := &model.InputFile{
		ID:        InputFileID(p, hash),
		Path:      p,
		Hash:      hash,
		Extension: Extension(p),
		Inline:    IsInline(p, data),
		Size:      int64(len(data)),
		CreatedAt: e.clock.Now(),
	}
	if f.Inline {
		f.Contents = string(data)
	} else {
		// The blob must exist before any row refers to it.
		if err := e.blobs.Put(hash, bytes.NewReader(data), f.Size); err != nil {
			return nil, false, fmt.Errorf("storing blob for %s: %w", p, err)
		}
	}

	created, err := e.database.CreateInputFile(f)
	if err != nil {
		return nil, false, fmt.Errorf("creating input: %w", err)
	}
	if created {
		e.logger.Debug("input ingested", "path", p, "id", ShortID(f.ID), "inline", f.Inline)
	}
	return f, created, nil
}

// IngestAll reads and ingests every file of tree in parallel. Files that
// cannot be read are skipped and returned as IngestErrors; storage failures
// abort. The inputs are returned ordered by path.
func (e *Engine) IngestAll(ctx context.Context, tree SourceTree) ([]*model.InputFile, IngestErrors, error) {
	paths, err := tree.Files()
	if err != nil {
		return nil, nil, fmt.Errorf("listing source files: %w", err)
	}

	files := make([]*model.InputFile, len(paths))
	skipped := make([]*IngestError, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := tree.ReadFile(p)
			if err != nil {
				skipped[i] = &IngestError{Path: p, Err: err}
				return nil
			}
			f, _, err := e.Ingest(p, data)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warnings IngestErrors
	for _, s := range skipped {
		if s != nil {
			warnings = append(warnings, s)
		}
	}
	files = slices.DeleteFunc(files, func(f *model.InputFile) bool { return f == nil })
	slices.SortFunc(files, func(a, b *model.InputFile) int { return strings.Compare(a.Path, b.Path) })
	return files, warnings, nil
}
