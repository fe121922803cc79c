package ftl

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ftl-go/internal/model"
)

// Artifact is the servable content of one route.
type Artifact struct {
	Revision string
	Route    string
	Kind     model.RouteKind
	Content  []byte
	// Redirect is the canonical route when Route is an alias.
	Redirect string
}

// Resolve returns the artifact served at route in the referenced revision,
// the current one when ref is empty. Aliases resolve to the output of their
// page's canonical route.
func (e *Engine) Resolve(ctx context.Context, route, ref string) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rev, err := e.lookupStable(ref)
	if err != nil {
		return nil, err
	}

	route = NormalizeRoute(route)
	r, err := e.database.FindRoute(rev.ID, route)
	if err != nil {
		return nil, fmt.Errorf("finding route: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("route %s: %w", route, ErrNotFound)
	}

	a := &Artifact{Revision: rev.ID, Route: route, Kind: r.Kind}
	switch r.Kind {
	case model.RouteAsset:
		content, err := e.assetContent(r.ID)
		if err != nil {
			return nil, err
		}
		a.Content = content
		return a, nil

	case model.RouteAlias:
		canonical, err := e.canonicalRoute(rev.ID, r.ID)
		if err != nil {
			return nil, err
		}
		a.Redirect = canonical
		route = canonical
	}

	out, err := e.database.FindOutput(rev.ID, route)
	if err != nil {
		return nil, fmt.Errorf("finding output: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("output for %s: %w", route, ErrNotFound)
	}
	a.Content = out.Content
	return a, nil
}

// canonicalRoute returns the first page route of a page in a revision.
func (e *Engine) canonicalRoute(revision, id string) (string, error) {
	routes, err := e.database.FindRoutesForInput(revision, id)
	if err != nil {
		return "", fmt.Errorf("finding routes: %w", err)
	}
	for _, r := range routes {
		if r.Kind == model.RoutePage && r.PageIndex <= 1 {
			return r.Route, nil
		}
	}
	return "", fmt.Errorf("canonical route of %s: %w", ShortID(id), ErrNotFound)
}

func (e *Engine) assetContent(id string) ([]byte, error) {
	f, err := e.database.FindInputFile(id)
	if err != nil {
		return nil, fmt.Errorf("finding input: %w", err)
	}
	if f == nil {
		return nil, fmt.Errorf("input %s: %w", ShortID(id), ErrNotFound)
	}
	if f.Inline {
		return []byte(f.Contents), nil
	}
	var buf bytes.Buffer
	if err := e.blobs.Get(f.Hash, &buf); err != nil {
		return nil, fmt.Errorf("reading blob for %s: %w", f.Path, err)
	}
	return buf.Bytes(), nil
}

// Export writes every routed artifact of a stable revision below dir.
// Page and alias routes become <route>/index.html. Returns the number of
// files written.
func (e *Engine) Export(ctx context.Context, ref, dir string) (int, error) {
	rev, err := e.lookupStable(ref)
	if err != nil {
		return 0, err
	}
	routes, err := e.database.FindRoutesForRevision(rev.ID)
	if err != nil {
		return 0, fmt.Errorf("listing routes: %w", err)
	}

	var n int
	for _, r := range routes {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		a, err := e.Resolve(ctx, r.Route, rev.ID)
		if err != nil {
			return n, err
		}
		dest := exportPath(dir, r)
		if err := writeFileAtomic(dest, a.Content); err != nil {
			return n, fmt.Errorf("writing %s: %w", dest, err)
		}
		n++
	}
	e.logger.Info("revision exported", "revision", ShortID(rev.ID), "dir", dir, "files", n)
	return n, nil
}

func exportPath(dir string, r *model.Route) string {
	rel := filepath.FromSlash(strings.TrimPrefix(r.Route, "/"))
	if r.Kind == model.RouteAsset {
		return filepath.Join(dir, rel)
	}
	return filepath.Join(dir, rel, "index.html")
}

// writeFileAtomic writes data to a temp file in the destination directory
// and renames it into place.
func writeFileAtomic(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
