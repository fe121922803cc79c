package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"ftl-go/internal/ftl"
)

// OSSourceTree reads a site from a directory on disk.
type OSSourceTree struct {
	root    string
	ignore  *IgnoreMatcher
	maxSize int64
}

var _ ftl.SourceTree = (*OSSourceTree)(nil)

// DefaultMaxFileSize bounds the size of a single source file.
const DefaultMaxFileSize = 256 << 20

// NewOSSourceTree returns a tree rooted at root. The ignore set is the
// defaults, the given patterns and the contents of root/.ftlignore.
func NewOSSourceTree(root string, patterns []string) (*OSSourceTree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving source root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root is not a directory: %s", abs)
	}

	fromFile, err := ParseIgnoreFile(filepath.Join(abs, IgnoreFileName))
	if err != nil {
		return nil, err
	}

	all := make([]string, 0, len(defaultIgnorePatterns)+len(patterns)+len(fromFile))
	all = append(all, defaultIgnorePatterns...)
	all = append(all, patterns...)
	all = append(all, fromFile...)

	return &OSSourceTree{
		root:    abs,
		ignore:  NewIgnoreMatcher(all),
		maxSize: DefaultMaxFileSize,
	}, nil
}

// Root returns the absolute source directory.
func (t *OSSourceTree) Root() string {
	return t.root
}

// Files returns the slash-separated relative paths of every regular,
// non-ignored file, sorted. Symlinks and special files are skipped.
func (t *OSSourceTree) Files() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(t.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == t.root {
			return nil
		}
		rel, err := filepath.Rel(t.root, p)
		if err != nil {
			return err
		}
		if t.ignore.Match(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", t.root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadFile reads a file by its relative path. Paths escaping the root are
// rejected.
func (t *OSSourceTree) ReadFile(rel string) ([]byte, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" || strings.Contains(rel, "\\") {
		return nil, fmt.Errorf("invalid source path %q", rel)
	}
	full := filepath.Join(t.root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))

	info, err := os.Lstat(full)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", rel, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", rel)
	}
	if info.Size() > t.maxSize {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", rel, info.Size(), t.maxSize)
	}
	return os.ReadFile(full)
}
