package testutil

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"ftl-go/internal/ftl"
)

// MemorySourceTree is an in-memory site. Safe for concurrent use.
type MemorySourceTree struct {
	mu         sync.RWMutex
	files      map[string][]byte
	unreadable map[string]bool
}

var _ ftl.SourceTree = (*MemorySourceTree)(nil)

// NewMemorySourceTree creates a tree holding the given path -> content files.
func NewMemorySourceTree(files map[string]string) *MemorySourceTree {
	t := &MemorySourceTree{
		files:      make(map[string][]byte),
		unreadable: make(map[string]bool),
	}
	for p, content := range files {
		t.files[p] = []byte(content)
	}
	return t
}

// Set adds or replaces a file.
func (t *MemorySourceTree) Set(path, content string) {
	t.SetBytes(path, []byte(content))
}

func (t *MemorySourceTree) SetBytes(path string, content []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files[path] = content
}

// Remove deletes a file.
func (t *MemorySourceTree) Remove(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.files, path)
}

// Unreadable makes ReadFile fail for path while it is still listed.
func (t *MemorySourceTree) Unreadable(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unreadable[path] = true
}

func (t *MemorySourceTree) Files() ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.files)), nil
}

func (t *MemorySourceTree) ReadFile(path string) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.unreadable[path] {
		return nil, fmt.Errorf("permission denied: %s", path)
	}
	data, ok := t.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return slices.Clone(data), nil
}
