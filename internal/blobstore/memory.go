package blobstore

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"ftl-go/internal/ftl"
)

// MemoryStore is an in-memory implementation of the BlobStore interface.
// It is useful for testing and for builds that never need to persist blobs.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	content         map[string][]byte // hash -> bytes
	metadata        map[string][]byte // "siteID/name" -> bytes
	metadataVersion map[string]int64
	mu              sync.RWMutex
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		content:         make(map[string][]byte),
		metadata:        make(map[string][]byte),
		metadataVersion: make(map[string]int64),
	}
}

func metadataKey(siteID, name string) string {
	return siteID + "/" + name
}

func (m *MemoryStore) Put(hash string, r io.Reader, size int64) error {
	data, err := readExactly(r, size)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[hash] = data
	return nil
}

func (m *MemoryStore) Get(hash string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.content[hash]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("blob %s: %w", hash, ftl.ErrNotFound)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

func (m *MemoryStore) Delete(hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.content, hash)
	return nil
}

// Has reports whether a blob is stored.
func (m *MemoryStore) Has(hash string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.content[hash]
	return ok
}

// Len returns the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.content)
}

func (m *MemoryStore) PutMetadata(siteID string, name string, r io.Reader, size int64, version int64) error {
	data, err := readExactly(r, size)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := metadataKey(siteID, name)
	m.metadata[key] = data
	m.metadataVersion[key] = version
	return nil
}

func (m *MemoryStore) GetMetadataVersion(siteID string, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadataVersion[metadataKey(siteID, name)], nil
}

func (m *MemoryStore) GetMetadata(siteID string, name string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.metadata[metadataKey(siteID, name)]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("metadata %q for site %s: %w", name, siteID, ftl.ErrNotFound)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup() error {
	return nil
}

// readExactly reads r to the end and checks it produced size bytes.
func readExactly(r io.Reader, size int64) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	if int64(len(data)) != size {
		return nil, fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}
	return data, nil
}

var _ ftl.BlobStore = (*MemoryStore)(nil)
