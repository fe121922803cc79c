package ftl

import (
	"context"
	"fmt"
)

// CollectStats reports what a garbage collection removed.
type CollectStats struct {
	Revisions  []string
	InputFiles int64
	Blobs      int
}

// Collect deletes every unpinned revision other than the latest stable one
// and the current one, every input no remaining revision refers to, and the
// blobs of those inputs.
// It never runs concurrently with a build.
func (e *Engine) Collect(ctx context.Context) (*CollectStats, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := e.database.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting revisions: %w", err)
	}
	stats := &CollectStats{Revisions: res.Revisions, InputFiles: res.InputFiles}

	// Rows are gone, so a failure here only leaves unreachable blobs behind.
	for _, hash := range res.OrphanBlobs {
		if err := e.blobs.Delete(hash); err != nil {
			e.logger.Warn("failed to delete blob", "hash", ShortID(hash), "error", err)
			continue
		}
		stats.Blobs++
	}

	if err := e.database.Compact(); err != nil {
		return stats, fmt.Errorf("compacting database: %w", err)
	}

	e.logger.Info("garbage collected",
		"revisions", len(stats.Revisions),
		"inputs", stats.InputFiles,
		"blobs", stats.Blobs,
	)
	return stats, nil
}

// Clear deletes every revision, input and build record.
func (e *Engine) Clear(ctx context.Context) error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.database.Clear(); err != nil {
		return fmt.Errorf("clearing database: %w", err)
	}
	if err := e.database.Compact(); err != nil {
		return fmt.Errorf("compacting database: %w", err)
	}
	e.logger.Info("database cleared")
	return nil
}

// Stats summarizes the store.
func (e *Engine) Stats() (*DatabaseStats, error) {
	stats, err := e.database.Stats()
	if err != nil {
		return nil, fmt.Errorf("reading database stats: %w", err)
	}
	return stats, nil
}
