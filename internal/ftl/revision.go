package ftl

import (
	"fmt"
	"slices"
	"strings"

	"ftl-go/internal/model"
)

// Modification pairs the previous and the new input at one path.
type Modification struct {
	Old *model.InputFile
	New *model.InputFile
}

// Changes is the difference between two revisions' member sets, by path.
type Changes struct {
	Unchanged []*model.InputFile
	Modified  []Modification
	Added     []*model.InputFile
	Removed   []*model.InputFile
}

// Empty reports whether nothing changed.
func (c *Changes) Empty() bool {
	return len(c.Modified) == 0 && len(c.Added) == 0 && len(c.Removed) == 0
}

// ChangedIDs returns the ids of new and modified inputs in the candidate.
func (c *Changes) ChangedIDs() []string {
	var ids []string
	for _, m := range c.Modified {
		ids = append(ids, m.New.ID)
	}
	for _, f := range c.Added {
		ids = append(ids, f.ID)
	}
	return ids
}

// GoneIDs returns the ids of prior inputs that are not in the candidate.
func (c *Changes) GoneIDs() []string {
	var ids []string
	for _, m := range c.Modified {
		ids = append(ids, m.Old.ID)
	}
	for _, f := range c.Removed {
		ids = append(ids, f.ID)
	}
	return ids
}

// Diff compares a prior member set with a candidate one. Inputs are matched
// by path; identical ids are unchanged.
func Diff(prev, candidate []*model.InputFile) *Changes {
	before := make(map[string]*model.InputFile, len(prev))
	for _, f := range prev {
		before[f.Path] = f
	}

	c := &Changes{}
	seen := make(map[string]bool, len(candidate))
	for _, f := range candidate {
		seen[f.Path] = true
		old, ok := before[f.Path]
		switch {
		case !ok:
			c.Added = append(c.Added, f)
		case old.ID == f.ID:
			c.Unchanged = append(c.Unchanged, f)
		default:
			c.Modified = append(c.Modified, Modification{Old: old, New: f})
		}
	}
	for _, f := range prev {
		if !seen[f.Path] {
			c.Removed = append(c.Removed, f)
		}
	}

	byPath := func(a, b *model.InputFile) int { return strings.Compare(a.Path, b.Path) }
	slices.SortFunc(c.Unchanged, byPath)
	slices.SortFunc(c.Added, byPath)
	slices.SortFunc(c.Removed, byPath)
	slices.SortFunc(c.Modified, func(a, b Modification) int { return byPath(a.New, b.New) })
	return c
}

// BeginRevision creates the revision for a member set, of which the
// documents in unrouted get no routes. When a stable revision with the same
// identity exists it is named, made current and returned with reused set.
// An unstable leftover with the same identity is discarded and recreated.
func (e *Engine) BeginRevision(memberIDs, unrouted []string, name string) (*model.Revision, bool, error) {
	id := RoutedRevisionID(memberIDs, unrouted)

	existing, err := e.database.FindRevision(id)
	if err != nil {
		return nil, false, fmt.Errorf("finding revision: %w", err)
	}
	if existing != nil && existing.Stable {
		return e.reuse(existing, name)
	}
	if existing != nil {
		e.logger.Warn("discarding abandoned revision", "revision", ShortID(existing.ID))
		if err := e.database.DeleteRevision(existing.ID); err != nil {
			return nil, false, fmt.Errorf("discarding abandoned revision: %w", err)
		}
	}

	if name != "" {
		if err := e.checkName(name); err != nil {
			return nil, false, err
		}
	}

	rev := &model.Revision{
		ID:        id,
		Name:      name,
		CreatedAt: e.clock.Now(),
	}
	if err := e.database.CreateRevision(rev, memberIDs); err != nil {
		return nil, false, fmt.Errorf("creating revision: %w", err)
	}
	e.logger.Info("revision started", "revision", ShortID(id), "files", len(memberIDs))
	return rev, false, nil
}

// reuse makes an existing stable revision current. The name is settled
// first so a rejected name leaves the current revision alone.
func (e *Engine) reuse(rev *model.Revision, name string) (*model.Revision, bool, error) {
	if name != "" && rev.Name != name {
		if rev.Name != "" {
			return nil, false, fmt.Errorf("revision %s is already named %q", ShortID(rev.ID), rev.Name)
		}
		if err := e.checkName(name); err != nil {
			return nil, false, err
		}
		if err := e.database.SetRevisionName(rev.ID, name); err != nil {
			return nil, false, fmt.Errorf("naming revision: %w", err)
		}
		rev.Name = name
	}
	if err := e.database.SetCurrentRevision(rev.ID); err != nil {
		return nil, false, fmt.Errorf("setting current revision: %w", err)
	}
	e.logger.Info("revision reused", "revision", ShortID(rev.ID))
	return rev, true, nil
}

func (e *Engine) checkName(name string) error {
	taken, err := e.database.FindRevisionByName(name)
	if err != nil {
		return fmt.Errorf("checking revision name: %w", err)
	}
	if taken != nil {
		return fmt.Errorf("name %q: %w", name, ErrNameTaken)
	}
	return nil
}

// Stabilize marks a revision stable once every page route has output.
// Stabilizing a stable revision is a no-op.
func (e *Engine) Stabilize(id string) error {
	rev, err := e.database.FindRevision(id)
	if err != nil {
		return fmt.Errorf("finding revision: %w", err)
	}
	if rev == nil {
		return fmt.Errorf("revision %s: %w", ShortID(id), ErrNotFound)
	}
	if rev.Stable {
		return nil
	}
	if err := e.database.StabilizeRevision(id, e.clock.Now()); err != nil {
		return fmt.Errorf("stabilizing revision %s: %w", ShortID(id), err)
	}
	e.logger.Info("revision stable", "revision", ShortID(id))
	return nil
}

// Pin exempts a stable revision from garbage collection.
func (e *Engine) Pin(ref string) (*model.Revision, error) {
	return e.setPinned(ref, true)
}

// Unpin makes a stable revision collectable again.
func (e *Engine) Unpin(ref string) (*model.Revision, error) {
	return e.setPinned(ref, false)
}

func (e *Engine) setPinned(ref string, pinned bool) (*model.Revision, error) {
	rev, err := e.lookupStable(ref)
	if err != nil {
		return nil, err
	}
	if err := e.database.SetRevisionPinned(rev.ID, pinned); err != nil {
		return nil, fmt.Errorf("updating pin: %w", err)
	}
	rev.Pinned = pinned
	e.logger.Info("revision pin changed", "revision", ShortID(rev.ID), "pinned", pinned)
	return rev, nil
}

// Name assigns a unique name to a revision. Names are write-once.
func (e *Engine) Name(ref, name string) (*model.Revision, error) {
	if name == "" {
		return nil, fmt.Errorf("revision name must not be empty")
	}
	rev, err := e.LookupRevision(ref)
	if err != nil {
		return nil, err
	}
	if rev.Name == name {
		return rev, nil
	}
	if rev.Name != "" {
		return nil, fmt.Errorf("revision %s is already named %q", ShortID(rev.ID), rev.Name)
	}
	if err := e.checkName(name); err != nil {
		return nil, err
	}
	if err := e.database.SetRevisionName(rev.ID, name); err != nil {
		return nil, fmt.Errorf("naming revision: %w", err)
	}
	rev.Name = name
	return rev, nil
}

// Rollback makes a stable revision the one served by default.
func (e *Engine) Rollback(ref string) (*model.Revision, error) {
	rev, err := e.lookupStable(ref)
	if err != nil {
		return nil, err
	}
	if err := e.database.SetCurrentRevision(rev.ID); err != nil {
		return nil, fmt.Errorf("setting current revision: %w", err)
	}
	e.logger.Info("rolled back", "revision", ShortID(rev.ID))
	return rev, nil
}

// RevisionInfo describes a revision for listing and inspection.
type RevisionInfo struct {
	Revision *model.Revision
	Current  bool
	Stats    *RevisionStats
}

// ListRevisions returns every revision, newest first.
func (e *Engine) ListRevisions() ([]*RevisionInfo, error) {
	revs, err := e.database.ListRevisions()
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	current, err := e.database.CurrentRevision()
	if err != nil {
		return nil, fmt.Errorf("finding current revision: %w", err)
	}

	infos := make([]*RevisionInfo, len(revs))
	for i, rev := range revs {
		infos[i] = &RevisionInfo{
			Revision: rev,
			Current:  current != nil && current.ID == rev.ID,
		}
	}
	return infos, nil
}

// InspectRevision returns a revision with its row counts.
func (e *Engine) InspectRevision(ref string) (*RevisionInfo, error) {
	rev, err := e.LookupRevision(ref)
	if err != nil {
		return nil, err
	}
	stats, err := e.database.RevisionStats(rev.ID)
	if err != nil {
		return nil, fmt.Errorf("counting revision rows: %w", err)
	}
	current, err := e.database.CurrentRevision()
	if err != nil {
		return nil, fmt.Errorf("finding current revision: %w", err)
	}
	return &RevisionInfo{
		Revision: rev,
		Current:  current != nil && current.ID == rev.ID,
		Stats:    stats,
	}, nil
}
