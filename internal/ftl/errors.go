package ftl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a revision, route or input does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotStable is returned when an operation requires a stable revision.
	ErrNotStable = errors.New("revision is not stable")

	// ErrNameTaken is returned when a revision name is already assigned.
	ErrNameTaken = errors.New("revision name already in use")

	// ErrPagesPending is returned when stabilizing a revision that still has
	// page routes without output.
	ErrPagesPending = errors.New("revision has pages without output")

	// ErrImmutable is returned when writing outputs to a stable revision.
	ErrImmutable = errors.New("revision is stable and cannot be modified")

	// ErrAmbiguous is returned when a revision prefix matches more than one
	// revision.
	ErrAmbiguous = errors.New("ambiguous revision reference")

	// ErrStorage wraps every failure of the underlying store.
	ErrStorage = errors.New("storage error")
)

// IngestError reports a single source file that could not be ingested.
// The file is skipped and the build continues.
type IngestError struct {
	Path string
	Err  error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingesting %s: %v", e.Path, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// IngestErrors is the batch of per-file problems collected during a build.
type IngestErrors []*IngestError

func (e IngestErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d files skipped:", len(e))
	for _, ie := range e {
		b.WriteString("\n  ")
		b.WriteString(ie.Error())
	}
	return b.String()
}

// Edge is a single dependency edge: From depends on To.
type Edge struct {
	From string
	To   string
}

// DependencyCycleError is returned when adding an edge would close a cycle.
// Edges lists the cycle in order, starting with the offending edge.
type DependencyCycleError struct {
	Edges []Edge
}

func (e *DependencyCycleError) Error() string {
	if len(e.Edges) == 0 {
		return "dependency cycle"
	}
	parts := []string{e.Edges[0].From}
	for _, edge := range e.Edges {
		parts = append(parts, edge.To)
	}
	return "dependency cycle: " + strings.Join(parts, " -> ")
}

// relabel returns a copy of e with node ids replaced by labels where known.
func (e *DependencyCycleError) relabel(labels map[string]string) *DependencyCycleError {
	name := func(id string) string {
		if l, ok := labels[id]; ok {
			return l
		}
		return id
	}
	edges := make([]Edge, len(e.Edges))
	for i, edge := range e.Edges {
		edges[i] = Edge{From: name(edge.From), To: name(edge.To)}
	}
	return &DependencyCycleError{Edges: edges}
}

// RouteConflictError is returned when two inputs resolve to the same route.
// First and Second are the contending input ids; the paths are filled in
// when the inputs are known.
type RouteConflictError struct {
	Route      string
	First      string
	Second     string
	FirstPath  string
	SecondPath string
}

func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("route conflict on %q between %s and %s",
		e.Route, conflictName(e.First, e.FirstPath), conflictName(e.Second, e.SecondPath))
}

func conflictName(id, path string) string {
	if path == "" {
		return ShortID(id)
	}
	return fmt.Sprintf("%s (%s)", path, ShortID(id))
}
