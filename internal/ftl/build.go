package ftl

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"ftl-go/internal/model"
)

// Build statuses recorded in the build history.
const (
	BuildRunning = "running"
	BuildSuccess = "success"
	BuildError   = "error"
)

// BuildOptions tunes a single build.
type BuildOptions struct {
	// Name is assigned to the resulting revision when set.
	Name string
}

// BuildResult describes a finished build.
type BuildResult struct {
	Build    *model.Build
	Revision *model.Revision
	// Reused is set when the input set matched an existing stable revision.
	Reused bool
	// Changes is nil when there was no prior revision to compare with.
	Changes  *Changes
	Dirty    []string // page ids selected for rendering
	Carried  int64    // outputs copied from the prior revision
	Rendered int      // outputs written by this build
	Warnings IngestErrors
}

// Build ingests tree, derives a revision from it, renders every page whose
// output may have changed since the current revision and stabilizes the
// result. Only one build or collection runs at a time.
//
// When some files were skipped but the build otherwise succeeded, the result
// is complete and the returned error is an IngestErrors; see IsFatal.
func (e *Engine) Build(ctx context.Context, tree SourceTree, opts BuildOptions) (*BuildResult, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	b := &model.Build{
		ID:        e.idgen.New(),
		StartedAt: e.clock.Now(),
		Status:    BuildRunning,
	}
	if err := e.database.CreateBuild(b); err != nil {
		return nil, fmt.Errorf("recording build: %w", err)
	}
	e.logger.Info("build started", "build", b.ID)

	res := &BuildResult{Build: b}
	err := e.build(ctx, tree, opts, res)

	finished := e.clock.Now()
	b.FinishedAt = &finished
	b.Status = BuildSuccess
	if err != nil {
		b.Status = BuildError
	}
	if res.Revision != nil {
		b.Revision = res.Revision.ID
	}
	b.Rendered = int64(res.Rendered)
	b.Reused = res.Reused
	b.Warnings = int64(len(res.Warnings))
	if ferr := e.database.FinishBuild(b); ferr != nil {
		e.logger.Error("failed to record build result", "build", b.ID, "error", ferr)
	}

	if err != nil {
		e.logger.Error("build failed", "build", b.ID, "error", err)
		return nil, err
	}
	e.logger.Info("build complete",
		"build", b.ID,
		"revision", ShortID(b.Revision),
		"rendered", res.Rendered,
		"carried", res.Carried,
		"reused", res.Reused,
		"warnings", len(res.Warnings),
	)
	if len(res.Warnings) > 0 {
		return res, res.Warnings
	}
	return res, nil
}

func (e *Engine) build(ctx context.Context, tree SourceTree, opts BuildOptions, res *BuildResult) error {
	files, warnings, err := e.IngestAll(ctx, tree)
	if err != nil {
		return err
	}
	res.Warnings = warnings

	// The prior revision must be read before BeginRevision moves the pointer.
	prev, err := e.database.CurrentRevision()
	if err != nil {
		return fmt.Errorf("finding current revision: %w", err)
	}

	// Routing depends on the build time and the drafts option as well as the
	// inputs, so pages are parsed and selected before the identity is known.
	v := newView(files)
	fresh, parseWarnings, err := e.parsePages(ctx, files, v)
	res.Warnings = append(res.Warnings, parseWarnings...)
	if err != nil {
		return err
	}
	unrouted := e.selectRoutable(v)

	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	rev, reused, err := e.BeginRevision(ids, unrouted, opts.Name)
	if err != nil {
		return err
	}
	res.Revision = rev
	if reused {
		res.Reused = true
		return nil
	}

	meta, err := e.prepare(rev.ID, v)
	if err != nil {
		e.discard(rev.ID)
		return err
	}
	meta.Pages = fresh
	if err := e.database.SaveRevisionMetadata(rev.ID, meta); err != nil {
		e.discard(rev.ID)
		return fmt.Errorf("saving revision metadata: %w", err)
	}

	dirty, changes, err := e.dirtyPages(prev, files, v)
	if err != nil {
		return err
	}
	res.Changes = changes
	res.Dirty = dirty

	if prev != nil {
		clean := make([]string, 0, len(v.canonical))
		for id := range v.canonical {
			if !slices.Contains(dirty, id) {
				clean = append(clean, id)
			}
		}
		slices.Sort(clean)
		carried, err := e.database.CarryForwardOutputs(prev.ID, rev.ID, clean)
		if err != nil {
			return fmt.Errorf("carrying outputs forward: %w", err)
		}
		res.Carried = carried
	}

	rendered, stable, err := e.renderPending(ctx, v)
	res.Rendered = rendered
	if err != nil {
		return err
	}
	if !stable {
		if err := e.Stabilize(rev.ID); err != nil {
			return err
		}
	}

	// Stabilization moved the pointer; refresh the revision for the caller.
	if r, err := e.database.FindRevision(rev.ID); err == nil && r != nil {
		res.Revision = r
	}
	return nil
}

// discard removes a revision that failed during preparation.
func (e *Engine) discard(id string) {
	if err := e.database.DeleteRevision(id); err != nil {
		e.logger.Error("failed to discard revision", "revision", ShortID(id), "error", err)
	}
}

// selectRoutable gives every page published in this build its canonical
// route and returns the ids of the documents left unrouted.
func (e *Engine) selectRoutable(v *view) []string {
	resolver := NewRouteResolver("", e.opts.Drafts, e.clock.Now())
	var unrouted []string
	for id, p := range v.pages {
		if resolver.Routable(p) {
			v.canonical[id] = PageRoute(p)
		} else {
			unrouted = append(unrouted, id)
		}
	}
	slices.Sort(unrouted)
	return unrouted
}

// prepare resolves routes and records every dependency edge of the
// candidate revision. v must hold the parsed and selected pages.
func (e *Engine) prepare(revision string, v *view) (*RevisionMetadata, error) {
	v.revision = revision
	meta := &RevisionMetadata{}

	// Templates and the edges between them.
	for _, f := range v.files {
		if !strings.HasPrefix(f.Path, templateDir) || !f.Inline {
			continue
		}
		name := strings.TrimPrefix(f.Path, templateDir)
		v.templates[name] = f.ID
		v.names[f.ID] = name
		meta.Templates = append(meta.Templates, &model.Template{Revision: revision, Name: name, ID: f.ID})
	}
	for _, t := range meta.Templates {
		f := v.inputs[t.ID]
		for _, ref := range e.parser.TemplateReferences(f) {
			target, ok := v.templates[ref]
			if !ok {
				e.logger.Warn("unresolved template reference", "template", t.Name, "reference", ref)
				continue
			}
			if err := v.graph.AddEdge(t.ID, target, model.RelationInterTemplate); err != nil {
				return nil, e.relabel(v, err)
			}
		}
	}

	// Routes. Section sizes depend on the canonical routes selected earlier.
	resolver := NewRouteResolver(revision, e.opts.Drafts, e.clock.Now())
	routable := make([]*model.Page, 0, len(v.canonical))
	for id := range v.canonical {
		routable = append(routable, v.pages[id])
	}
	slices.SortFunc(routable, func(a, b *model.Page) int { return strings.Compare(a.Path, b.Path) })

	for _, p := range routable {
		section := v.Section(v.canonical[p.ID])
		if err := resolver.AddPage(p, len(section)); err != nil {
			return nil, e.relabel(v, err)
		}
	}
	for _, f := range v.files {
		if strings.HasPrefix(f.Path, staticDir) {
			if err := resolver.AddAsset(f); err != nil {
				return nil, e.relabel(v, err)
			}
		}
	}
	meta.Routes = resolver.Routes()
	for _, r := range meta.Routes {
		v.routes[r.ID] = append(v.routes[r.ID], r)
	}

	// Page edges.
	for _, p := range routable {
		name := p.Template
		if name == "" {
			name = e.opts.DefaultTemplate
		}
		if t, ok := v.templates[name]; ok {
			if err := v.graph.AddEdge(p.ID, t, model.RelationPageTemplate); err != nil {
				return nil, e.relabel(v, err)
			}
		} else {
			e.logger.Warn("unresolved page template", "page", p.Path, "template", name)
		}

		for _, dep := range p.Dependencies {
			target := v.resolveAsset(dep)
			if target == "" {
				e.logger.Warn("unresolved page dependency", "page", p.Path, "dependency", dep)
				continue
			}
			if err := v.graph.AddEdge(p.ID, target, model.RelationPageAsset); err != nil {
				return nil, e.relabel(v, err)
			}
		}

		if p.PaginateBy > 0 {
			for _, member := range v.Section(v.canonical[p.ID]) {
				if err := v.graph.AddEdge(p.ID, member.ID, model.RelationPageSection); err != nil {
					return nil, e.relabel(v, err)
				}
			}
		}
	}

	for _, d := range v.graph.Edges() {
		d.Revision = revision
		meta.Dependencies = append(meta.Dependencies, d)
	}
	return meta, nil
}

// parsePages loads or parses every content document into v. Pages already
// stored for an input are reused; the rest are parsed in parallel and
// returned so they can be persisted. Documents that fail to parse are
// skipped with a warning.
func (e *Engine) parsePages(ctx context.Context, files []*model.InputFile, v *view) ([]*model.Page, IngestErrors, error) {
	var docs []*model.InputFile
	for _, f := range files {
		if isDocument(f) {
			docs = append(docs, f)
		}
	}

	pages := make([]*model.Page, len(docs))
	fresh := make([]bool, len(docs))
	failed := make([]*IngestError, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, f := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := e.database.FindPage(f.ID)
			if err != nil {
				return fmt.Errorf("finding page %s: %w", f.Path, err)
			}
			if p != nil {
				pages[i] = p
				return nil
			}
			p, err = e.parser.ParsePage(f)
			if err != nil {
				failed[i] = &IngestError{Path: f.Path, Err: err}
				return nil
			}
			p.ID = f.ID
			p.Path = f.Path
			pages[i] = p
			fresh[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var out []*model.Page
	var warnings IngestErrors
	for i, p := range pages {
		if failed[i] != nil {
			e.logger.Warn("skipping page", "path", failed[i].Path, "error", failed[i].Err)
			warnings = append(warnings, failed[i])
			continue
		}
		v.pages[p.ID] = p
		if fresh[i] {
			out = append(out, p)
		}
	}
	return out, warnings, nil
}

func isDocument(f *model.InputFile) bool {
	return f.Inline && strings.HasPrefix(f.Path, contentDir) &&
		(f.Extension == "md" || f.Extension == "markdown")
}

// resolveAsset finds the input a page dependency refers to, by path or by
// asset route.
func (v *view) resolveAsset(ref string) string {
	if f, ok := v.byPath[strings.TrimPrefix(ref, "/")]; ok {
		return f.ID
	}
	if f, ok := v.byPath[staticDir+strings.TrimPrefix(NormalizeRoute(ref), "/")]; ok {
		return f.ID
	}
	return ""
}

// relabel names the inputs of graph and route errors by path.
func (e *Engine) relabel(v *view, err error) error {
	labels := v.labels()
	var cycle *DependencyCycleError
	if errors.As(err, &cycle) {
		return cycle.relabel(labels)
	}
	var conflict *RouteConflictError
	if errors.As(err, &conflict) {
		c := *conflict
		c.FirstPath = labels[c.First]
		c.SecondPath = labels[c.Second]
		return &c
	}
	return err
}

// dirtyPages selects the routed pages of v that must be rendered. With no
// prior revision every routed page is dirty.
func (e *Engine) dirtyPages(prev *model.Revision, files []*model.InputFile, v *view) ([]string, *Changes, error) {
	var dirty []string
	if prev == nil {
		for id := range v.canonical {
			dirty = append(dirty, id)
		}
		slices.Sort(dirty)
		return dirty, nil, nil
	}

	prevFiles, err := e.database.FindInputFilesForRevision(prev.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading prior revision inputs: %w", err)
	}
	prevDeps, err := e.database.FindDependenciesForRevision(prev.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading prior dependencies: %w", err)
	}
	prevGraph, err := LoadGraph(prevDeps)
	if err != nil {
		return nil, nil, fmt.Errorf("loading prior graph: %w", err)
	}

	changes := Diff(prevFiles, files)
	set := make(map[string]bool)

	changed := changes.ChangedIDs()
	for _, id := range changed {
		set[id] = true
	}
	for _, id := range v.graph.TransitiveDependents(changed) {
		set[id] = true
	}
	// Dependents of removed or replaced inputs are only visible in the
	// prior graph.
	for _, id := range prevGraph.TransitiveDependents(changes.GoneIDs()) {
		if _, ok := v.inputs[id]; ok {
			set[id] = true
		}
	}
	// A page entering or leaving its publish window changes the sections it
	// belongs to even though its input did not change.
	flipped, err := e.routingChanges(prev, v)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range flipped {
		set[id] = true
	}
	for _, id := range v.graph.TransitiveDependents(flipped) {
		set[id] = true
	}
	for _, id := range prevGraph.TransitiveDependents(flipped) {
		if _, ok := v.inputs[id]; ok {
			set[id] = true
		}
	}

	for id, p := range v.pages {
		if p.Dynamic {
			set[id] = true
		}
	}

	for id := range set {
		if _, routed := v.canonical[id]; routed {
			dirty = append(dirty, id)
		}
	}
	slices.Sort(dirty)
	return dirty, changes, nil
}

// routingChanges returns the pages of v that are routed now but were not
// in prev, or the other way round.
func (e *Engine) routingChanges(prev *model.Revision, v *view) ([]string, error) {
	routes, err := e.database.FindRoutesForRevision(prev.ID)
	if err != nil {
		return nil, fmt.Errorf("loading prior routes: %w", err)
	}
	before := make(map[string]bool)
	for _, r := range routes {
		if r.Kind == model.RoutePage {
			before[r.ID] = true
		}
	}

	var flipped []string
	for id := range v.pages {
		if _, routed := v.canonical[id]; routed != before[id] {
			flipped = append(flipped, id)
		}
	}
	slices.Sort(flipped)
	return flipped, nil
}

// renderPending renders every page that still has a route without output,
// in dependency order, and commits each artifact. stable reports whether a
// commit stabilized the revision.
func (e *Engine) renderPending(ctx context.Context, v *view) (int, bool, error) {
	pending, err := e.database.FindPendingRoutes(v.revision)
	if err != nil {
		return 0, false, fmt.Errorf("finding pending routes: %w", err)
	}
	var ids []string
	for _, r := range pending {
		ids = append(ids, r.ID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	counts := make([]int, len(ids))
	stabilized := make([]bool, len(ids))
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	for _, level := range v.graph.Order(ids) {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.Workers)
		for _, id := range level {
			i := index[id]
			g.Go(func() error {
				n, stable, err := e.renderPage(gctx, v, id)
				counts[i] = n
				stabilized[i] = stable
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return sum(counts), false, err
		}
	}
	return sum(counts), slices.Contains(stabilized, true), nil
}

func (e *Engine) renderPage(ctx context.Context, v *view, id string) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	p := v.pages[id]
	routes := v.pageRoutes(id)
	job := &RenderJob{
		Revision: v.revision,
		Page:     p,
		Input:    v.inputs[id],
		Routes:   routes,
		Source:   v,
	}
	artifacts, err := e.renderer.Render(ctx, job)
	if err != nil {
		return 0, false, fmt.Errorf("rendering %s: %w", p.Path, err)
	}

	owned := make(map[string]bool, len(routes))
	for _, r := range routes {
		owned[r.Route] = true
	}
	var n int
	var stable bool
	for _, a := range artifacts {
		if !owned[a.Route] {
			e.logger.Warn("renderer produced output for a foreign route", "page", p.Path, "route", a.Route)
			continue
		}
		done, err := e.database.CommitOutput(&model.Output{
			Revision: v.revision,
			Route:    a.Route,
			ID:       id,
			Content:  a.Content,
			Size:     int64(len(a.Content)),
		}, e.clock.Now())
		if err != nil {
			return n, stable, fmt.Errorf("committing %s: %w", a.Route, err)
		}
		n++
		stable = stable || done
	}
	e.logger.Debug("page rendered", "path", p.Path, "routes", n)
	return n, stable, nil
}

func sum(xs []int) int {
	var total int
	for _, x := range xs {
		total += x
	}
	return total
}
