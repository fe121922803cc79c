package ftl

import (
	"cmp"
	"slices"
	"strings"

	"ftl-go/internal/model"
)

// view is the in-memory picture of one revision while it is prepared and
// rendered. It is read-only once prepare returns.
type view struct {
	revision  string
	files     []*model.InputFile
	inputs    map[string]*model.InputFile // id -> input
	byPath    map[string]*model.InputFile
	pages     map[string]*model.Page // id -> page, routed or not
	canonical map[string]string      // routed page id -> canonical route
	routes    map[string][]*model.Route
	templates map[string]string // name -> id
	names     map[string]string // template id -> name
	graph     *Graph
}

var _ Source = (*view)(nil)

func newView(files []*model.InputFile) *view {
	v := &view{
		files:     files,
		inputs:    make(map[string]*model.InputFile, len(files)),
		byPath:    make(map[string]*model.InputFile, len(files)),
		pages:     make(map[string]*model.Page),
		canonical: make(map[string]string),
		routes:    make(map[string][]*model.Route),
		templates: make(map[string]string),
		names:     make(map[string]string),
		graph:     NewGraph(),
	}
	for _, f := range files {
		v.inputs[f.ID] = f
		v.byPath[f.Path] = f
	}
	return v
}

func (v *view) InputFile(id string) *model.InputFile { return v.inputs[id] }

func (v *view) Page(id string) *model.Page { return v.pages[id] }

func (v *view) Pages() []*model.Page {
	pages := make([]*model.Page, 0, len(v.canonical))
	for id := range v.canonical {
		pages = append(pages, v.pages[id])
	}
	v.sortByRoute(pages)
	return pages
}

func (v *view) Section(route string) []*model.Page {
	route = NormalizeRoute(route)
	var pages []*model.Page
	for id, r := range v.canonical {
		if r != route && ParentRoute(r) == route {
			pages = append(pages, v.pages[id])
		}
	}
	v.sortByRoute(pages)
	return pages
}

func (v *view) CanonicalRoute(id string) string { return v.canonical[id] }

func (v *view) Template(name string) *model.InputFile {
	id, ok := v.templates[name]
	if !ok {
		return nil
	}
	return v.inputs[id]
}

func (v *view) TemplateSet(name string) []*model.Template {
	id, ok := v.templates[name]
	if !ok {
		return nil
	}
	set := []*model.Template{{Revision: v.revision, Name: name, ID: id}}
	for _, dep := range v.graph.Dependencies(id) {
		if n, ok := v.names[dep]; ok {
			set = append(set, &model.Template{Revision: v.revision, Name: n, ID: dep})
		}
	}
	return set
}

// pageRoutes returns the page-kind routes of id ordered by page index.
func (v *view) pageRoutes(id string) []*model.Route {
	var routes []*model.Route
	for _, r := range v.routes[id] {
		if r.Kind == model.RoutePage {
			routes = append(routes, r)
		}
	}
	slices.SortFunc(routes, func(a, b *model.Route) int { return cmp.Compare(a.PageIndex, b.PageIndex) })
	return routes
}

// labels maps input ids to paths for error messages.
func (v *view) labels() map[string]string {
	labels := make(map[string]string, len(v.inputs))
	for id, f := range v.inputs {
		labels[id] = f.Path
	}
	return labels
}

func (v *view) sortByRoute(pages []*model.Page) {
	slices.SortFunc(pages, func(a, b *model.Page) int {
		return strings.Compare(v.canonical[a.ID], v.canonical[b.ID])
	})
}
