package ftl

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"ftl-go/internal/model"
)

const (
	contentDir  = "content/"
	staticDir   = "static/"
	templateDir = "templates/"
)

// NormalizeRoute cleans a route into its canonical form: a leading slash,
// no trailing slash, "/" for the root.
func NormalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "/"
	}
	return path.Clean("/" + strings.Trim(route, "/"))
}

// PageRoute derives the canonical route of a page: its configured route when
// present, otherwise its path below content/ without the extension.
func PageRoute(p *model.Page) string {
	if p.Route != "" {
		return NormalizeRoute(p.Route)
	}
	rel := strings.TrimPrefix(p.Path, contentDir)
	switch {
	case rel == "index.md":
		rel = ""
	case strings.HasSuffix(rel, "/index.md"):
		rel = strings.TrimSuffix(rel, "/index.md")
	default:
		rel = strings.TrimSuffix(rel, path.Ext(rel))
	}
	return NormalizeRoute(rel)
}

// AssetRoute derives the route of a static asset.
func AssetRoute(f *model.InputFile) string {
	return NormalizeRoute(strings.TrimPrefix(f.Path, staticDir))
}

// ParentRoute returns the route one level up, or "" for the root.
func ParentRoute(route string) string {
	if route == "/" {
		return ""
	}
	return path.Dir(route)
}

// PaginationRoute returns the route of page n (n >= 2) of a paginated listing.
func PaginationRoute(route string, n int64) string {
	return NormalizeRoute(fmt.Sprintf("%s/page/%d", strings.TrimSuffix(route, "/"), n))
}

// RouteResolver assigns routes to the inputs of one revision and rejects
// collisions between distinct inputs.
type RouteResolver struct {
	revision string
	drafts   bool
	now      time.Time
	owners   map[string]string // route -> input id
	routes   []*model.Route
}

// NewRouteResolver returns a resolver for the given revision. Drafts and
// pages outside their publish window are only routed when drafts is set.
func NewRouteResolver(revision string, drafts bool, now time.Time) *RouteResolver {
	return &RouteResolver{
		revision: revision,
		drafts:   drafts,
		now:      now,
		owners:   make(map[string]string),
	}
}

// Routable reports whether p gets routes in this revision.
func (r *RouteResolver) Routable(p *model.Page) bool {
	if r.drafts {
		return true
	}
	if p.Draft {
		return false
	}
	if p.PublishDate != nil && p.PublishDate.After(r.now) {
		return false
	}
	if p.ExpireDate != nil && !p.ExpireDate.After(r.now) {
		return false
	}
	return true
}

// Resolve computes the routes of a page: the canonical route, one route per
// further pagination page when sectionSize exceeds PaginateBy, and one alias
// route per declared alias. It does not check for conflicts.
func Resolve(revision string, p *model.Page, sectionSize int) []*model.Route {
	canonical := PageRoute(p)
	routes := []*model.Route{{
		Revision:    revision,
		ID:          p.ID,
		Route:       canonical,
		ParentRoute: ParentRoute(canonical),
		Kind:        model.RoutePage,
	}}

	if p.PaginateBy > 0 {
		pages := (int64(sectionSize) + p.PaginateBy - 1) / p.PaginateBy
		if pages > 1 {
			routes[0].PageIndex = 1
		}
		for n := int64(2); n <= pages; n++ {
			routes = append(routes, &model.Route{
				Revision:    revision,
				ID:          p.ID,
				Route:       PaginationRoute(canonical, n),
				ParentRoute: canonical,
				Kind:        model.RoutePage,
				PageIndex:   n,
			})
		}
	}

	for _, alias := range p.Aliases {
		route := NormalizeRoute(alias)
		routes = append(routes, &model.Route{
			Revision:    revision,
			ID:          p.ID,
			Route:       route,
			ParentRoute: ParentRoute(route),
			Kind:        model.RouteAlias,
		})
	}
	return routes
}

// AddPage resolves and records the routes of p.
func (r *RouteResolver) AddPage(p *model.Page, sectionSize int) error {
	for _, route := range Resolve(r.revision, p, sectionSize) {
		if err := r.add(route); err != nil {
			return err
		}
	}
	return nil
}

// AddAsset records the route of a static asset.
func (r *RouteResolver) AddAsset(f *model.InputFile) error {
	route := AssetRoute(f)
	return r.add(&model.Route{
		Revision:    r.revision,
		ID:          f.ID,
		Route:       route,
		ParentRoute: ParentRoute(route),
		Kind:        model.RouteAsset,
	})
}

func (r *RouteResolver) add(route *model.Route) error {
	if owner, ok := r.owners[route.Route]; ok {
		if owner != route.ID {
			return &RouteConflictError{Route: route.Route, First: owner, Second: route.ID}
		}
		// A page aliasing its own route adds nothing.
		return nil
	}
	r.owners[route.Route] = route.ID
	r.routes = append(r.routes, route)
	return nil
}

// Routes returns the recorded routes ordered by route.
func (r *RouteResolver) Routes() []*model.Route {
	routes := slices.Clone(r.routes)
	slices.SortFunc(routes, func(a, b *model.Route) int {
		return strings.Compare(a.Route, b.Route)
	})
	return routes
}
