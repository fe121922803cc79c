package ftl

import (
	"context"

	"ftl-go/internal/model"
)

// SourceTree enumerates and reads the files of a site.
// Paths are slash separated and relative to the site root.
type SourceTree interface {
	Files() ([]string, error)
	ReadFile(path string) ([]byte, error)
}

// Parser turns inputs into page metadata and template references.
type Parser interface {
	// ParsePage parses the frontmatter of a content document.
	// The returned page carries no ID or Path; the engine fills them in.
	ParsePage(f *model.InputFile) (*model.Page, error)

	// TemplateReferences returns the names of templates f refers to.
	TemplateReferences(f *model.InputFile) []string
}

// RenderJob is one page handed to the renderer.
type RenderJob struct {
	Revision string
	Page     *model.Page
	Input    *model.InputFile
	// Routes are the page's own page-kind routes, canonical first and then
	// pagination routes in order.
	Routes []*model.Route
	Source Source
}

// Rendered is the artifact produced for one route.
type Rendered struct {
	Route   string
	Content []byte
}

// Renderer produces one artifact per route of a page.
type Renderer interface {
	Render(ctx context.Context, job *RenderJob) ([]*Rendered, error)
}

// Source gives collaborators read access to the revision being built.
type Source interface {
	InputFile(id string) *model.InputFile
	Page(id string) *model.Page
	// Pages returns the routed pages of the revision ordered by route.
	Pages() []*model.Page
	// Section returns the routed pages whose parent route is route.
	Section(route string) []*model.Page
	// CanonicalRoute returns the canonical route of a routed page.
	CanonicalRoute(id string) string
	// Template returns the template input registered under name.
	Template(name string) *model.InputFile
	// TemplateSet returns the named template followed by every template it
	// transitively references.
	TemplateSet(name string) []*model.Template
}
